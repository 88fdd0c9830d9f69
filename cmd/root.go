package cmd

import (
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dnachev/wg-uapi/config"
	"github.com/dnachev/wg-uapi/logger"
)

type app struct {
	configPath string
	cfg        *config.Config
}

// NewRootCmd builds the wg-uapi command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "wg-uapi",
		Short: "Drive userspace WireGuard tunnels from wg-quick files",
		Long: `wg-uapi turns wg-quick(8) configuration files into WireGuard UAPI set
operations and keeps hostname endpoints current across reconnects.

Settings are read from .wg-uapi.yaml (in /etc/wg-uapi, $HOME or the working
directory), WG_UAPI_* environment variables and flags, in increasing priority.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l := config.NewLoader()
			if err := l.BindFlags(cmd.Flags()); err != nil {
				return err
			}
			cfg, err := l.Load(a.configPath)
			if err != nil {
				return err
			}
			if err := logger.Setup(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogFormat); err != nil {
				return err
			}
			logrus.WithFields(logrus.Fields{
				"resolve_timeout":  cfg.ResolveTimeout,
				"refresh_interval": cfg.RefreshInterval,
				"address_family":   cfg.AddressFamily,
			}).Debug("configuration loaded")
			a.cfg = cfg
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to a wg-uapi settings file")
	flags.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text or json)")
	flags.Duration("resolve-timeout", 10*time.Second, "upper bound for resolving all peer endpoints")
	flags.String("address-family", "any", "preferred endpoint address family (any, ip4 or ip6)")

	root.AddCommand(
		newEncodeCmd(a),
		newUpCmd(a),
		newGenkeyCmd(),
		newPubkeyCmd(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
