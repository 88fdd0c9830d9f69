package cmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dnachev/wg-uapi/tunnel"
	"github.com/dnachev/wg-uapi/wireguard"
)

func newUpCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "up <wg-quick file>",
		Short: "Run a userspace tunnel and follow endpoint DNS changes",
		Long: `Bring up a userspace (netstack) WireGuard tunnel for a wg-quick file and
re-resolve hostname endpoints every refresh interval. When a peer's address
changes the device is reconfigured; when resolution fails the running
configuration is kept and the lookup is retried on the next interval.

Examples:
  wg-uapi up wg0.conf
  wg-uapi up --refresh-interval 30s --log-format json wg0.conf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := wireguard.FromWgQuickFile(args[0], tunnelName(args[0]))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			tun, err := tunnel.Create(ctx, conf,
				tunnel.WithResolver(a.cfg.Resolver()),
				tunnel.WithResolveTimeout(a.cfg.ResolveTimeout),
				tunnel.WithLogger(logrus.WithField("component", "tunnel")),
			)
			if err != nil {
				return err
			}
			defer tun.Close()

			err = tun.Watch(ctx, a.cfg.RefreshInterval)
			if errors.Is(err, context.Canceled) {
				logrus.Info("shutting down")
				return nil
			}
			return err
		},
	}
	cmd.Flags().Duration("refresh-interval", time.Minute, "how often hostname endpoints are re-resolved")
	return cmd
}
