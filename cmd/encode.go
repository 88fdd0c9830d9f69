package cmd

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dnachev/wg-uapi/wireguard"
)

func tunnelName(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func newEncodeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "encode <wg-quick file>",
		Short: "Print the UAPI set operation for a wg-quick file",
		Long: `Resolve every peer endpoint of a wg-quick file and print the resulting
UAPI set operation. Nothing is printed if any endpoint fails to resolve.

Examples:
  # Show what would be sent to the device
  wg-uapi encode /etc/wireguard/wg0.conf

  # Prefer IPv6 endpoints
  wg-uapi encode --address-family ip6 wg0.conf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := wireguard.FromWgQuickFile(args[0], tunnelName(args[0]))
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.ResolveTimeout)
			defer cancel()
			peers, err := conf.ResolvePeers(ctx, a.cfg.Resolver())
			if err != nil {
				logrus.WithError(err).WithField("tunnel", conf.Name).Error("failed to resolve peer endpoints")
				return err
			}

			cmds, err := conf.Commands(peers)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if err := wireguard.EncodeTo(out, cmds); err != nil {
				return err
			}
			_, err = fmt.Fprintln(out)
			return err
		},
	}
}
