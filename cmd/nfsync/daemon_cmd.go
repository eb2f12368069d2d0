package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nfsync/nfsync/internal/config"
	"github.com/nfsync/nfsync/internal/controlplane"
	"github.com/nfsync/nfsync/internal/daemon"
	"github.com/nfsync/nfsync/internal/journal"
	"github.com/nfsync/nfsync/internal/version"
)

func init() {
	rootCmd.AddCommand(newDaemonCmd())
}

func newDaemonCmd() *cobra.Command {
	var addr string
	var authToken string

	daemonCmd := &cobra.Command{
		Use:   "daemon",
		Short: "Run the sync daemon with its local control plane",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			slog.Info("nfsync", "version", version.Version, "revision", version.Revision, "build", version.BuildDate)

			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			slog.Info("daemon using config", "path", store.Snapshot().Path)

			jrnl, err := journal.Open(config.DefaultJournalPath)
			if err != nil {
				return err
			}
			defer jrnl.Close()

			// precedence: flag > NFSYNC_* env > config file > default
			viper.BindPFlag("control_addr", cmd.Flags().Lookup("http-addr"))
			viper.BindPFlag("control_token", cmd.Flags().Lookup("http-token"))
			addr = viper.GetString("control_addr")
			if addr == "" {
				addr = config.DefaultControlAddr
			}
			authToken = viper.GetString("control_token")

			svc := daemon.NewSyncService(store, jrnl)
			cps := controlplane.NewServer(&controlplane.ServerConfig{
				Addr:      addr,
				AuthToken: authToken,
			}, svc, store, jrnl)

			d := daemon.New(store, svc, cps)

			defer slog.Info("Bye!")
			if err := d.Start(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				slog.Error("daemon start", "error", err)
				return err
			}
			return nil
		},
	}

	daemonCmd.Flags().StringVarP(&addr, "http-addr", "a", config.DefaultControlAddr, "address to bind the control plane")
	daemonCmd.Flags().StringVarP(&authToken, "http-token", "t", "", "access token for the control plane")

	return daemonCmd
}
