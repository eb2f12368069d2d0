package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfsync/nfsync/internal/daemon"
)

func init() {
	rootCmd.AddCommand(newMountCmd())
	rootCmd.AddCommand(newUnmountCmd())
	rootCmd.AddCommand(newProbeCmd())
	rootCmd.AddCommand(newStatusCmd())
}

func localService(cmd *cobra.Command) (*daemon.SyncService, error) {
	store, err := openStore(cmd)
	if err != nil {
		return nil, err
	}
	return daemon.NewSyncService(store, nil), nil
}

func newMountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mount",
		Short: "Mount the configured NFS share",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			svc, err := localService(cmd)
			if err != nil {
				return err
			}
			if err := svc.Mount(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), green("share mounted"))
			return nil
		},
	}
}

func newUnmountCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unmount",
		Short: "Unmount the configured NFS share",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			svc, err := localService(cmd)
			if err != nil {
				return err
			}
			if err := svc.Unmount(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), green("share unmounted"))
			return nil
		},
	}
}

func newProbeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "probe",
		Short: "Check that the NFS server exposes the configured export",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			svc, err := localService(cmd)
			if err != nil {
				return err
			}
			if err := svc.Probe(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), green("export reachable"))
			return nil
		},
	}
}

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show mount and sync status",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			svc, err := localService(cmd)
			if err != nil {
				return err
			}
			st := svc.Status(cmd.Context())

			out := cmd.OutOrStdout()
			mounted := red("not mounted")
			if st.Mounted {
				mounted = green("mounted")
			}
			fmt.Fprintf(out, "share:      %s (%s)\n", mounted, st.MountPoint)
			fmt.Fprintf(out, "sync state: %s\n", st.SyncState)
			fmt.Fprintf(out, "pairs:      %d configured, %d enabled\n", st.Pairs, st.Enabled)
			fmt.Fprintf(out, "auto sync:  %v\n", st.AutoSync)
			if st.LastSync != "" {
				fmt.Fprintf(out, "last sync:  %s\n", st.LastSync)
			}
			return nil
		},
	}
}
