package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfsync/nfsync/internal/config"
)

func init() {
	rootCmd.AddCommand(newConfigCmd())
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and edit the nfsync configuration",
	}

	configCmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), configPath(cmd))
			return nil
		},
	})

	configCmd.AddCommand(newConfigShareCmd())
	configCmd.AddCommand(newConfigAutoCmd())

	return configCmd
}

func newConfigShareCmd() *cobra.Command {
	var server, export, mountPoint string

	shareCmd := &cobra.Command{
		Use:   "share",
		Short: "Set the NFS share coordinates",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			store, err := openStore(cmd)
			if err != nil {
				return err
			}

			if !cmd.Flags().Changed("server") && !cmd.Flags().Changed("export") && !cmd.Flags().Changed("mountpoint") {
				cfg := store.Snapshot()
				fmt.Fprintf(cmd.OutOrStdout(), "server:      %s\nexport:      %s\nmount point: %s\n",
					cfg.Server, cfg.Export, cfg.MountPoint)
				return nil
			}

			err = store.Update(func(c *config.Config) error {
				if cmd.Flags().Changed("server") {
					c.Server = server
				}
				if cmd.Flags().Changed("export") {
					c.Export = export
				}
				if cmd.Flags().Changed("mountpoint") {
					c.MountPoint = mountPoint
				}
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), green("share updated"))
			return nil
		},
	}

	shareCmd.Flags().StringVar(&server, "server", "", "NFS server host or IP")
	shareCmd.Flags().StringVar(&export, "export", "", "exported path on the server")
	shareCmd.Flags().StringVar(&mountPoint, "mountpoint", config.DefaultMountPoint, "local mount point")

	return shareCmd
}

func newConfigAutoCmd() *cobra.Command {
	var autoMount, autoSync bool
	var interval int

	autoCmd := &cobra.Command{
		Use:   "auto",
		Short: "Configure automatic mount and sync behaviour",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			store, err := openStore(cmd)
			if err != nil {
				return err
			}

			err = store.Update(func(c *config.Config) error {
				if cmd.Flags().Changed("mount") {
					c.AutoMount = autoMount
				}
				if cmd.Flags().Changed("sync") {
					c.AutoSync = autoSync
				}
				if cmd.Flags().Changed("interval") {
					if interval < config.MinSyncIntervalSecs {
						return fmt.Errorf("interval must be at least %d seconds", config.MinSyncIntervalSecs)
					}
					c.SyncIntervalSecs = interval
				}
				return nil
			})
			if err != nil {
				return err
			}

			cfg := store.Snapshot()
			fmt.Fprintf(cmd.OutOrStdout(), "auto mount: %v\nauto sync:  %v\ninterval:   %s\n",
				cfg.AutoMount, cfg.AutoSync, cfg.SyncInterval())
			return nil
		},
	}

	autoCmd.Flags().BoolVar(&autoMount, "mount", false, "mount the share when the daemon starts")
	autoCmd.Flags().BoolVar(&autoSync, "sync", false, "sync periodically and on folder changes")
	autoCmd.Flags().IntVar(&interval, "interval", config.DefaultSyncIntervalSecs, "sync interval in seconds")

	return autoCmd
}
