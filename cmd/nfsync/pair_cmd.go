package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newPairCmd())
}

func newPairCmd() *cobra.Command {
	pairCmd := &cobra.Command{
		Use:   "pair",
		Short: "Manage folder pairs",
	}

	pairCmd.AddCommand(&cobra.Command{
		Use:   "add <local> <target>",
		Short: "Add a folder pair (target is relative to the mount root)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			pair, err := store.AddPair(args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s -> %s\n", green("added"), pair.Local, pair.Target)
			return nil
		},
	})

	pairCmd.AddCommand(&cobra.Command{
		Use:   "rm <local>",
		Short: "Remove a folder pair",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			if err := store.RemovePair(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green("removed"), args[0])
			return nil
		},
	})

	pairCmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List folder pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			store, err := openStore(cmd)
			if err != nil {
				return err
			}

			cfg := store.Snapshot()
			if len(cfg.Folders) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no folder pairs configured")
				return nil
			}

			for _, f := range cfg.Folders {
				state := green("enabled")
				if !f.Enabled {
					state = red("disabled")
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s -> %s\n", state, f.Local, f.Target)
			}
			return nil
		},
	})

	pairCmd.AddCommand(newPairToggleCmd("enable", "Enable a folder pair", true))
	pairCmd.AddCommand(newPairToggleCmd("disable", "Disable a folder pair without removing it", false))

	return pairCmd
}

func newPairToggleCmd(verb, short string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <local>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			if err := store.SetPairEnabled(args[0], enabled); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", green(verb+"d"), args[0])
			return nil
		},
	}
}
