package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newExcludeCmd())
}

func newExcludeCmd() *cobra.Command {
	excludeCmd := &cobra.Command{
		Use:   "exclude",
		Short: "Manage exclusion patterns",
	}

	excludeCmd.AddCommand(&cobra.Command{
		Use:   "add <pattern>",
		Short: "Add an exclusion pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			if err := store.AddExclude(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %q\n", green("added"), args[0])
			return nil
		},
	})

	excludeCmd.AddCommand(&cobra.Command{
		Use:   "rm <pattern>",
		Short: "Remove an exclusion pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			if err := store.RemoveExclude(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %q\n", green("removed"), args[0])
			return nil
		},
	})

	excludeCmd.AddCommand(&cobra.Command{
		Use:   "ls",
		Short: "List exclusion patterns",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			store, err := openStore(cmd)
			if err != nil {
				return err
			}

			patterns := store.Snapshot().ExcludePatterns
			if len(patterns) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no exclusion patterns configured")
				return nil
			}
			for _, p := range patterns {
				fmt.Fprintln(cmd.OutOrStdout(), p)
			}
			return nil
		},
	})

	return excludeCmd
}
