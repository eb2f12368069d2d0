package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nfsync/nfsync/internal/config"
	"github.com/nfsync/nfsync/internal/journal"
)

func init() {
	rootCmd.AddCommand(newRunsCmd())
}

func newRunsCmd() *cobra.Command {
	var limit int
	var showErrors bool

	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Show recent sync runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			jrnl, err := journal.Open(config.DefaultJournalPath)
			if err != nil {
				return err
			}
			defer jrnl.Close()

			runs, err := jrnl.Recent(limit)
			if err != nil {
				return err
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no sync runs recorded")
				return nil
			}

			out := cmd.OutOrStdout()
			for _, r := range runs {
				outcome := green("ok")
				if !r.Success {
					outcome = red("failed")
					if r.Cancelled {
						outcome = red("cancelled")
					}
				}
				fmt.Fprintf(out, "%s  %s  %s  %s\n", r.StartedAt, shortID(r.ID), outcome, r.Message)

				if showErrors && r.Failed > 0 {
					errs, err := jrnl.Errors(r.ID)
					if err != nil {
						return err
					}
					for _, e := range errs {
						fmt.Fprintf(out, "    %s: %s\n", e.Local, e.Message)
					}
				}
			}
			return nil
		},
	}

	runsCmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show")
	runsCmd.Flags().BoolVarP(&showErrors, "errors", "e", false, "show per-folder errors")

	return runsCmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
