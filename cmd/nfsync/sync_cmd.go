package main

import (
	"errors"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/nfsync/nfsync/internal/daemon"
	"github.com/nfsync/nfsync/internal/syncer"
)

func init() {
	rootCmd.AddCommand(newSyncCmd())
}

func newSyncCmd() *cobra.Command {
	var verbose bool

	syncCmd := &cobra.Command{
		Use:   "sync",
		Short: "Run a one-shot sync of all enabled folder pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true

			store, err := openStore(cmd)
			if err != nil {
				return err
			}

			svc := daemon.NewSyncService(store, nil)
			svc.OnEvent = func(ev syncer.Event) {
				printEvent(cmd, ev, verbose)
			}

			res, err := svc.RunAndWait(cmd.Context())
			if err != nil {
				return err
			}

			if res.Err != nil {
				if errors.Is(res.Err, syncer.ErrNotMounted) {
					return fmt.Errorf("%s: run %s first", res.Err, cyan("nfsync mount"))
				}
				return res.Err
			}

			if !res.Success {
				fmt.Fprintln(cmd.OutOrStdout(), red(res.Message))
				for _, pe := range res.Errors {
					fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s\n", pe.Local, pe.Message)
				}
				return fmt.Errorf("sync incomplete")
			}

			fmt.Fprintln(cmd.OutOrStdout(), green(res.Message))
			return nil
		},
	}

	syncCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print rsync output")

	return syncCmd
}

func printEvent(cmd *cobra.Command, ev syncer.Event, verbose bool) {
	out := cmd.OutOrStdout()

	switch e := ev.(type) {
	case syncer.PairStarted:
		fmt.Fprintf(out, "[%d/%d] %s -> %s\n", e.Index, e.Total, e.Local, e.Target)
	case syncer.PairFinished:
		if e.Err != "" {
			fmt.Fprintf(out, "[%d/%d] %s %s\n", e.Index, e.Total, red("failed:"), e.Err)
			return
		}
		if e.Stats != nil && e.Stats.TotalSize > 0 {
			fmt.Fprintf(out, "[%d/%d] %s %d files, %s\n",
				e.Index, e.Total, green("done:"), e.Stats.FilesTransferred, humanize.Bytes(e.Stats.TotalSize))
			return
		}
		fmt.Fprintf(out, "[%d/%d] %s\n", e.Index, e.Total, green("done"))
	case syncer.TransferOutput:
		if verbose {
			fmt.Fprintf(out, "    %s\n", e.Line)
		}
	case syncer.RunCancelled:
		fmt.Fprintf(out, "%s after %d of %d folders\n", red("cancelled"), e.Completed, e.Total)
	}
}
