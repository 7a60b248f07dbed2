package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/rywkoo/highlight-clipper/internal/logging"
	"github.com/rywkoo/highlight-clipper/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var lines int
	var follow bool
	var raw bool
	cmd := &cobra.Command{
		Use:   "logs [run-id]",
		Short: "Show recent log records, optionally for one run (id or prefix)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			var prefix string
			if len(args) == 1 {
				prefix = args[0]
			}
			path := filepath.Join(cfg.Paths.LogDir, logging.LogFileName)
			out := cmd.OutOrStdout()
			emit := func(batch []string) {
				for _, line := range batch {
					if raw {
						fmt.Fprintln(out, line)
						continue
					}
					entry, err := logs.ParseEntry(line)
					if err != nil {
						fmt.Fprintln(out, line)
						continue
					}
					fmt.Fprintln(out, entry.Format())
				}
			}

			opts := logs.TailOptions{Offset: -1, Limit: lines, Match: logs.MatchRun(prefix)}
			result, err := logs.Tail(cmd.Context(), path, opts)
			if err != nil {
				return err
			}
			emit(result.Lines)
			for follow {
				opts.Offset = result.Offset
				opts.Follow = true
				opts.Wait = 2 * time.Second
				result, err = logs.Tail(cmd.Context(), path, opts)
				if err != nil {
					if cmd.Context().Err() != nil {
						return nil
					}
					return err
				}
				emit(result.Lines)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&lines, "lines", "n", 50, "Number of records to show")
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Keep printing new records until interrupted")
	cmd.Flags().BoolVar(&raw, "raw", false, "Print the JSON records unmodified")
	return cmd
}
