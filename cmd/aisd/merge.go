package main

import (
	"time"

	"github.com/Zuo-Peng/ai-session-dataset/internal/history"
	"github.com/Zuo-Peng/ai-session-dataset/internal/merge"
	"github.com/spf13/cobra"
)

func mergeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "merge <file>...",
		Short: "Merge JSONL record files, dropping duplicate turns",
		Long: `Merges the given files in order. A record is dropped when its uuid was already
seen, or when an earlier record had the same timestamp, role and first 500
characters of content. Kept records are written unchanged; the summary goes
to stderr once every file has been read.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}

			out, err := createOutput(opts.output, cmd.OutOrStdout())
			if err != nil {
				return err
			}
			defer out.Abort()

			started := time.Now()
			m := merge.New(merge.WithPolicy(e.policy), merge.WithLogger(e.logger))
			if err := m.MergeFiles(args, out); err != nil {
				return err
			}
			if err := out.Commit(); err != nil {
				return err
			}

			stats := m.Stats()
			if err := stats.WriteSummary(cmd.ErrOrStderr()); err != nil {
				return err
			}
			e.logger.Debug("merge finished", "stats", stats.String())

			e.recordRun(history.Run{
				Command:      "merge",
				StartedAt:    started,
				Inputs:       args,
				Output:       opts.output,
				Total:        stats.Total,
				UUIDDupes:    stats.UUIDDupes,
				ContentDupes: stats.ContentDupes,
				Kept:         stats.Kept,
				Malformed:    stats.Malformed,
			})
			return nil
		},
	}
}
