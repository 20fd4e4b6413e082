package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/Zuo-Peng/ai-session-dataset/internal/history"
	"github.com/spf13/cobra"
)

func historyCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded collect and merge runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return err
			}
			if e.cfg.HistoryDB == "" {
				return fmt.Errorf("history is disabled (history_db is empty)")
			}
			if _, err := os.Stat(e.cfg.HistoryDB); os.IsNotExist(err) {
				fmt.Fprintln(cmd.ErrOrStderr(), "No runs recorded yet.")
				return nil
			}

			db, err := history.OpenDB(e.cfg.HistoryDB)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			runs, err := db.ListRuns(limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			if len(runs) == 0 {
				fmt.Fprintln(cmd.ErrOrStderr(), "No runs recorded yet.")
				return nil
			}

			w := cmd.OutOrStdout()
			for _, r := range runs {
				output := r.Output
				if output == "" {
					output = "<stdout>"
				}
				fmt.Fprintf(w, "%s\t%s\t%-7s\ttotal=%d uuid_dupes=%d content_dupes=%d kept=%d malformed=%d\t%s -> %s\n",
					shortID(r.ID),
					r.StartedAt.Local().Format("2006-01-02 15:04:05"),
					r.Command,
					r.Total, r.UUIDDupes, r.ContentDupes, r.Kept, r.Malformed,
					strings.Join(r.Inputs, ","),
					output,
				)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Max runs to show (0 = all)")

	return cmd
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
