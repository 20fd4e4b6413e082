package main

import (
	"fmt"
	"io"
	"os"

	"github.com/Zuo-Peng/ai-session-dataset/internal/history"
	"github.com/Zuo-Peng/ai-session-dataset/internal/scan"
	"github.com/spf13/cobra"
)

func doctorCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Self-check: verify root, session files and history DB",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv(cmd, opts)
			if err != nil {
				return fmt.Errorf("config: %w", err)
			}
			w := cmd.OutOrStdout()

			fmt.Fprintln(w, "=== Config ===")
			fmt.Fprintf(w, "  Session pattern: %s\n", e.cfg.SessionPattern)
			fmt.Fprintf(w, "  On malformed:    %s\n", e.policy)

			fmt.Fprintln(w, "\n=== Root ===")
			checkDir(w, "Claude", e.cfg.ClaudeRoot)

			fmt.Fprintln(w, "\n=== Session Scan ===")
			matcher, err := scan.NewMatcher(e.cfg.SessionPattern)
			if err != nil {
				return err
			}
			files, err := scan.ScanRoot(e.cfg.ClaudeRoot, matcher)
			if err != nil {
				fmt.Fprintf(w, "  scan error: %v\n", err)
			} else {
				projects := make(map[string]struct{})
				var size int64
				for _, f := range files {
					projects[f.Project] = struct{}{}
					size += f.Size
				}
				fmt.Fprintf(w, "  Projects with sessions: %d\n", len(projects))
				fmt.Fprintf(w, "  Session files:          %d\n", len(files))
				fmt.Fprintf(w, "  Total size:             %.1f MB\n", float64(size)/1024/1024)
			}

			fmt.Fprintln(w, "\n=== History ===")
			if e.cfg.HistoryDB == "" {
				fmt.Fprintln(w, "  Status: DISABLED")
				return nil
			}
			fmt.Fprintf(w, "  Path: %s\n", e.cfg.HistoryDB)
			if _, err := os.Stat(e.cfg.HistoryDB); os.IsNotExist(err) {
				fmt.Fprintln(w, "  Status: NOT FOUND (created on the first run)")
				return nil
			}

			db, err := history.OpenDB(e.cfg.HistoryDB)
			if err != nil {
				return fmt.Errorf("open db: %w", err)
			}
			defer db.Close()

			count, err := db.RunCount()
			if err != nil {
				return fmt.Errorf("count runs: %w", err)
			}
			ver, err := db.SchemaVersion()
			if err != nil {
				return fmt.Errorf("schema version: %w", err)
			}
			fmt.Fprintf(w, "  Runs:   %d\n", count)
			fmt.Fprintf(w, "  Schema: v%s\n", ver)
			return nil
		},
	}
}

func checkDir(w io.Writer, name, path string) {
	if info, err := os.Stat(path); err != nil {
		fmt.Fprintf(w, "  %s: %s (NOT FOUND)\n", name, path)
	} else if !info.IsDir() {
		fmt.Fprintf(w, "  %s: %s (NOT A DIRECTORY)\n", name, path)
	} else {
		fmt.Fprintf(w, "  %s: %s (OK)\n", name, path)
	}
}
