package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Zuo-Peng/ai-session-dataset/internal/history"
	"github.com/Zuo-Peng/ai-session-dataset/internal/parse"
	"github.com/Zuo-Peng/ai-session-dataset/internal/scan"
	"github.com/spf13/cobra"
)

func collectCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "collect [root]",
		Short: "Normalize every session under a projects root into one JSONL stream",
		Long: `Reads every session file in each project directory directly under root
(default: claude_root from config, ~/.claude/projects) and writes one normalized
record per user or assistant turn.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := ""
			if len(args) == 1 {
				root = args[0]
			}
			return runCollect(cmd, opts, root)
		},
	}
}

func runCollect(cmd *cobra.Command, opts *rootOptions, root string) error {
	e, err := loadEnv(cmd, opts)
	if err != nil {
		return err
	}
	if root == "" {
		root = e.cfg.ClaudeRoot
	}

	matcher, err := scan.NewMatcher(e.cfg.SessionPattern)
	if err != nil {
		return err
	}
	reader := parse.NewReader(e.policy, e.logger)
	collector := scan.NewCollector(reader, matcher)

	out, err := createOutput(opts.output, cmd.OutOrStdout())
	if err != nil {
		return err
	}
	defer out.Abort()

	started := time.Now()
	e.logger.Debug("collecting", "root", root, "pattern", matcher.String())

	enc := json.NewEncoder(out)
	enc.SetEscapeHTML(false)
	count := 0
	for rec, err := range collector.Collect(root) {
		if err != nil {
			return fmt.Errorf("collect: %w", err)
		}
		if err := enc.Encode(rec); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		count++
	}
	if err := out.Commit(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Collected %d records from %d session files", count, collector.Files())
	if n := reader.Skipped(); n > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), " (%d malformed lines skipped)", n)
	}
	fmt.Fprintln(cmd.ErrOrStderr())

	e.recordRun(history.Run{
		Command:   "collect",
		StartedAt: started,
		Inputs:    []string{root},
		Output:    opts.output,
		Total:     count,
		Kept:      count,
		Malformed: reader.Skipped(),
	})
	return nil
}
