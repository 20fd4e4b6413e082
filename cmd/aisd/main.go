package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/Zuo-Peng/ai-session-dataset/internal/config"
	"github.com/Zuo-Peng/ai-session-dataset/internal/history"
	"github.com/Zuo-Peng/ai-session-dataset/internal/jsonl"
	"github.com/spf13/cobra"
)

var version = "dev"

type rootOptions struct {
	output      string
	configPath  string
	onMalformed string
	logLevel    string
	noHistory   bool
}

// env is what every subcommand needs after flags and config are resolved.
type env struct {
	cfg    *config.Config
	policy jsonl.Policy
	logger *slog.Logger
	opts   *rootOptions
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "aisd",
		Short: "AI Session Dataset - collect and deduplicate Claude Code conversation logs",
		Long: `Collects Claude Code session logs into one normalized JSONL stream, and merges
such streams from several machines with duplicate turns removed.

Without a subcommand, aisd collects every session under the configured root.`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCollect(cmd, opts, "")
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&opts.output, "output", "o", "", "Output file (default: stdout)")
	pf.StringVar(&opts.configPath, "config", "", "Config file (default: ~/.config/aisd/config.toml)")
	pf.StringVar(&opts.onMalformed, "on-malformed", "", "Malformed line policy: abort or skip (overrides config)")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	pf.BoolVar(&opts.noHistory, "no-history", false, "Do not record this run in the history database")

	rootCmd.AddCommand(collectCmd(opts))
	rootCmd.AddCommand(mergeCmd(opts))
	rootCmd.AddCommand(historyCmd(opts))
	rootCmd.AddCommand(doctorCmd(opts))
	rootCmd.AddCommand(previewCmd(opts))
	rootCmd.AddCommand(viewCmd(opts))
	rootCmd.AddCommand(openCmd(opts))

	return rootCmd
}

func loadEnv(cmd *cobra.Command, opts *rootOptions) (*env, error) {
	var cfg *config.Config
	var err error
	if opts.configPath != "" {
		cfg, err = config.LoadFile(opts.configPath, true)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if opts.onMalformed != "" {
		cfg.OnMalformed = opts.onMalformed
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	policy, _ := cfg.Policy()
	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

	return &env{cfg: cfg, policy: policy, logger: logger, opts: opts}, nil
}

// recordRun writes a summary row to the history database. Failures are
// logged; they never fail a run that already produced its output.
func (e *env) recordRun(run history.Run) {
	if e.opts.noHistory || e.cfg.HistoryDB == "" {
		return
	}
	db, err := history.OpenDB(e.cfg.HistoryDB)
	if err != nil {
		e.logger.Warn("history unavailable", "path", e.cfg.HistoryDB, "error", err)
		return
	}
	defer db.Close()

	run.FinishedAt = time.Now()
	id, err := db.RecordRun(run)
	if err != nil {
		e.logger.Warn("history write failed", "error", err)
		return
	}
	e.logger.Debug("run recorded", "run_id", id)
}
