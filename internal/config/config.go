package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/Zuo-Peng/ai-session-dataset/internal/jsonl"
	"github.com/Zuo-Peng/ai-session-dataset/internal/scan"
)

type Config struct {
	ClaudeRoot     string `toml:"claude_root"`
	SessionPattern string `toml:"session_pattern"`
	OnMalformed    string `toml:"on_malformed"` // "abort" or "skip"
	HistoryDB      string `toml:"history_db"`   // "" disables the run ledger
	LogLevel       string `toml:"log_level"`
}

// DefaultPath is where Load looks for the config file.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "aisd", "config.toml"), nil
}

// Load reads the default config file if it exists.
func Load() (*Config, error) {
	path, err := DefaultPath()
	if err != nil {
		return nil, err
	}
	return LoadFile(path, false)
}

// LoadFile reads the config at path over the defaults. A missing file is an
// error only when required is set. Values are not validated here so callers
// can apply overrides first; call Validate afterwards.
func LoadFile(path string, required bool) (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		ClaudeRoot:     filepath.Join(home, ".claude", "projects"),
		SessionPattern: scan.DefaultPattern,
		OnMalformed:    "abort",
		HistoryDB:      filepath.Join(home, ".config", "aisd", "history.db"),
		LogLevel:       "info",
	}

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	} else if required {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}

	// expand ~ in paths
	cfg.ClaudeRoot = expandHome(cfg.ClaudeRoot, home)
	cfg.HistoryDB = expandHome(cfg.HistoryDB, home)

	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := c.Policy(); err != nil {
		return err
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if _, err := scan.NewMatcher(c.SessionPattern); err != nil {
		return err
	}
	return nil
}

func (c *Config) Policy() (jsonl.Policy, error) {
	return jsonl.ParsePolicy(c.OnMalformed)
}

func (c *Config) Level() (slog.Level, error) {
	s := strings.TrimSpace(c.LogLevel)
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

func expandHome(path, home string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		return filepath.Join(home, path[2:])
	}
	return path
}
