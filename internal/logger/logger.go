package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation parameters for serve-mode log files.
const (
	DefaultMaxSizeMB  = 10 // MB
	DefaultMaxBackups = 3  // number of backup files
	DefaultMaxAgeDays = 7  // days
)

// Config describes the serve-mode log destination. When Path is empty
// and Dir is set, the file is Dir/<name>.log. Rotation parameters
// follow lumberjack semantics. Per-task minutes logs are NOT routed
// through here: the dispatcher appends those to a plain file so the
// extraction log stays a single append-only stream.
type Config struct {
	Dir        string `toml:"dir" mapstructure:"dir"`
	Path       string `toml:"path" mapstructure:"path"`
	Level      string `toml:"level" mapstructure:"level"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
}

// Writer returns a rotating io.WriteCloser for the given component
// name, or nil when no destination is configured.
func (c Config) Writer(name string) io.WriteCloser {
	path := c.Path
	if path == "" && c.Dir != "" {
		path = filepath.Join(c.Dir, name+".log")
	}
	if path == "" {
		return nil
	}
	return &lj.Logger{
		Filename:   path,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}
}

// New builds a slog.Logger for the config: colored text on stderr when
// no file destination is set, plain text into the rotating file
// otherwise.
func (c Config) New(name string) *slog.Logger {
	level := parseLevel(c.Level)
	if w := c.Writer(name); w != nil {
		return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	}
	return slog.New(NewColorTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}, true))
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func valOr(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
