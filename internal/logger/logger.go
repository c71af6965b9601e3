package logger

import (
	"context"
	"errors"
	"io"
	"log/slog"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default logging configuration constants
const (
	DefaultMaxSizeMB  = 10 // MB
	DefaultMaxBackups = 3  // number of backup files
	DefaultMaxAgeDays = 7  // days
)

// FileConfig describes the rotating diagnostic log file.
// Rotation parameters follow lumberjack semantics.
type FileConfig struct {
	Path       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`  // megabytes before rotation (default 10)
	MaxBackups int    `mapstructure:"max_backups"`  // number of backups to keep (default 3)
	MaxAgeDays int    `mapstructure:"max_age_days"` // days to keep (default 7)
	Compress   bool   `mapstructure:"compress"`     // gzip rotated files
}

// Config selects where launcher diagnostics go. The wrapped program's
// output never passes through here.
type Config struct {
	Debug bool       // debug trace on stderr
	File  FileConfig // JSON records into a rotating file
}

// Enabled reports whether any diagnostic output is configured.
func (c Config) Enabled() bool { return c.Debug || c.File.Path != "" }

// Writer returns a rotating writer for the log file, or nil when no file
// is configured.
func (c Config) Writer() io.WriteCloser {
	if c.File.Path == "" {
		return nil
	}
	return &lj.Logger{
		Filename:   c.File.Path,
		MaxSize:    valOr(c.File.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.File.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.File.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.File.Compress,
	}
}

// New builds the launcher logger. With neither Debug nor a file it
// discards everything, keeping the launcher silent in production.
// The returned closer releases the log file.
func New(c Config, stderr io.Writer) (*slog.Logger, io.Closer) {
	var hs []slog.Handler
	if c.Debug {
		hs = append(hs, slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}
	var closer io.Closer = nopCloser{}
	if w := c.Writer(); w != nil {
		hs = append(hs, slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
		closer = w
	}
	switch len(hs) {
	case 0:
		return slog.New(slog.DiscardHandler), closer
	case 1:
		return slog.New(hs[0]), closer
	}
	return slog.New(fanout(hs)), closer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// fanout sends each record to every handler.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
