// Package launchstub runs a renamed sibling executable with a prepared
// search path and interpreter home, inside an isolation group, and exits
// with the child's status.
package launchstub

import (
	"context"
	"io"

	"github.com/loykin/launchstub/internal/config"
	"github.com/loykin/launchstub/internal/history"
	"github.com/loykin/launchstub/internal/history/factory"
	"github.com/loykin/launchstub/internal/launcher"
	"github.com/loykin/launchstub/internal/location"
	"github.com/loykin/launchstub/internal/logger"
	"github.com/loykin/launchstub/internal/metrics"
)

// Re-export core types for external consumers.

type Config = config.Config

type SetupError = launcher.SetupError

type DegradedError = launcher.DegradedError

type HistorySink = history.Sink

func LoadConfig(path string) (Config, error) { return config.LoadFile(path) }

// NewHistorySink opens the journal named by dsn. ctx bounds the connect.
func NewHistorySink(ctx context.Context, dsn string) (HistorySink, error) {
	return factory.NewSinkFromDSN(ctx, dsn)
}

// Launch locates the running executable, loads its configuration and
// runs the wrapped program with args. It returns the child's exit code,
// or 1 and a *SetupError if the launch could not be set up. Diagnostics
// go to stderr only when debug logging is enabled.
func Launch(ctx context.Context, args []string, stderr io.Writer) (int, error) {
	loc, err := location.Locate()
	if err != nil {
		return 1, launcher.Fail("locate", "GetModuleFileName", err)
	}
	return launch(ctx, loc, args, stderr)
}

func launch(ctx context.Context, loc location.Location, args []string, stderr io.Writer, extra ...launcher.Option) (int, error) {
	cfg, err := config.Load(loc)
	if err != nil {
		return 1, launcher.Fail("config", "config.Load("+config.FilePath(loc)+")", err)
	}

	log, closer := logger.New(cfg.Logger(), stderr)
	defer func() { _ = closer.Close() }()

	opts := []launcher.Option{launcher.WithLogger(log), launcher.WithLocation(loc)}

	if cfg.Metrics.Textfile != "" {
		rec := metrics.New(cfg.TargetName(loc))
		opts = append(opts, launcher.WithMetrics(rec))
		defer func() {
			if err := rec.WriteTextfile(cfg.Metrics.Textfile); err != nil {
				log.Warn("degraded", "error", &launcher.DegradedError{Op: "write metrics", Err: err})
			}
		}()
	}

	if cfg.History.DSN != "" {
		sink, err := openHistory(ctx, cfg)
		if err != nil {
			log.Warn("degraded", "error", &launcher.DegradedError{Op: "open history", Err: err})
		} else {
			defer func() { _ = sink.Close() }()
			opts = append(opts, launcher.WithHistory(sink))
		}
	}

	return launcher.New(cfg, append(opts, extra...)...).Run(ctx, args)
}

// openHistory opens the journal before the child is spawned, so it gets
// the same bound as every journal write.
func openHistory(ctx context.Context, cfg config.Config) (history.Sink, error) {
	if cfg.History.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.History.Timeout)
		defer cancel()
	}
	return factory.NewSinkFromDSN(ctx, cfg.History.DSN)
}
