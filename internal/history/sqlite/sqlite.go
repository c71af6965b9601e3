package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/loykin/launchstub/internal/history"
)

// Sink writes launch events to a SQLite database.
type Sink struct {
	db *sql.DB
}

// New creates a new SQLite history sink. ctx bounds creating the schema.
// DSN format:
//   - "sqlite:///path/to/file.db"
//   - "sqlite://:memory:"
//   - "/path/to/file.db" (without prefix)
//   - ":memory:" (in-memory database)
func New(ctx context.Context, dsn string) (*Sink, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("empty SQLite DSN")
	}
	if strings.HasPrefix(strings.ToLower(dsn), "sqlite://") {
		dsn = dsn[len("sqlite://"):]
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// a single connection keeps :memory: databases and the pragma consistent
	db.SetMaxOpenConns(1)
	// concurrent launchers share the file; wait on the lock instead of failing
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout = 2000;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	sink := &Sink{db: db}
	if err := sink.ensureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return sink, nil
}

func (s *Sink) ensureSchema(ctx context.Context) error {
	stmt := `CREATE TABLE IF NOT EXISTS launch_history(
		type TEXT NOT NULL,
		occurred_at TIMESTAMP NOT NULL DEFAULT (CURRENT_TIMESTAMP),
		launcher TEXT NOT NULL,
		target TEXT NOT NULL,
		command_line TEXT NOT NULL,
		pid INTEGER NOT NULL,
		exit_code INTEGER NOT NULL,
		isolated BOOLEAN NOT NULL,
		error TEXT
	);`
	_, err := s.db.ExecContext(ctx, stmt)
	return err
}

func (s *Sink) Send(ctx context.Context, e history.Event) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO launch_history(type, occurred_at, launcher, target, command_line, pid, exit_code, isolated, error)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?);`, e.Args()...)
	return err
}

// DB exposes the handle for queries in tests and tooling.
func (s *Sink) DB() *sql.DB { return s.db }

func (s *Sink) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
