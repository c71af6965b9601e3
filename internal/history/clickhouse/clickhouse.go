package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"github.com/loykin/launchstub/internal/history"
)

// Sink sends events to ClickHouse using the official ClickHouse Go client.
// The table must exist with columns matching history.Event.Args; see
// EnsureTable.
type Sink struct {
	conn  driver.Conn
	table string
}

// Options selects the server and table.
type Options struct {
	Addr     string
	Database string
	Username string
	Password string
	Table    string
	Create   bool // create the table on connect if it is missing
	// DialTimeout bounds the connect and the handshake. Zero takes the
	// time left before the deadline of the ctx given to New.
	DialTimeout time.Duration
}

func New(ctx context.Context, opts Options) (*Sink, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if opts.Database == "" {
		opts.Database = "default"
	}
	if opts.Username == "" {
		opts.Username = "default"
	}
	if deadline, ok := ctx.Deadline(); ok && opts.DialTimeout <= 0 {
		opts.DialTimeout = time.Until(deadline)
	}
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{opts.Addr},
		Auth: clickhouse.Auth{
			Database: opts.Database,
			Username: opts.Username,
			Password: opts.Password,
		},
		DialTimeout: opts.DialTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}
	s := &Sink{conn: conn, table: opts.Table}
	if opts.Create {
		if err := s.EnsureTable(ctx); err != nil {
			_ = conn.Close()
			return nil, err
		}
	}
	return s, nil
}

// EnsureTable creates the history table if it does not exist.
func (s *Sink) EnsureTable(ctx context.Context) error {
	err := s.conn.Exec(ctx, `CREATE TABLE IF NOT EXISTS `+s.table+` (
		type LowCardinality(String),
		occurred_at DateTime64(6),
		launcher String,
		target String,
		command_line String,
		pid Int64,
		exit_code Int64,
		isolated Bool,
		error Nullable(String)
	) ENGINE = MergeTree()
	ORDER BY (occurred_at, target)`)
	if err != nil {
		return fmt.Errorf("failed to create ClickHouse table %s: %w", s.table, err)
	}
	return nil
}

func (s *Sink) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// Query renders the insert statement for the configured table.
func (s *Sink) Query() string {
	return fmt.Sprintf(`INSERT INTO %s (type, occurred_at, launcher, target, command_line, pid, exit_code, isolated, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`, s.table)
}

func (s *Sink) Send(ctx context.Context, e history.Event) error {
	if err := s.conn.Exec(ctx, s.Query(), e.Args()...); err != nil {
		return fmt.Errorf("failed to insert event into ClickHouse: %w", err)
	}
	return nil
}
