package history

import (
	"context"
	"time"
)

// EventType defines the kind of launch event.
type EventType string

const (
	EventStart EventType = "start"
	EventExit  EventType = "exit"
)

// Record describes one launch of the wrapped program.
type Record struct {
	Launcher    string    `json:"launcher"`
	Target      string    `json:"target"`
	CommandLine string    `json:"command_line"`
	PID         int       `json:"pid"`
	StartedAt   time.Time `json:"started_at,omitzero"`
	ExitedAt    time.Time `json:"exited_at,omitzero"`
	ExitCode    int       `json:"exit_code"`
	Isolated    bool      `json:"isolated"`
	Error       string    `json:"error,omitempty"`
}

// Event is a launch lifecycle event exported to an external journal.
type Event struct {
	Type       EventType `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Record     Record    `json:"record"`
}

// Sink is a destination for launch events.
type Sink interface {
	Send(ctx context.Context, e Event) error
	Close() error
}

// nullString maps "" to SQL NULL.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Args returns the column values shared by the SQL sinks, in the order
// type, occurred_at, launcher, target, command_line, pid, exit_code,
// isolated, error.
func (e Event) Args() []any {
	r := e.Record
	return []any{string(e.Type), e.OccurredAt.UTC(), r.Launcher, r.Target, r.CommandLine,
		r.PID, r.ExitCode, r.Isolated, nullString(r.Error)}
}
