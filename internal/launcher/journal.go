package launcher

import (
	"context"
	"time"

	"github.com/loykin/launchstub/internal/history"
)

// journal writes start and exit events to an optional history sink.
// Sink failures never affect the launch.
type journal struct {
	sink    history.Sink
	timeout time.Duration
	rec     history.Record
}

func (j *journal) send(ctx context.Context, t history.EventType, at time.Time) error {
	if j.sink == nil {
		return nil
	}
	if j.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.timeout)
		defer cancel()
	}
	e := history.Event{Type: t, OccurredAt: at, Record: j.rec}
	if err := j.sink.Send(ctx, e); err != nil {
		return &DegradedError{Op: "history " + string(t), Err: err}
	}
	return nil
}
