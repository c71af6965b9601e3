package launcher

import (
	"errors"
	"os"

	"github.com/loykin/launchstub/internal/procgroup"
)

// resources owns the OS handles acquired during a launch. release frees
// them once, in order: interrupt relay, group (which kills leftover
// members), then the child's process handle. It is deferred right after
// the group is created so every return path runs it.
type resources struct {
	stop     func()
	group    procgroup.Group
	proc     *os.Process
	closed   bool
	released bool
}

// closeGroup stops the relay and closes the group. Run calls it early
// when the child has exited but is not reaped yet.
func (r *resources) closeGroup() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.stop != nil {
		r.stop()
	}
	if r.group != nil {
		if err := r.group.Close(); err != nil {
			return &DegradedError{Op: "close group", Err: err}
		}
	}
	return nil
}

func (r *resources) release() error {
	if r.released {
		return nil
	}
	r.released = true
	var errs []error
	if err := r.closeGroup(); err != nil {
		errs = append(errs, err)
	}
	if r.proc != nil {
		// Wait already released the handle on most platforms
		if err := r.proc.Release(); err != nil && !errors.Is(err, os.ErrProcessDone) {
			errs = append(errs, &DegradedError{Op: "release process", Err: err})
		}
	}
	return errors.Join(errs...)
}
