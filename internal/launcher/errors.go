package launcher

import (
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"syscall"
)

// SetupError is a fatal launch failure. It records the failing operation,
// the expression that failed, where it was detected and the platform
// error code, and renders them as the single diagnostic line the
// launcher prints before exiting with status 1.
type SetupError struct {
	Op   string
	Expr string
	File string
	Line int
	Code int // syscall.Errno of the cause, 0 if none
	Err  error
}

// Fail builds a SetupError located at its caller.
func Fail(op, expr string, err error) *SetupError {
	e := &SetupError{Op: op, Expr: expr, Err: err}
	if _, file, line, ok := runtime.Caller(1); ok {
		e.File, e.Line = filepath.Base(file), line
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		e.Code = int(errno)
	}
	return e
}

func (e *SetupError) Error() string {
	msg := fmt.Sprintf("%s(%d)[%d]: expression \"%s\" fail. terminate.", e.File, e.Line, e.Code, e.Expr)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SetupError) Unwrap() error { return e.Err }

// DegradedError is a non-fatal failure: the child still runs, but without
// the isolation or bookkeeping Op would have provided.
type DegradedError struct {
	Op  string
	Err error
}

func (e *DegradedError) Error() string {
	return fmt.Sprintf("%s (continuing): %v", e.Op, e.Err)
}

func (e *DegradedError) Unwrap() error { return e.Err }
