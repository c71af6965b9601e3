// Package procgroup keeps a child process and everything it spawns inside
// one isolation group that is torn down when the launcher is done.
//
// On Windows the group is a job object with KILL_ON_JOB_CLOSE. Elsewhere
// it is the child's POSIX process group, killed on Close.
package procgroup

import (
	"os"
	"os/exec"
)

// Options configures group creation and the child's creation flags.
type Options struct {
	Name      string // job object name; empty creates an anonymous job
	Breakaway bool   // create the child outside any job the launcher is in
}

// Group is an isolation group for a child process tree.
type Group interface {
	// Assign binds a started process to the group.
	Assign(p *os.Process) error
	// Close releases the group exactly once, terminating any member still
	// alive. Later calls are no-ops.
	Close() error
	// Isolated reports whether Close will reap the child's descendants.
	Isolated() bool
}

// New creates an isolation group. A failure leaves nothing to release;
// callers fall back to Disabled.
func New(opts Options) (Group, error) {
	return newGroup(opts)
}

// Disabled returns a group that isolates nothing.
func Disabled() Group { return disabled{} }

type disabled struct{}

func (disabled) Assign(*os.Process) error { return nil }
func (disabled) Close() error             { return nil }
func (disabled) Isolated() bool           { return false }

// Prepare sets the platform creation attributes on cmd. It is applied
// whether or not a group could be created.
func Prepare(cmd *exec.Cmd, opts Options) {
	configureSysProcAttr(cmd, opts)
}
