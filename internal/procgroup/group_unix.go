//go:build unix

package procgroup

import (
	"errors"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// pgroup tracks the process group created by Setpgid for the child.
type pgroup struct {
	mu     sync.Mutex
	pgid   int
	closed bool
}

func newGroup(Options) (Group, error) {
	return &pgroup{}, nil
}

func (g *pgroup) Assign(p *os.Process) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return os.ErrClosed
	}
	// Setpgid with Pgid 0 makes the child the leader of a group named after it.
	if pgid, err := unix.Getpgid(p.Pid); err == nil && pgid != p.Pid {
		return errors.New("child is not a process group leader")
	}
	g.pgid = p.Pid
	return nil
}

func (g *pgroup) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	if g.pgid <= 0 {
		return nil
	}
	err := unix.Kill(-g.pgid, unix.SIGKILL)
	if err != nil && !errors.Is(err, unix.ESRCH) {
		return os.NewSyscallError("kill", err)
	}
	return nil
}

func (g *pgroup) Isolated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pgid > 0
}
