//go:build unix

package procgroup

import (
	"errors"
	"os"
	"os/exec"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
)

var (
	// relayed are the signals a terminal or supervisor sends to end a job.
	relayed = []os.Signal{unix.SIGINT, unix.SIGTERM, unix.SIGHUP, unix.SIGQUIT}
	// fromKeyboard reach a foreground child straight from the terminal.
	fromKeyboard = map[os.Signal]bool{unix.SIGINT: true, unix.SIGQUIT: true}
)

// PassInterrupts forwards interrupt-class signals received by the launcher
// to the child's process group. The child runs in its own group, so the
// terminal no longer signals it directly, unless Prepare handed it the
// terminal: then keyboard signals are swallowed instead of relayed so the
// child does not see them twice. The returned func stops relaying and
// takes the terminal back for the launcher's group.
func PassInterrupts(cmd *exec.Cmd) (func(), error) {
	pid := cmd.Process.Pid
	fg := cmd.SysProcAttr != nil && cmd.SysProcAttr.Foreground
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, relayed...)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case s := <-ch:
				if fg && fromKeyboard[s] {
					continue
				}
				relay(pid, s.(syscall.Signal))
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
			if fg {
				_ = reclaimTerminal(cmd.SysProcAttr.Ctty)
			}
		})
	}, nil
}

func relay(pid int, s syscall.Signal) {
	if err := unix.Kill(-pid, s); errors.Is(err, unix.ESRCH) {
		// not a group leader (or the group is gone): try the child alone
		_ = unix.Kill(pid, s)
	}
}

// reclaimTerminal makes the launcher's group the foreground group of fd
// again. The launcher is a background process at that point, so SIGTTOU
// is ignored for the call.
func reclaimTerminal(fd int) error {
	signal.Ignore(unix.SIGTTOU)
	defer signal.Reset(unix.SIGTTOU)
	if err := unix.IoctlSetPointerInt(fd, unix.TIOCSPGRP, unix.Getpgrp()); err != nil {
		return os.NewSyscallError("tcsetpgrp", err)
	}
	return nil
}
