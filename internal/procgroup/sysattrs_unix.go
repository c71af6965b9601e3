//go:build unix

package procgroup

import (
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// configureSysProcAttr puts the child in a new process group so the whole
// tree can be signalled and reaped together. When the launcher owns the
// terminal the new group takes it over, or the child's first read of the
// terminal would stop it with SIGTTIN.
func configureSysProcAttr(cmd *exec.Cmd, _ Options) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setpgid = true
	if fd, ok := foregroundTerminal(cmd.Stdin); ok {
		cmd.SysProcAttr.Foreground = true
		cmd.SysProcAttr.Ctty = fd
	}
	setParentDeathSignal(cmd.SysProcAttr)
}

// foregroundTerminal returns the descriptor of in when it is the
// launcher's controlling terminal and the launcher's group is in the
// foreground on it. A launcher started in the background leaves the
// terminal alone.
func foregroundTerminal(in any) (int, bool) {
	f, ok := in.(*os.File)
	if !ok || f == nil {
		return 0, false
	}
	fd := int(f.Fd())
	if !term.IsTerminal(fd) {
		return 0, false
	}
	pgrp, err := unix.IoctlGetInt(fd, unix.TIOCGPGRP)
	if err != nil || pgrp != unix.Getpgrp() {
		return 0, false
	}
	return fd, true
}
