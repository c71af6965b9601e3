package procgroup

import "syscall"

// setParentDeathSignal kills the child if the launcher dies without
// running Close, the closest Linux gets to a job closing with its owner.
// The signal is tied to the OS thread that forked the child, not to the
// launcher process: the caller must keep that thread alive, for example
// by staying locked to it until the child is reaped.
func setParentDeathSignal(a *syscall.SysProcAttr) {
	a.Pdeathsig = syscall.SIGKILL
}
