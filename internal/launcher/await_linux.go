package launcher

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// awaitExit blocks until p exits but leaves it unreaped, so its pid and
// process group id cannot be handed out again before the group is closed.
func awaitExit(p *os.Process) (bool, error) {
	var info unix.Siginfo
	for {
		err := unix.Waitid(unix.P_PID, p.Pid, &info, unix.WEXITED|unix.WNOWAIT, nil)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return false, os.NewSyscallError("waitid", err)
		}
		return true, nil
	}
}
