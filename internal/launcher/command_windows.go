//go:build windows

package launcher

import (
	"os/exec"
	"syscall"

	"github.com/loykin/launchstub/internal/cmdline"
)

// command passes the composed text verbatim as the CreateProcess command
// line; Args is ignored by the runtime once CmdLine is set.
func command(line cmdline.Line) *exec.Cmd {
	return &exec.Cmd{
		Path:        line.Target,
		Args:        []string{line.Target},
		SysProcAttr: &syscall.SysProcAttr{CmdLine: line.Text},
	}
}

func exitCode(ws syscall.WaitStatus) int {
	return int(ws.ExitCode)
}
