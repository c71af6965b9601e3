//go:build unix

package launcher

import (
	"os/exec"
	"syscall"

	"github.com/loykin/launchstub/internal/cmdline"
)

// command hands the composed line to the child as argv: the target path
// kept whole, then the arguments split at whitespace. A Windows child
// would instead split an unquoted target at its first space.
func command(line cmdline.Line) *exec.Cmd {
	return &exec.Cmd{Path: line.Target, Args: line.Argv()}
}

// exitCode reports a signalled child the way a shell does.
func exitCode(ws syscall.WaitStatus) int {
	if ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return ws.ExitStatus()
}
