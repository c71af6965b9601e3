//go:build windows

package procgroup

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/windows"
)

// configureSysProcAttr keeps any existing CmdLine and adds the creation
// flags. A launcher watched by the Program Compatibility Assistant sits in
// a compatibility job; the child must break away from it before it can
// join ours.
func configureSysProcAttr(cmd *exec.Cmd, opts Options) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	if opts.Breakaway {
		cmd.SysProcAttr.CreationFlags |= windows.CREATE_BREAKAWAY_FROM_JOB
	}
}
