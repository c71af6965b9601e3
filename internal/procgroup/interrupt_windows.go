//go:build windows

package procgroup

import (
	"os"
	"os/exec"
	"os/signal"
	"sync"

	"golang.org/x/sys/windows"
)

var (
	kernel32                  = windows.NewLazySystemDLL("kernel32.dll")
	procSetConsoleCtrlHandler = kernel32.NewProc("SetConsoleCtrlHandler")
)

// PassInterrupts stops the launcher from reacting to console interrupts so
// they only act on the child, which shares the console. It must run after
// the child is created: the ignore flag is inherited by new processes.
func PassInterrupts(*exec.Cmd) (func(), error) {
	// Ctrl-Break still reaches the runtime's handler; swallow it here.
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	done := make(chan struct{})
	go func() {
		for {
			select {
			case <-ch:
			case <-done:
				return
			}
		}
	}()
	var once sync.Once
	stop := func() {
		once.Do(func() {
			signal.Stop(ch)
			close(done)
		})
	}
	// SetConsoleCtrlHandler(NULL, TRUE): ignore Ctrl-C in this process
	if r, _, err := procSetConsoleCtrlHandler.Call(0, 1); r == 0 {
		return stop, os.NewSyscallError("SetConsoleCtrlHandler", err)
	}
	return stop, nil
}
