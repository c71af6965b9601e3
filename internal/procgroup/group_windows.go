//go:build windows

package procgroup

import (
	"fmt"
	"os"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
)

type jobGroup struct {
	mu       sync.Mutex
	job      windows.Handle
	assigned bool
	closed   bool
}

func newGroup(opts Options) (Group, error) {
	var name *uint16
	if opts.Name != "" {
		p, err := windows.UTF16PtrFromString(opts.Name)
		if err != nil {
			return nil, fmt.Errorf("job name %q: %w", opts.Name, err)
		}
		name = p
	}
	job, err := windows.CreateJobObject(nil, name)
	if err != nil {
		return nil, os.NewSyscallError("CreateJobObject", err)
	}
	// every member dies when the last job handle is closed
	var info windows.JOBOBJECT_EXTENDED_LIMIT_INFORMATION
	info.BasicLimitInformation.LimitFlags = windows.JOB_OBJECT_LIMIT_KILL_ON_JOB_CLOSE
	if _, err := windows.SetInformationJobObject(
		job,
		windows.JobObjectExtendedLimitInformation,
		uintptr(unsafe.Pointer(&info)),
		uint32(unsafe.Sizeof(info)),
	); err != nil {
		_ = windows.CloseHandle(job)
		return nil, os.NewSyscallError("SetInformationJobObject", err)
	}
	return &jobGroup{job: job}, nil
}

func (g *jobGroup) Assign(p *os.Process) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return os.ErrClosed
	}
	h, err := windows.OpenProcess(windows.PROCESS_SET_QUOTA|windows.PROCESS_TERMINATE, false, uint32(p.Pid))
	if err != nil {
		return os.NewSyscallError("OpenProcess", err)
	}
	defer func() { _ = windows.CloseHandle(h) }()
	if err := windows.AssignProcessToJobObject(g.job, h); err != nil {
		return os.NewSyscallError("AssignProcessToJobObject", err)
	}
	g.assigned = true
	return nil
}

func (g *jobGroup) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		return nil
	}
	g.closed = true
	if err := windows.CloseHandle(g.job); err != nil {
		return os.NewSyscallError("CloseHandle", err)
	}
	return nil
}

func (g *jobGroup) Isolated() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.assigned
}
