// Package launcher runs the wrapped program: it prepares the environment,
// composes the command line, spawns the child inside an isolation group,
// waits for it and returns its exit code.
package launcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"runtime"
	"syscall"
	"time"

	"github.com/loykin/launchstub/internal/cmdline"
	"github.com/loykin/launchstub/internal/config"
	"github.com/loykin/launchstub/internal/env"
	"github.com/loykin/launchstub/internal/history"
	"github.com/loykin/launchstub/internal/location"
	"github.com/loykin/launchstub/internal/metrics"
	"github.com/loykin/launchstub/internal/procgroup"
)

// ioGrace bounds how long Wait keeps copying non-file stdio after the
// child exits, in case a descendant still holds the pipe.
const ioGrace = 2 * time.Second

// GroupFactory creates the isolation group for a launch.
type GroupFactory func(procgroup.Options) (procgroup.Group, error)

// Launcher runs one wrapped program. It is not safe for concurrent use;
// create one per launch.
type Launcher struct {
	cfg      config.Config
	log      *slog.Logger
	metrics  *metrics.Recorder
	history  history.Sink
	loc      *location.Location
	baseEnv  *env.Env
	newGroup GroupFactory
	stdin    io.Reader
	stdout   io.Writer
	stderr   io.Writer
	now      func() time.Time
	state    State
}

type Option func(*Launcher)

func WithLogger(l *slog.Logger) Option {
	return func(x *Launcher) {
		if l != nil {
			x.log = l
		}
	}
}

// WithMetrics records the launch into r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(x *Launcher) { x.metrics = r }
}

// WithHistory journals start and exit events into s.
func WithHistory(s history.Sink) Option {
	return func(x *Launcher) { x.history = s }
}

// WithLocation skips asking the OS for the launcher's own path.
func WithLocation(loc location.Location) Option {
	return func(x *Launcher) { x.loc = &loc }
}

// WithBaseEnv replaces the OS environment as the starting block.
func WithBaseEnv(e *env.Env) Option {
	return func(x *Launcher) { x.baseEnv = e }
}

func WithGroupFactory(f GroupFactory) Option {
	return func(x *Launcher) {
		if f != nil {
			x.newGroup = f
		}
	}
}

// WithStdio overrides the standard handles given to the child.
func WithStdio(in io.Reader, out, errw io.Writer) Option {
	return func(x *Launcher) { x.stdin, x.stdout, x.stderr = in, out, errw }
}

func New(cfg config.Config, opts ...Option) *Launcher {
	l := &Launcher{
		cfg:      cfg,
		log:      slog.New(slog.DiscardHandler),
		newGroup: procgroup.New,
		stdin:    os.Stdin,
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		now:      time.Now,
	}
	if l.cfg.CmdlineCapacity <= 0 {
		l.cfg.CmdlineCapacity = cmdline.DefaultCapacity
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// State returns the last state the launcher reached.
func (l *Launcher) State() State { return l.state }

func (l *Launcher) setState(s State) {
	l.state = s
	l.log.Debug("launch state", "state", s.String())
}

// degraded logs a non-fatal failure and counts it.
func (l *Launcher) degraded(err error) {
	if err == nil {
		return
	}
	var d *DegradedError
	if errors.As(err, &d) {
		l.metrics.IncDegraded(d.Op)
	}
	l.log.Warn("degraded", "error", err)
}

// Run launches the wrapped program with args (argv0 excluded) and blocks
// until it exits. It returns the child's exit code, or 1 and a
// *SetupError when a fatal step fails.
func (l *Launcher) Run(ctx context.Context, args []string) (code int, err error) {
	began := l.now()
	l.state = Idle
	l.metrics.IncLaunch()
	j := &journal{sink: l.history, timeout: l.cfg.History.Timeout}

	defer func() {
		var se *SetupError
		if errors.As(err, &se) {
			l.metrics.IncSetupFailure(se.Op)
			j.rec.ExitCode, j.rec.Error = code, se.Error()
			j.rec.ExitedAt = l.now()
			l.degraded(j.send(ctx, history.EventExit, j.rec.ExitedAt))
		}
	}()

	loc, err := l.location()
	if err != nil {
		return 1, err
	}
	j.rec.Launcher = loc.Path

	base := l.baseEnv
	if base == nil {
		base = env.FromOS()
	}
	b := l.cfg.EnvBuilder().WithDefaults()
	childEnv, err := b.Build(base, loc)
	if err != nil {
		return 1, Fail("environment", `lookup("`+b.PathVar+`")`, err)
	}
	if wd, werr := os.Getwd(); werr == nil {
		l.log.Debug("curdir", "dir", wd)
	}
	path, _ := childEnv.Lookup(b.PathVar)
	home, _ := childEnv.Lookup(b.HomeVar)
	l.log.Debug("environment", b.PathVar, path, b.HomeVar, home)
	l.setState(EnvironmentReady)

	target := loc.Rel(l.cfg.TargetName(loc))
	line, err := cmdline.Compose(target, args, l.cfg.CmdlineCapacity)
	if err != nil {
		if l.cfg.StrictCmdline {
			return 1, Fail("compose", "cmdline.Compose(target, args)", err)
		}
		l.log.Warn("command line truncated", "error", err)
	}
	j.rec.Target, j.rec.CommandLine = line.Target, line.Text
	l.log.Debug("command line", "cmd", line.Text, "truncated", line.Truncated)
	l.setState(CommandComposed)

	gopts := procgroup.Options{Name: l.cfg.JobName, Breakaway: l.cfg.Breakaway}
	group, gerr := l.newGroup(gopts)
	if gerr != nil {
		l.degraded(&DegradedError{Op: "create group", Err: gerr})
		group = procgroup.Disabled()
	}
	res := &resources{group: group}
	defer func() {
		// fatal paths only; the success path releases before returning
		_ = res.release()
	}()
	l.setState(GroupConfigured)

	cmd := command(line)
	cmd.Env = childEnv.Environ()
	cmd.Stdin, cmd.Stdout, cmd.Stderr = l.stdin, l.stdout, l.stderr
	cmd.WaitDelay = ioGrace
	procgroup.Prepare(cmd, gopts)

	// Linux sends the parent death signal when the thread that forked the
	// child exits. Holding that thread until the child is reaped stops
	// another goroutine from locking to it and retiring it.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	if err := cmd.Start(); err != nil {
		return 1, Fail("spawn", "CreateProcess("+line.Target+")", err)
	}
	started := l.now()
	res.proc = cmd.Process
	l.setState(ChildRunning)

	isolated := false
	if err := group.Assign(cmd.Process); err != nil {
		l.degraded(&DegradedError{Op: "assign group", Err: err})
	} else {
		isolated = group.Isolated()
	}
	stop, err := procgroup.PassInterrupts(cmd)
	if err != nil {
		l.degraded(&DegradedError{Op: "pass interrupts", Err: err})
	}
	res.stop = stop
	l.metrics.ObserveSetup(started.Sub(began))
	l.log.Debug("child started", "pid", cmd.Process.Pid, "isolated", isolated)

	j.rec.PID, j.rec.StartedAt, j.rec.Isolated = cmd.Process.Pid, started, isolated
	l.degraded(j.send(ctx, history.EventStart, started))

	if gone, err := awaitExit(cmd.Process); err != nil {
		l.degraded(&DegradedError{Op: "await exit", Err: err})
	} else if gone {
		// the exited child is not reaped yet and still pins its group id
		l.degraded(res.closeGroup())
	}
	code, ioErr, err := wait(cmd)
	if err != nil {
		return 1, Fail("wait", "GetExitCodeProcess", err)
	}
	if ioErr != nil {
		l.degraded(&DegradedError{Op: "copy stdio", Err: ioErr})
	}
	exited := l.now()
	l.setState(ChildExited)
	l.log.Debug("child exited", "code", code)

	l.degraded(res.release())
	l.setState(Cleaned)

	l.metrics.ObserveExit(code, exited.Sub(started), isolated, exited)
	j.rec.ExitCode, j.rec.ExitedAt = code, exited
	l.degraded(j.send(ctx, history.EventExit, exited))
	return code, nil
}

func (l *Launcher) location() (location.Location, error) {
	if l.loc != nil {
		return *l.loc, nil
	}
	loc, err := location.Locate()
	if err != nil {
		return location.Location{}, Fail("locate", "GetModuleFileName", err)
	}
	return loc, nil
}

// wait blocks without timeout until the child exits and returns its code.
// A Wait error is fatal only when no status could be read at all;
// otherwise it is a stdio copy problem reported as ioErr.
func wait(cmd *exec.Cmd) (code int, ioErr, err error) {
	werr := cmd.Wait()
	ps := cmd.ProcessState
	if ps == nil {
		if werr == nil {
			werr = errors.New("no process state")
		}
		return 0, nil, werr
	}
	var exitErr *exec.ExitError
	if werr != nil && !errors.As(werr, &exitErr) {
		ioErr = werr
	}
	if ws, ok := ps.Sys().(syscall.WaitStatus); ok {
		return exitCode(ws), ioErr, nil
	}
	return ps.ExitCode(), ioErr, nil
}
