//go:build unix

package procgroup

import (
	"bufio"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestPrepareSetsPgid(t *testing.T) {
	cmd := exec.Command("true")
	Prepare(cmd, Options{})
	require.NotNil(t, cmd.SysProcAttr)
	assert.True(t, cmd.SysProcAttr.Setpgid)
}

func alive(pid int) bool {
	if unix.Kill(pid, 0) != nil {
		return false
	}
	// a zombie still answers kill(0); look at its state where /proc exists
	b, err := os.ReadFile("/proc/" + strconv.Itoa(pid) + "/stat")
	if err != nil {
		return true
	}
	fields := strings.Fields(string(b))
	return len(fields) < 3 || fields[2] != "Z"
}

func TestCloseKillsOrphanedGrandchild(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	// the child leaves a sleeping grandchild behind and exits at once
	cmd := exec.Command("sh", "-c", "sleep 30 & echo $!")
	out, err := cmd.StdoutPipe()
	require.NoError(t, err)
	Prepare(cmd, Options{})

	g, err := New(Options{})
	require.NoError(t, err)
	require.NoError(t, cmd.Start())
	require.NoError(t, g.Assign(cmd.Process))
	assert.True(t, g.Isolated())

	line, err := bufio.NewReader(out).ReadString('\n')
	require.NoError(t, err)
	grandchild, err := strconv.Atoi(strings.TrimSpace(line))
	require.NoError(t, err)
	require.NoError(t, cmd.Wait())

	require.True(t, alive(grandchild), "grandchild should outlive the child")
	require.NoError(t, g.Close())

	deadline := time.Now().Add(5 * time.Second)
	for alive(grandchild) && time.Now().Before(deadline) {
		time.Sleep(20 * time.Millisecond)
	}
	assert.False(t, alive(grandchild), "grandchild survived group close")
	assert.NoError(t, g.Close())
}

func TestAssignAfterClose(t *testing.T) {
	g, err := New(Options{})
	require.NoError(t, err)
	require.NoError(t, g.Close())
	assert.ErrorIs(t, g.Assign(&os.Process{Pid: os.Getpid()}), os.ErrClosed)
}

func TestPassInterruptsRelaysToGroup(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	cmd := exec.Command("sleep", "30")
	Prepare(cmd, Options{})
	require.NoError(t, cmd.Start())
	defer func() { _ = cmd.Process.Kill() }()

	stop, err := PassInterrupts(cmd)
	require.NoError(t, err)
	defer stop()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()
	select {
	case err := <-done:
		require.Error(t, err)
		ws := cmd.ProcessState.Sys().(syscall.WaitStatus)
		assert.True(t, ws.Signaled())
		assert.Equal(t, syscall.SIGINT, ws.Signal())
	case <-time.After(5 * time.Second):
		t.Fatal("child did not receive the relayed interrupt")
	}
	stop()
}

func TestPrepareLeavesPipedChildInBackground(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	defer func() { _ = r.Close(); _ = w.Close() }()

	for _, in := range []io.Reader{nil, strings.NewReader("x"), r} {
		cmd := exec.Command("true")
		cmd.Stdin = in
		Prepare(cmd, Options{})
		assert.False(t, cmd.SysProcAttr.Foreground, "%T", in)
		assert.True(t, cmd.SysProcAttr.Setpgid)
	}
}

func TestPassInterruptsSwallowsKeyboardSignalsInForeground(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	cmd := exec.Command("sleep", "30")
	Prepare(cmd, Options{})
	require.NoError(t, cmd.Start())
	defer func() { _ = cmd.Process.Kill() }()

	// as if Prepare had handed the child the terminal; -1 is never a
	// terminal, so giving it back on stop fails quietly
	cmd.SysProcAttr.Foreground = true
	cmd.SysProcAttr.Ctty = -1
	stop, err := PassInterrupts(cmd)
	require.NoError(t, err)
	defer stop()

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGINT))
	select {
	case <-done:
		t.Fatal("keyboard interrupt was relayed to a foreground child")
	case <-time.After(300 * time.Millisecond):
	}

	require.NoError(t, syscall.Kill(os.Getpid(), syscall.SIGTERM))
	select {
	case <-done:
		ws := cmd.ProcessState.Sys().(syscall.WaitStatus)
		assert.True(t, ws.Signaled())
		assert.Equal(t, syscall.SIGTERM, ws.Signal())
	case <-time.After(5 * time.Second):
		t.Fatal("child did not receive the relayed terminate")
	}
}
