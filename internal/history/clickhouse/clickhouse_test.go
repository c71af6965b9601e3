package clickhouse

import (
	"context"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/clickhouse"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/loykin/launchstub/internal/history"
)

func TestSink_Query(t *testing.T) {
	s := &Sink{table: "launch_history"}
	q := s.Query()
	assert.Contains(t, q, "INSERT INTO launch_history (")
	assert.Contains(t, q, "command_line")
	assert.Equal(t, 9, strings.Count(q, "?"))
}

// setupClickHouse starts a ClickHouse container and returns its native
// protocol address.
func setupClickHouse(ctx context.Context, t *testing.T) string {
	t.Helper()
	c, err := clickhouse.Run(ctx,
		"clickhouse/clickhouse-server:24.3.2.23",
		clickhouse.WithUsername("default"),
		clickhouse.WithPassword(""),
		clickhouse.WithDatabase("default"),
		testcontainers.WithWaitStrategy(
			wait.ForHTTP("/ping").
				WithPort("8123/tcp").
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Skipf("ClickHouse container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := c.Terminate(context.Background()); err != nil {
			t.Errorf("Failed to terminate ClickHouse container: %v", err)
		}
	})

	host, err := c.Host(ctx)
	require.NoError(t, err)
	port, err := c.MappedPort(ctx, "9000")
	require.NoError(t, err)
	return host + ":" + port.Port()
}

func TestSink_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	ctx := context.Background()
	addr := setupClickHouse(ctx, t)

	sink, err := New(context.Background(), Options{Addr: addr, Table: "launch_history", Create: true})
	require.NoError(t, err)
	defer func() { assert.NoError(t, sink.Close()) }()

	rec := history.Record{
		Launcher:    "C:\\ndk\\prebuilt\\bin\\gdb.exe",
		Target:      "C:\\ndk\\prebuilt\\bin\\gdb-orig.exe",
		CommandLine: "C:\\ndk\\prebuilt\\bin\\gdb-orig.exe -x init.gdb ",
		PID:         1234,
		StartedAt:   time.Now().UTC(),
		Isolated:    true,
	}
	require.NoError(t, sink.Send(ctx, history.Event{Type: history.EventStart, OccurredAt: time.Now().UTC(), Record: rec}))
	rec.ExitCode = 1
	require.NoError(t, sink.Send(ctx, history.Event{Type: history.EventExit, OccurredAt: time.Now().UTC(), Record: rec}))

	var n uint64
	require.NoError(t, sink.conn.QueryRow(ctx, `SELECT count() FROM launch_history`).Scan(&n))
	assert.Equal(t, uint64(2), n)
}

func TestNew_Unreachable(t *testing.T) {
	if testing.Short() {
		t.Skip("dials the network")
	}
	_, err := New(context.Background(), Options{Addr: "127.0.0.1:1", Table: "t"})
	assert.Error(t, err)
}

// silentServer accepts connections and never writes a byte.
func silentServer(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	held := make(chan net.Conn, 16)
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			select {
			case held <- c:
			default:
				_ = c.Close()
			}
		}
	}()
	t.Cleanup(func() {
		_ = ln.Close()
		for {
			select {
			case c := <-held:
				_ = c.Close()
			default:
				return
			}
		}
	})
	return ln.Addr().String()
}

func TestNew_SilentServerHonorsContext(t *testing.T) {
	addr := silentServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	began := time.Now()
	_, err := New(ctx, Options{Addr: addr, Table: "t"})
	assert.Error(t, err)
	assert.Less(t, time.Since(began), 3*time.Second)
}

func TestNew_ExpiredContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(ctx, Options{Addr: "127.0.0.1:1", Table: "t"})
	assert.ErrorIs(t, err, context.Canceled)
}
