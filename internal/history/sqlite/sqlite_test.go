package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/loykin/launchstub/internal/history"
)

func launch(t history.EventType, code int) history.Event {
	return history.Event{
		Type:       t,
		OccurredAt: time.Now().UTC(),
		Record: history.Record{
			Launcher:    "/opt/bin/gdb",
			Target:      "/opt/bin/gdb-orig",
			CommandLine: "/opt/bin/gdb-orig --batch ",
			PID:         12345,
			StartedAt:   time.Now().Add(-time.Second).UTC(),
			ExitCode:    code,
			Isolated:    true,
		},
	}
}

func TestSQLiteSink_File(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	sink, err := New(context.Background(), "sqlite://"+dbPath)
	require.NoError(t, err)
	defer func() { assert.NoError(t, sink.Close()) }()

	ctx := context.Background()
	require.NoError(t, sink.Send(ctx, launch(history.EventStart, 0)))
	require.NoError(t, sink.Send(ctx, launch(history.EventExit, 7)))

	var n int
	require.NoError(t, sink.DB().QueryRow(`SELECT COUNT(*) FROM launch_history`).Scan(&n))
	assert.Equal(t, 2, n)

	var code int
	var errText *string
	require.NoError(t, sink.DB().QueryRow(
		`SELECT exit_code, error FROM launch_history WHERE type = 'exit'`).Scan(&code, &errText))
	assert.Equal(t, 7, code)
	assert.Nil(t, errText)
}

func TestSQLiteSink_InMemory(t *testing.T) {
	sink, err := New(context.Background(), ":memory:")
	require.NoError(t, err)
	defer func() { _ = sink.Close() }()

	e := launch(history.EventExit, 1)
	e.Record.Error = "spawn failed"
	require.NoError(t, sink.Send(context.Background(), e))

	var msg string
	require.NoError(t, sink.DB().QueryRow(`SELECT error FROM launch_history`).Scan(&msg))
	assert.Equal(t, "spawn failed", msg)
}

func TestSQLiteSink_ReopenKeepsSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "again.db")
	for i := 0; i < 2; i++ {
		sink, err := New(context.Background(), dbPath)
		require.NoError(t, err)
		require.NoError(t, sink.Send(context.Background(), launch(history.EventStart, 0)))
		require.NoError(t, sink.Close())
	}
	sink, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	defer func() { _ = sink.Close() }()
	var n int
	require.NoError(t, sink.DB().QueryRow(`SELECT COUNT(*) FROM launch_history`).Scan(&n))
	assert.Equal(t, 2, n)
}

func TestSQLiteSink_EmptyDSN(t *testing.T) {
	_, err := New(context.Background(), "  ")
	assert.Error(t, err)
}
