package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExecuteMissingTargetPrintsDiagnostic(t *testing.T) {
	// the test binary has no -orig sibling, so spawning must fail
	t.Setenv("LAUNCHSTUB_CONFIG", "")
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), []string{"--help", "-x"}, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Empty(t, stdout.String(), "--help is forwarded, not handled")
	assert.Contains(t, stderr.String(), `expression "CreateProcess(`)
	assert.Contains(t, stderr.String(), "fail. terminate.")
}

func TestExecuteMissingExplicitConfig(t *testing.T) {
	t.Setenv("LAUNCHSTUB_CONFIG", filepath.Join(t.TempDir(), "nope.toml"))
	var stdout, stderr bytes.Buffer
	code := execute(context.Background(), nil, &stdout, &stderr)

	assert.Equal(t, 1, code)
	assert.Contains(t, stderr.String(), `expression "config.Load(`)
}
