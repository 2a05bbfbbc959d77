package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notorious-go/roundrobin/turn"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	err := cmd.ExecuteContext(t.Context())
	return out.String(), err
}

func TestPoll(t *testing.T) {
	out, err := execute(t, "poll", "--workers", "3", "--count", "10")
	require.NoError(t, err)

	want := []string{
		"task-0 number:0", "task-1 number:1", "task-2 number:2",
		"task-0 number:3", "task-1 number:4", "task-2 number:5",
		"task-0 number:6", "task-1 number:7", "task-2 number:8",
		"task-0 number:9",
	}
	assert.Equal(t, want, strings.Split(strings.TrimSpace(out), "\n"))
}

func TestPollCond(t *testing.T) {
	out, err := execute(t, "poll", "-n", "2", "--count", "4", "--wait", "cond", "--stall-warning", "1s")
	require.NoError(t, err)
	assert.Equal(t, "task-0 number:0\ntask-1 number:1\ntask-0 number:2\ntask-1 number:3\n", out)
}

func TestBaton(t *testing.T) {
	out, err := execute(t, "baton", "-n", "3", "--turns", "6", "--stall-timeout", "5s", "--log-format", "json")
	require.NoError(t, err)
	assert.Equal(t, 6, strings.Count(out, "\n"))
	assert.True(t, strings.HasPrefix(out, "task-0 number:0\ntask-1 number:1\ntask-2 number:2\n"))
}

func TestConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roundrobin.yaml")
	require.NoError(t, os.WriteFile(path, []byte("workers: 4\npolling:\n  count: 5\n"), 0o600))

	out, err := execute(t, "poll", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, 5, strings.Count(out, "\n"))
	assert.Contains(t, out, "task-3 number:3")

	// Flags take precedence over the file.
	out, err = execute(t, "poll", "--config", path, "--count", "2")
	require.NoError(t, err)
	assert.Equal(t, "task-0 number:0\ntask-1 number:1\n", out)
}

func TestInvalidFlags(t *testing.T) {
	_, err := execute(t, "poll", "--workers", "0")
	require.ErrorIs(t, err, turn.ErrInvalidWorkers)

	_, err = execute(t, "baton", "--stall-timeout", "-1s")
	require.Error(t, err)

	_, err = execute(t, "poll", "--wait", "nap")
	require.Error(t, err)
}
