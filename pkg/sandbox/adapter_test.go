package sandbox

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeInterpreter writes a small shell script that stands in for the `go`
// binary so these tests exercise the Adapter's process lifecycle (spawn,
// capture, timeout/kill, exit code) without depending on a real Go
// toolchain being invoked from within the test run.
func fakeInterpreter(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fakego")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func TestAdapter_Execute_Success(t *testing.T) {
	interp := fakeInterpreter(t, `echo hello`)
	a := New(Config{InterpreterPath: interp, Workspace: t.TempDir()}, nil)

	result, err := a.Execute(context.Background(), "// noop", Options{SessionID: "s1", TimeoutMs: 5000})
	require.NoError(t, err)
	require.True(t, result.Success)
	assert.Equal(t, "hello\n", result.Stdout)
	assert.Equal(t, 0, result.ExitCode)
	assert.Nil(t, result.Error)
}

func TestAdapter_Execute_NonZeroExit(t *testing.T) {
	interp := fakeInterpreter(t, `echo boom 1>&2; exit 3`)
	a := New(Config{InterpreterPath: interp, Workspace: t.TempDir()}, nil)

	result, err := a.Execute(context.Background(), "// noop", Options{SessionID: "s1", TimeoutMs: 5000})
	require.NoError(t, err)
	require.False(t, result.Success)
	assert.Equal(t, 3, result.ExitCode)
	require.NotNil(t, result.Error)
	assert.Equal(t, ErrorKindExecution, result.Error.Kind)
	assert.Contains(t, result.Stderr, "boom")
}

func TestAdapter_Execute_Timeout(t *testing.T) {
	interp := fakeInterpreter(t, `sleep 30`)
	a := New(Config{InterpreterPath: interp, Workspace: t.TempDir(), KillGrace: 200 * time.Millisecond}, nil)

	start := time.Now()
	result, err := a.Execute(context.Background(), "// noop", Options{SessionID: "s1", TimeoutMs: 100})
	require.NoError(t, err)
	require.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, ErrorKindTimeout, result.Error.Kind)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestAdapter_Execute_ZeroTimeoutIsImmediate(t *testing.T) {
	interp := fakeInterpreter(t, `sleep 30`)
	a := New(Config{InterpreterPath: interp, Workspace: t.TempDir()}, nil)

	result, err := a.Execute(context.Background(), "// noop", Options{SessionID: "s1", TimeoutMs: 0})
	require.NoError(t, err)
	require.False(t, result.Success)
	require.NotNil(t, result.Error)
	assert.Equal(t, ErrorKindTimeout, result.Error.Kind)
}

func TestAdapter_Execute_StdoutTruncated(t *testing.T) {
	interp := fakeInterpreter(t, `printf '0123456789abcdef'`)
	a := New(Config{InterpreterPath: interp, Workspace: t.TempDir(), StdoutCapBytes: 4}, nil)

	result, err := a.Execute(context.Background(), "// noop", Options{SessionID: "s1", TimeoutMs: 5000})
	require.NoError(t, err)
	assert.Contains(t, result.Stdout, "...[output truncated]...")
	assert.Contains(t, result.Stdout, "0123")
}

func TestAdapter_Cleanup_RemovesWorkspace(t *testing.T) {
	interp := fakeInterpreter(t, `echo hi`)
	workspace := t.TempDir()
	a := New(Config{InterpreterPath: interp, Workspace: workspace}, nil)

	_, err := a.Execute(context.Background(), "// noop", Options{SessionID: "s1", TimeoutMs: 5000})
	require.NoError(t, err)

	require.NoError(t, a.Cleanup("s1"))
	_, statErr := os.Stat(filepath.Join(workspace, "s1"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestAdapter_HealthCheck(t *testing.T) {
	interp := fakeInterpreter(t, `true`)
	a := New(Config{InterpreterPath: interp}, nil)
	assert.True(t, a.HealthCheck())

	a2 := New(Config{InterpreterPath: "/does/not/exist/go"}, nil)
	assert.False(t, a2.HealthCheck())
}
