package subprocess

import (
	"context"
	"io"
	"log/slog"
	"runtime"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/PaulBPy/python-shell/internal/errors"
)

func requireShell(t *testing.T) string {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("posix shell not available")
	}

	return "/bin/sh"
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestProcess_EchoRoundTrip(t *testing.T) {
	sh := requireShell(t)

	p := New(discardLogger(), sh, []string{"-c", "cat"}, nil, "")
	require.NoError(t, p.Start(context.Background()))
	require.NotZero(t, p.Pid())

	_, err := p.Write([]byte("ping\n"))
	require.NoError(t, err)
	require.NoError(t, p.CloseStdin())

	out, err := io.ReadAll(p.Stdout())
	require.NoError(t, err)
	require.Equal(t, "ping\n", string(out))

	_, err = io.ReadAll(p.Stderr())
	require.NoError(t, err)

	status, err := p.Wait()
	require.NoError(t, err)
	require.Zero(t, status.Code)
	require.Empty(t, status.Signal)
}

func TestProcess_NonZeroExit(t *testing.T) {
	sh := requireShell(t)

	p := New(discardLogger(), sh, []string{"-c", "echo oops >&2; exit 3"}, nil, "")
	require.NoError(t, p.Start(context.Background()))

	stderr, err := io.ReadAll(p.Stderr())
	require.NoError(t, err)
	require.Equal(t, "oops\n", string(stderr))

	_, err = io.ReadAll(p.Stdout())
	require.NoError(t, err)

	status, err := p.Wait()
	require.NoError(t, err)
	require.Equal(t, 3, status.Code)
}

func TestProcess_SignalTermination(t *testing.T) {
	sh := requireShell(t)

	p := New(discardLogger(), sh, []string{"-c", "sleep 30"}, nil, "")
	require.NoError(t, p.Start(context.Background()))

	// Give the shell a moment to exec before signalling.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, p.Signal(syscall.SIGTERM))

	_, _ = io.ReadAll(p.Stdout())
	_, _ = io.ReadAll(p.Stderr())

	status, err := p.Wait()
	require.NoError(t, err)
	require.Equal(t, -1, status.Code)
	require.NotEmpty(t, status.Signal)
}

func TestProcess_SpawnFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("posix paths not available")
	}

	p := New(discardLogger(), "/nonexistent/interpreter", nil, nil, "")

	err := p.Start(context.Background())
	require.Error(t, err)

	var spawnErr *errors.SpawnError
	require.ErrorAs(t, err, &spawnErr)
}

func TestProcess_WriteBeforeStart(t *testing.T) {
	p := New(discardLogger(), "python3", nil, nil, "")

	_, err := p.Write([]byte("x"))
	require.ErrorIs(t, err, errors.ErrTransportNotStarted)
}

func TestProcess_CloseStdinTwice(t *testing.T) {
	sh := requireShell(t)

	p := New(discardLogger(), sh, []string{"-c", "cat >/dev/null"}, nil, "")
	require.NoError(t, p.Start(context.Background()))

	require.NoError(t, p.CloseStdin())
	require.NoError(t, p.CloseStdin())

	_, err := p.Write([]byte("x"))
	require.ErrorIs(t, err, errors.ErrStdinClosed)

	_, _ = io.ReadAll(p.Stdout())
	_, _ = io.ReadAll(p.Stderr())

	_, err = p.Wait()
	require.NoError(t, err)
}
