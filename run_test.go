package pyshell

import (
	"context"
	stderrors "errors"
	"os"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/PaulBPy/python-shell/internal/config"
	"github.com/PaulBPy/python-shell/internal/interp"
)

func requirePython(t *testing.T) {
	t.Helper()

	if _, err := exec.LookPath(interp.DefaultExecutable()); err != nil {
		t.Skip("python interpreter not available")
	}
}

func TestRun_CollectsMessagesFromTransport(t *testing.T) {
	ft := newExitedTransport("one\ntwo\nthree\n", "", config.ExitStatus{Code: 0})

	messages, err := Run(context.Background(), "script.py", WithTransport(ft))
	require.NoError(t, err)
	require.Equal(t, []any{"one", "two", "three"}, messages)
	require.True(t, ft.stdinClosed)
}

func TestRun_SurfacesProcessError(t *testing.T) {
	ft := newExitedTransport("partial\n", "boom\n", config.ExitStatus{Code: 1})

	messages, err := Run(context.Background(), "script.py", WithTransport(ft))
	require.Error(t, err)

	var perr *ProcessError
	ok := stderrors.As(err, &perr)
	require.True(t, ok)
	require.Equal(t, "boom", perr.Message)

	// Records received before the failure are still returned.
	require.Equal(t, []any{"partial"}, messages)
}

func TestRun_SurfacesDecodeError(t *testing.T) {
	ft := newExitedTransport("{broken\n", "", config.ExitStatus{Code: 0})

	_, err := Run(context.Background(), "script.py",
		WithTransport(ft),
		WithMode(ModeJSON),
	)
	require.Error(t, err)

	ok := stderrors.As(err, new(*DecodeError))
	require.True(t, ok)
}

func TestStageScript_UniqueAndCleanedUp(t *testing.T) {
	path1, cleanup1, err := stageScript("print('a')")
	require.NoError(t, err)

	path2, cleanup2, err := stageScript("print('b')")
	require.NoError(t, err)
	require.NotEqual(t, path1, path2)

	content, err := os.ReadFile(path1)
	require.NoError(t, err)
	require.Equal(t, "print('a')", string(content))

	cleanup1()
	cleanup2()

	_, err = os.Stat(path1)
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = os.Stat(path2)
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestRunString_Integration(t *testing.T) {
	requirePython(t)

	messages, err := RunString(context.Background(), "print(\"hello\")\nprint(\"world\")\n")
	require.NoError(t, err)
	require.Equal(t, []any{"hello", "world"}, messages)
}

func TestRunString_JSONIntegration(t *testing.T) {
	requirePython(t)

	code := "import json\nprint(json.dumps({\"a\": 1}))\n"

	messages, err := RunString(context.Background(), code, WithMode(ModeJSON))
	require.NoError(t, err)
	require.Equal(t, []any{map[string]any{"a": float64(1)}}, messages)
}

func TestRunString_TracebackIntegration(t *testing.T) {
	requirePython(t)

	_, err := RunString(context.Background(), "raise ValueError(\"bad\")\n")
	require.Error(t, err)

	var perr *ProcessError
	ok := stderrors.As(err, &perr)
	require.True(t, ok)
	require.Equal(t, "ValueError: bad", perr.Message)
	require.NotEmpty(t, perr.Traceback)
	require.Equal(t, 1, perr.ExitCode)
}

func TestRun_ArgsIntegration(t *testing.T) {
	requirePython(t)

	code := "import sys\nprint(\",\".join(sys.argv[1:]))\n"

	path, cleanup, err := stageScript(code)
	require.NoError(t, err)
	defer cleanup()

	messages, err := Run(context.Background(), path, WithArgs("alpha", "beta"))
	require.NoError(t, err)
	require.Equal(t, []any{"alpha,beta"}, messages)
}

func TestCheckSyntax_Integration(t *testing.T) {
	requirePython(t)

	require.NoError(t, CheckSyntax(context.Background(), "x = 1\n"))

	err := CheckSyntax(context.Background(), "def (broken\n")
	require.Error(t, err)

	var serr *SyntaxCheckError
	ok := stderrors.As(err, &serr)
	require.True(t, ok)
	require.NotEmpty(t, serr.Stderr)
}

func TestVersion_Integration(t *testing.T) {
	requirePython(t)

	version, err := Version(context.Background())
	require.NoError(t, err)
	require.Contains(t, version, "Python")
}

func TestRun_InterpreterNotFound(t *testing.T) {
	_, err := Run(context.Background(), "script.py",
		WithPythonPath("definitely-not-a-python-binary"),
	)
	require.Error(t, err)

	ok := stderrors.As(err, new(*InterpreterNotFoundError))
	require.True(t, ok)
}
