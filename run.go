package pyshell

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/oklog/ulid/v2"
	"golang.org/x/sync/errgroup"

	sdkerrors "github.com/PaulBPy/python-shell/internal/errors"
	"github.com/PaulBPy/python-shell/internal/interp"
)

// Run executes script to completion and returns every decoded stdout
// record, in order. Stdin is closed immediately, so the script sees end of
// input straight away. A non-zero exit yields a *ProcessError built from
// the script's stderr; a record that fails to decode fails the run.
func Run(ctx context.Context, script string, opts ...Option) ([]any, error) {
	sh, err := New(ctx, script, opts...)
	if err != nil {
		return nil, err
	}

	if err := sh.End(); err != nil {
		_ = sh.Kill()

		return nil, fmt.Errorf("close stdin: %w", err)
	}

	var (
		collected []any
		decodeErr error
	)

	var g errgroup.Group

	g.Go(func() error {
		for msg := range sh.Messages() {
			collected = append(collected, msg)
		}

		return nil
	})

	// Stderr records must be consumed so the stderr drain can reach end of
	// stream; the raw text is retained separately for error classification.
	g.Go(func() error {
		for range sh.StderrRecords() {
		}

		return nil
	})

	g.Go(func() error {
		for derr := range sh.Errors() {
			if decodeErr == nil {
				decodeErr = derr
			}
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if err := sh.Wait(ctx); err != nil {
		return collected, err
	}

	if decodeErr != nil {
		return collected, decodeErr
	}

	return collected, nil
}

// RunString stages code at a uniquely named temporary file, runs it exactly
// as Run would run a pre-existing script, and removes the file afterwards
// (on success or failure).
func RunString(ctx context.Context, code string, opts ...Option) ([]any, error) {
	path, cleanup, err := stageScript(code)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return Run(ctx, path, opts...)
}

// CheckSyntaxFile compiles the script at path without executing it, as a
// single bounded subprocess call (python -m py_compile). A zero exit means
// the syntax is valid; any other exit fails with a *SyntaxCheckError
// carrying the captured stderr.
func CheckSyntaxFile(ctx context.Context, path string, opts ...Option) error {
	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	discoverer := interp.NewDiscoverer(&interp.Config{
		PythonPath: options.PythonPath,
		Logger:     log.With("component", "syntax_check"),
	})

	pythonPath, err := discoverer.Discover(ctx)
	if err != nil {
		return fmt.Errorf("discover interpreter: %w", err)
	}

	resolved := interp.ResolveScript(path, options)

	//nolint:gosec // G204: compiling a caller-supplied script is the point of this call
	cmd := exec.CommandContext(ctx, pythonPath, "-m", "py_compile", resolved)
	cmd.Dir = options.Cwd

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &sdkerrors.SyntaxCheckError{
			Path:   resolved,
			Stderr: stderr.String(),
			Err:    err,
		}
	}

	return nil
}

// CheckSyntax stages code at a temporary file and checks it with
// CheckSyntaxFile. The file is removed afterwards.
func CheckSyntax(ctx context.Context, code string, opts ...Option) error {
	path, cleanup, err := stageScript(code)
	if err != nil {
		return err
	}
	defer cleanup()

	return CheckSyntaxFile(ctx, path, opts...)
}

// Version reports the interpreter's version string (for example
// "Python 3.12.1").
func Version(ctx context.Context, opts ...Option) (string, error) {
	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	discoverer := interp.NewDiscoverer(&interp.Config{
		PythonPath: options.PythonPath,
		Logger:     log.With("component", "version"),
	})

	pythonPath, err := discoverer.Discover(ctx)
	if err != nil {
		return "", fmt.Errorf("discover interpreter: %w", err)
	}

	return interp.Version(ctx, pythonPath)
}

// stageScript writes code to a uniquely named file in the system temporary
// directory and returns its path with a cleanup function. The name embeds a
// ULID and the file is created exclusively, so concurrent stagings cannot
// collide or overwrite each other.
func stageScript(code string) (path string, cleanup func(), err error) {
	path = filepath.Join(os.TempDir(), fmt.Sprintf("pyshell-%s.py", ulid.Make()))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", nil, fmt.Errorf("stage script: %w", err)
	}

	if _, err := f.WriteString(code); err != nil {
		_ = f.Close()
		_ = os.Remove(path)

		return "", nil, fmt.Errorf("stage script: %w", err)
	}

	if err := f.Close(); err != nil {
		_ = os.Remove(path)

		return "", nil, fmt.Errorf("stage script: %w", err)
	}

	return path, func() { _ = os.Remove(path) }, nil
}
