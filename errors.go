package pyshell

import "github.com/PaulBPy/python-shell/internal/errors"

// Re-export error types from internal package

// InterpreterNotFoundError indicates the python executable was not found.
type InterpreterNotFoundError = errors.InterpreterNotFoundError

// SpawnError indicates the python process failed to launch.
type SpawnError = errors.SpawnError

// ProcessError indicates the python process exited abnormally.
type ProcessError = errors.ProcessError

// SyntaxCheckError indicates the one-shot compile check exited non-zero.
type SyntaxCheckError = errors.SyntaxCheckError

// DecodeError indicates an inbound record could not be decoded.
type DecodeError = errors.DecodeError

// PythonShellError is the base interface for all SDK errors.
type PythonShellError = errors.PythonShellError

// Re-export sentinel errors from internal package.
var (
	// ErrShellTerminated indicates the shell has reached its terminal state.
	ErrShellTerminated = errors.ErrShellTerminated

	// ErrStdinClosed indicates the input stream was already half-closed.
	ErrStdinClosed = errors.ErrStdinClosed
)
