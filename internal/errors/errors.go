// Package errors defines the typed errors surfaced by the python-shell SDK.
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// tracebackMarker starts the multi-line diagnostic the python interpreter
// writes to stderr for an uncaught exception.
const tracebackMarker = "Traceback"

// PythonShellError is the base interface for all SDK errors.
type PythonShellError interface {
	error
	IsPythonShellError() bool
}

// Compile-time verification that all error types implement PythonShellError.
var (
	_ PythonShellError = (*InterpreterNotFoundError)(nil)
	_ PythonShellError = (*SpawnError)(nil)
	_ PythonShellError = (*ProcessError)(nil)
	_ PythonShellError = (*SyntaxCheckError)(nil)
	_ PythonShellError = (*DecodeError)(nil)
)

// Sentinel errors for commonly checked conditions.
var (
	// ErrShellTerminated indicates the shell has reached its terminal state
	// and no further sends are valid.
	ErrShellTerminated = errors.New("shell terminated")

	// ErrStdinClosed indicates the input stream was already half-closed.
	ErrStdinClosed = errors.New("stdin closed")

	// ErrTransportNotStarted indicates an operation on a transport whose
	// process has not been spawned.
	ErrTransportNotStarted = errors.New("transport not started")
)

// InterpreterNotFoundError indicates the python executable was not found.
type InterpreterNotFoundError struct {
	SearchedPaths []string
}

func (e *InterpreterNotFoundError) Error() string {
	return fmt.Sprintf("python interpreter not found in: %v", e.SearchedPaths)
}

// IsPythonShellError implements PythonShellError.
func (e *InterpreterNotFoundError) IsPythonShellError() bool { return true }

// SpawnError indicates the python process failed to launch.
type SpawnError struct {
	Err error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to spawn python process: %v", e.Err)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// IsPythonShellError implements PythonShellError.
func (e *SpawnError) IsPythonShellError() bool { return true }

// ProcessError indicates the python process exited abnormally.
//
// Message is the exception summary when stderr carried a parseable
// traceback, the raw stderr text when it did not, or a generic
// "exited with code N" when stderr was empty. Traceback holds the
// traceback body when one was extracted.
type ProcessError struct {
	Message    string
	Traceback  string
	ExitCode   int
	ExitSignal string
	Executable string
	Args       []string
}

func (e *ProcessError) Error() string {
	return fmt.Sprintf("python process failed (exit %d): %s", e.ExitCode, e.Message)
}

// IsPythonShellError implements PythonShellError.
func (e *ProcessError) IsPythonShellError() bool { return true }

// FromStderr classifies accumulated stderr text into a ProcessError.
//
// Text beginning with the traceback marker is split into lines: the last
// line (the exception summary) becomes the message and the lines between
// the marker line and the summary become the traceback body. Any other
// text becomes the message verbatim. Empty text yields a generic message
// carrying only the exit code.
func FromStderr(stderr string, exitCode int) *ProcessError {
	perr := &ProcessError{ExitCode: exitCode}

	text := strings.TrimRight(stderr, "\r\n")
	if text == "" {
		perr.Message = fmt.Sprintf("process exited with code %d", exitCode)

		return perr
	}

	if !strings.HasPrefix(text, tracebackMarker) {
		perr.Message = text

		return perr
	}

	lines := strings.Split(text, "\n")
	perr.Message = strings.TrimRight(lines[len(lines)-1], "\r")

	if len(lines) > 2 {
		body := make([]string, 0, len(lines)-2)
		for _, line := range lines[1 : len(lines)-1] {
			body = append(body, strings.TrimRight(line, "\r"))
		}

		perr.Traceback = strings.Join(body, "\n")
	}

	return perr
}

// SyntaxCheckError indicates the one-shot compile check exited non-zero.
type SyntaxCheckError struct {
	Path   string
	Stderr string
	Err    error
}

func (e *SyntaxCheckError) Error() string {
	return fmt.Sprintf("syntax check failed for %s: %s", e.Path, strings.TrimSpace(e.Stderr))
}

func (e *SyntaxCheckError) Unwrap() error {
	return e.Err
}

// IsPythonShellError implements PythonShellError.
func (e *SyntaxCheckError) IsPythonShellError() bool { return true }

// DecodeError indicates a complete inbound record could not be decoded.
// The raw record that failed to parse is preserved. Decode errors are
// recoverable: the session keeps processing subsequent records.
type DecodeError struct {
	RawData string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("failed to decode record: %v", e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsPythonShellError implements PythonShellError.
func (e *DecodeError) IsPythonShellError() bool { return true }
