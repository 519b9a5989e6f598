package config

import (
	"context"
	"io"
	"os"
)

// ExitStatus describes how the process ended.
// Code is the exit code when the process exited on its own (-1 when it was
// killed by a signal); Signal is the signal name when one terminated it.
type ExitStatus struct {
	Code   int
	Signal string
}

// Transport abstracts the spawned python process for the session layer.
//
// The default implementation spawns a subprocess with stdio pipes
// (internal/subprocess). Custom transports can be injected via
// Options.Transport for testing or alternative process supervision.
type Transport interface {
	// Start spawns the process. The context governs the process lifetime:
	// cancelling it kills the process.
	Start(ctx context.Context) error

	// Stdout and Stderr expose the process output streams. Valid only
	// after Start returns successfully.
	Stdout() io.Reader
	Stderr() io.Reader

	// Write writes raw bytes to the process input stream.
	Write(p []byte) (int, error)

	// CloseStdin half-closes the input stream, signalling that no more
	// input is coming. Safe to call more than once.
	CloseStdin() error

	// Signal delivers sig to the process.
	Signal(sig os.Signal) error

	// Kill forcibly terminates the process.
	Kill() error

	// Wait blocks until the process has exited and returns its status.
	// The caller must finish reading Stdout and Stderr first.
	Wait() (ExitStatus, error)

	// Executable and Args describe the spawned command for diagnostics.
	Executable() string
	Args() []string

	// Pid returns the process id, or 0 before Start.
	Pid() int
}
