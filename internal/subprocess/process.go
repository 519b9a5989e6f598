// Package subprocess implements the process transport by spawning a python
// interpreter with stdio pipes.
package subprocess

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/PaulBPy/python-shell/internal/config"
	"github.com/PaulBPy/python-shell/internal/errors"
)

// Process implements config.Transport by spawning a python subprocess.
type Process struct {
	log        *slog.Logger
	pythonPath string
	args       []string
	env        []string
	cwd        string

	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout io.ReadCloser
	stderr io.ReadCloser

	mu          sync.Mutex // Protects stdin writes and the closed flags
	stdinClosed bool
}

// Compile-time verification that Process implements the Transport interface.
var _ config.Transport = (*Process)(nil)

// New creates a process transport for the given interpreter invocation.
// A nil env inherits the parent environment. The process is not spawned
// until Start.
func New(log *slog.Logger, pythonPath string, args, env []string, cwd string) *Process {
	return &Process{
		log:        log.With("component", "subprocess"),
		pythonPath: pythonPath,
		args:       args,
		env:        env,
		cwd:        cwd,
	}
}

// Start spawns the interpreter process and wires up the stdio pipes.
// Returns SpawnError if the process fails to launch.
func (p *Process) Start(ctx context.Context) error {
	p.log.Info("Starting python subprocess", "python_path", p.pythonPath, "args", p.args)

	//nolint:gosec // G204: spawning a configured interpreter is the point of this package
	cmd := exec.CommandContext(ctx, p.pythonPath, p.args...)
	cmd.Dir = p.cwd
	cmd.Env = p.env

	stdin, err := cmd.StdinPipe()
	if err != nil {
		p.log.Error("Failed to create stdin pipe", "error", err)

		return &errors.SpawnError{Err: fmt.Errorf("stdin pipe: %w", err)}
	}

	p.stdin = stdin

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		p.log.Error("Failed to create stdout pipe", "error", err)

		return &errors.SpawnError{Err: fmt.Errorf("stdout pipe: %w", err)}
	}

	p.stdout = stdout

	stderr, err := cmd.StderrPipe()
	if err != nil {
		p.log.Error("Failed to create stderr pipe", "error", err)

		return &errors.SpawnError{Err: fmt.Errorf("stderr pipe: %w", err)}
	}

	p.stderr = stderr

	if err := cmd.Start(); err != nil {
		p.log.Error("Failed to start python process", "error", err)

		return &errors.SpawnError{Err: fmt.Errorf("start process: %w", err)}
	}

	p.cmd = cmd
	p.log.Info("Python subprocess started", "pid", cmd.Process.Pid)

	return nil
}

// Stdout returns the process stdout stream.
func (p *Process) Stdout() io.Reader { return p.stdout }

// Stderr returns the process stderr stream.
func (p *Process) Stderr() io.Reader { return p.stderr }

// Write writes raw bytes to the process stdin.
// Safe for concurrent use.
func (p *Process) Write(data []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stdin == nil {
		return 0, errors.ErrTransportNotStarted
	}

	if p.stdinClosed {
		return 0, errors.ErrStdinClosed
	}

	return p.stdin.Write(data)
}

// CloseStdin half-closes the input stream to signal end of input.
// Safe to call more than once.
func (p *Process) CloseStdin() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stdin != nil && !p.stdinClosed {
		p.log.Debug("Closing stdin pipe")

		p.stdinClosed = true

		return p.stdin.Close()
	}

	return nil
}

// Signal delivers sig to the process. Returns os.ErrProcessDone if the
// process has already exited.
func (p *Process) Signal(sig os.Signal) error {
	if p.cmd == nil || p.cmd.Process == nil {
		return errors.ErrTransportNotStarted
	}

	p.log.Debug("Signalling python process", "pid", p.cmd.Process.Pid, "signal", sig)

	return p.cmd.Process.Signal(sig)
}

// Kill forcibly terminates the process. Safe to call on an
// already-terminated process.
func (p *Process) Kill() error {
	if p.cmd == nil || p.cmd.Process == nil {
		return errors.ErrTransportNotStarted
	}

	p.log.Debug("Killing python process", "pid", p.cmd.Process.Pid)

	if err := p.cmd.Process.Kill(); err != nil && !stderrors.Is(err, os.ErrProcessDone) {
		return fmt.Errorf("kill python process (pid %d): %w", p.cmd.Process.Pid, err)
	}

	return nil
}

// Wait blocks until the process has exited and reports its exit code and,
// when a signal terminated it, the signal name.
func (p *Process) Wait() (config.ExitStatus, error) {
	if p.cmd == nil {
		return config.ExitStatus{}, errors.ErrTransportNotStarted
	}

	err := p.cmd.Wait()
	if err == nil {
		return config.ExitStatus{Code: 0}, nil
	}

	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		status := config.ExitStatus{Code: exitErr.ExitCode()}

		if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
			status.Signal = ws.Signal().String()
		}

		return status, nil
	}

	// Wait itself failed (for example an I/O error on the pipes).
	return config.ExitStatus{Code: -1}, fmt.Errorf("wait for python process: %w", err)
}

// Executable returns the interpreter path.
func (p *Process) Executable() string { return p.pythonPath }

// Args returns the command arguments.
func (p *Process) Args() []string { return p.args }

// Pid returns the process id, or 0 before Start.
func (p *Process) Pid() int {
	if p.cmd == nil || p.cmd.Process == nil {
		return 0
	}

	return p.cmd.Process.Pid
}
