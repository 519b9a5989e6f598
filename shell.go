package pyshell

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"syscall"

	"golang.org/x/text/transform"

	"github.com/PaulBPy/python-shell/internal/codec"
	"github.com/PaulBPy/python-shell/internal/config"
	sdkerrors "github.com/PaulBPy/python-shell/internal/errors"
	"github.com/PaulBPy/python-shell/internal/framing"
	"github.com/PaulBPy/python-shell/internal/interp"
	"github.com/PaulBPy/python-shell/internal/subprocess"
)

const (
	// readChunkSize is the buffer size for draining the process output pipes.
	readChunkSize = 64 * 1024

	// errorChannelBuffer bounds the recoverable-error channel. When the
	// buffer is full, further decode errors are logged and dropped rather
	// than blocking the drain.
	errorChannelBuffer = 16
)

// Shell is one spawned-interpreter communication context: it owns the child
// process, the per-stream framers and the resolved codec, and publishes
// decoded records until the session reaches its terminal state.
//
// Decoded stdout records arrive on Messages, decoded stderr records on
// StderrRecords, both in stream order. Recoverable decode errors arrive on
// Errors. The terminal state is reached exactly once, when stdout has
// ended, stderr has ended and the process has exited; Done is then closed
// and Err, ExitCode and ExitSignal report the outcome.
type Shell struct {
	log        *slog.Logger
	codec      codec.Codec
	transport  config.Transport
	scriptPath string

	messages      chan any
	stderrRecords chan any
	errs          chan error
	done          chan struct{}
	closeOnce     sync.Once

	writeMu sync.Mutex
	encode  func([]byte) ([]byte, error)

	mu         sync.Mutex
	terminated bool
	exited     bool
	exitCode   int
	exitSignal string
	err        error

	stderrMu   sync.Mutex
	stderrText []byte
	stderrCap  int
}

// New spawns the interpreter for script and returns the running session.
//
// The context governs the process lifetime: cancelling it kills the
// process. Construction resolves the codec, the encoding and the
// interpreter path eagerly; any of those failing means no process is
// spawned and no session exists.
func New(ctx context.Context, script string, opts ...Option) (*Shell, error) {
	options := applyOptions(opts)

	log := options.Logger
	if log == nil {
		log = NopLogger()
	}

	log = log.With("component", "shell")

	resolved, err := codec.Resolve(options.Mode, options.Formatter, options.Parser, options.StderrParser)
	if err != nil {
		return nil, err
	}

	enc, err := codec.ResolveEncoding(options.Encoding)
	if err != nil {
		return nil, err
	}

	scriptPath := interp.ResolveScript(script, options)

	transport := options.Transport
	if transport == nil {
		discoverer := interp.NewDiscoverer(&interp.Config{
			PythonPath: options.PythonPath,
			Logger:     log,
		})

		pythonPath, err := discoverer.Discover(ctx)
		if err != nil {
			return nil, fmt.Errorf("discover interpreter: %w", err)
		}

		args := interp.BuildArgs(scriptPath, options)
		env := interp.BuildEnvironment(options)
		transport = subprocess.New(log, pythonPath, args, env, options.Cwd)
	} else {
		log.Debug("Using injected custom transport")
	}

	if err := transport.Start(ctx); err != nil {
		return nil, err
	}

	s := &Shell{
		log:           log,
		codec:         resolved,
		transport:     transport,
		scriptPath:    scriptPath,
		messages:      make(chan any),
		stderrRecords: make(chan any),
		errs:          make(chan error, errorChannelBuffer),
		done:          make(chan struct{}),
		stderrCap:     options.StderrCap(),
	}

	stdout := transport.Stdout()
	stderr := transport.Stderr()

	// Binary mode is raw byte passthrough; the encoding transform only
	// applies to text-bearing modes.
	if enc != nil && resolved.Framed() {
		stdout = transform.NewReader(stdout, enc.NewDecoder())
		stderr = transform.NewReader(stderr, enc.NewDecoder())

		encoder := enc.NewEncoder()
		s.encode = func(p []byte) ([]byte, error) {
			out, _, err := transform.Bytes(encoder, p)

			return out, err
		}
	}

	s.start(ctx, stdout, stderr)

	return s, nil
}

// start launches the two drain goroutines and the completion goroutine.
//
// Three independent facts converge to the terminal state: stdout ended,
// stderr ended, process exited. The drains account for the first two via
// the wait group; the completion goroutine then waits for the process and
// fires the terminal transition exactly once.
func (s *Shell) start(ctx context.Context, stdout, stderr io.Reader) {
	var pipes sync.WaitGroup

	pipes.Add(1)
	go func() {
		defer pipes.Done()
		defer close(s.messages)
		s.drain(ctx, "stdout", stdout, s.codec.Framed(), s.codec.Parse, s.messages, nil)
	}()

	// Stderr is interpreter diagnostic text in every mode, binary included:
	// it is always framed into lines and retained for error classification.
	pipes.Add(1)
	go func() {
		defer pipes.Done()
		defer close(s.stderrRecords)
		s.drain(ctx, "stderr", stderr, true, s.codec.ParseStderr, s.stderrRecords, s.retainStderr)
	}()

	go func() {
		pipes.Wait()
		s.finish()
	}()
}

// drain reads one output stream to completion, frames it into records,
// decodes them and publishes the decoded values in arrival order. In binary
// mode framing and decoding are bypassed and raw chunks are published.
// retain, when non-nil, receives the raw text of every record for later
// error classification, regardless of decode success.
func (s *Shell) drain(
	ctx context.Context,
	stream string,
	r io.Reader,
	framed bool,
	parse codec.Parser,
	out chan<- any,
	retain func(string),
) {
	framer := &framing.LineFramer{}
	buf := make([]byte, readChunkSize)

	emit := func(rec string) bool {
		if retain != nil {
			retain(rec)
		}

		value := any(rec)

		if parse != nil {
			parsed, err := parse([]byte(rec))
			if err != nil {
				s.reportDecodeError(stream, rec, err)

				return true
			}

			value = parsed
		}

		select {
		case out <- value:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		n, err := r.Read(buf)

		if n > 0 {
			if !framed {
				chunk := make([]byte, n)
				copy(chunk, buf[:n])

				select {
				case out <- chunk:
				case <-ctx.Done():
					return
				}
			} else {
				for _, rec := range framer.Push(buf[:n]) {
					if !emit(rec) {
						return
					}
				}
			}
		}

		if err != nil {
			if err != io.EOF {
				s.log.Debug("Stream read ended with error", "stream", stream, "error", err)
			}

			// Flush any unterminated trailing fragment so final output
			// written without a newline is not lost.
			if rec, ok := framer.Flush(); ok {
				emit(rec)
			}

			return
		}
	}
}

// reportDecodeError delivers a recoverable decode error without ever
// blocking the drain. Processing continues with the next record.
func (s *Shell) reportDecodeError(stream, rec string, err error) {
	s.log.Debug("Failed to decode record", "stream", stream, "error", err)

	select {
	case s.errs <- &sdkerrors.DecodeError{RawData: rec, Err: err}:
	default:
		s.log.Warn("Error channel full, dropping decode error", "stream", stream)
	}
}

// retainStderr accumulates raw stderr text for error classification at the
// terminal transition. The buffer stops growing at the configured cap.
func (s *Shell) retainStderr(line string) {
	s.stderrMu.Lock()
	defer s.stderrMu.Unlock()

	if len(s.stderrText) >= s.stderrCap {
		return
	}

	if len(s.stderrText) > 0 {
		s.stderrText = append(s.stderrText, '\n')
	}

	s.stderrText = append(s.stderrText, line...)
}

// finish is the terminal transition. It runs once both output streams have
// ended, waits for the process exit, classifies accumulated stderr into a
// ProcessError on abnormal exit, and closes Done exactly once.
func (s *Shell) finish() {
	status, waitErr := s.transport.Wait()

	s.mu.Lock()

	s.exited = true
	s.exitCode = status.Code
	s.exitSignal = status.Signal
	terminated := s.terminated

	switch {
	case waitErr != nil && !terminated:
		s.err = waitErr
	case status.Code > 0:
		perr := sdkerrors.FromStderr(s.stderrSnapshot(), status.Code)
		perr.ExitSignal = status.Signal
		perr.Executable = s.transport.Executable()
		perr.Args = s.transport.Args()
		s.err = perr
	default:
		// Clean exit, or termination the caller asked for.
	}

	err := s.err
	s.mu.Unlock()

	if err != nil {
		s.log.Error("Python process exited abnormally", "exit_code", status.Code, "error", err)
	} else {
		s.log.Info("Python process exited", "exit_code", status.Code, "signal", status.Signal)
	}

	close(s.errs)
	s.closeOnce.Do(func() { close(s.done) })
}

func (s *Shell) stderrSnapshot() string {
	s.stderrMu.Lock()
	defer s.stderrMu.Unlock()

	return string(s.stderrText)
}

// Send encodes message with the configured formatter and writes it to the
// process input stream. In framed modes one line terminator is appended;
// binary mode writes the bytes verbatim. Send never waits for the
// interpreter: it performs a buffered pipe write and returns.
func (s *Shell) Send(message any) error {
	s.mu.Lock()
	terminated := s.terminated || s.exited
	s.mu.Unlock()

	if terminated {
		return sdkerrors.ErrShellTerminated
	}

	data, err := s.codec.Format(message)
	if err != nil {
		return fmt.Errorf("format message: %w", err)
	}

	if s.codec.Framed() {
		// Explicit copy so a caller-owned slice with spare capacity is
		// never mutated.
		framed := make([]byte, len(data)+1)
		copy(framed, data)
		framed[len(data)] = '\n'
		data = framed
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if s.encode != nil {
		data, err = s.encode(data)
		if err != nil {
			return fmt.Errorf("encode message: %w", err)
		}
	}

	if _, err := s.transport.Write(data); err != nil {
		return fmt.Errorf("write to stdin: %w", err)
	}

	return nil
}

// End half-closes the input stream, signalling the interpreter that no more
// input is coming. The session then runs to its natural terminal state,
// observable via Done and Wait. Safe to call more than once.
func (s *Shell) End() error {
	return s.transport.CloseStdin()
}

// Terminate requests immediate process termination with sig (SIGTERM when
// none is given) and marks the session terminated. It does not wait for the
// process: the terminal transition still fires through the normal
// convergence path, and is guaranteed to fire at most once even when
// Terminate races with a natural exit. Terminating an already-exited
// process is not an error.
func (s *Shell) Terminate(sig ...os.Signal) error {
	signal := os.Signal(syscall.SIGTERM)
	if len(sig) > 0 && sig[0] != nil {
		signal = sig[0]
	}

	s.mu.Lock()
	s.terminated = true
	alreadyExited := s.exited
	s.mu.Unlock()

	if alreadyExited {
		return nil
	}

	s.log.Debug("Terminating python process", "signal", signal)

	err := s.transport.Signal(signal)
	if err != nil && isProcessGone(err) {
		return nil
	}

	return err
}

// Kill forcibly terminates the process with SIGKILL.
func (s *Shell) Kill() error {
	s.mu.Lock()
	s.terminated = true
	alreadyExited := s.exited
	s.mu.Unlock()

	if alreadyExited {
		return nil
	}

	err := s.transport.Kill()
	if err != nil && isProcessGone(err) {
		return nil
	}

	return err
}

func isProcessGone(err error) bool {
	return stderrors.Is(err, os.ErrProcessDone)
}

// Messages returns the decoded stdout record stream. The channel is closed
// when stdout ends. In binary mode each element is a raw []byte chunk.
func (s *Shell) Messages() <-chan any {
	return s.messages
}

// StderrRecords returns the decoded stderr record stream. The channel is
// closed when stderr ends. Raw stderr text is independently retained for
// error classification regardless of what consumers do with this channel.
func (s *Shell) StderrRecords() <-chan any {
	return s.stderrRecords
}

// Errors returns the recoverable-error stream, carrying decode failures for
// individual records. The session keeps running past them. The channel is
// closed at the terminal transition.
func (s *Shell) Errors() <-chan error {
	return s.errs
}

// Done is closed exactly once, at the terminal transition.
func (s *Shell) Done() <-chan struct{} {
	return s.done
}

// Wait blocks until the terminal transition (or ctx cancellation) and
// returns the terminal error: nil for a clean exit or a termination the
// caller requested, a *ProcessError otherwise. Idempotent.
func (s *Shell) Wait(ctx context.Context) error {
	select {
	case <-s.done:
		return s.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the terminal error once Done is closed, nil before.
func (s *Shell) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.err
}

// ExitCode returns the recorded exit code. Valid only once Done is closed;
// ok is false before that.
func (s *Shell) ExitCode() (code int, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.exitCode, s.exited
}

// ExitSignal returns the name of the signal that terminated the process,
// if one did. Valid only once Done is closed.
func (s *Shell) ExitSignal() (signal string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.exitSignal, s.exited && s.exitSignal != ""
}

// Terminated reports whether Terminate or Kill was called.
func (s *Shell) Terminated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.terminated
}

// Script returns the resolved script path this session runs.
func (s *Shell) Script() string {
	return s.scriptPath
}

// Pid returns the interpreter process id.
func (s *Shell) Pid() int {
	return s.transport.Pid()
}
