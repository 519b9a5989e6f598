package pyshell

import (
	"log/slog"

	"github.com/PaulBPy/python-shell/internal/codec"
	"github.com/PaulBPy/python-shell/internal/config"
)

// Mode selects the built-in wire format for a session.
type Mode = codec.Mode

// Built-in modes.
const (
	// ModeText exchanges plain text records (the default).
	ModeText = codec.ModeText

	// ModeJSON exchanges newline-delimited JSON records.
	ModeJSON = codec.ModeJSON

	// ModeBinary passes raw bytes through with no framing or decoding.
	ModeBinary = codec.ModeBinary
)

// Formatter encodes an outbound message into record bytes.
type Formatter = codec.Formatter

// Parser decodes one complete inbound record.
type Parser = codec.Parser

// Transport abstracts the spawned process for the session layer.
// The default implementation spawns a python subprocess; custom transports
// can be injected with WithTransport for testing or mocking.
type Transport = config.Transport

// ExitStatus describes how a process ended.
type ExitStatus = config.ExitStatus

// Option configures a session using the functional options pattern.
type Option func(*config.Options)

// applyOptions applies functional options to a fresh Options struct.
func applyOptions(opts []Option) *config.Options {
	options := &config.Options{}
	for _, opt := range opts {
		opt(options)
	}

	return options
}

// WithLogger sets the logger for debug output.
// If not set, logging is disabled (silent operation).
func WithLogger(logger *slog.Logger) Option {
	return func(o *config.Options) {
		o.Logger = logger
	}
}

// WithMode selects the wire format: ModeText (default), ModeJSON or
// ModeBinary.
func WithMode(mode Mode) Option {
	return func(o *config.Options) {
		o.Mode = mode
	}
}

// WithFormatter overrides the outbound encoder for the configured mode.
func WithFormatter(format Formatter) Option {
	return func(o *config.Options) {
		o.Formatter = format
	}
}

// WithParser overrides the stdout record decoder for the configured mode.
func WithParser(parse Parser) Option {
	return func(o *config.Options) {
		o.Parser = parse
	}
}

// WithStderrParser overrides the stderr record decoder.
func WithStderrParser(parse Parser) Option {
	return func(o *config.Options) {
		o.StderrParser = parse
	}
}

// WithEncoding sets the IANA name of the text encoding used on the stdio
// pipes (default UTF-8).
func WithEncoding(name string) Option {
	return func(o *config.Options) {
		o.Encoding = name
	}
}

// WithPythonPath sets the interpreter executable. A bare name is resolved
// through PATH; if not set, the platform default ("python3", or
// "python.exe" on Windows) is searched.
func WithPythonPath(path string) Option {
	return func(o *config.Options) {
		o.PythonPath = path
	}
}

// WithPythonOptions sets interpreter flags passed before the script path,
// in order (for example "-u" for unbuffered output).
func WithPythonOptions(flags ...string) Option {
	return func(o *config.Options) {
		o.PythonOptions = flags
	}
}

// WithScriptFolder sets the base directory relative script paths are
// resolved against.
func WithScriptFolder(dir string) Option {
	return func(o *config.Options) {
		o.ScriptFolder = dir
	}
}

// WithArgs sets the script arguments passed after the script path, in order.
func WithArgs(args ...string) Option {
	return func(o *config.Options) {
		o.Args = args
	}
}

// WithEnv provides additional environment variables for the process.
func WithEnv(env map[string]string) Option {
	return func(o *config.Options) {
		o.Env = env
	}
}

// WithCwd sets the working directory for the process.
func WithCwd(dir string) Option {
	return func(o *config.Options) {
		o.Cwd = dir
	}
}

// WithMaxStderrBuffer caps the stderr text retained for error
// classification (default 10MB).
func WithMaxStderrBuffer(limit int) Option {
	return func(o *config.Options) {
		o.MaxStderrBuffer = limit
	}
}

// WithTransport injects a custom transport implementation, bypassing
// interpreter discovery and process spawning.
func WithTransport(transport Transport) Option {
	return func(o *config.Options) {
		o.Transport = transport
	}
}
