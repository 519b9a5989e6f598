// Package config holds the resolved session configuration shared between
// the public pyshell package and the internal transport packages.
package config

import (
	"log/slog"

	"github.com/PaulBPy/python-shell/internal/codec"
)

const (
	// DefaultEncoding is the text encoding applied to the stdio pipes when
	// no encoding option is given.
	DefaultEncoding = "utf-8"

	// DefaultMaxStderrBuffer caps the stderr text retained for error
	// classification. Stderr records keep flowing past the cap; only the
	// buffer stops growing, preventing unbounded memory usage.
	DefaultMaxStderrBuffer = 10 * 1024 * 1024 // 10MB
)

// Options is the full configuration for one shell session.
// It is populated by the functional options in the pyshell package and is
// immutable once the session has been constructed.
type Options struct {
	// Mode selects the built-in wire format (text, json, binary).
	Mode codec.Mode

	// Formatter, Parser and StderrParser override the mode's built-in codec
	// functions when non-nil.
	Formatter    codec.Formatter
	Parser       codec.Parser
	StderrParser codec.Parser

	// Encoding is the IANA name of the text encoding used on the stdio
	// pipes in non-binary modes. Defaults to UTF-8.
	Encoding string

	// PythonPath is an explicit interpreter executable. If empty, the
	// platform default is searched in PATH and common locations.
	PythonPath string

	// PythonOptions are interpreter flags passed before the script path
	// (for example "-u").
	PythonOptions []string

	// ScriptFolder is the base directory relative script paths are
	// resolved against.
	ScriptFolder string

	// Args are script arguments passed after the script path.
	Args []string

	// Env provides additional environment variables for the process.
	Env map[string]string

	// Cwd is the working directory for the process.
	Cwd string

	// Logger receives debug and operational messages. Nil means silent.
	Logger *slog.Logger

	// MaxStderrBuffer overrides DefaultMaxStderrBuffer when positive.
	MaxStderrBuffer int

	// Transport injects a custom transport, bypassing interpreter
	// discovery and process spawning. Used for testing and mocking.
	Transport Transport
}

// StderrCap returns the effective stderr retention limit.
func (o *Options) StderrCap() int {
	if o.MaxStderrBuffer > 0 {
		return o.MaxStderrBuffer
	}

	return DefaultMaxStderrBuffer
}
