// Package interp locates the python interpreter and builds the command
// line and environment for a session's process.
package interp

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/PaulBPy/python-shell/internal/errors"
)

// VersionProbeTimeout bounds the interpreter version probe.
const VersionProbeTimeout = 2 * time.Second

// DefaultExecutable returns the platform-specific default interpreter name.
func DefaultExecutable() string {
	if runtime.GOOS == "windows" {
		return "python.exe"
	}

	return "python3"
}

// Config holds configuration for interpreter discovery.
type Config struct {
	// PythonPath is an explicit interpreter path that skips PATH search.
	PythonPath string

	// Logger is an optional logger for discovery operations.
	Logger *slog.Logger
}

// Discoverer locates the python interpreter executable.
type Discoverer interface {
	// Discover returns the path to the interpreter or an
	// InterpreterNotFoundError listing every location searched.
	Discover(ctx context.Context) (string, error)
}

type discoverer struct {
	cfg *Config
	log *slog.Logger
}

// Compile-time verification that discoverer implements Discoverer.
var _ Discoverer = (*discoverer)(nil)

// NewDiscoverer creates a new interpreter discoverer.
func NewDiscoverer(cfg *Config) Discoverer {
	if cfg == nil {
		cfg = &Config{}
	}

	log := cfg.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
	}

	return &discoverer{cfg: cfg, log: log}
}

// Discover locates the python interpreter.
func (d *discoverer) Discover(_ context.Context) (string, error) {
	// If explicit path provided, use it and only it. A bare executable
	// name is still resolved through PATH so callers can pass "python3.12".
	if d.cfg.PythonPath != "" {
		d.log.Debug("Using explicit interpreter path", "python_path", d.cfg.PythonPath)

		if strings.ContainsRune(d.cfg.PythonPath, os.PathSeparator) {
			if _, err := os.Stat(d.cfg.PythonPath); err == nil {
				return d.cfg.PythonPath, nil
			}

			return "", &errors.InterpreterNotFoundError{SearchedPaths: []string{d.cfg.PythonPath}}
		}

		if path, err := exec.LookPath(d.cfg.PythonPath); err == nil {
			return path, nil
		}

		return "", &errors.InterpreterNotFoundError{SearchedPaths: []string{d.cfg.PythonPath}}
	}

	searchedPaths := make([]string, 0, 4)

	// Search in PATH
	name := DefaultExecutable()
	d.log.Debug("Searching for interpreter in PATH", "name", name)

	if path, err := exec.LookPath(name); err == nil {
		d.log.Debug("Found interpreter in PATH", "path", path)

		return path, nil
	}

	searchedPaths = append(searchedPaths, "$PATH")

	// Check common locations
	commonPaths := []string{
		filepath.Join("/usr/local/bin", name),
		filepath.Join("/usr/bin", name),
	}

	for _, path := range commonPaths {
		searchedPaths = append(searchedPaths, path)
		d.log.Debug("Checking common path", "path", path)

		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	d.log.Warn("Python interpreter not found", "searched_paths", searchedPaths)

	return "", &errors.InterpreterNotFoundError{SearchedPaths: searchedPaths}
}

// Version runs the interpreter's version probe and returns the reported
// version string (for example "Python 3.12.1").
//
// Python 2 writes the version banner to stderr, python 3 to stdout, so both
// streams are captured.
func Version(ctx context.Context, pythonPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, VersionProbeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, pythonPath, "--version")

	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", &errors.SpawnError{Err: err}
	}

	return strings.TrimSpace(string(output)), nil
}
