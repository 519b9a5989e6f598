package interp

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/PaulBPy/python-shell/internal/config"
)

// ResolveScript resolves the script path against the configured script
// folder. Absolute paths pass through unchanged.
func ResolveScript(script string, options *config.Options) string {
	if options.ScriptFolder == "" || filepath.IsAbs(script) {
		return script
	}

	return filepath.Join(options.ScriptFolder, script)
}

// BuildArgs constructs the interpreter argument list: interpreter flags
// first, then the script path, then the script's own arguments. Ordering is
// preserved exactly as configured.
func BuildArgs(scriptPath string, options *config.Options) []string {
	args := make([]string, 0, len(options.PythonOptions)+1+len(options.Args))
	args = append(args, options.PythonOptions...)
	args = append(args, scriptPath)
	args = append(args, options.Args...)

	return args
}

// BuildEnvironment constructs the environment for the process: the current
// environment with the configured variables appended (later entries win).
// Returns nil when no variables are configured, inheriting the parent
// environment unchanged.
func BuildEnvironment(options *config.Options) []string {
	if len(options.Env) == 0 {
		return nil
	}

	env := os.Environ()

	for key, value := range options.Env {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}

	return env
}
