// Command pyshell runs python scripts through the python-shell session
// layer from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	pyshell "github.com/PaulBPy/python-shell"
)

// Version is set at build time.
var Version = "dev"

type rootFlags struct {
	pythonPath    string
	pythonOptions []string
	jsonMode      bool
	cwd           string
	verbose       bool
}

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	logger := charmlog.NewWithOptions(os.Stderr, charmlog.Options{
		ReportTimestamp: true,
	})

	cmd := newRootCommand(logger)
	cmd.SetArgs(args)

	return cmd.ExecuteContext(ctx)
}

func newRootCommand(logger *charmlog.Logger) *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:           "pyshell",
		Short:         "Run python scripts over a structured stdio session",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       Version,
	}

	root.SetVersionTemplate("{{printf \"%s\\n\" .Version}}")

	root.PersistentFlags().StringVar(&flags.pythonPath, "python", "", "python interpreter executable")
	root.PersistentFlags().StringArrayVar(&flags.pythonOptions, "python-option", nil, "interpreter flag passed before the script (repeatable)")
	root.PersistentFlags().BoolVar(&flags.jsonMode, "json", false, "exchange newline-delimited JSON records")
	root.PersistentFlags().StringVar(&flags.cwd, "cwd", "", "working directory for the python process")
	root.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	root.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		if flags.verbose {
			logger.SetLevel(charmlog.DebugLevel)
		}

		logger.With("command", cmd.Name()).Debug("command invocation")
	}

	root.AddCommand(
		newRunCommand(logger, flags),
		newExecCommand(logger, flags),
		newCheckCommand(logger, flags),
		newVersionCommand(logger, flags),
	)

	return root
}

func sessionOptions(logger *charmlog.Logger, flags *rootFlags, scriptArgs []string) []pyshell.Option {
	opts := []pyshell.Option{
		pyshell.WithLogger(slog.New(logger.With("component", "pyshell"))),
	}

	if flags.pythonPath != "" {
		opts = append(opts, pyshell.WithPythonPath(flags.pythonPath))
	}

	if len(flags.pythonOptions) > 0 {
		opts = append(opts, pyshell.WithPythonOptions(flags.pythonOptions...))
	}

	if flags.jsonMode {
		opts = append(opts, pyshell.WithMode(pyshell.ModeJSON))
	}

	if flags.cwd != "" {
		opts = append(opts, pyshell.WithCwd(flags.cwd))
	}

	if len(scriptArgs) > 0 {
		opts = append(opts, pyshell.WithArgs(scriptArgs...))
	}

	return opts
}

func printMessages(cmd *cobra.Command, jsonMode bool, messages []any) error {
	for _, msg := range messages {
		if jsonMode {
			data, err := json.Marshal(msg)
			if err != nil {
				return fmt.Errorf("render message: %w", err)
			}

			cmd.Println(string(data))

			continue
		}

		cmd.Println(msg)
	}

	return nil
}

func newRunCommand(logger *charmlog.Logger, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run <script.py> [args...]",
		Short: "Run a python script and print its records",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			messages, err := pyshell.Run(cmd.Context(), args[0], sessionOptions(logger, flags, args[1:])...)
			if err != nil {
				return err
			}

			return printMessages(cmd, flags.jsonMode, messages)
		},
	}
}

func newExecCommand(logger *charmlog.Logger, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "exec <code>",
		Short: "Run inline python code and print its records",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			messages, err := pyshell.RunString(cmd.Context(), args[0], sessionOptions(logger, flags, nil)...)
			if err != nil {
				return err
			}

			return printMessages(cmd, flags.jsonMode, messages)
		},
	}
}

func newCheckCommand(logger *charmlog.Logger, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "check <script.py>",
		Short: "Check a script's syntax without executing it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := pyshell.CheckSyntaxFile(cmd.Context(), args[0], sessionOptions(logger, flags, nil)...); err != nil {
				return err
			}

			logger.Info("syntax ok", "script", args[0])

			return nil
		},
	}
}

func newVersionCommand(logger *charmlog.Logger, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Report the python interpreter version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			version, err := pyshell.Version(cmd.Context(), sessionOptions(logger, flags, nil)...)
			if err != nil {
				return err
			}

			cmd.Println(version)

			return nil
		},
	}
}
