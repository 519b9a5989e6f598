// Package pyshell runs python scripts from Go and exchanges structured
// messages with them over standard input/output.
//
// A Shell spawns one python process and presents the exchange as typed
// record streams: newline-delimited text or JSON records (or raw bytes in
// binary mode) decoded through a configurable codec, with interpreter
// tracebacks on stderr turned into structured errors.
//
// # One-shot execution
//
// For scripts that run to completion, use Run or RunString:
//
//	ctx := context.Background()
//	messages, err := pyshell.Run(ctx, "script.py",
//	    pyshell.WithArgs("--count", "3"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, msg := range messages {
//	    fmt.Println(msg)
//	}
//
// # Interactive sessions
//
// For bidirectional exchanges, create a Shell and use Send together with
// the Messages channel:
//
//	sh, err := pyshell.New(ctx, "echo.py", pyshell.WithMode(pyshell.ModeJSON))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	if err := sh.Send(map[string]any{"op": "ping"}); err != nil {
//	    log.Fatal(err)
//	}
//
//	reply := <-sh.Messages()
//
//	if err := sh.End(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := sh.Wait(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Logging
//
// For detailed operation tracking, use WithLogger:
//
//	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
//	sh, err := pyshell.New(ctx, "script.py", pyshell.WithLogger(logger))
//
// # Error handling
//
// The package provides typed errors for different failure scenarios:
//
//	messages, err := pyshell.Run(ctx, "script.py")
//	if err != nil {
//	    if notFound, ok := errors.AsType[*pyshell.InterpreterNotFoundError](err); ok {
//	        log.Fatalf("python not installed, searched: %v", notFound.SearchedPaths)
//	    }
//	    if procErr, ok := errors.AsType[*pyshell.ProcessError](err); ok {
//	        log.Fatalf("script failed: %s\n%s", procErr.Message, procErr.Traceback)
//	    }
//	    log.Fatal(err)
//	}
//
// # Requirements
//
// A python interpreter must be installed and available in PATH ("python3",
// or "python.exe" on Windows). Use WithPythonPath to point at a specific
// interpreter.
package pyshell
