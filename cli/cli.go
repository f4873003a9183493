package cli

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

const (
	CommandServe = "serve"
	CommandPlay  = "play"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

// Options is what the command line asked for. Empty strings mean "use the config file or default".
type Options struct {
	Command    string
	ConfigPath string
	ListenAddr string
	Database   string
	LogLevel   string
	LogFormat  string
	BoardPath  string
}

// Parse processes command-line arguments. It returns the parsed Options,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Options, bool, error) {
	slog.Debug("CLI parser started.")

	opts := &Options{Command: CommandServe}
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		opts.Command = args[0]
		args = args[1:]
	}
	if opts.Command != CommandServe && opts.Command != CommandPlay {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unknown command %q: must be 'serve' or 'play'", opts.Command)}
	}

	flagSet := flag.NewFlagSet("gol", flag.ContinueOnError)
	flagSet.SetOutput(output)

	flagSet.Usage = func() {
		fmt.Fprint(output, `
gol - Conway's Game of Life board service.

Usage:
  gol [serve] [options]    run the HTTP board service (default)
  gol play [options]       animate a board in the terminal

Options:
`)
		flagSet.PrintDefaults()
	}

	flagSet.StringVar(&opts.ConfigPath, "config", "", "Path to a .json or .hcl configuration file.")
	flagSet.StringVar(&opts.ListenAddr, "addr", "", "Address for the HTTP server, e.g. ':8080'.")
	flagSet.StringVar(&opts.Database, "db", "", "Path to the SQLite database. Empty keeps boards in memory.")
	flagSet.StringVar(&opts.LogLevel, "log-level", "", "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	flagSet.StringVar(&opts.LogFormat, "log-format", "", "Log output format. Options: 'text' or 'json'.")
	flagSet.StringVar(&opts.BoardPath, "board", "", "play: JSON file holding a 0/1 matrix. Empty seeds a random board.")

	if err := flagSet.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return nil, true, nil
		}
		return nil, false, &ExitError{Code: 2, Message: err.Error()}
	}
	if flagSet.NArg() > 0 {
		return nil, false, &ExitError{Code: 2, Message: fmt.Sprintf("unexpected arguments: %v", flagSet.Args())}
	}
	slog.Debug("Arguments parsed successfully.")

	opts.LogFormat = strings.ToLower(opts.LogFormat)
	switch opts.LogFormat {
	case "", "text", "json":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-format: must be 'text' or 'json'"}
	}

	opts.LogLevel = strings.ToLower(opts.LogLevel)
	switch opts.LogLevel {
	case "", "debug", "info", "warn", "error":
		// valid
	default:
		return nil, false, &ExitError{Code: 2, Message: "invalid log-level: must be 'debug', 'info', 'warn', or 'error'"}
	}

	slog.Debug("CLI parser finished successfully.", "options", opts)
	return opts, false, nil
}
