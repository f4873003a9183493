package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"

	"github.com/sheikhrachel/gol-boards/api"
	"github.com/sheikhrachel/gol-boards/cli"
	"github.com/sheikhrachel/gol-boards/model"
	"github.com/sheikhrachel/gol-boards/store"
	"github.com/sheikhrachel/gol-boards/utils"
)

// defaultConfigFile is picked up from the working directory when -config is not given
const defaultConfigFile = "config.json"

func main() {
	// Use a minimal logger until the full one is configured.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})))

	// Handle Ctrl+C gracefully
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		stop()
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, exitErr.Message)
			os.Exit(exitErr.Code)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// run encapsulates the main application logic for easier testing and error handling.
func run(ctx context.Context, outW, logW io.Writer, args []string) error {
	opts, shouldExit, err := cli.Parse(args, outW)
	if err != nil {
		return err
	}
	if shouldExit {
		return nil
	}

	config, err := loadConfig(opts)
	if err != nil {
		return &cli.ExitError{Code: 1, Message: err.Error()}
	}

	logger := utils.NewLogger(config.LogLevel, config.LogFormat, logW)
	ctx = utils.WithLogger(ctx, logger)
	logger.Debug("Logger configured successfully.", "command", opts.Command)

	switch opts.Command {
	case cli.CommandPlay:
		return play(ctx, config, opts.BoardPath, outW)
	default:
		return serve(ctx, config)
	}
}

// loadConfig layers defaults, the config file and command line overrides, in that order
func loadConfig(opts *cli.Options) (utils.Config, error) {
	config := utils.DefaultConfig()

	path := opts.ConfigPath
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err == nil {
			path = defaultConfigFile
		}
	}
	if path != "" {
		var err error
		if config, err = utils.LoadConfig(path); err != nil {
			return config, err
		}
	}

	if opts.ListenAddr != "" {
		config.ListenAddr = opts.ListenAddr
	}
	if opts.Database != "" {
		config.DatabasePath = opts.Database
	}
	if opts.LogLevel != "" {
		config.LogLevel = opts.LogLevel
	}
	if opts.LogFormat != "" {
		config.LogFormat = opts.LogFormat
	}

	return config, config.Validate()
}

// serve runs the HTTP board service until ctx is cancelled
func serve(ctx context.Context, config utils.Config) error {
	logger := utils.LoggerFromContext(ctx)

	st, err := openStore(ctx, config)
	if err != nil {
		return &cli.ExitError{Code: 1, Message: err.Error()}
	}
	defer st.Close()

	engine := model.NewEngine(config.Rules())
	logger.Info("Engine configured",
		"survive_min", config.SurviveMin,
		"survive_max", config.SurviveMax,
		"reproduce_count", config.ReproduceCount,
		"max_board_size", config.MaxBoardSize,
		"max_iterations", config.MaxIterations,
	)

	return api.NewServer(config, engine, st, logger).ListenAndServe(ctx)
}

func openStore(ctx context.Context, config utils.Config) (store.Store, error) {
	logger := utils.LoggerFromContext(ctx)
	if config.DatabasePath == "" {
		logger.Warn("No database configured, boards are kept in memory")
		return store.NewMemory(), nil
	}

	logger.Info("Opening board database", "path", config.DatabasePath)
	db, err := store.OpenSQLite(ctx, config.DatabasePath)
	if err != nil {
		return nil, err
	}
	return db, nil
}
