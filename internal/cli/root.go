// Package cli implements the cobra command tree for assetsync.
package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetsync/internal/config"
	"github.com/hupe1980/assetsync/internal/logging"
)

// Exit codes.
const (
	exitRuntime   = 1
	exitUsage     = 2
	exitOutOfDate = 3
)

// ExitError wraps an error with a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}

	return fmt.Sprintf("exit code %d", e.Code)
}

func (e *ExitError) Unwrap() error { return e.Err }

// runtimeError marks err as a runtime failure unless it already carries a
// code. Invalid configuration maps to the usage code.
func runtimeError(err error) error {
	if err == nil {
		return nil
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return err
	}

	if errors.Is(err, config.ErrInvalid) {
		return &ExitError{Code: exitUsage, Err: err}
	}

	return &ExitError{Code: exitRuntime, Err: err}
}

// Execute builds the command tree, runs it, and returns the exit code.
func Execute(stderr io.Writer) int {
	cmd := NewRootCommand()

	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(stderr, "Error:", err)

		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			return exitErr.Code
		}

		return exitRuntime
	}

	return 0
}

// NewRootCommand constructs the top-level cobra.Command with all
// subcommands attached.
func NewRootCommand() *cobra.Command {
	var (
		cfgFile string
		logFile io.Closer
	)

	cmd := &cobra.Command{
		Use:   "assetsync",
		Short: "Generate typed Dart accessors for Flutter assets",
		Long: `assetsync keeps a Flutter project's assets and code in step.

It walks the asset directory, generates one Dart class per directory with a
constant per file, and registers every asset directory in the flutter:
assets: block of pubspec.yaml. Run it once with "sync", keep it running
with "watch", or verify a checkout with "check".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cmd, cfgFile)
			if err != nil {
				return &ExitError{Code: exitUsage, Err: err}
			}

			var logger *slog.Logger
			logger, logFile = logging.Setup(cfg)

			ctx := cmd.Context()
			ctx = config.NewContext(ctx, cfg)
			ctx = logging.NewContext(ctx, logger)
			cmd.SetContext(ctx)

			logger.Debug("configuration loaded",
				slog.String("projectDir", cfg.ProjectDir),
				slog.String("configFile", cfg.ConfigFile),
				slog.String("logLevel", cfg.LogLevel),
				slog.String("logFormat", cfg.LogFormat),
			)

			return nil
		},
		PersistentPostRunE: func(*cobra.Command, []string) error {
			if logFile != nil {
				return logFile.Close()
			}

			return nil
		},
	}

	registerGlobalFlags(cmd, &cfgFile)

	// Flag parsing errors return exit code 2.
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &ExitError{Code: exitUsage, Err: err}
	})

	cmd.AddCommand(
		newSyncCommand(),
		newWatchCommand(),
		newCheckCommand(),
		newInspectCommand(),
		newToggleCommand(),
		newInitCommand(),
		newVersionCommand(),
		newCompletionCommand(),
	)

	return cmd
}
