package cli

import (
	"context"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetsync/internal/config"
	"github.com/hupe1980/assetsync/internal/coordinator"
	"github.com/hupe1980/assetsync/internal/logging"
	"github.com/hupe1980/assetsync/internal/status"
	"github.com/hupe1980/assetsync/pkg/assetsync"
)

// passOptions maps the loaded configuration onto library options.
func passOptions(ctx context.Context) []assetsync.Option {
	cfg := config.FromContext(ctx)

	return []assetsync.Option{
		assetsync.WithProjectDir(cfg.ProjectDir),
		assetsync.WithAssetsDir(cfg.AssetsDirectory),
		assetsync.WithOutputDir(cfg.OutputDir()),
		assetsync.WithManifest(cfg.Manifest),
		assetsync.WithClassName(cfg.ClassName),
		assetsync.WithLogger(logging.FromContext(ctx)),
	}
}

// runPass is the coordinator pass function for the loaded configuration.
func runPass(ctx context.Context) (*assetsync.Result, error) {
	return assetsync.Run(ctx, passOptions(ctx)...)
}

// colorFor reports whether styled output should go to w.
func colorFor(w io.Writer, noColor bool) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}

	return status.ColorEnabled(f, noColor)
}

// newNotifier returns the terminal notifier writing to the command's stderr.
func newNotifier(cmd *cobra.Command, cfg *config.Config) *status.Terminal {
	w := cmd.ErrOrStderr()

	return status.NewTerminal(w,
		status.WithColor(colorFor(w, cfg.NoColor)),
		status.WithQuiet(cfg.Quiet),
	)
}

// newCoordinator wires a coordinator for the loaded configuration.
func newCoordinator(ctx context.Context, settings coordinator.Settings, notifier coordinator.Notifier) *coordinator.Coordinator {
	cfg := config.FromContext(ctx)

	return coordinator.New(ctx, runPass, settings, notifier, coordinator.Options{
		AssetRoot: cfg.AssetRoot(),
		Ignore:    []string{cfg.OutputPath(), cfg.ManifestPath()},
		Debounce:  cfg.Debounce,
		CatchUp:   cfg.CatchUp,
	})
}

// newStore returns the settings store for the loaded configuration.
func newStore(cfg *config.Config) *config.Store {
	return config.NewStore(cfg.SettingsPath(), cfg.AutoSync)
}
