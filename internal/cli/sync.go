package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetsync/internal/config"
	"github.com/hupe1980/assetsync/internal/coordinator"
	"github.com/hupe1980/assetsync/internal/logging"
)

func newSyncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Run one sync pass now",
		Long: `Sync regenerates the Dart accessors and updates pubspec.yaml once,
regardless of the auto-sync setting.

A missing asset directory is not an error: nothing is generated and the
command exits successfully.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)

			coord := newCoordinator(ctx, newStore(cfg), newNotifier(cmd, cfg))
			defer coord.Close()

			if err := coord.ForceSync(); err != nil {
				return runtimeError(err)
			}

			if coord.State() == coordinator.StateIdle {
				logging.FromContext(ctx).Info("asset directory not found, nothing to sync",
					slog.String("root", cfg.AssetRoot()))
			}

			return nil
		},
	}
}
