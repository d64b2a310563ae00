package cli

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetsync/internal/config"
	"github.com/hupe1980/assetsync/internal/diff"
	"github.com/hupe1980/assetsync/internal/logging"
	"github.com/hupe1980/assetsync/pkg/assetsync"
)

// ErrOutOfDate is returned by check when a pass would change files.
var ErrOutOfDate = errors.New("generated assets are out of date")

func newCheckCommand() *cobra.Command {
	var summary bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report pending changes without writing",
		Long: `Check computes what a sync pass would change and prints it as a unified
diff. Nothing is written.

Exit codes:
  0  Everything is up to date
  1  Error
  2  Invalid arguments or configuration
  3  A sync pass would change files`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cfg := config.FromContext(ctx)
			logger := logging.FromContext(ctx)

			plan, err := assetsync.Plan(ctx, passOptions(ctx)...)
			if err != nil {
				if errors.Is(err, assetsync.ErrAssetRootMissing) {
					logger.Info("asset directory not found, nothing to check", slog.String("root", cfg.AssetRoot()))
					return nil
				}

				return runtimeError(err)
			}

			w := cmd.OutOrStdout()

			if summary {
				for _, c := range plan.Changes {
					_, _ = fmt.Fprintf(w, "%s %s\n", c.Action, c.Path)
				}
			} else {
				diff.WriteChanges(w, plan.Changes, colorFor(w, cfg.NoColor))
			}

			if !plan.UpToDate() {
				return &ExitError{
					Code: exitOutOfDate,
					Err:  fmt.Errorf("%w: %d pending change(s)", ErrOutOfDate, len(plan.Changes)),
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&summary, "summary", false, "list changed paths without diffs")

	return cmd
}
