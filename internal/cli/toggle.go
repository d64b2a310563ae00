package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hupe1980/assetsync/internal/config"
)

func newToggleCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle [on|off]",
		Short: "Flip or set the auto-sync setting",
		Long: `Toggle flips auto-sync and stores the new value in ` + config.FileName + `
(or the file given with --config). Pass "on" or "off" to set it explicitly.

A running "assetsync watch" picks the stored value up on its next start;
use the t key to toggle a running watcher.`,
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"on", "off", "true", "false"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.FromContext(cmd.Context())
			store := newStore(cfg)

			enabled := !store.AutoSync()
			if len(args) == 1 {
				enabled = args[0] == "on" || args[0] == "true"
			}

			if err := store.SetAutoSync(enabled); err != nil {
				return runtimeError(fmt.Errorf("saving auto-sync setting: %w", err))
			}

			state := "disabled"
			if enabled {
				state = "enabled"
			}

			_, err := fmt.Fprintf(cmd.OutOrStdout(), "Auto-sync %s (%s: auto-sync=%s)\n",
				state, store.Path(), strconv.FormatBool(enabled))

			return err
		},
	}
}
