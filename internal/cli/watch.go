package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hupe1980/assetsync/internal/config"
	"github.com/hupe1980/assetsync/internal/coordinator"
	"github.com/hupe1980/assetsync/internal/logging"
	"github.com/hupe1980/assetsync/internal/status"
	"github.com/hupe1980/assetsync/internal/watch"
)

type watchOptions struct {
	keys    bool
	noKeys  bool
	noFirst bool
}

func newWatchCommand() *cobra.Command {
	opts := &watchOptions{}

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Watch the asset directory and sync on change",
		Long: `Watch monitors the asset directory recursively and runs a sync pass
once changes have settled for the debounce interval (600ms by default).

With auto-sync enabled an initial pass runs on start. Changes that arrive
while a pass is running are dropped unless catch-up is enabled.

When stdin is a terminal the following keys are read (followed by Enter):
  s  sync now, regardless of auto-sync
  t  toggle auto-sync (persisted in ` + config.FileName + `)
  q  quit`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWatch(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&opts.keys, "keys", false, "read key commands from stdin even when it is not a terminal")
	f.BoolVar(&opts.noKeys, "no-keys", false, "do not read key commands from stdin")
	f.BoolVar(&opts.noFirst, "no-initial-sync", false, "skip the initial pass")

	return cmd
}

func runWatch(cmd *cobra.Command, opts *watchOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg := config.FromContext(ctx)
	logger := logging.FromContext(ctx)
	notifier := newNotifier(cmd, cfg)
	store := newStore(cfg)

	coord := newCoordinator(ctx, store, notifier)
	defer coord.Close()

	if store.AutoSync() && !opts.noFirst {
		// Failures are reported through the notifier; watching continues.
		_ = coord.ForceSync()
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return watch.Run(gctx, watch.Options{Root: cfg.AssetRoot(), Logger: logger}, coord.HandleEvent)
	})

	if readsKeys(cmd, opts) {
		notifier.Info("watching " + cfg.AssetRoot() + " (s: sync, t: toggle auto-sync, q: quit)")

		g.Go(func() error {
			return readKeys(gctx, cmd.InOrStdin(), coord, cancel)
		})
	} else {
		notifier.Info("watching " + cfg.AssetRoot())
	}

	if err := g.Wait(); err != nil {
		return runtimeError(err)
	}

	logger.Debug("watch stopped")

	return nil
}

func readsKeys(cmd *cobra.Command, opts *watchOptions) bool {
	if opts.noKeys {
		return false
	}

	if opts.keys {
		return true
	}

	f, ok := cmd.InOrStdin().(*os.File)

	return ok && status.IsTerminal(f)
}

// readKeys dispatches line-based key commands until ctx is done, quit is
// requested or r is exhausted. Reading happens on a separate goroutine so
// that cancellation is not blocked by a pending read.
func readKeys(ctx context.Context, r io.Reader, coord *coordinator.Coordinator, quit context.CancelFunc) error {
	lines := make(chan string)

	go func() {
		defer close(lines)

		sc := bufio.NewScanner(r)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	logger := logging.FromContext(ctx)

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}

			if err := handleKey(strings.TrimSpace(line), coord, quit); err != nil {
				logger.Warn("key command failed", slog.String("error", err.Error()))
			}
		}
	}
}

var errUnknownKey = errors.New("unknown key")

// handleKey runs the command bound to key.
func handleKey(key string, coord *coordinator.Coordinator, quit context.CancelFunc) error {
	switch strings.ToLower(key) {
	case "":
		return nil
	case "s":
		err := coord.ForceSync()
		if errors.Is(err, coordinator.ErrBusy) {
			return err
		}

		// Pass failures are already reported by the coordinator.
		return nil
	case "t":
		_, err := coord.Toggle()
		return err
	case "q":
		quit()
		return nil
	default:
		return fmt.Errorf("%w %q: use s, t or q", errUnknownKey, key)
	}
}
