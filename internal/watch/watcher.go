package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// EventKind classifies a change.
type EventKind int

const (
	KindChange EventKind = iota
	KindCreate
	KindDelete
	KindRename
)

// String returns the lower-case kind name.
func (k EventKind) String() string {
	switch k {
	case KindCreate:
		return "create"
	case KindDelete:
		return "delete"
	case KindRename:
		return "rename"
	default:
		return "change"
	}
}

// Event is a single relevant change below the asset root.
type Event struct {
	Path string
	Kind EventKind
}

// Handler receives events. It is called from the watcher goroutine and
// must not block for long.
type Handler func(Event)

// Options configures the watch behaviour.
type Options struct {
	// Root is the asset root to watch recursively. It may not exist yet;
	// its parent is watched so that creating it is noticed.
	Root string

	// Logger is used for structured logging.
	Logger *slog.Logger

	// Ready, when set, is closed once the initial directories are watched.
	Ready chan<- struct{}
}

// Run watches opts.Root until ctx is cancelled and forwards every relevant
// change to handle.
func Run(ctx context.Context, opts Options, handle Handler) error {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return fmt.Errorf("resolving asset root %q: %w", opts.Root, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	parent := filepath.Dir(root)
	if err := watcher.Add(parent); err != nil {
		return fmt.Errorf("watching %s: %w", parent, err)
	}

	if isDir(root) {
		if err := addRecursive(watcher, root); err != nil {
			return fmt.Errorf("watching asset directory: %w", err)
		}
	}

	opts.Logger.Debug("watching assets", slog.String("root", root), slog.Int("dirs", len(watcher.WatchList())))

	if opts.Ready != nil {
		close(opts.Ready)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if !within(root, event.Name) {
				continue
			}

			// New directories (including the root and hidden ones) are
			// watched too. The scan includes hidden directories.
			if event.Has(fsnotify.Create) && isDir(event.Name) {
				if addErr := addRecursive(watcher, event.Name); addErr != nil {
					opts.Logger.Warn("watching new directory", slog.String("path", event.Name), slog.String("error", addErr.Error()))
				}
			}

			if !isRelevant(event) {
				continue
			}

			handle(Event{Path: event.Name, Kind: kindOf(event)})

		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			opts.Logger.Error("watcher error", slog.String("error", watchErr.Error()))
		}
	}
}

// addRecursive walks root and adds all directories to the watcher,
// including hidden ones.
func addRecursive(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			return watcher.Add(path)
		}

		return nil
	})
}

// isRelevant filters out permission changes, editor temporaries and
// hidden files.
func isRelevant(event fsnotify.Event) bool {
	if event.Op == 0 {
		return false
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}

	name := filepath.Base(event.Name)

	if strings.HasPrefix(name, ".") || strings.HasSuffix(name, "~") ||
		strings.HasSuffix(name, ".swp") || strings.HasPrefix(name, "#") {
		return false
	}

	return true
}

func kindOf(event fsnotify.Event) EventKind {
	switch {
	case event.Has(fsnotify.Create):
		return KindCreate
	case event.Has(fsnotify.Remove):
		return KindDelete
	case event.Has(fsnotify.Rename):
		return KindRename
	default:
		return KindChange
	}
}

// within reports whether p is root or lies below it.
func within(root, p string) bool {
	if p == root {
		return true
	}

	return strings.HasPrefix(p, root+string(filepath.Separator))
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
