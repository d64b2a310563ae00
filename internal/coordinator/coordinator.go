// Package coordinator decides when a sync pass runs. It debounces change
// events, guards against overlapping passes and applies the auto-sync
// setting.
package coordinator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/assetsync/internal/logging"
	"github.com/hupe1980/assetsync/internal/watch"
	"github.com/hupe1980/assetsync/pkg/assetsync"
)

// ErrBusy is returned when a pass is requested while another one runs.
var ErrBusy = errors.New("a sync pass is already running")

// State is the coordinator's externally visible state.
type State int

const (
	StateIdle State = iota
	StateDebouncing
	StateSyncing
	StateSynced
)

// String returns the lower-case state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateSyncing:
		return "syncing"
	case StateSynced:
		return "synced"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Defaults for Options.
const (
	DefaultDebounce      = 600 * time.Millisecond
	DefaultSyncedDisplay = 2 * time.Second
)

// Settings is the key-value store holding the auto-sync flag.
type Settings interface {
	AutoSync() bool
	SetAutoSync(enabled bool) error
}

// Notifier receives user-facing status updates.
type Notifier interface {
	StateChanged(state State)
	Synced(res *assetsync.Result)
	Failed(err error)
	Info(msg string)
}

// PassFunc runs one sync pass.
type PassFunc func(ctx context.Context) (*assetsync.Result, error)

// Options configures a Coordinator.
type Options struct {
	// AssetRoot is checked for existence before every pass.
	AssetRoot string

	// Ignore lists files or directories whose events never trigger a
	// pass, typically the generated output directory and the manifest.
	Ignore []string

	// Debounce is the quiet period before an event-triggered pass.
	Debounce time.Duration

	// SyncedDisplay is how long the Synced state is shown.
	SyncedDisplay time.Duration

	// CatchUp queues one follow-up pass when a trigger arrives mid-pass
	// instead of dropping it.
	CatchUp bool
}

// Coordinator serializes sync passes triggered by events, manual requests
// and the auto-sync toggle.
type Coordinator struct {
	ctx      context.Context
	pass     PassFunc
	settings Settings
	notifier Notifier
	opts     Options

	debouncer *Debouncer

	mu      sync.Mutex
	state   State
	syncing bool
	queued  bool
	closed  bool
	display *time.Timer
	lastErr error
}

// New creates a Coordinator. ctx carries the logger and is handed to every
// pass; it does not cancel a running pass.
func New(ctx context.Context, pass PassFunc, settings Settings, notifier Notifier, opts Options) *Coordinator {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	if opts.SyncedDisplay <= 0 {
		opts.SyncedDisplay = DefaultSyncedDisplay
	}

	opts.Ignore = absPaths(opts.Ignore)

	c := &Coordinator{
		ctx:      context.WithoutCancel(ctx),
		pass:     pass,
		settings: settings,
		notifier: notifier,
		opts:     opts,
	}

	c.debouncer = NewDebouncer(opts.Debounce, func(path string, coalesced int) {
		logging.FromContext(c.ctx).Debug("debounce elapsed",
			slog.String("last", path), slog.Int("events", coalesced))

		_ = c.trigger(false)
	})

	return c
}

// State returns the current state.
func (c *Coordinator) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// LastError returns the error of the most recent failed pass, or nil.
func (c *Coordinator) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lastErr
}

// HandleEvent feeds a filesystem change into the debounce timer. Events on
// ignored paths are dropped.
func (c *Coordinator) HandleEvent(ev watch.Event) {
	if c.ignored(ev.Path) {
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}

	changed := false
	if c.state == StateIdle || c.state == StateSynced {
		c.stopDisplay()
		c.state = StateDebouncing
		changed = true
	}
	c.mu.Unlock()

	logging.FromContext(c.ctx).Debug("change event",
		slog.String("path", ev.Path), slog.String("kind", ev.Kind.String()))

	c.debouncer.Trigger(ev.Path)

	if changed {
		c.notifier.StateChanged(StateDebouncing)
	}
}

// ForceSync runs a pass immediately regardless of the auto-sync setting.
// It returns ErrBusy when a pass is already running and the pass error
// otherwise.
func (c *Coordinator) ForceSync() error {
	c.debouncer.Stop()
	return c.trigger(true)
}

// Toggle flips the auto-sync setting, announces the new value and returns it.
func (c *Coordinator) Toggle() (bool, error) {
	enabled := !c.settings.AutoSync()
	if err := c.settings.SetAutoSync(enabled); err != nil {
		return !enabled, fmt.Errorf("saving auto-sync setting: %w", err)
	}

	msg := "Auto-sync disabled"
	if enabled {
		msg = "Auto-sync enabled"
	}

	logging.FromContext(c.ctx).Info(msg)
	c.notifier.Info(msg)

	return enabled, nil
}

// Close stops the pending debounce timer and the Synced display timer.
// Events and triggers after Close are ignored.
func (c *Coordinator) Close() {
	c.debouncer.Stop()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.stopDisplay()
}

// trigger runs a pass unless one is in flight. manual bypasses auto-sync.
func (c *Coordinator) trigger(manual bool) error {
	logger := logging.FromContext(c.ctx)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}

	if c.syncing {
		if c.opts.CatchUp && !manual {
			c.queued = true
		}
		c.mu.Unlock()

		logger.Debug("sync already running, trigger dropped", slog.Bool("queued", c.opts.CatchUp && !manual))

		return ErrBusy
	}

	if !manual && !c.settings.AutoSync() {
		changed := c.setState(StateIdle)
		c.mu.Unlock()

		logger.Debug("auto-sync disabled, skipping pass")
		c.announce(changed)

		return nil
	}

	if !c.rootExists() {
		changed := c.setState(StateIdle)
		c.mu.Unlock()

		logger.Debug("asset root missing, skipping pass", slog.String("root", c.opts.AssetRoot))
		c.announce(changed)

		return nil
	}

	c.syncing = true
	c.stopDisplay()
	c.setState(StateSyncing)
	c.mu.Unlock()

	c.notifier.StateChanged(StateSyncing)

	res, err := c.runPass()

	c.mu.Lock()
	c.syncing = false
	followUp := c.queued
	c.queued = false

	if err != nil && !errors.Is(err, assetsync.ErrAssetRootMissing) {
		c.lastErr = err
		c.setState(StateIdle)
		c.mu.Unlock()

		logger.Error("sync failed", slog.String("error", err.Error()))
		c.notifier.Failed(err)
		c.notifier.StateChanged(StateIdle)

		return err
	}

	if err != nil {
		c.setState(StateIdle)
		c.mu.Unlock()

		logger.Debug("asset root vanished during pass")
		c.notifier.StateChanged(StateIdle)

		return nil
	}

	c.lastErr = nil

	// A change that arrived mid-pass re-armed the debouncer.
	next := StateSynced
	if c.debouncer.Pending() {
		next = StateDebouncing
	} else {
		c.startDisplay()
	}

	c.setState(next)
	c.mu.Unlock()

	logger.Info("assets synced",
		slog.Int("categories", res.Categories),
		slog.Int("classes", res.Classes),
		slog.Int("assets", res.Assets),
		slog.Duration("duration", res.Duration),
	)

	for _, col := range res.Collisions {
		logger.Warn("identifier collision", slog.String("detail", col.String()))
	}

	c.notifier.Synced(res)
	c.notifier.StateChanged(next)

	if followUp {
		logger.Debug("running queued follow-up pass")
		return c.trigger(false)
	}

	return nil
}

// runPass runs the pass function, turning a panic into an error.
func (c *Coordinator) runPass() (res *assetsync.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("sync pass panicked: %v", r)
		}
	}()

	return c.pass(c.ctx)
}

// setState updates the state and reports whether it changed. Callers hold mu.
func (c *Coordinator) setState(s State) bool {
	if c.state == s {
		return false
	}

	c.state = s

	return true
}

func (c *Coordinator) announce(changed bool) {
	if changed {
		c.notifier.StateChanged(StateIdle)
	}
}

// startDisplay schedules the Synced -> Idle transition. Callers hold mu.
func (c *Coordinator) startDisplay() {
	var t *time.Timer

	t = time.AfterFunc(c.opts.SyncedDisplay, func() {
		c.mu.Lock()
		if c.display != t || c.state != StateSynced {
			c.mu.Unlock()
			return
		}

		c.display = nil
		c.state = StateIdle
		c.mu.Unlock()

		c.notifier.StateChanged(StateIdle)
	})

	c.display = t
}

// stopDisplay cancels the Synced display timer. Callers hold mu.
func (c *Coordinator) stopDisplay() {
	if c.display != nil {
		c.display.Stop()
		c.display = nil
	}
}

func (c *Coordinator) rootExists() bool {
	if c.opts.AssetRoot == "" {
		return true
	}

	info, err := os.Stat(c.opts.AssetRoot)

	return err == nil && info.IsDir()
}

// ignored reports whether p is one of the ignored paths or lies below one.
func (c *Coordinator) ignored(p string) bool {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}

	for _, ig := range c.opts.Ignore {
		if p == ig {
			return true
		}

		rel, err := filepath.Rel(ig, p)
		if err == nil && rel != "." && !strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel) {
			return true
		}
	}

	return false
}

// absPaths resolves relative entries against the working directory.
func absPaths(paths []string) []string {
	out := make([]string, 0, len(paths))

	for _, p := range paths {
		if abs, err := filepath.Abs(p); err == nil {
			p = abs
		}

		out = append(out, filepath.Clean(p))
	}

	return out
}
