// Package status prints coordinator state changes and pass results to a
// terminal.
package status

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/hupe1980/assetsync/internal/coordinator"
	"github.com/hupe1980/assetsync/pkg/assetsync"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd())) //nolint:gosec // fd fits in int
}

// ColorEnabled reports whether styled output should be written to f.
// NO_COLOR in the environment and noColor both disable it.
func ColorEnabled(f *os.File, noColor bool) bool {
	if noColor || os.Getenv("NO_COLOR") != "" {
		return false
	}

	return IsTerminal(f)
}

type styles struct {
	stamp lipgloss.Style
	ok    lipgloss.Style
	busy  lipgloss.Style
	warn  lipgloss.Style
	fail  lipgloss.Style
	info  lipgloss.Style
	dim   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		stamp: r.NewStyle().Faint(true),
		ok:    r.NewStyle().Foreground(lipgloss.Color("2")).Bold(true),
		busy:  r.NewStyle().Foreground(lipgloss.Color("6")),
		warn:  r.NewStyle().Foreground(lipgloss.Color("3")),
		fail:  r.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		info:  r.NewStyle().Foreground(lipgloss.Color("4")),
		dim:   r.NewStyle().Faint(true),
	}
}

// Terminal is a coordinator.Notifier writing one line per update.
type Terminal struct {
	mu     sync.Mutex
	out    io.Writer
	styles styles
	quiet  bool
	now    func() time.Time
}

var _ coordinator.Notifier = (*Terminal)(nil)

// Option configures a Terminal.
type Option func(*Terminal, *lipgloss.Renderer)

// WithColor forces styled output on or off.
func WithColor(enabled bool) Option {
	return func(_ *Terminal, r *lipgloss.Renderer) {
		if enabled {
			r.SetColorProfile(termenv.ANSI)
		} else {
			r.SetColorProfile(termenv.Ascii)
		}
	}
}

// WithQuiet suppresses everything but failures.
func WithQuiet(quiet bool) Option {
	return func(t *Terminal, _ *lipgloss.Renderer) { t.quiet = quiet }
}

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(t *Terminal, _ *lipgloss.Renderer) { t.now = now }
}

// NewTerminal creates a Terminal writing to w.
func NewTerminal(w io.Writer, opts ...Option) *Terminal {
	r := lipgloss.NewRenderer(w)
	t := &Terminal{out: w, now: time.Now}

	for _, opt := range opts {
		opt(t, r)
	}

	t.styles = newStyles(r)

	return t
}

// StateChanged prints transient states. Idle and Synced are covered by
// Synced and Failed.
func (t *Terminal) StateChanged(state coordinator.State) {
	switch state {
	case coordinator.StateDebouncing:
		t.line(t.styles.dim, "…", "change detected")
	case coordinator.StateSyncing:
		t.line(t.styles.busy, "⟳", "syncing assets")
	case coordinator.StateIdle, coordinator.StateSynced:
	}
}

// Synced prints the pass summary, manifest edits and collisions.
func (t *Terminal) Synced(res *assetsync.Result) {
	t.line(t.styles.ok, "✓", fmt.Sprintf("assets synced: %d categories, %d classes, %d assets (%s)",
		res.Categories, res.Classes, res.Assets, res.Duration.Round(time.Millisecond)))

	if m := res.Manifest; m != nil && (len(m.Added) > 0 || len(m.Pruned) > 0) {
		t.line(t.styles.info, " ", fmt.Sprintf("%s: +%d -%d entries", filepath.Base(m.Path), len(m.Added), len(m.Pruned)))
	}

	if f := res.Files; f != nil && len(f.Deleted) > 0 {
		t.line(t.styles.info, " ", "removed "+strings.Join(f.Deleted, ", "))
	}

	for _, c := range res.Collisions {
		t.line(t.styles.warn, "!", "name collision: "+c.String())
	}
}

// Failed prints a failed pass. It is shown even in quiet mode.
func (t *Terminal) Failed(err error) {
	t.write(t.styles.fail, "✗", "asset sync failed: "+err.Error())
}

// Info prints a neutral announcement.
func (t *Terminal) Info(msg string) {
	t.line(t.styles.info, "•", msg)
}

func (t *Terminal) line(style lipgloss.Style, icon, msg string) {
	if t.quiet {
		return
	}

	t.write(style, icon, msg)
}

func (t *Terminal) write(style lipgloss.Style, icon, msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	stamp := t.styles.stamp.Render("[" + t.now().Format("15:04:05") + "]")
	_, _ = fmt.Fprintf(t.out, "%s %s %s\n", stamp, style.Render(icon), msg)
}
