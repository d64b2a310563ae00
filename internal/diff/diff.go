// Package diff renders unified diffs of pending file changes.
package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pmezard/go-difflib/difflib"
)

// Action says what a pending change does to a file.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Result holds the result of a unified diff computation.
type Result struct {
	Unified        string
	HasDifferences bool
	Hunks          []string
	OldLabel       string
	NewLabel       string
}

// Options configures diff computation.
type Options struct {
	OldLabel string
	NewLabel string
	Context  int
}

// DefaultOptions returns the default labels and three lines of context.
func DefaultOptions() Options {
	return Options{
		OldLabel: "current",
		NewLabel: "generated",
		Context:  3,
	}
}

// Compute computes a unified diff between two text documents.
func Compute(oldDoc, newDoc string, opts Options) (*Result, error) {
	ud := difflib.UnifiedDiff{
		A:        splitLines(oldDoc),
		B:        splitLines(newDoc),
		FromFile: opts.OldLabel,
		ToFile:   opts.NewLabel,
		Context:  opts.Context,
	}

	unified, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return nil, fmt.Errorf("computing diff: %w", err)
	}

	hasDiff := unified != ""

	var hunks []string
	if hasDiff {
		hunks = extractHunks(unified)
	}

	return &Result{
		Unified:        unified,
		HasDifferences: hasDiff,
		Hunks:          hunks,
		OldLabel:       opts.OldLabel,
		NewLabel:       opts.NewLabel,
	}, nil
}

// Change is one file a sync would touch.
type Change struct {
	Path   string  `json:"path"`
	Action Action  `json:"action"`
	Diff   *Result `json:"-"`
}

// FileChange diffs the current and desired content of path. exists reports
// whether the file is on disk and keep whether it should remain after the
// sync. It returns nil when nothing would change.
func FileChange(path string, current []byte, exists bool, desired []byte, keep bool) (*Change, error) {
	action := ActionUpdate

	switch {
	case !keep && !exists:
		return nil, nil
	case !keep:
		action = ActionDelete
		desired = nil
	case !exists:
		action = ActionCreate
		current = nil
	}

	opts := DefaultOptions()
	opts.OldLabel = "a/" + path
	opts.NewLabel = "b/" + path

	if action == ActionCreate {
		opts.OldLabel = "/dev/null"
	}

	if action == ActionDelete {
		opts.NewLabel = "/dev/null"
	}

	res, err := Compute(string(current), string(desired), opts)
	if err != nil {
		return nil, err
	}

	if !res.HasDifferences && action == ActionUpdate {
		return nil, nil
	}

	return &Change{Path: path, Action: action, Diff: res}, nil
}

// extractHunks splits unified diff output into individual hunks.
func extractHunks(unified string) []string {
	var hunks []string

	var current strings.Builder

	for _, line := range strings.Split(unified, "\n") {
		if strings.HasPrefix(line, "@@") {
			if current.Len() > 0 {
				hunks = append(hunks, current.String())
				current.Reset()
			}
		}

		current.WriteString(line)
		current.WriteString("\n")
	}

	if current.Len() > 0 {
		hunks = append(hunks, current.String())
	}

	return hunks
}

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	hunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
)

// Write writes a formatted diff to w, styling lines when color is set.
func Write(w io.Writer, result *Result, color bool) {
	if !result.HasDifferences {
		_, _ = fmt.Fprintln(w, "No differences found.")
		return
	}

	for _, line := range strings.Split(strings.TrimSuffix(result.Unified, "\n"), "\n") {
		if color {
			line = styleLine(line)
		}

		_, _ = fmt.Fprintln(w, line)
	}
}

// WriteChanges writes every change with a one-line summary header.
func WriteChanges(w io.Writer, changes []*Change, color bool) {
	if len(changes) == 0 {
		_, _ = fmt.Fprintln(w, "Everything is up to date.")
		return
	}

	for _, c := range changes {
		_, _ = fmt.Fprintf(w, "%s %s\n", c.Action, c.Path)
		Write(w, c.Diff, color)
	}
}

func styleLine(line string) string {
	switch {
	case strings.HasPrefix(line, "---"), strings.HasPrefix(line, "+++"):
		return headerStyle.Render(line)
	case strings.HasPrefix(line, "@@"):
		return hunkStyle.Render(line)
	case strings.HasPrefix(line, "-"):
		return removedStyle.Render(line)
	case strings.HasPrefix(line, "+"):
		return addedStyle.Render(line)
	default:
		return line
	}
}

// splitLines splits a string into lines for diff processing.
// Each element includes a trailing newline for difflib compatibility.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}

	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	return lines
}
