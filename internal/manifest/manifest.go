// Package manifest keeps the asset list of a pubspec.yaml in step with the
// asset directory tree.
//
// The manifest is treated as line-oriented text rather than re-encoded YAML
// so that comments, ordering and formatting outside the managed entries are
// preserved verbatim.
package manifest

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/assetsync/internal/assets"
	"github.com/hupe1980/assetsync/internal/output"
)

const (
	sectionLine  = "flutter:"
	subBlockLine = "  assets:"
	entryIndent  = "    "
)

var (
	sectionMarker  = regexp.MustCompile(`^flutter:\s*(#.*)?$`)
	subBlockMarker = regexp.MustCompile(`^  assets:\s*(#.*)?$`)
)

// Result describes what a sync did to the manifest.
type Result struct {
	// Path is the manifest file.
	Path string `json:"path"`
	// Skipped is true when the manifest does not exist.
	Skipped bool `json:"skipped,omitempty"`
	// Added lists inserted entries (trimmed).
	Added []string `json:"added,omitempty"`
	// Pruned lists removed entries (trimmed).
	Pruned []string `json:"pruned,omitempty"`
	// Changed is true when the content differs from the file on disk.
	Changed bool `json:"changed"`
	// Content is the resulting manifest text.
	Content string `json:"-"`
	// Original is the manifest text before the sync.
	Original string `json:"-"`
}

// Entry renders the manifest line for a directory relative to the asset root.
func Entry(prefix, rel string) string {
	return entryIndent + "- " + prefix + "/" + rel + "/"
}

// RequiredEntries returns one entry line per directory below tree in
// discovery order.
func RequiredEntries(prefix string, tree *assets.Node) []string {
	dirs := assets.DirPaths(tree)
	out := make([]string, 0, len(dirs))

	for _, d := range dirs {
		out = append(out, Entry(prefix, d))
	}

	return out
}

// Plan merges required entry lines into content and prunes nested
// directory entries for which exists reports false. Plan performs no IO.
//
// Entries already present anywhere in the file (compared trimmed) are not
// added again. New entries are inserted directly after the "  assets:"
// marker of the "flutter:" section in the given order. Only entries at
// least two segments below prefix are pruned; root category entries stay.
func Plan(content, prefix string, required []string, exists func(rel string) bool) *Result {
	newline := "\n"
	if strings.Contains(content, "\r\n") {
		newline = "\r\n"
	}

	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	res := &Result{Original: content}

	section := indexOf(lines, 0, len(lines), sectionMarker)
	if section < 0 {
		lines = appendLines(lines, sectionLine, subBlockLine)
		section = indexOf(lines, 0, len(lines), sectionMarker)
	}

	marker := indexOf(lines, section+1, sectionEnd(lines, section), subBlockMarker)
	if marker < 0 {
		lines = insertAt(lines, section+1, subBlockLine)
		marker = section + 1
	}

	present := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		present[strings.TrimSpace(l)] = struct{}{}
	}

	pos := marker + 1

	for _, entry := range required {
		key := strings.TrimSpace(entry)
		if _, ok := present[key]; ok {
			continue
		}

		lines = insertAt(lines, pos, entry)
		present[key] = struct{}{}
		res.Added = append(res.Added, key)
		pos++
	}

	nested := nestedEntryPattern(prefix)
	kept := lines[:0:0]

	for _, l := range lines {
		if m := nested.FindStringSubmatch(l); m != nil && !exists(m[1]) {
			res.Pruned = append(res.Pruned, strings.TrimSpace(l))
			continue
		}

		kept = append(kept, l)
	}

	res.Content = strings.Join(kept, newline)
	res.Changed = res.Content != content

	return res
}

// Options configures Sync.
type Options struct {
	// ProjectDir is the directory holding the manifest and asset root.
	ProjectDir string
	// Manifest is the manifest file name relative to ProjectDir.
	Manifest string
	// AssetsDir is the asset root relative to ProjectDir.
	AssetsDir string
	// DryRun computes the result without writing.
	DryRun bool
	// Logger receives debug output. Defaults to slog.Default().
	Logger *slog.Logger
}

// Sync reconciles the manifest in opts.ProjectDir with tree. A missing
// manifest is not an error: the result is marked Skipped.
func Sync(tree *assets.Node, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	path := filepath.Join(opts.ProjectDir, opts.Manifest)

	data, err := os.ReadFile(path) //nolint:gosec // path comes from configuration
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("manifest not found, skipping", slog.String("path", path))
			return &Result{Path: path, Skipped: true}, nil
		}

		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	prefix := filepath.ToSlash(filepath.Clean(opts.AssetsDir))
	assetRoot := filepath.Join(opts.ProjectDir, opts.AssetsDir)

	exists := func(rel string) bool {
		info, statErr := os.Stat(filepath.Join(assetRoot, filepath.FromSlash(rel)))
		return statErr == nil && info.IsDir()
	}

	res := Plan(string(data), prefix, RequiredEntries(prefix, tree), exists)
	res.Path = path

	if !res.Changed || opts.DryRun {
		return res, nil
	}

	if err := checkYAML(data, []byte(res.Content)); err != nil {
		return nil, fmt.Errorf("refusing to write %s: %w", path, err)
	}

	if err := output.NewFileWriter(path, output.WithLogger(logger)).Write([]byte(res.Content)); err != nil {
		return nil, fmt.Errorf("writing manifest: %w", err)
	}

	logger.Debug("manifest updated",
		slog.String("path", path),
		slog.Int("added", len(res.Added)),
		slog.Int("pruned", len(res.Pruned)),
	)

	return res, nil
}

// checkYAML rejects an update that would turn a parseable manifest into an
// unparseable one.
func checkYAML(before, after []byte) error {
	var prev, next yaml.Node
	if err := yaml.Unmarshal(before, &prev); err != nil {
		return nil
	}

	if err := yaml.Unmarshal(after, &next); err != nil {
		return fmt.Errorf("updated manifest is not valid YAML: %w", err)
	}

	return nil
}

// nestedEntryPattern matches "- <prefix>/a/b/" style entries (optionally
// quoted) and captures the path below prefix.
func nestedEntryPattern(prefix string) *regexp.Regexp {
	return regexp.MustCompile(`^\s*-\s*["']?` + regexp.QuoteMeta(prefix) +
		`/([^"'#\s/]+(?:/[^"'#\s/]+)+)/["']?\s*(#.*)?$`)
}

func indexOf(lines []string, from, to int, re *regexp.Regexp) int {
	for i := from; i < to && i < len(lines); i++ {
		if re.MatchString(strings.TrimRight(lines[i], " \t")) {
			return i
		}
	}

	return -1
}

// sectionEnd returns the index of the first top-level line after section.
func sectionEnd(lines []string, section int) int {
	for i := section + 1; i < len(lines); i++ {
		l := lines[i]
		if l == "" || strings.HasPrefix(l, " ") || strings.HasPrefix(l, "\t") || strings.HasPrefix(l, "#") {
			continue
		}

		return i
	}

	return len(lines)
}

// appendLines adds lines at the end, keeping a trailing newline in place.
func appendLines(lines []string, add ...string) []string {
	if n := len(lines); n > 0 && lines[n-1] == "" {
		if n == 1 {
			return append(add, "")
		}

		out := append(lines[:n-1:n-1], add...)

		return append(out, "")
	}

	return append(lines, add...)
}

func insertAt(lines []string, i int, s string) []string {
	lines = append(lines, "")
	copy(lines[i+1:], lines[i:])
	lines[i] = s

	return lines
}
