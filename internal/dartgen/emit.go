package dartgen

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hupe1980/assetsync/internal/output"
)

// EmitResult summarizes the filesystem effects of Emit.
type EmitResult struct {
	Written   []string `json:"written,omitempty"`
	Unchanged []string `json:"unchanged,omitempty"`
	Deleted   []string `json:"deleted,omitempty"`
}

// Emit writes files into dir and removes every other Dart file found there.
// Files whose content already matches are left untouched.
func Emit(dir string, files []File, logger *slog.Logger) (*EmitResult, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating output directory %s: %w", dir, err)
	}

	res := &EmitResult{}

	for _, f := range files {
		w := output.NewFileWriter(filepath.Join(dir, f.Name), output.WithLogger(logger))

		written, err := w.WriteIfChanged(f.Content)
		if err != nil {
			return res, err
		}

		if written {
			res.Written = append(res.Written, f.Name)
		} else {
			res.Unchanged = append(res.Unchanged, f.Name)
		}
	}

	stale, err := Stale(dir, files)
	if err != nil {
		return res, err
	}

	for _, name := range stale {
		if err := os.Remove(filepath.Join(dir, name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return res, fmt.Errorf("removing stale file %s: %w", name, err)
		}

		logger.Debug("removed stale generated file", slog.String("file", name))
		res.Deleted = append(res.Deleted, name)
	}

	return res, nil
}

// Stale lists Dart files in dir that are not part of files. A missing
// directory has no stale files.
func Stale(dir string, files []File) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}

		return nil, fmt.Errorf("reading output directory %s: %w", dir, err)
	}

	keep := make(map[string]struct{}, len(files))
	for _, f := range files {
		keep[f.Name] = struct{}{}
	}

	var stale []string

	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".dart") {
			continue
		}

		if _, ok := keep[e.Name()]; !ok {
			stale = append(stale, e.Name())
		}
	}

	sort.Strings(stale)

	return stale, nil
}
