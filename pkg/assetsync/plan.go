package assetsync

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	"github.com/hupe1980/assetsync/internal/dartgen"
	"github.com/hupe1980/assetsync/internal/diff"
	"github.com/hupe1980/assetsync/internal/manifest"
)

// PlanResult describes what Run would change, without changing it.
type PlanResult struct {
	// Changes lists pending file changes in the order Run applies them.
	Changes []*diff.Change `json:"changes"`

	// Manifest is the dry-run manifest outcome.
	Manifest *manifest.Result `json:"manifest"`

	// Library is the generated class model.
	Library *dartgen.Library `json:"-"`
}

// UpToDate reports whether a pass would leave every file untouched.
func (p *PlanResult) UpToDate() bool { return len(p.Changes) == 0 }

// Plan computes the pending changes of a pass as unified diffs. Paths in
// the result are relative to the project directory.
func Plan(ctx context.Context, opts ...Option) (*PlanResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := newOptions(opts)

	snap, err := takeSnapshot(o)
	if err != nil {
		return nil, err
	}

	mres, err := manifest.Sync(snap.tree, manifest.Options{
		ProjectDir: o.projectDir,
		Manifest:   o.manifest,
		AssetsDir:  o.assetsDir,
		DryRun:     true,
		Logger:     o.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("planning manifest: %w", err)
	}

	res := &PlanResult{Manifest: mres, Library: snap.library}

	if !mres.Skipped && mres.Changed {
		c, err := diff.FileChange(filepath.ToSlash(o.manifest), []byte(mres.Original), true, []byte(mres.Content), true)
		if err != nil {
			return nil, err
		}

		res.add(c)
	}

	outDir := o.outputPath()
	rel := filepath.ToSlash(filepath.Clean(o.outputDir))

	for _, f := range snap.files {
		current, exists, err := readIfExists(filepath.Join(outDir, f.Name))
		if err != nil {
			return nil, err
		}

		c, err := diff.FileChange(path.Join(rel, f.Name), current, exists, f.Content, true)
		if err != nil {
			return nil, err
		}

		res.add(c)
	}

	stale, err := dartgen.Stale(outDir, snap.files)
	if err != nil {
		return nil, err
	}

	for _, name := range stale {
		current, exists, err := readIfExists(filepath.Join(outDir, name))
		if err != nil {
			return nil, err
		}

		c, err := diff.FileChange(path.Join(rel, name), current, exists, nil, false)
		if err != nil {
			return nil, err
		}

		res.add(c)
	}

	return res, nil
}

func (p *PlanResult) add(c *diff.Change) {
	if c != nil {
		p.Changes = append(p.Changes, c)
	}
}

func readIfExists(p string) ([]byte, bool, error) {
	if !fileExists(p) {
		return nil, false, nil
	}

	data, err := os.ReadFile(p) //nolint:gosec // generated file path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("reading %s: %w", p, err)
	}

	return data, true, nil
}
