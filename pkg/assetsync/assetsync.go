// Package assetsync provides a public Go API for generating typed Dart
// accessors from a Flutter asset tree and keeping the pubspec.yaml asset
// list in step with it.
//
// Basic usage:
//
//	result, err := assetsync.Run(ctx, assetsync.WithProjectDir("path/to/app"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(result.Files.Written)
//
// Dry run:
//
//	plan, err := assetsync.Plan(ctx, assetsync.WithProjectDir("path/to/app"))
//	if err == nil && !plan.UpToDate() {
//	    diff.WriteChanges(os.Stdout, plan.Changes, false)
//	}
package assetsync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/hupe1980/assetsync/internal/assets"
	"github.com/hupe1980/assetsync/internal/dartgen"
	"github.com/hupe1980/assetsync/internal/manifest"
	"github.com/hupe1980/assetsync/internal/naming"
)

// ErrAssetRootMissing is returned when the asset directory does not exist.
// Callers treat it as "nothing to do" rather than a failure.
var ErrAssetRootMissing = errors.New("asset root does not exist")

// Defaults used when an option is not set.
const (
	DefaultAssetsDir = "assets"
	DefaultOutputDir = "lib/constants/assets"
	DefaultManifest  = "pubspec.yaml"
	DefaultClassName = "Assets"
)

// discardLogger returns a logger that discards all output.
func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// Option configures a sync pass. Use the With* functions to create Options.
type Option func(*options)

type options struct {
	projectDir   string
	assetsDir    string
	outputDir    string
	manifest     string
	className    string
	finalClasses *bool
	logger       *slog.Logger
}

// WithProjectDir sets the Flutter project directory (default: ".").
func WithProjectDir(dir string) Option { return func(o *options) { o.projectDir = dir } }

// WithAssetsDir sets the asset root relative to the project (default: "assets").
func WithAssetsDir(dir string) Option { return func(o *options) { o.assetsDir = dir } }

// WithOutputDir sets the generated code directory relative to the project
// (default: "lib/constants/assets").
func WithOutputDir(dir string) Option { return func(o *options) { o.outputDir = dir } }

// WithManifest sets the manifest file name (default: "pubspec.yaml").
func WithManifest(name string) Option { return func(o *options) { o.manifest = name } }

// WithClassName sets the aggregator class name (default: "Assets").
func WithClassName(name string) Option { return func(o *options) { o.className = name } }

// WithFinalClasses forces "final class" declarations on or off. By default
// they are used when the manifest's SDK constraint starts at Dart 3.
func WithFinalClasses(enabled bool) Option {
	return func(o *options) { o.finalClasses = &enabled }
}

// WithLogger sets the logger (default: discard).
func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

func (o *options) applyDefaults() {
	if o.projectDir == "" {
		o.projectDir = "."
	}

	if o.assetsDir == "" {
		o.assetsDir = DefaultAssetsDir
	}

	if o.outputDir == "" {
		o.outputDir = DefaultOutputDir
	}

	if o.manifest == "" {
		o.manifest = DefaultManifest
	}

	if o.className == "" {
		o.className = DefaultClassName
	}

	if o.logger == nil {
		o.logger = discardLogger()
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	o.applyDefaults()

	return o
}

// Result holds the outcome of a sync pass.
type Result struct {
	// Manifest is the manifest sync outcome.
	Manifest *manifest.Result `json:"manifest"`

	// Files lists generated files written, unchanged and deleted.
	Files *dartgen.EmitResult `json:"files"`

	// Library is the generated class model.
	Library *dartgen.Library `json:"-"`

	// Collisions lists identifier clashes that were resolved by suffixing.
	Collisions []naming.Collision `json:"collisions,omitempty"`

	// Categories, Classes and Assets count what was generated.
	Categories int `json:"categories"`
	Classes    int `json:"classes"`
	Assets     int `json:"assets"`

	// Duration is the wall time of the pass.
	Duration time.Duration `json:"duration"`
}

// snapshot is the shared view of one pass: a single scan feeds both the
// manifest synchronizer and the code generator.
type snapshot struct {
	tree    *assets.Node
	library *dartgen.Library
	files   []dartgen.File
}

// Run performs one pass: it syncs the manifest and regenerates the Dart
// accessors. A missing asset root returns ErrAssetRootMissing and changes
// nothing.
func Run(ctx context.Context, opts ...Option) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	o := newOptions(opts)
	start := time.Now()

	snap, err := takeSnapshot(o)
	if err != nil {
		return nil, err
	}

	mres, err := manifest.Sync(snap.tree, manifest.Options{
		ProjectDir: o.projectDir,
		Manifest:   o.manifest,
		AssetsDir:  o.assetsDir,
		Logger:     o.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("syncing manifest: %w", err)
	}

	eres, err := dartgen.Emit(o.outputPath(), snap.files, o.logger)
	if err != nil {
		return nil, fmt.Errorf("emitting generated code: %w", err)
	}

	res := &Result{
		Manifest:   mres,
		Files:      eres,
		Library:    snap.library,
		Collisions: snap.library.Collisions,
		Categories: len(snap.library.Categories),
		Classes:    snap.library.ClassCount(),
		Assets:     len(snap.library.AssetPaths()),
		Duration:   time.Since(start),
	}

	o.logger.Debug("sync pass complete",
		slog.Int("categories", res.Categories),
		slog.Int("classes", res.Classes),
		slog.Int("written", len(eres.Written)),
		slog.Int("deleted", len(eres.Deleted)),
		slog.Duration("duration", res.Duration),
	)

	return res, nil
}

// Build scans the asset root and returns the generated class model without
// touching the filesystem.
func Build(ctx context.Context, opts ...Option) (*dartgen.Library, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap, err := takeSnapshot(newOptions(opts))
	if err != nil {
		return nil, err
	}

	return snap.library, nil
}

// AssetRoot returns the absolute asset root for the given options.
func AssetRoot(opts ...Option) string {
	o := newOptions(opts)
	return o.assetPath()
}

func takeSnapshot(o *options) (*snapshot, error) {
	root := o.assetPath()

	tree, err := assets.Scan(root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrAssetRootMissing, root)
		}

		return nil, fmt.Errorf("scanning assets: %w", err)
	}

	lib := dartgen.Build(tree, dartgen.Options{
		ClassName:    o.className,
		AssetsPrefix: filepath.ToSlash(filepath.Clean(o.assetsDir)),
		FinalClasses: o.useFinalClasses(),
	})

	for _, c := range lib.Collisions {
		o.logger.Warn("identifier collision resolved", slog.String("collision", c.String()))
	}

	files, err := dartgen.Render(lib)
	if err != nil {
		return nil, fmt.Errorf("rendering generated code: %w", err)
	}

	return &snapshot{tree: tree, library: lib, files: files}, nil
}

func (o *options) useFinalClasses() bool {
	if o.finalClasses != nil {
		return *o.finalClasses
	}

	constraint, err := manifest.ReadSDKConstraintFile(filepath.Join(o.projectDir, o.manifest))
	if err != nil {
		return false
	}

	return manifest.SupportsClassModifiers(constraint)
}

func (o *options) assetPath() string {
	return absPath(filepath.Join(o.projectDir, o.assetsDir))
}

func (o *options) outputPath() string {
	return filepath.Join(o.projectDir, filepath.FromSlash(o.outputDir))
}

func absPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}

	return p
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
