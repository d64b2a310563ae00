package assetsync_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/assetsync/internal/diff"
	"github.com/hupe1980/assetsync/pkg/assetsync"
)

const pubspec = "name: app\nenvironment:\n  sdk: \">=2.19.0 <4.0.0\"\n\nflutter:\n  uses-material-design: true\n"

func newProject(t *testing.T, manifest string, files ...string) string {
	t.Helper()

	dir := t.TempDir()
	if manifest != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "pubspec.yaml"), []byte(manifest), 0o644))
	}

	for _, f := range files {
		p := filepath.Join(dir, "assets", filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte("x"), 0o644))
	}

	return dir
}

func readFile(t *testing.T, parts ...string) string {
	t.Helper()

	data, err := os.ReadFile(filepath.Join(parts...))
	require.NoError(t, err)

	return string(data)
}

func TestRun_EndToEnd(t *testing.T) {
	dir := newProject(t, pubspec, "images/logo.png", "images/icons/user.svg")

	res, err := assetsync.Run(context.Background(), assetsync.WithProjectDir(dir))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Categories)
	assert.Equal(t, 2, res.Classes)
	assert.Equal(t, 2, res.Assets)
	assert.ElementsMatch(t, []string{"assets.dart", "images.g.dart"}, res.Files.Written)

	out := filepath.Join(dir, "lib", "constants", "assets")
	lib := readFile(t, out, "assets.dart")
	assert.Contains(t, lib, "part 'images.g.dart';")
	assert.Contains(t, lib, "static const images = _Image();")

	part := readFile(t, out, "images.g.dart")
	assert.Contains(t, part, "final _ImageIcons icons = const _ImageIcons();")
	assert.Contains(t, part, "final String logo = 'assets/images/logo.png';")
	assert.Contains(t, part, "final String user = 'assets/images/icons/user.svg'; // svg")
	assert.NotContains(t, part, "final class", "SDK lower bound below 3.0.0")

	manifest := readFile(t, dir, "pubspec.yaml")
	assert.Contains(t, manifest, "  assets:\n    - assets/images/\n    - assets/images/icons/\n")
	assert.Contains(t, manifest, "uses-material-design: true")
}

func TestRun_Idempotent(t *testing.T) {
	dir := newProject(t, pubspec, "images/logo.png", "images/icons/user.svg", "fonts/a.ttf")
	ctx := context.Background()

	_, err := assetsync.Run(ctx, assetsync.WithProjectDir(dir))
	require.NoError(t, err)

	manifest := readFile(t, dir, "pubspec.yaml")

	res, err := assetsync.Run(ctx, assetsync.WithProjectDir(dir))
	require.NoError(t, err)

	assert.Empty(t, res.Files.Written)
	assert.Empty(t, res.Files.Deleted)
	assert.False(t, res.Manifest.Changed)
	assert.Equal(t, manifest, readFile(t, dir, "pubspec.yaml"))

	plan, err := assetsync.Plan(ctx, assetsync.WithProjectDir(dir))
	require.NoError(t, err)
	assert.True(t, plan.UpToDate())
}

func TestRun_PrunesDeletedCategory(t *testing.T) {
	dir := newProject(t, pubspec, "images/logo.png", "images/icons/user.svg", "fonts/a.ttf")
	ctx := context.Background()

	_, err := assetsync.Run(ctx, assetsync.WithProjectDir(dir))
	require.NoError(t, err)

	require.NoError(t, os.RemoveAll(filepath.Join(dir, "assets", "images")))

	res, err := assetsync.Run(ctx, assetsync.WithProjectDir(dir))
	require.NoError(t, err)

	assert.Equal(t, []string{"images.g.dart"}, res.Files.Deleted)
	assert.NoFileExists(t, filepath.Join(dir, "lib", "constants", "assets", "images.g.dart"))

	manifest := readFile(t, dir, "pubspec.yaml")
	assert.NotContains(t, manifest, "- assets/images/icons/", "nested entry pruned")
	assert.Contains(t, manifest, "- assets/images/", "root entry kept")
	assert.Contains(t, manifest, "- assets/fonts/")
}

func TestRun_VariantDirsExcluded(t *testing.T) {
	dir := newProject(t, pubspec, "images/logo.png", "images/2.0x/logo.png", "images/3.0x/logo.png")

	_, err := assetsync.Run(context.Background(), assetsync.WithProjectDir(dir))
	require.NoError(t, err)

	part := readFile(t, dir, "lib", "constants", "assets", "images.g.dart")
	assert.NotContains(t, part, "2.0x")
	assert.Equal(t, 1, strings.Count(part, "final String logo"))
	assert.NotContains(t, readFile(t, dir, "pubspec.yaml"), "2.0x")
}

func TestRun_MissingAssetRoot(t *testing.T) {
	dir := newProject(t, pubspec)

	_, err := assetsync.Run(context.Background(), assetsync.WithProjectDir(dir))
	require.Error(t, err)
	assert.True(t, errors.Is(err, assetsync.ErrAssetRootMissing))

	assert.Equal(t, pubspec, readFile(t, dir, "pubspec.yaml"))
	assert.NoDirExists(t, filepath.Join(dir, "lib"))
}

func TestRun_MissingManifest(t *testing.T) {
	dir := newProject(t, "", "images/logo.png")

	res, err := assetsync.Run(context.Background(), assetsync.WithProjectDir(dir))
	require.NoError(t, err)

	assert.True(t, res.Manifest.Skipped)
	assert.FileExists(t, filepath.Join(dir, "lib", "constants", "assets", "images.g.dart"))
}

func TestRun_FinalClassesFromSDK(t *testing.T) {
	dir := newProject(t, "name: app\nenvironment:\n  sdk: ^3.3.0\n", "images/logo.png")

	_, err := assetsync.Run(context.Background(), assetsync.WithProjectDir(dir))
	require.NoError(t, err)

	assert.Contains(t, readFile(t, dir, "lib", "constants", "assets", "images.g.dart"), "final class _Image {")

	_, err = assetsync.Run(context.Background(), assetsync.WithProjectDir(dir), assetsync.WithFinalClasses(false))
	require.NoError(t, err)

	assert.NotContains(t, readFile(t, dir, "lib", "constants", "assets", "images.g.dart"), "final class")
}

func TestRun_WithOptions(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "res", "images"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "res", "images", "a.png"), nil, 0o644))

	res, err := assetsync.Run(context.Background(),
		assetsync.WithProjectDir(dir),
		assetsync.WithAssetsDir("res"),
		assetsync.WithOutputDir("lib/gen"),
		assetsync.WithClassName("R"),
	)
	require.NoError(t, err)
	assert.True(t, res.Manifest.Skipped)

	lib := readFile(t, dir, "lib", "gen", "assets.dart")
	assert.Contains(t, lib, "class R {")
	assert.Contains(t, readFile(t, dir, "lib", "gen", "images.g.dart"), "'res/images/a.png'")
}

func TestRun_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := assetsync.Run(ctx, assetsync.WithProjectDir(t.TempDir()))
	require.ErrorIs(t, err, context.Canceled)
}

func TestRun_ReportsCollisions(t *testing.T) {
	dir := newProject(t, pubspec, "images/logo.png", "images/logo.svg")

	res, err := assetsync.Run(context.Background(), assetsync.WithProjectDir(dir))
	require.NoError(t, err)

	require.Len(t, res.Collisions, 1)
	assert.Equal(t, "logo2", res.Collisions[0].Resolved)
}

// ---------------------------------------------------------------------------
// Plan
// ---------------------------------------------------------------------------

func TestPlan_ListsPendingChanges(t *testing.T) {
	dir := newProject(t, pubspec, "images/logo.png")
	staleDir := filepath.Join(dir, "lib", "constants", "assets")
	require.NoError(t, os.MkdirAll(staleDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staleDir, "old.g.dart"), []byte("// old\n"), 0o644))

	plan, err := assetsync.Plan(context.Background(), assetsync.WithProjectDir(dir))
	require.NoError(t, err)
	require.False(t, plan.UpToDate())

	actions := map[string]diff.Action{}
	for _, c := range plan.Changes {
		actions[c.Path] = c.Action
	}

	assert.Equal(t, map[string]diff.Action{
		"pubspec.yaml":                       diff.ActionUpdate,
		"lib/constants/assets/assets.dart":   diff.ActionCreate,
		"lib/constants/assets/images.g.dart": diff.ActionCreate,
		"lib/constants/assets/old.g.dart":    diff.ActionDelete,
	}, actions)

	assert.Equal(t, pubspec, readFile(t, dir, "pubspec.yaml"), "plan does not write")
	assert.FileExists(t, filepath.Join(staleDir, "old.g.dart"))
}

func TestBuild_NoWrites(t *testing.T) {
	dir := newProject(t, pubspec, "images/logo.png")

	lib, err := assetsync.Build(context.Background(), assetsync.WithProjectDir(dir))
	require.NoError(t, err)

	assert.Equal(t, []string{"assets/images/logo.png"}, lib.AssetPaths())
	assert.NoDirExists(t, filepath.Join(dir, "lib"))
}
