package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder collects events delivered by Run.
type recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *recorder) handle(ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.events = append(r.events, ev)
}

func (r *recorder) seen(path string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ev := range r.events {
		if ev.Path == path {
			return true
		}
	}

	return false
}

// startWatch runs the watcher in the background and waits until it is ready.
func startWatch(t *testing.T, root string) (*recorder, context.CancelFunc, <-chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	rec := &recorder{}
	ready := make(chan struct{})
	done := make(chan error, 1)

	go func() {
		done <- Run(ctx, Options{Root: root, Ready: ready}, rec.handle)
	}()

	select {
	case <-ready:
	case err := <-done:
		cancel()
		t.Fatalf("watcher exited early: %v", err)
	case <-time.After(2 * time.Second):
		cancel()
		t.Fatal("watcher did not become ready")
	}

	return rec, cancel, done
}

// ---------------------------------------------------------------------------
// EventKind
// ---------------------------------------------------------------------------

func TestEventKind_String(t *testing.T) {
	assert.Equal(t, "change", KindChange.String())
	assert.Equal(t, "create", KindCreate.String())
	assert.Equal(t, "delete", KindDelete.String())
	assert.Equal(t, "rename", KindRename.String())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindCreate, kindOf(fsnotify.Event{Op: fsnotify.Create}))
	assert.Equal(t, KindDelete, kindOf(fsnotify.Event{Op: fsnotify.Remove}))
	assert.Equal(t, KindRename, kindOf(fsnotify.Event{Op: fsnotify.Rename}))
	assert.Equal(t, KindChange, kindOf(fsnotify.Event{Op: fsnotify.Write}))
}

// ---------------------------------------------------------------------------
// isRelevant
// ---------------------------------------------------------------------------

func TestIsRelevant(t *testing.T) {
	tests := []struct {
		name string
		path string
		op   fsnotify.Op
		want bool
	}{
		{"png write", "logo.png", fsnotify.Write, true},
		{"create event", "new.svg", fsnotify.Create, true},
		{"remove event", "old.png", fsnotify.Remove, true},
		{"rename event", "renamed.png", fsnotify.Rename, true},
		{"hidden file", ".DS_Store", fsnotify.Create, false},
		{"swap file", "file.swp", fsnotify.Write, false},
		{"backup tilde", "file~", fsnotify.Write, false},
		{"emacs hash", "#file#", fsnotify.Write, false},
		{"zero op", "file.png", 0, false},
		{"chmod only", "file.png", fsnotify.Chmod, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := fsnotify.Event{Name: tt.path, Op: tt.op}
			assert.Equal(t, tt.want, isRelevant(event))
		})
	}
}

func TestWithin(t *testing.T) {
	root := filepath.Join("/p", "assets")

	assert.True(t, within(root, root))
	assert.True(t, within(root, filepath.Join(root, "images", "a.png")))
	assert.False(t, within(root, filepath.Join("/p", "assets2")))
	assert.False(t, within(root, filepath.Join("/p", "pubspec.yaml")))
}

// ---------------------------------------------------------------------------
// addRecursive
// ---------------------------------------------------------------------------

func TestAddRecursive_IncludesHiddenDirs(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "images", "icons"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "fonts"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".thumbnails", "small"), 0o755))

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, addRecursive(watcher, dir))

	watched := make(map[string]bool)
	for _, p := range watcher.WatchList() {
		watched[p] = true
	}

	assert.True(t, watched[dir], "root should be watched")
	assert.True(t, watched[filepath.Join(dir, "images")])
	assert.True(t, watched[filepath.Join(dir, "images", "icons")])
	assert.True(t, watched[filepath.Join(dir, "fonts")])
	assert.True(t, watched[filepath.Join(dir, ".thumbnails")], "hidden directories are scanned, so they are watched")
	assert.True(t, watched[filepath.Join(dir, ".thumbnails", "small")])
}

func TestAddRecursive_NonExistentDir(t *testing.T) {
	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	assert.Error(t, addRecursive(watcher, "/nonexistent/dir/12345"))
}

// ---------------------------------------------------------------------------
// Run (integration)
// ---------------------------------------------------------------------------

func TestRun_GracefulShutdown(t *testing.T) {
	root := filepath.Join(t.TempDir(), "assets")
	require.NoError(t, os.MkdirAll(root, 0o755))

	_, cancel, done := startWatch(t, root)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not shut down in time")
	}
}

func TestRun_DeliversNestedChanges(t *testing.T) {
	root := filepath.Join(t.TempDir(), "assets")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "images"), 0o755))

	rec, cancel, done := startWatch(t, root)
	defer func() { cancel(); <-done }()

	file := filepath.Join(root, "images", "logo.png")
	require.NoError(t, os.WriteFile(file, []byte("png"), 0o644))

	assert.Eventually(t, func() bool { return rec.seen(file) }, 2*time.Second, 20*time.Millisecond)
}

func TestRun_WatchesNewDirectories(t *testing.T) {
	root := filepath.Join(t.TempDir(), "assets")
	require.NoError(t, os.MkdirAll(root, 0o755))

	rec, cancel, done := startWatch(t, root)
	defer func() { cancel(); <-done }()

	sub := filepath.Join(root, "icons")
	require.NoError(t, os.Mkdir(sub, 0o755))
	assert.Eventually(t, func() bool { return rec.seen(sub) }, 2*time.Second, 20*time.Millisecond)

	// Give the watcher a moment to add the new directory.
	time.Sleep(100 * time.Millisecond)

	file := filepath.Join(sub, "user.svg")
	require.NoError(t, os.WriteFile(file, []byte("<svg/>"), 0o644))
	assert.Eventually(t, func() bool { return rec.seen(file) }, 2*time.Second, 20*time.Millisecond)
}

func TestRun_DeliversChangesInHiddenDirs(t *testing.T) {
	root := filepath.Join(t.TempDir(), "assets")
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".thumbnails"), 0o755))

	rec, cancel, done := startWatch(t, root)
	defer func() { cancel(); <-done }()

	existing := filepath.Join(root, ".thumbnails", "a.png")
	require.NoError(t, os.WriteFile(existing, []byte("png"), 0o644))
	assert.Eventually(t, func() bool { return rec.seen(existing) }, 2*time.Second, 20*time.Millisecond)

	created := filepath.Join(root, ".cache")
	require.NoError(t, os.Mkdir(created, 0o755))

	// The directory event itself is filtered; give the watcher a moment to add it.
	time.Sleep(100 * time.Millisecond)
	assert.False(t, rec.seen(created))

	file := filepath.Join(created, "b.png")
	require.NoError(t, os.WriteFile(file, []byte("png"), 0o644))
	assert.Eventually(t, func() bool { return rec.seen(file) }, 2*time.Second, 20*time.Millisecond)
}

func TestRun_RootCreatedLater(t *testing.T) {
	project := t.TempDir()
	root := filepath.Join(project, "assets")

	rec, cancel, done := startWatch(t, root)
	defer func() { cancel(); <-done }()

	require.NoError(t, os.WriteFile(filepath.Join(project, "pubspec.yaml"), []byte("name: app\n"), 0o644))
	require.NoError(t, os.Mkdir(root, 0o755))

	assert.Eventually(t, func() bool { return rec.seen(root) }, 2*time.Second, 20*time.Millisecond)
	assert.False(t, rec.seen(filepath.Join(project, "pubspec.yaml")), "siblings of the root are ignored")
}

func TestRun_MissingParent(t *testing.T) {
	err := Run(context.Background(), Options{Root: "/nonexistent/parent/12345/assets"}, func(Event) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watching")
}
