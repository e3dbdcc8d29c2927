package fs

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemma-md/stemma/pkg/core"
)

// collector gathers dispatched events for assertions.
type collector struct {
	mu     sync.Mutex
	events []core.Event
}

func (c *collector) add(ev core.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, ev)
}

func (c *collector) paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for _, ev := range c.events {
		out = append(out, ev.Doc.Path())
	}
	return out
}

func (c *collector) types() []core.EventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []core.EventType
	for _, ev := range c.events {
		out = append(out, ev.Type)
	}
	return out
}

func startWatchedRepo(t *testing.T) (*Repository, context.Context) {
	t.Helper()
	repo := newTestRepo(t)

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, repo.StartWatch(ctx))
	t.Cleanup(func() {
		_ = repo.StopWatch(context.Background())
		cancel()
	})

	// Give the watcher a moment to become ready.
	time.Sleep(100 * time.Millisecond)
	return repo, ctx
}

func TestWatch_FileCreation(t *testing.T) {
	repo, _ := startWatchedRepo(t)

	changed := &collector{}
	opened := &collector{}
	unsubChanged, err := repo.OnDocumentChanged(changed.add)
	require.NoError(t, err)
	defer unsubChanged()
	unsubOpened, err := repo.OnDocumentOpened(opened.add)
	require.NoError(t, err)
	defer unsubOpened()

	target := filepath.Join(repo.Root, "note.md")
	require.NoError(t, os.WriteFile(target, []byte("Hello Watcher"), 0644))

	require.Eventually(t, func() bool {
		return len(changed.paths()) > 0
	}, 3*time.Second, 20*time.Millisecond, "timed out waiting for change event")

	assert.Contains(t, changed.paths(), "note.md")
	assert.Contains(t, changed.types(), core.EventChanged)
	assert.Contains(t, opened.paths(), "note.md")
	assert.Contains(t, opened.types(), core.EventOpened)
}

func TestWatch_IgnoresNonDocuments(t *testing.T) {
	repo, _ := startWatchedRepo(t)

	changed := &collector{}
	unsub, err := repo.OnDocumentChanged(changed.add)
	require.NoError(t, err)
	defer unsub()

	require.NoError(t, os.WriteFile(filepath.Join(repo.Root, "image.png"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Root, ".hidden.md"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(repo.Root, DefaultSystemDir, "config.yaml"), []byte("x"), 0644))

	time.Sleep(300 * time.Millisecond)
	assert.Empty(t, changed.paths())
}

func TestWatch_IgnorePatterns(t *testing.T) {
	root := t.TempDir()
	repo := NewRepository(Config{
		Root:   root,
		Ignore: []string{"drafts/**"},
	})
	require.NoError(t, repo.Initialize(context.Background()))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "drafts"), 0755))

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, repo.StartWatch(ctx))
	t.Cleanup(func() {
		_ = repo.StopWatch(context.Background())
		cancel()
	})
	time.Sleep(100 * time.Millisecond)

	changed := &collector{}
	unsub, err := repo.OnDocumentChanged(changed.add)
	require.NoError(t, err)
	defer unsub()

	require.NoError(t, os.WriteFile(filepath.Join(root, "drafts", "wip.md"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "kept.md"), []byte("x"), 0644))

	require.Eventually(t, func() bool {
		return len(changed.paths()) > 0
	}, 3*time.Second, 20*time.Millisecond)

	assert.Contains(t, changed.paths(), "kept.md")
	assert.NotContains(t, changed.paths(), "drafts/wip.md")
}

func TestWatch_NewDirectoriesAreWatched(t *testing.T) {
	repo, _ := startWatchedRepo(t)

	changed := &collector{}
	unsub, err := repo.OnDocumentChanged(changed.add)
	require.NoError(t, err)
	defer unsub()

	sub := filepath.Join(repo.Root, "later")
	require.NoError(t, os.Mkdir(sub, 0755))
	// Let the watcher pick the new directory up before writing into it.
	time.Sleep(200 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(sub, "inside.md"), []byte("x"), 0644))

	require.Eventually(t, func() bool {
		for _, p := range changed.paths() {
			if p == "later/inside.md" {
				return true
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatch_DoubleStartRefused(t *testing.T) {
	repo, ctx := startWatchedRepo(t)
	err := repo.StartWatch(ctx)
	assert.Error(t, err)
}

func TestWatch_Unsubscribe(t *testing.T) {
	repo, _ := startWatchedRepo(t)

	changed := &collector{}
	unsub, err := repo.OnDocumentChanged(changed.add)
	require.NoError(t, err)
	unsub()

	require.NoError(t, os.WriteFile(filepath.Join(repo.Root, "note.md"), []byte("x"), 0644))
	time.Sleep(300 * time.Millisecond)
	assert.Empty(t, changed.paths())
}
