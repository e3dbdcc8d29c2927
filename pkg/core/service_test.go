package core_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemma-md/stemma/pkg/core"
)

// memNotifier delivers synthetic events to its subscribers.
type memNotifier struct {
	mu      sync.Mutex
	changed []func(core.Event)
	opened  []func(core.Event)
}

func (n *memNotifier) OnDocumentChanged(fn func(core.Event)) (func(), error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.changed = append(n.changed, fn)
	return func() {}, nil
}

func (n *memNotifier) OnDocumentOpened(fn func(core.Event)) (func(), error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.opened = append(n.opened, fn)
	return func() {}, nil
}

func (n *memNotifier) subscriberCount() (int, int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.changed), len(n.opened)
}

func (n *memNotifier) emitChanged(doc core.Document) {
	n.mu.Lock()
	subs := append(([]func(core.Event))(nil), n.changed...)
	n.mu.Unlock()
	ev := core.NewEvent(core.EventChanged, doc)
	for _, fn := range subs {
		fn(ev)
	}
}

func newTestService(t *testing.T, storage core.Storage, notifier core.Notifier, cfg core.Config) *core.Service {
	t.Helper()
	svc, err := core.NewService(storage, notifier, cfg, nil)
	require.NoError(t, err)
	t.Cleanup(svc.Coordinator().Close)
	return svc
}

func TestService_HandleChange(t *testing.T) {
	t.Run("Synthetic Event Triggers Rename", func(t *testing.T) {
		storage := newMemStorage()
		storage.put("notes/new.md", "# Inbox Zero\nbody")
		svc := newTestService(t, storage, nil, watchedConfig(nil))

		svc.HandleChange(core.NewEvent(core.EventChanged, core.DocumentFromPath("notes/new.md")))

		_, exists := storage.paths()["notes/Inbox Zero.md"]
		assert.True(t, exists)
	})

	t.Run("Failure Is Swallowed Not Raised", func(t *testing.T) {
		storage := newMemStorage()
		svc := newTestService(t, storage, nil, watchedConfig(nil))

		// The document does not exist; the handler must not panic and the
		// error stays out of the editing flow.
		svc.HandleChange(core.NewEvent(core.EventChanged, core.DocumentFromPath("notes/missing.md")))
	})
}

func TestService_Run(t *testing.T) {
	t.Run("Without Notifier Run Refuses", func(t *testing.T) {
		storage := newMemStorage()
		svc := newTestService(t, storage, nil, watchedConfig(nil))

		err := svc.Run(context.Background())
		assert.ErrorIs(t, err, core.ErrNoNotifier)
	})

	t.Run("Events Flow Into The Coordinator", func(t *testing.T) {
		storage := newMemStorage()
		storage.put("notes/todo.md", "Groceries list")
		notifier := &memNotifier{}
		svc := newTestService(t, storage, notifier, watchedConfig(nil))

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- svc.Run(ctx)
		}()

		require.Eventually(t, func() bool {
			changed, opened := notifier.subscriberCount()
			return changed == 1 && opened == 1
		}, time.Second, 10*time.Millisecond)

		notifier.emitChanged(core.DocumentFromPath("notes/todo.md"))

		require.Eventually(t, func() bool {
			_, exists := storage.paths()["notes/Groceries list.md"]
			return exists
		}, time.Second, 10*time.Millisecond)

		cancel()
		assert.ErrorIs(t, <-done, context.Canceled)
	})
}

func TestService_Preview(t *testing.T) {
	storage := newMemStorage()
	storage.put("notes/x.md", "---\ntitle: meta\n---\n# The Real Name\nbody")
	svc := newTestService(t, storage, nil, watchedConfig(nil))

	stem, err := svc.Preview(context.Background(), core.DocumentFromPath("notes/x.md"))
	require.NoError(t, err)
	assert.Equal(t, "The Real Name", stem)

	// Preview never touches storage.
	_, exists := storage.paths()["notes/x.md"]
	assert.True(t, exists)
}

func TestService_RenameAll(t *testing.T) {
	storage := newMemStorage()
	storage.put("notes/one.md", "Alpha")
	storage.put("notes/two.md", "Beta")
	svc := newTestService(t, storage, nil, watchedConfig(nil))

	summary, err := svc.RenameAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Renamed)
}
