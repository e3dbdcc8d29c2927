package fs

import (
	"context"
	"fmt"

	"github.com/stemma-md/stemma/pkg/core"
)

// OnDocumentChanged registers a change callback and returns its
// unsubscribe handle.
func (r *Repository) OnDocumentChanged(fn func(core.Event)) (func(), error) {
	return r.subscribe(r.subsChanged, fn)
}

// OnDocumentOpened registers an open callback. On the filesystem transport
// an "open" is a file creation event.
func (r *Repository) OnDocumentOpened(fn func(core.Event)) (func(), error) {
	return r.subscribe(r.subsOpened, fn)
}

func (r *Repository) subscribe(subs map[int]func(core.Event), fn func(core.Event)) (func(), error) {
	if fn == nil {
		return nil, fmt.Errorf("nil callback")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextSub
	r.nextSub++
	subs[id] = fn

	return func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(subs, id)
	}, nil
}

func (r *Repository) dispatchChanged(doc core.Document) {
	r.dispatch(core.NewEvent(core.EventChanged, doc), r.subsChanged)
}

func (r *Repository) dispatchOpened(doc core.Document) {
	r.dispatch(core.NewEvent(core.EventOpened, doc), r.subsOpened)
}

func (r *Repository) dispatch(ev core.Event, subs map[int]func(core.Event)) {
	for _, fn := range r.snapshot(subs) {
		fn(ev)
	}
}

// snapshot copies the callback list so dispatch runs without the lock held.
func (r *Repository) snapshot(subs map[int]func(core.Event)) []func(core.Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]func(core.Event), 0, len(subs))
	for _, fn := range subs {
		out = append(out, fn)
	}
	return out
}

// StartWatch launches the filesystem watch worker. Notifications flow to
// the registered callbacks until StopWatch or ctx cancellation.
func (r *Repository) StartWatch(ctx context.Context) error {
	r.mu.Lock()
	if r.worker != nil {
		r.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w := newWatchWorker(r)
	r.worker = w
	r.mu.Unlock()

	if err := w.Start(ctx); err != nil {
		r.mu.Lock()
		r.worker = nil
		r.mu.Unlock()
		return err
	}
	return nil
}

// StopWatch stops the watch worker if one is running.
func (r *Repository) StopWatch(ctx context.Context) error {
	r.mu.Lock()
	w := r.worker
	r.worker = nil
	r.mu.Unlock()

	if w == nil {
		return nil
	}
	return w.Stop(ctx)
}

func (r *Repository) setWatcherActive(active bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.watcherActive = active
}

var _ core.Notifier = (*Repository)(nil)
