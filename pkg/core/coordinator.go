package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// maxCollisionProbes caps the disambiguating-suffix search. Hitting the cap
// is treated like a storage failure rather than looping forever.
const maxCollisionProbes = 4096

// Outcome describes what MaybeRename did for a document.
type Outcome string

const (
	// OutcomeSkipped means the document is not in a watched container.
	OutcomeSkipped Outcome = "SKIPPED"
	// OutcomeDeferred means a debounce timer was armed (or re-armed).
	OutcomeDeferred Outcome = "DEFERRED"
	// OutcomeUnchanged means the derived name already matches the current one.
	OutcomeUnchanged Outcome = "UNCHANGED"
	// OutcomeRenamed means a rename was committed to storage.
	OutcomeRenamed Outcome = "RENAMED"
)

// RenameResult reports the outcome of a single rename decision.
type RenameResult struct {
	Outcome Outcome
	NewPath string // set when Outcome is OutcomeRenamed
}

// BatchSummary reports the result of a RenameAll run.
type BatchSummary struct {
	ID        string // unique per run, for log correlation
	Attempted int
	Renamed   int
	Unchanged int
	Failed    int
}

// pendingOp is the debounce bookkeeping for one document path. The
// generation guards against a timer firing after it was superseded.
type pendingOp struct {
	timer      *time.Timer
	generation uint64
}

// Coordinator decides whether and when to rename a document, resolves
// collisions against the live listing, and commits renames through the
// storage collaborator. Debounce timers and reservations are per-instance
// state: independent coordinators never interfere.
type Coordinator struct {
	storage Storage
	logger  *slog.Logger

	mu         sync.Mutex
	cfg        Config
	pending    map[string]*pendingOp
	generation uint64
	closed     bool
	lastBatch  *BatchSummary
}

// NewCoordinator creates a coordinator with a validated configuration.
func NewCoordinator(storage Storage, cfg Config, logger *slog.Logger) (*Coordinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		storage: storage,
		logger:  logger,
		cfg:     cfg,
		pending: make(map[string]*pendingOp),
	}, nil
}

// Config returns the active configuration.
func (c *Coordinator) Config() Config {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg
}

// SetConfig swaps the active configuration. Invalid values are rejected and
// the prior configuration stays in effect.
func (c *Coordinator) SetConfig(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cfg = cfg
	return nil
}

// Close cancels all pending debounce timers. Superseded or cancelled timers
// never execute their deferred rename.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	for path, op := range c.pending {
		op.timer.Stop()
		delete(c.pending, path)
	}
}

// MaybeRename applies the derived name to doc if it is eligible. With
// immediate set (or a zero debounce interval) the rename happens
// synchronously; otherwise a trailing-edge debounce timer is armed per
// document path, restarting on every further call for the same path.
func (c *Coordinator) MaybeRename(ctx context.Context, doc Document, immediate bool) (RenameResult, error) {
	cfg := c.Config()
	if !cfg.Watches(doc.Container) {
		return RenameResult{Outcome: OutcomeSkipped}, nil
	}

	if immediate || cfg.DebounceIntervalMs == 0 {
		return c.renameNow(ctx, doc, cfg, nil)
	}

	c.schedule(doc, cfg.DebounceInterval())
	return RenameResult{Outcome: OutcomeDeferred}, nil
}

// schedule arms (or re-arms) the debounce timer for doc's path.
func (c *Coordinator) schedule(doc Document, interval time.Duration) {
	path := doc.Path()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	if op, ok := c.pending[path]; ok {
		op.timer.Stop()
	}
	c.generation++
	gen := c.generation
	c.pending[path] = &pendingOp{
		generation: gen,
		timer: time.AfterFunc(interval, func() {
			c.fire(doc, gen)
		}),
	}
}

// fire runs when a debounce timer elapses. Content is reread at this point
// and may differ from the content at notification time, which is fine. The
// policy avoids renaming mid-keystroke, nothing more.
func (c *Coordinator) fire(doc Document, gen uint64) {
	path := doc.Path()

	c.mu.Lock()
	op, ok := c.pending[path]
	if !ok || op.generation != gen || c.closed {
		c.mu.Unlock()
		return
	}
	delete(c.pending, path)
	cfg := c.cfg
	c.mu.Unlock()

	if _, err := c.renameNow(context.Background(), doc, cfg, nil); err != nil {
		// Reported out-of-band: automatic renames never interrupt editing.
		c.logger.Error("deferred rename failed", "path", path, "error", err)
	}
}

// renameNow derives a name for doc, resolves it against storage (and the
// batch reservation set, when present) and commits the rename.
func (c *Coordinator) renameNow(ctx context.Context, doc Document, cfg Config, reserved *ReservedPathSet) (RenameResult, error) {
	content, err := c.storage.ReadContent(ctx, doc)
	if err != nil {
		return RenameResult{}, fmt.Errorf("read %s: %w", doc.Path(), err)
	}

	stem := Derive(content, cfg)

	target, result, err := c.resolve(ctx, doc, stem, reserved)
	if err != nil {
		return RenameResult{}, err
	}
	if result.Outcome == OutcomeUnchanged {
		return result, nil
	}

	if err := c.storage.RenameTo(ctx, doc, target); err != nil {
		return RenameResult{}, fmt.Errorf("rename %s to %s: %w", doc.Path(), target, err)
	}
	c.logger.Debug("renamed", "from", doc.Path(), "to", target)
	return RenameResult{Outcome: OutcomeRenamed, NewPath: target}, nil
}

// resolve finds an unoccupied destination path for stem, probing storage
// and appending " (n)" suffixes on collision. Reaching the document's own
// current path short-circuits as Unchanged.
func (c *Coordinator) resolve(ctx context.Context, doc Document, stem string, reserved *ReservedPathSet) (string, RenameResult, error) {
	current := doc.Path()

	for n := 1; n <= maxCollisionProbes; n++ {
		candidateStem := stem
		if n > 1 {
			candidateStem = fmt.Sprintf("%s (%d)", stem, n)
		}
		candidate := doc.JoinPath(candidateStem)

		if candidate == current {
			return "", RenameResult{Outcome: OutcomeUnchanged}, nil
		}

		exists, err := c.storage.PathExists(ctx, candidate)
		if err != nil {
			return "", RenameResult{}, fmt.Errorf("probe %s: %w", candidate, err)
		}
		if exists {
			continue
		}

		if reserved != nil && !reserved.Claim(candidate) {
			// Another document in this batch got there first.
			continue
		}
		return candidate, RenameResult{Outcome: OutcomeRenamed}, nil
	}
	return "", RenameResult{}, fmt.Errorf("resolve %q in %q: %w", stem, doc.Container, ErrCollisionExhausted)
}

// RenameAll renames every eligible document in the watched containers,
// bypassing debounce. Documents are processed concurrently; the shared
// reservation set keeps two of them from claiming the same destination.
// A single document's failure never aborts its siblings.
func (c *Coordinator) RenameAll(ctx context.Context) (BatchSummary, error) {
	cfg := c.Config()
	summary := BatchSummary{ID: uuid.NewString()}

	docs, err := c.listEligible(ctx, cfg)
	if err != nil {
		return summary, err
	}
	summary.Attempted = len(docs)

	reserved := NewReservedPathSet()
	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	for _, doc := range docs {
		g.Go(func() error {
			res, err := c.renameNow(gctx, doc, cfg, reserved)

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err != nil:
				summary.Failed++
				errs = append(errs, err)
				c.logger.Error("batch rename failed", "batch", summary.ID, "path", doc.Path(), "error", err)
			case res.Outcome == OutcomeRenamed:
				summary.Renamed++
			default:
				summary.Unchanged++
			}
			return nil
		})
	}
	_ = g.Wait()

	c.mu.Lock()
	c.lastBatch = &summary
	c.mu.Unlock()

	c.logger.Info("batch rename finished", "batch", summary.ID,
		"attempted", summary.Attempted, "renamed", summary.Renamed, "failed", summary.Failed)
	return summary, errors.Join(errs...)
}

// listEligible enumerates documents under the watched containers, filtered
// through the same eligibility rule as the per-edit path.
func (c *Coordinator) listEligible(ctx context.Context, cfg Config) ([]Document, error) {
	seen := make(map[string]struct{})
	var docs []Document

	for _, container := range cfg.WatchedContainers {
		listed, err := c.storage.ListDocuments(ctx, container)
		if err != nil {
			return nil, fmt.Errorf("list %q: %w", container, err)
		}
		for _, doc := range listed {
			if !cfg.Watches(doc.Container) {
				continue
			}
			path := doc.Path()
			if _, dup := seen[path]; dup {
				continue
			}
			seen[path] = struct{}{}
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

// ReservedPathSet tracks destination paths claimed during one batch run.
// It exists only for the lifetime of the batch; unfulfilled reservations
// simply expire with it.
type ReservedPathSet struct {
	mu    sync.Mutex
	paths map[string]struct{}
}

// NewReservedPathSet creates an empty reservation set.
func NewReservedPathSet() *ReservedPathSet {
	return &ReservedPathSet{paths: make(map[string]struct{})}
}

// Claim atomically checks and inserts path. It returns false when the path
// was already reserved.
func (s *ReservedPathSet) Claim(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.paths[path]; taken {
		return false
	}
	s.paths[path] = struct{}{}
	return true
}

// Len returns the number of reserved paths.
func (s *ReservedPathSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.paths)
}
