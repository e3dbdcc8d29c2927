package core

import (
	"context"
	"log/slog"
)

// Service routes document notifications into the rename coordinator and
// exposes the user-initiated operations.
type Service struct {
	coord    *Coordinator
	storage  Storage
	notifier Notifier
	logger   *slog.Logger
}

// NewService wires a service. notifier may be nil when only explicit
// operations (Preview, RenameAll, HandleChange) are used, e.g. in tests.
func NewService(storage Storage, notifier Notifier, cfg Config, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}
	coord, err := NewCoordinator(storage, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Service{
		coord:    coord,
		storage:  storage,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// Coordinator exposes the underlying coordinator, mainly for introspection.
func (s *Service) Coordinator() *Coordinator {
	return s.coord
}

// HandleChange is the change-notification handler. It is exported so hosts
// (and tests) can feed synthetic events directly.
func (s *Service) HandleChange(ev Event) {
	res, err := s.coord.MaybeRename(context.Background(), ev.Doc, false)
	if err != nil {
		// Never surfaces into the editing flow; log and move on.
		s.logger.Error("auto rename failed", "path", ev.Doc.Path(), "error", err)
		return
	}
	s.logger.Debug("event handled", "type", ev.Type, "path", ev.Doc.Path(), "outcome", res.Outcome)
}

// HandleOpen treats an open notification like a change: opening a document
// with a stale name is a rename trigger too.
func (s *Service) HandleOpen(ev Event) {
	s.HandleChange(ev)
}

// Run subscribes to the notifier and blocks until ctx is cancelled.
func (s *Service) Run(ctx context.Context) error {
	if s.notifier == nil {
		return ErrNoNotifier
	}

	unsubChanged, err := s.notifier.OnDocumentChanged(s.HandleChange)
	if err != nil {
		return err
	}
	defer unsubChanged()

	unsubOpened, err := s.notifier.OnDocumentOpened(s.HandleOpen)
	if err != nil {
		return err
	}
	defer unsubOpened()

	<-ctx.Done()
	s.coord.Close()
	return ctx.Err()
}

// RenameAll renames every eligible document at once, bypassing debounce.
func (s *Service) RenameAll(ctx context.Context) (BatchSummary, error) {
	return s.coord.RenameAll(ctx)
}

// Rename applies the derived name to a single document immediately.
func (s *Service) Rename(ctx context.Context, doc Document) (RenameResult, error) {
	return s.coord.MaybeRename(ctx, doc, true)
}

// Preview returns the name that would be derived for doc without renaming.
func (s *Service) Preview(ctx context.Context, doc Document) (string, error) {
	content, err := s.storage.ReadContent(ctx, doc)
	if err != nil {
		return "", err
	}
	return Derive(content, s.coord.Config()), nil
}

// SetConfig forwards a validated configuration to the coordinator.
func (s *Service) SetConfig(cfg Config) error {
	return s.coord.SetConfig(cfg)
}

// Config returns the active configuration.
func (s *Service) Config() Config {
	return s.coord.Config()
}
