package fs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/stemma-md/stemma/pkg/core"
)

// documentExt is the only extension treated as a document.
const documentExt = ".md"

// Repository implements core.Storage and core.Notifier over a vault
// directory on the local filesystem.
type Repository struct {
	Root   string
	config Config

	mu            sync.RWMutex
	subsChanged   map[int]func(core.Event)
	subsOpened    map[int]func(core.Event)
	nextSub       int
	worker        *watchWorker
	watcherActive bool
}

// Config holds the configuration for the filesystem repository.
type Config struct {
	Root      string
	SystemDir string   // hidden engine directory, e.g. ".stemma"
	Ignore    []string // doublestar patterns excluded from watching/listing
	Logger    *slog.Logger
}

// NewRepository creates a filesystem-backed repository.
func NewRepository(config Config) *Repository {
	if config.SystemDir == "" {
		config.SystemDir = DefaultSystemDir
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	return &Repository{
		Root:        config.Root,
		config:      config,
		subsChanged: make(map[int]func(core.Event)),
		subsOpened:  make(map[int]func(core.Event)),
	}
}

// Initialize ensures the vault directory and the system dir exist.
func (r *Repository) Initialize(ctx context.Context) error {
	info, err := os.Stat(r.Root)
	if os.IsNotExist(err) {
		return fmt.Errorf("vault path does not exist: %s", r.Root)
	}
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("vault path is not a directory: %s", r.Root)
	}
	if err := os.MkdirAll(filepath.Join(r.Root, r.config.SystemDir), 0755); err != nil {
		return fmt.Errorf("failed to create system directory: %w", err)
	}
	return nil
}

// abs maps a vault-relative slash path to an absolute OS path.
func (r *Repository) abs(relPath string) string {
	return filepath.Join(r.Root, filepath.FromSlash(relPath))
}

// ReadContent returns the document's text.
func (r *Repository) ReadContent(ctx context.Context, doc core.Document) (string, error) {
	data, err := os.ReadFile(r.abs(doc.Path()))
	if err != nil {
		return "", fmt.Errorf("failed to read document: %w", err)
	}
	return string(data), nil
}

// PathExists probes a vault-relative path.
func (r *Repository) PathExists(ctx context.Context, path string) (bool, error) {
	_, err := os.Stat(r.abs(path))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("failed to stat %s: %w", path, err)
}

// RenameTo moves a document to a new vault-relative path.
func (r *Repository) RenameTo(ctx context.Context, doc core.Document, newPath string) error {
	from := r.abs(doc.Path())
	to := r.abs(newPath)

	if err := os.MkdirAll(filepath.Dir(to), 0755); err != nil {
		return fmt.Errorf("failed to create directories: %w", err)
	}
	if err := os.Rename(from, to); err != nil {
		return fmt.Errorf("failed to rename: %w", err)
	}
	r.config.Logger.Debug("renamed on disk", "from", doc.Path(), "to", newPath)
	return nil
}

// ListDocuments walks a container (and its sub-containers) for documents.
func (r *Repository) ListDocuments(ctx context.Context, container string) ([]core.Document, error) {
	start := r.abs(container)
	if _, err := os.Stat(start); os.IsNotExist(err) {
		return nil, fmt.Errorf("container does not exist: %s", container)
	}

	var docs []core.Document
	err := filepath.WalkDir(start, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if r.skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}

		doc, ok := r.resolveDocument(path)
		if !ok {
			return nil
		}
		docs = append(docs, doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return docs, nil
}

// skipDir filters directories the engine never looks into.
func (r *Repository) skipDir(name string) bool {
	return name == ".git" || name == r.config.SystemDir ||
		(strings.HasPrefix(name, ".") && name != ".")
}

// resolveDocument maps an absolute file path to a core.Document. It returns
// false for files the engine does not consider documents.
func (r *Repository) resolveDocument(absPath string) (core.Document, bool) {
	base := filepath.Base(absPath)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, TempFilePrefix) {
		return core.Document{}, false
	}
	if filepath.Ext(base) != documentExt {
		return core.Document{}, false
	}

	rel, err := filepath.Rel(r.Root, absPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		return core.Document{}, false
	}
	rel = filepath.ToSlash(rel)

	for _, part := range strings.Split(rel, "/") {
		if part == r.config.SystemDir || part == ".git" {
			return core.Document{}, false
		}
	}
	return core.DocumentFromPath(rel), true
}

var _ core.Storage = (*Repository)(nil)
