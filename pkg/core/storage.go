package core

import "context"

// Storage is the contract the host's file layer provides. The engine only
// reads content and requests renames; ownership of documents stays with
// the collaborator.
type Storage interface {
	// ReadContent returns the current text of a document. Implementations
	// may serve cached or slightly stale content.
	ReadContent(ctx context.Context, doc Document) (string, error)

	// PathExists probes whether a vault-relative path is occupied.
	PathExists(ctx context.Context, path string) (bool, error)

	// RenameTo moves a document to a new vault-relative path.
	RenameTo(ctx context.Context, doc Document, newPath string) error

	// ListDocuments returns the documents under a container, including
	// sub-containers.
	ListDocuments(ctx context.Context, container string) ([]Document, error)
}

// Notifier delivers document notifications. Subscribing returns an
// unsubscribe handle; the engine never manages the transport itself.
type Notifier interface {
	OnDocumentChanged(fn func(Event)) (func(), error)
	OnDocumentOpened(fn func(Event)) (func(), error)
}
