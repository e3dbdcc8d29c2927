// Package stemma is the Composition Root for the stemma engine.
//
// It connects the core rename logic (Domain Layer) with the filesystem
// adapter (Persistence Layer) using the Hexagonal Architecture pattern.
//
// Philosophy:
//
// stemma keeps a note's filename in sync with its content. The name is
// derived from the document itself (front matter skipped, leading heading
// preferred, unsafe characters filtered) and applied automatically after
// edits settle, with conventional " (2)" suffixes resolving collisions
// inside a folder. The core is pure and storage-agnostic; the default
// adapter watches a vault directory on the local filesystem.
//
// Basic usage:
//
//	svc, err := stemma.New("/path/to/vault")
//	if err != nil {
//		log.Fatal(err)
//	}
//	summary, err := svc.RenameAll(ctx)
package stemma
