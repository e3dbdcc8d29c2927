// Document is the central entity of the domain.
package core

import (
	"strings"
	"time"
)

// Document identifies a single text file inside a vault.
// Paths are vault-relative and slash-separated regardless of OS.
type Document struct {
	Container string // folder path relative to the vault root, "" for the root
	Stem      string // filename without extension
	Ext       string // extension including the leading dot, e.g. ".md"
}

// Path returns the vault-relative path of the document.
func (d Document) Path() string {
	name := d.Stem + d.Ext
	if d.Container == "" {
		return name
	}
	return d.Container + "/" + name
}

// JoinPath builds a vault-relative path for a sibling of d with the given stem.
func (d Document) JoinPath(stem string) string {
	return Document{Container: d.Container, Stem: stem, Ext: d.Ext}.Path()
}

// DocumentFromPath splits a vault-relative path into its parts.
func DocumentFromPath(p string) Document {
	p = strings.TrimPrefix(p, "/")
	container := ""
	name := p
	if i := strings.LastIndex(p, "/"); i >= 0 {
		container = p[:i]
		name = p[i+1:]
	}
	ext := ""
	if j := strings.LastIndex(name, "."); j > 0 {
		ext = name[j:]
		name = name[:j]
	}
	return Document{Container: container, Stem: name, Ext: ext}
}

// EventType represents the type of change in the vault.
type EventType string

const (
	EventChanged EventType = "CHANGED"
	EventOpened  EventType = "OPENED"
)

// Event represents a document notification delivered by a Notifier.
type Event struct {
	Type      EventType
	Doc       Document
	Timestamp int64 // Unix timestamp
}

// NewEvent stamps a notification for doc with the current time.
func NewEvent(t EventType, doc Document) Event {
	return Event{Type: t, Doc: doc, Timestamp: time.Now().Unix()}
}
