// Package cache stores the site's content document as a single JSON file
// with fallback to a bundled read-only snapshot.
package cache

import (
	"time"

	"github.com/briangreenhill/zepsite/internal/content"
)

// Loader defines the interface for reading the content document
type Loader interface {
	// Load returns the current document, or empty defaults when nothing
	// readable is stored. It never fails.
	Load() *content.Document
}

// Saver defines the interface for persisting the content document
type Saver interface {
	// Save replaces the stored document
	Save(doc *content.Document) error
}

// ModTimer exposes when the document was last written
type ModTimer interface {
	// ModTime returns the modification time and false if nothing is stored
	ModTime() (time.Time, bool)
}

// Store is the main interface that combines all store operations
type Store interface {
	Loader
	Saver
	ModTimer
}
