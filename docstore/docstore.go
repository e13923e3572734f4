// Package docstore holds the extracted text of the active document in memory.
//
// Information Hiding:
// - Page slice and its guarding mutex hidden behind the Store type
// - Extraction backend hidden behind the Extractor function type
// - Readers always see a complete document, never a partial swap

package docstore

import (
	"errors"
	"fmt"
	"sync"
)

// ErrNotLoaded is returned when no document has been loaded yet.
var ErrNotLoaded = errors.New("no document loaded")

// Page is one page of extracted document text. Numbering starts at 1.
type Page struct {
	Number int    `json:"page"`
	Text   string `json:"text"`
}

// Extractor turns a document file into ordered pages of text.
// pdfx.ExtractText satisfies this; tests substitute their own.
type Extractor func(path string) ([]Page, error)

// Store holds the pages of the currently loaded document.
// Load replaces the whole page set atomically; a failed load leaves
// the previous content in place.
type Store struct {
	mu      sync.RWMutex
	pages   []Page
	path    string
	extract Extractor
}

// NewStore creates an empty store backed by the given extractor.
func NewStore(extract Extractor) *Store {
	return &Store{extract: extract}
}

// Load extracts the document at path and swaps it in as the active content.
func (s *Store) Load(path string) error {
	pages, err := s.extract(path)
	if err != nil {
		return fmt.Errorf("failed to extract document %q: %w", path, err)
	}

	s.mu.Lock()
	s.pages = pages
	s.path = path
	s.mu.Unlock()
	return nil
}

// Reload re-extracts the most recently loaded document.
func (s *Store) Reload() error {
	s.mu.RLock()
	path := s.path
	s.mu.RUnlock()

	if path == "" {
		return ErrNotLoaded
	}
	return s.Load(path)
}

// Pages returns a snapshot copy of the loaded pages, in page order.
// Returns an empty slice when nothing is loaded.
func (s *Store) Pages() []Page {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make([]Page, len(s.pages))
	copy(copied, s.pages)
	return copied
}

// Len returns the number of loaded pages.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.pages)
}

// Path returns the path of the loaded document, or "" when empty.
func (s *Store) Path() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.path
}
