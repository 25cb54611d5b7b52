// Package docstore holds extracted document text for the lifetime of the
// process. The store is the only mutable state shared across requests;
// one mutex guards both lookup tables so a Put is atomic and a Get never
// observes a half-written entry.
package docstore

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	domerrors "github.com/campusbuddy/campusbuddy-go/internal/errors"
	"github.com/campusbuddy/campusbuddy-go/internal/logger"
	"github.com/campusbuddy/campusbuddy-go/internal/metrics"
)

// Document is one stored upload. Text is immutable once stored; a re-Put
// under the same id creates a new Document that fully replaces the old one.
type Document struct {
	ID          string
	DisplayName string
	Text        string
	WordCount   int
	CharCount   int
	StoredAt    time.Time
}

// Store maps opaque document ids and display filenames to extracted text.
type Store struct {
	mu        sync.Mutex
	byID      map[string]*Document
	byName    map[string]string // display name -> id, last write wins
	minTokens int
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

// New creates an empty Store. minTokens is the low-content rejection
// threshold; zero or negative selects the default of 10.
func New(minTokens int, log *logger.Logger, m *metrics.Metrics) *Store {
	if minTokens <= 0 {
		minTokens = 10
	}
	return &Store{
		byID:      make(map[string]*Document),
		byName:    make(map[string]string),
		minTokens: minTokens,
		logger:    log.WithModule("docstore"),
		metrics:   m,
	}
}

// Put inserts or replaces a Document and its name alias as one atomic
// step. Content with fewer than the minimum number of whitespace-separated
// tokens is rejected with ErrLowContent (likely a scanned/image-only
// source) and nothing is stored.
func (s *Store) Put(id, displayName, text string) (*Document, error) {
	words := len(strings.Fields(text))
	if words < s.minTokens {
		return nil, fmt.Errorf("%w: %d tokens extracted (minimum %d)", domerrors.ErrLowContent, words, s.minTokens)
	}

	doc := &Document{
		ID:          id,
		DisplayName: displayName,
		Text:        text,
		WordCount:   words,
		CharCount:   len(text),
		StoredAt:    time.Now(),
	}

	s.mu.Lock()
	if old, ok := s.byID[id]; ok && old.DisplayName != displayName {
		// The replaced document's alias must not dangle.
		if s.byName[old.DisplayName] == id {
			delete(s.byName, old.DisplayName)
		}
	}
	s.byID[id] = doc
	if displayName != "" {
		s.byName[displayName] = id
	}
	count := len(s.byID)
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.SetStoredDocuments(count)
	}
	s.logger.WithField("document_id", id).
		WithField("display_name", displayName).
		WithField("words", words).
		Info("Document stored")
	return doc, nil
}

// Get resolves key first against document ids, then against display name
// aliases. Resolution is id-first: a caller-chosen id that collides with
// another document's filename resolves to the id match.
func (s *Store) Get(key string) (*Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if doc, ok := s.byID[key]; ok {
		return doc, true
	}
	if id, ok := s.byName[key]; ok {
		if doc, ok := s.byID[id]; ok {
			return doc, true
		}
	}
	return nil, false
}

// ListNames returns the known display names in sorted order, used to
// build an "available documents" listing for unknown-key queries.
func (s *Store) ListNames() []string {
	s.mu.Lock()
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	s.mu.Unlock()

	sort.Strings(names)
	return names
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}
