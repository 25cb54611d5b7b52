package syllabus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/campusbuddy/campusbuddy-go/internal/extract"
	"github.com/campusbuddy/campusbuddy-go/internal/logger"
)

// Service answers unit lookups against the campus syllabus PDF. The PDF
// is parsed once on first use; concurrent first lookups share a single
// parse via singleflight.
type Service struct {
	path      string
	extractor *extract.Extractor
	locator   *Locator
	logger    *logger.Logger

	group singleflight.Group

	mu   sync.RWMutex
	text string
}

// NewService creates a syllabus lookup service over the PDF at path.
func NewService(path string, extractor *extract.Extractor, locator *Locator, log *logger.Logger) *Service {
	return &Service{
		path:      path,
		extractor: extractor,
		locator:   locator,
		logger:    log.WithModule("syllabus"),
	}
}

// Lookup returns the formatted content of one unit of one subject.
func (s *Service) Lookup(subject, unit string) (*UnitContent, error) {
	text, err := s.load()
	if err != nil {
		return nil, err
	}
	return s.locator.Locate(text, subject, unit)
}

// load returns the linearized syllabus text, parsing the PDF on first
// call and caching the result.
func (s *Service) load() (string, error) {
	s.mu.RLock()
	cached := s.text
	s.mu.RUnlock()
	if cached != "" {
		return cached, nil
	}

	v, err, _ := s.group.Do("syllabus", func() (any, error) {
		s.mu.RLock()
		cached := s.text
		s.mu.RUnlock()
		if cached != "" {
			return cached, nil
		}

		data, err := os.ReadFile(s.path)
		if err != nil {
			return "", fmt.Errorf("failed to read syllabus file: %w", err)
		}

		text, err := s.extractor.Extract(data, sourceType(s.path))
		if err != nil {
			return "", err
		}

		s.mu.Lock()
		s.text = text
		s.mu.Unlock()

		s.logger.WithFields(map[string]any{
			"path":  s.path,
			"chars": len(text),
		}).Info("syllabus loaded")
		return text, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// sourceType maps the syllabus file extension to an upload format.
// Anything that is not a PDF is read as plain text.
func sourceType(path string) extract.FileType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return extract.FileTypePDF
	case ".md":
		return extract.FileTypeMarkdown
	default:
		return extract.FileTypeText
	}
}
