package extract

import (
	"bytes"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"

	domerrors "github.com/campusbuddy/campusbuddy-go/internal/errors"
	"github.com/campusbuddy/campusbuddy-go/internal/logger"
	"github.com/campusbuddy/campusbuddy-go/internal/metrics"
)

// FileType identifies a supported upload format.
type FileType string

// Supported upload formats.
const (
	FileTypePDF      FileType = "pdf"
	FileTypeText     FileType = "text"
	FileTypeMarkdown FileType = "markdown"
)

// ParseFileType maps a caller-supplied type string (including common MIME
// spellings) to a FileType. Returns ErrUnsupportedFileType for anything else.
func ParseFileType(s string) (FileType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pdf", "application/pdf":
		return FileTypePDF, nil
	case "text", "txt", "plain", "text/plain":
		return FileTypeText, nil
	case "markdown", "md", "text/markdown":
		return FileTypeMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q", domerrors.ErrUnsupportedFileType, s)
	}
}

// Extractor decodes uploaded documents into linearized text.
type Extractor struct {
	tolerance float64
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

// New creates an Extractor. tolerance is the same-line vertical threshold
// in layout units; zero or negative selects the default.
func New(tolerance float64, log *logger.Logger, m *metrics.Metrics) *Extractor {
	if tolerance <= 0 {
		tolerance = DefaultLineTolerance
	}
	return &Extractor{
		tolerance: tolerance,
		logger:    log.WithModule("extract"),
		metrics:   m,
	}
}

// Extract converts raw upload bytes into linearized text according to the
// declared file type. A successfully decoded document with no text is not
// an error; it returns empty text and is classified downstream as
// insufficient content. An undecodable document returns a DecodeError.
func (e *Extractor) Extract(data []byte, fileType FileType) (string, error) {
	start := time.Now()
	var (
		text string
		err  error
	)

	switch fileType {
	case FileTypePDF:
		text, err = e.extractPDF(data)
	case FileTypeText, FileTypeMarkdown:
		text, err = e.extractPlain(data, fileType)
	default:
		err = fmt.Errorf("%w: %q", domerrors.ErrUnsupportedFileType, fileType)
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	if e.metrics != nil {
		e.metrics.RecordExtraction(string(fileType), status, time.Since(start))
	}
	if err != nil {
		return "", err
	}

	e.logger.WithField("file_type", string(fileType)).
		WithField("chars", len(text)).
		WithField("duration_ms", time.Since(start).Milliseconds()).
		Debug("Document extracted")
	return text, nil
}

// extractPDF decodes the PDF and linearizes each page's positioned
// fragments. The pdf library panics on some malformed inputs, so decoding
// runs behind a recover that converts the panic into a DecodeError.
func (e *Extractor) extractPDF(data []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domerrors.NewDecodeError("pdf", fmt.Errorf("parser panic: %v", r))
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", domerrors.NewDecodeError("pdf", err)
	}

	numPages := reader.NumPage()
	pages := make([][]Fragment, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, nil)
			continue
		}
		content := page.Content()
		frags := make([]Fragment, 0, len(content.Text))
		for _, t := range content.Text {
			if t.S == "" {
				continue
			}
			frags = append(frags, Fragment{S: t.S, X: t.X, Y: t.Y})
		}
		pages = append(pages, frags)
	}

	return LinearizePages(pages, e.tolerance), nil
}

// extractPlain validates UTF-8 and passes text/markdown through unchanged.
func (e *Extractor) extractPlain(data []byte, fileType FileType) (string, error) {
	if !utf8.Valid(data) {
		return "", domerrors.NewDecodeError(string(fileType), fmt.Errorf("content is not valid UTF-8"))
	}
	return string(data), nil
}

// CountTokens returns the number of whitespace-separated tokens in text.
// Used to classify near-empty (likely image-only) documents.
func CountTokens(text string) int {
	return len(strings.Fields(text))
}
