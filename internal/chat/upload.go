package chat

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/campusbuddy/campusbuddy-go/internal/docstore"
	domerrors "github.com/campusbuddy/campusbuddy-go/internal/errors"
	"github.com/campusbuddy/campusbuddy-go/internal/extract"
	"github.com/campusbuddy/campusbuddy-go/internal/logger"
	"github.com/campusbuddy/campusbuddy-go/internal/metrics"
)

// Uploader is the direct extraction-and-store path. It serves both the
// upload endpoint and the document-upload tool; neither goes through
// model dispatch.
type Uploader struct {
	extractor *extract.Extractor
	store     *docstore.Store
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

// NewUploader creates an Uploader.
func NewUploader(extractor *extract.Extractor, store *docstore.Store, log *logger.Logger, m *metrics.Metrics) *Uploader {
	return &Uploader{
		extractor: extractor,
		store:     store,
		logger:    log.WithModule("upload"),
		metrics:   m,
	}
}

// Upload decodes, extracts and stores one document. The returned string
// is always a well-formed user-facing message: a confirmation with
// stats on success, a descriptive rejection otherwise. The error is
// non-nil only for rejections, so callers can set a non-success status.
func (u *Uploader) Upload(id, fileName, contentB64, fileType string) (string, error) {
	ft, err := extract.ParseFileType(fileType)
	if err != nil {
		u.metrics.RecordUpload("unsupported_type")
		return fmt.Sprintf(
			"Sorry, %q is not a supported file type. Please upload a PDF, plain text or markdown file.",
			fileType,
		), err
	}

	data, err := base64.StdEncoding.DecodeString(contentB64)
	if err != nil {
		u.metrics.RecordUpload("bad_encoding")
		derr := &domerrors.DecodeError{Format: "base64", Err: err}
		return "The file content could not be decoded. Please re-upload the file.", derr
	}

	text, err := u.extractor.Extract(data, ft)
	if err != nil {
		u.metrics.RecordUpload("extract_failed")
		var derr *domerrors.DecodeError
		if errors.As(err, &derr) {
			return fmt.Sprintf(
				"I could not read %s. The file appears to be corrupt or in an unsupported binary structure.",
				fileName,
			), err
		}
		return "Something went wrong while reading the file. Please try again.", err
	}

	doc, err := u.store.Put(id, fileName, text)
	if err != nil {
		if errors.Is(err, domerrors.ErrLowContent) {
			u.metrics.RecordUpload("low_content")
			return fmt.Sprintf(
				"%s has little or no extractable text. It may be a scanned or image-only document. "+
					"Please run it through OCR or paste the text directly.",
				fileName,
			), err
		}
		u.metrics.RecordUpload("store_failed")
		return "The document could not be stored. Please try again.", err
	}

	u.metrics.RecordUpload("success")
	u.logger.WithFields(map[string]any{
		"document_id": doc.ID,
		"file_name":   doc.DisplayName,
		"words":       doc.WordCount,
		"chars":       doc.CharCount,
	}).Info("document stored")

	return fmt.Sprintf(
		"Stored %s (%d words, %d characters). You can now ask questions about it by name or id.",
		doc.DisplayName, doc.WordCount, doc.CharCount,
	), nil
}
