package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/campusbuddy/campusbuddy-go/internal/docstore"
	domerrors "github.com/campusbuddy/campusbuddy-go/internal/errors"
	"github.com/campusbuddy/campusbuddy-go/internal/logger"
	"github.com/campusbuddy/campusbuddy-go/internal/metrics"
	"github.com/campusbuddy/campusbuddy-go/internal/modules/attendance"
	"github.com/campusbuddy/campusbuddy-go/internal/modules/timetable"
	"github.com/campusbuddy/campusbuddy-go/internal/syllabus"
)

// QueryResult is the document-query tool's output payload, serialized
// into the tool-result message so the model sees the truncation facts.
type QueryResult struct {
	Content        string `json:"content"`
	Question       string `json:"question"`
	IsTruncated    bool   `json:"isTruncated"`
	OriginalLength int    `json:"originalLength"`
}

// dispatchOutcome is one executed invocation's effect on the turn.
type dispatchOutcome struct {
	// content is the tool-result message body.
	content string

	// direct means the content is a finished user-facing answer and the
	// turn may end without a synthesis call.
	direct bool

	// reformattable marks results that go through synthesis instead
	// when the user asked for a restyled presentation.
	reformattable bool

	// grounding, when non-empty, is an instructional message appended
	// after the tool result to constrain the synthesis call.
	grounding string
}

// Dispatcher executes validated tool invocations against the handlers.
type Dispatcher struct {
	attendance *attendance.Handler
	timetable  *timetable.Handler
	syllabus   *syllabus.Service
	store      *docstore.Store
	uploader   *Uploader

	promptCap int
	logger    *logger.Logger
	metrics   *metrics.Metrics
}

// NewDispatcher creates a Dispatcher over the tool handlers.
func NewDispatcher(
	att *attendance.Handler,
	tt *timetable.Handler,
	syl *syllabus.Service,
	store *docstore.Store,
	uploader *Uploader,
	promptCap int,
	log *logger.Logger,
	m *metrics.Metrics,
) *Dispatcher {
	return &Dispatcher{
		attendance: att,
		timetable:  tt,
		syllabus:   syl,
		store:      store,
		uploader:   uploader,
		promptCap:  promptCap,
		logger:     log.WithModule("dispatch"),
		metrics:    m,
	}
}

// Dispatch executes one invocation. Handler failures are recovered into
// user-facing text here; only genuinely unexpected faults return an error.
func (d *Dispatcher) Dispatch(ctx context.Context, inv Invocation) (*dispatchOutcome, error) {
	start := time.Now()
	outcome, err := d.dispatch(ctx, inv)
	d.metrics.RecordToolDispatch(inv.Tool(), dispatchStatus(err), time.Since(start))
	return outcome, err
}

func (d *Dispatcher) dispatch(ctx context.Context, inv Invocation) (*dispatchOutcome, error) {
	switch v := inv.(type) {
	case AttendanceLookup:
		report, err := d.attendance.Lookup(ctx, v.RollNumber)
		if err != nil {
			return d.recover(err)
		}
		return &dispatchOutcome{content: report, direct: true, reformattable: true}, nil

	case TimetableLookup:
		report, err := d.timetable.Lookup(ctx, v.Year, v.Branch)
		if err != nil {
			return d.recover(err)
		}
		return &dispatchOutcome{content: report, direct: true, reformattable: true}, nil

	case SyllabusLookup:
		content, err := d.syllabus.Lookup(v.Subject, v.Unit)
		if err != nil {
			return d.recover(err)
		}
		return &dispatchOutcome{
			content:   content.Format(),
			grounding: syllabusGroundingPrompt,
		}, nil

	case DocumentUpload:
		// Rejections already carry a user-facing message, so the error
		// is folded into the outcome rather than propagated.
		msg, _ := d.uploader.Upload(v.DocumentID, v.FileName, v.FileContent, v.FileType)
		return &dispatchOutcome{content: msg, direct: true}, nil

	case DocumentQuery:
		return d.dispatchQuery(v)

	default:
		return nil, &domerrors.UnknownToolError{Name: inv.Tool()}
	}
}

// dispatchQuery resolves the document and builds the query payload.
// A missing or low-content document short-circuits with the tool's own
// descriptive message; it never reaches a second model call.
func (d *Dispatcher) dispatchQuery(q DocumentQuery) (*dispatchOutcome, error) {
	doc, ok := d.store.Get(q.Key)
	if !ok {
		nf := &domerrors.DocumentNotFoundError{Key: q.Key, KnownNames: d.store.ListNames()}
		return &dispatchOutcome{content: nf.Guidance(), direct: true}, nil
	}

	if doc.Text == "" {
		return &dispatchOutcome{
			content: fmt.Sprintf(
				"%s has no extractable text, so I cannot answer questions about it. "+
					"It may be a scanned or image-only document.",
				doc.DisplayName,
			),
			direct: true,
		}, nil
	}

	result := QueryResult{
		Content:        doc.Text,
		Question:       q.Question,
		OriginalLength: len(doc.Text),
	}
	if len(result.Content) > d.promptCap {
		result.Content = result.Content[:d.promptCap] + "\n[... content truncated ...]"
		result.IsTruncated = true
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query result: %w", err)
	}

	return &dispatchOutcome{
		content:   string(payload),
		grounding: documentGroundingPrompt,
	}, nil
}

// recover converts expected handler failures into user-facing text.
// Everything else propagates.
func (d *Dispatcher) recover(err error) (*dispatchOutcome, error) {
	var snf *domerrors.SubjectNotFoundError
	if errors.As(err, &snf) {
		return &dispatchOutcome{content: snf.Guidance(), direct: true}, nil
	}

	var unf *domerrors.UnitNotFoundError
	if errors.As(err, &unf) {
		return &dispatchOutcome{content: unf.Guidance(), direct: true}, nil
	}

	var verr *domerrors.ValidationError
	if errors.As(err, &verr) {
		return &dispatchOutcome{
			content: fmt.Sprintf("I could not run that lookup: %s. Please rephrase and try again.", verr.Message),
			direct:  true,
		}, nil
	}

	var derr *domerrors.DecodeError
	if errors.As(err, &derr) {
		return &dispatchOutcome{
			content: "The syllabus document could not be read. Please report this to the administrators.",
			direct:  true,
		}, nil
	}

	return nil, err
}

func dispatchStatus(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
