package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestDecodeError(t *testing.T) {
	cause := stderrors.New("xref table corrupt")
	err := NewDecodeError("pdf", cause)

	if !strings.Contains(err.Error(), "pdf") || !strings.Contains(err.Error(), "xref") {
		t.Errorf("unexpected message: %v", err)
	}
	if !stderrors.Is(err, cause) {
		t.Error("DecodeError should unwrap to its cause")
	}
}

func TestSubjectNotFound_Guidance(t *testing.T) {
	err := &SubjectNotFoundError{Subject: "Compiler Design"}
	if !strings.Contains(err.Guidance(), "Compiler Design") {
		t.Errorf("guidance should name the subject: %q", err.Guidance())
	}
}

func TestUnitNotFound_DistinctFromSubjectNotFound(t *testing.T) {
	var err error = &UnitNotFoundError{Subject: "Networks", Unit: "3"}

	var subjectErr *SubjectNotFoundError
	if stderrors.As(err, &subjectErr) {
		t.Error("UnitNotFoundError must not match SubjectNotFoundError")
	}
	var unitErr *UnitNotFoundError
	if !stderrors.As(err, &unitErr) {
		t.Error("UnitNotFoundError should match its own type")
	}
	if !strings.Contains(unitErr.Guidance(), "Unit 3") {
		t.Errorf("guidance should name the unit: %q", unitErr.Guidance())
	}
}

func TestDocumentNotFound_ListsKnownNames(t *testing.T) {
	err := &DocumentNotFoundError{Key: "missing.pdf", KnownNames: []string{"notes.pdf", "lab.md"}}
	g := err.Guidance()
	if !strings.Contains(g, "notes.pdf") || !strings.Contains(g, "lab.md") {
		t.Errorf("guidance should list available documents: %q", g)
	}

	empty := &DocumentNotFoundError{Key: "missing.pdf"}
	if !strings.Contains(empty.Guidance(), "No documents") {
		t.Errorf("empty-store guidance should say so: %q", empty.Guidance())
	}
}

func TestQuotaExceeded(t *testing.T) {
	err := &QuotaExceededError{Provider: "groq", RetryAfter: 30 * time.Second}
	if !strings.Contains(err.Error(), "30s") {
		t.Errorf("message should include the wait estimate: %v", err)
	}

	noEstimate := &QuotaExceededError{Provider: "gemini"}
	if strings.Contains(noEstimate.Error(), "retry after") {
		t.Errorf("message should omit wait estimate when unknown: %v", noEstimate)
	}
}

func TestIsUserCorrectable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"subject_not_found", &SubjectNotFoundError{Subject: "X"}, true},
		{"unit_not_found", &UnitNotFoundError{Subject: "X", Unit: "1"}, true},
		{"document_not_found", &DocumentNotFoundError{Key: "y"}, true},
		{"validation", NewValidationError("year", "out of range"), true},
		{"low_content", ErrLowContent, true},
		{"unsupported_type", ErrUnsupportedFileType, true},
		{"wrapped_not_found", fmt.Errorf("lookup: %w", ErrNotFound), true},
		{"quota", &QuotaExceededError{Provider: "groq"}, false},
		{"decode", NewDecodeError("pdf", nil), false},
		{"generic", stderrors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserCorrectable(tt.err); got != tt.want {
				t.Errorf("IsUserCorrectable(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}

func TestUnknownTool(t *testing.T) {
	err := &UnknownToolError{Name: "weather-lookup"}
	if !strings.Contains(err.Error(), "weather-lookup") {
		t.Errorf("unexpected message: %v", err)
	}
}
