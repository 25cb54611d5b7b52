package chat

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	domerrors "github.com/campusbuddy/campusbuddy-go/internal/errors"
	"github.com/campusbuddy/campusbuddy-go/internal/llm"
)

// Tool names form a closed set; the model may not invent new ones.
const (
	ToolAttendanceLookup = "attendance-lookup"
	ToolTimetableLookup  = "timetable-lookup"
	ToolSyllabusLookup   = "syllabus-lookup"
	ToolDocumentUpload   = "document-upload"
	ToolDocumentQuery    = "document-query"
)

// Invocation is one validated tool request. The variants form a closed
// tagged set over the tool catalog; unknown names fail parsing with a
// typed error rather than slipping through as strings.
type Invocation interface {
	Tool() string
	isInvocation()
}

// AttendanceLookup requests one student's attendance report.
type AttendanceLookup struct {
	RollNumber string
}

// TimetableLookup requests the weekly schedule for a year and branch.
type TimetableLookup struct {
	Year   int
	Branch string
}

// SyllabusLookup requests one unit of one subject from the syllabus.
type SyllabusLookup struct {
	Subject string
	Unit    string
}

// DocumentUpload stores a document supplied inline by the model.
type DocumentUpload struct {
	DocumentID  string
	FileName    string
	FileContent string // base64
	FileType    string
}

// DocumentQuery asks a question against a stored document.
type DocumentQuery struct {
	Key      string // document id or display name
	Question string
}

func (AttendanceLookup) Tool() string { return ToolAttendanceLookup }
func (TimetableLookup) Tool() string  { return ToolTimetableLookup }
func (SyllabusLookup) Tool() string   { return ToolSyllabusLookup }
func (DocumentUpload) Tool() string   { return ToolDocumentUpload }
func (DocumentQuery) Tool() string    { return ToolDocumentQuery }

func (AttendanceLookup) isInvocation() {}
func (TimetableLookup) isInvocation()  {}
func (SyllabusLookup) isInvocation()   {}
func (DocumentUpload) isInvocation()   {}
func (DocumentQuery) isInvocation()    {}

// ParseInvocation validates a raw tool call against the catalog and
// returns the typed variant.
func ParseInvocation(tc llm.ToolCall) (Invocation, error) {
	args := map[string]any{}
	if tc.Arguments != "" {
		if err := json.Unmarshal([]byte(tc.Arguments), &args); err != nil {
			return nil, &domerrors.ValidationError{
				Field:   "arguments",
				Message: fmt.Sprintf("tool %s: malformed arguments: %v", tc.Name, err),
			}
		}
	}

	switch tc.Name {
	case ToolAttendanceLookup:
		roll, err := stringArg(args, "roll_number", true)
		if err != nil {
			return nil, err
		}
		return AttendanceLookup{RollNumber: roll}, nil

	case ToolTimetableLookup:
		year, err := intArg(args, "year")
		if err != nil {
			return nil, err
		}
		if year < 1 || year > 4 {
			return nil, &domerrors.ValidationError{Field: "year", Message: "year must be between 1 and 4"}
		}
		branch, err := stringArg(args, "branch", true)
		if err != nil {
			return nil, err
		}
		return TimetableLookup{Year: year, Branch: branch}, nil

	case ToolSyllabusLookup:
		subject, err := stringArg(args, "subject", true)
		if err != nil {
			return nil, err
		}
		unit, err := stringArg(args, "unit", true)
		if err != nil {
			return nil, err
		}
		return SyllabusLookup{Subject: subject, Unit: unit}, nil

	case ToolDocumentUpload:
		id, err := stringArg(args, "documentId", true)
		if err != nil {
			return nil, err
		}
		name, err := stringArg(args, "fileName", true)
		if err != nil {
			return nil, err
		}
		content, err := stringArg(args, "fileContent", true)
		if err != nil {
			return nil, err
		}
		fileType, err := stringArg(args, "fileType", true)
		if err != nil {
			return nil, err
		}
		return DocumentUpload{DocumentID: id, FileName: name, FileContent: content, FileType: fileType}, nil

	case ToolDocumentQuery:
		key, err := stringArg(args, "documentId", false)
		if err != nil {
			return nil, err
		}
		if key == "" {
			key, err = stringArg(args, "fileName", false)
			if err != nil {
				return nil, err
			}
		}
		if key == "" {
			return nil, &domerrors.ValidationError{Field: "documentId", Message: "a document id or file name is required"}
		}
		question, err := stringArg(args, "question", true)
		if err != nil {
			return nil, err
		}
		return DocumentQuery{Key: key, Question: question}, nil

	default:
		return nil, &domerrors.UnknownToolError{Name: tc.Name}
	}
}

func stringArg(args map[string]any, name string, required bool) (string, error) {
	v, ok := args[name]
	if !ok {
		if required {
			return "", &domerrors.ValidationError{Field: name, Message: "required parameter is missing"}
		}
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", &domerrors.ValidationError{Field: name, Message: fmt.Sprintf("expected string, got %T", v)}
	}
	s = strings.TrimSpace(s)
	if required && s == "" {
		return "", &domerrors.ValidationError{Field: name, Message: "required parameter is empty"}
	}
	return s, nil
}

// intArg accepts JSON numbers and numeric strings, since models emit both.
func intArg(args map[string]any, name string) (int, error) {
	v, ok := args[name]
	if !ok {
		return 0, &domerrors.ValidationError{Field: name, Message: "required parameter is missing"}
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return 0, &domerrors.ValidationError{Field: name, Message: fmt.Sprintf("expected integer, got %q", n)}
		}
		return i, nil
	default:
		return 0, &domerrors.ValidationError{Field: name, Message: fmt.Sprintf("expected integer, got %T", v)}
	}
}

// Catalog returns the tool definitions advertised to the model.
func Catalog() []llm.ToolDef {
	return []llm.ToolDef{
		{
			Name:        ToolAttendanceLookup,
			Description: "Look up a student's attendance record by roll number. Returns a formatted report with attended/held counts and percentage.",
			Params: []llm.ToolParam{
				{Name: "roll_number", Type: "string", Description: "The student's roll number, e.g. 21CS045", Required: true},
			},
		},
		{
			Name:        ToolTimetableLookup,
			Description: "Look up the weekly class timetable for a year and branch.",
			Params: []llm.ToolParam{
				{Name: "year", Type: "integer", Description: "Year of study, 1 to 4", Required: true},
				{Name: "branch", Type: "string", Description: "Branch code, e.g. CSE, ECE", Required: true},
			},
		},
		{
			Name:        ToolSyllabusLookup,
			Description: "Look up one unit of one subject in the campus syllabus. Returns the unit's topics.",
			Params: []llm.ToolParam{
				{Name: "subject", Type: "string", Description: "Subject name as printed in the syllabus, e.g. Compiler Design", Required: true},
				{Name: "unit", Type: "string", Description: "Unit number, e.g. 2 or II", Required: true},
			},
		},
		{
			Name:        ToolDocumentUpload,
			Description: "Store a document so later questions can be answered from its content.",
			Params: []llm.ToolParam{
				{Name: "documentId", Type: "string", Description: "Caller-assigned unique document id", Required: true},
				{Name: "fileName", Type: "string", Description: "Original file name", Required: true},
				{Name: "fileContent", Type: "string", Description: "Base64-encoded file content", Required: true},
				{Name: "fileType", Type: "string", Description: "One of pdf, text, markdown", Required: true},
			},
		},
		{
			Name:        ToolDocumentQuery,
			Description: "Fetch a stored document's content to answer a question about it. Accepts the document id or the original file name.",
			Params: []llm.ToolParam{
				{Name: "documentId", Type: "string", Description: "Document id or original file name", Required: true},
				{Name: "question", Type: "string", Description: "The user's question about the document", Required: true},
			},
		},
	}
}
