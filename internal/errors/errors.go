// Package errors provides domain-specific error types and sentinel errors
// for improved error handling across the application.
package errors

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Sentinel errors for common scenarios.
// Use errors.Is() to check these errors in your code.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput indicates user provided invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedFileType indicates an upload with a file type the
	// extractor cannot handle.
	ErrUnsupportedFileType = errors.New("unsupported file type")

	// ErrLowContent indicates a document whose extractable text is below
	// the minimum token threshold, typically a scanned/image-only source.
	ErrLowContent = errors.New("document has insufficient extractable text")

	// ErrRateLimitExceeded indicates a local rate limit has been exceeded.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")
)

// DecodeError represents an unreadable source document. Fatal for the
// request; surfaced as a descriptive message and never retried.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot decode %s document: %v", e.Format, e.Err)
	}
	return fmt.Sprintf("cannot decode %s document", e.Format)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// NewDecodeError creates a new decode error.
func NewDecodeError(format string, err error) *DecodeError {
	return &DecodeError{Format: format, Err: err}
}

// SubjectNotFoundError is an expected, user-correctable outcome of a
// syllabus lookup: the requested subject was not present in the text.
type SubjectNotFoundError struct {
	Subject string
}

func (e *SubjectNotFoundError) Error() string {
	return fmt.Sprintf("subject %q not found in syllabus", e.Subject)
}

// Guidance returns a user-facing hint for correcting the request.
func (e *SubjectNotFoundError) Guidance() string {
	return fmt.Sprintf("I couldn't find %q in the syllabus. Please check the subject name spelling, or try the full course title as printed in the curriculum.", e.Subject)
}

// UnitNotFoundError is an expected, user-correctable outcome: the subject
// was located but the requested unit was not found within its section.
type UnitNotFoundError struct {
	Subject string
	Unit    string
}

func (e *UnitNotFoundError) Error() string {
	return fmt.Sprintf("unit %q not found for subject %q", e.Unit, e.Subject)
}

// Guidance returns a user-facing hint for correcting the request.
func (e *UnitNotFoundError) Guidance() string {
	return fmt.Sprintf("I found %q but couldn't locate Unit %s in it. Units are usually numbered 1-8; please check the unit number.", e.Subject, e.Unit)
}

// DocumentNotFoundError indicates a query referenced an unknown document.
// KnownNames carries the currently stored display names so the user can
// pick an existing one.
type DocumentNotFoundError struct {
	Key        string
	KnownNames []string
}

func (e *DocumentNotFoundError) Error() string {
	return fmt.Sprintf("document %q not found", e.Key)
}

// Guidance returns a user-facing message listing available documents.
func (e *DocumentNotFoundError) Guidance() string {
	if len(e.KnownNames) == 0 {
		return fmt.Sprintf("I couldn't find a document named %q. No documents have been uploaded yet - please upload one first.", e.Key)
	}
	return fmt.Sprintf("I couldn't find a document named %q. Available documents: %s.", e.Key, strings.Join(e.KnownNames, ", "))
}

// QuotaExceededError indicates the upstream model signalled quota
// exhaustion. Terminal for the request; no automatic retry.
type QuotaExceededError struct {
	Provider   string
	RetryAfter time.Duration // zero when the upstream signal carried no estimate
	Err        error
}

func (e *QuotaExceededError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s quota exceeded (retry after %s)", e.Provider, e.RetryAfter)
	}
	return fmt.Sprintf("%s quota exceeded", e.Provider)
}

func (e *QuotaExceededError) Unwrap() error {
	return e.Err
}

// ValidationError represents tool argument validation failures.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new validation error.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// UpstreamError represents any model-call failure other than quota
// exhaustion. Generic; a retry is worth suggesting to the user.
type UpstreamError struct {
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream model call failed: %v", e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// UnknownToolError indicates the model invoked a tool name outside the
// closed tool set. A typed error rather than a silent skip.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// IsUserCorrectable reports whether err represents an expected outcome the
// user can recover from by adjusting their input, as opposed to a fault.
func IsUserCorrectable(err error) bool {
	var subjectErr *SubjectNotFoundError
	var unitErr *UnitNotFoundError
	var docErr *DocumentNotFoundError
	var valErr *ValidationError
	return errors.As(err, &subjectErr) ||
		errors.As(err, &unitErr) ||
		errors.As(err, &docErr) ||
		errors.As(err, &valErr) ||
		errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnsupportedFileType) ||
		errors.Is(err, ErrLowContent) ||
		errors.Is(err, ErrInvalidInput)
}
