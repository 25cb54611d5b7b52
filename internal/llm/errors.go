// Package llm provides chat completion access to LLM APIs.
// This file contains error classification for retry and quota handling.
package llm

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	domerrors "github.com/campusbuddy/campusbuddy-go/internal/errors"
)

// ErrorAction defines the action to take based on error type.
type ErrorAction int

const (
	// ActionRetry indicates the request should be retried.
	ActionRetry ErrorAction = iota
	// ActionQuota indicates the provider's quota is exhausted and the
	// caller should back off for the advertised interval.
	ActionQuota
	// ActionFail indicates the request should fail immediately.
	ActionFail
)

// String returns a human-readable string for the error action.
func (a ErrorAction) String() string {
	switch a {
	case ActionRetry:
		return "retry"
	case ActionQuota:
		return "quota"
	case ActionFail:
		return "fail"
	default:
		return "unknown"
	}
}

// APIError wraps a provider error with status code context.
type APIError struct {
	Err        error
	StatusCode int
	Provider   Provider
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return e.Err.Error() + " (status: " + strconv.Itoa(e.StatusCode) + ")"
	}
	return e.Err.Error()
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// ClassifyError determines the appropriate action based on the error:
//   - Quota exhaustion and 429 → ActionQuota (surface retry interval)
//   - Transient errors (5xx, network, timeout) → ActionRetry
//   - Permanent errors (400, 401, 403, 404, 422) → ActionFail
func ClassifyError(err error) ErrorAction {
	if err == nil {
		return ActionFail
	}

	if errors.Is(err, context.Canceled) {
		return ActionFail
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ActionRetry
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode > 0 {
		return classifyStatusCode(apiErr.StatusCode)
	}

	errStr := strings.ToLower(err.Error())

	if containsAny(errStr, "quota", "daily limit", "monthly limit", "billing",
		"429", "rate limit", "too many requests", "resource_exhausted") {
		return ActionQuota
	}

	if containsAny(errStr, "unavailable", "503", "502", "500", "504",
		"internal server error", "bad gateway", "gateway timeout",
		"overloaded", "capacity", "timeout", "deadline", "connection") {
		return ActionRetry
	}

	if containsAny(errStr, "400", "invalid", "bad request", "malformed") {
		return ActionFail
	}
	if containsAny(errStr, "401", "unauthorized", "unauthenticated", "invalid api key") {
		return ActionFail
	}
	if containsAny(errStr, "403", "forbidden", "permission denied") {
		return ActionFail
	}
	if containsAny(errStr, "404", "not found") {
		return ActionFail
	}
	if containsAny(errStr, "422", "unprocessable") {
		return ActionFail
	}

	// Unknown errors are treated as transient.
	return ActionRetry
}

func classifyStatusCode(statusCode int) ErrorAction {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return ActionQuota
	case statusCode == http.StatusRequestTimeout:
		return ActionRetry
	case statusCode == http.StatusConflict:
		return ActionRetry
	case statusCode >= 500 && statusCode < 600:
		return ActionRetry
	case statusCode >= 400 && statusCode < 500:
		return ActionFail
	default:
		return ActionRetry
	}
}

// IsRetryable returns true if the error is transient and can be retried.
func IsRetryable(err error) bool {
	return ClassifyError(err) == ActionRetry
}

// IsQuota returns true if the error indicates provider quota exhaustion.
func IsQuota(err error) bool {
	return ClassifyError(err) == ActionQuota
}

// IsPermanent returns true if the error should not be retried.
func IsPermanent(err error) bool {
	return ClassifyError(err) == ActionFail
}

// ParseRetryAfter parses retry interval headers. Supports retry-after-ms,
// retry-after (seconds or HTTP-date), and Groq's token reset header.
// Returns 0 if no usable header is present.
func ParseRetryAfter(headers http.Header) time.Duration {
	if msStr := headers.Get("retry-after-ms"); msStr != "" {
		if ms, err := strconv.Atoi(msStr); err == nil && ms > 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}

	if secStr := headers.Get("retry-after"); secStr != "" {
		if sec, err := strconv.Atoi(secStr); err == nil && sec > 0 {
			return time.Duration(sec) * time.Second
		}
		if t, err := http.ParseTime(secStr); err == nil {
			return time.Until(t)
		}
	}

	if resetStr := headers.Get("x-ratelimit-reset-tokens"); resetStr != "" {
		if d, err := time.ParseDuration(resetStr); err == nil {
			return d
		}
	}

	return 0
}

// WrapQuota converts quota-class errors into domain QuotaExceededError so
// callers can surface a retry interval. Other errors pass through.
func WrapQuota(err error, provider Provider) error {
	if err == nil || !IsQuota(err) {
		return err
	}

	retryAfter := time.Minute
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
		retryAfter = apiErr.RetryAfter
	}

	return &domerrors.QuotaExceededError{
		Provider:   provider.String(),
		RetryAfter: retryAfter,
		Err:        err,
	}
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
