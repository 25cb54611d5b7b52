package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/campusbuddy/campusbuddy-go/internal/errors"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorAction
	}{
		{"nil", nil, ActionFail},
		{"canceled", context.Canceled, ActionFail},
		{"deadline", context.DeadlineExceeded, ActionRetry},
		{"quota message", errors.New("quota exceeded for project"), ActionQuota},
		{"rate limit message", errors.New("rate limit reached, too many requests"), ActionQuota},
		{"server error", errors.New("503 service unavailable"), ActionRetry},
		{"connection reset", errors.New("connection refused"), ActionRetry},
		{"bad request", errors.New("400 bad request"), ActionFail},
		{"unauthorized", errors.New("invalid api key"), ActionFail},
		{"unknown", errors.New("something odd happened"), ActionRetry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyError(tt.err))
		})
	}
}

func TestClassifyErrorStatusCode(t *testing.T) {
	tests := []struct {
		code int
		want ErrorAction
	}{
		{http.StatusTooManyRequests, ActionQuota},
		{http.StatusInternalServerError, ActionRetry},
		{http.StatusBadGateway, ActionRetry},
		{http.StatusRequestTimeout, ActionRetry},
		{http.StatusBadRequest, ActionFail},
		{http.StatusUnauthorized, ActionFail},
		{http.StatusNotFound, ActionFail},
	}
	for _, tt := range tests {
		err := &APIError{Err: errors.New("api error"), StatusCode: tt.code}
		assert.Equal(t, tt.want, ClassifyError(err), "status %d", tt.code)
	}
}

func TestParseRetryAfter(t *testing.T) {
	h := http.Header{}
	assert.Equal(t, time.Duration(0), ParseRetryAfter(h))

	h.Set("retry-after", "30")
	assert.Equal(t, 30*time.Second, ParseRetryAfter(h))

	h.Set("retry-after-ms", "1500")
	assert.Equal(t, 1500*time.Millisecond, ParseRetryAfter(h))

	h = http.Header{}
	h.Set("x-ratelimit-reset-tokens", "2m30s")
	assert.Equal(t, 2*time.Minute+30*time.Second, ParseRetryAfter(h))
}

func TestWrapQuota(t *testing.T) {
	quotaErr := &APIError{
		Err:        errors.New("too many requests"),
		StatusCode: http.StatusTooManyRequests,
		RetryAfter: 45 * time.Second,
	}

	wrapped := WrapQuota(quotaErr, ProviderGroq)
	var qerr *domerrors.QuotaExceededError
	require.ErrorAs(t, wrapped, &qerr)
	assert.Equal(t, "groq", qerr.Provider)
	assert.Equal(t, 45*time.Second, qerr.RetryAfter)

	// Non-quota errors pass through unchanged.
	plain := errors.New("503 service unavailable")
	assert.Equal(t, plain, WrapQuota(plain, ProviderGroq))
	assert.NoError(t, WrapQuota(nil, ProviderGroq))
}
