package attendance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domerrors "github.com/campusbuddy/campusbuddy-go/internal/errors"
	"github.com/campusbuddy/campusbuddy-go/internal/logger"
	"github.com/campusbuddy/campusbuddy-go/internal/storage"
)

func newTestHandler(t *testing.T) (*Handler, *storage.DB) {
	t.Helper()

	db, err := storage.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	log := logger.New("error")
	return New(db, log), db
}

func TestLookupFormatsReport(t *testing.T) {
	h, db := newTestHandler(t)
	ctx := context.Background()

	require.NoError(t, db.SaveAttendance(ctx, &storage.AttendanceRecord{
		RollNumber:      "21CS045",
		Name:            "Priya Sharma",
		ClassesAttended: 42,
		ClassesHeld:     50,
	}))

	report, err := h.Lookup(ctx, "21CS045")
	require.NoError(t, err)
	assert.Contains(t, report, "Priya Sharma")
	assert.Contains(t, report, "21CS045")
	assert.Contains(t, report, "42 of 50")
	assert.Contains(t, report, "84.0%")
	assert.NotContains(t, report, "Warning")
}

func TestLookupShortageWarning(t *testing.T) {
	h, db := newTestHandler(t)
	ctx := context.Background()

	require.NoError(t, db.SaveAttendance(ctx, &storage.AttendanceRecord{
		RollNumber:      "21CS046",
		Name:            "Rahul Verma",
		ClassesAttended: 30,
		ClassesHeld:     50,
	}))

	report, err := h.Lookup(ctx, "21CS046")
	require.NoError(t, err)
	assert.Contains(t, report, "60.0%")
	assert.Contains(t, report, "Warning")
	assert.Contains(t, report, "75%")
}

func TestLookupTrimsRollNumber(t *testing.T) {
	h, db := newTestHandler(t)
	ctx := context.Background()

	require.NoError(t, db.SaveAttendance(ctx, &storage.AttendanceRecord{
		RollNumber:      "21EC001",
		Name:            "Anita Rao",
		ClassesAttended: 48,
		ClassesHeld:     50,
	}))

	report, err := h.Lookup(ctx, "  21EC001  ")
	require.NoError(t, err)
	assert.Contains(t, report, "Anita Rao")
}

func TestLookupNotFoundReturnsMessage(t *testing.T) {
	h, _ := newTestHandler(t)

	report, err := h.Lookup(context.Background(), "99XX999")
	require.NoError(t, err)
	assert.Contains(t, report, "No attendance record found")
	assert.Contains(t, report, "99XX999")
}

func TestLookupEmptyRollNumber(t *testing.T) {
	h, _ := newTestHandler(t)

	_, err := h.Lookup(context.Background(), "   ")
	require.Error(t, err)

	var verr *domerrors.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestClassesNeeded(t *testing.T) {
	tests := []struct {
		name     string
		attended int
		held     int
		want     int
	}{
		{"already above", 45, 50, 0},
		{"exactly at line", 75, 100, 0},
		{"just below", 74, 100, 4},
		{"far below", 30, 50, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classesNeeded(tt.attended, tt.held))
		})
	}
}
