// Package attendance answers attendance lookups against the campus
// attendance table and renders a short report suitable for chat.
package attendance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domerrors "github.com/campusbuddy/campusbuddy-go/internal/errors"
	"github.com/campusbuddy/campusbuddy-go/internal/logger"
	"github.com/campusbuddy/campusbuddy-go/internal/storage"
)

// MinimumPercentage is the attendance floor below which a shortage
// warning is included in the report.
const MinimumPercentage = 75.0

// Handler looks up attendance records and formats reports.
type Handler struct {
	db     *storage.DB
	logger *logger.Logger
}

// New creates an attendance handler.
func New(db *storage.DB, log *logger.Logger) *Handler {
	return &Handler{
		db:     db,
		logger: log.WithModule("attendance"),
	}
}

// Lookup returns a formatted attendance report for one roll number.
func (h *Handler) Lookup(ctx context.Context, rollNumber string) (string, error) {
	rollNumber = strings.TrimSpace(rollNumber)
	if rollNumber == "" {
		return "", &domerrors.ValidationError{Field: "roll_number", Message: "roll number is required"}
	}

	rec, err := h.db.GetAttendance(ctx, rollNumber)
	if errors.Is(err, domerrors.ErrNotFound) {
		h.logger.WithField("roll_number", rollNumber).Info("attendance record not found")
		return fmt.Sprintf(
			"No attendance record found for roll number %s. Please check the roll number and try again.",
			rollNumber,
		), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up attendance: %w", err)
	}

	return formatReport(rec), nil
}

func formatReport(rec *storage.AttendanceRecord) string {
	pct := rec.Percentage()

	var b strings.Builder
	fmt.Fprintf(&b, "Attendance for %s (%s):\n", rec.Name, rec.RollNumber)
	fmt.Fprintf(&b, "Classes attended: %d of %d\n", rec.ClassesAttended, rec.ClassesHeld)
	fmt.Fprintf(&b, "Percentage: %.1f%%", pct)

	if pct < MinimumPercentage {
		needed := classesNeeded(rec.ClassesAttended, rec.ClassesHeld)
		fmt.Fprintf(&b, "\nWarning: attendance is below the %.0f%% requirement.", MinimumPercentage)
		if needed > 0 {
			fmt.Fprintf(&b, " Attend the next %d classes to get back above the line.", needed)
		}
	}
	return b.String()
}

// classesNeeded returns how many consecutive future classes must be
// attended for the percentage to reach MinimumPercentage.
func classesNeeded(attended, held int) int {
	n := 0
	for float64(attended+n)/float64(held+n)*100 < MinimumPercentage {
		n++
		if n > 1000 {
			return 0
		}
	}
	return n
}
