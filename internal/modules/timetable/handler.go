// Package timetable answers weekly schedule lookups for a year and
// branch combination and renders the week grouped by day.
package timetable

import (
	"context"
	"errors"
	"fmt"
	"strings"

	domerrors "github.com/campusbuddy/campusbuddy-go/internal/errors"
	"github.com/campusbuddy/campusbuddy-go/internal/logger"
	"github.com/campusbuddy/campusbuddy-go/internal/storage"
)

// Handler looks up timetables and formats weekly schedules.
type Handler struct {
	db     *storage.DB
	logger *logger.Logger
}

// New creates a timetable handler.
func New(db *storage.DB, log *logger.Logger) *Handler {
	return &Handler{
		db:     db,
		logger: log.WithModule("timetable"),
	}
}

// Lookup returns the formatted weekly schedule for one year and branch.
// On a miss it returns a message listing the combinations that do exist.
func (h *Handler) Lookup(ctx context.Context, year int, branch string) (string, error) {
	branch = strings.TrimSpace(branch)
	if year < 1 || year > 4 {
		return "", &domerrors.ValidationError{Field: "year", Message: "year must be between 1 and 4"}
	}
	if branch == "" {
		return "", &domerrors.ValidationError{Field: "branch", Message: "branch is required"}
	}

	entries, err := h.db.GetTimetable(ctx, year, branch)
	if errors.Is(err, domerrors.ErrNotFound) {
		h.logger.WithFields(map[string]any{"year": year, "branch": branch}).
			Info("timetable not found")
		return h.missMessage(ctx, year, branch), nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to look up timetable: %w", err)
	}

	return formatWeek(year, branch, entries), nil
}

func (h *Handler) missMessage(ctx context.Context, year int, branch string) string {
	msg := fmt.Sprintf("No timetable found for year %d %s.", year, strings.ToUpper(branch))

	options, err := h.db.ListTimetableOptions(ctx)
	if err != nil || len(options) == 0 {
		return msg
	}

	labels := make([]string, 0, len(options))
	for _, o := range options {
		labels = append(labels, fmt.Sprintf("year %d %s", o.Year, o.Branch))
	}
	return msg + " Available timetables: " + strings.Join(labels, ", ") + "."
}

func formatWeek(year int, branch string, entries []storage.TimetableEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Timetable for year %d %s:\n", year, strings.ToUpper(branch))

	currentDay := ""
	for _, e := range entries {
		if e.Day != currentDay {
			currentDay = e.Day
			fmt.Fprintf(&b, "\n%s:\n", currentDay)
		}
		fmt.Fprintf(&b, "  %s  %s", e.Slot, e.Subject)
		if e.Room != "" {
			fmt.Fprintf(&b, " (%s)", e.Room)
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n")
}
