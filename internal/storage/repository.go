package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	domerrors "github.com/campusbuddy/campusbuddy-go/internal/errors"
)

// GetAttendance returns the attendance row for one roll number.
// Returns ErrNotFound when the roll number has no row.
func (db *DB) GetAttendance(ctx context.Context, rollNumber string) (*AttendanceRecord, error) {
	query := `
		SELECT roll_number, name, classes_attended, classes_held, updated_at
		FROM attendance
		WHERE roll_number = ?
	`
	var rec AttendanceRecord
	err := db.conn.QueryRowContext(ctx, query, strings.TrimSpace(rollNumber)).Scan(
		&rec.RollNumber, &rec.Name, &rec.ClassesAttended, &rec.ClassesHeld, &rec.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("attendance for %q: %w", rollNumber, domerrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance: %w", err)
	}
	return &rec, nil
}

// SaveAttendance inserts or updates a student's attendance row.
func (db *DB) SaveAttendance(ctx context.Context, rec *AttendanceRecord) error {
	query := `
		INSERT INTO attendance (roll_number, name, classes_attended, classes_held, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(roll_number) DO UPDATE SET
			name = excluded.name,
			classes_attended = excluded.classes_attended,
			classes_held = excluded.classes_held,
			updated_at = excluded.updated_at
	`
	_, err := db.conn.ExecContext(ctx, query,
		rec.RollNumber, rec.Name, rec.ClassesAttended, rec.ClassesHeld, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to save attendance: %w", err)
	}
	return nil
}

// GetTimetable returns the week's entries for one year/branch combination,
// ordered for display. Returns ErrNotFound when the combination has no rows.
func (db *DB) GetTimetable(ctx context.Context, year int, branch string) ([]TimetableEntry, error) {
	query := `
		SELECT year, branch, day, slot, subject, COALESCE(room, '')
		FROM timetable
		WHERE year = ? AND branch = ? COLLATE NOCASE
		ORDER BY
			CASE day
				WHEN 'Monday' THEN 1
				WHEN 'Tuesday' THEN 2
				WHEN 'Wednesday' THEN 3
				WHEN 'Thursday' THEN 4
				WHEN 'Friday' THEN 5
				WHEN 'Saturday' THEN 6
				ELSE 7
			END,
			slot
	`
	rows, err := db.conn.QueryContext(ctx, query, year, strings.TrimSpace(branch))
	if err != nil {
		return nil, fmt.Errorf("failed to query timetable: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var entries []TimetableEntry
	for rows.Next() {
		var e TimetableEntry
		if err := rows.Scan(&e.Year, &e.Branch, &e.Day, &e.Slot, &e.Subject, &e.Room); err != nil {
			return nil, fmt.Errorf("failed to scan timetable row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("timetable rows: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("timetable for year %d %s: %w", year, branch, domerrors.ErrNotFound)
	}
	return entries, nil
}

// SaveTimetableEntry inserts or updates one class slot.
func (db *DB) SaveTimetableEntry(ctx context.Context, e *TimetableEntry) error {
	query := `
		INSERT INTO timetable (year, branch, day, slot, subject, room)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(year, branch, day, slot) DO UPDATE SET
			subject = excluded.subject,
			room = excluded.room
	`
	_, err := db.conn.ExecContext(ctx, query, e.Year, e.Branch, e.Day, e.Slot, e.Subject, e.Room)
	if err != nil {
		return fmt.Errorf("failed to save timetable entry: %w", err)
	}
	return nil
}

// ListTimetableOptions returns the distinct year/branch combinations that
// have rows, used to suggest alternatives on a miss.
func (db *DB) ListTimetableOptions(ctx context.Context) ([]YearBranch, error) {
	query := `SELECT DISTINCT year, branch FROM timetable ORDER BY year, branch`
	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query timetable options: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var options []YearBranch
	for rows.Next() {
		var yb YearBranch
		if err := rows.Scan(&yb.Year, &yb.Branch); err != nil {
			return nil, fmt.Errorf("failed to scan timetable option: %w", err)
		}
		options = append(options, yb)
	}
	return options, rows.Err()
}

// CountAttendance returns the number of attendance rows, used by the
// readiness probe.
func (db *DB) CountAttendance(ctx context.Context) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM attendance`).Scan(&n)
	return n, err
}

// CountTimetable returns the number of timetable rows.
func (db *DB) CountTimetable(ctx context.Context) (int, error) {
	var n int
	err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM timetable`).Scan(&n)
	return n, err
}
