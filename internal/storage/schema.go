package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
// Note: WAL mode is configured in db.go.
func InitSchema(db *sql.DB) error {
	if err := createAttendanceTable(db); err != nil {
		return err
	}
	return createTimetableTable(db)
}

func createAttendanceTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS attendance (
		roll_number TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		classes_attended INTEGER NOT NULL,
		classes_held INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create attendance table: %w", err)
	}
	return nil
}

func createTimetableTable(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS timetable (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		year INTEGER NOT NULL CHECK(year BETWEEN 1 AND 4),
		branch TEXT NOT NULL,
		day TEXT NOT NULL,
		slot TEXT NOT NULL,
		subject TEXT NOT NULL,
		room TEXT,
		UNIQUE(year, branch, day, slot)
	);
	CREATE INDEX IF NOT EXISTS idx_timetable_year_branch ON timetable(year, branch);
	`

	if _, err := db.ExecContext(context.Background(), query); err != nil {
		return fmt.Errorf("failed to create timetable table: %w", err)
	}
	return nil
}
