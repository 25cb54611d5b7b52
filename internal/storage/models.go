package storage

// AttendanceRecord is one student's cumulative attendance row.
type AttendanceRecord struct {
	RollNumber      string `json:"roll_number"`
	Name            string `json:"name"`
	ClassesAttended int    `json:"classes_attended"`
	ClassesHeld     int    `json:"classes_held"`
	UpdatedAt       int64  `json:"updated_at"`
}

// Percentage returns the attendance percentage, or 0 when no classes
// have been held.
func (r *AttendanceRecord) Percentage() float64 {
	if r.ClassesHeld == 0 {
		return 0
	}
	return float64(r.ClassesAttended) / float64(r.ClassesHeld) * 100
}

// TimetableEntry is one scheduled class slot.
type TimetableEntry struct {
	Year    int    `json:"year"`
	Branch  string `json:"branch"`
	Day     string `json:"day"`
	Slot    string `json:"slot"`
	Subject string `json:"subject"`
	Room    string `json:"room,omitempty"`
}

// YearBranch identifies one timetable grouping, used for suggestions
// when a requested combination has no rows.
type YearBranch struct {
	Year   int    `json:"year"`
	Branch string `json:"branch"`
}
