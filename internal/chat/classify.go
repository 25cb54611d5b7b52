package chat

import "strings"

// ReformatClassifier detects whether the latest user text is asking to
// restyle previously returned data (e.g., "show that as a table").
// Attendance and timetable results are returned verbatim on a first-time
// request; when a reformat keyword is present the turn goes through
// model synthesis instead so prior data can be restyled.
//
// The keyword scan is intentionally coarse and can misfire on unrelated
// messages containing a keyword; the list is configuration, not code.
type ReformatClassifier struct {
	keywords []string
}

// NewReformatClassifier creates a classifier over the given keyword
// list. Keywords are matched case-insensitively as substrings.
func NewReformatClassifier(keywords []string) *ReformatClassifier {
	lowered := make([]string, 0, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			lowered = append(lowered, k)
		}
	}
	return &ReformatClassifier{keywords: lowered}
}

// IsReformatRequest reports whether the text contains any keyword.
func (c *ReformatClassifier) IsReformatRequest(text string) bool {
	lowered := strings.ToLower(text)
	for _, k := range c.keywords {
		if strings.Contains(lowered, k) {
			return true
		}
	}
	return false
}
