package syllabus

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	// hoursRe matches numeral-plus-"Hours" annotations in unit content.
	hoursRe = regexp.MustCompile(`(?i)\b(\d+)\s*Hours\b`)

	// clauseSplitRe separates enumerable topics.
	clauseSplitRe = regexp.MustCompile(`[,;]`)
)

// clean post-processes a raw unit span: collapses whitespace, bolds
// numeral-plus-Hours occurrences, strips leading punctuation per line and
// caps the result. When the cleaned content splits into more than one
// comma/semicolon-delimited clause it is also returned as a topic list.
func (l *Locator) clean(span string) (string, []string) {
	lines := strings.Split(span, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = nonSpaceRunRe.ReplaceAllString(line, " ")
		line = strings.TrimLeft(line, " .,:;-–|")
		line = strings.TrimSpace(line)
		if line != "" {
			cleaned = append(cleaned, line)
		}
	}
	content := strings.Join(cleaned, " ")
	content = hoursRe.ReplaceAllString(content, "**$1 Hours**")

	if len(content) > l.resultCap {
		content = content[:l.resultCap]
	}

	var topics []string
	clauses := clauseSplitRe.Split(content, -1)
	if len(clauses) > 1 {
		for _, c := range clauses {
			if c = strings.TrimSpace(c); c != "" {
				topics = append(topics, c)
			}
		}
		if len(topics) < 2 {
			topics = nil
		}
	}
	return content, topics
}

// Format renders the unit content for the user: an enumerated topic list
// when the content splits into multiple clauses, a single block otherwise.
func (c *UnitContent) Format() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s - Unit %s:\n", c.Subject, c.Unit)
	if len(c.Topics) > 1 {
		for i, topic := range c.Topics {
			fmt.Fprintf(&sb, "%d. %s\n", i+1, topic)
		}
	} else {
		sb.WriteString(c.Content)
		sb.WriteByte('\n')
	}
	return sb.String()
}
