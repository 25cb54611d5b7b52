// Package syllabus locates a requested subject's unit content inside
// linearized curriculum text. Subject and unit searches are cascades of
// patterns tried in fixed order; the first successful pattern wins and no
// pattern is retried after a match.
package syllabus

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/campusbuddy/campusbuddy-go/internal/config"
	domerrors "github.com/campusbuddy/campusbuddy-go/internal/errors"
	"github.com/campusbuddy/campusbuddy-go/internal/logger"
)

var (
	// courseTitleRe marks the start of a new subject's section.
	courseTitleRe = regexp.MustCompile(`(?i)Course\s+Title\s*[:\-]`)

	// sectionEndRe are the terminal labels that close a unit's content.
	sectionEndRe = regexp.MustCompile(`(?i)\b(?:Course\s+Outcomes|Text\s*Books?|References)\b`)

	// anyUnitRe matches any following unit label, labeled or hyphenated,
	// Arabic or Roman.
	anyUnitRe = regexp.MustCompile(`(?i)\bUnit\s*[-–:]?\s*(?:\d+|[IVX]+)\b`)

	// nonSpaceRunRe collapses whitespace runs during normalization.
	nonSpaceRunRe = regexp.MustCompile(`\s+`)

	// punctRe strips punctuation during the normalized line scan.
	punctRe = regexp.MustCompile(`[^\pL\pN\s]+`)
)

// Locator finds a curriculum unit's free-text span inside linearized text.
type Locator struct {
	unitWindow int
	resultCap  int
	logger     *logger.Logger
}

// NewLocator creates a Locator with the configured window and result cap.
func NewLocator(limits config.Limits, log *logger.Logger) *Locator {
	unitWindow := limits.UnitWindow
	if unitWindow <= 0 {
		unitWindow = config.DefaultUnitWindow
	}
	resultCap := limits.UnitResultCap
	if resultCap <= 0 {
		resultCap = config.DefaultUnitResultCap
	}
	return &Locator{
		unitWindow: unitWindow,
		resultCap:  resultCap,
		logger:     log.WithModule("syllabus"),
	}
}

// UnitContent is one located curriculum unit.
type UnitContent struct {
	Subject string
	Unit    string
	Content string   // cleaned span, capped
	Topics  []string // non-empty when the content splits into clauses
}

// Locate returns the content of one unit of one subject, or a typed
// not-found error that distinguishes "subject absent" from "unit absent
// within a found subject".
func (l *Locator) Locate(text, subject, unit string) (*UnitContent, error) {
	anchor, ok := l.findSubject(text, subject)
	if !ok {
		l.logger.WithField("subject", subject).Debug("Subject not found")
		return nil, &domerrors.SubjectNotFoundError{Subject: subject}
	}

	window := l.subjectWindow(text, anchor)
	span, ok := l.findUnit(window, unit)
	if !ok {
		l.logger.WithField("subject", subject).
			WithField("unit", unit).
			Debug("Unit not found within subject section")
		return nil, &domerrors.UnitNotFoundError{Subject: subject, Unit: unit}
	}

	content, topics := l.clean(span)
	return &UnitContent{
		Subject: subject,
		Unit:    unit,
		Content: content,
		Topics:  topics,
	}, nil
}

// findSubject returns the subject anchor position. Patterns, in order:
//  1. exact phrase anchored after a "Course Title" label
//  2. the raw subject string anywhere in the text
//  3. the subject with internal whitespace as a flexible separator
//  4. fallback: normalized line-by-line containment scan
func (l *Locator) findSubject(text, subject string) (int, bool) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return 0, false
	}

	labeled := regexp.MustCompile(`(?i)Course\s+Title\s*[:\-]?\s*` + regexp.QuoteMeta(subject))
	if loc := labeled.FindStringIndex(text); loc != nil {
		return loc[0], true
	}

	if idx := strings.Index(text, subject); idx >= 0 {
		return idx, true
	}

	fields := strings.Fields(subject)
	if len(fields) > 1 {
		quoted := make([]string, len(fields))
		for i, f := range fields {
			quoted[i] = regexp.QuoteMeta(f)
		}
		flexible := regexp.MustCompile(`(?i)` + strings.Join(quoted, `\s+`))
		if loc := flexible.FindStringIndex(text); loc != nil {
			return loc[0], true
		}
	}

	normSubject := normalize(subject)
	if normSubject == "" {
		return 0, false
	}
	offset := 0
	for _, line := range strings.SplitAfter(text, "\n") {
		if strings.Contains(normalize(line), normSubject) {
			return offset, true
		}
		offset += len(line)
	}
	return 0, false
}

// subjectWindow bounds the searchable span for unit content: it ends at
// the next course-title label after the anchor, or at the fixed maximum
// window when no boundary appears within it. This keeps a unit search from
// leaking into an unrelated subject's section.
func (l *Locator) subjectWindow(text string, anchor int) string {
	end := anchor + l.unitWindow
	if end > len(text) {
		end = len(text)
	}
	// Skip past the anchor line itself so the subject's own course-title
	// label is not mistaken for the next section boundary.
	searchFrom := anchor + 1
	if searchFrom > end {
		searchFrom = end
	}
	if loc := courseTitleRe.FindStringIndex(text[searchFrom:end]); loc != nil {
		end = searchFrom + loc[0]
	}
	return text[anchor:end]
}

// findUnit returns the raw unit span inside the subject window. Patterns,
// in order: labeled "Unit <n>:", unlabeled/hyphenated "UNIT <n>", and the
// Roman-numeral form "Unit <roman>" (units 1-8).
func (l *Locator) findUnit(window, unit string) (string, bool) {
	n, haveNum := parseUnitNumber(unit)
	ident := regexp.QuoteMeta(strings.TrimSpace(unit))
	if haveNum {
		ident = strconv.Itoa(n)
	}

	patterns := []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bUnit\s*` + ident + `\s*:`),
		regexp.MustCompile(`(?i)\bUnit\s*[-–]?\s*` + ident + `\b`),
	}
	if haveNum {
		if roman := toRoman(n); roman != "" {
			patterns = append(patterns, regexp.MustCompile(`(?i)\bUnit\s*[-–:]?\s*`+roman+`\b`))
		}
	}

	for _, re := range patterns {
		loc := re.FindStringIndex(window)
		if loc == nil {
			continue
		}
		start := loc[1]
		rest := window[start:]
		end := len(rest)
		if next := anyUnitRe.FindStringIndex(rest); next != nil && next[0] < end {
			end = next[0]
		}
		if term := sectionEndRe.FindStringIndex(rest); term != nil && term[0] < end {
			end = term[0]
		}
		span := strings.TrimSpace(rest[:end])
		if span == "" {
			continue
		}
		return span, true
	}
	return "", false
}

// normalize lowercases, strips punctuation and collapses whitespace for
// the fallback line scan.
func normalize(s string) string {
	s = strings.ToLower(s)
	s = punctRe.ReplaceAllString(s, " ")
	s = nonSpaceRunRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}
