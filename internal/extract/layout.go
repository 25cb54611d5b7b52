// Package extract converts uploaded documents into linearized plain text.
// PDF pages carry positioned text fragments with no layout metadata beyond
// baseline coordinates; this package reconstructs top-to-bottom,
// left-to-right reading order from those coordinates.
package extract

import (
	"sort"
	"strings"
)

// Fragment is one positioned run of text on a page, as decoded from the
// source document. X and Y are baseline coordinates in layout units; Y
// grows upward, so larger Y means closer to the top of the page.
type Fragment struct {
	S string
	X float64
	Y float64
}

// DefaultLineTolerance is the max vertical distance between two fragments
// that still belong to the same line.
const DefaultLineTolerance = 5.0

// LinearizePage reconstructs reading order for one page of fragments.
// Fragments are sorted by descending Y; fragments whose Y is within
// tolerance of the current line's first fragment share that line and are
// ordered by ascending X. Fragments within a line are joined with single
// spaces and each line ends with a newline.
//
// A page with no fragments produces an empty string.
func LinearizePage(frags []Fragment, tolerance float64) string {
	if len(frags) == 0 {
		return ""
	}
	if tolerance <= 0 {
		tolerance = DefaultLineTolerance
	}

	sorted := make([]Fragment, len(frags))
	copy(sorted, frags)
	// Stable keeps input order for exact coordinate ties after the X
	// tie-break, which makes output deterministic for any fragment set.
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y != sorted[j].Y {
			return sorted[i].Y > sorted[j].Y
		}
		return sorted[i].X < sorted[j].X
	})

	var sb strings.Builder
	line := make([]Fragment, 0, 8)
	lineY := sorted[0].Y

	flush := func() {
		sort.SliceStable(line, func(i, j int) bool { return line[i].X < line[j].X })
		for i, f := range line {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(f.S)
		}
		sb.WriteByte('\n')
		line = line[:0]
	}

	for _, f := range sorted {
		if lineY-f.Y > tolerance {
			flush()
			lineY = f.Y
		}
		line = append(line, f)
	}
	flush()

	return sb.String()
}

// LinearizePages linearizes every page and joins page outputs with a blank
// line between pages. Empty pages contribute an empty page string.
func LinearizePages(pages [][]Fragment, tolerance float64) string {
	out := make([]string, len(pages))
	for i, page := range pages {
		out[i] = LinearizePage(page, tolerance)
	}
	return strings.Join(out, "\n")
}
