package extract

import (
	"math/rand"
	"strconv"
	"strings"
	"testing"
)

func TestLinearizePage_ReadingOrder(t *testing.T) {
	// Two lines: a header at the top, body text below, fragments shuffled.
	frags := []Fragment{
		{S: "world", X: 120, Y: 700},
		{S: "Course", X: 50, Y: 750},
		{S: "hello", X: 50, Y: 700},
		{S: "Title", X: 110, Y: 750},
	}

	got := LinearizePage(frags, DefaultLineTolerance)
	want := "Course Title\nhello world\n"
	if got != want {
		t.Errorf("LinearizePage = %q, want %q", got, want)
	}
}

func TestLinearizePage_ToleranceGroupsJaggedBaselines(t *testing.T) {
	// Baselines differ by <= 5 units: same line.
	frags := []Fragment{
		{S: "b", X: 60, Y: 498},
		{S: "a", X: 40, Y: 500},
		{S: "c", X: 90, Y: 496},
	}
	if got := LinearizePage(frags, 5); got != "a b c\n" {
		t.Errorf("got %q, want \"a b c\\n\"", got)
	}

	// A gap beyond tolerance starts a new line.
	frags = append(frags, Fragment{S: "next", X: 40, Y: 480})
	if got := LinearizePage(frags, 5); got != "a b c\nnext\n" {
		t.Errorf("got %q, want \"a b c\\nnext\\n\"", got)
	}
}

func TestLinearizePage_IdenticalYTieBreaksByX(t *testing.T) {
	frags := []Fragment{
		{S: "third", X: 300, Y: 100},
		{S: "first", X: 10, Y: 100},
		{S: "second", X: 150, Y: 100},
	}
	if got := LinearizePage(frags, 5); got != "first second third\n" {
		t.Errorf("got %q", got)
	}
}

func TestLinearizePage_Empty(t *testing.T) {
	if got := LinearizePage(nil, 5); got != "" {
		t.Errorf("empty page should produce empty string, got %q", got)
	}
}

// Output line order is monotonically non-increasing in Y and, within a
// line, non-decreasing in X, for arbitrary fragment sets.
func TestLinearizePage_OrderingProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.Intn(40)
		frags := make([]Fragment, n)
		for i := range frags {
			frags[i] = Fragment{
				S: "f" + strconv.Itoa(i) + "y" + strconv.Itoa(rng.Intn(100)),
				X: float64(rng.Intn(600)),
				Y: float64(rng.Intn(100)) * 20, // spaced beyond tolerance
			}
		}

		byToken := make(map[string]Fragment, n)
		for _, f := range frags {
			byToken[f.S] = f
		}

		out := LinearizePage(frags, 5)
		lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
		prevLineY := -1.0
		for li, line := range lines {
			tokens := strings.Fields(line)
			prevX := -1.0
			var lineY float64
			for ti, tok := range tokens {
				f, ok := byToken[tok]
				if !ok {
					t.Fatalf("trial %d: unknown token %q", trial, tok)
				}
				if ti == 0 {
					lineY = f.Y
				}
				if f.X < prevX {
					t.Fatalf("trial %d line %d: X order violated", trial, li)
				}
				prevX = f.X
			}
			if li > 0 && lineY > prevLineY {
				t.Fatalf("trial %d: line %d Y=%v above previous line Y=%v", trial, li, lineY, prevLineY)
			}
			prevLineY = lineY
		}
	}
}

func TestLinearizePages_BlankLineBetweenPages(t *testing.T) {
	pages := [][]Fragment{
		{{S: "page one", X: 0, Y: 100}},
		{{S: "page two", X: 0, Y: 100}},
	}
	got := LinearizePages(pages, 5)
	want := "page one\n\npage two\n"
	if got != want {
		t.Errorf("LinearizePages = %q, want %q", got, want)
	}
}

func TestLinearizePages_EmptyPageIsNotAnError(t *testing.T) {
	pages := [][]Fragment{
		{{S: "text", X: 0, Y: 100}},
		nil,
		{{S: "more", X: 0, Y: 100}},
	}
	got := LinearizePages(pages, 5)
	if !strings.Contains(got, "text") || !strings.Contains(got, "more") {
		t.Errorf("non-empty pages must survive empty neighbors: %q", got)
	}
}
