package docstore

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	domerrors "github.com/campusbuddy/campusbuddy-go/internal/errors"
	"github.com/campusbuddy/campusbuddy-go/internal/logger"
)

const sampleText = "operating systems manage processes memory files devices and networking resources"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(10, logger.New("error"), nil)
}

func TestPutAndGet_ByIDAndAlias(t *testing.T) {
	s := newTestStore(t)

	doc, err := s.Put("doc-1", "notes.pdf", sampleText)
	if err != nil {
		t.Fatalf("Put error = %v", err)
	}
	if doc.WordCount != 10 {
		t.Errorf("WordCount = %d, want 10", doc.WordCount)
	}
	if doc.CharCount != len(sampleText) {
		t.Errorf("CharCount = %d, want %d", doc.CharCount, len(sampleText))
	}

	byID, ok := s.Get("doc-1")
	if !ok || byID.Text != sampleText {
		t.Error("Get by id failed")
	}
	byName, ok := s.Get("notes.pdf")
	if !ok || byName.Text != sampleText {
		t.Error("Get by display name failed")
	}
	if _, ok := s.Get("unrelated"); ok {
		t.Error("Get with unknown key should miss")
	}
}

func TestPut_ReplaceIsTotal(t *testing.T) {
	s := newTestStore(t)

	first := "alpha beta gamma delta epsilon zeta eta theta iota kappa lambda"
	second := "one two three four five six seven eight nine ten eleven twelve"

	if _, err := s.Put("doc-1", "notes.pdf", first); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put("doc-1", "notes.pdf", second); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{"doc-1", "notes.pdf"} {
		doc, ok := s.Get(key)
		if !ok {
			t.Fatalf("Get(%q) missed after replacement", key)
		}
		if doc.Text != second {
			t.Errorf("Get(%q) returned stale text %q", key, doc.Text)
		}
		if strings.Contains(doc.Text, "alpha") {
			t.Errorf("replaced document leaks old content via %q", key)
		}
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestPut_RenameDropsOldAlias(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Put("doc-1", "old.pdf", sampleText); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put("doc-1", "new.pdf", sampleText); err != nil {
		t.Fatal(err)
	}

	if _, ok := s.Get("old.pdf"); ok {
		t.Error("old alias should be removed on replacement with new name")
	}
	if _, ok := s.Get("new.pdf"); !ok {
		t.Error("new alias should resolve")
	}
	names := s.ListNames()
	if len(names) != 1 || names[0] != "new.pdf" {
		t.Errorf("ListNames = %v, want [new.pdf]", names)
	}
}

func TestPut_LowContentRejected(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Put("doc-1", "scan.pdf", "only nine words here not quite enough to pass")
	if !errors.Is(err, domerrors.ErrLowContent) {
		t.Fatalf("err = %v, want ErrLowContent", err)
	}
	if _, ok := s.Get("doc-1"); ok {
		t.Error("rejected document must not be stored")
	}
	if _, ok := s.Get("scan.pdf"); ok {
		t.Error("rejected document must not create an alias")
	}
}

func TestPut_WhitespaceOnlyRejected(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Put("doc-1", "empty.pdf", "   \n\t  ")
	if !errors.Is(err, domerrors.ErrLowContent) {
		t.Errorf("err = %v, want ErrLowContent", err)
	}
}

func TestGet_IDWinsOverAlias(t *testing.T) {
	s := newTestStore(t)

	// Document A's id equals document B's display name.
	textA := "a a a a a a a a a a a distinctive sequence for document A"
	textB := "b b b b b b b b b b b distinctive sequence for document B"
	if _, err := s.Put("report.pdf", "somefile.pdf", textA); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Put("doc-b", "report.pdf", textB); err != nil {
		t.Fatal(err)
	}

	doc, ok := s.Get("report.pdf")
	if !ok {
		t.Fatal("Get missed")
	}
	if doc.Text != textA {
		t.Error("id resolution must win over alias resolution")
	}
}

func TestListNames_Sorted(t *testing.T) {
	s := newTestStore(t)
	for _, name := range []string{"zeta.pdf", "alpha.md", "mid.txt"} {
		if _, err := s.Put("id-"+name, name, sampleText); err != nil {
			t.Fatal(err)
		}
	}
	names := s.ListNames()
	want := []string{"alpha.md", "mid.txt", "zeta.pdf"}
	if len(names) != len(want) {
		t.Fatalf("ListNames = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("ListNames[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			id := fmt.Sprintf("doc-%d", n%4)
			name := fmt.Sprintf("file-%d.pdf", n%4)
			for j := 0; j < 50; j++ {
				_, _ = s.Put(id, name, sampleText)
				if doc, ok := s.Get(id); ok {
					// An observed document is always complete.
					if doc.Text == "" || doc.WordCount == 0 {
						t.Error("observed half-written document")
						return
					}
				}
				s.ListNames()
			}
		}(i)
	}
	wg.Wait()

	if s.Len() != 4 {
		t.Errorf("Len = %d, want 4", s.Len())
	}
}
