package journal

import (
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAppendAndList(t *testing.T) {
	s := newTestStore(t)

	entries := []Entry{
		{SessionToken: "f1", Samples: "1,2", Kind: "record", Description: "add peak"},
		{SessionToken: "f1", Samples: "1,2", Kind: "undo", Description: "add peak"},
		{SessionToken: "f2", Samples: "1", Kind: "record", Description: "edit peak"},
	}
	for _, e := range entries {
		if err := s.Append(e); err != nil {
			t.Fatalf("Append(%+v): %v", e, err)
		}
	}

	got, err := s.List(10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("List returned %d entries, want 3", len(got))
	}
	// Newest first.
	if got[0].SessionToken != "f2" || got[2].Description != "add peak" {
		t.Errorf("List order wrong: %+v", got)
	}
	if got[0].RecordedAt.IsZero() {
		t.Error("RecordedAt not defaulted on append")
	}
}

func TestListBySession(t *testing.T) {
	s := newTestStore(t)

	for _, tok := range []string{"f1", "f2", "f1"} {
		if err := s.Append(Entry{SessionToken: tok, Samples: "1", Kind: "record", Description: "x"}); err != nil {
			t.Fatal(err)
		}
	}

	got, err := s.ListBySession("f1", 10)
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("ListBySession returned %d, want 2", len(got))
	}
	for _, e := range got {
		if e.SessionToken != "f1" {
			t.Errorf("entry for wrong session: %+v", e)
		}
	}
}

func TestTimestampRoundTrip(t *testing.T) {
	s := newTestStore(t)

	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	if err := s.Append(Entry{SessionToken: "f1", Samples: "1", Kind: "redo", Description: "x", RecordedAt: at}); err != nil {
		t.Fatal(err)
	}

	got, err := s.List(1)
	if err != nil {
		t.Fatal(err)
	}
	if !got[0].RecordedAt.Equal(at) {
		t.Errorf("RecordedAt = %v, want %v", got[0].RecordedAt, at)
	}
}

func TestCount(t *testing.T) {
	s := newTestStore(t)

	n, err := s.Count()
	if err != nil || n != 0 {
		t.Fatalf("Count = %d, %v; want 0", n, err)
	}

	if err := s.Append(Entry{SessionToken: "f1", Samples: "1", Kind: "record", Description: "x"}); err != nil {
		t.Fatal(err)
	}
	n, err = s.Count()
	if err != nil || n != 1 {
		t.Errorf("Count = %d, %v; want 1", n, err)
	}
}

func TestReopenPreservesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "journal.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Append(Entry{SessionToken: "f1", Samples: "1", Kind: "record", Description: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s.Close() }()

	n, err := s.Count()
	if err != nil || n != 1 {
		t.Errorf("Count after reopen = %d, %v; want 1", n, err)
	}
}
