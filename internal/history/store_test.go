// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package history

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// =============================================================================
// SAVE AND GET TESTS
// =============================================================================

func TestSaveAndGet(t *testing.T) {
	s := openTestStore(t)

	id, err := s.Save(Entry{
		Question: "What is the warranty period?",
		Answer:   "Five years or 60,000 miles.",
		Status:   StatusCompleted,
		KBID:     "kb1",
		KBName:   "Manuals",
	})
	if err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	if id == 0 {
		t.Fatal("Save() returned id 0")
	}

	got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Question != "What is the warranty period?" || got.Status != StatusCompleted {
		t.Errorf("Get() = %+v", got)
	}
	if got.KBName != "Manuals" {
		t.Errorf("KBName = %q, want Manuals", got.KBName)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt must be filled in on save")
	}
}

func TestGet_NotFound(t *testing.T) {
	s := openTestStore(t)
	if _, err := s.Get(12345); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrNotFound", err)
	}
}

// =============================================================================
// LIST AND SEARCH TESTS
// =============================================================================

func TestList_NewestFirst(t *testing.T) {
	s := openTestStore(t)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		_, err := s.Save(Entry{
			Question:  fmt.Sprintf("q%d", i),
			Answer:    "a",
			Status:    StatusCompleted,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Save() error: %v", err)
		}
	}

	got, err := s.List(3)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].Question != "q4" || got[2].Question != "q2" {
		t.Errorf("order = %q, %q, %q", got[0].Question, got[1].Question, got[2].Question)
	}
}

func TestSearch(t *testing.T) {
	s := openTestStore(t)
	entries := []Entry{
		{Question: "engine oil type", Answer: "0W-20 synthetic", Status: StatusCompleted},
		{Question: "tire pressure", Answer: "35 psi front and rear", Status: StatusCompleted},
		{Question: "wiper blades", Answer: "consult the engine bay label", Status: StatusFailed},
	}
	for _, e := range entries {
		if _, err := s.Save(e); err != nil {
			t.Fatalf("Save() error: %v", err)
		}
	}

	// Matches both a question and an answer.
	got, err := s.Search("engine", 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("Search(engine) len = %d, want 2", len(got))
	}

	got, err = s.Search("no such text", 10)
	if err != nil {
		t.Fatalf("Search() error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Search(miss) len = %d, want 0", len(got))
	}
}

// =============================================================================
// PRUNE AND COUNT TESTS
// =============================================================================

func TestPruneAndCount(t *testing.T) {
	s := openTestStore(t)
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 10; i++ {
		_, err := s.Save(Entry{
			Question:  fmt.Sprintf("q%d", i),
			Answer:    "a",
			Status:    StatusCompleted,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("Save() error: %v", err)
		}
	}

	if err := s.Prune(4); err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	n, err := s.Count()
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if n != 4 {
		t.Errorf("Count() = %d after Prune(4)", n)
	}

	// The survivors are the newest ones.
	got, _ := s.List(10)
	if got[0].Question != "q9" || got[3].Question != "q6" {
		t.Errorf("survivors = %+v", got)
	}

	// Prune(0) clears everything.
	if err := s.Prune(0); err != nil {
		t.Fatalf("Prune(0) error: %v", err)
	}
	if n, _ := s.Count(); n != 0 {
		t.Errorf("Count() = %d after Prune(0)", n)
	}
}

// =============================================================================
// LIFECYCLE TESTS
// =============================================================================

func TestClosedStore(t *testing.T) {
	s := openTestStore(t)
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error: %v", err)
	}

	if _, err := s.Save(Entry{Question: "q", Answer: "a", Status: StatusCompleted}); !errors.Is(err, ErrClosed) {
		t.Errorf("Save() after close = %v, want ErrClosed", err)
	}
	if _, err := s.List(1); !errors.Is(err, ErrClosed) {
		t.Errorf("List() after close = %v, want ErrClosed", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() error: %v", err)
	}
}

func TestReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	if _, err := s.Save(Entry{Question: "q", Answer: "a", Status: StatusCompleted}); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	s.Close()

	s2, err := Open(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer s2.Close()
	n, err := s2.Count()
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if n != 1 {
		t.Errorf("Count() = %d after reopen, want 1", n)
	}
}
