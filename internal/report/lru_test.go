package report

import (
	"errors"
	"testing"
)

func TestLRUStore_SaveLoad(t *testing.T) {
	s := NewLRUStore(2)
	if err := s.Save(&RunResult{ID: "a", Stdout: "1"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load("a")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Stdout != "1" {
		t.Errorf("Stdout = %q, want 1", got.Stdout)
	}
}

func TestLRUStore_Miss(t *testing.T) {
	s := NewLRUStore(2)
	_, err := s.Load("nope")
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("error = %v, want ErrRunNotFound", err)
	}
}

func TestLRUStore_EvictsLeastRecentlyUsed(t *testing.T) {
	s := NewLRUStore(2)
	_ = s.Save(&RunResult{ID: "a"})
	_ = s.Save(&RunResult{ID: "b"})
	// Touch a so that b becomes the eviction candidate.
	if _, err := s.Load("a"); err != nil {
		t.Fatal(err)
	}
	_ = s.Save(&RunResult{ID: "c"})

	if _, err := s.Load("b"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("b still present after eviction: %v", err)
	}
	for _, id := range []string{"a", "c"} {
		if _, err := s.Load(id); err != nil {
			t.Errorf("Load(%s): %v", id, err)
		}
	}
	if s.len() != 2 {
		t.Errorf("Len = %d, want 2", s.len())
	}
}

func TestLRUStore_Replace(t *testing.T) {
	s := NewLRUStore(1)
	_ = s.Save(&RunResult{ID: "a", Stdout: "old"})
	_ = s.Save(&RunResult{ID: "a", Stdout: "new"})
	got, err := s.Load("a")
	if err != nil {
		t.Fatal(err)
	}
	if got.Stdout != "new" || s.len() != 1 {
		t.Errorf("got %q with Len %d, want new with Len 1", got.Stdout, s.len())
	}
}

func TestNewLRUStore_MinCapacity(t *testing.T) {
	s := NewLRUStore(0)
	_ = s.Save(&RunResult{ID: "a"})
	_ = s.Save(&RunResult{ID: "b"})
	if s.len() != 1 {
		t.Errorf("Len = %d, want 1", s.len())
	}
}
