package feed

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"tickerfeed/internal/domain"
)

func TestSelectionToggle(t *testing.T) {
	order := ids(0, 5)
	s := NewSelection()
	s.Activate("2", 2, false, order)
	if !s.Has("2") || s.Anchor() != 2 {
		t.Fatalf("has/anchor = %v/%d", s.Has("2"), s.Anchor())
	}
	s.Activate("2", 2, false, order)
	if s.Has("2") || s.Len() != 0 {
		t.Error("second activation should deselect")
	}
	if s.Anchor() != 2 {
		t.Errorf("anchor = %d, want 2", s.Anchor())
	}
}

func TestSelectionRangeWithoutAnchorToggles(t *testing.T) {
	s := NewSelection()
	s.Activate("3", 3, true, ids(0, 5))
	if diff := cmp.Diff([]domain.PostID{"3"}, s.InOrder(ids(0, 5))); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectionRangeIsAdditive(t *testing.T) {
	order := ids(0, 10)
	s := NewSelection()
	s.Activate("8", 8, false, order) // outside the range, stays selected
	s.Activate("2", 2, false, order)
	s.Activate("5", 5, true, order)

	want := []domain.PostID{"2", "3", "4", "5", "8"}
	if diff := cmp.Diff(want, s.InOrder(order)); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}

	// Range backwards from the new anchor.
	s.Activate("0", 0, true, order)
	want = []domain.PostID{"0", "1", "2", "3", "4", "5", "8"}
	if diff := cmp.Diff(want, s.InOrder(order)); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
	if s.Anchor() != 0 {
		t.Errorf("anchor = %d, want 0", s.Anchor())
	}
}

func TestSelectionRangeNeverRemoves(t *testing.T) {
	order := ids(0, 6)
	s := NewSelection()
	s.Activate("1", 1, false, order)
	s.Activate("3", 3, false, order)
	s.Activate("4", 4, true, order)
	want := []domain.PostID{"1", "3", "4"}
	if diff := cmp.Diff(want, s.InOrder(order)); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectionClear(t *testing.T) {
	s := NewSelection()
	s.Activate("1", 1, false, ids(0, 3))
	s.Clear()
	if s.Len() != 0 || s.Anchor() != -1 {
		t.Errorf("len/anchor = %d/%d, want 0/-1", s.Len(), s.Anchor())
	}
}

func TestSelectionEvictShiftsAnchor(t *testing.T) {
	order := ids(0, 10)
	s := NewSelection()
	s.Activate("1", 1, false, order)
	s.Activate("6", 6, false, order)

	s.Evict(ids(0, 3))
	if s.Has("1") {
		t.Error("evicted id still selected")
	}
	if !s.Has("6") {
		t.Error("surviving id lost")
	}
	if s.Anchor() != 3 {
		t.Errorf("anchor = %d, want 3", s.Anchor())
	}

	s.Evict(ids(3, 5))
	if s.Anchor() != -1 {
		t.Errorf("anchor = %d, want -1 after falling off the head", s.Anchor())
	}
}
