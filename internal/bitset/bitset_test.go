package bitset

import "testing"

func TestSetUnsetIsSet(t *testing.T) {
	var s Set[uint32]
	s.Grow(1)
	if s.IsSet(5) {
		t.Fatalf("have bit 5 set, want unset")
	}
	s.Set(5)
	if !s.IsSet(5) {
		t.Fatalf("have bit 5 unset, want set")
	}
	s.Unset(5)
	if s.IsSet(5) {
		t.Fatalf("have bit 5 set after Unset, want unset")
	}
}

func TestSearchFillsInOrder(t *testing.T) {
	var s Set[uint8]
	s.Grow(1)
	if have, want := s.Len(), 8; have != want {
		t.Fatalf("have len %d, want %d", have, want)
	}
	for i := 0; i < 8; i++ {
		idx, ok := s.Search()
		if !ok {
			t.Fatalf("have Search fail at iteration %d, want success", i)
		}
		s.Set(idx)
	}
	if _, ok := s.Search(); ok {
		t.Fatalf("have Search succeed when full, want failure")
	}
}

func TestClearRetainsLength(t *testing.T) {
	var s Set[uint32]
	s.Grow(1)
	s.Set(3)
	s.Clear()
	if s.IsSet(3) {
		t.Fatalf("have bit 3 set after Clear, want unset")
	}
	if have, want := s.Len(), 32; have != want {
		t.Fatalf("have len %d after Clear, want %d", have, want)
	}
}

func TestResetDropsLength(t *testing.T) {
	var s Set[uint32]
	s.Grow(2)
	s.Reset()
	if have, want := s.Len(), 0; have != want {
		t.Fatalf("have len %d after Reset, want %d", have, want)
	}
	if have, want := s.Rem(), 0; have != want {
		t.Fatalf("have rem %d after Reset, want %d", have, want)
	}
}
