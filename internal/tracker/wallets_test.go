package tracker

import (
	"reflect"
	"testing"
)

func TestWalletSet_AddIsIdempotent(t *testing.T) {
	s := NewWalletSet()

	if !s.Add("ABC") {
		t.Error("first Add should report a new member")
	}
	if s.Add("ABC") {
		t.Error("second Add should report an existing member")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 member, got %d", s.Len())
	}
}

func TestWalletSet_RemoveAbsentIsNoop(t *testing.T) {
	s := NewWalletSet()
	s.Add("ABC")

	if s.Remove("XYZ") {
		t.Error("removing an absent address should report false")
	}
	if !s.Contains("ABC") {
		t.Error("ABC should still be tracked")
	}
}

func TestWalletSet_Scenario(t *testing.T) {
	s := NewWalletSet()
	s.Add("ABC")
	s.Add("ABC")
	s.Remove("XYZ")

	if got := s.List(); !reflect.DeepEqual(got, []string{"ABC"}) {
		t.Errorf("List() = %v, want [ABC]", got)
	}
}

func TestWalletSet_ListSorted(t *testing.T) {
	s := NewWalletSet()
	for _, a := range []string{"c", "a", "b"} {
		s.Add(a)
	}
	s.Remove("b")

	if got := s.List(); !reflect.DeepEqual(got, []string{"a", "c"}) {
		t.Errorf("List() = %v, want [a c]", got)
	}
}

func TestWalletSet_EmptyList(t *testing.T) {
	s := NewWalletSet()
	if got := s.List(); len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}
