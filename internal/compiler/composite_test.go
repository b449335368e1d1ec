package compiler

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func newTestTable(generated int) (*CompositeTable, []*NfaState) {
	states := make([]*NfaState, generated)
	for i := range states {
		states[i] = &NfaState{ID: i, NextSet: NoState, MatchKind: NoKind}
	}
	ctx := NewBuildContext(nil)
	ctx.beginLexState(generated)
	return newCompositeTable(ctx, states), states
}

func TestCompositeSingleton(t *testing.T) {
	ct, _ := newTestTable(3)
	ct.Gather([]int{2})
	if got := ct.Resolve([]int{2}); got != 2 {
		t.Errorf("Resolve({2}) = %d, want 2", got)
	}
	if len(ct.Composites()) != 0 {
		t.Errorf("singleton allocated a composite: %v", ct.Composites())
	}
}

func TestCompositeIdempotent(t *testing.T) {
	ct, states := newTestTable(4)
	set := []int{1, 3}
	ct.Gather(set)
	ct.Gather([]int{1, 3})

	first := ct.Resolve(set)
	second := ct.Resolve([]int{1, 3})
	if first != second {
		t.Fatalf("same set resolved to %d and %d", first, second)
	}
	if id, ok := ct.Lookup([]int{1, 3}); !ok || id != first {
		t.Errorf("Lookup = %d, %v; want %d, true", id, ok, first)
	}
	if states[1].InNextOf != 1 || states[3].InNextOf != 1 {
		t.Errorf("duplicate gather counted twice: inNextOf = %d, %d", states[1].InNextOf, states[3].InNextOf)
	}
	if !states[1].IsComposite || !states[3].IsComposite {
		t.Error("members are not marked composite")
	}
	if diff := cmp.Diff(set, ct.Members(first)); diff != "" {
		t.Errorf("Members mismatch (-want +got):\n%s", diff)
	}
}

func TestCompositeLabelReuse(t *testing.T) {
	ct, _ := newTestTable(4)
	sets := [][]int{{0, 1}, {2, 3}, {2}}
	for _, s := range sets {
		ct.Gather(s)
	}

	got := make([]int, len(sets))
	for i, s := range sets {
		got[i] = ct.Resolve(s)
	}
	// State 2 appears in two sets, so {2, 3} is labeled by 3.
	if diff := cmp.Diff([]int{0, 3, 2}, got); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}
}

func TestCompositeDummyIDs(t *testing.T) {
	ct, _ := newTestTable(4)
	sets := [][]int{{0, 1}, {0, 1, 2}, {0, 1, 3}}
	for _, s := range sets {
		ct.Gather(s)
	}

	seen := make(map[int]bool)
	for _, s := range sets {
		id := ct.Resolve(s)
		if seen[id] {
			t.Fatalf("id %d assigned twice", id)
		}
		seen[id] = true
	}
	id, _ := ct.Lookup([]int{0, 1})
	if id < 4 {
		t.Errorf("{0, 1} has id %d, want a dummy id >= 4", id)
	}
	if got := ct.Len(); got != 3 {
		t.Errorf("Len() = %d, want 3", got)
	}
}

func TestCompositeEmptyPanics(t *testing.T) {
	ct, _ := newTestTable(1)
	defer func() {
		r := recover()
		err, ok := r.(error)
		var ie *InternalError
		if !ok || !errors.As(err, &ie) {
			t.Fatalf("recovered %v, want *InternalError", r)
		}
	}()
	ct.Resolve(nil)
}
