package compiler

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/KromDaniel/lexgen/internal/ast"
)

func TestVectorCacheIntern(t *testing.T) {
	c := NewVectorCache()
	a := Vector{1, 0, 0, 1 << 63}
	b := Vector{2}

	ia := c.Intern(a)
	if again := c.Intern(Vector{1, 0, 0, 1 << 63}); again != ia {
		t.Errorf("equal vectors interned as %d and %d", ia, again)
	}
	ib := c.Intern(b)
	if ib == ia {
		t.Error("different vectors share an id")
	}
	if got := c.Len(); got != 2 {
		t.Errorf("Len() = %d, want 2", got)
	}
	if c.Vector(ib) != b {
		t.Errorf("Vector(%d) = %#x, want %#x", ib, c.Vector(ib), b)
	}
}

func TestVectorCacheMethods(t *testing.T) {
	c := NewVectorCache()
	m1 := c.internMethod([]HighByteMove{{High: 1, Vector: 0}, {High: 3, Vector: 1}})
	m2 := c.internMethod([]HighByteMove{{High: 1, Vector: 0}, {High: 3, Vector: 1}})
	m3 := c.internMethod([]HighByteMove{{High: 1, Vector: 0}})
	if m1 != m2 {
		t.Errorf("equal sequences interned as %d and %d", m1, m2)
	}
	if m3 == m1 {
		t.Error("different sequences share an id")
	}
	if got := c.internMethod(nil); got != NoState {
		t.Errorf("empty sequence id = %d, want %d", got, NoState)
	}
	if got := len(c.Methods()); got != 2 {
		t.Errorf("len(Methods()) = %d, want 2", got)
	}
}

func testState(id int, ranges ...ast.Range) *NfaState {
	s := &NfaState{ID: id, Chars: normalizeRanges(ranges), Next: 0}
	s.ASCII = asciiWords(s.Chars)
	s.NonASCIIChars, s.NonASCIIRanges = splitNonASCII(s.Chars)
	return s
}

func TestPartitionStatesInterning(t *testing.T) {
	ctx := NewBuildContext(nil)
	states := []*NfaState{
		testState(0, ast.Range{Lo: 0x100, Hi: 0x105}),
		testState(1, ast.Range{Lo: 0x100, Hi: 0x105}),
		testState(2, ast.Range{Lo: 0x200, Hi: 0x205}),
		testState(3, ast.Range{Lo: 'a', Hi: 'z'}),
	}
	moves, _ := partitionStates(ctx, states, nil)

	if got := ctx.vectors.Len(); got != 1 {
		t.Errorf("interned vectors = %d, want 1", got)
	}
	if moves[0].Method != moves[1].Method {
		t.Errorf("identical states use methods %d and %d", moves[0].Method, moves[1].Method)
	}
	if moves[2].Method == moves[0].Method {
		t.Error("different high bytes share a method")
	}
	if diff := cmp.Diff([]HighByteMove{{High: 2, Vector: 0}}, moves[2].NonASCII); diff != "" {
		t.Errorf("NonASCII mismatch (-want +got):\n%s", diff)
	}
	if moves[3].Method != NoState || moves[3].NonASCII != nil {
		t.Errorf("ASCII-only state has non-ASCII moves: %+v", moves[3])
	}
}

func TestPartitionWord(t *testing.T) {
	moves := []StateMoves{
		{ID: 0, ASCII: [2]uint64{0b0011, 0}},
		{ID: 1, ASCII: [2]uint64{0b0100, 0}},
		{ID: 2, ASCII: [2]uint64{0b0110, 0}},
		{ID: 3, ASCII: [2]uint64{0, 1}},
	}

	got := partitionWord(moves, []int{0, 1, 2, 3}, 0)
	want := [][]int{{0, 1}, {2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("partition mismatch (-want +got):\n%s", diff)
	}

	for _, group := range got {
		var used uint64
		for _, id := range group {
			if used&moves[id].ASCII[0] != 0 {
				t.Errorf("group %v has overlapping members", group)
			}
			used |= moves[id].ASCII[0]
		}
	}
}

func TestPartitionComposite(t *testing.T) {
	ctx := NewBuildContext(nil)
	states := []*NfaState{
		testState(0, ast.Range{Lo: 'a', Hi: 'c'}),
		testState(1, ast.Range{Lo: 'c', Hi: 'd'}, ast.Range{Lo: 0x100, Hi: 0x100}),
		testState(2, ast.Range{Lo: '0', Hi: '9'}),
	}
	_, composites := partitionStates(ctx, states, []Composite{{ID: 5, Members: []int{0, 1, 2}}})
	if len(composites) != 1 {
		t.Fatalf("got %d composite move tables, want 1", len(composites))
	}
	cm := composites[0]

	want := [2]uint64{states[2].ASCII[0], states[0].ASCII[1] | states[1].ASCII[1]}
	if cm.ASCII != want {
		t.Errorf("ASCII = %#x, want %#x", cm.ASCII, want)
	}
	if diff := cmp.Diff([][]int{{2}}, cm.Partitions[0]); diff != "" {
		t.Errorf("word 0 partition mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]int{{0}, {1}}, cm.Partitions[1]); diff != "" {
		t.Errorf("word 1 partition mismatch (-want +got):\n%s", diff)
	}
	if len(cm.Methods) != 1 {
		t.Errorf("Methods = %v, want one entry", cm.Methods)
	}
}
