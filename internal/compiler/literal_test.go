package compiler

import (
	"testing"
)

type lit struct {
	ordinal    int
	image      string
	ignoreCase bool
}

func newTestLiterals(globalIgnoreCase bool, lits ...lit) *LiteralTable {
	max := 0
	for _, l := range lits {
		if l.ordinal >= max {
			max = l.ordinal + 1
		}
	}
	t := newLiteralTable(max, globalIgnoreCase)
	for _, l := range lits {
		t.insert(l.ordinal, l.image, l.ignoreCase)
	}
	return t
}

func TestLiteralMatch(t *testing.T) {
	table := newTestLiterals(false,
		lit{0, "if", false},
		lit{1, "else", false},
		lit{2, "int", false},
		lit{3, "==", false},
	)

	tests := []struct {
		input  string
		want   int
		wantOK bool
	}{
		{"if", 0, true},
		{"else", 1, true},
		{"int", 2, true},
		{"==", 3, true},
		{"in", NoKind, false},
		{"IF", NoKind, false},
		{"elsewhere", NoKind, false},
		{"", NoKind, false},
	}

	for _, tt := range tests {
		got, ok := table.Match(tt.input)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("Match(%q) = %d, %v; want %d, %v", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
	if got := table.MaxLen(); got != 4 {
		t.Errorf("MaxLen() = %d, want 4", got)
	}
}

func TestLiteralCaseFolding(t *testing.T) {
	tests := []struct {
		name   string
		global bool
		lits   []lit
		inputs []string
		miss   string
	}{
		{"literal ignore case", false, []lit{{0, "select", true}}, []string{"select", "SELECT", "SeLeCt"}, "selec"},
		{"global ignore case", true, []lit{{0, "select", false}}, []string{"select", "SELECT", "SeLeCt"}, "selec"},
		{"literal kelvin sign", false, []lit{{0, "key", true}}, []string{"key", "KEY", "\u212Aey"}, "\u212Ae"},
		{"global kelvin sign", true, []lit{{0, "\u212Aey", false}}, []string{"key", "KEY", "\u212AEY"}, "ke"},
		{"literal long s", false, []lit{{0, "as", true}}, []string{"as", "AS", "a\u017F"}, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := newTestLiterals(tt.global, tt.lits...)
			for _, in := range tt.inputs {
				if got, ok := table.Match(in); !ok || got != 0 {
					t.Errorf("Match(%q) = %d, %v; want 0, true", in, got, ok)
				}
				if got := table.StrKind(in); got != 0 {
					t.Errorf("StrKind(%q) = %d, want 0", in, got)
				}
			}
			if _, ok := table.Match(tt.miss); ok {
				t.Errorf("Match(%q) matched a prefix", tt.miss)
			}
		})
	}
}

func TestLiteralCaseSensitiveNeighbours(t *testing.T) {
	table := newTestLiterals(false,
		lit{0, "Select", false},
		lit{1, "select", true},
	)
	if got, _ := table.Match("Select"); got != 0 {
		t.Errorf(`Match("Select") = %d, want 0`, got)
	}
	if got, _ := table.Match("SELECT"); got != 1 {
		t.Errorf(`Match("SELECT") = %d, want 1`, got)
	}
	if got := table.StrKind("SELECT"); got != 1 {
		t.Errorf(`StrKind("SELECT") = %d, want 1`, got)
	}
	if got := table.StrKind("Select"); got != 0 {
		t.Errorf(`StrKind("Select") = %d, want 0`, got)
	}
}

func TestLiteralLongestMatch(t *testing.T) {
	table := newTestLiterals(false,
		lit{0, "a", false},
		lit{1, "ab", false},
		lit{2, "abc", false},
	)

	tests := []struct {
		input    string
		wantKind int
		wantLen  int
	}{
		{"ab", 1, 2},
		{"abd", 1, 2},
		{"abcd", 2, 3},
		{"ac", 0, 1},
		{"b", NoKind, 0},
	}

	for _, tt := range tests {
		kind, n := table.LongestMatch(tt.input)
		if kind != tt.wantKind || n != tt.wantLen {
			t.Errorf("LongestMatch(%q) = %d, %d; want %d, %d", tt.input, kind, n, tt.wantKind, tt.wantLen)
		}
	}
}

func TestLiteralSubstrings(t *testing.T) {
	tests := []struct {
		name      string
		global    bool
		mixed     bool
		lits      []lit
		substring []int
		atPos     []int
	}{
		{
			name:      "prefix",
			lits:      []lit{{0, "a", false}, {1, "ab", false}},
			substring: []int{0},
			atPos:     []int{0},
		},
		{
			name: "no prefix",
			lits: []lit{{0, "ab", false}, {1, "ba", false}},
		},
		{
			name:      "folded prefix",
			global:    true,
			lits:      []lit{{0, "A", false}, {1, "ab", false}},
			substring: []int{0},
			atPos:     []int{0},
		},
		{
			name:      "case differs",
			lits:      []lit{{0, "A", false}, {1, "ab", false}},
			substring: nil,
		},
		{
			name:      "literal ignore case prefix",
			lits:      []lit{{0, "select", true}, {1, "SELECTX", true}},
			substring: []int{0},
			atPos:     []int{5},
		},
		{
			name:      "longer literal ignores case",
			lits:      []lit{{0, "Select", false}, {1, "SELECTX", true}},
			substring: []int{0},
			atPos:     []int{5},
		},
		{
			name:      "kelvin sign prefix",
			lits:      []lit{{0, "k", true}, {1, "\u212Aelvin", false}},
			substring: []int{0},
			atPos:     []int{0},
		},
		{
			name:      "mixed state",
			mixed:     true,
			lits:      []lit{{0, "ab", false}, {1, "cde", true}},
			substring: []int{0, 1},
			atPos:     []int{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := newTestLiterals(tt.global, tt.lits...)
			table.fillSubstrings(tt.mixed)

			want := make(map[int]bool)
			for _, o := range tt.substring {
				want[o] = true
			}
			for _, l := range tt.lits {
				if got := table.IsSubstring(l.ordinal); got != want[l.ordinal] {
					t.Errorf("IsSubstring(%d) = %v, want %v", l.ordinal, got, want[l.ordinal])
				}
			}

			wantPos := make(map[int]bool)
			for _, p := range tt.atPos {
				wantPos[p] = true
			}
			for pos := 0; pos < table.MaxLen(); pos++ {
				if got := table.SubstringAtPos(pos); got != wantPos[pos] {
					t.Errorf("SubstringAtPos(%d) = %v, want %v", pos, got, wantPos[pos])
				}
			}
		})
	}
}

func TestLiteralKindInfo(t *testing.T) {
	table := newTestLiterals(false, lit{0, "a", false}, lit{1, "ab", false})

	info := table.Lookup(0, 'a')
	if info == nil {
		t.Fatal("no record for 'a' at position 0")
	}
	if !info.Final.Has(0) || info.Final.Has(1) {
		t.Errorf("Final at 0 = %v, want {0}", info.Final)
	}
	if !info.Valid.Has(1) || info.Valid.Has(0) {
		t.Errorf("Valid at 0 = %v, want {1}", info.Valid)
	}
	if table.Lookup(1, 'a') != nil {
		t.Error("unexpected record for 'a' at position 1")
	}
	if got := table.Chars(1); len(got) != 1 || got[0] != 'b' {
		t.Errorf("Chars(1) = %q, want [b]", got)
	}
}
