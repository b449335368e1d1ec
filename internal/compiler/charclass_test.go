package compiler

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/KromDaniel/lexgen/internal/ast"
)

func TestNormalizeRanges(t *testing.T) {
	tests := []struct {
		name string
		in   []ast.Range
		want []ast.Range
	}{
		{"empty", nil, []ast.Range{}},
		{"sorted", []ast.Range{{Lo: 'x', Hi: 'z'}, {Lo: 'a', Hi: 'c'}}, []ast.Range{{Lo: 'a', Hi: 'c'}, {Lo: 'x', Hi: 'z'}}},
		{"overlap", []ast.Range{{Lo: 'a', Hi: 'm'}, {Lo: 'f', Hi: 'z'}}, []ast.Range{{Lo: 'a', Hi: 'z'}}},
		{"adjacent", []ast.Range{{Lo: 'a', Hi: 'b'}, {Lo: 'c', Hi: 'd'}}, []ast.Range{{Lo: 'a', Hi: 'd'}}},
		{"inverted dropped", []ast.Range{{Lo: 'z', Hi: 'a'}, {Lo: '0', Hi: '9'}}, []ast.Range{{Lo: '0', Hi: '9'}}},
		{"clamped", []ast.Range{{Lo: 0xFFF0, Hi: 0x10FFFF}}, []ast.Range{{Lo: 0xFFF0, Hi: 0xFFFF}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeRanges(tt.in)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("normalizeRanges() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestNegateRanges(t *testing.T) {
	got := negateRanges([]ast.Range{{Lo: 'a', Hi: 'z'}})
	want := []ast.Range{{Lo: 0, Hi: 'a' - 1}, {Lo: 'z' + 1, Hi: ast.MaxChar}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("negateRanges() mismatch (-want +got):\n%s", diff)
	}

	if got := negateRanges([]ast.Range{{Lo: 0, Hi: ast.MaxChar}}); len(got) != 0 {
		t.Errorf("negating the full domain = %v, want empty", got)
	}
}

func TestClassRanges(t *testing.T) {
	tests := []struct {
		name       string
		class      *ast.CharClass
		ignoreCase bool
		accept     []rune
		reject     []rune
	}{
		{
			name:   "plain",
			class:  &ast.CharClass{Ranges: []ast.Range{{Lo: 'a', Hi: 'c'}}},
			accept: []rune{'a', 'b', 'c'},
			reject: []rune{'A', 'd'},
		},
		{
			name:       "folded",
			class:      &ast.CharClass{Ranges: []ast.Range{{Lo: 'k', Hi: 'k'}}},
			ignoreCase: true,
			accept:     []rune{'k', 'K', 'K'},
			reject:     []rune{'j'},
		},
		{
			name:       "negated folded",
			class:      &ast.CharClass{Negated: true, Ranges: []ast.Range{{Lo: 'a', Hi: 'a'}}},
			ignoreCase: true,
			accept:     []rune{'b', 'B', 'é'},
			reject:     []rune{'a', 'A'},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ranges := classRanges(tt.class, tt.ignoreCase)
			for _, c := range tt.accept {
				if !rangesContain(ranges, c) {
					t.Errorf("%q rejected by %v", c, ranges)
				}
			}
			for _, c := range tt.reject {
				if rangesContain(ranges, c) {
					t.Errorf("%q accepted by %v", c, ranges)
				}
			}
		})
	}
}

func TestAsciiWords(t *testing.T) {
	words := asciiWords([]ast.Range{{Lo: '0', Hi: '1'}, {Lo: 'a', Hi: 'a'}, {Lo: 0x7F, Hi: 0x200}})
	want := [2]uint64{1<<'0' | 1<<'1', 1<<('a'-64) | 1<<(0x7F-64)}
	if words != want {
		t.Errorf("asciiWords() = %#x, want %#x", words, want)
	}
}

func TestSplitNonASCII(t *testing.T) {
	chars, spans := splitNonASCII([]ast.Range{{Lo: 'a', Hi: 'z'}, {Lo: 0x7E, Hi: 0x80}, {Lo: 0xE9, Hi: 0xE9}, {Lo: 0x100, Hi: 0x1FF}})
	if diff := cmp.Diff([]rune{0x80, 0xE9}, chars); diff != "" {
		t.Errorf("chars mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]ast.Range{{Lo: 0x100, Hi: 0x1FF}}, spans); diff != "" {
		t.Errorf("spans mismatch (-want +got):\n%s", diff)
	}
}

func TestHighByteVectors(t *testing.T) {
	order, vectors := highByteVectors([]ast.Range{{Lo: 'a', Hi: 'b'}, {Lo: 0x0130, Hi: 0x0131}, {Lo: 0x0301, Hi: 0x0301}})
	if diff := cmp.Diff([]byte{0x01, 0x03}, order); diff != "" {
		t.Fatalf("high bytes mismatch (-want +got):\n%s", diff)
	}
	v := vectors[0x01]
	if !v.Has(0x30) || !v.Has(0x31) || v.Has(0x32) {
		t.Errorf("vector for 0x01 = %#x", *v)
	}
	if !vectors[0x03].Has(0x01) {
		t.Errorf("vector for 0x03 = %#x", *vectors[0x03])
	}
}
