package compiler

import (
	"sort"
	"strings"
	"unicode"

	"github.com/KromDaniel/lexgen/internal/ast"
)

// classRanges returns the sorted, merged ranges a character class accepts.
// Case variants are added before negation, so a negated case-insensitive
// class excludes every case of its characters.
func classRanges(cc *ast.CharClass, ignoreCase bool) []ast.Range {
	ranges := normalizeRanges(cc.Ranges)
	if ignoreCase {
		ranges = foldRanges(ranges)
	}
	if cc.Negated {
		ranges = negateRanges(ranges)
	}
	return ranges
}

// charRanges returns the ranges accepting c, with case variants when
// ignoreCase is set.
func charRanges(c rune, ignoreCase bool) []ast.Range {
	ranges := []ast.Range{{Lo: c, Hi: c}}
	if ignoreCase {
		ranges = foldRanges(ranges)
	}
	return ranges
}

// normalizeRanges clamps ranges to the character domain, drops empty ones,
// sorts them and merges overlapping or adjacent ranges.
func normalizeRanges(in []ast.Range) []ast.Range {
	out := make([]ast.Range, 0, len(in))
	for _, r := range in {
		if r.Lo < 0 {
			r.Lo = 0
		}
		if r.Hi > ast.MaxChar {
			r.Hi = ast.MaxChar
		}
		if r.Lo > r.Hi {
			continue
		}
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Lo < out[j].Lo })

	merged := out[:0]
	for _, r := range out {
		if n := len(merged); n > 0 && r.Lo <= merged[n-1].Hi+1 {
			if r.Hi > merged[n-1].Hi {
				merged[n-1].Hi = r.Hi
			}
			continue
		}
		merged = append(merged, r)
	}
	return merged
}

// negateRanges returns the complement of normalized ranges.
func negateRanges(in []ast.Range) []ast.Range {
	var out []ast.Range
	next := rune(0)
	for _, r := range in {
		if r.Lo > next {
			out = append(out, ast.Range{Lo: next, Hi: r.Lo - 1})
		}
		next = r.Hi + 1
	}
	if next <= ast.MaxChar {
		out = append(out, ast.Range{Lo: next, Hi: ast.MaxChar})
	}
	return out
}

// foldRanges adds every simple case variant of the characters in ranges.
func foldRanges(in []ast.Range) []ast.Range {
	out := append([]ast.Range(nil), in...)
	for _, r := range in {
		for c := r.Lo; c <= r.Hi; c++ {
			for _, f := range foldVariants(c) {
				out = append(out, ast.Range{Lo: f, Hi: f})
			}
		}
	}
	return normalizeRanges(out)
}

// foldVariants returns the simple case variants of c within the 16-bit
// range, excluding c itself. Literals and classes fold by this one rule.
func foldVariants(c rune) []rune {
	var out []rune
	for f := unicode.SimpleFold(c); f != c; f = unicode.SimpleFold(f) {
		if f <= ast.MaxChar {
			out = append(out, f)
		}
	}
	return out
}

// foldKey returns the smallest of c and its case variants.
func foldKey(c rune) rune {
	key := c
	for _, f := range foldVariants(c) {
		if f < key {
			key = f
		}
	}
	return key
}

// foldString maps every character of s to its fold key.
func foldString(s string) string {
	return strings.Map(foldKey, s)
}

// rangesContain reports whether normalized ranges accept c.
func rangesContain(ranges []ast.Range, c rune) bool {
	i := sort.Search(len(ranges), func(i int) bool { return ranges[i].Hi >= c })
	return i < len(ranges) && ranges[i].Lo <= c
}

// asciiWords returns the two 64-bit move words for the ASCII part of ranges.
func asciiWords(ranges []ast.Range) [2]uint64 {
	var words [2]uint64
	for _, r := range ranges {
		if r.Lo >= MaxASCIIRune {
			break
		}
		hi := r.Hi
		if hi >= MaxASCIIRune {
			hi = MaxASCIIRune - 1
		}
		for c := r.Lo; c <= hi; c++ {
			words[c/WordBits] |= 1 << (c % WordBits)
		}
	}
	return words
}

// splitNonASCII returns the non-ASCII part of ranges as single characters
// and proper ranges.
func splitNonASCII(ranges []ast.Range) (chars []rune, spans []ast.Range) {
	for _, r := range ranges {
		if r.Hi < MaxASCIIRune {
			continue
		}
		if r.Lo < MaxASCIIRune {
			r.Lo = MaxASCIIRune
		}
		if r.Lo == r.Hi {
			chars = append(chars, r.Lo)
		} else {
			spans = append(spans, r)
		}
	}
	return chars, spans
}

// Vector is a 256-bit set of low-byte values.
type Vector [VectorWords]uint64

// Has reports whether low byte b is set.
func (v Vector) Has(b byte) bool {
	return v[b/WordBits]&(1<<(b%WordBits)) != 0
}

// highByteVectors partitions the non-ASCII part of ranges by high byte. The
// returned high bytes are in increasing order.
func highByteVectors(ranges []ast.Range) ([]byte, map[byte]*Vector) {
	vectors := make(map[byte]*Vector)
	var order []byte
	for _, r := range ranges {
		if r.Hi < MaxASCIIRune {
			continue
		}
		lo := r.Lo
		if lo < MaxASCIIRune {
			lo = MaxASCIIRune
		}
		for c := lo; c <= r.Hi; c++ {
			hi := byte(c >> HighByteShift)
			v, ok := vectors[hi]
			if !ok {
				v = new(Vector)
				vectors[hi] = v
				order = append(order, hi)
			}
			low := c & LowByteMask
			v[low/WordBits] |= 1 << (low % WordBits)
		}
	}
	return order, vectors
}
