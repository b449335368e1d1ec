package compiler

import (
	"math/bits"
	"strconv"
	"strings"
)

// Bitset is a fixed-capacity set of ordinals.
type Bitset struct {
	words []uint64
}

// NewBitset returns an empty set able to hold ordinals in [0, n).
func NewBitset(n int) Bitset {
	return Bitset{words: make([]uint64, (n+WordBits-1)/WordBits)}
}

// Set adds i to the set.
func (b Bitset) Set(i int) { b.words[i/WordBits] |= 1 << (i % WordBits) }

// Has reports whether i is in the set.
func (b Bitset) Has(i int) bool {
	if i < 0 || i/WordBits >= len(b.words) {
		return false
	}
	return b.words[i/WordBits]&(1<<(i%WordBits)) != 0
}

// Empty reports whether the set has no members.
func (b Bitset) Empty() bool {
	for _, w := range b.words {
		if w != 0 {
			return false
		}
	}
	return true
}

// Len returns the number of members.
func (b Bitset) Len() int {
	n := 0
	for _, w := range b.words {
		n += bits.OnesCount64(w)
	}
	return n
}

// Lowest returns the smallest member, or NoKind when empty.
func (b Bitset) Lowest() int {
	for i, w := range b.words {
		if w != 0 {
			return i*WordBits + bits.TrailingZeros64(w)
		}
	}
	return NoKind
}

// Clone returns an independent copy.
func (b Bitset) Clone() Bitset {
	c := Bitset{words: make([]uint64, len(b.words))}
	copy(c.words, b.words)
	return c
}

// Or adds every member of other.
func (b Bitset) Or(other Bitset) {
	for i := range b.words {
		if i < len(other.words) {
			b.words[i] |= other.words[i]
		}
	}
}

// And keeps only members also present in other.
func (b Bitset) And(other Bitset) {
	for i := range b.words {
		if i < len(other.words) {
			b.words[i] &= other.words[i]
		} else {
			b.words[i] = 0
		}
	}
}

// Intersects reports whether b and other share a member.
func (b Bitset) Intersects(other Bitset) bool {
	for i := range b.words {
		if i < len(other.words) && b.words[i]&other.words[i] != 0 {
			return true
		}
	}
	return false
}

// Members returns the members in increasing order.
func (b Bitset) Members() []int {
	var out []int
	for i, w := range b.words {
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			out = append(out, i*WordBits+bit)
			w &^= 1 << bit
		}
	}
	return out
}

// Words returns the backing words. Callers must not modify them.
func (b Bitset) Words() []uint64 {
	return b.words
}

// String formats the set as {a, b, c}.
func (b Bitset) String() string {
	members := b.Members()
	parts := make([]string, len(members))
	for i, m := range members {
		parts[i] = strconv.Itoa(m)
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
