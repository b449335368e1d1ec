package compiler

import (
	"sort"
	"strings"
)

// KindInfo records, for one character at one position, which literal
// ordinals continue past it (Valid) and which end on it (Final).
type KindInfo struct {
	Valid Bitset
	Final Bitset
}

// ResumeEntry tells the generated lexer how to continue in the NFA when the
// literal fast path stops at a position while Literals are still active.
type ResumeEntry struct {
	// Kind is the ordinal the NFA matched on the literal prefix so far.
	Kind int
	// MatchedPos is the prefix position where Kind was matched.
	MatchedPos int
	// States are the NFA states active after the prefix.
	States []int
	// StateSet is the resolved id of States, or NoState when empty.
	StateSet int
	// Literals are the literal ordinals sharing this entry.
	Literals Bitset
}

// LiteralTable is the per-position decision table for the string literals
// of one lex state.
type LiteralTable struct {
	ignoreCase bool
	maxOrdinal int

	positions []map[rune]*KindInfo
	images    map[int]string
	caseless  map[int]bool
	order     []int

	substring      Bitset
	substringAtPos []bool
	resume         [][]ResumeEntry
}

func newLiteralTable(maxOrdinal int, ignoreCase bool) *LiteralTable {
	return &LiteralTable{
		ignoreCase: ignoreCase,
		maxOrdinal: maxOrdinal,
		images:     make(map[int]string),
		caseless:   make(map[int]bool),
		substring:  NewBitset(maxOrdinal),
	}
}

// key maps an input character to its table key.
func (t *LiteralTable) key(c rune) rune {
	if t.ignoreCase {
		return foldKey(c)
	}
	return c
}

func (t *LiteralTable) insert(ordinal int, image string, ignoreCase bool) {
	t.images[ordinal] = image
	t.caseless[ordinal] = ignoreCase || t.ignoreCase
	t.order = append(t.order, ordinal)

	chars := []rune(image)
	for i, c := range chars {
		last := i+1 == len(chars)
		t.add(i, t.key(c), ordinal, last)
		if t.ignoreCase || !ignoreCase {
			continue
		}
		for _, f := range foldVariants(c) {
			t.add(i, f, ordinal, last)
		}
	}
}

func (t *LiteralTable) add(pos int, c rune, ordinal int, last bool) {
	for len(t.positions) <= pos {
		t.positions = append(t.positions, make(map[rune]*KindInfo))
	}
	info, ok := t.positions[pos][c]
	if !ok {
		info = &KindInfo{Valid: NewBitset(t.maxOrdinal), Final: NewBitset(t.maxOrdinal)}
		t.positions[pos][c] = info
	}
	if last {
		info.Final.Set(ordinal)
	} else {
		info.Valid.Set(ordinal)
	}
}

// MaxLen returns the length of the longest literal.
func (t *LiteralTable) MaxLen() int {
	return len(t.positions)
}

// Ordinals returns the literal ordinals in insertion order.
func (t *LiteralTable) Ordinals() []int {
	return t.order
}

// Image returns the text of the literal with the given ordinal.
func (t *LiteralTable) Image(ordinal int) (string, bool) {
	s, ok := t.images[ordinal]
	return s, ok
}

// Lookup returns the record for input character c at position pos, or nil.
func (t *LiteralTable) Lookup(pos int, c rune) *KindInfo {
	if pos < 0 || pos >= len(t.positions) {
		return nil
	}
	return t.positions[pos][t.key(c)]
}

// Chars returns the table keys present at pos in increasing order.
func (t *LiteralTable) Chars(pos int) []rune {
	if pos < 0 || pos >= len(t.positions) {
		return nil
	}
	out := make([]rune, 0, len(t.positions[pos]))
	for c := range t.positions[pos] {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Match returns the ordinal of the literal spelled exactly by text, taking
// case folding into account. Among equal literals the lowest ordinal wins.
func (t *LiteralTable) Match(text string) (int, bool) {
	chars := []rune(text)
	if len(chars) == 0 || len(chars) > len(t.positions) {
		return NoKind, false
	}
	var cand Bitset
	for i, c := range chars {
		info := t.Lookup(i, c)
		if info == nil {
			return NoKind, false
		}
		step := info.Valid
		if i == len(chars)-1 {
			step = info.Final
		}
		if i == 0 {
			cand = step.Clone()
		} else {
			cand.And(step)
		}
		if cand.Empty() {
			return NoKind, false
		}
	}
	return cand.Lowest(), true
}

// LongestMatch returns the literal matching the longest prefix of input and
// that prefix's length in characters. Ties go to the lowest ordinal.
func (t *LiteralTable) LongestMatch(input string) (int, int) {
	best, bestLen := NoKind, 0
	var cand Bitset
	for i, c := range []rune(input) {
		info := t.Lookup(i, c)
		if info == nil {
			break
		}
		final := info.Final.Clone()
		next := info.Valid.Clone()
		if i > 0 {
			final.And(cand)
			next.And(cand)
		}
		if !final.Empty() {
			best, bestLen = final.Lowest(), i+1
		}
		if next.Empty() {
			break
		}
		cand = next
	}
	return best, bestLen
}

// StrKind returns the lowest ordinal whose literal spells image, or NoKind.
// Case-insensitive literals also match images differing only in case.
func (t *LiteralTable) StrKind(image string) int {
	kind := NoKind
	for _, o := range t.order {
		if kind != NoKind && o >= kind {
			continue
		}
		other := t.images[o]
		if other == image || (t.caseless[o] && foldString(other) == foldString(image)) {
			kind = o
		}
	}
	return kind
}

// fillSubstrings marks every literal that is a prefix of another literal of
// the same lex state. In a mixed-case lex state every literal is marked.
func (t *LiteralTable) fillSubstrings(mixed bool) {
	t.substringAtPos = make([]bool, len(t.positions))
	for _, o := range t.order {
		image := t.images[o]
		if image == "" {
			continue
		}
		if mixed || t.prefixOfOther(o, image) {
			t.substring.Set(o)
			t.substringAtPos[len([]rune(image))-1] = true
		}
	}
}

// prefixOfOther reports whether some other literal can match an input that
// starts with a match of image. Case is ignored when either literal ignores
// it.
func (t *LiteralTable) prefixOfOther(o int, image string) bool {
	folded := foldString(image)
	for _, p := range t.order {
		if p == o {
			continue
		}
		other := t.images[p]
		if strings.HasPrefix(other, image) {
			return true
		}
		if (t.caseless[o] || t.caseless[p]) && strings.HasPrefix(foldString(other), folded) {
			return true
		}
	}
	return false
}

// IsSubstring reports whether the literal must defer its match until a
// longer literal has been ruled out.
func (t *LiteralTable) IsSubstring(ordinal int) bool {
	return t.substring.Has(ordinal)
}

// SubstringAtPos reports whether some substring literal ends at pos.
func (t *LiteralTable) SubstringAtPos(pos int) bool {
	return pos >= 0 && pos < len(t.substringAtPos) && t.substringAtPos[pos]
}

// Resume returns the NFA resume entries for position pos.
func (t *LiteralTable) Resume(pos int) []ResumeEntry {
	if pos < 0 || pos >= len(t.resume) {
		return nil
	}
	return t.resume[pos]
}

type resumeKey struct {
	kind, pos int
	set       setKey
}

// resumeBuilder accumulates resume entries per position keyed by kind,
// matched position and state set.
type resumeBuilder struct {
	t     *LiteralTable
	index []map[resumeKey]int
}

func (r *resumeBuilder) add(pos, kind, matchedPos int, states []int, ordinal int) {
	for len(r.t.resume) <= pos {
		r.t.resume = append(r.t.resume, nil)
		r.index = append(r.index, make(map[resumeKey]int))
	}
	key := resumeKey{kind: kind, pos: matchedPos, set: keyOf(states)}
	i, ok := r.index[pos][key]
	if !ok {
		i = len(r.t.resume[pos])
		r.index[pos][key] = i
		r.t.resume[pos] = append(r.t.resume[pos], ResumeEntry{
			Kind:       kind,
			MatchedPos: matchedPos,
			States:     states,
			StateSet:   NoState,
			Literals:   NewBitset(r.t.maxOrdinal),
		})
	}
	r.t.resume[pos][i].Literals.Set(ordinal)
}
