package compiler

import (
	"github.com/KromDaniel/lexgen/internal/ast"
)

// Flags summarize the kinds and actions present in a grammar.
type Flags struct {
	HasSkip         bool
	HasMore         bool
	HasSpecial      bool
	HasSkipActions  bool
	HasMoreActions  bool
	HasTokenActions bool
	HasLoop         bool
	HasAnyChar      bool
}

// ChoiceInfo is a top-level choice recorded for reachability checks.
type ChoiceInfo struct {
	Regex  *ast.Regex
	Choice *ast.Choice
}

// StateTables are the frozen tables of one lex state.
type StateTables struct {
	Name  string
	Index int

	Graph *Graph
	// States are the consuming NFA states indexed by dense id.
	States          []*NfaState
	GeneratedStates int

	// InitialStates is the closure of the root; InitialSet is its resolved
	// id, or NoState when the lex state has no NFA.
	InitialStates []int
	InitialSet    int
	// InitMatch is the ordinal matching the empty string, or NoKind.
	InitMatch int
	// CanMatchAnyChar is the lowest ordinal matching any single character,
	// or NoKind.
	CanMatchAnyChar int
	// Mixed is set when the lex state holds literals of both case
	// sensitivities.
	Mixed bool
	// CanLoop is set when the lex state is part of an empty-match cycle.
	CanLoop bool

	Composites     *CompositeTable
	Literals       *LiteralTable
	Moves          []StateMoves
	CompositeMoves []CompositeMoves
	Choices        []ChoiceInfo
}

// Tables is the frozen result of a build.
type Tables struct {
	stateNames []string
	stateIndex map[string]int
	states     []*StateTables

	regexes    []*ast.Regex
	kinds      []ast.Kind
	lexStateOf []int
	next       []int
	actions    []string
	ignoreCase []bool

	toSkip, toMore, toToken, toSpecial Bitset

	vectors *VectorCache
	flags   Flags
}

// NumOrdinals returns the number of token ordinals.
func (t *Tables) NumOrdinals() int {
	return len(t.regexes)
}

// LexStateNames returns the lex state names by index.
func (t *Tables) LexStateNames() []string {
	return t.stateNames
}

// LexStateIndex returns the index of the named lex state.
func (t *Tables) LexStateIndex(name string) (int, bool) {
	i, ok := t.stateIndex[name]
	return i, ok
}

// State returns the tables of the lex state with index i.
func (t *Tables) State(i int) *StateTables {
	return t.states[i]
}

// States returns the tables of every lex state by index.
func (t *Tables) States() []*StateTables {
	return t.states
}

// Regex returns the regular expression with the given ordinal.
func (t *Tables) Regex(ordinal int) *ast.Regex {
	return t.regexes[ordinal]
}

// Kind returns the production kind of ordinal.
func (t *Tables) Kind(ordinal int) ast.Kind {
	return t.kinds[ordinal]
}

// LexStateOf returns the index of the first lex state declaring ordinal.
func (t *Tables) LexStateOf(ordinal int) int {
	return t.lexStateOf[ordinal]
}

// NextLexState returns the lex state entered after ordinal matches, or
// NoState when the lex state does not change.
func (t *Tables) NextLexState(ordinal int) int {
	return t.next[ordinal]
}

// Action returns the action reference of ordinal, or "".
func (t *Tables) Action(ordinal int) string {
	return t.actions[ordinal]
}

// IgnoreCase reports whether ordinal matches case-insensitively.
func (t *Tables) IgnoreCase(ordinal int) bool {
	return t.ignoreCase[ordinal]
}

// Label returns the display name of ordinal.
func (t *Tables) Label(ordinal int) string {
	return t.regexes[ordinal].Name()
}

// ToSkip returns the ordinals whose matches are discarded.
func (t *Tables) ToSkip() Bitset { return t.toSkip }

// ToMore returns the ordinals whose matches continue the current token.
func (t *Tables) ToMore() Bitset { return t.toMore }

// ToToken returns the ordinals that produce tokens.
func (t *Tables) ToToken() Bitset { return t.toToken }

// ToSpecial returns the ordinals producing special tokens.
func (t *Tables) ToSpecial() Bitset { return t.toSpecial }

// Vectors returns the interned low-byte vectors shared by all lex states.
func (t *Tables) Vectors() []Vector {
	return t.vectors.Vectors()
}

// Methods returns the interned non-ASCII move sequences.
func (t *Tables) Methods() [][]HighByteMove {
	return t.vectors.Methods()
}

// Flags returns the grammar summary flags.
func (t *Tables) Flags() Flags {
	return t.flags
}
