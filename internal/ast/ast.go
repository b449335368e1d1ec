// Package ast defines the token regular-expression tree consumed by the
// lexer table builder.
package ast

import "fmt"

// MaxChar is the largest character a regular expression can mention.
// Characters are 16-bit code units.
const MaxChar rune = 0xFFFF

// DefaultLexState is the lex state used when a production declares none.
const DefaultLexState = "DEFAULT"

// AllLexStates in a production's state list stands for every lex state.
const AllLexStates = "*"

// Kind is the production category of a token regular expression.
type Kind uint8

const (
	KindToken Kind = iota
	KindSkip
	KindMore
	KindSpecial
)

var kindNames = [...]string{
	KindToken:   "TOKEN",
	KindSkip:    "SKIP",
	KindMore:    "MORE",
	KindSpecial: "SPECIAL",
}

// String returns the grammar keyword for the kind.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind converts a grammar keyword into a Kind.
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	if s == "SPECIAL_TOKEN" {
		return KindSpecial, nil
	}
	return 0, fmt.Errorf("unknown token kind %q", s)
}

// Location is a position in the grammar source.
type Location struct {
	File   string
	Line   int
	Column int
}

// String formats the location as file:line:column, omitting unknown parts.
func (l Location) String() string {
	switch {
	case l.File == "" && l.Line == 0:
		return ""
	case l.Line == 0:
		return l.File
	case l.File == "":
		return fmt.Sprintf("line %d, column %d", l.Line, l.Column)
	}
	return fmt.Sprintf("%s:%d:%d", l.File, l.Line, l.Column)
}

// Node is one regular expression form. The set of implementations is closed.
type Node interface {
	node()
}

// Literal matches its text exactly.
type Literal struct {
	Text string
}

// Range is an inclusive character range.
type Range struct {
	Lo, Hi rune
}

// CharClass matches one character from Ranges, or outside them when Negated.
type CharClass struct {
	Negated bool
	Ranges  []Range
}

// Choice matches any one of its alternatives.
type Choice struct {
	Alts []*Regex
}

// Sequence matches its items one after another.
type Sequence struct {
	Items []*Regex
}

// Repetition matches Sub between Min and Max times. Max < 0 is unbounded.
type Repetition struct {
	Sub      *Regex
	Min, Max int
}

// Reference matches the labeled regular expression Name.
type Reference struct {
	Name string
}

func (*Literal) node()    {}
func (*CharClass) node()  {}
func (*Choice) node()     {}
func (*Sequence) node()   {}
func (*Repetition) node() {}
func (*Reference) node()  {}

// NoOrdinal marks anonymous sub-expressions and private regular expressions.
const NoOrdinal = -1

// Regex is a regular expression node with its attributes.
type Regex struct {
	Node       Node
	Ordinal    int
	Label      string
	Loc        Location
	IgnoreCase bool
	Private    bool
}

// Name returns the label, or a description based on the ordinal.
func (r *Regex) Name() string {
	if r.Label != "" {
		return "<" + r.Label + ">"
	}
	if lit, ok := r.Node.(*Literal); ok {
		return fmt.Sprintf("%q", lit.Text)
	}
	return fmt.Sprintf("token of kind %d", r.Ordinal)
}

// MatchesAnyChar reports whether r is a single character class that accepts
// every character.
func (r *Regex) MatchesAnyChar() bool {
	cc, ok := r.Node.(*CharClass)
	if !ok {
		return false
	}
	covered := make([]Range, 0, len(cc.Ranges))
	for _, rg := range cc.Ranges {
		if rg.Lo <= rg.Hi {
			covered = append(covered, rg)
		}
	}
	if cc.Negated {
		return len(covered) == 0
	}
	return coversAll(covered)
}

func coversAll(ranges []Range) bool {
	next := rune(0)
	for {
		advanced := false
		for _, rg := range ranges {
			if rg.Lo <= next && rg.Hi >= next {
				if rg.Hi >= MaxChar {
					return true
				}
				next = rg.Hi + 1
				advanced = true
			}
		}
		if !advanced {
			return false
		}
	}
}

// Spec is one regular expression inside a token production.
type Spec struct {
	Regex *Regex
	// NextState is the lex state to switch to after a match, or "".
	NextState string
	// Action is an opaque reference to user code run on a match.
	Action string
}

// TokenProduction groups regular expressions sharing a kind and lex states.
type TokenProduction struct {
	Kind       Kind
	LexStates  []string
	IgnoreCase bool
	Loc        Location
	Specs      []Spec
}

// States returns the declared lex states, defaulting to DEFAULT.
func (p *TokenProduction) States() []string {
	if len(p.LexStates) == 0 {
		return []string{DefaultLexState}
	}
	return p.LexStates
}

// Grammar is the complete input of a table build.
type Grammar struct {
	Productions []TokenProduction
}

// Lit builds an anonymous literal node.
func Lit(text string) *Regex {
	return &Regex{Node: &Literal{Text: text}, Ordinal: NoOrdinal}
}

// Class builds an anonymous character class node.
func Class(negated bool, ranges ...Range) *Regex {
	return &Regex{Node: &CharClass{Negated: negated, Ranges: ranges}, Ordinal: NoOrdinal}
}

// Alt builds an anonymous choice node.
func Alt(alts ...*Regex) *Regex {
	return &Regex{Node: &Choice{Alts: alts}, Ordinal: NoOrdinal}
}

// Seq builds an anonymous sequence node.
func Seq(items ...*Regex) *Regex {
	return &Regex{Node: &Sequence{Items: items}, Ordinal: NoOrdinal}
}

// Rep builds an anonymous repetition node.
func Rep(sub *Regex, min, max int) *Regex {
	return &Regex{Node: &Repetition{Sub: sub, Min: min, Max: max}, Ordinal: NoOrdinal}
}

// Ref builds an anonymous reference node.
func Ref(name string) *Regex {
	return &Regex{Node: &Reference{Name: name}, Ordinal: NoOrdinal}
}
