// Package grammar loads YAML grammar descriptions into the token regular
// expression tree.
package grammar

import (
	"fmt"
	"os"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/text/unicode/norm"
	"sigs.k8s.io/yaml"

	"github.com/KromDaniel/lexgen/internal/ast"
)

// File is the decoded form of a grammar description.
type File struct {
	Options     FileOptions  `json:"options"`
	Productions []Production `json:"productions"`
}

// FileOptions are build options stored in the grammar description.
type FileOptions struct {
	IgnoreCase   bool `json:"ignoreCase"`
	NoLiteralDFA bool `json:"noLiteralDFA"`
}

// Production is one token production.
type Production struct {
	Kind       string   `json:"kind"`
	States     []string `json:"states,omitempty"`
	IgnoreCase bool     `json:"ignoreCase,omitempty"`
	Line       int      `json:"line,omitempty"`
	Specs      []Spec   `json:"specs"`
}

// Spec is one regular expression of a production. Exactly one of Literal,
// Pattern and Regex is set.
type Spec struct {
	Label      string  `json:"label,omitempty"`
	Literal    *string `json:"literal,omitempty"`
	Pattern    string  `json:"pattern,omitempty"`
	Regex      *Node   `json:"regex,omitempty"`
	Private    bool    `json:"private,omitempty"`
	IgnoreCase bool    `json:"ignoreCase,omitempty"`
	Next       string  `json:"next,omitempty"`
	Action     string  `json:"action,omitempty"`
	Line       int     `json:"line,omitempty"`
	Column     int     `json:"column,omitempty"`
}

// Node is a structured regular expression. Exactly one field is set.
type Node struct {
	Literal *string `json:"literal,omitempty"`
	Pattern string  `json:"pattern,omitempty"`
	Ref     string  `json:"ref,omitempty"`
	Choice  []Node  `json:"choice,omitempty"`
	Seq     []Node  `json:"seq,omitempty"`
	Repeat  *Repeat `json:"repeat,omitempty"`
	Class   *Class  `json:"class,omitempty"`
}

// Repeat matches Of between Min and Max times. A missing Max is unbounded.
type Repeat struct {
	Min int   `json:"min"`
	Max *int  `json:"max,omitempty"`
	Of  *Node `json:"of"`
}

// Class is a character class. Each range is a single character or "a-z".
type Class struct {
	Negated bool     `json:"negated,omitempty"`
	Ranges  []string `json:"ranges"`
}

// Load reads the grammar description at path.
func Load(path string) (*ast.Grammar, FileOptions, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, FileOptions{}, fmt.Errorf("failed to read grammar: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes a grammar description. name is used in source locations.
// Unknown fields are rejected.
func Parse(data []byte, name string) (*ast.Grammar, FileOptions, error) {
	var f File
	if err := yaml.UnmarshalStrict(data, &f); err != nil {
		return nil, FileOptions{}, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	g, err := f.Convert(name)
	if err != nil {
		return nil, FileOptions{}, err
	}
	return g, f.Options, nil
}

// Convert builds the regular expression tree. Ordinals are assigned to
// non-private specs in declaration order. Every conversion problem is
// reported.
func (f *File) Convert(name string) (*ast.Grammar, error) {
	var errs *multierror.Error
	g := &ast.Grammar{}
	ordinal := 0

	for pi, p := range f.Productions {
		kind, err := ast.ParseKind(p.Kind)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("production %d: %w", pi, err))
			continue
		}
		prod := ast.TokenProduction{
			Kind:       kind,
			LexStates:  p.States,
			IgnoreCase: p.IgnoreCase,
			Loc:        ast.Location{File: name, Line: p.Line},
		}
		for si, s := range p.Specs {
			re, err := s.regex()
			if err != nil {
				errs = multierror.Append(errs, fmt.Errorf("production %d, spec %s: %w", pi, specName(si, s), err))
				continue
			}
			re.Label = s.Label
			re.Private = s.Private
			re.IgnoreCase = re.IgnoreCase || s.IgnoreCase
			re.Loc = ast.Location{File: name, Line: s.Line, Column: s.Column}
			re.Ordinal = ast.NoOrdinal
			if !s.Private {
				re.Ordinal = ordinal
				ordinal++
			}
			prod.Specs = append(prod.Specs, ast.Spec{Regex: re, NextState: s.Next, Action: s.Action})
		}
		g.Productions = append(g.Productions, prod)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, fmt.Errorf("invalid grammar %s: %w", name, err)
	}
	return g, nil
}

func specName(i int, s Spec) string {
	if s.Label != "" {
		return s.Label
	}
	return fmt.Sprintf("#%d", i)
}

func (s Spec) regex() (*ast.Regex, error) {
	set := 0
	if s.Literal != nil {
		set++
	}
	if s.Pattern != "" {
		set++
	}
	if s.Regex != nil {
		set++
	}
	if set != 1 {
		return nil, fmt.Errorf("exactly one of literal, pattern and regex must be set")
	}

	switch {
	case s.Literal != nil:
		return literal(*s.Literal), nil
	case s.Pattern != "":
		return ParsePattern(s.Pattern)
	}
	return s.Regex.convert()
}

// literal builds a literal node from NFC-normalized text, so a decomposed
// spelling in the grammar file matches the precomposed input character.
func literal(text string) *ast.Regex {
	return ast.Lit(norm.NFC.String(text))
}

func (n *Node) convert() (*ast.Regex, error) {
	if n == nil {
		return nil, fmt.Errorf("missing node")
	}
	switch {
	case n.Literal != nil:
		return literal(*n.Literal), nil
	case n.Pattern != "":
		return ParsePattern(n.Pattern)
	case n.Ref != "":
		return ast.Ref(n.Ref), nil
	case n.Choice != nil:
		alts, err := convertAll(n.Choice)
		if err != nil {
			return nil, err
		}
		return ast.Alt(alts...), nil
	case n.Seq != nil:
		items, err := convertAll(n.Seq)
		if err != nil {
			return nil, err
		}
		return ast.Seq(items...), nil
	case n.Repeat != nil:
		sub, err := n.Repeat.Of.convert()
		if err != nil {
			return nil, fmt.Errorf("repeat: %w", err)
		}
		max := -1
		if n.Repeat.Max != nil {
			max = *n.Repeat.Max
		}
		return ast.Rep(sub, n.Repeat.Min, max), nil
	case n.Class != nil:
		ranges, err := parseRanges(n.Class.Ranges)
		if err != nil {
			return nil, err
		}
		return ast.Class(n.Class.Negated, ranges...), nil
	}
	return nil, fmt.Errorf("empty regex node")
}

func convertAll(nodes []Node) ([]*ast.Regex, error) {
	out := make([]*ast.Regex, 0, len(nodes))
	for i := range nodes {
		re, err := nodes[i].convert()
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

func parseRanges(specs []string) ([]ast.Range, error) {
	out := make([]ast.Range, 0, len(specs))
	for _, s := range specs {
		r := []rune(s)
		switch {
		case len(r) == 1:
			out = append(out, ast.Range{Lo: r[0], Hi: r[0]})
		case len(r) == 3 && r[1] == '-':
			out = append(out, ast.Range{Lo: r[0], Hi: r[2]})
		default:
			return nil, fmt.Errorf("invalid class range %q", s)
		}
	}
	return out, nil
}
