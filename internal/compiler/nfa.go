package compiler

import (
	"github.com/KromDaniel/lexgen/internal/ast"
)

// NfaState is one node of a lex state's NFA. A node either consumes one
// character and moves to Next, or is a pure epsilon node.
type NfaState struct {
	// Index is the node's position in the graph arena.
	Index int
	// ID is the dense id of a reachable character-consuming state, or
	// NoState for epsilon nodes.
	ID int

	// Chars are the normalized ranges consumed by this state.
	Chars []ast.Range
	// ASCII is the move bitmap for characters 0-127.
	ASCII [2]uint64
	// NonASCIIChars and NonASCIIRanges hold the moves above 127.
	NonASCIIChars  []rune
	NonASCIIRanges []ast.Range
	// Next is the arena index reached after consuming a character.
	Next int
	// Epsilon lists arena indices reachable without consuming input.
	Epsilon []int
	// Kind is the ordinal accepted when this node is reached, or NoKind.
	Kind int

	// NextSet is the resolved id of the epsilon closure of Next, or NoState
	// when no consuming state follows.
	NextSet int
	// MatchKind is the ordinal matched after consuming from this state.
	MatchKind int
	// InNextOf counts the distinct resolved state sets containing this state.
	InNextOf int
	// IsComposite is set when the state belongs to a multi-member set;
	// CompositeStates holds the members of the last such set.
	IsComposite     bool
	CompositeStates []int

	round       int
	closure     []int
	closureKind int
	nextMembers []int
}

// Consumes reports whether the state moves on a character.
func (s *NfaState) Consumes() bool {
	return s.Next != NoState
}

// Accepts reports whether the state consumes c.
func (s *NfaState) Accepts(c rune) bool {
	return s.Consumes() && rangesContain(s.Chars, c)
}

// Graph is the arena holding every NFA node of one lex state.
type Graph struct {
	Nodes []*NfaState
	// Initial is the arena index of the root epsilon node.
	Initial int
	// States lists the consuming states by dense id.
	States []*NfaState

	marks []int
	stamp int
}

func newGraph() *Graph {
	g := &Graph{}
	g.Initial = g.newNode().Index
	return g
}

func (g *Graph) newNode() *NfaState {
	s := &NfaState{
		Index:       len(g.Nodes),
		ID:          NoState,
		Next:        NoState,
		Kind:        NoKind,
		NextSet:     NoState,
		MatchKind:   NoKind,
		round:       -1,
		closureKind: NoKind,
	}
	g.Nodes = append(g.Nodes, s)
	return s
}

func (g *Graph) addEpsilon(from, to int) {
	node := g.Nodes[from]
	for _, e := range node.Epsilon {
		if e == to {
			return
		}
	}
	node.Epsilon = append(node.Epsilon, to)
}

// nextStamp returns a fresh visit marker for graph walks.
func (g *Graph) nextStamp() int {
	if len(g.marks) != len(g.Nodes) {
		g.marks = make([]int, len(g.Nodes))
	}
	g.stamp++
	return g.stamp
}

// assignIDs numbers the consuming states reachable from the initial node in
// arena order and fills in their move bitmaps.
func (g *Graph) assignIDs() int {
	stamp := g.nextStamp()
	stack := []int{g.Initial}
	g.marks[g.Initial] = stamp
	for len(stack) > 0 {
		n := g.Nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]
		targets := n.Epsilon
		if n.Consumes() {
			targets = append(append([]int(nil), targets...), n.Next)
		}
		for _, t := range targets {
			if g.marks[t] != stamp {
				g.marks[t] = stamp
				stack = append(stack, t)
			}
		}
	}

	g.States = g.States[:0]
	for _, n := range g.Nodes {
		if g.marks[n.Index] != stamp || !n.Consumes() {
			continue
		}
		n.ID = len(g.States)
		n.ASCII = asciiWords(n.Chars)
		n.NonASCIIChars, n.NonASCIIRanges = splitNonASCII(n.Chars)
		g.States = append(g.States, n)
	}
	return len(g.States)
}

// fragment is a Thompson sub-automaton entered at start and left at end.
type fragment struct {
	start, end int
}

// nfaBuilder performs Thompson construction of regular expressions into a
// graph. References are expanded inline from defs.
type nfaBuilder struct {
	g      *Graph
	defs   map[string]*ast.Regex
	active map[string]bool
}

func newNfaBuilder(g *Graph, defs map[string]*ast.Regex) *nfaBuilder {
	return &nfaBuilder{g: g, defs: defs, active: make(map[string]bool)}
}

// build returns the fragment for re. It reports false when re contains an
// unresolvable reference; such regular expressions are rejected before
// construction, so this only guards against recursion.
func (b *nfaBuilder) build(re *ast.Regex, ignoreCase bool) (fragment, bool) {
	ignoreCase = ignoreCase || re.IgnoreCase

	switch n := re.Node.(type) {
	case *ast.Literal:
		return b.buildLiteral(n.Text, ignoreCase), true

	case *ast.CharClass:
		return b.consume(classRanges(n, ignoreCase)), true

	case *ast.Choice:
		if len(n.Alts) == 1 {
			return b.build(n.Alts[0], ignoreCase)
		}
		f := b.pair()
		for _, alt := range n.Alts {
			sub, ok := b.build(alt, ignoreCase)
			if !ok {
				return fragment{}, false
			}
			b.g.addEpsilon(f.start, sub.start)
			b.g.addEpsilon(sub.end, f.end)
		}
		return f, true

	case *ast.Sequence:
		if len(n.Items) == 0 {
			return b.empty(), true
		}
		var f fragment
		for i, item := range n.Items {
			sub, ok := b.build(item, ignoreCase)
			if !ok {
				return fragment{}, false
			}
			if i == 0 {
				f = sub
				continue
			}
			b.g.addEpsilon(f.end, sub.start)
			f.end = sub.end
		}
		return f, true

	case *ast.Repetition:
		return b.buildRepetition(n, ignoreCase)

	case *ast.Reference:
		def, ok := b.defs[n.Name]
		if !ok || b.active[n.Name] {
			return fragment{}, false
		}
		b.active[n.Name] = true
		defer delete(b.active, n.Name)
		return b.build(def, ignoreCase)
	}
	return fragment{}, false
}

func (b *nfaBuilder) buildLiteral(text string, ignoreCase bool) fragment {
	if text == "" {
		return b.empty()
	}
	var f fragment
	for i, c := range text {
		sub := b.consume(charRanges(c, ignoreCase))
		if i == 0 {
			f = sub
			continue
		}
		b.g.addEpsilon(f.end, sub.start)
		f.end = sub.end
	}
	return f
}

func (b *nfaBuilder) buildRepetition(n *ast.Repetition, ignoreCase bool) (fragment, bool) {
	switch {
	case n.Min == 0 && n.Max == 1:
		sub, ok := b.build(n.Sub, ignoreCase)
		if !ok {
			return fragment{}, false
		}
		f := b.pair()
		b.g.addEpsilon(f.start, sub.start)
		b.g.addEpsilon(f.start, f.end)
		b.g.addEpsilon(sub.end, f.end)
		return f, true

	case n.Min == 0 && n.Max < 0:
		sub, ok := b.build(n.Sub, ignoreCase)
		if !ok {
			return fragment{}, false
		}
		f := b.pair()
		b.g.addEpsilon(f.start, sub.start)
		b.g.addEpsilon(f.start, f.end)
		b.g.addEpsilon(sub.end, f.end)
		b.g.addEpsilon(sub.end, sub.start)
		return f, true

	case n.Min == 1 && n.Max < 0:
		sub, ok := b.build(n.Sub, ignoreCase)
		if !ok {
			return fragment{}, false
		}
		f := b.pair()
		b.g.addEpsilon(f.start, sub.start)
		b.g.addEpsilon(sub.end, sub.start)
		b.g.addEpsilon(sub.end, f.end)
		return f, true
	}

	// General bounds expand to Min mandatory copies followed by either one
	// unbounded copy or Max-Min optional copies.
	var parts []*ast.Regex
	mandatory := n.Min
	if n.Max < 0 && mandatory > 0 {
		mandatory--
	}
	for i := 0; i < mandatory; i++ {
		parts = append(parts, n.Sub)
	}
	switch {
	case n.Max < 0 && n.Min > 0:
		parts = append(parts, ast.Rep(n.Sub, 1, -1))
	case n.Max < 0:
		parts = append(parts, ast.Rep(n.Sub, 0, -1))
	default:
		for i := n.Min; i < n.Max; i++ {
			parts = append(parts, ast.Rep(n.Sub, 0, 1))
		}
	}
	return b.build(ast.Seq(parts...), ignoreCase)
}

// consume returns a fragment moving from start to end on ranges. An empty
// range set yields a fragment whose end is unreachable.
func (b *nfaBuilder) consume(ranges []ast.Range) fragment {
	if len(ranges) == 0 {
		return b.pair()
	}
	start := b.g.newNode()
	end := b.g.newNode()
	start.Chars = ranges
	start.Next = end.Index
	return fragment{start: start.Index, end: end.Index}
}

func (b *nfaBuilder) pair() fragment {
	start := b.g.newNode()
	end := b.g.newNode()
	return fragment{start: start.Index, end: end.Index}
}

func (b *nfaBuilder) empty() fragment {
	f := b.pair()
	b.g.addEpsilon(f.start, f.end)
	return f
}
