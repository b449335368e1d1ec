package compiler

import (
	"sort"
)

// BuildContext holds the counters that span one table build: the closure
// round tag and the next dummy id handed out to composite state sets.
type BuildContext struct {
	round     int
	nextDummy int
	vectors   *VectorCache
	logger    *Logger
}

// NewBuildContext returns a context with an empty vector cache.
func NewBuildContext(logger *Logger) *BuildContext {
	if logger == nil {
		logger = NewLogger(false)
	}
	return &BuildContext{vectors: NewVectorCache(), logger: logger}
}

// beginLexState starts a new closure round and places dummy ids after the
// lex state's dense range.
func (ctx *BuildContext) beginLexState(generatedStates int) {
	ctx.round++
	ctx.nextDummy = generatedStates
}

// allocDummy returns a fresh composite id past the dense range.
func (ctx *BuildContext) allocDummy() int {
	id := ctx.nextDummy
	ctx.nextDummy++
	return id
}

// closure returns the sorted dense ids of the consuming states reachable
// from node without consuming input, and the lowest ordinal accepted on
// the way. Results are cached on the node for the current round.
func (ctx *BuildContext) closure(g *Graph, node int) ([]int, int) {
	n := g.Nodes[node]
	if n.round == ctx.round {
		return n.closure, n.closureKind
	}

	stamp := g.nextStamp()
	var members []int
	kind := NoKind
	stack := []int{node}
	g.marks[node] = stamp
	for len(stack) > 0 {
		cur := g.Nodes[stack[len(stack)-1]]
		stack = stack[:len(stack)-1]
		if cur.Kind != NoKind && (kind == NoKind || cur.Kind < kind) {
			kind = cur.Kind
		}
		if cur.Consumes() && cur.ID != NoState {
			members = append(members, cur.ID)
		}
		for _, e := range cur.Epsilon {
			if g.marks[e] != stamp {
				g.marks[e] = stamp
				stack = append(stack, e)
			}
		}
	}
	sort.Ints(members)

	n.round = ctx.round
	n.closure = members
	n.closureKind = kind
	return members, kind
}

// moveFromSet returns the closure reached from the states in set on c,
// and the lowest ordinal matched by that move.
func (ctx *BuildContext) moveFromSet(g *Graph, set []int, c rune) ([]int, int) {
	kind := NoKind
	var next []int
	for _, id := range set {
		s := g.States[id]
		if !s.Accepts(c) {
			continue
		}
		members, k := ctx.closure(g, s.Next)
		next = append(next, members...)
		if k != NoKind && (kind == NoKind || k < kind) {
			kind = k
		}
	}
	return uniqueSorted(next), kind
}

func uniqueSorted(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	sort.Ints(ids)
	out := ids[:1]
	for _, id := range ids[1:] {
		if id != out[len(out)-1] {
			out = append(out, id)
		}
	}
	return out
}
