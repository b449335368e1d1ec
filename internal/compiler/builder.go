package compiler

import (
	"strings"

	"github.com/KromDaniel/lexgen/internal/ast"
	"github.com/KromDaniel/lexgen/internal/diag"
)

// entry is one regular expression built into one lex state.
type entry struct {
	re         *ast.Regex
	ignoreCase bool
}

// builder runs one table build over a grammar.
type builder struct {
	grammar *ast.Grammar
	opts    Options
	sink    *diag.Sink
	logger  *Logger
	ctx     *BuildContext

	stateNames []string
	stateIndex map[string]int
	entries    [][]entry

	defs     map[string]*ast.Regex
	defOrder []string

	n          int
	regexes    []*ast.Regex
	kinds      []ast.Kind
	lexStateOf []int
	next       []int
	actions    []string
	ignoreCase []bool
	locs       []ast.Location
	shadowed   map[[2]int]bool

	toSkip, toMore, toToken, toSpecial Bitset
	flags                              Flags
}

func newBuilder(g *ast.Grammar, opts Options, sink *diag.Sink, logger *Logger) *builder {
	return &builder{
		grammar:    g,
		opts:       opts,
		sink:       sink,
		logger:     logger,
		ctx:        NewBuildContext(logger),
		stateIndex: make(map[string]int),
		defs:       make(map[string]*ast.Regex),
		shadowed:   make(map[[2]int]bool),
	}
}

// warnShadowed reports that ordinal o is always claimed by winner. A pair is
// reported once however many lex states declare o.
func (b *builder) warnShadowed(o, winner int, format string, args ...any) {
	key := [2]int{o, winner}
	if b.shadowed[key] {
		return
	}
	b.shadowed[key] = true
	b.sink.Warnf(b.locs[o], format, args...)
}

func (b *builder) addLexState(name string) {
	if _, ok := b.stateIndex[name]; ok {
		return
	}
	b.stateIndex[name] = len(b.stateNames)
	b.stateNames = append(b.stateNames, name)
}

// expandStates resolves a production's lex state list, where "*" names
// every declared lex state.
func (b *builder) expandStates(p *ast.TokenProduction) []string {
	var out []string
	seen := make(map[string]bool)
	for _, s := range p.States() {
		names := []string{s}
		if s == ast.AllLexStates {
			names = b.stateNames
		}
		for _, name := range names {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	return out
}

func specLoc(re *ast.Regex, p *ast.TokenProduction) ast.Location {
	if re != nil && (re.Loc.Line != 0 || re.Loc.File != "") {
		return re.Loc
	}
	return p.Loc
}

// collect assigns lex states, validates the grammar and fills the
// per-ordinal tables. Problems are reported to the sink.
func (b *builder) collect() {
	if b.grammar == nil {
		b.sink.Errorf(ast.Location{}, "no grammar")
		return
	}
	prods := b.grammar.Productions

	for i := range prods {
		for _, s := range prods[i].States() {
			if s != ast.AllLexStates {
				b.addLexState(s)
			}
		}
	}
	if len(b.stateNames) == 0 {
		b.addLexState(ast.DefaultLexState)
	}
	b.entries = make([][]entry, len(b.stateNames))

	// Size the ordinal tables and register labels.
	for i := range prods {
		p := &prods[i]
		for _, spec := range p.Specs {
			re := spec.Regex
			if re == nil {
				b.sink.Errorf(p.Loc, "%s production has a missing regular expression", p.Kind)
				continue
			}
			if re.Label != "" {
				if _, dup := b.defs[re.Label]; dup {
					b.sink.Errorf(specLoc(re, p), "duplicate label %q", re.Label)
				} else {
					b.defs[re.Label] = re
					b.defOrder = append(b.defOrder, re.Label)
				}
			}
			if !re.Private && re.Ordinal >= b.n {
				b.n = re.Ordinal + 1
			}
		}
	}
	b.allocOrdinals()

	for i := range prods {
		p := &prods[i]
		states := b.expandStates(p)
		for _, spec := range p.Specs {
			if spec.Regex != nil {
				b.collectSpec(p, spec, states)
			}
		}
	}

	for o, re := range b.regexes {
		if re == nil {
			b.sink.Errorf(ast.Location{}, "ordinal %d is not assigned to any regular expression", o)
		}
	}
	b.checkReferences()
}

func (b *builder) allocOrdinals() {
	b.regexes = make([]*ast.Regex, b.n)
	b.kinds = make([]ast.Kind, b.n)
	b.lexStateOf = make([]int, b.n)
	b.next = make([]int, b.n)
	b.actions = make([]string, b.n)
	b.ignoreCase = make([]bool, b.n)
	b.locs = make([]ast.Location, b.n)
	for i := range b.next {
		b.next[i] = NoState
		b.lexStateOf[i] = NoState
	}
	b.toSkip = NewBitset(b.n)
	b.toMore = NewBitset(b.n)
	b.toToken = NewBitset(b.n)
	b.toSpecial = NewBitset(b.n)
}

func (b *builder) collectSpec(p *ast.TokenProduction, spec ast.Spec, states []string) {
	re := spec.Regex
	loc := specLoc(re, p)
	b.checkNode(re, loc)

	if spec.NextState != "" {
		if _, ok := b.stateIndex[spec.NextState]; !ok {
			b.sink.Errorf(loc, "lexical state %q has not been defined", spec.NextState)
		}
	}

	if re.Private {
		if re.Label == "" {
			b.sink.Errorf(loc, "private regular expression must have a label")
		}
		if spec.Action != "" {
			b.sink.Errorf(loc, "private regular expression %s cannot have an action", re.Name())
		}
		if spec.NextState != "" {
			b.sink.Errorf(loc, "private regular expression %s cannot change the lexical state", re.Name())
		}
		return
	}

	o := re.Ordinal
	if o < 0 {
		b.sink.Errorf(loc, "regular expression %s has no ordinal", re.Name())
		return
	}
	if prev := b.regexes[o]; prev != nil {
		if prev != re {
			b.sink.Errorf(loc, "ordinal %d is already used by %s", o, prev.Name())
		} else {
			b.sink.Errorf(loc, "regular expression %s is declared twice", re.Name())
		}
		return
	}

	ic := re.IgnoreCase || p.IgnoreCase || b.opts.IgnoreCase
	b.regexes[o] = re
	b.kinds[o] = p.Kind
	b.actions[o] = spec.Action
	b.ignoreCase[o] = ic
	b.locs[o] = loc
	if idx, ok := b.stateIndex[spec.NextState]; ok {
		b.next[o] = idx
	}
	if len(states) > 0 {
		b.lexStateOf[o] = b.stateIndex[states[0]]
	}
	for _, s := range states {
		idx := b.stateIndex[s]
		b.entries[idx] = append(b.entries[idx], entry{re: re, ignoreCase: ic})
	}

	hasAction := spec.Action != ""
	switch p.Kind {
	case ast.KindSkip:
		b.toSkip.Set(o)
		b.flags.HasSkip = true
		b.flags.HasSkipActions = b.flags.HasSkipActions || hasAction
	case ast.KindSpecial:
		b.toSkip.Set(o)
		b.toSpecial.Set(o)
		b.flags.HasSpecial = true
		b.flags.HasSkipActions = b.flags.HasSkipActions || hasAction
	case ast.KindMore:
		b.toMore.Set(o)
		b.flags.HasMore = true
		b.flags.HasMoreActions = b.flags.HasMoreActions || hasAction
	default:
		b.toToken.Set(o)
		b.flags.HasTokenActions = b.flags.HasTokenActions || hasAction
	}
}

// checkNode reports malformed nodes in the tree rooted at re.
func (b *builder) checkNode(re *ast.Regex, loc ast.Location) {
	if re == nil || re.Node == nil {
		b.sink.Errorf(loc, "missing regular expression")
		return
	}
	switch n := re.Node.(type) {
	case *ast.Literal:
		for _, c := range n.Text {
			if c > ast.MaxChar {
				b.sink.Errorf(loc, "character %U in %q is outside the 16-bit range", c, n.Text)
				return
			}
		}
	case *ast.CharClass:
		for _, r := range n.Ranges {
			switch {
			case r.Lo > r.Hi:
				b.sink.Errorf(loc, "invalid character range %q-%q", r.Lo, r.Hi)
			case r.Lo < 0 || r.Hi > ast.MaxChar:
				b.sink.Errorf(loc, "character range %U-%U is outside the 16-bit range", r.Lo, r.Hi)
			}
		}
	case *ast.Choice:
		if len(n.Alts) == 0 {
			b.sink.Errorf(loc, "choice has no alternatives")
		}
		for _, alt := range n.Alts {
			b.checkNode(alt, loc)
		}
	case *ast.Sequence:
		for _, item := range n.Items {
			b.checkNode(item, loc)
		}
	case *ast.Repetition:
		if n.Min < 0 || (n.Max >= 0 && n.Max < n.Min) {
			b.sink.Errorf(loc, "invalid repetition bounds {%d,%d}", n.Min, n.Max)
		}
		b.checkNode(n.Sub, loc)
	case *ast.Reference:
		if n.Name == "" {
			b.sink.Errorf(loc, "reference has no name")
		}
	}
}

// checkReferences reports undefined labels and reference cycles.
func (b *builder) checkReferences() {
	edges := make(map[string][]string)
	report := func(re *ast.Regex, owner string, loc ast.Location) {
		walkReferences(re, func(name string) {
			if _, ok := b.defs[name]; !ok {
				b.sink.Errorf(loc, "undefined label %q", name)
				return
			}
			if owner != "" {
				edges[owner] = append(edges[owner], name)
			}
		})
	}
	for i := range b.grammar.Productions {
		p := &b.grammar.Productions[i]
		for _, spec := range p.Specs {
			re := spec.Regex
			if re == nil {
				continue
			}
			owner := ""
			if re.Label != "" && b.defs[re.Label] == re {
				owner = re.Label
			}
			report(re, owner, specLoc(re, p))
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	color := make(map[string]int)
	var visit func(name string, path []string) bool
	visit = func(name string, path []string) bool {
		switch color[name] {
		case visiting:
			b.sink.Errorf(b.defs[name].Loc, "label %q is defined in terms of itself (%s)", name, cyclePath(path, name))
			return true
		case done:
			return false
		}
		color[name] = visiting
		path = append(path, name)
		for _, to := range edges[name] {
			if visit(to, path) {
				color[name] = done
				return true
			}
		}
		color[name] = done
		return false
	}
	for _, name := range b.defOrder {
		if color[name] == unvisited {
			visit(name, nil)
		}
	}
}

func cyclePath(path []string, back string) string {
	start := 0
	for i, p := range path {
		if p == back {
			start = i
			break
		}
	}
	return strings.Join(append(append([]string(nil), path[start:]...), back), " -> ")
}

// walkReferences calls fn for every reference name in the tree rooted at re.
func walkReferences(re *ast.Regex, fn func(string)) {
	if re == nil {
		return
	}
	switch n := re.Node.(type) {
	case *ast.Reference:
		fn(n.Name)
	case *ast.Choice:
		for _, alt := range n.Alts {
			walkReferences(alt, fn)
		}
	case *ast.Sequence:
		for _, item := range n.Items {
			walkReferences(item, fn)
		}
	case *ast.Repetition:
		walkReferences(n.Sub, fn)
	}
}

// build constructs the tables of every lex state and runs the post-build
// diagnostics.
func (b *builder) build() *Tables {
	t := &Tables{
		stateNames: b.stateNames,
		stateIndex: b.stateIndex,
		regexes:    b.regexes,
		kinds:      b.kinds,
		lexStateOf: b.lexStateOf,
		next:       b.next,
		actions:    b.actions,
		ignoreCase: b.ignoreCase,
		toSkip:     b.toSkip,
		toMore:     b.toMore,
		toToken:    b.toToken,
		toSpecial:  b.toSpecial,
		vectors:    b.ctx.vectors,
		flags:      b.flags,
	}
	for i := range b.stateNames {
		t.states = append(t.states, b.buildLexState(i))
	}

	b.logger.Section("diagnostics")
	checkEmptyMatchLoops(t, b.locs, b.sink)
	for _, st := range t.states {
		checkChoices(t, st, b.defs, b.warnShadowed)
		if st.CanLoop {
			t.flags.HasLoop = true
		}
		if st.CanMatchAnyChar != NoKind {
			t.flags.HasAnyChar = true
		}
	}
	return t
}

func (b *builder) buildLexState(idx int) *StateTables {
	name := b.stateNames[idx]
	b.logger.Section("lex state " + name)

	st := &StateTables{
		Name:            name,
		Index:           idx,
		InitialSet:      NoState,
		InitMatch:       NoKind,
		CanMatchAnyChar: NoKind,
	}
	g := newGraph()
	nb := newNfaBuilder(g, b.defs)
	lits := newLiteralTable(b.n, b.opts.IgnoreCase)
	var sensitive, insensitive bool

	for _, e := range b.entries[idx] {
		re := e.re
		if lit, ok := re.Node.(*ast.Literal); ok && lit.Text != "" && !b.opts.NoLiteralDFA {
			lits.insert(re.Ordinal, lit.Text, e.ignoreCase)
			if e.ignoreCase {
				insensitive = true
			} else {
				sensitive = true
			}
			continue
		}
		if re.MatchesAnyChar() {
			if st.CanMatchAnyChar == NoKind || re.Ordinal < st.CanMatchAnyChar {
				st.CanMatchAnyChar = re.Ordinal
			}
			continue
		}
		f, ok := nb.build(re, e.ignoreCase)
		if !ok {
			panic(internalf("unresolved reference in %s", re.Name()))
		}
		g.Nodes[f.end].Kind = re.Ordinal
		g.addEpsilon(g.Initial, f.start)
		if ch, ok := re.Node.(*ast.Choice); ok {
			st.Choices = append(st.Choices, ChoiceInfo{Regex: re, Choice: ch})
		}
	}
	st.Mixed = sensitive && insensitive && !b.opts.IgnoreCase

	generated := g.assignIDs()
	b.ctx.beginLexState(generated)
	st.Graph = g
	st.States = g.States
	st.GeneratedStates = generated
	b.logger.Log("nfa built", "state", name, "nodes", len(g.Nodes), "generated", generated, "literals", len(lits.Ordinals()))

	st.InitialStates, st.InitMatch = b.ctx.closure(g, g.Initial)
	for _, s := range g.States {
		s.nextMembers, s.MatchKind = b.ctx.closure(g, s.Next)
	}

	lits.fillSubstrings(st.Mixed)
	b.literalResume(st, lits)
	st.Literals = lits

	ct := newCompositeTable(b.ctx, g.States)
	ct.Gather(st.InitialStates)
	for _, s := range g.States {
		ct.Gather(s.nextMembers)
	}
	for pos := 0; pos < len(lits.resume); pos++ {
		for _, e := range lits.resume[pos] {
			ct.Gather(e.States)
		}
	}

	if len(st.InitialStates) > 0 {
		st.InitialSet = ct.Resolve(st.InitialStates)
	}
	for _, s := range g.States {
		if len(s.nextMembers) > 0 {
			s.NextSet = ct.Resolve(s.nextMembers)
		}
	}
	for pos := range lits.resume {
		for i := range lits.resume[pos] {
			if e := &lits.resume[pos][i]; len(e.States) > 0 {
				e.StateSet = ct.Resolve(e.States)
			}
		}
	}
	st.Composites = ct
	st.Moves, st.CompositeMoves = partitionStates(b.ctx, g.States, ct.Composites())
	b.logger.Log("state sets resolved", "state", name, "sets", ct.Len(), "composites", len(ct.Composites()))
	return st
}

// literalResume simulates the NFA over every literal prefix to find where
// matching continues once the literal table stops, and reports literals
// that can never be matched as themselves.
func (b *builder) literalResume(st *StateTables, lits *LiteralTable) {
	rb := &resumeBuilder{t: lits}
	for _, o := range lits.Ordinals() {
		image, _ := lits.Image(o)
		if sk := lits.StrKind(image); sk != NoKind && sk < o {
			b.warnShadowed(o, sk, "string literal %q cannot be matched as a string literal token; it will be matched as %s",
				image, b.regexes[sk].Name())
			continue
		}

		old := st.InitialStates
		kind, matchedPos := NoKind, 0
		chars := []rune(image)
		for j, c := range chars {
			var states []int
			k := NoKind
			if len(old) > 0 {
				states, k = b.ctx.moveFromSet(st.Graph, old, c)
			}
			if j == 0 && st.CanMatchAnyChar != NoKind && (k == NoKind || st.CanMatchAnyChar < k) {
				k = st.CanMatchAnyChar
			}
			// A literal spelling this prefix with a lower ordinal owns it.
			if sk := lits.StrKind(string(chars[:j+1])); sk != NoKind && (k == NoKind || sk < k) {
				k = NoKind
				kind, matchedPos = NoKind, 0
			}
			if k != NoKind {
				kind, matchedPos = k, j
			}
			if kind == NoKind && len(states) == 0 {
				break
			}
			rb.add(j, kind, matchedPos, states, o)

			if j == len(chars)-1 && k != NoKind && k < o {
				b.warnShadowed(o, k, "string literal %q cannot be matched as a string literal token; it will be matched as %s",
					image, b.regexes[k].Name())
			}
			old = states
		}
	}
}
