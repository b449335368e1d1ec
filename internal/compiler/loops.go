package compiler

import (
	"strings"

	"github.com/KromDaniel/lexgen/internal/ast"
	"github.com/KromDaniel/lexgen/internal/diag"
)

// emptyMatch reports whether lex state st can match the empty string with
// no single-character fallback to consume input instead.
func emptyMatch(st *StateTables) bool {
	return st.InitMatch != NoKind && st.CanMatchAnyChar == NoKind
}

// checkEmptyMatchLoops warns about lex states whose empty match leads, by
// following next lex states, back to an already visited lex state without
// consuming input. States on a reported chain are marked CanLoop.
func checkEmptyMatchLoops(t *Tables, locs []ast.Location, sink *diag.Sink) {
	done := make([]bool, len(t.states))
	for i, st := range t.states {
		if done[i] || !emptyMatch(st) {
			continue
		}
		done[i] = true

		seen := make([]bool, len(t.states))
		seen[i] = true
		chain := []string{st.Name}
		var others []string
		j := i
		looping := true
		for {
			next := t.next[t.states[j].InitMatch]
			if next == NoState {
				chain = append(chain, t.states[j].Name)
				break
			}
			chain = append(chain, t.stateNames[next])
			j = next
			if seen[j] {
				break
			}
			done[j] = true
			seen[j] = true
			if !emptyMatch(t.states[j]) {
				looping = false
				break
			}
			others = append(others, describeRegex(t, t.states[j].InitMatch, locs))
		}
		if !looping {
			continue
		}

		for k, s := range seen {
			if s {
				t.states[k].CanLoop = true
			}
		}
		o := st.InitMatch
		subject := "regular expression"
		if label := t.regexes[o].Label; label != "" {
			subject += " for " + label
		}
		if len(others) == 0 {
			sink.Warnf(locs[o], "%s can be matched by the empty string in lexical state %s; this can result in an endless loop of empty string matches",
				subject, st.Name)
			continue
		}
		sink.Warnf(locs[o], "%s can be matched by the empty string in lexical state %s; together with %s it forms the cycle %s of empty matches, which can result in an endless loop",
			subject, st.Name, strings.Join(others, "; "), strings.Join(chain, "-->"))
	}
}

func describeRegex(t *Tables, ordinal int, locs []ast.Location) string {
	name := t.regexes[ordinal].Name()
	if loc := locs[ordinal].String(); loc != "" {
		return name + " at " + loc
	}
	return name
}
