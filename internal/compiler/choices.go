package compiler

import (
	"github.com/KromDaniel/lexgen/internal/ast"
)

// checkChoices warns about alternatives of top-level choices that an
// earlier regular expression of the same lex state always claims first.
// The alternatives stay in the NFA.
func checkChoices(t *Tables, st *StateTables, defs map[string]*ast.Regex, warn func(o, winner int, format string, args ...any)) {
	for _, c := range st.Choices {
		o := c.Regex.Ordinal
		for _, alt := range c.Choice.Alts {
			if alt == nil {
				continue
			}
			winner := NoKind
			switch n := alt.Node.(type) {
			case *ast.Reference:
				def, ok := defs[n.Name]
				if ok && !def.Private && def.Ordinal >= 0 && def.Ordinal < o && t.lexStateOf[def.Ordinal] == st.Index {
					winner = def.Ordinal
				}
			case *ast.Literal:
				if st.Literals != nil {
					if k := st.Literals.StrKind(n.Text); k != NoKind && k < o {
						winner = k
					}
				}
			}
			if winner == NoKind {
				continue
			}
			warn(o, winner, "regular expression choice %s can never be matched as %s",
				t.regexes[winner].Name(), c.Regex.Name())
		}
	}
}
