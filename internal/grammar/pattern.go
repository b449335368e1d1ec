package grammar

import (
	"fmt"
	"regexp/syntax"

	"github.com/KromDaniel/lexgen/internal/ast"
)

// ParsePattern converts a regexp/syntax pattern (Perl flags) into a regular
// expression tree. Anchors and word boundaries have no lexer meaning and
// are rejected. Characters above the 16-bit range are dropped from classes
// and rejected in literals.
func ParsePattern(pattern string) (*ast.Regex, error) {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse pattern: %w", err)
	}
	out, err := convertSyntax(re)
	if err != nil {
		return nil, fmt.Errorf("pattern %q: %w", pattern, err)
	}
	return out, nil
}

func convertSyntax(re *syntax.Regexp) (*ast.Regex, error) {
	switch re.Op {
	case syntax.OpNoMatch:
		return ast.Class(false), nil

	case syntax.OpEmptyMatch:
		return ast.Seq(), nil

	case syntax.OpLiteral:
		for _, r := range re.Rune {
			if r > ast.MaxChar {
				return nil, fmt.Errorf("character %U is outside the 16-bit range", r)
			}
		}
		lit := ast.Lit(string(re.Rune))
		lit.IgnoreCase = re.Flags&syntax.FoldCase != 0
		return lit, nil

	case syntax.OpCharClass:
		var ranges []ast.Range
		for i := 0; i+1 < len(re.Rune); i += 2 {
			lo, hi := re.Rune[i], re.Rune[i+1]
			if lo > ast.MaxChar {
				break
			}
			if hi > ast.MaxChar {
				hi = ast.MaxChar
			}
			ranges = append(ranges, ast.Range{Lo: lo, Hi: hi})
		}
		return ast.Class(false, ranges...), nil

	case syntax.OpAnyCharNotNL:
		return ast.Class(true, ast.Range{Lo: '\n', Hi: '\n'}), nil

	case syntax.OpAnyChar:
		return ast.Class(true), nil

	case syntax.OpCapture:
		return convertSyntax(re.Sub[0])

	case syntax.OpStar:
		return repeat(re.Sub[0], 0, -1)
	case syntax.OpPlus:
		return repeat(re.Sub[0], 1, -1)
	case syntax.OpQuest:
		return repeat(re.Sub[0], 0, 1)
	case syntax.OpRepeat:
		return repeat(re.Sub[0], re.Min, re.Max)

	case syntax.OpConcat, syntax.OpAlternate:
		subs := make([]*ast.Regex, 0, len(re.Sub))
		for _, s := range re.Sub {
			sub, err := convertSyntax(s)
			if err != nil {
				return nil, err
			}
			subs = append(subs, sub)
		}
		if re.Op == syntax.OpConcat {
			return ast.Seq(subs...), nil
		}
		return ast.Alt(subs...), nil
	}
	return nil, fmt.Errorf("unsupported construct %s", re.Op)
}

func repeat(sub *syntax.Regexp, min, max int) (*ast.Regex, error) {
	s, err := convertSyntax(sub)
	if err != nil {
		return nil, err
	}
	return ast.Rep(s, min, max), nil
}
