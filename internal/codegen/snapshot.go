package codegen

import (
	"fmt"
	"io"

	"github.com/dave/jennifer/jen"

	"github.com/KromDaniel/lexgen/internal/compiler"
)

// Config controls snapshot rendering.
type Config struct {
	Package string // Go package of the rendered file
	Prefix  string // Prefix of every rendered identifier, DefaultPrefix when empty
	Source  string // Grammar file named in the header comment
}

type snapshot struct {
	cfg    Config
	tables *compiler.Tables
	file   *jen.File
}

// Generate renders tables as a Go file holding one declaration per table.
func Generate(tables *compiler.Tables, cfg Config) (*jen.File, error) {
	if tables == nil {
		return nil, fmt.Errorf("no tables to render")
	}
	if cfg.Package == "" {
		return nil, fmt.Errorf("package name is required")
	}
	if cfg.Prefix == "" {
		cfg.Prefix = DefaultPrefix
	}
	s := &snapshot{cfg: cfg, tables: tables, file: jen.NewFile(cfg.Package)}
	s.header()
	s.types()
	s.ordinals()
	s.perOrdinal()
	s.moves()
	s.lexStates()
	return s.file, nil
}

// Render writes the rendered snapshot to w.
func Render(w io.Writer, tables *compiler.Tables, cfg Config) error {
	f, err := Generate(tables, cfg)
	if err != nil {
		return err
	}
	if err := f.Render(w); err != nil {
		return fmt.Errorf("failed to render snapshot: %w", err)
	}
	return nil
}

// Save writes the rendered snapshot to path.
func Save(path string, tables *compiler.Tables, cfg Config) error {
	f, err := Generate(tables, cfg)
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (s *snapshot) id(name string) string {
	return s.cfg.Prefix + name
}

func (s *snapshot) header() {
	if s.cfg.Source != "" {
		s.file.HeaderComment(fmt.Sprintf("Code generated by lexgen from %s. DO NOT EDIT.", s.cfg.Source))
	} else {
		s.file.HeaderComment("Code generated by lexgen. DO NOT EDIT.")
	}
}

func (s *snapshot) types() {
	s.file.Comment(s.id(NfaStateType) + " is one consuming NFA state.")
	s.file.Type().Id(s.id(NfaStateType)).Struct(
		jen.Id("ASCII").Index(jen.Lit(2)).Uint64(),
		jen.Id("Method").Int().Comment("index into "+s.id(MethodsName)+", or -1"),
		jen.Id("Next").Int().Comment("state set entered after a move, or -1"),
		jen.Id("Kind").Int().Comment("ordinal matched after a move, or "+s.id(NoKindName)),
	)

	s.file.Comment(s.id(CompositeType) + " is a multi-member state set.")
	s.file.Type().Id(s.id(CompositeType)).Struct(
		jen.Id("ID").Int(),
		jen.Id("Members").Index().Int(),
		jen.Id("ASCII").Index(jen.Lit(2)).Uint64(),
	)

	s.file.Comment(s.id(LiteralType) + " is the literal automaton entry for one character at one position.")
	s.file.Type().Id(s.id(LiteralType)).Struct(
		jen.Id("Pos").Int(),
		jen.Id("Char").Rune(),
		jen.Id("Valid").Index().Uint64(),
		jen.Id("Final").Index().Uint64(),
	)

	s.file.Comment(s.id(ResumeType) + " is where the NFA resumes after the literal automaton stops.")
	s.file.Type().Id(s.id(ResumeType)).Struct(
		jen.Id("Pos").Int(),
		jen.Id("Kind").Int(),
		jen.Id("MatchedPos").Int(),
		jen.Id("StateSet").Int(),
		jen.Id("Literals").Index().Uint64(),
	)

	s.file.Comment(s.id(LexStateType) + " holds the tables of one lexical state.")
	s.file.Type().Id(s.id(LexStateType)).Struct(
		jen.Id("Name").String(),
		jen.Id("InitialSet").Int(),
		jen.Id("InitMatch").Int(),
		jen.Id("CanMatchAnyChar").Int(),
		jen.Id("CanLoop").Bool(),
		jen.Id("States").Index().Id(s.id(NfaStateType)),
		jen.Id("Composites").Index().Id(s.id(CompositeType)),
		jen.Id("Literals").Index().Id(s.id(LiteralType)),
		jen.Id("Resume").Index().Id(s.id(ResumeType)),
		jen.Id("Substrings").Index().Int(),
	)
}

func (s *snapshot) ordinals() {
	defs := []jen.Code{jen.Id(s.id(NoKindName)).Op("=").Lit(compiler.NoKind)}
	seen := map[string]bool{}
	for _, n := range []string{
		NfaStateType, CompositeType, LiteralType, ResumeType, LexStateType,
		NoKindName, LexStateNames, KindNames, NewLexStateName, ActionsName,
		ToSkipName, ToMoreName, ToTokenName, ToSpecialName,
		VectorsName, MethodsName, LexStatesName,
	} {
		seen[s.id(n)] = true
	}
	for o := 0; o < s.tables.NumOrdinals(); o++ {
		label := s.tables.Regex(o).Label
		if label == "" {
			continue
		}
		name := Ident(s.cfg.Prefix, label)
		if seen[name] {
			name = fmt.Sprintf("%s_%d", name, o)
		}
		seen[name] = true
		defs = append(defs, jen.Id(name).Op("=").Lit(o))
	}
	s.file.Comment("Token ordinals")
	s.file.Const().Defs(defs...)
}

func (s *snapshot) perOrdinal() {
	t := s.tables
	var kinds, next, actions []jen.Code
	for o := 0; o < t.NumOrdinals(); o++ {
		kinds = append(kinds, jen.Lit(t.Kind(o).String()))
		next = append(next, jen.Lit(t.NextLexState(o)))
		actions = append(actions, jen.Lit(t.Action(o)))
	}

	var names []jen.Code
	for _, n := range t.LexStateNames() {
		names = append(names, jen.Lit(n))
	}

	s.file.Var().Defs(
		jen.Id(s.id(LexStateNames)).Op("=").Index().String().Values(names...),
		jen.Id(s.id(KindNames)).Op("=").Index().String().Values(kinds...),
		jen.Id(s.id(NewLexStateName)).Op("=").Index().Int().Values(next...),
		jen.Id(s.id(ActionsName)).Op("=").Index().String().Values(actions...),
		jen.Id(s.id(ToSkipName)).Op("=").Add(words(t.ToSkip())),
		jen.Id(s.id(ToMoreName)).Op("=").Add(words(t.ToMore())),
		jen.Id(s.id(ToTokenName)).Op("=").Add(words(t.ToToken())),
		jen.Id(s.id(ToSpecialName)).Op("=").Add(words(t.ToSpecial())),
	)
}

func (s *snapshot) moves() {
	var vectors []jen.Code
	for _, v := range s.tables.Vectors() {
		vectors = append(vectors, jen.Values(uints(v[:])...))
	}

	var methods []jen.Code
	for _, m := range s.tables.Methods() {
		var pairs []jen.Code
		for _, mv := range m {
			pairs = append(pairs, jen.Values(jen.Lit(int(mv.High)), jen.Lit(mv.Vector)))
		}
		methods = append(methods, jen.Values(pairs...))
	}

	s.file.Comment(s.id(VectorsName) + " are the low-byte move vectors shared by every lexical state.")
	s.file.Var().Id(s.id(VectorsName)).Op("=").Index().Index(jen.Lit(compiler.VectorWords)).Uint64().Values(vectors...)
	s.file.Comment(s.id(MethodsName) + " map a high byte to an index into " + s.id(VectorsName) + ".")
	s.file.Var().Id(s.id(MethodsName)).Op("=").Index().Index().Index(jen.Lit(2)).Int().Values(methods...)
}

func (s *snapshot) lexStates() {
	var states []jen.Code
	for _, st := range s.tables.States() {
		states = append(states, s.lexState(st))
	}
	s.file.Var().Id(s.id(LexStatesName)).Op("=").Index().Id(s.id(LexStateType)).Values(states...)
}

func (s *snapshot) lexState(st *compiler.StateTables) jen.Code {
	var states []jen.Code
	for i, n := range st.States {
		m := st.Moves[i]
		states = append(states, jen.Values(jen.Dict{
			jen.Id("ASCII"):  jen.Values(uints(m.ASCII[:])...),
			jen.Id("Method"): jen.Lit(m.Method),
			jen.Id("Next"):   jen.Lit(n.NextSet),
			jen.Id("Kind"):   jen.Lit(n.MatchKind),
		}))
	}

	var composites []jen.Code
	for _, c := range st.CompositeMoves {
		composites = append(composites, jen.Values(jen.Dict{
			jen.Id("ID"):      jen.Lit(c.ID),
			jen.Id("Members"): jen.Index().Int().Values(ints(c.Members)...),
			jen.Id("ASCII"):   jen.Values(uints(c.ASCII[:])...),
		}))
	}

	var literals, resume, substrings []jen.Code
	if lt := st.Literals; lt != nil {
		for pos := 0; pos < lt.MaxLen(); pos++ {
			for _, c := range lt.Chars(pos) {
				info := lt.Lookup(pos, c)
				if info == nil {
					continue
				}
				literals = append(literals, jen.Values(jen.Dict{
					jen.Id("Pos"):   jen.Lit(pos),
					jen.Id("Char"):  jen.LitRune(c),
					jen.Id("Valid"): words(info.Valid),
					jen.Id("Final"): words(info.Final),
				}))
			}
			for _, r := range lt.Resume(pos) {
				resume = append(resume, jen.Values(jen.Dict{
					jen.Id("Pos"):        jen.Lit(pos),
					jen.Id("Kind"):       jen.Lit(r.Kind),
					jen.Id("MatchedPos"): jen.Lit(r.MatchedPos),
					jen.Id("StateSet"):   jen.Lit(r.StateSet),
					jen.Id("Literals"):   words(r.Literals),
				}))
			}
		}
		for _, o := range lt.Ordinals() {
			if lt.IsSubstring(o) {
				substrings = append(substrings, jen.Lit(o))
			}
		}
	}

	return jen.Values(jen.Dict{
		jen.Id("Name"):            jen.Lit(st.Name),
		jen.Id("InitialSet"):      jen.Lit(st.InitialSet),
		jen.Id("InitMatch"):       jen.Lit(st.InitMatch),
		jen.Id("CanMatchAnyChar"): jen.Lit(st.CanMatchAnyChar),
		jen.Id("CanLoop"):         jen.Lit(st.CanLoop),
		jen.Id("States"):          jen.Index().Id(s.id(NfaStateType)).Values(states...),
		jen.Id("Composites"):      jen.Index().Id(s.id(CompositeType)).Values(composites...),
		jen.Id("Literals"):        jen.Index().Id(s.id(LiteralType)).Values(literals...),
		jen.Id("Resume"):          jen.Index().Id(s.id(ResumeType)).Values(resume...),
		jen.Id("Substrings"):      jen.Index().Int().Values(substrings...),
	})
}

func words(b compiler.Bitset) *jen.Statement {
	return jen.Index().Uint64().Values(uints(b.Words())...)
}

func uints(ws []uint64) []jen.Code {
	out := make([]jen.Code, len(ws))
	for i, w := range ws {
		out[i] = jen.Lit(w)
	}
	return out
}

func ints(vs []int) []jen.Code {
	out := make([]jen.Code, len(vs))
	for i, v := range vs {
		out[i] = jen.Lit(v)
	}
	return out
}
