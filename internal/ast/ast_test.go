package ast

import "testing"

func TestParseKind(t *testing.T) {
	tests := []struct {
		input   string
		want    Kind
		wantErr bool
	}{
		{"TOKEN", KindToken, false},
		{"SKIP", KindSkip, false},
		{"MORE", KindMore, false},
		{"SPECIAL", KindSpecial, false},
		{"SPECIAL_TOKEN", KindSpecial, false},
		{"token", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseKind(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseKind(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseKind(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}

	if s := Kind(9).String(); s != "Kind(9)" {
		t.Errorf("Kind(9).String() = %q", s)
	}
}

func TestLocationString(t *testing.T) {
	tests := []struct {
		loc  Location
		want string
	}{
		{Location{}, ""},
		{Location{File: "g.yaml"}, "g.yaml"},
		{Location{Line: 3, Column: 7}, "line 3, column 7"},
		{Location{File: "g.yaml", Line: 3, Column: 7}, "g.yaml:3:7"},
	}

	for _, tt := range tests {
		if got := tt.loc.String(); got != tt.want {
			t.Errorf("%#v.String() = %q, want %q", tt.loc, got, tt.want)
		}
	}
}

func TestRegexName(t *testing.T) {
	labeled := Lit("if")
	labeled.Label = "IF"
	anon := Rep(Lit("x"), 0, -1)
	anon.Ordinal = 4

	tests := []struct {
		re   *Regex
		want string
	}{
		{labeled, "<IF>"},
		{Lit("+="), `"+="`},
		{anon, "token of kind 4"},
	}

	for _, tt := range tests {
		if got := tt.re.Name(); got != tt.want {
			t.Errorf("Name() = %q, want %q", got, tt.want)
		}
	}
}

func TestMatchesAnyChar(t *testing.T) {
	tests := []struct {
		name string
		re   *Regex
		want bool
	}{
		{"negated empty", Class(true), true},
		{"negated with range", Class(true, Range{Lo: '\n', Hi: '\n'}), false},
		{"negated with inverted range", Class(true, Range{Lo: 'z', Hi: 'a'}), true},
		{"full range", Class(false, Range{Lo: 0, Hi: MaxChar}), true},
		{"overlapping pieces", Class(false, Range{Lo: 'a', Hi: MaxChar}, Range{Lo: 0, Hi: 'b'}), true},
		{"gap", Class(false, Range{Lo: 0, Hi: 'a'}, Range{Lo: 'c', Hi: MaxChar}), false},
		{"literal", Lit("a"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.re.MatchesAnyChar(); got != tt.want {
				t.Errorf("MatchesAnyChar() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProductionStates(t *testing.T) {
	p := TokenProduction{}
	if got := p.States(); len(got) != 1 || got[0] != DefaultLexState {
		t.Errorf("States() = %v, want [DEFAULT]", got)
	}
	p.LexStates = []string{"A", "B"}
	if got := p.States(); len(got) != 2 {
		t.Errorf("States() = %v, want [A B]", got)
	}
}
