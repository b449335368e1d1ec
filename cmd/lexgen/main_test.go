package main

import (
	"bytes"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout []string
		wantStderr []string
	}{
		{
			name:       "build to stdout",
			args:       []string{"build", "testdata/calc.yaml", "--package", "calc"},
			wantStdout: []string{"package calc", "LexerLexStates", "LexerCOMMENT_START"},
		},
		{
			name:       "build with prefix",
			args:       []string{"build", "testdata/calc.yaml", "--prefix", "Calc"},
			wantStdout: []string{"package tokens", "CalcLexStates"},
		},
		{
			name:       "check",
			args:       []string{"check", "testdata/calc.yaml"},
			wantStdout: []string{"testdata/calc.yaml: 2 lexical states, 12 token kinds, 0 warnings"},
		},
		{
			name:       "check warnings",
			args:       []string{"check", "testdata/loop.yaml"},
			wantStdout: []string{"warning: regular expression for SPACES can be matched by the empty string", "1 warnings"},
		},
		{
			name: "dump",
			args: []string{"dump", "testdata/calc.yaml"},
			wantStdout: []string{
				"ordinal 11 <COMMENT> kind=SPECIAL state=IN_COMMENT next=DEFAULT action=endComment",
				"lex state DEFAULT:",
				"lex state IN_COMMENT:",
				`literal "let" ordinal=1 substring=true`,
			},
		},
		{
			name:       "check errors",
			args:       []string{"check", "testdata/broken.yaml"},
			wantCode:   1,
			wantStdout: []string{`error: lexical state "NOWHERE" has not been defined`, `error: undefined label "MISSING"`},
			wantStderr: []string{"lexgen failed"},
		},
		{
			name:       "build errors",
			args:       []string{"build", "testdata/broken.yaml"},
			wantCode:   1,
			wantStderr: []string{`undefined label "MISSING"`, "lexgen failed"},
		},
		{
			name:       "missing file",
			args:       []string{"check", "testdata/missing.yaml"},
			wantCode:   1,
			wantStderr: []string{"failed to read grammar"},
		},
		{
			name:     "missing argument",
			args:     []string{"build"},
			wantCode: 1,
		},
		{
			name:     "unknown command",
			args:     []string{"bogus"},
			wantCode: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			code := run(tt.args, &stdout, &stderr)
			require.Equal(t, tt.wantCode, code, "stderr: %s", stderr.String())
			for _, want := range tt.wantStdout {
				require.Contains(t, stdout.String(), want)
			}
			for _, want := range tt.wantStderr {
				require.Contains(t, stderr.String(), want)
			}
		})
	}
}

func TestRunBuildOutputFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "tables.go")
	var stdout, stderr bytes.Buffer
	code := run([]string{"build", "testdata/calc.yaml", "-o", out, "--package", "calc", "-v"}, &stdout, &stderr)
	require.Equal(t, 0, code, "stderr: %s", stderr.String())
	require.Empty(t, stdout.String())
	require.Contains(t, stderr.String(), "wrote tables")
	require.Contains(t, stderr.String(), "component=lexgen")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	f, err := parser.ParseFile(token.NewFileSet(), out, data, 0)
	require.NoError(t, err)
	require.Equal(t, "calc", f.Name.Name)
}
