// Package lexgen compiles lexer grammar descriptions into frozen transition
// tables and renders them as Go source.
package lexgen

import (
	"fmt"
	"io"

	"github.com/KromDaniel/lexgen/internal/ast"
	"github.com/KromDaniel/lexgen/internal/codegen"
	"github.com/KromDaniel/lexgen/internal/compiler"
	"github.com/KromDaniel/lexgen/internal/diag"
	"github.com/KromDaniel/lexgen/internal/grammar"
)

// Options configures the grammar compilation process.
type Options struct {
	// GrammarFile is the YAML grammar description to compile
	GrammarFile string

	// OutputFile is where the rendered tables are written. Nothing is written when empty.
	OutputFile string

	// Package is the Go package name of the rendered tables
	Package string

	// Prefix starts every rendered identifier (e.g., "Calc" generates "CalcLexStates")
	Prefix string

	// IgnoreCase matches every regular expression case-insensitively.
	// The grammar's own options block can only turn it on.
	IgnoreCase bool

	// NoLiteralDFA builds string literals as NFA chains instead of the literal table
	NoLiteralDFA bool

	// Verbose logs construction decisions to LogOutput
	Verbose bool

	// LogOutput receives verbose logs (default stderr)
	LogOutput io.Writer
}

// Validate checks if the options are valid.
func (o Options) Validate() error {
	if o.GrammarFile == "" {
		return fmt.Errorf("grammar file cannot be empty")
	}
	if o.OutputFile != "" && o.Package == "" {
		return fmt.Errorf("package cannot be empty when an output file is set")
	}
	return nil
}

// Result is the outcome of a compilation.
type Result struct {
	// Tables are nil when errors were recorded.
	Tables *compiler.Tables
	// Diagnostics holds every warning and error in report order.
	Diagnostics []diag.Diagnostic

	snapshot codegen.Config
}

// Warnings returns the warning diagnostics.
func (r *Result) Warnings() []diag.Diagnostic {
	return r.filter(diag.SeverityWarning)
}

// Errors returns the error diagnostics.
func (r *Result) Errors() []diag.Diagnostic {
	return r.filter(diag.SeverityError)
}

func (r *Result) filter(sev diag.Severity) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range r.Diagnostics {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// Render writes the tables as Go source to w.
func (r *Result) Render(w io.Writer) error {
	if r.Tables == nil {
		return fmt.Errorf("grammar has errors; nothing to render")
	}
	return codegen.Render(w, r.Tables, r.snapshot)
}

// Compile loads the grammar file, builds its tables and writes them to
// OutputFile when one is set. On semantic errors the returned Result still
// carries the diagnostics.
func Compile(opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	g, fileOpts, err := grammar.Load(opts.GrammarFile)
	if err != nil {
		return nil, err
	}

	res, err := CompileGrammar(g, compiler.Options{
		IgnoreCase:   opts.IgnoreCase || fileOpts.IgnoreCase,
		NoLiteralDFA: opts.NoLiteralDFA || fileOpts.NoLiteralDFA,
		Verbose:      opts.Verbose,
		LogOutput:    opts.LogOutput,
	})
	if err != nil {
		return res, err
	}

	pkg := opts.Package
	if pkg == "" {
		pkg = "tokens"
	}
	res.snapshot = codegen.Config{Package: pkg, Prefix: opts.Prefix, Source: opts.GrammarFile}

	if opts.OutputFile != "" {
		if err := codegen.Save(opts.OutputFile, res.Tables, res.snapshot); err != nil {
			return res, fmt.Errorf("failed to generate code: %w", err)
		}
	}
	return res, nil
}

// CompileGrammar builds the tables of an in-memory grammar.
func CompileGrammar(g *ast.Grammar, opts compiler.Options) (*Result, error) {
	sink := &diag.Sink{}
	tables, err := compiler.Build(g, opts, sink)
	res := &Result{
		Tables:      tables,
		Diagnostics: sink.Diagnostics(),
		snapshot:    codegen.Config{Package: "tokens"},
	}
	if err != nil {
		return res, fmt.Errorf("failed to compile grammar: %w", err)
	}
	return res, nil
}
