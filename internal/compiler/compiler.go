// Package compiler builds the runtime tables of a longest-match lexer from
// token regular expressions: per lex state NFAs, composite state sets, the
// literal fast-path table and partitioned character moves.
package compiler

import (
	"fmt"
	"io"

	"github.com/KromDaniel/lexgen/internal/ast"
	"github.com/KromDaniel/lexgen/internal/diag"
)

// Options controls a table build.
type Options struct {
	IgnoreCase   bool      // Match every regular expression case-insensitively
	NoLiteralDFA bool      // Build string literals as NFA chains instead of the literal table
	Verbose      bool      // Log construction decisions
	LogOutput    io.Writer // Destination of verbose logs (default stderr)
}

// InternalError reports a broken construction invariant. It is never caused
// by grammar input.
type InternalError struct {
	Msg string
}

func (e *InternalError) Error() string {
	return "internal error: " + e.Msg
}

func internalf(format string, args ...any) *InternalError {
	return &InternalError{Msg: fmt.Sprintf(format, args...)}
}

// recoverInternal stores a recovered *InternalError in err. Any other panic
// is re-raised.
func recoverInternal(err *error) {
	if r := recover(); r != nil {
		ie, ok := r.(*InternalError)
		if !ok {
			panic(r)
		}
		*err = ie
	}
}

// Build compiles g into frozen tables. Diagnostics are recorded in sink; a
// nil sink is replaced by a private one. When any error was recorded Build
// returns nil tables and sink.Err(). An *InternalError aborts the build and
// is returned as is.
func Build(g *ast.Grammar, opts Options, sink *diag.Sink) (tables *Tables, err error) {
	if sink == nil {
		sink = &diag.Sink{}
	}
	defer recoverInternal(&err)

	logger := NewLogger(opts.Verbose)
	if opts.LogOutput != nil {
		logger.SetOutput(opts.LogOutput)
	}

	b := newBuilder(g, opts, sink, logger)
	logger.Section("collect")
	b.collect()
	if sink.HasErrors() {
		return nil, sink.Err()
	}

	t := b.build()
	if sink.HasErrors() {
		return nil, sink.Err()
	}
	logger.Log("build finished",
		"ordinals", t.NumOrdinals(),
		"lexStates", len(t.states),
		"vectors", t.vectors.Len(),
		"warnings", len(sink.Warnings()))
	return t, nil
}
