// Package diag collects warnings and errors produced while building lexer
// tables.
package diag

import (
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/KromDaniel/lexgen/internal/ast"
)

// Severity classifies a diagnostic.
type Severity uint8

const (
	SeverityWarning Severity = iota
	SeverityError
)

// String returns the lower-case severity name.
func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic is one reported problem.
type Diagnostic struct {
	Severity Severity
	Loc      ast.Location
	Message  string
}

// Error formats the diagnostic as "location: severity: message".
func (d Diagnostic) Error() string {
	if loc := d.Loc.String(); loc != "" {
		return fmt.Sprintf("%s: %s: %s", loc, d.Severity, d.Message)
	}
	return fmt.Sprintf("%s: %s", d.Severity, d.Message)
}

// Sink is an append-only diagnostic list. The zero value is ready to use.
type Sink struct {
	items  []Diagnostic
	errors int
}

// Warnf records a warning.
func (s *Sink) Warnf(loc ast.Location, format string, args ...any) {
	s.Add(Diagnostic{Severity: SeverityWarning, Loc: loc, Message: fmt.Sprintf(format, args...)})
}

// Errorf records an error.
func (s *Sink) Errorf(loc ast.Location, format string, args ...any) {
	s.Add(Diagnostic{Severity: SeverityError, Loc: loc, Message: fmt.Sprintf(format, args...)})
}

// Add records d.
func (s *Sink) Add(d Diagnostic) {
	if d.Severity == SeverityError {
		s.errors++
	}
	s.items = append(s.items, d)
}

// Diagnostics returns every recorded diagnostic in report order.
func (s *Sink) Diagnostics() []Diagnostic {
	return s.items
}

// Warnings returns the recorded warnings.
func (s *Sink) Warnings() []Diagnostic {
	return s.filter(SeverityWarning)
}

// Errors returns the recorded errors.
func (s *Sink) Errors() []Diagnostic {
	return s.filter(SeverityError)
}

func (s *Sink) filter(sev Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range s.items {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// HasErrors reports whether table emission must be suppressed.
func (s *Sink) HasErrors() bool {
	return s.errors > 0
}

// Err returns nil when no errors were recorded, otherwise an error wrapping
// every recorded error diagnostic. Warnings never make Err non-nil.
func (s *Sink) Err() error {
	if s.errors == 0 {
		return nil
	}
	var result *multierror.Error
	for _, d := range s.items {
		if d.Severity == SeverityError {
			result = multierror.Append(result, d)
		}
	}
	result.ErrorFormat = formatList
	return result
}

func formatList(errs []error) string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors occurred:", len(errs))
	for _, err := range errs {
		sb.WriteString("\n\t")
		sb.WriteString(err.Error())
	}
	return sb.String()
}
