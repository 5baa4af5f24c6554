// Package vmerrors implements the compiler's write-only diagnostic sink:
// errors and warnings accumulate in textual discovery order rather than
// propagating as control flow (spec.md §7, §9).
package vmerrors

import (
	"fmt"
	"strings"

	"github.com/cwbudde/vc/internal/lexer"
)

// Severity distinguishes an error (counted, gates emission) from a warning
// (reported but never gates emission).
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	if s == SeverityWarning {
		return "warning"
	}
	return "error"
}

// Diagnostic is one reported message: its severity, source position, and
// text.
type Diagnostic struct {
	Severity Severity
	Pos      lexer.Position
	Message  string
}

// Format renders the diagnostic in the one-line form spec.md §6 mandates:
// "-- line L col C: <text>".
func (d Diagnostic) Format() string {
	return fmt.Sprintf("-- line %d col %d: %s", d.Pos.Line, d.Pos.Column, d.Message)
}

// Sink accumulates diagnostics for one compilation. It is not safe for
// concurrent use from multiple goroutines — spec.md §5 is explicit that a
// compile call's state, including its error sink, belongs to one
// synchronous pipeline run and is discarded afterward.
type Sink struct {
	diagnostics []Diagnostic

	// errorCount and warningCount track the two kinds separately so phase
	// gating (spec.md §7) can check "any syntax/semantic errors" without
	// miscounting warnings.
	errorCount   int
	warningCount int

	// minErrDist implements the parser's suppression-distance policy
	// (spec.md §4.2/§7): after an error at tokensConsumed, no further error
	// is reported until tokensConsumed has advanced by at least this much.
	// Only the parser consults this; the evaluator reports without
	// suppression since it has no token-consumption notion.
	minErrDist        int
	tokensConsumed     int
	lastErrorTokenDist int
	suppressing        bool
}

// DefaultMinErrDist is spec.md §4.2's minErrDist = 2.
const DefaultMinErrDist = 2

// NewSink creates an empty Sink with the default suppression distance.
func NewSink() *Sink {
	return &Sink{minErrDist: DefaultMinErrDist, lastErrorTokenDist: -1 << 30}
}

// Error records an error diagnostic, subject to the parser's suppression
// window if the caller is reporting a syntax error (see NoteTokenConsumed).
func (s *Sink) Error(pos lexer.Position, format string, args ...any) {
	if s.suppressing {
		return
	}
	s.diagnostics = append(s.diagnostics, Diagnostic{Severity: SeverityError, Pos: pos, Message: fmt.Sprintf(format, args...)})
	s.errorCount++
	s.suppressing = true
	s.tokensConsumed = 0
}

// SemanticError records a semantic error. Unlike syntax errors, semantic
// errors are never suppressed: spec.md §4.3/§7 requires evaluation to
// surface as many semantic errors as possible in one pass.
func (s *Sink) SemanticError(pos lexer.Position, format string, args ...any) {
	s.diagnostics = append(s.diagnostics, Diagnostic{Severity: SeverityError, Pos: pos, Message: fmt.Sprintf(format, args...)})
	s.errorCount++
}

// Warning records a warning. Warnings never gate emission and are never
// subject to the syntax-error suppression window.
func (s *Sink) Warning(pos lexer.Position, format string, args ...any) {
	s.diagnostics = append(s.diagnostics, Diagnostic{Severity: SeverityWarning, Pos: pos, Message: fmt.Sprintf(format, args...)})
	s.warningCount++
}

// NoteTokenConsumed tells the sink that the parser successfully consumed
// another token, lifting the suppression window once minErrDist tokens
// have passed since the last syntax error.
func (s *Sink) NoteTokenConsumed() {
	if !s.suppressing {
		return
	}
	s.tokensConsumed++
	if s.tokensConsumed >= s.minErrDist {
		s.suppressing = false
	}
}

// ErrorCount returns the total number of errors recorded (syntax + semantic).
func (s *Sink) ErrorCount() int { return s.errorCount }

// WarningCount returns the total number of warnings recorded.
func (s *Sink) WarningCount() int { return s.warningCount }

// HasErrors reports whether any error has been recorded.
func (s *Sink) HasErrors() bool { return s.errorCount > 0 }

// Diagnostics returns all recorded diagnostics in discovery order.
func (s *Sink) Diagnostics() []Diagnostic { return s.diagnostics }

// String renders every diagnostic, one per line, in the §6 wire format.
func (s *Sink) String() string {
	var b strings.Builder
	for _, d := range s.diagnostics {
		b.WriteString(d.Format())
		b.WriteByte('\n')
	}
	return b.String()
}
