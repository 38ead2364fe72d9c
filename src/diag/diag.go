// Package diag implements the diagnostics sink described in spec.md ch.4.1: a grow-only accumulator of
// structured errors/warnings/infos, shared by every later compiler stage. It does not itself fail the
// build - the driver decides exit status from the error count (spec.md ch.7).
//
// Grounded on VSLC's util/perror.go accumulate-and-drain shape, stripped of its channel/goroutine
// machinery: spec.md ch.5 fixes the core pipeline as single-threaded, so a plain append-only slice
// replaces perror's listener goroutine. Rendering format and severity colors follow
// original_source/source/common/diagnostic.c.
package diag

import (
	"fmt"
	"io"
	"strings"

	"github.com/mattn/go-isatty"
)

// ----------------------------
// ----- Type definitions -----
// ----------------------------

// Severity classifies how serious a Diagnostic is.
type Severity int

// Category classifies which compiler stage produced a Diagnostic.
type Category int

const (
	Info Severity = iota
	Warning
	Error
	Critical
)

const (
	Lexer Category = iota
	Parser
	Semantic
	Codegen
	Generic
)

var severityNames = [...]string{"info", "warning", "error", "critical"}
var severityColors = [...]string{"\033[0;36m", "\033[0;33m", "\033[0;31m", "\033[0;35m"}

const colorReset = "\033[0m"

func (s Severity) String() string {
	if int(s) < 0 || int(s) >= len(severityNames) {
		return "unknown"
	}
	return severityNames[s]
}

var categoryNames = [...]string{"lexer", "parser", "semantic", "codegen", "generic"}

func (c Category) String() string {
	if int(c) < 0 || int(c) >= len(categoryNames) {
		return "unknown"
	}
	return categoryNames[c]
}

// Diagnostic is a single structured record reported by any compiler stage.
type Diagnostic struct {
	File     string
	Line     int
	Column   int
	Message  string
	Severity Severity
	Category Category
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s", d.File, d.Line, d.Column, d.Severity, d.Message)
}

// Sink accumulates diagnostics reported by the compiler. It must not be shared across goroutines; the
// core pipeline (spec.md ch.5) never needs to.
type Sink struct {
	WarningsAsErrors bool
	SuppressWarnings bool
	Verbose          bool

	records []Diagnostic
}

// New returns a diagnostics sink configured by the driver's flags.
func New(warningsAsErrors, suppressWarnings, verbose bool) *Sink {
	return &Sink{
		WarningsAsErrors: warningsAsErrors,
		SuppressWarnings: suppressWarnings,
		Verbose:          verbose,
		records:          make([]Diagnostic, 0, 16),
	}
}

// Report appends a diagnostic to the sink, applying the warnings-as-errors and suppress-warnings
// policies at push time (mirroring original_source's set_warnings_as_errors/set_suppress_warnings).
func (s *Sink) Report(d Diagnostic) {
	if d.Severity == Info && !s.Verbose {
		return
	}
	if d.Severity == Warning {
		if s.WarningsAsErrors {
			d.Severity = Error
		} else if s.SuppressWarnings {
			return
		}
	}
	s.records = append(s.records, d)
}

// Errorf is a convenience wrapper around Report for the common case of a formatted message.
func (s *Sink) Errorf(file string, line, col int, cat Category, format string, args ...interface{}) {
	s.Report(Diagnostic{File: file, Line: line, Column: col, Message: fmt.Sprintf(format, args...), Severity: Error, Category: cat})
}

// Warnf is a convenience wrapper around Report for warnings.
func (s *Sink) Warnf(file string, line, col int, cat Category, format string, args ...interface{}) {
	s.Report(Diagnostic{File: file, Line: line, Column: col, Message: fmt.Sprintf(format, args...), Severity: Warning, Category: cat})
}

// Infof is a convenience wrapper around Report for info records, only kept when Verbose is set.
func (s *Sink) Infof(file string, line, col int, cat Category, format string, args ...interface{}) {
	s.Report(Diagnostic{File: file, Line: line, Column: col, Message: fmt.Sprintf(format, args...), Severity: Info, Category: cat})
}

// Records returns every diagnostic accumulated so far, in report order.
func (s *Sink) Records() []Diagnostic {
	return s.records
}

// HasErrors reports whether any diagnostic at Error or Critical severity has been recorded. Lowering and
// emission are gated on this (spec.md ch.4.6/ch.7: "if any error diagnostic exists after semantic
// analysis, the compiler stops before lowering").
func (s *Sink) HasErrors() bool {
	for _, d := range s.records {
		if d.Severity >= Error {
			return true
		}
	}
	return false
}

// HasCritical reports whether any Critical diagnostic has been recorded; a critical diagnostic
// short-circuits the stage that produced it (spec.md ch.7).
func (s *Sink) HasCritical() bool {
	for _, d := range s.records {
		if d.Severity == Critical {
			return true
		}
	}
	return false
}

// Counts returns the number of Error-or-worse and Warning diagnostics recorded.
func (s *Sink) Counts() (errors, warnings int) {
	for _, d := range s.records {
		switch d.Severity {
		case Warning:
			warnings++
		case Error, Critical:
			errors++
		}
	}
	return
}

// Summary renders the "errors=<n> warnings=<m>" line printed on exit when verbose (spec.md ch.7).
func (s *Sink) Summary() string {
	errs, warns := s.Counts()
	return fmt.Sprintf("errors=%d warnings=%d", errs, warns)
}

// Flush writes every accumulated diagnostic to w, colorized if w is a terminal, then clears the sink.
func (s *Sink) Flush(w io.Writer) {
	color := false
	if f, ok := w.(interface{ Fd() uintptr }); ok {
		color = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	var sb strings.Builder
	for _, d := range s.records {
		if color {
			sb.WriteString(fmt.Sprintf("%s:%d:%d: %s%s%s: %s\n",
				d.File, d.Line, d.Column, severityColors[d.Severity], d.Severity, colorReset, d.Message))
		} else {
			sb.WriteString(d.String())
			sb.WriteByte('\n')
		}
	}
	_, _ = io.WriteString(w, sb.String())
	s.records = s.records[:0]
}
