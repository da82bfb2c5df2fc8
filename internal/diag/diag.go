// Package diag implements the compiler's diagnostic sink: the two
// severities and three error kinds from spec §7, formatted with source
// context and an optional caret the way the teacher's
// internal/errors.CompilerError does.
package diag

import (
	"fmt"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/nplang/corec/internal/token"
)

// Severity distinguishes a diagnostic that must still be followed by a
// fatal one (used only for "previous declaration was here" notes) from one
// that halts compilation immediately.
type Severity int

const (
	Fatal Severity = iota
	NonFatal
)

// Kind classifies a diagnostic per spec §7's taxonomy.
type Kind string

const (
	ScopeError         Kind = "scope"
	TypeError          Kind = "type"
	RuntimeDomainError Kind = "runtime"
)

// Diagnostic is a single compiler message.
type Diagnostic struct {
	Severity Severity
	Kind     Kind
	Pos      token.Position
	Message  string
}

// FatalError carries the fatal diagnostic that Sink.Fatalf just recorded,
// so that a pass can stop early as soon as one occurs.
type FatalError struct {
	Diagnostic *Diagnostic
}

func (e *FatalError) Error() string { return e.Diagnostic.Message }

// Sink collects diagnostics for one compilation. A Sink is not safe for
// concurrent use; internal/pipeline gives each file its own.
type Sink struct {
	Diagnostics []*Diagnostic
	source      string // original source text, for Format's caret line
	filename    string

	// fatal is set as soon as a Fatal diagnostic is appended; later passes
	// consult it via HasFatal to stop early.
	fatal *Diagnostic
}

// NewSink returns an empty Sink. source and filename are used only for
// formatting; either may be empty.
func NewSink(source, filename string) *Sink {
	return &Sink{source: source, filename: filename}
}

// Add appends a non-fatal diagnostic.
func (s *Sink) Add(kind Kind, pos token.Position, format string, args ...any) {
	s.append(NonFatal, kind, pos, format, args...)
}

// Fatalf appends a fatal diagnostic and returns a *FatalError the caller
// should propagate to stop the current pass.
func (s *Sink) Fatalf(kind Kind, pos token.Position, format string, args ...any) *FatalError {
	d := s.append(Fatal, kind, pos, format, args...)
	return &FatalError{Diagnostic: d}
}

func (s *Sink) append(sev Severity, kind Kind, pos token.Position, format string, args ...any) *Diagnostic {
	d := &Diagnostic{Severity: sev, Kind: kind, Pos: pos, Message: fmt.Sprintf(format, args...)}
	s.Diagnostics = append(s.Diagnostics, d)
	if sev == Fatal && s.fatal == nil {
		s.fatal = d
	}
	return d
}

// HasFatal reports whether a fatal diagnostic has been recorded.
func (s *Sink) HasFatal() bool { return s.fatal != nil }

// Fatal returns the first fatal diagnostic recorded, or nil.
func (s *Sink) Fatal() *Diagnostic { return s.fatal }

// Format renders every diagnostic in the sink, one per (blank-line
// separated) block, quoting the offending source line and pointing a caret
// at its column. color turns on ANSI coloring of the caret; the caller
// decides it (see AutoColor and the CLI's --color flag).
func (s *Sink) Format(color bool) string {
	var sb strings.Builder
	for i, d := range s.Diagnostics {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(s.formatOne(d, color))
	}
	return sb.String()
}

func (s *Sink) formatOne(d *Diagnostic, color bool) string {
	var sb strings.Builder

	label := "error"
	if d.Severity == NonFatal {
		label = "note"
	}

	if d.Pos.IsValid() {
		file := d.Pos.Filename
		if file == "" {
			file = s.filename
		}
		fmt.Fprintf(&sb, "%s: %s: %s\n", file, label, d.Message)
	} else {
		fmt.Fprintf(&sb, "%s: %s\n", label, d.Message)
	}

	line := sourceLine(s.source, d.Pos.Line)
	if line != "" {
		lineNumStr := fmt.Sprintf("%4d | ", d.Pos.Line)
		sb.WriteString(lineNumStr)
		sb.WriteString(line)
		sb.WriteString("\n")
		sb.WriteString(strings.Repeat(" ", len(lineNumStr)+d.Pos.Column-1))
		if color {
			sb.WriteString("\033[1;31m")
		}
		sb.WriteString("^")
		if color {
			sb.WriteString("\033[0m")
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func sourceLine(source string, line int) string {
	if source == "" || line <= 0 {
		return ""
	}
	lines := strings.Split(source, "\n")
	if line > len(lines) {
		return ""
	}
	return lines[line-1]
}

// AutoColor reports whether fd (typically os.Stderr.Fd()) looks like an
// interactive terminal, the same isatty check the teacher's CLI would use
// to decide whether to emit ANSI color codes.
func AutoColor(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
