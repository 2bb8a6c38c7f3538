package diag

import "fmt"

// Severity classifies how serious a diagnostic is. Nothing reported
// through this package is fatal to the pipeline.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	case Error:
		return "error"
	}
	return "unknown"
}

// Stage identifies which pipeline stage produced a diagnostic.
type Stage string

const (
	StageParse    Stage = "parse"
	StageStyle    Stage = "style"
	StageScript   Stage = "script"
	StageLayout   Stage = "layout"
	StageResource Stage = "resource"
)

// Location is a source position within the document or stylesheet text.
// Line and Col are 1-based; a zero Location means "unknown".
type Location struct {
	Line int
	Col  int
}

func (l Location) String() string {
	if l.Line == 0 {
		return "?"
	}
	return fmt.Sprintf("%d:%d", l.Line, l.Col)
}

// Diagnostic is one structured, non-fatal report from the pipeline.
type Diagnostic struct {
	Severity Severity
	Stage    Stage
	Message  string
	Where    Location
}

func (d Diagnostic) String() string {
	if d.Where.Line > 0 {
		return fmt.Sprintf("%s: %s: %s (at %s)", d.Stage, d.Severity, d.Message, d.Where)
	}
	return fmt.Sprintf("%s: %s: %s", d.Stage, d.Severity, d.Message)
}

// Sink receives diagnostics as they are produced.
type Sink interface {
	Report(Diagnostic)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Report(Diagnostic) {}

// Collector accumulates diagnostics in order. Used by tests and by
// callers that want to inspect parse results programmatically.
type Collector struct {
	Diagnostics []Diagnostic
}

func (c *Collector) Report(d Diagnostic) {
	c.Diagnostics = append(c.Diagnostics, d)
}

// BySeverity returns the collected diagnostics of the given severity.
func (c *Collector) BySeverity(s Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range c.Diagnostics {
		if d.Severity == s {
			out = append(out, d)
		}
	}
	return out
}
