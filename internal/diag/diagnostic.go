package diag

import "pyglass.dev/pyglass/internal/token"

// Severity classifies how a Diagnostic should be surfaced (spec §4.J).
type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityHint
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "unknown"
	}
}

// Applicability marks whether an Edit is safe to apply automatically.
type Applicability int

const (
	ApplicabilitySafe Applicability = iota
	ApplicabilityUnsafe
	ApplicabilityDisplayOnly
)

// TextEdit replaces the byte range [Start,End) with NewText.
type TextEdit struct {
	Range   token.Range
	NewText string
}

// Fix is a candidate autofix: a sequence of text edits plus how safe they
// are to apply without user review (spec §4.J).
type Fix struct {
	Message       string
	Edits         []TextEdit
	Applicability Applicability
}

// SecondarySpan is a related location referenced by a diagnostic, with a
// human-readable label (spec §4.J: "secondary spans with labels").
type SecondarySpan struct {
	File  string
	Range token.Range
	Label string
}

// Diagnostic is the structured message every query in the core appends to
// its output list (spec §4.J). It carries an Error for the primary message
// plus rendering metadata.
type Diagnostic struct {
	ID        string // stable rule/check name, e.g. "unresolved-import"
	Severity  Severity
	File      string
	Range     token.Range
	Err       Error
	Secondary []SecondarySpan
	Tags      Tag
	Fix       *Fix
}

// Message renders the diagnostic's primary text.
func (d Diagnostic) Message() string {
	if d.Err == nil {
		return ""
	}
	return d.Err.Error()
}

// New builds a Diagnostic from a format string at a position.
func New(id string, sev Severity, p token.Pos, tags Tag, format string, args ...any) Diagnostic {
	file := p.Filename()
	return Diagnostic{
		ID:       id,
		Severity: sev,
		File:     file,
		Range:    token.Range{Start: p, End: p},
		Err:      Newf(p, format, args...),
		Tags:     tags,
	}
}
