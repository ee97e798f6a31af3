// Package diag defines the structured diagnostic types emitted by every
// query in the semantic core (spec §4.J). It follows cue/errors' shape:
// a small Error interface, a Message carrying a deferred printf format,
// and an append-only multi-error list whose Sorted method returns a
// position-ordered copy (duplicates are kept).
package diag

import (
	"errors"
	"fmt"
	"slices"

	"pyglass.dev/pyglass/internal/token"
)

// Message is an error message for human consumption, kept as a format
// string plus arguments so it can be localized or re-rendered later.
type Message struct {
	format string
	args   []any
}

// NewMessagef builds a Message from a printf-style format and arguments.
func NewMessagef(format string, args ...any) Message {
	return Message{format: format, args: args}
}

func (m Message) Msg() (string, []any) { return m.format, m.args }
func (m Message) Error() string        { return fmt.Sprintf(m.format, m.args...) }

// Error is the interface every core diagnostic implements.
type Error interface {
	error
	Position() token.Pos
	InputPositions() []token.Pos
	Path() []string
	Msg() (string, []any)
}

type posError struct {
	pos  token.Pos
	Message
}

func (e *posError) Position() token.Pos         { return e.pos }
func (e *posError) InputPositions() []token.Pos { return nil }
func (e *posError) Path() []string              { return nil }

// Newf creates an Error at the given position.
func Newf(p token.Pos, format string, args ...any) Error {
	return &posError{pos: p, Message: NewMessagef(format, args...)}
}

// Wrapf attaches additional context to an existing error at a position.
func Wrapf(err error, p token.Pos, format string, args ...any) Error {
	return &wrapped{main: &posError{pos: p, Message: NewMessagef(format, args...)}, wrap: err}
}

type wrapped struct {
	main Error
	wrap error
}

func (e *wrapped) Error() string {
	if e.wrap == nil {
		return e.main.Error()
	}
	if msg := e.main.Error(); msg != "" {
		return fmt.Sprintf("%s: %s", msg, e.wrap)
	}
	return e.wrap.Error()
}

func (e *wrapped) Msg() (string, []any) { return e.main.Msg() }
func (e *wrapped) Path() []string       { return e.main.Path() }
func (e *wrapped) Unwrap() error        { return e.wrap }

func (e *wrapped) InputPositions() []token.Pos {
	var inner []token.Pos
	if ie, ok := e.wrap.(Error); ok {
		if p := ie.Position(); p.IsValid() {
			inner = append(inner, p)
		}
		inner = append(inner, ie.InputPositions()...)
	}
	return append(e.main.InputPositions(), inner...)
}

func (e *wrapped) Position() token.Pos {
	if p := e.main.Position(); p.IsValid() {
		return p
	}
	if ie, ok := e.wrap.(Error); ok {
		return ie.Position()
	}
	return token.NoPos
}

// List is an ordered, append-only collection of Errors (spec §4.J:
// "Diagnostics are append-only within a query").
type List []Error

func (l List) Error() string {
	switch len(l) {
	case 0:
		return ""
	case 1:
		return l[0].Error()
	default:
		return fmt.Sprintf("%s (and %d more errors)", l[0].Error(), len(l)-1)
	}
}

// Add appends err to the list, promoting plain errors via Promote.
func (l *List) Add(err error) {
	if err == nil {
		return
	}
	*l = append(*l, Promote(err))
}

// Addf appends a new positional error.
func (l *List) Addf(p token.Pos, format string, args ...any) {
	*l = append(*l, Newf(p, format, args...))
}

// Sorted returns a copy of l ordered by primary position, matching spec §5's
// determinism requirement ("Diagnostic lists are deterministic in order").
func (l List) Sorted() List {
	out := slices.Clone(l)
	slices.SortFunc(out, func(a, b Error) int {
		return comparePosWithNoPosFirst(a.Position(), b.Position())
	})
	return out
}

func comparePosWithNoPosFirst(a, b token.Pos) int {
	if a == b {
		return 0
	}
	if !a.IsValid() {
		return -1
	}
	if !b.IsValid() {
		return +1
	}
	return a.Compare(b)
}

// Promote converts a plain Go error into a diag.Error, preserving it as-is
// if it already implements the interface.
func Promote(err error) Error {
	var e Error
	if errors.As(err, &e) {
		return e
	}
	return &posError{pos: token.NoPos, Message: NewMessagef("%s", err.Error())}
}
