package resolver

import "fmt"

// ErrorKind enumerates the workspace-discovery failure modes spec §4.E
// names, as exercised by red_knot_workspace's discovery tests.
type ErrorKind uint8

const (
	ErrDuplicateMember ErrorKind = iota
	ErrMemberOutsideRoot
	ErrMemberMissingManifest
	ErrNestedWorkspace
)

// Error is a workspace-configuration-load diagnostic (spec §4.E "Error
// conditions surfaced as the configuration load").
type Error struct {
	Kind ErrorKind
	Path string
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newError(kind ErrorKind, path, format string, args ...any) *Error {
	return &Error{Kind: kind, Path: path, Msg: fmt.Sprintf(format, args...)}
}
