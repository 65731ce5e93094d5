package candid

import (
	"fmt"
)

// Position is a one-based line and column in a source text.
type Position struct {
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// ParseError reports malformed source text.
type ParseError struct {
	Source string
	Pos    Position
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s (%s): %s", e.Source, e.Pos, e.Msg)
}

// TypeError reports a well-formed but ill-typed interface description.
type TypeError struct {
	Msg string
}

func newTypeError(format string, args ...any) *TypeError {
	return &TypeError{Msg: fmt.Sprintf(format, args...)}
}

func (e *TypeError) Error() string {
	return e.Msg
}
