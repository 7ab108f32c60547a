package errors

import "fmt"

// PaseratiError is the interface implemented by all errors this module
// produces. Only the Syntax kind survives here: TypeError/CompileError/
// RuntimeError belonged to the teacher's checker/compiler/VM phases, which
// are out-of-scope collaborators per spec.md §1 ("the executor/semantic
// phases") and were removed along with those packages.
type PaseratiError interface {
	error
	Pos() Position
	Kind() string
	Message() string
}

// SyntaxError represents an error during lexing or parsing.
type SyntaxError struct {
	Position
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("Syntax Error at %d:%d: %s", e.Line, e.Column, e.Msg)
}
func (e *SyntaxError) Pos() Position   { return e.Position }
func (e *SyntaxError) Kind() string    { return "Syntax" }
func (e *SyntaxError) Message() string { return e.Msg }

// ErrorKind categorizes a SyntaxError the way spec.md §7 requires: every
// class-parsing error is one of AbruptEnd, UnexpectedToken, or General.
type ErrorKind int

const (
	AbruptEnd ErrorKind = iota
	UnexpectedToken
	General
)

// ClassParseError is a SyntaxError tagged with the early-error kind of
// spec.md §7, so callers can distinguish "the stream ended where a token
// was required" from "a token appeared that no alternative admits" from a
// general early-error violation (duplicate constructor, forbidden member
// name, invalid super usage, ...).
type ClassParseError struct {
	SyntaxError
	ErrKind ErrorKind
}

func (e *ClassParseError) Kind() string {
	switch e.ErrKind {
	case AbruptEnd:
		return "AbruptEnd"
	case UnexpectedToken:
		return "UnexpectedToken"
	default:
		return "Syntax"
	}
}
