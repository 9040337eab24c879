package ast

import (
	"errors"
	"fmt"
)

// ErrorKind classifies front-end failures. The values follow libclang's
// CXErrorCode.
type ErrorKind int

const (
	ErrorFailure ErrorKind = iota + 1
	ErrorCrashed
	ErrorInvalidArguments
	ErrorASTRead
)

func (k ErrorKind) String() string {
	switch k {
	case ErrorFailure:
		return "failure"
	case ErrorCrashed:
		return "crashed"
	case ErrorInvalidArguments:
		return "invalid_arguments"
	case ErrorASTRead:
		return "ast_read_error"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Error is returned by Frontend operations.
type Error struct {
	Op   string // "parse", "load" or "save"
	Path string
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %s", e.Op, e.Path, e.Kind)
	}
	return fmt.Sprintf("%s %s: %s: %v", e.Op, e.Path, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// KindOf returns the ErrorKind carried by err, or ErrorFailure when err does
// not wrap an *Error.
func KindOf(err error) ErrorKind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return ErrorFailure
}
