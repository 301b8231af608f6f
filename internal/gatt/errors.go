package gatt

import (
	"errors"
	"fmt"
)

// ErrorKind classifies synchronous protocol faults returned to the caller.
type ErrorKind string

const (
	InvalidArgument ErrorKind = "invalid_argument"
	NotSupported    ErrorKind = "not_supported"
	ReadOnly        ErrorKind = "read_only"
)

// ProtocolError is a fault answered synchronously to a property or method call.
type ProtocolError struct {
	Kind ErrorKind
	Msg  string
}

// Error implements the error interface
func (e *ProtocolError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Msg == "" {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

// Is allows errors.Is to compare ProtocolError values by Kind
func (e *ProtocolError) Is(target error) bool {
	if e == nil {
		return false
	}
	t, ok := target.(*ProtocolError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Predefined sentinel errors
var (
	ErrInvalidArgument  = &ProtocolError{Kind: InvalidArgument}
	ErrNotSupported     = &ProtocolError{Kind: NotSupported}
	ErrPropertyReadOnly = &ProtocolError{Kind: ReadOnly}
)

func invalidArgf(format string, args ...any) error {
	return &ProtocolError{Kind: InvalidArgument, Msg: fmt.Sprintf(format, args...)}
}

func notSupportedf(format string, args ...any) error {
	return &ProtocolError{Kind: NotSupported, Msg: fmt.Sprintf(format, args...)}
}

// KindOf reports the ProtocolError kind carried by err, or "" if there is none.
func KindOf(err error) ErrorKind {
	var perr *ProtocolError
	if errors.As(err, &perr) {
		return perr.Kind
	}
	return ""
}
