package typelib

import (
	"errors"
	"fmt"
)

var (
	ErrTooShort         = errors.New("typelib: buffer too short")
	ErrInvalidHeader    = errors.New("typelib: invalid header")
	ErrInvalidDirectory = errors.New("typelib: invalid directory")
	ErrInvalidEntryType = errors.New("typelib: invalid entry type")
	ErrInvalidBlob      = errors.New("typelib: invalid blob")
)

// ErrorKind classifies a validation failure.
type ErrorKind int

const (
	KindNone ErrorKind = iota
	KindTooShort
	KindInvalidHeader
	KindInvalidDirectory
	KindInvalidEntryType
	KindInvalidBlob
)

func (k ErrorKind) String() string {
	switch k {
	case KindTooShort:
		return "too-short"
	case KindInvalidHeader:
		return "invalid-header"
	case KindInvalidDirectory:
		return "invalid-directory"
	case KindInvalidEntryType:
		return "invalid-entry-type"
	case KindInvalidBlob:
		return "invalid-blob"
	default:
		return "none"
	}
}

func (k ErrorKind) sentinel() error {
	switch k {
	case KindTooShort:
		return ErrTooShort
	case KindInvalidHeader:
		return ErrInvalidHeader
	case KindInvalidDirectory:
		return ErrInvalidDirectory
	case KindInvalidEntryType:
		return ErrInvalidEntryType
	case KindInvalidBlob:
		return ErrInvalidBlob
	default:
		return nil
	}
}

// Error is the single diagnostic returned by a failed validation.
// Offset is the byte offset of the record being checked when the
// violation was found.
type Error struct {
	Kind   ErrorKind
	Offset uint32
	Msg    string
}

func (e *Error) Error() string {
	return fmt.Sprintf("typelib: %s at offset %d: %s", e.Kind, e.Offset, e.Msg)
}

func (e *Error) Unwrap() error {
	return e.Kind.sentinel()
}

// KindOf reports the kind of a validation error, or KindNone when err
// did not come from Validate.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindNone
}

func fail(kind ErrorKind, off uint32, format string, args ...any) error {
	return &Error{Kind: kind, Offset: off, Msg: fmt.Sprintf(format, args...)}
}

func tooShort(off uint32, what string) error {
	return fail(KindTooShort, off, "the buffer is too short for %s", what)
}

func badBlob(off uint32, format string, args ...any) error {
	return fail(KindInvalidBlob, off, format, args...)
}
