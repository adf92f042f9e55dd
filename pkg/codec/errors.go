package codec

import (
	"fmt"
	"strings"
)

// Kind categorizes a codec failure.
type Kind string

const (
	KindFormat          Kind = "format"           // empty format, negative width, bad names
	KindUnknownField    Kind = "unknown_field"    // name not in the format or value store
	KindInvalidArgument Kind = "invalid_argument" // unsupported value type or bad index
	KindType            Kind = "type"             // integer given for a variable-length field
	KindLengthMismatch  Kind = "length_mismatch"  // value length disagrees with declared width
	KindOutOfRange      Kind = "out_of_range"     // integer does not fit the declared width
	KindAlignment       Kind = "alignment"        // total bit length not divisible by 8
	KindOutOfBounds     Kind = "out_of_bounds"    // decode would read past the packet
)

// Sentinels for errors.Is. Matching is by Kind only.
var (
	ErrFormat          = &Error{Kind: KindFormat}
	ErrUnknownField    = &Error{Kind: KindUnknownField}
	ErrInvalidArgument = &Error{Kind: KindInvalidArgument}
	ErrType            = &Error{Kind: KindType}
	ErrLengthMismatch  = &Error{Kind: KindLengthMismatch}
	ErrOutOfRange      = &Error{Kind: KindOutOfRange}
	ErrAlignment       = &Error{Kind: KindAlignment}
	ErrOutOfBounds     = &Error{Kind: KindOutOfBounds}
)

// Error is returned by every failing codec operation.
type Error struct {
	Op     string // operation, e.g. "set", "encode", "decode"
	Kind   Kind
	Field  string
	Detail string
	Value  any
	Cause  error
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteString("codec")
	if e.Op != "" {
		b.WriteByte(' ')
		b.WriteString(e.Op)
	}
	b.WriteString(": ")
	b.WriteString(string(e.Kind))

	if e.Field != "" {
		b.WriteString(" at field ")
		b.WriteString(fmt.Sprintf("%q", e.Field))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a codec error of the same Kind.
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Kind == t.Kind
	}
	return false
}

func newErr(op string, kind Kind, field string, format string, args ...any) *Error {
	detail := format
	if len(args) > 0 {
		detail = fmt.Sprintf(format, args...)
	}
	return &Error{
		Op:     op,
		Kind:   kind,
		Field:  field,
		Detail: detail,
	}
}

func formatErr(field string, format string, args ...any) *Error {
	return newErr("validate", KindFormat, field, format, args...)
}

func unknownField(op, field string) *Error {
	return newErr(op, KindUnknownField, field, "field not found")
}

func outOfBounds(field string, bitIndex, bitLen int) *Error {
	e := newErr("decode", KindOutOfBounds, field, "bit %d out of bounds (packet has %d bits)", bitIndex, bitLen)
	e.Value = bitIndex
	return e
}
