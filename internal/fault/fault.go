package fault

import (
	"errors"
	"fmt"
)

// Kind is the error class of a pipeline failure.
type Kind int

const (
	KindUnknown Kind = iota
	KindTransport
	KindDecode
	KindAggregation
	KindStorage
)

// String returns a short label suitable for logs and metric labels.
func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindDecode:
		return "decode"
	case KindAggregation:
		return "aggregation"
	case KindStorage:
		return "storage"
	default:
		return "unknown"
	}
}

// Error is a classified pipeline error.
type Error struct {
	Kind Kind
	Op   string // Operation that failed, e.g. "decode tick"
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.String() + ": " + e.Op
	}
	return e.Kind.String() + ": " + e.Op + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with a kind and operation name.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Transport returns a transport error.
func Transport(op string, err error) *Error {
	return New(KindTransport, op, err)
}

// Decode returns a decode error.
func Decode(op string, err error) *Error {
	return New(KindDecode, op, err)
}

// Decodef returns a decode error with a formatted cause.
func Decodef(op, format string, args ...any) *Error {
	return New(KindDecode, op, fmt.Errorf(format, args...))
}

// Aggregation returns an aggregation error.
func Aggregation(op string, err error) *Error {
	return New(KindAggregation, op, err)
}

// Storage returns a storage error.
func Storage(op string, err error) *Error {
	return New(KindStorage, op, err)
}

// KindOf returns the kind of the first *Error in err's chain,
// or KindUnknown if there is none.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// Is reports whether err is classified as kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// IsFatal reports whether err must terminate the receive loop.
func IsFatal(err error) bool {
	return Is(err, KindTransport)
}
