// Package apperr defines the error taxonomy shared by the services and the
// HTTP layer. Every failure that reaches a handler is classified by Kind and
// mapped to a status code; the client only ever sees a flat message.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for reporting.
type Kind int

const (
	KindInternal Kind = iota
	KindAuthentication
	KindValidation
	KindNotFound
	KindExtraction
	KindParse
	KindNormalization
	KindDownstream
	KindTimeout
)

func (k Kind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindExtraction:
		return "extraction"
	case KindParse:
		return "parse"
	case KindNormalization:
		return "normalization"
	case KindDownstream:
		return "downstream"
	case KindTimeout:
		return "timeout"
	default:
		return "internal"
	}
}

// Error is a classified error. Op names the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// E wraps err with a kind and operation name.
func E(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// Errorf builds a classified error from a format string.
func Errorf(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf returns the kind of the outermost classified error in err's chain.
// Unclassified errors are KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}

// Status maps a kind to the HTTP status reported to clients.
func Status(kind Kind) int {
	switch kind {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Message returns the reason carried by the outermost classified error,
// without its operation prefix. It is safe to show for validation failures.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Err != nil {
		return e.Err.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
