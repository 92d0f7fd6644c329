package service

import (
	"errors"
	"fmt"
)

type ErrorKind string

const (
	KindNotFound     ErrorKind = "not_found"
	KindBadRequest   ErrorKind = "bad_request"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindConflict     ErrorKind = "conflict"
	KindInternal     ErrorKind = "internal"
)

var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrBadRequest   = &Error{Kind: KindBadRequest}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrConflict     = &Error{Kind: KindConflict}
	ErrInternal     = &Error{Kind: KindInternal}
)

// Error is the failure type returned by services. Message is safe to show to
// clients; Cause is for logs only.
type Error struct {
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// Is matches any *Error of the same kind, so errors.Is(err, ErrNotFound) works
// for every not-found failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

func newError(kind ErrorKind, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

func notFound(msg string) error     { return newError(KindNotFound, msg, nil) }
func badRequest(msg string) error   { return newError(KindBadRequest, msg, nil) }
func unauthorized(msg string) error { return newError(KindUnauthorized, msg, nil) }
func forbidden(msg string) error    { return newError(KindForbidden, msg, nil) }
func conflict(msg string) error     { return newError(KindConflict, msg, nil) }

func internal(msg string, cause error) error { return newError(KindInternal, msg, cause) }

// KindOf reports the kind of err, defaulting to KindInternal.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
