// Package apperr defines the error sum type shared by every layer above
// the domain packages. Domain code still returns plain sentinel errors
// (wrapped with fmt.Errorf); the HTTP boundary converts those into one of
// the kinds below before they reach a client. The dispatcher does not use
// this package: it records a driver's error text on the publication row.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind is a closed taxonomy of error categories. New kinds are not added
// lightly: every HTTP error response is derived from this value.
type Kind string

const (
	KindUnauthorized Kind = "unauthorized"
	KindForbidden    Kind = "forbidden"
	KindNotFound     Kind = "not_found"
	KindGone         Kind = "gone"
	KindBadRequest   Kind = "bad_request"
	KindConflict     Kind = "conflict"
	KindUpstream     Kind = "upstream_error"
	KindInternal     Kind = "internal"
)

// Upstream carries a third-party platform's own error code/message,
// preserved verbatim per spec (the driver must not discard it).
type Upstream struct {
	Platform string
	Code     string
	Message  string
	HTTPStat int
}

// Error is the sum type described in Design Notes §9:
// Unauthorized | Forbidden | NotFound | Gone | BadRequest | Upstream{code,message} | Internal{cause}.
type Error struct {
	Kind     Kind
	Message  string
	Cause    error
	Upstream *Upstream
}

func (e *Error) Error() string {
	if e.Upstream != nil {
		return fmt.Sprintf("%s: %s (upstream %s code=%s status=%d)", e.Kind, e.Message, e.Upstream.Platform, e.Upstream.Code, e.Upstream.HTTPStat)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }
func Forbidden(message string) *Error    { return New(KindForbidden, message) }
func NotFound(message string) *Error     { return New(KindNotFound, message) }
func Gone(message string) *Error         { return New(KindGone, message) }
func BadRequest(message string) *Error   { return New(KindBadRequest, message) }
func Conflict(message string) *Error     { return New(KindConflict, message) }
func Internal(cause error) *Error        { return Wrap(KindInternal, "internal error", cause) }

func UpstreamErr(platform, code, message string, httpStatus int) *Error {
	return &Error{
		Kind:    KindUpstream,
		Message: message,
		Upstream: &Upstream{
			Platform: platform,
			Code:     code,
			Message:  message,
			HTTPStat: httpStatus,
		},
	}
}

// As extracts an *Error from err, falling back to Internal(err) when err
// is not already one of our kinds — this is the boundary normalization
// spec §7 requires ("a single exception filter normalizes unknown errors
// to internal").
func As(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}

// HTTPStatus maps a Kind to the status code spec §7 assigns it.
func (k Kind) HTTPStatus() int {
	switch k {
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindGone:
		return http.StatusGone
	case KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
