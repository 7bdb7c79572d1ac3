// Package taskerr classifies remote task service failures into the
// categories the retry and propagation policies are built on.
package taskerr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind is the classified category of a failure.
type Kind string

const (
	KindPermissionDenied         Kind = "permission_denied"
	KindNotFound                 Kind = "not_found"
	KindInvalidParameter         Kind = "invalid_parameter"
	KindRateLimited              Kind = "rate_limited"
	KindTransport                Kind = "transport"
	KindRetryBudgetExceeded      Kind = "retry_budget_exceeded"
	KindCancelled                Kind = "cancelled"
	KindAllCandidatesUnavailable Kind = "all_candidates_unavailable"
	KindUnknown                  Kind = "unknown"
)

// Error is a classified remote service failure. Code and Message carry
// the service response verbatim for diagnostics.
type Error struct {
	Kind       Kind
	Retryable  bool
	Code       int // service error code, 0 when not supplied
	HTTPStatus int
	Message    string

	// RetryAfter is the server-suggested delay for rate-limited
	// responses. Zero means none was supplied (or it was unparsable).
	RetryAfter time.Duration

	// RetriesExhausted marks errors returned after the retry budget ran
	// out, distinguishing "service rejected" from "client gave up".
	RetriesExhausted bool

	// Attempts is the number of attempts made before giving up.
	Attempts int

	cause error
}

func (e *Error) Error() string {
	switch {
	case e.Code != 0:
		return fmt.Sprintf("%s: %d: %s", e.Kind, e.Code, e.Message)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	default:
		return string(e.Kind)
	}
}

func (e *Error) Unwrap() error { return e.cause }

// New builds an Error of the given kind. Retryable stays false; transient
// kinds come out of Classify or FromTransport instead.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// rule pairs a kind with its retry disposition.
type rule struct {
	kind      Kind
	retryable bool
}

// codeRules maps service-specific error codes. Extend here as new codes
// are observed; unknown codes fall through to the HTTP status.
var codeRules = map[int]rule{
	99991672: {KindPermissionDenied, false}, // app lacks task read/write permission
	99991663: {KindNotFound, false},         // resource id does not exist
	99991400: {KindRateLimited, true},       // request frequency limit
}

// statusRules maps HTTP status codes used when the body carries no
// recognized service code.
var statusRules = map[int]rule{
	http.StatusBadRequest:      {KindInvalidParameter, false},
	http.StatusUnauthorized:    {KindPermissionDenied, false},
	http.StatusForbidden:       {KindPermissionDenied, false},
	http.StatusNotFound:        {KindNotFound, false},
	http.StatusTooManyRequests: {KindRateLimited, true},
}

// Classify maps a response's HTTP status and service error code to a
// classified Error. Pure function, no I/O. Unrecognized inputs produce
// KindUnknown, non-retryable, with code and message kept verbatim.
func Classify(httpStatus, code int, message string) *Error {
	e := &Error{Code: code, HTTPStatus: httpStatus, Message: message}
	if r, ok := codeRules[code]; ok {
		e.Kind, e.Retryable = r.kind, r.retryable
		return e
	}
	if r, ok := statusRules[httpStatus]; ok {
		e.Kind, e.Retryable = r.kind, r.retryable
		return e
	}
	if httpStatus >= 500 {
		e.Kind, e.Retryable = KindTransport, true
		return e
	}
	e.Kind = KindUnknown
	return e
}

// FromTransport classifies an error raised before any response arrived:
// timeouts, connection resets, cancelled contexts.
func FromTransport(err error) *Error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindCancelled, Message: err.Error(), cause: err}
	}
	return &Error{Kind: KindTransport, Retryable: true, Message: err.Error(), cause: err}
}

// Exhausted wraps the last classified error once the retry budget is
// spent. The original error stays reachable through errors.As.
func Exhausted(last error, attempts int) *Error {
	e := &Error{
		Kind:             KindRetryBudgetExceeded,
		RetriesExhausted: true,
		Attempts:         attempts,
		Message:          last.Error(),
		cause:            last,
	}
	var le *Error
	if errors.As(last, &le) {
		e.Code, e.HTTPStatus = le.Code, le.HTTPStatus
	}
	return e
}

// KindOf returns the classified kind of err, or KindUnknown for errors
// that did not come out of this package.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Retryable reports whether the classifier marked err safe to retry.
func Retryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}

// RetryAfterOf returns the server-suggested delay carried by err, or
// zero when none is present.
func RetryAfterOf(err error) time.Duration {
	var e *Error
	if errors.As(err, &e) {
		return e.RetryAfter
	}
	return 0
}

// IsNotFound reports whether err is a classified not-found failure.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsCancelled reports whether err is a classified cancellation.
func IsCancelled(err error) bool { return KindOf(err) == KindCancelled }
