// Package errs holds the typed errors returned by the usecase layer. Handlers
// translate the Kind into an HTTP status; nothing below the handler layer knows
// about status codes.
package errs

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindNotFound             Kind = "NOT_FOUND"
	KindDuplicate            Kind = "DUPLICATE"
	KindUnauthorized         Kind = "UNAUTHORIZED"
	KindForbidden            Kind = "FORBIDDEN"
	KindSubscriptionRequired Kind = "SUBSCRIPTION_REQUIRED"
	KindUsageLimitExceeded   Kind = "USAGE_LIMIT_EXCEEDED"
	KindBadRequest           Kind = "BAD_REQUEST"
	KindConflict             Kind = "CONFLICT"
	KindUpstreamPayment      Kind = "UPSTREAM_PAYMENT_ERROR"
	KindInternal             Kind = "INTERNAL"
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so errors.Is(err, errs.ErrNotFound)
// works for every not-found error regardless of message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind && t.Message == ""
}

// Sentinels for errors.Is comparisons.
var (
	ErrNotFound             = &Error{Kind: KindNotFound}
	ErrDuplicate            = &Error{Kind: KindDuplicate}
	ErrUnauthorized         = &Error{Kind: KindUnauthorized}
	ErrForbidden            = &Error{Kind: KindForbidden}
	ErrSubscriptionRequired = &Error{Kind: KindSubscriptionRequired}
	ErrUsageLimitExceeded   = &Error{Kind: KindUsageLimitExceeded}
	ErrBadRequest           = &Error{Kind: KindBadRequest}
	ErrConflict             = &Error{Kind: KindConflict}
	ErrUpstreamPayment      = &Error{Kind: KindUpstreamPayment}
)

func New(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func NotFound(resource, id string) *Error {
	if id == "" {
		return New(KindNotFound, "%s not found", resource)
	}
	return New(KindNotFound, "%s %q not found", resource, id)
}

func Duplicate(format string, args ...interface{}) *Error {
	return New(KindDuplicate, format, args...)
}

func Unauthorized(message string) *Error {
	return New(KindUnauthorized, "%s", message)
}

func Forbidden(format string, args ...interface{}) *Error {
	return New(KindForbidden, format, args...)
}

func SubscriptionRequired(format string, args ...interface{}) *Error {
	return New(KindSubscriptionRequired, format, args...)
}

func UsageLimitExceeded(format string, args ...interface{}) *Error {
	return New(KindUsageLimitExceeded, format, args...)
}

func BadRequest(format string, args ...interface{}) *Error {
	return New(KindBadRequest, format, args...)
}

func Conflict(format string, args ...interface{}) *Error {
	return New(KindConflict, format, args...)
}

func UpstreamPayment(err error) *Error {
	return Wrap(KindUpstreamPayment, err, "payment provider error")
}

// KindOf returns the Kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func IsNotFound(err error) bool {
	return KindOf(err) == KindNotFound
}

func IsDuplicate(err error) bool {
	return KindOf(err) == KindDuplicate
}
