// Package apperr defines the error kinds returned by the storefront core.
//
// Every kind except KindInternal is an expected business failure: callers
// surface it with its message and do not log it as a system error.
package apperr

import (
	"errors"
	"fmt"
)

type Kind string

const (
	KindEmptyCart             Kind = "EMPTY_CART"
	KindInvalidAddress        Kind = "INVALID_ADDRESS"
	KindItemUnavailable       Kind = "ITEM_UNAVAILABLE"
	KindInsufficientStock     Kind = "INSUFFICIENT_STOCK"
	KindInvalidCoupon         Kind = "INVALID_COUPON"
	KindBelowMinimum          Kind = "BELOW_MINIMUM"
	KindUsageLimitReached     Kind = "USAGE_LIMIT_REACHED"
	KindAlreadyUsedByCustomer Kind = "ALREADY_USED_BY_CUSTOMER"
	KindInvalidTransition     Kind = "INVALID_TRANSITION"
	KindForbidden             Kind = "FORBIDDEN"
	KindNotFound              Kind = "NOT_FOUND"
	KindConflict              Kind = "CONFLICT"
	KindValidation            Kind = "VALIDATION"
	KindUnauthorized          Kind = "UNAUTHORIZED"
	KindInternal              Kind = "INTERNAL"
)

// Sentinels for errors.Is. They match any *Error of the same kind.
var (
	ErrEmptyCart             = &Error{Kind: KindEmptyCart}
	ErrInvalidAddress        = &Error{Kind: KindInvalidAddress}
	ErrItemUnavailable       = &Error{Kind: KindItemUnavailable}
	ErrInsufficientStock     = &Error{Kind: KindInsufficientStock}
	ErrInvalidCoupon         = &Error{Kind: KindInvalidCoupon}
	ErrBelowMinimum          = &Error{Kind: KindBelowMinimum}
	ErrUsageLimitReached     = &Error{Kind: KindUsageLimitReached}
	ErrAlreadyUsedByCustomer = &Error{Kind: KindAlreadyUsedByCustomer}
	ErrInvalidTransition     = &Error{Kind: KindInvalidTransition}
	ErrForbidden             = &Error{Kind: KindForbidden}
	ErrNotFound              = &Error{Kind: KindNotFound}
	ErrConflict              = &Error{Kind: KindConflict}
	ErrValidation            = &Error{Kind: KindValidation}
	ErrUnauthorized          = &Error{Kind: KindUnauthorized}
)

type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Message != "" && e.Err != nil:
		return e.Message + ": " + e.Err.Error()
	case e.Message != "":
		return e.Message
	case e.Err != nil:
		return string(e.Kind) + ": " + e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on kind so that wrapped errors compare equal to the sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

func Wrap(kind Kind, err error, format string, args ...any) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func NotFound(format string, args ...any) error {
	return New(KindNotFound, format, args...)
}

func Conflict(format string, args ...any) error {
	return New(KindConflict, format, args...)
}

func Validation(format string, args ...any) error {
	return New(KindValidation, format, args...)
}

func Forbidden(format string, args ...any) error {
	return New(KindForbidden, format, args...)
}

// KindOf returns the kind of the first *Error in err's chain, or
// KindInternal when there is none.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf returns the user-facing message for err. Internal errors get a
// generic message so driver details never reach a client.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindInternal {
		if e.Message != "" {
			return e.Message
		}
		return string(e.Kind)
	}
	return "internal error"
}

func IsBusiness(err error) bool {
	k := KindOf(err)
	return k != "" && k != KindInternal
}
