package errors

import (
	"errors"
	"fmt"
)

var (
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyInState     = errors.New("already in state")
	ErrAccountInactive    = errors.New("account inactive")
	ErrOutOfStock         = errors.New("out of stock")
	ErrOfferUnavailable   = errors.New("offer unavailable")
	ErrInvalidInput       = errors.New("invalid input")
	ErrAlreadyExists      = errors.New("already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrConflict signals a lost compare-and-set race inside storage. It never
	// leaves the usecase layer.
	ErrConflict = errors.New("concurrent modification")
)

// DenialReason explains why the authorization guard refused an action.
type DenialReason string

const (
	ReasonNotOwner         DenialReason = "NOT_OWNER"
	ReasonInsufficientRole DenialReason = "INSUFFICIENT_ROLE"
	ReasonAccountInactive  DenialReason = "ACCOUNT_INACTIVE"
)

// DeniedError is returned by the authorization guard. It matches ErrForbidden,
// and ErrAccountInactive when the actor is not active.
type DeniedError struct {
	Reason DenialReason
}

// Denied builds a DeniedError for reason.
func Denied(reason DenialReason) *DeniedError {
	return &DeniedError{Reason: reason}
}

func (e *DeniedError) Error() string {
	return fmt.Sprintf("forbidden: %s", e.Reason)
}

func (e *DeniedError) Unwrap() error {
	return ErrForbidden
}

func (e *DeniedError) Is(target error) bool {
	return target == ErrAccountInactive && e.Reason == ReasonAccountInactive
}

// Code returns stable machine readable kind of err.
func Code(err error) string {
	var denied *DeniedError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &denied) && denied.Reason == ReasonAccountInactive:
		return "ACCOUNT_INACTIVE"
	case errors.Is(err, ErrAccountInactive):
		return "ACCOUNT_INACTIVE"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrInvalidTransition):
		return "INVALID_TRANSITION"
	case errors.Is(err, ErrInsufficientStock):
		return "INSUFFICIENT_STOCK"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrAlreadyInState):
		return "ALREADY_IN_STATE"
	case errors.Is(err, ErrOutOfStock):
		return "OUT_OF_STOCK"
	case errors.Is(err, ErrOfferUnavailable):
		return "OFFER_UNAVAILABLE"
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_INPUT"
	case errors.Is(err, ErrAlreadyExists):
		return "ALREADY_EXISTS"
	case errors.Is(err, ErrInvalidCredentials):
		return "INVALID_CREDENTIALS"
	default:
		return "INTERNAL"
	}
}

// IsRejection reports whether err is a caller visible domain outcome rather
// than an infrastructure failure.
func IsRejection(err error) bool {
	code := Code(err)
	return code != "" && code != "INTERNAL"
}

// ReasonOf extracts denial reason from err if present.
func ReasonOf(err error) (DenialReason, bool) {
	var denied *DeniedError
	if errors.As(err, &denied) {
		return denied.Reason, true
	}
	return "", false
}
