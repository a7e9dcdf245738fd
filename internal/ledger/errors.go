package ledger

import (
	"errors"
	"fmt"
)

// Kind classifies a ledger failure so transport layers can map it to a
// status code without matching on reason strings.
type Kind int

const (
	// KindValidation covers malformed or out-of-policy input: past
	// event dates, zero capacity, unknown identifiers, prices above cap.
	KindValidation Kind = iota
	// KindAuthorization covers callers lacking the required role or
	// ownership over the entity they operate on.
	KindAuthorization
	// KindStateConflict covers operations that are invalid in the
	// entity's current state: double validation, sold-out events,
	// settling a ticket that is not listed.
	KindStateConflict
	// KindTiming covers operations attempted outside their time window.
	KindTiming
	// KindPayment covers underfunded operations.
	KindPayment
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuthorization:
		return "authorization"
	case KindStateConflict:
		return "state_conflict"
	case KindTiming:
		return "timing"
	case KindPayment:
		return "payment"
	}
	return "unknown"
}

// Error is a caller-visible ledger failure. Every precondition in the
// ledger aborts with one of the package sentinels below; reason strings
// are stable so callers and tests can rely on them.
type Error struct {
	Kind   Kind
	Reason string
}

func (e *Error) Error() string { return e.Reason }

// Is lets errors.Is match any *Error of the same kind and reason, so
// sentinels survive wrapping with fmt.Errorf("%w", ...).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.Reason == e.Reason
}

func errf(kind Kind, reason string) *Error { return &Error{Kind: kind, Reason: reason} }

// Sentinel failures, one per distinct precondition.
var (
	ErrEventNotFound    = errf(KindValidation, "event not found")
	ErrInvalidSchedule  = errf(KindValidation, "event date must be in the future")
	ErrInvalidCapacity  = errf(KindValidation, "capacity must be positive")
	ErrInvalidQuantity  = errf(KindValidation, "quantity must be positive")
	ErrInvalidPrice     = errf(KindValidation, "price must not be negative")
	ErrUnknownTicket    = errf(KindValidation, "unknown ticket")
	ErrUnknownAccount   = errf(KindValidation, "unknown account")
	ErrResaleNotAllowed = errf(KindValidation, "resale not allowed")
	ErrExceedsCap       = errf(KindValidation, "exceeds resale cap")

	ErrUnauthorized       = errf(KindAuthorization, "unauthorized")
	ErrNotOwner           = errf(KindAuthorization, "not owner")
	ErrNotSeller          = errf(KindAuthorization, "not seller")
	ErrNotOwnerOrApproved = errf(KindAuthorization, "not owner or approved")

	ErrSoldOut      = errf(KindStateConflict, "sold out")
	ErrAlreadyUsed  = errf(KindStateConflict, "ticket already used")
	ErrNotListed    = errf(KindStateConflict, "not listed")
	ErrListingStale = errf(KindStateConflict, "seller no longer owns ticket")

	ErrSalesClosed       = errf(KindTiming, "ticket sales closed: event has started or passed")
	ErrTooLateToPurchase = errf(KindTiming, "less than 1 hour to event")

	ErrInsufficientPayment = errf(KindPayment, "insufficient payment")
	ErrInsufficientFunds   = errf(KindPayment, "insufficient account balance")
)

// KindOf extracts the Kind from err when it is (or wraps) a ledger
// Error; ok is false for foreign errors such as storage failures.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// wrapf annotates a storage error without losing the original chain.
func wrapf(err error, format string, args ...interface{}) error {
	return fmt.Errorf(format+": %w", append(args, err)...)
}
