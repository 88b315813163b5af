package model

import (
	"errors"
	"fmt"
)

// Error kinds. Every typed error below matches exactly one of them through errors.Is,
// so callers can branch on the kind without knowing the concrete type.
var (
	ErrValidation   = errors.New("validation failed")
	ErrInvalidState = errors.New("invalid state")
	ErrUnauthorized = errors.New("not authorized")
	ErrCollaborator = errors.New("collaborator failure")
)

var (
	ErrInvoiceNotFound  = errors.New("invoice not found")
	ErrCustomerNotFound = errors.New("customer not found")
	ErrVehicleNotFound  = errors.New("vehicle not found")
	ErrProfileNotFound  = errors.New("profile not found")
	ErrShopNotFound     = errors.New("shop not found")

	// ErrInvoiceNotEditable is reported by stores whose conditional write found the invoice
	// outside of draft.
	ErrInvoiceNotEditable = &InvalidStateError{Reason: "invoice not editable"}

	ErrInvoiceAlreadyFinalized = &InvalidStateError{Reason: "invoice is already finalized"}

	// ErrTotalsStale marks a line item that was persisted while the following totals
	// recalculation failed.
	ErrTotalsStale = errors.New("invoice totals are stale")

	ErrUnauthenticated = errors.New("no valid session")
)

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string { return e.Reason }

func (e *InvalidStateError) Is(target error) bool {
	if target == ErrInvalidState {
		return true
	}
	t, ok := target.(*InvalidStateError)
	return ok && t.Reason == e.Reason
}

type AuthorizationError struct {
	Action Action
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("not allowed to %s: %s", e.Action, e.Reason)
}

func (e *AuthorizationError) Is(target error) bool { return target == ErrUnauthorized }

// CollaboratorError carries the message of a failed backend call unchanged.
// Error returns that message verbatim so it can be shown to the user as is.
type CollaboratorError struct {
	Op      string
	Message string
	Stale   bool
	Err     error
}

func (e *CollaboratorError) Error() string { return e.Message }

func (e *CollaboratorError) Unwrap() error { return e.Err }

func (e *CollaboratorError) Is(target error) bool {
	switch target {
	case ErrCollaborator:
		return true
	case ErrTotalsStale:
		return e.Stale
	}
	return false
}

// NewCollaboratorError wraps err unless it already is a collaborator error.
func NewCollaboratorError(op string, err error) error {
	var collabErr *CollaboratorError
	if errors.As(err, &collabErr) {
		return err
	}
	return &CollaboratorError{Op: op, Message: err.Error(), Err: err}
}
