package repo_errors

import "errors"

var (
	ErrNotFound = errors.New("entity not found")

	// ErrInsufficientQuantity is returned by conditional quantity checks: the
	// decrement at payment confirmation and the re-check inside offer
	// acceptance.
	ErrInsufficientQuantity = errors.New("insufficient listing quantity")

	// ErrNotPending is returned when a conditional status transition matched
	// the row but the offer had already left the Pending state.
	ErrNotPending = errors.New("offer is not pending")
)
