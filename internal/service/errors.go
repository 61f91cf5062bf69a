package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrListingNotFound  = errors.New("listing not found")
	ErrOfferNotFound    = errors.New("offer not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrHospitalNotFound = errors.New("hospital not found")

	ErrNotListingOwner = errors.New("only the listing owner can perform this action")
	ErrNotOfferBuyer   = errors.New("only the offer's buyer can perform this action")
	ErrNotOfferParty   = errors.New("only the buyer or the seller can view this offer")
	ErrNotOrderBuyer   = errors.New("only the order's buyer can confirm its payment")

	ErrSelfTransaction       = errors.New("cannot act on your own listing")
	ErrListingInactive       = errors.New("listing is not active")
	ErrListingExpired        = errors.New("listing has expired")
	ErrDuplicatePendingOffer = errors.New("you already have a pending offer on this listing")
	ErrOfferListingMismatch  = errors.New("offer does not belong to the given listing")

	ErrPaymentUnavailable  = errors.New("payment processor unavailable")
	ErrPaymentNotCompleted = errors.New("payment has not completed")
	ErrPaymentMismatch     = errors.New("payment reference does not match the order")
)

// InsufficientQuantityError carries the units actually available so the
// boundary can render an actionable message.
type InsufficientQuantityError struct {
	Available int
}

func (e *InsufficientQuantityError) Error() string {
	return fmt.Sprintf("only %d units available", e.Available)
}

// InvalidStateError reports a transition attempted from the wrong lifecycle
// state; Status is the entity's actual current status.
type InvalidStateError struct {
	Entity string
	Status string
}

func (e *InvalidStateError) Error() string {
	return fmt.Sprintf("%s is already %s", e.Entity, strings.ToLower(e.Status))
}
