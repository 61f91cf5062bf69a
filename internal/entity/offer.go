package entity

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// db model
type Offer struct {
	Id           uuid.UUID       `json:"id" db:"id"`
	ListingId    uuid.UUID       `json:"listingId" db:"listing_id"`
	BuyerId      uuid.UUID       `json:"buyerId" db:"buyer_id"`
	OfferedPrice decimal.Decimal `json:"offeredPrice" db:"offered_price"`
	Quantity     int             `json:"quantity" db:"quantity"`
	Message      string          `json:"message" db:"message"`
	Status       string          `json:"status" db:"status"`
	ExpiresAt    time.Time       `json:"expiresAt" db:"expires_at"`
	AcceptedAt   sql.NullTime    `json:"acceptedAt" db:"accepted_at"`
	RejectedAt   sql.NullTime    `json:"rejectedAt" db:"rejected_at"`
	CreatedAt    string          `json:"createdAt" db:"created_at"`
}

// IsExpired reports whether the offer's validity window has passed,
// regardless of the persisted status.
func (o *Offer) IsExpired(now time.Time) bool {
	return now.After(o.ExpiresAt)
}

// service + repo input model
type CreateOfferInput struct {
	ListingId    string // given
	BuyerId      string // given
	OfferedPrice decimal.Decimal
	Quantity     int
	Message      string
	// Status should be set: "Pending"
	// ExpiresAt should be set: now + common.OfferWindow
	// Id UUID sets automatically
	// CreatedAt sets automatically
}

// controller model
type OfferOutputModel struct {
	Id           string `json:"id"`
	ListingId    string `json:"listingId"`
	BuyerId      string `json:"buyerId"`
	OfferedPrice string `json:"offeredPrice"`
	Quantity     int    `json:"quantity"`
	Message      string `json:"message,omitempty"`
	Status       string `json:"status"`
	ExpiresAt    string `json:"expiresAt"`
	AcceptedAt   string `json:"acceptedAt,omitempty"`
	RejectedAt   string `json:"rejectedAt,omitempty"`
	CreatedAt    string `json:"createdAt"`
}
