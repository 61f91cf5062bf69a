package entity

import (
	"database/sql"

	"github.com/google/uuid"
)

// db model
type Hospital struct {
	Id              uuid.UUID       `json:"id" db:"id"`
	Name            string          `json:"name" db:"name"`
	Email           string          `json:"email" db:"email"`
	Address         string          `json:"address" db:"address"`
	PhoneNumber     string          `json:"phoneNumber" db:"phone_number"`
	LicenseNumber   string          `json:"licenseNumber" db:"license_number"`
	Latitude        sql.NullFloat64 `json:"latitude" db:"latitude"`
	Longitude       sql.NullFloat64 `json:"longitude" db:"longitude"`
	StripeAccountId sql.NullString  `json:"stripeAccountId" db:"stripe_account_id"`
	CreatedAt       string          `json:"createdAt" db:"created_at"`
}

// HasPayoutAccount reports whether the hospital registered a connected
// payment sub-account. Absence is a valid state: funds are then held by the
// platform pending manual payout.
func (h *Hospital) HasPayoutAccount() bool {
	return h.StripeAccountId.Valid && h.StripeAccountId.String != ""
}

// HasCoordinates reports whether the hospital can take part in
// distance-based digests.
func (h *Hospital) HasCoordinates() bool {
	return h.Latitude.Valid && h.Longitude.Valid
}
