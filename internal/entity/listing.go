package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// db model
type BloodListing struct {
	Id                uuid.UUID       `json:"id" db:"id"`
	HospitalId        uuid.UUID       `json:"hospitalId" db:"hospital_id"`
	AnimalType        string          `json:"animalType" db:"animal_type"`
	BloodType         string          `json:"bloodType" db:"blood_type"`
	Quantity          int             `json:"quantity" db:"quantity"`
	PricePerUnit      decimal.Decimal `json:"pricePerUnit" db:"price_per_unit"`
	ExpirationDate    time.Time       `json:"expirationDate" db:"expiration_date"`
	StorageConditions string          `json:"storageConditions" db:"storage_conditions"`
	Notes             string          `json:"notes" db:"notes"`
	IsActive          bool            `json:"isActive" db:"is_active"`
	CreatedAt         string          `json:"createdAt" db:"created_at"`
}

// IsExpired reports whether the listed product itself has passed its
// expiration date (distinct from offer expiry).
func (l *BloodListing) IsExpired(now time.Time) bool {
	return l.ExpirationDate.Before(now)
}

// service + repo input model
type CreateListingInput struct {
	HospitalId        string // given
	AnimalType        string // given
	BloodType         string // given
	Quantity          int    // given
	PricePerUnit      decimal.Decimal
	ExpirationDate    time.Time
	StorageConditions string
	Notes             string
	// Id UUID sets automatically
	// IsActive set to true
	// CreatedAt sets automatically
}

// service + repo input model; nil/zero fields keep their current values
type UpdateListingInput struct {
	Quantity          *int
	PricePerUnit      *decimal.Decimal
	ExpirationDate    *time.Time
	StorageConditions *string
	Notes             *string
	IsActive          *bool
}

// marketplace browse filter
type ListingFilter struct {
	AnimalType string
	BloodType  string
	MinPrice   *decimal.Decimal
	MaxPrice   *decimal.Decimal
	SortBy     string // created_at | price_asc | price_desc | expiration
	ExcludedId uuid.UUID
}

// controller model
type ListingOutputModel struct {
	Id                string `json:"id"`
	HospitalId        string `json:"hospitalId"`
	AnimalType        string `json:"animalType"`
	BloodType         string `json:"bloodType"`
	Quantity          int    `json:"quantity"`
	PricePerUnit      string `json:"pricePerUnit"`
	ExpirationDate    string `json:"expirationDate"`
	StorageConditions string `json:"storageConditions"`
	Notes             string `json:"notes,omitempty"`
	IsActive          bool   `json:"isActive"`
	CreatedAt         string `json:"createdAt"`
}
