package common

import "time"

// Offer statuses. Pending is the only non-terminal state.
const (
	OfferPending   = "Pending"
	OfferAccepted  = "Accepted"
	OfferRejected  = "Rejected"
	OfferExpired   = "Expired"
	OfferCancelled = "Cancelled"
)

// Order statuses.
const (
	OrderPending   = "Pending"
	OrderConfirmed = "Confirmed"
)

// Payment statuses.
const (
	PaymentPending = "Pending"
	PaymentPaid    = "Paid"
)

const (
	DeliverySelfPickup = "self-pickup"
	DeliveryCourier    = "courier"
)

const (
	AnimalDog = "Dog"
	AnimalCat = "Cat"
)

// OfferWindow is how long an offer stays open after creation. The deadline is
// stored with the offer and evaluated lazily, so it survives restarts.
const OfferWindow = 24 * time.Hour

// DigestRadiusMiles bounds which listings appear in a hospital's daily digest.
const DigestRadiusMiles = 50.0

var dogBloodTypes = []string{"DEA 1.1+", "DEA 1.1-", "DEA 3", "DEA 4", "DEA 5", "DEA 7"}
var catBloodTypes = []string{"A", "B", "AB"}

// BloodTypesFor returns the valid blood types for an animal type,
// nil for an unknown animal.
func BloodTypesFor(animalType string) []string {
	switch animalType {
	case AnimalDog:
		return dogBloodTypes
	case AnimalCat:
		return catBloodTypes
	}

	return nil
}

// IsValidBloodType reports whether bloodType belongs to the animal's set.
func IsValidBloodType(animalType string, bloodType string) bool {
	for _, t := range BloodTypesFor(animalType) {
		if t == bloodType {
			return true
		}
	}

	return false
}
