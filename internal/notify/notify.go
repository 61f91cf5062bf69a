// Package notify delivers best-effort messages to marketplace participants.
// Dispatch never blocks and never fails the business transaction: every
// implementation swallows delivery errors after logging them.
package notify

// NewOfferEvent goes to the seller when a buyer places an offer.
type NewOfferEvent struct {
	SellerEmail  string
	SellerName   string
	BuyerName    string
	AnimalType   string
	BloodType    string
	Quantity     int
	OfferedPrice string
	ExpiresAt    string
}

// OfferDecidedEvent goes to a buyer whose offer was accepted or rejected
// (including the losing bidders of a mass-reject).
type OfferDecidedEvent struct {
	BuyerEmail string
	BuyerName  string
	Accepted   bool
	AnimalType string
	BloodType  string
	Quantity   int
}

// PaymentConfirmedEvent goes to both parties once an order is paid.
type PaymentConfirmedEvent struct {
	Email    string
	Name     string
	OrderId  string
	Total    string
	IsSeller bool
}

type DigestListing struct {
	HospitalName  string
	AnimalType    string
	BloodType     string
	Quantity      int
	PricePerUnit  string
	DistanceMiles float64
}

type DailyDigestEvent struct {
	HospitalEmail string
	HospitalName  string
	Listings      []DigestListing
}

type Notifier interface {
	NewOffer(e NewOfferEvent)
	OfferDecided(e OfferDecidedEvent)
	PaymentConfirmed(e PaymentConfirmedEvent)
	DailyDigest(e DailyDigestEvent)
}
