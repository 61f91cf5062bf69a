package service

import (
	"context"
	"vetblood-market-api/internal/entity"
	"vetblood-market-api/internal/notify"
	"vetblood-market-api/internal/payment"
	"vetblood-market-api/internal/pricing"
	"vetblood-market-api/internal/repo"

	"github.com/sirupsen/logrus"
)

type Diagnostics interface {
	Ping() error
}

type Listing interface {
	CreateListing(ctx context.Context, caller entity.Caller, input *entity.CreateListingInput) (*entity.ListingOutputModel, error)
	GetListingById(ctx context.Context, listingId string) (*entity.ListingOutputModel, error)
	GetOwnListings(ctx context.Context, caller entity.Caller, pg *entity.PaginationInput) ([]entity.ListingOutputModel, error)
	BrowseMarketplace(ctx context.Context, caller entity.Caller, filter *entity.ListingFilter, pg *entity.PaginationInput) ([]entity.ListingOutputModel, error)
	UpdateListing(ctx context.Context, caller entity.Caller, listingId string, input *entity.UpdateListingInput) (*entity.ListingOutputModel, error)
	DeleteListing(ctx context.Context, caller entity.Caller, listingId string) error
}

type Offer interface {
	CreateOffer(ctx context.Context, caller entity.Caller, input *entity.CreateOfferInput) (*entity.OfferOutputModel, error)
	GetOfferById(ctx context.Context, caller entity.Caller, offerId string) (*entity.OfferOutputModel, error)
	GetOwnOffers(ctx context.Context, caller entity.Caller, status string, pg *entity.PaginationInput) ([]entity.OfferOutputModel, error)
	GetReceivedOffers(ctx context.Context, caller entity.Caller, pg *entity.PaginationInput) ([]entity.OfferOutputModel, error)
	CancelOffer(ctx context.Context, caller entity.Caller, offerId string) (*entity.OfferOutputModel, error)
	RejectOffer(ctx context.Context, caller entity.Caller, offerId string) (*entity.OfferOutputModel, error)
	AcceptOffer(ctx context.Context, caller entity.Caller, offerId string) (*entity.CheckoutOutputModel, error)
	SweepExpired(ctx context.Context) (int64, error)
}

type Checkout interface {
	InitiateCheckout(ctx context.Context, caller entity.Caller, input *entity.InitiateCheckoutInput) (*entity.CheckoutOutputModel, error)
	ConfirmPayment(ctx context.Context, caller entity.Caller, orderId string, paymentIntentId string) (*entity.OrderOutputModel, error)
	GetOwnOrders(ctx context.Context, caller entity.Caller, pg *entity.PaginationInput) ([]entity.OrderOutputModel, error)
	GetSales(ctx context.Context, caller entity.Caller, pg *entity.PaginationInput) ([]entity.OrderOutputModel, error)
}

type Digest interface {
	SendDailyDigest(ctx context.Context) (int, error)
}

type Services struct {
	Diagnostics Diagnostics
	Listing     Listing
	Offer       Offer
	Checkout    Checkout
	Digest      Digest
}

func NewServices(repos *repo.Repositories, provider payment.Provider, notifier notify.Notifier,
	schedule pricing.Schedule, log *logrus.Logger) *Services {
	return &Services{
		Diagnostics: NewDiagnosticsService(repos),
		Listing:     NewListingService(repos, notifier, log),
		Offer:       NewOfferService(repos, provider, notifier, schedule, log),
		Checkout:    NewCheckoutService(repos, provider, notifier, schedule, log),
		Digest:      NewDigestService(repos, notifier, log),
	}
}
