package repo

import (
	"context"
	"time"
	"vetblood-market-api/internal/entity"
	"vetblood-market-api/internal/repo/pgdb"
	"vetblood-market-api/pkg/postgres"

	"github.com/google/uuid"
)

type Diagnostics interface {
	Ping() error
}

type Hospital interface {
	GetHospitalById(ctx context.Context, id string) (*entity.Hospital, error)
	GetHospitalsWithCoordinates(ctx context.Context) ([]entity.Hospital, error)
}

type Listing interface {
	CreateListing(ctx context.Context, input *entity.CreateListingInput) (uuid.UUID, error)
	GetListingById(ctx context.Context, id string) (*entity.BloodListing, error)
	GetHospitalListings(ctx context.Context, hospitalId string, pg *entity.PaginationInput) ([]entity.BloodListing, error)
	GetMarketplaceListings(ctx context.Context, filter *entity.ListingFilter, pg *entity.PaginationInput) ([]entity.BloodListing, error)
	UpdateListing(ctx context.Context, id string, input *entity.UpdateListingInput) error
	DeleteListing(ctx context.Context, id string) error
	DecrementQuantity(ctx context.Context, id uuid.UUID, amount int) error
}

type Offer interface {
	CreateOffer(ctx context.Context, input *entity.CreateOfferInput) (uuid.UUID, error)
	GetOfferById(ctx context.Context, id string) (*entity.Offer, error)
	GetBuyerOffers(ctx context.Context, buyerId string, status string, pg *entity.PaginationInput) ([]entity.Offer, error)
	GetSellerOffers(ctx context.Context, sellerId string, pg *entity.PaginationInput) ([]entity.Offer, error)
	HasPendingOffer(ctx context.Context, listingId string, buyerId string) (bool, error)
	ExpirePendingOffers(ctx context.Context, now time.Time) (int64, error)
	SetOfferStatusIfPending(ctx context.Context, id string, newStatus string) error
	RejectPendingOffersForListing(ctx context.Context, listingId uuid.UUID) ([]entity.Offer, error)
	AcceptOfferAndCreateOrder(ctx context.Context, offerId uuid.UUID, order *entity.CreateOrderInput) (uuid.UUID, []entity.Offer, error)
}

type Order interface {
	CreateOrder(ctx context.Context, input *entity.CreateOrderInput) (uuid.UUID, error)
	GetOrderById(ctx context.Context, id string) (*entity.Order, error)
	GetBuyerOrders(ctx context.Context, buyerId string, pg *entity.PaginationInput) ([]entity.Order, error)
	GetSellerOrders(ctx context.Context, sellerId string, pg *entity.PaginationInput) ([]entity.Order, error)
	MarkOrderPaid(ctx context.Context, id string) (*entity.Order, error)
}

type Repositories struct {
	Diagnostics
	Hospital
	Listing
	Offer
	Order
}

func NewRepositories(p *postgres.Postgres) *Repositories {
	return &Repositories{
		Diagnostics: pgdb.NewDiagnosticsRepo(p),
		Hospital:    pgdb.NewHospitalRepo(p),
		Listing:     pgdb.NewListingRepo(p),
		Offer:       pgdb.NewOfferRepo(p),
		Order:       pgdb.NewOrderRepo(p),
	}
}
