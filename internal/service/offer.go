package service

import (
	"context"
	"errors"
	"time"
	"vetblood-market-api/internal/common"
	"vetblood-market-api/internal/entity"
	"vetblood-market-api/internal/notify"
	"vetblood-market-api/internal/payment"
	"vetblood-market-api/internal/pricing"
	"vetblood-market-api/internal/repo"
	"vetblood-market-api/internal/repo/repo_errors"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

type OfferService struct {
	offerRepo    repo.Offer
	listingRepo  repo.Listing
	hospitalRepo repo.Hospital
	provider     payment.Provider
	notifier     notify.Notifier
	schedule     pricing.Schedule
	log          *logrus.Logger
}

func NewOfferService(repos *repo.Repositories, provider payment.Provider, notifier notify.Notifier,
	schedule pricing.Schedule, log *logrus.Logger) *OfferService {
	return &OfferService{
		offerRepo:    repos.Offer,
		listingRepo:  repos.Listing,
		hospitalRepo: repos.Hospital,
		provider:     provider,
		notifier:     notifier,
		schedule:     schedule,
		log:          log,
	}
}

// SweepExpired flips every pending offer whose window has passed to Expired.
// It runs at the top of every offer operation, so no request ever acts on an
// offer that is pending only on paper.
func (s *OfferService) SweepExpired(ctx context.Context) (int64, error) {
	return s.offerRepo.ExpirePendingOffers(ctx, time.Now())
}

func (s *OfferService) CreateOffer(ctx context.Context, caller entity.Caller, input *entity.CreateOfferInput) (*entity.OfferOutputModel, error) {
	if _, err := s.SweepExpired(ctx); err != nil {
		return nil, err
	}

	listing, err := s.listingRepo.GetListingById(ctx, input.ListingId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrListingNotFound
		}

		return nil, err
	}

	now := time.Now()
	if !listing.IsActive {
		return nil, ErrListingInactive
	}
	if listing.IsExpired(now) {
		return nil, ErrListingExpired
	}
	if input.Quantity > listing.Quantity {
		return nil, &InsufficientQuantityError{Available: listing.Quantity}
	}
	if listing.HospitalId == caller.Id {
		return nil, ErrSelfTransaction
	}

	exists, err := s.offerRepo.HasPendingOffer(ctx, input.ListingId, caller.Id.String())
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrDuplicatePendingOffer
	}

	input.BuyerId = caller.Id.String()
	id, err := s.offerRepo.CreateOffer(ctx, input)
	if err != nil {
		return nil, err
	}

	offer, err := s.offerRepo.GetOfferById(ctx, id.String())
	if err != nil {
		return nil, err
	}

	s.notifyNewOffer(ctx, listing, offer)

	return mapOffer(offer), nil
}

func (s *OfferService) GetOfferById(ctx context.Context, caller entity.Caller, offerId string) (*entity.OfferOutputModel, error) {
	if _, err := s.SweepExpired(ctx); err != nil {
		return nil, err
	}

	offer, err := s.offerRepo.GetOfferById(ctx, offerId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrOfferNotFound
		}

		return nil, err
	}

	if offer.BuyerId == caller.Id {
		return mapOffer(offer), nil
	}

	listing, err := s.listingRepo.GetListingById(ctx, offer.ListingId.String())
	if err != nil {
		return nil, err
	}
	if listing.HospitalId != caller.Id {
		return nil, ErrNotOfferParty
	}

	return mapOffer(offer), nil
}

func (s *OfferService) GetOwnOffers(ctx context.Context, caller entity.Caller, status string, pg *entity.PaginationInput) ([]entity.OfferOutputModel, error) {
	if _, err := s.SweepExpired(ctx); err != nil {
		return nil, err
	}

	offers, err := s.offerRepo.GetBuyerOffers(ctx, caller.Id.String(), status, pg)
	if err != nil {
		return nil, err
	}

	return mapOffers(offers), nil
}

func (s *OfferService) GetReceivedOffers(ctx context.Context, caller entity.Caller, pg *entity.PaginationInput) ([]entity.OfferOutputModel, error) {
	if _, err := s.SweepExpired(ctx); err != nil {
		return nil, err
	}

	offers, err := s.offerRepo.GetSellerOffers(ctx, caller.Id.String(), pg)
	if err != nil {
		return nil, err
	}

	return mapOffers(offers), nil
}

func (s *OfferService) CancelOffer(ctx context.Context, caller entity.Caller, offerId string) (*entity.OfferOutputModel, error) {
	if _, err := s.SweepExpired(ctx); err != nil {
		return nil, err
	}

	offer, err := s.offerRepo.GetOfferById(ctx, offerId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrOfferNotFound
		}

		return nil, err
	}

	if offer.BuyerId != caller.Id {
		return nil, ErrNotOfferBuyer
	}
	if offer.Status != common.OfferPending {
		return nil, &InvalidStateError{Entity: "offer", Status: offer.Status}
	}

	if err = s.offerRepo.SetOfferStatusIfPending(ctx, offerId, common.OfferCancelled); err != nil {
		return nil, s.transitionError(ctx, offerId, err)
	}

	offer, err = s.offerRepo.GetOfferById(ctx, offerId)
	if err != nil {
		return nil, err
	}

	return mapOffer(offer), nil
}

func (s *OfferService) RejectOffer(ctx context.Context, caller entity.Caller, offerId string) (*entity.OfferOutputModel, error) {
	if _, err := s.SweepExpired(ctx); err != nil {
		return nil, err
	}

	offer, err := s.offerRepo.GetOfferById(ctx, offerId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrOfferNotFound
		}

		return nil, err
	}

	listing, err := s.listingRepo.GetListingById(ctx, offer.ListingId.String())
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrListingNotFound
		}

		return nil, err
	}

	if listing.HospitalId != caller.Id {
		return nil, ErrNotListingOwner
	}
	if offer.Status != common.OfferPending {
		return nil, &InvalidStateError{Entity: "offer", Status: offer.Status}
	}

	if err = s.offerRepo.SetOfferStatusIfPending(ctx, offerId, common.OfferRejected); err != nil {
		return nil, s.transitionError(ctx, offerId, err)
	}

	offer, err = s.offerRepo.GetOfferById(ctx, offerId)
	if err != nil {
		return nil, err
	}

	s.notifyDecision(ctx, listing, offer, false)

	return mapOffer(offer), nil
}

// AcceptOffer runs the settlement path: authorization and expiry checks,
// pricing, payment intent, then the single repository transaction that
// re-checks quantity, accepts this offer, mass-rejects the siblings and
// creates the order. On any transaction failure the offer stays Pending.
func (s *OfferService) AcceptOffer(ctx context.Context, caller entity.Caller, offerId string) (*entity.CheckoutOutputModel, error) {
	if _, err := s.SweepExpired(ctx); err != nil {
		return nil, err
	}

	offer, err := s.offerRepo.GetOfferById(ctx, offerId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrOfferNotFound
		}

		return nil, err
	}

	listing, err := s.listingRepo.GetListingById(ctx, offer.ListingId.String())
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrListingNotFound
		}

		return nil, err
	}

	if listing.HospitalId != caller.Id {
		return nil, ErrNotListingOwner
	}
	if offer.Status != common.OfferPending {
		return nil, &InvalidStateError{Entity: "offer", Status: offer.Status}
	}
	if offer.IsExpired(time.Now()) {
		// close the race between the sweep above and this call
		if err := s.offerRepo.SetOfferStatusIfPending(ctx, offerId, common.OfferExpired); err != nil &&
			!errors.Is(err, repo_errors.ErrNotPending) {
			return nil, err
		}

		return nil, &InvalidStateError{Entity: "offer", Status: common.OfferExpired}
	}
	if !listing.IsActive {
		return nil, ErrListingInactive
	}
	if offer.Quantity > listing.Quantity {
		return nil, &InsufficientQuantityError{Available: listing.Quantity}
	}

	totals, err := pricing.ComputeTotals(s.schedule, offer.Quantity, offer.OfferedPrice)
	if err != nil {
		return nil, err
	}

	intent, err := s.createIntent(ctx, listing, totals, map[string]string{
		"offerId":   offer.Id.String(),
		"listingId": listing.Id.String(),
		"buyerId":   offer.BuyerId.String(),
		"sellerId":  listing.HospitalId.String(),
	})
	if err != nil {
		return nil, err
	}

	orderInput := &entity.CreateOrderInput{
		BuyerId:         offer.BuyerId,
		SellerId:        listing.HospitalId,
		Subtotal:        totals.Subtotal,
		ServiceFee:      totals.ServiceFee,
		DeliveryFee:     decimal.Zero,
		Total:           totals.Total,
		DeliveryMethod:  common.DeliverySelfPickup,
		PaymentIntentId: intent.Id,
		ListingId:       listing.Id,
		Quantity:        offer.Quantity,
		PricePerUnit:    offer.OfferedPrice,
	}

	orderId, rejected, err := s.offerRepo.AcceptOfferAndCreateOrder(ctx, offer.Id, orderInput)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"offerId":  offer.Id,
			"intentId": intent.Id,
		}).WithError(err).Warn("offer acceptance rolled back, payment intent abandoned")

		if errors.Is(err, repo_errors.ErrInsufficientQuantity) {
			available := listing.Quantity
			if current, lookupErr := s.listingRepo.GetListingById(ctx, listing.Id.String()); lookupErr == nil {
				available = current.Quantity
			}

			return nil, &InsufficientQuantityError{Available: available}
		}
		if errors.Is(err, repo_errors.ErrNotPending) {
			return nil, s.transitionError(ctx, offerId, err)
		}

		return nil, err
	}

	s.notifyDecision(ctx, listing, offer, true)
	for _, loser := range rejected {
		s.notifyDecision(ctx, listing, &loser, false)
	}

	return &entity.CheckoutOutputModel{
		OrderId:      orderId.String(),
		ClientSecret: intent.ClientSecret,
		DemoMode:     !s.provider.Enabled(),
	}, nil
}

func (s *OfferService) createIntent(ctx context.Context, listing *entity.BloodListing, totals pricing.Totals, metadata map[string]string) (*payment.Intent, error) {
	input := &payment.CreateIntentInput{
		AmountCents: totals.TotalCents(),
		Currency:    "usd",
		Metadata:    metadata,
	}

	seller, err := s.hospitalRepo.GetHospitalById(ctx, listing.HospitalId.String())
	if err != nil && !errors.Is(err, repo_errors.ErrNotFound) {
		return nil, err
	}
	if err == nil && seller.HasPayoutAccount() {
		input.DestinationAccount = seller.StripeAccountId.String
		input.PlatformFeeCents = totals.PlatformFeeCents()
	}

	intent, err := s.provider.CreateIntent(ctx, input)
	if err != nil {
		s.log.WithError(err).Error("payment intent creation failed")

		return nil, ErrPaymentUnavailable
	}

	return intent, nil
}

// transitionError maps a failed conditional transition onto the taxonomy,
// reporting the offer's actual current status.
func (s *OfferService) transitionError(ctx context.Context, offerId string, err error) error {
	if errors.Is(err, repo_errors.ErrNotFound) {
		return ErrOfferNotFound
	}
	if !errors.Is(err, repo_errors.ErrNotPending) {
		return err
	}

	offer, lookupErr := s.offerRepo.GetOfferById(ctx, offerId)
	if lookupErr != nil {
		return err
	}

	return &InvalidStateError{Entity: "offer", Status: offer.Status}
}

func (s *OfferService) notifyNewOffer(ctx context.Context, listing *entity.BloodListing, offer *entity.Offer) {
	seller, err := s.hospitalRepo.GetHospitalById(ctx, listing.HospitalId.String())
	if err != nil {
		s.log.WithField("sellerId", listing.HospitalId).WithError(err).
			Warn("skipping new-offer notice, seller lookup failed")

		return
	}

	buyerName := "A hospital"
	if buyer, err := s.hospitalRepo.GetHospitalById(ctx, offer.BuyerId.String()); err == nil {
		buyerName = buyer.Name
	}

	s.notifier.NewOffer(notify.NewOfferEvent{
		SellerEmail:  seller.Email,
		SellerName:   seller.Name,
		BuyerName:    buyerName,
		AnimalType:   listing.AnimalType,
		BloodType:    listing.BloodType,
		Quantity:     offer.Quantity,
		OfferedPrice: offer.OfferedPrice.StringFixed(2),
		ExpiresAt:    offer.ExpiresAt.Format(time.RFC3339),
	})
}

func (s *OfferService) notifyDecision(ctx context.Context, listing *entity.BloodListing, offer *entity.Offer, accepted bool) {
	buyer, err := s.hospitalRepo.GetHospitalById(ctx, offer.BuyerId.String())
	if err != nil {
		s.log.WithField("buyerId", offer.BuyerId).WithError(err).
			Warn("skipping decision notice, buyer lookup failed")

		return
	}

	s.notifier.OfferDecided(notify.OfferDecidedEvent{
		BuyerEmail: buyer.Email,
		BuyerName:  buyer.Name,
		Accepted:   accepted,
		AnimalType: listing.AnimalType,
		BloodType:  listing.BloodType,
		Quantity:   offer.Quantity,
	})
}
