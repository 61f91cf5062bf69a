package service

import (
	"context"
	"errors"
	"vetblood-market-api/internal/entity"
	"vetblood-market-api/internal/notify"
	"vetblood-market-api/internal/repo"
	"vetblood-market-api/internal/repo/repo_errors"

	"github.com/sirupsen/logrus"
)

type ListingService struct {
	listingRepo  repo.Listing
	offerRepo    repo.Offer
	hospitalRepo repo.Hospital
	notifier     notify.Notifier
	log          *logrus.Logger
}

func NewListingService(repos *repo.Repositories, notifier notify.Notifier, log *logrus.Logger) *ListingService {
	return &ListingService{
		listingRepo:  repos.Listing,
		offerRepo:    repos.Offer,
		hospitalRepo: repos.Hospital,
		notifier:     notifier,
		log:          log,
	}
}

func (s *ListingService) CreateListing(ctx context.Context, caller entity.Caller, input *entity.CreateListingInput) (*entity.ListingOutputModel, error) {
	input.HospitalId = caller.Id.String()

	id, err := s.listingRepo.CreateListing(ctx, input)
	if err != nil {
		return nil, err
	}

	listing, err := s.listingRepo.GetListingById(ctx, id.String())
	if err != nil {
		return nil, err
	}

	return mapListing(listing), nil
}

func (s *ListingService) GetListingById(ctx context.Context, listingId string) (*entity.ListingOutputModel, error) {
	listing, err := s.listingRepo.GetListingById(ctx, listingId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrListingNotFound
		}

		return nil, err
	}

	return mapListing(listing), nil
}

func (s *ListingService) GetOwnListings(ctx context.Context, caller entity.Caller, pg *entity.PaginationInput) ([]entity.ListingOutputModel, error) {
	listings, err := s.listingRepo.GetHospitalListings(ctx, caller.Id.String(), pg)
	if err != nil {
		return nil, err
	}

	return mapListings(listings), nil
}

func (s *ListingService) BrowseMarketplace(ctx context.Context, caller entity.Caller, filter *entity.ListingFilter, pg *entity.PaginationInput) ([]entity.ListingOutputModel, error) {
	// own listings never show up in the marketplace view
	filter.ExcludedId = caller.Id

	listings, err := s.listingRepo.GetMarketplaceListings(ctx, filter, pg)
	if err != nil {
		return nil, err
	}

	return mapListings(listings), nil
}

func (s *ListingService) UpdateListing(ctx context.Context, caller entity.Caller, listingId string, input *entity.UpdateListingInput) (*entity.ListingOutputModel, error) {
	listing, err := s.listingRepo.GetListingById(ctx, listingId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrListingNotFound
		}

		return nil, err
	}

	if listing.HospitalId != caller.Id {
		return nil, ErrNotListingOwner
	}

	// deactivation cascades: every pending offer on the listing is rejected
	// as part of the same operation
	if input.IsActive != nil && !*input.IsActive && listing.IsActive {
		rejected, err := s.offerRepo.RejectPendingOffersForListing(ctx, listing.Id)
		if err != nil {
			return nil, err
		}
		s.notifyRejected(ctx, listing, rejected)
	}

	if err = s.listingRepo.UpdateListing(ctx, listingId, input); err != nil {
		return nil, err
	}

	listing, err = s.listingRepo.GetListingById(ctx, listingId)
	if err != nil {
		return nil, err
	}

	return mapListing(listing), nil
}

func (s *ListingService) DeleteListing(ctx context.Context, caller entity.Caller, listingId string) error {
	listing, err := s.listingRepo.GetListingById(ctx, listingId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return ErrListingNotFound
		}

		return err
	}

	if listing.HospitalId != caller.Id {
		return ErrNotListingOwner
	}

	// collected before the delete so buyers can still be notified; the
	// delete itself re-runs the reject inside its own transaction
	pending, err := s.offerRepo.RejectPendingOffersForListing(ctx, listing.Id)
	if err != nil {
		return err
	}

	if err = s.listingRepo.DeleteListing(ctx, listingId); err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return ErrListingNotFound
		}

		return err
	}

	s.notifyRejected(ctx, listing, pending)

	return nil
}

func (s *ListingService) notifyRejected(ctx context.Context, listing *entity.BloodListing, rejected []entity.Offer) {
	for _, offer := range rejected {
		buyer, err := s.hospitalRepo.GetHospitalById(ctx, offer.BuyerId.String())
		if err != nil {
			s.log.WithField("buyerId", offer.BuyerId).WithError(err).
				Warn("skipping rejection notice, buyer lookup failed")
			continue
		}

		s.notifier.OfferDecided(notify.OfferDecidedEvent{
			BuyerEmail: buyer.Email,
			BuyerName:  buyer.Name,
			Accepted:   false,
			AnimalType: listing.AnimalType,
			BloodType:  listing.BloodType,
			Quantity:   offer.Quantity,
		})
	}
}
