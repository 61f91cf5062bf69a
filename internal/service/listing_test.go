package service

import (
	"context"
	"errors"
	"testing"
	"time"
	"vetblood-market-api/internal/common"
	"vetblood-market-api/internal/entity"

	"github.com/shopspring/decimal"
)

func TestCreateListing(t *testing.T) {
	store, _, services := testEnv()
	seller := store.addHospital("seller")

	out, err := services.Listing.CreateListing(context.Background(), hospitalCallerFor(seller), &entity.CreateListingInput{
		AnimalType:     common.AnimalCat,
		BloodType:      "AB",
		Quantity:       5,
		PricePerUnit:   decimal.RequireFromString("120.00"),
		ExpirationDate: time.Now().Add(7 * 24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	if out.HospitalId != seller.Id.String() {
		t.Errorf("hospitalId = %s, want %s", out.HospitalId, seller.Id)
	}
	if !out.IsActive {
		t.Error("new listing should be active")
	}
	if out.PricePerUnit != "120.00" {
		t.Errorf("pricePerUnit = %s, want 120.00", out.PricePerUnit)
	}
}

func TestBrowseMarketplaceExcludesOwn(t *testing.T) {
	store, _, services := testEnv()
	seller := store.addHospital("seller")
	browser := store.addHospital("browser")
	store.addListing(seller.Id, 10, "50.00")
	store.addListing(browser.Id, 3, "45.00")

	listings, err := services.Listing.BrowseMarketplace(context.Background(), hospitalCallerFor(browser),
		&entity.ListingFilter{}, entity.NewPaginationInput(20, 0))
	if err != nil {
		t.Fatalf("BrowseMarketplace: %v", err)
	}

	if len(listings) != 1 {
		t.Fatalf("listings = %d, want 1", len(listings))
	}
	if listings[0].HospitalId != seller.Id.String() {
		t.Errorf("listing belongs to %s, want %s", listings[0].HospitalId, seller.Id)
	}
}

func TestUpdateListingOwnership(t *testing.T) {
	store, _, services := testEnv()
	seller := store.addHospital("seller")
	other := store.addHospital("other")
	listing := store.addListing(seller.Id, 10, "50.00")

	quantity := 7
	_, err := services.Listing.UpdateListing(context.Background(), hospitalCallerFor(other), listing.Id.String(),
		&entity.UpdateListingInput{Quantity: &quantity})
	if !errors.Is(err, ErrNotListingOwner) {
		t.Errorf("err = %v, want ErrNotListingOwner", err)
	}

	out, err := services.Listing.UpdateListing(context.Background(), hospitalCallerFor(seller), listing.Id.String(),
		&entity.UpdateListingInput{Quantity: &quantity})
	if err != nil {
		t.Fatalf("UpdateListing: %v", err)
	}
	if out.Quantity != 7 {
		t.Errorf("quantity = %d, want 7", out.Quantity)
	}
}

func TestDeactivateListingRejectsPendingOffers(t *testing.T) {
	store, rec, services := testEnv()
	seller := store.addHospital("seller")
	buyer := store.addHospital("buyer")
	listing := store.addListing(seller.Id, 10, "50.00")
	offer := store.addOffer(listing.Id, buyer.Id, 2, "45.00", time.Now().Add(common.OfferWindow))

	inactive := false
	out, err := services.Listing.UpdateListing(context.Background(), hospitalCallerFor(seller), listing.Id.String(),
		&entity.UpdateListingInput{IsActive: &inactive})
	if err != nil {
		t.Fatalf("UpdateListing: %v", err)
	}

	if out.IsActive {
		t.Error("listing still active after deactivation")
	}
	if got := store.offers[offer.Id].Status; got != common.OfferRejected {
		t.Errorf("offer status = %s, want %s", got, common.OfferRejected)
	}
	if len(rec.decisions) != 1 || rec.decisions[0].Accepted {
		t.Errorf("decisions = %+v, want one rejection notice", rec.decisions)
	}
}

func TestDeleteListingRejectsPendingOffers(t *testing.T) {
	store, rec, services := testEnv()
	seller := store.addHospital("seller")
	buyer := store.addHospital("buyer")
	listing := store.addListing(seller.Id, 10, "50.00")
	offer := store.addOffer(listing.Id, buyer.Id, 2, "45.00", time.Now().Add(common.OfferWindow))

	if err := services.Listing.DeleteListing(context.Background(), hospitalCallerFor(buyer), listing.Id.String()); !errors.Is(err, ErrNotListingOwner) {
		t.Errorf("delete by non-owner err = %v, want ErrNotListingOwner", err)
	}

	if err := services.Listing.DeleteListing(context.Background(), hospitalCallerFor(seller), listing.Id.String()); err != nil {
		t.Fatalf("DeleteListing: %v", err)
	}

	if _, ok := store.listings[listing.Id]; ok {
		t.Error("listing still present after delete")
	}
	if got := store.offers[offer.Id].Status; got != common.OfferRejected {
		t.Errorf("offer status = %s, want %s", got, common.OfferRejected)
	}
	if len(rec.decisions) != 1 {
		t.Errorf("rejection notices = %d, want 1", len(rec.decisions))
	}

	if _, err := services.Listing.GetListingById(context.Background(), listing.Id.String()); !errors.Is(err, ErrListingNotFound) {
		t.Errorf("read after delete err = %v, want ErrListingNotFound", err)
	}
}
