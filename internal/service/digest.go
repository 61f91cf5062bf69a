package service

import (
	"context"
	"sort"
	"vetblood-market-api/internal/common"
	"vetblood-market-api/internal/entity"
	"vetblood-market-api/internal/geo"
	"vetblood-market-api/internal/notify"
	"vetblood-market-api/internal/repo"

	"github.com/sirupsen/logrus"
)

// digestScanLimit caps how many active listings one digest run considers.
const digestScanLimit = 1000

type DigestService struct {
	hospitalRepo repo.Hospital
	listingRepo  repo.Listing
	notifier     notify.Notifier
	log          *logrus.Logger
}

func NewDigestService(repos *repo.Repositories, notifier notify.Notifier, log *logrus.Logger) *DigestService {
	return &DigestService{
		hospitalRepo: repos.Hospital,
		listingRepo:  repos.Listing,
		notifier:     notifier,
		log:          log,
	}
}

// SendDailyDigest mails every hospital with coordinates the active listings
// offered within the digest radius, nearest first. Returns the number of
// digests dispatched.
func (s *DigestService) SendDailyDigest(ctx context.Context) (int, error) {
	hospitals, err := s.hospitalRepo.GetHospitalsWithCoordinates(ctx)
	if err != nil {
		return 0, err
	}

	listings, err := s.listingRepo.GetMarketplaceListings(ctx, &entity.ListingFilter{},
		entity.NewPaginationInput(digestScanLimit, 0))
	if err != nil {
		return 0, err
	}

	coords := make(map[string]entity.Hospital, len(hospitals))
	for _, h := range hospitals {
		coords[h.Id.String()] = h
	}

	sent := 0
	for _, recipient := range hospitals {
		type nearby struct {
			listing  entity.BloodListing
			seller   entity.Hospital
			distance float64
		}

		found := make([]nearby, 0)
		for _, l := range listings {
			if l.HospitalId == recipient.Id {
				continue
			}
			seller, ok := coords[l.HospitalId.String()]
			if !ok {
				continue
			}

			d := geo.DistanceMiles(
				recipient.Latitude.Float64, recipient.Longitude.Float64,
				seller.Latitude.Float64, seller.Longitude.Float64)
			if d > common.DigestRadiusMiles {
				continue
			}
			found = append(found, nearby{listing: l, seller: seller, distance: d})
		}
		if len(found) == 0 {
			continue
		}

		sort.Slice(found, func(i, j int) bool { return found[i].distance < found[j].distance })

		digest := notify.DailyDigestEvent{
			HospitalEmail: recipient.Email,
			HospitalName:  recipient.Name,
		}
		for _, n := range found {
			digest.Listings = append(digest.Listings, notify.DigestListing{
				HospitalName:  n.seller.Name,
				AnimalType:    n.listing.AnimalType,
				BloodType:     n.listing.BloodType,
				Quantity:      n.listing.Quantity,
				PricePerUnit:  n.listing.PricePerUnit.StringFixed(2),
				DistanceMiles: n.distance,
			})
		}

		s.notifier.DailyDigest(digest)
		sent++
	}

	s.log.WithFields(logrus.Fields{
		"hospitals": len(hospitals),
		"listings":  len(listings),
		"sent":      sent,
	}).Info("daily digest dispatched")

	return sent, nil
}
