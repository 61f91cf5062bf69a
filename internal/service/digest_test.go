package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/google/uuid"
)

func setCoordinates(store *memStore, hospitalId uuid.UUID, lat, lon float64) {
	h := store.hospitals[hospitalId]
	h.Latitude = sql.NullFloat64{Float64: lat, Valid: true}
	h.Longitude = sql.NullFloat64{Float64: lon, Valid: true}
}

func TestSendDailyDigest(t *testing.T) {
	store, rec, services := testEnv()

	// Manhattan and Brooklyn are a few miles apart; Boston is about 190
	// miles from both.
	manhattan := store.addHospital("manhattan")
	brooklyn := store.addHospital("brooklyn")
	boston := store.addHospital("boston")
	setCoordinates(store, manhattan.Id, 40.7831, -73.9712)
	setCoordinates(store, brooklyn.Id, 40.6782, -73.9442)
	setCoordinates(store, boston.Id, 42.3601, -71.0589)

	store.addListing(manhattan.Id, 10, "50.00")
	store.addListing(brooklyn.Id, 5, "60.00")

	sent, err := services.Digest.SendDailyDigest(context.Background())
	if err != nil {
		t.Fatalf("SendDailyDigest: %v", err)
	}
	if sent != 2 {
		t.Fatalf("digests sent = %d, want 2", sent)
	}

	byEmail := make(map[string][]string)
	for _, d := range rec.digests {
		for _, l := range d.Listings {
			byEmail[d.HospitalEmail] = append(byEmail[d.HospitalEmail], l.HospitalName)
		}
	}

	if got := byEmail[manhattan.Email]; len(got) != 1 || got[0] != "brooklyn" {
		t.Errorf("manhattan digest = %v, want [brooklyn]", got)
	}
	if got := byEmail[brooklyn.Email]; len(got) != 1 || got[0] != "manhattan" {
		t.Errorf("brooklyn digest = %v, want [manhattan]", got)
	}
	if _, ok := byEmail[boston.Email]; ok {
		t.Error("boston is outside the digest radius, should get nothing")
	}

	for _, d := range rec.digests {
		for _, l := range d.Listings {
			if l.DistanceMiles <= 0 || l.DistanceMiles > 50 {
				t.Errorf("digest distance = %f, want within (0, 50]", l.DistanceMiles)
			}
		}
	}
}

func TestDigestSkipsHospitalsWithoutCoordinates(t *testing.T) {
	store, rec, services := testEnv()

	located := store.addHospital("located")
	setCoordinates(store, located.Id, 40.7831, -73.9712)
	unlocated := store.addHospital("unlocated")
	store.addListing(unlocated.Id, 10, "50.00")

	sent, err := services.Digest.SendDailyDigest(context.Background())
	if err != nil {
		t.Fatalf("SendDailyDigest: %v", err)
	}

	// the only listing's seller has no coordinates, so no distance can be
	// computed and no digest goes out
	if sent != 0 || len(rec.digests) != 0 {
		t.Errorf("sent = %d, digests = %d, want none", sent, len(rec.digests))
	}
}
