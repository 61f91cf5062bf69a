package service

import (
	"context"
	"io"
	"sync"
	"time"
	"vetblood-market-api/internal/common"
	"vetblood-market-api/internal/entity"
	"vetblood-market-api/internal/notify"
	"vetblood-market-api/internal/payment"
	"vetblood-market-api/internal/pricing"
	"vetblood-market-api/internal/repo"
	"vetblood-market-api/internal/repo/repo_errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// memStore backs the in-memory repositories the service tests run against.
// All repositories share one store so cross-entity semantics (accept
// transactions, inventory decrements) behave like the real database.
type memStore struct {
	mu        sync.Mutex
	hospitals map[uuid.UUID]*entity.Hospital
	listings  map[uuid.UUID]*entity.BloodListing
	offers    map[uuid.UUID]*entity.Offer
	orders    map[uuid.UUID]*entity.Order
}

func newMemStore() *memStore {
	return &memStore{
		hospitals: make(map[uuid.UUID]*entity.Hospital),
		listings:  make(map[uuid.UUID]*entity.BloodListing),
		offers:    make(map[uuid.UUID]*entity.Offer),
		orders:    make(map[uuid.UUID]*entity.Order),
	}
}

func (s *memStore) addHospital(name string) *entity.Hospital {
	s.mu.Lock()
	defer s.mu.Unlock()

	h := &entity.Hospital{
		Id:        uuid.New(),
		Name:      name,
		Email:     name + "@clinic.test",
		CreatedAt: time.Now().Format(time.RFC3339),
	}
	s.hospitals[h.Id] = h

	return h
}

func (s *memStore) addListing(hospitalId uuid.UUID, quantity int, price string) *entity.BloodListing {
	s.mu.Lock()
	defer s.mu.Unlock()

	l := &entity.BloodListing{
		Id:             uuid.New(),
		HospitalId:     hospitalId,
		AnimalType:     common.AnimalDog,
		BloodType:      "DEA 1.1+",
		Quantity:       quantity,
		PricePerUnit:   decimal.RequireFromString(price),
		ExpirationDate: time.Now().Add(14 * 24 * time.Hour),
		IsActive:       true,
		CreatedAt:      time.Now().Format(time.RFC3339),
	}
	s.listings[l.Id] = l

	return l
}

func (s *memStore) addOffer(listingId, buyerId uuid.UUID, quantity int, price string, expiresAt time.Time) *entity.Offer {
	s.mu.Lock()
	defer s.mu.Unlock()

	o := &entity.Offer{
		Id:           uuid.New(),
		ListingId:    listingId,
		BuyerId:      buyerId,
		OfferedPrice: decimal.RequireFromString(price),
		Quantity:     quantity,
		Status:       common.OfferPending,
		ExpiresAt:    expiresAt,
		CreatedAt:    time.Now().Format(time.RFC3339),
	}
	s.offers[o.Id] = o

	return o
}

type memHospitalRepo struct{ store *memStore }

func (r *memHospitalRepo) GetHospitalById(ctx context.Context, id string) (*entity.Hospital, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}
	h, ok := r.store.hospitals[parsed]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	copied := *h

	return &copied, nil
}

func (r *memHospitalRepo) GetHospitalsWithCoordinates(ctx context.Context) ([]entity.Hospital, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	result := make([]entity.Hospital, 0)
	for _, h := range r.store.hospitals {
		if h.HasCoordinates() {
			result = append(result, *h)
		}
	}

	return result, nil
}

type memListingRepo struct{ store *memStore }

func (r *memListingRepo) CreateListing(ctx context.Context, input *entity.CreateListingInput) (uuid.UUID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	hospitalId, err := uuid.Parse(input.HospitalId)
	if err != nil {
		return uuid.Nil, err
	}

	l := &entity.BloodListing{
		Id:                uuid.New(),
		HospitalId:        hospitalId,
		AnimalType:        input.AnimalType,
		BloodType:         input.BloodType,
		Quantity:          input.Quantity,
		PricePerUnit:      input.PricePerUnit,
		ExpirationDate:    input.ExpirationDate,
		StorageConditions: input.StorageConditions,
		Notes:             input.Notes,
		IsActive:          true,
		CreatedAt:         time.Now().Format(time.RFC3339),
	}
	r.store.listings[l.Id] = l

	return l.Id, nil
}

func (r *memListingRepo) GetListingById(ctx context.Context, id string) (*entity.BloodListing, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.getLocked(id)
}

func (r *memListingRepo) getLocked(id string) (*entity.BloodListing, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}
	l, ok := r.store.listings[parsed]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	copied := *l

	return &copied, nil
}

func (r *memListingRepo) GetHospitalListings(ctx context.Context, hospitalId string, pg *entity.PaginationInput) ([]entity.BloodListing, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	result := make([]entity.BloodListing, 0)
	for _, l := range r.store.listings {
		if l.HospitalId.String() == hospitalId {
			result = append(result, *l)
		}
	}

	return result, nil
}

func (r *memListingRepo) GetMarketplaceListings(ctx context.Context, filter *entity.ListingFilter, pg *entity.PaginationInput) ([]entity.BloodListing, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	now := time.Now()
	result := make([]entity.BloodListing, 0)
	for _, l := range r.store.listings {
		if !l.IsActive || l.Quantity <= 0 || l.ExpirationDate.Before(now) {
			continue
		}
		if filter.ExcludedId != uuid.Nil && l.HospitalId == filter.ExcludedId {
			continue
		}
		if filter.AnimalType != "" && l.AnimalType != filter.AnimalType {
			continue
		}
		if filter.BloodType != "" && l.BloodType != filter.BloodType {
			continue
		}
		result = append(result, *l)
	}

	return result, nil
}

func (r *memListingRepo) UpdateListing(ctx context.Context, id string, input *entity.UpdateListingInput) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	parsed, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}
	l, ok := r.store.listings[parsed]
	if !ok {
		return repo_errors.ErrNotFound
	}

	if input.Quantity != nil {
		l.Quantity = *input.Quantity
	}
	if input.PricePerUnit != nil {
		l.PricePerUnit = *input.PricePerUnit
	}
	if input.ExpirationDate != nil {
		l.ExpirationDate = *input.ExpirationDate
	}
	if input.StorageConditions != nil {
		l.StorageConditions = *input.StorageConditions
	}
	if input.Notes != nil {
		l.Notes = *input.Notes
	}
	if input.IsActive != nil {
		l.IsActive = *input.IsActive
	}

	return nil
}

func (r *memListingRepo) DeleteListing(ctx context.Context, id string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	parsed, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}
	if _, ok := r.store.listings[parsed]; !ok {
		return repo_errors.ErrNotFound
	}
	delete(r.store.listings, parsed)

	return nil
}

func (r *memListingRepo) DecrementQuantity(ctx context.Context, id uuid.UUID, amount int) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	l, ok := r.store.listings[id]
	if !ok {
		return repo_errors.ErrNotFound
	}
	if l.Quantity < amount {
		return repo_errors.ErrInsufficientQuantity
	}
	l.Quantity -= amount

	return nil
}

type memOfferRepo struct{ store *memStore }

func (r *memOfferRepo) CreateOffer(ctx context.Context, input *entity.CreateOfferInput) (uuid.UUID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	listingId, err := uuid.Parse(input.ListingId)
	if err != nil {
		return uuid.Nil, err
	}
	buyerId, err := uuid.Parse(input.BuyerId)
	if err != nil {
		return uuid.Nil, err
	}

	o := &entity.Offer{
		Id:           uuid.New(),
		ListingId:    listingId,
		BuyerId:      buyerId,
		OfferedPrice: input.OfferedPrice,
		Quantity:     input.Quantity,
		Message:      input.Message,
		Status:       common.OfferPending,
		ExpiresAt:    time.Now().Add(common.OfferWindow),
		CreatedAt:    time.Now().Format(time.RFC3339),
	}
	r.store.offers[o.Id] = o

	return o.Id, nil
}

func (r *memOfferRepo) GetOfferById(ctx context.Context, id string) (*entity.Offer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}
	o, ok := r.store.offers[parsed]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	copied := *o

	return &copied, nil
}

func (r *memOfferRepo) GetBuyerOffers(ctx context.Context, buyerId string, status string, pg *entity.PaginationInput) ([]entity.Offer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	result := make([]entity.Offer, 0)
	for _, o := range r.store.offers {
		if o.BuyerId.String() != buyerId {
			continue
		}
		if status != "" && o.Status != status {
			continue
		}
		result = append(result, *o)
	}

	return result, nil
}

func (r *memOfferRepo) GetSellerOffers(ctx context.Context, sellerId string, pg *entity.PaginationInput) ([]entity.Offer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	result := make([]entity.Offer, 0)
	for _, o := range r.store.offers {
		l, ok := r.store.listings[o.ListingId]
		if !ok || l.HospitalId.String() != sellerId {
			continue
		}
		result = append(result, *o)
	}

	return result, nil
}

func (r *memOfferRepo) HasPendingOffer(ctx context.Context, listingId string, buyerId string) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, o := range r.store.offers {
		if o.ListingId.String() == listingId && o.BuyerId.String() == buyerId && o.Status == common.OfferPending {
			return true, nil
		}
	}

	return false, nil
}

func (r *memOfferRepo) ExpirePendingOffers(ctx context.Context, now time.Time) (int64, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var count int64
	for _, o := range r.store.offers {
		if o.Status == common.OfferPending && o.ExpiresAt.Before(now) {
			o.Status = common.OfferExpired
			count++
		}
	}

	return count, nil
}

func (r *memOfferRepo) SetOfferStatusIfPending(ctx context.Context, id string, newStatus string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	parsed, err := uuid.Parse(id)
	if err != nil {
		return repo_errors.ErrNotFound
	}
	o, ok := r.store.offers[parsed]
	if !ok {
		return repo_errors.ErrNotFound
	}
	if o.Status != common.OfferPending {
		return repo_errors.ErrNotPending
	}

	o.Status = newStatus
	switch newStatus {
	case common.OfferAccepted:
		o.AcceptedAt.Time, o.AcceptedAt.Valid = time.Now(), true
	case common.OfferRejected:
		o.RejectedAt.Time, o.RejectedAt.Valid = time.Now(), true
	}

	return nil
}

func (r *memOfferRepo) RejectPendingOffersForListing(ctx context.Context, listingId uuid.UUID) ([]entity.Offer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.rejectSiblingsLocked(listingId, uuid.Nil), nil
}

func (r *memOfferRepo) rejectSiblingsLocked(listingId uuid.UUID, except uuid.UUID) []entity.Offer {
	rejected := make([]entity.Offer, 0)
	for _, o := range r.store.offers {
		if o.ListingId != listingId || o.Id == except || o.Status != common.OfferPending {
			continue
		}
		o.Status = common.OfferRejected
		o.RejectedAt.Time, o.RejectedAt.Valid = time.Now(), true
		rejected = append(rejected, *o)
	}

	return rejected
}

func (r *memOfferRepo) AcceptOfferAndCreateOrder(ctx context.Context, offerId uuid.UUID, order *entity.CreateOrderInput) (uuid.UUID, []entity.Offer, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	o, ok := r.store.offers[offerId]
	if !ok {
		return uuid.Nil, nil, repo_errors.ErrNotFound
	}
	if o.Status != common.OfferPending {
		return uuid.Nil, nil, repo_errors.ErrNotPending
	}

	l, ok := r.store.listings[order.ListingId]
	if !ok {
		return uuid.Nil, nil, repo_errors.ErrNotFound
	}
	if l.Quantity < order.Quantity {
		return uuid.Nil, nil, repo_errors.ErrInsufficientQuantity
	}

	o.Status = common.OfferAccepted
	o.AcceptedAt.Time, o.AcceptedAt.Valid = time.Now(), true
	rejected := r.rejectSiblingsLocked(o.ListingId, o.Id)

	orderId := r.store.insertOrderLocked(order)

	return orderId, rejected, nil
}

type memOrderRepo struct{ store *memStore }

func (s *memStore) insertOrderLocked(input *entity.CreateOrderInput) uuid.UUID {
	ord := &entity.Order{
		Id:              uuid.New(),
		BuyerId:         input.BuyerId,
		SellerId:        input.SellerId,
		Subtotal:        input.Subtotal,
		ServiceFee:      input.ServiceFee,
		DeliveryFee:     input.DeliveryFee,
		Total:           input.Total,
		DeliveryMethod:  input.DeliveryMethod,
		PaymentIntentId: input.PaymentIntentId,
		PaymentStatus:   common.PaymentPending,
		Status:          common.OrderPending,
		CreatedAt:       time.Now().Format(time.RFC3339),
	}
	ord.Items = []entity.OrderItem{{
		Id:           uuid.New(),
		OrderId:      ord.Id,
		ListingId:    input.ListingId,
		Quantity:     input.Quantity,
		PricePerUnit: input.PricePerUnit,
	}}
	s.orders[ord.Id] = ord

	return ord.Id
}

func (r *memOrderRepo) CreateOrder(ctx context.Context, input *entity.CreateOrderInput) (uuid.UUID, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	return r.store.insertOrderLocked(input), nil
}

func (r *memOrderRepo) GetOrderById(ctx context.Context, id string) (*entity.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}
	ord, ok := r.store.orders[parsed]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	copied := *ord
	copied.Items = append([]entity.OrderItem(nil), ord.Items...)

	return &copied, nil
}

func (r *memOrderRepo) GetBuyerOrders(ctx context.Context, buyerId string, pg *entity.PaginationInput) ([]entity.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	result := make([]entity.Order, 0)
	for _, ord := range r.store.orders {
		if ord.BuyerId.String() == buyerId {
			result = append(result, *ord)
		}
	}

	return result, nil
}

func (r *memOrderRepo) GetSellerOrders(ctx context.Context, sellerId string, pg *entity.PaginationInput) ([]entity.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	result := make([]entity.Order, 0)
	for _, ord := range r.store.orders {
		if ord.SellerId.String() == sellerId {
			result = append(result, *ord)
		}
	}

	return result, nil
}

func (r *memOrderRepo) MarkOrderPaid(ctx context.Context, id string) (*entity.Order, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, repo_errors.ErrNotFound
	}
	ord, ok := r.store.orders[parsed]
	if !ok {
		return nil, repo_errors.ErrNotFound
	}

	ord.PaymentStatus = common.PaymentPaid
	ord.Status = common.OrderConfirmed

	copied := *ord
	copied.Items = append([]entity.OrderItem(nil), ord.Items...)

	return &copied, nil
}

// recorderNotifier captures dispatched events for assertions.
type recorderNotifier struct {
	mu         sync.Mutex
	newOffers  []notify.NewOfferEvent
	decisions  []notify.OfferDecidedEvent
	payments   []notify.PaymentConfirmedEvent
	digests    []notify.DailyDigestEvent
}

func (n *recorderNotifier) NewOffer(e notify.NewOfferEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.newOffers = append(n.newOffers, e)
}

func (n *recorderNotifier) OfferDecided(e notify.OfferDecidedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.decisions = append(n.decisions, e)
}

func (n *recorderNotifier) PaymentConfirmed(e notify.PaymentConfirmedEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.payments = append(n.payments, e)
}

func (n *recorderNotifier) DailyDigest(e notify.DailyDigestEvent) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.digests = append(n.digests, e)
}

func testRepositories(store *memStore) *repo.Repositories {
	return &repo.Repositories{
		Hospital: &memHospitalRepo{store: store},
		Listing:  &memListingRepo{store: store},
		Offer:    &memOfferRepo{store: store},
		Order:    &memOrderRepo{store: store},
	}
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)

	return log
}

func testEnv() (*memStore, *recorderNotifier, *Services) {
	store := newMemStore()
	rec := &recorderNotifier{}
	services := NewServices(testRepositories(store), payment.NewDisabledProvider(), rec, pricing.Split, testLogger())

	return store, rec, services
}

func hospitalCallerFor(h *entity.Hospital) entity.Caller {
	return entity.Caller{Id: h.Id, Role: common.RoleHospital}
}
