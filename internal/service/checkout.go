package service

import (
	"context"
	"errors"
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

type CheckoutService struct {
	listingRepo  repo.Listing
	offerRepo    repo.Offer
	orderRepo    repo.Order
	hospitalRepo repo.Hospital
	provider     payment.Provider
	notifier     notify.Notifier
	schedule     pricing.Schedule
	log          *logrus.Logger
}

func NewCheckoutService(repos *repo.Repositories, provider payment.Provider, notifier notify.Notifier,
	schedule pricing.Schedule, log *logrus.Logger) *CheckoutService {
	return &CheckoutService{
		listingRepo:  repos.Listing,
		offerRepo:    repos.Offer,
		orderRepo:    repos.Order,
		hospitalRepo: repos.Hospital,
		provider:     provider,
		notifier:     notifier,
		schedule:     schedule,
		log:          log,
	}
}

// InitiateCheckout prices a purchase, requests a payment intent and persists
// the order with its item. Inventory is not decremented here: payment success
// is not known yet, so the decrement waits for ConfirmPayment.
func (s *CheckoutService) InitiateCheckout(ctx context.Context, caller entity.Caller, input *entity.InitiateCheckoutInput) (*entity.CheckoutOutputModel, error) {
	listing, err := s.listingRepo.GetListingById(ctx, input.ListingId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrListingNotFound
		}

		return nil, err
	}

	quantity := input.Quantity
	unitPrice := listing.PricePerUnit

	// an accepted offer's terms are authoritative over anything the client
	// sends along
	if input.OfferId != "" {
		offer, err := s.offerRepo.GetOfferById(ctx, input.OfferId)
		if err != nil {
			if errors.Is(err, repo_errors.ErrNotFound) {
				return nil, ErrOfferNotFound
			}

			return nil, err
		}
		if offer.BuyerId != caller.Id {
			return nil, ErrNotOfferBuyer
		}
		if offer.ListingId != listing.Id {
			return nil, ErrOfferListingMismatch
		}
		if offer.Status != common.OfferAccepted {
			return nil, &InvalidStateError{Entity: "offer", Status: offer.Status}
		}

		quantity = offer.Quantity
		unitPrice = offer.OfferedPrice
	}

	if quantity > listing.Quantity {
		return nil, &InsufficientQuantityError{Available: listing.Quantity}
	}
	if listing.HospitalId == caller.Id {
		return nil, ErrSelfTransaction
	}

	totals, err := pricing.ComputeTotals(s.schedule, quantity, unitPrice)
	if err != nil {
		return nil, err
	}

	intentInput := &payment.CreateIntentInput{
		AmountCents: totals.TotalCents(),
		Currency:    "usd",
		Metadata: map[string]string{
			"listingId": listing.Id.String(),
			"buyerId":   caller.Id.String(),
			"sellerId":  listing.HospitalId.String(),
		},
	}
	if input.OfferId != "" {
		intentInput.Metadata["offerId"] = input.OfferId
	}

	seller, err := s.hospitalRepo.GetHospitalById(ctx, listing.HospitalId.String())
	if err != nil && !errors.Is(err, repo_errors.ErrNotFound) {
		return nil, err
	}
	if err == nil && seller.HasPayoutAccount() {
		intentInput.DestinationAccount = seller.StripeAccountId.String
		intentInput.PlatformFeeCents = totals.PlatformFeeCents()
	}

	intent, err := s.provider.CreateIntent(ctx, intentInput)
	if err != nil {
		s.log.WithError(err).Error("payment intent creation failed")

		return nil, ErrPaymentUnavailable
	}

	deliveryMethod := input.DeliveryMethod
	if deliveryMethod == "" {
		deliveryMethod = common.DeliverySelfPickup
	}

	orderId, err := s.orderRepo.CreateOrder(ctx, &entity.CreateOrderInput{
		BuyerId:         caller.Id,
		SellerId:        listing.HospitalId,
		Subtotal:        totals.Subtotal,
		ServiceFee:      totals.ServiceFee,
		DeliveryFee:     decimal.Zero,
		Total:           totals.Total,
		DeliveryMethod:  deliveryMethod,
		PaymentIntentId: intent.Id,
		ListingId:       listing.Id,
		Quantity:        quantity,
		PricePerUnit:    unitPrice,
	})
	if err != nil {
		s.log.WithField("intentId", intent.Id).WithError(err).
			Warn("order creation failed, payment intent abandoned")

		return nil, err
	}

	return &entity.CheckoutOutputModel{
		OrderId:      orderId.String(),
		ClientSecret: intent.ClientSecret,
		DemoMode:     !s.provider.Enabled(),
	}, nil
}

// ConfirmPayment verifies the processor reported success, marks the order
// paid and confirmed, and decrements the inventory of every item. The
// decrement is best-effort: the payment already succeeded and cannot be
// transactionally undone against an external processor, so a failure here is
// logged rather than reversed.
func (s *CheckoutService) ConfirmPayment(ctx context.Context, caller entity.Caller, orderId string, paymentIntentId string) (*entity.OrderOutputModel, error) {
	order, err := s.orderRepo.GetOrderById(ctx, orderId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrOrderNotFound
		}

		return nil, err
	}

	if order.BuyerId != caller.Id {
		return nil, ErrNotOrderBuyer
	}
	if order.PaymentIntentId != paymentIntentId {
		return nil, ErrPaymentMismatch
	}

	// already confirmed: answer idempotently instead of decrementing twice
	if order.PaymentStatus == common.PaymentPaid {
		return mapOrder(order), nil
	}

	if s.provider.Enabled() && !payment.IsDemoReference(paymentIntentId) {
		intent, err := s.provider.RetrieveIntent(ctx, paymentIntentId)
		if err != nil {
			s.log.WithField("intentId", paymentIntentId).WithError(err).
				Error("payment intent retrieval failed")

			return nil, ErrPaymentUnavailable
		}
		if intent.Status != payment.StatusSucceeded {
			return nil, ErrPaymentNotCompleted
		}
	}

	order, err = s.orderRepo.MarkOrderPaid(ctx, orderId)
	if err != nil {
		if errors.Is(err, repo_errors.ErrNotFound) {
			return nil, ErrOrderNotFound
		}

		return nil, err
	}

	for _, item := range order.Items {
		if err := s.listingRepo.DecrementQuantity(ctx, item.ListingId, item.Quantity); err != nil {
			s.log.WithFields(logrus.Fields{
				"orderId":   order.Id,
				"listingId": item.ListingId,
				"quantity":  item.Quantity,
			}).WithError(err).Error("inventory decrement failed after successful payment")
		}
	}

	s.notifyPaymentConfirmed(ctx, order)

	return mapOrder(order), nil
}

func (s *CheckoutService) GetOwnOrders(ctx context.Context, caller entity.Caller, pg *entity.PaginationInput) ([]entity.OrderOutputModel, error) {
	orders, err := s.orderRepo.GetBuyerOrders(ctx, caller.Id.String(), pg)
	if err != nil {
		return nil, err
	}

	return mapOrders(orders), nil
}

func (s *CheckoutService) GetSales(ctx context.Context, caller entity.Caller, pg *entity.PaginationInput) ([]entity.OrderOutputModel, error) {
	orders, err := s.orderRepo.GetSellerOrders(ctx, caller.Id.String(), pg)
	if err != nil {
		return nil, err
	}

	return mapOrders(orders), nil
}

func (s *CheckoutService) notifyPaymentConfirmed(ctx context.Context, order *entity.Order) {
	parties := []struct {
		id       string
		isSeller bool
	}{
		{order.BuyerId.String(), false},
		{order.SellerId.String(), true},
	}

	for _, p := range parties {
		hospital, err := s.hospitalRepo.GetHospitalById(ctx, p.id)
		if err != nil {
			s.log.WithField("hospitalId", p.id).WithError(err).
				Warn("skipping payment notice, hospital lookup failed")
			continue
		}

		s.notifier.PaymentConfirmed(notify.PaymentConfirmedEvent{
			Email:    hospital.Email,
			Name:     hospital.Name,
			OrderId:  order.Id.String(),
			Total:    order.Total.StringFixed(2),
			IsSeller: p.isSeller,
		})
	}
}
