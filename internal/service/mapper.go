package service

import (
	"time"
	"vetblood-market-api/internal/entity"
)

func mapListing(l *entity.BloodListing) *entity.ListingOutputModel {
	return &entity.ListingOutputModel{
		Id:                l.Id.String(),
		HospitalId:        l.HospitalId.String(),
		AnimalType:        l.AnimalType,
		BloodType:         l.BloodType,
		Quantity:          l.Quantity,
		PricePerUnit:      l.PricePerUnit.StringFixed(2),
		ExpirationDate:    l.ExpirationDate.Format(time.RFC3339),
		StorageConditions: l.StorageConditions,
		Notes:             l.Notes,
		IsActive:          l.IsActive,
		CreatedAt:         l.CreatedAt,
	}
}

func mapListings(listings []entity.BloodListing) []entity.ListingOutputModel {
	s := make([]entity.ListingOutputModel, 0)
	for _, l := range listings {
		s = append(s, *mapListing(&l))
	}

	return s
}

func mapOffer(o *entity.Offer) *entity.OfferOutputModel {
	out := &entity.OfferOutputModel{
		Id:           o.Id.String(),
		ListingId:    o.ListingId.String(),
		BuyerId:      o.BuyerId.String(),
		OfferedPrice: o.OfferedPrice.StringFixed(2),
		Quantity:     o.Quantity,
		Message:      o.Message,
		Status:       o.Status,
		ExpiresAt:    o.ExpiresAt.Format(time.RFC3339),
		CreatedAt:    o.CreatedAt,
	}
	if o.AcceptedAt.Valid {
		out.AcceptedAt = o.AcceptedAt.Time.Format(time.RFC3339)
	}
	if o.RejectedAt.Valid {
		out.RejectedAt = o.RejectedAt.Time.Format(time.RFC3339)
	}

	return out
}

func mapOffers(offers []entity.Offer) []entity.OfferOutputModel {
	s := make([]entity.OfferOutputModel, 0)
	for _, o := range offers {
		s = append(s, *mapOffer(&o))
	}

	return s
}

func mapOrder(o *entity.Order) *entity.OrderOutputModel {
	items := make([]entity.OrderItemOutputModel, 0)
	for _, item := range o.Items {
		items = append(items, entity.OrderItemOutputModel{
			ListingId:    item.ListingId.String(),
			Quantity:     item.Quantity,
			PricePerUnit: item.PricePerUnit.StringFixed(2),
		})
	}

	return &entity.OrderOutputModel{
		Id:             o.Id.String(),
		BuyerId:        o.BuyerId.String(),
		SellerId:       o.SellerId.String(),
		Subtotal:       o.Subtotal.StringFixed(2),
		ServiceFee:     o.ServiceFee.StringFixed(2),
		DeliveryFee:    o.DeliveryFee.StringFixed(2),
		Total:          o.Total.StringFixed(2),
		DeliveryMethod: o.DeliveryMethod,
		PaymentStatus:  o.PaymentStatus,
		Status:         o.Status,
		CreatedAt:      o.CreatedAt,
		Items:          items,
	}
}

func mapOrders(orders []entity.Order) []entity.OrderOutputModel {
	s := make([]entity.OrderOutputModel, 0)
	for _, o := range orders {
		s = append(s, *mapOrder(&o))
	}

	return s
}
