package entity

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// db model
type Order struct {
	Id              uuid.UUID       `json:"id" db:"id"`
	BuyerId         uuid.UUID       `json:"buyerId" db:"buyer_id"`
	SellerId        uuid.UUID       `json:"sellerId" db:"seller_id"`
	Subtotal        decimal.Decimal `json:"subtotal" db:"subtotal"`
	ServiceFee      decimal.Decimal `json:"serviceFee" db:"service_fee"`
	DeliveryFee     decimal.Decimal `json:"deliveryFee" db:"delivery_fee"`
	Total           decimal.Decimal `json:"total" db:"total"`
	DeliveryMethod  string          `json:"deliveryMethod" db:"delivery_method"`
	PaymentIntentId string          `json:"paymentIntentId" db:"payment_intent_id"`
	PaymentStatus   string          `json:"paymentStatus" db:"payment_status"`
	Status          string          `json:"status" db:"status"`
	CreatedAt       string          `json:"createdAt" db:"created_at"`
	Items           []OrderItem     `json:"items"`
}

// db model. Price is captured at order-creation time and never re-read from
// the listing, so later listing price changes can't touch committed orders.
type OrderItem struct {
	Id           uuid.UUID       `json:"id" db:"id"`
	OrderId      uuid.UUID       `json:"orderId" db:"order_id"`
	ListingId    uuid.UUID       `json:"listingId" db:"listing_id"`
	Quantity     int             `json:"quantity" db:"quantity"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit" db:"price_per_unit"`
}

// service + repo input model
type CreateOrderInput struct {
	BuyerId         uuid.UUID
	SellerId        uuid.UUID
	Subtotal        decimal.Decimal
	ServiceFee      decimal.Decimal
	DeliveryFee     decimal.Decimal
	Total           decimal.Decimal
	DeliveryMethod  string
	PaymentIntentId string
	ListingId       uuid.UUID
	Quantity        int
	PricePerUnit    decimal.Decimal
	// PaymentStatus should be set: "Pending"
	// Status should be set: "Pending"
}

// service input model for direct purchases; when OfferId is set the offer's
// terms override the client-supplied quantity
type InitiateCheckoutInput struct {
	ListingId      string
	Quantity       int
	OfferId        string
	DeliveryMethod string
}

// controller model
type OrderOutputModel struct {
	Id              string                 `json:"id"`
	BuyerId         string                 `json:"buyerId"`
	SellerId        string                 `json:"sellerId"`
	Subtotal        string                 `json:"subtotal"`
	ServiceFee      string                 `json:"serviceFee"`
	DeliveryFee     string                 `json:"deliveryFee"`
	Total           string                 `json:"total"`
	DeliveryMethod  string                 `json:"deliveryMethod"`
	PaymentStatus   string                 `json:"paymentStatus"`
	Status          string                 `json:"status"`
	CreatedAt       string                 `json:"createdAt"`
	Items           []OrderItemOutputModel `json:"items"`
}

type OrderItemOutputModel struct {
	ListingId    string `json:"listingId"`
	Quantity     int    `json:"quantity"`
	PricePerUnit string `json:"pricePerUnit"`
}

// controller model returned by checkout and offer acceptance
type CheckoutOutputModel struct {
	OrderId      string `json:"orderId"`
	ClientSecret string `json:"clientSecret"`
	DemoMode     bool   `json:"demoMode"`
}
