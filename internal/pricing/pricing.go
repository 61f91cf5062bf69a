// Package pricing computes order totals under the platform's fee schedules.
// Everything here is pure and safe for concurrent use.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Schedule selects which fee schedule applies to a transaction.
type Schedule string

const (
	// BuyerOnly charges the buyer a 10% service fee on top of the subtotal.
	BuyerOnly Schedule = "buyer-only"
	// Split takes 10% from each side: the buyer pays subtotal plus 10%, the
	// seller receives subtotal minus 10%, the platform keeps 20%.
	Split Schedule = "split"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrInvalidPrice    = errors.New("unit price must be positive")
	ErrUnknownSchedule = errors.New("unknown fee schedule")
)

var feeRate = decimal.NewFromFloat(0.10)

// Totals is the priced breakdown of a transaction. All values are rounded to
// two decimal places, half away from zero. ServiceFee is the platform's total
// cut: under Split it is SellerFee+BuyerFee, under BuyerOnly just BuyerFee.
type Totals struct {
	Subtotal       decimal.Decimal
	SellerFee      decimal.Decimal
	BuyerFee       decimal.Decimal
	ServiceFee     decimal.Decimal
	Total          decimal.Decimal
	SellerReceives decimal.Decimal
}

// ComputeTotals prices quantity units at unitPrice under the given schedule.
func ComputeTotals(schedule Schedule, quantity int, unitPrice decimal.Decimal) (Totals, error) {
	if quantity <= 0 {
		return Totals{}, ErrInvalidQuantity
	}
	if !unitPrice.IsPositive() {
		return Totals{}, ErrInvalidPrice
	}

	subtotal := unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
	fee := subtotal.Mul(feeRate).Round(2)

	switch schedule {
	case BuyerOnly:
		return Totals{
			Subtotal:       subtotal,
			SellerFee:      decimal.Zero,
			BuyerFee:       fee,
			ServiceFee:     fee,
			Total:          subtotal.Add(fee),
			SellerReceives: subtotal,
		}, nil
	case Split:
		return Totals{
			Subtotal:       subtotal,
			SellerFee:      fee,
			BuyerFee:       fee,
			ServiceFee:     fee.Add(fee),
			Total:          subtotal.Add(fee),
			SellerReceives: subtotal.Sub(fee),
		}, nil
	}

	return Totals{}, ErrUnknownSchedule
}

// TotalCents is the amount to transmit to the payment processor, derived from
// the already-rounded total rather than floating subtotal math.
func (t Totals) TotalCents() int64 {
	return t.Total.Shift(2).IntPart()
}

// PlatformFeeCents is the platform's cut in minor units, used as the
// application fee on split payments.
func (t Totals) PlatformFeeCents() int64 {
	return t.ServiceFee.Shift(2).IntPart()
}
