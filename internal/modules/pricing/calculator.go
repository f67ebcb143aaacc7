// Package pricing computes the settlement breakdown of a booking: stacked
// discounts, VAT extraction from the tax-inclusive final price, platform
// fee and provider earnings.
//
// Two long-standing behaviors are kept as-is, pending product sign-off
// before any "correction":
//   - provider earnings subtract the fee (computed on the pre-tax amount)
//     from the tax-inclusive final price, so fee + earnings reconstructs
//     the final price, not the pre-tax amount;
//   - an unknown coupon code is a recoverable signal, not a hard failure.
package pricing

import (
	"github.com/shopspring/decimal"

	"tourbook/internal/domain"
)

// VAT is included in the final price and extracted, never added on top.
var (
	vatDivisor = decimal.NewFromFloat(1.15)
	hundred    = decimal.NewFromInt(100)
)

type Input struct {
	UnitPrice float64
	Quantity  int

	// CouponCode is what the client submitted; Coupon is the looked-up row,
	// nil when the code matched nothing.
	CouponCode string
	Coupon     *domain.Coupon

	Settings       domain.PlatformSettings
	CommissionRate float64
}

// Settlement carries the full-precision breakdown. Round before persisting
// or displaying; intermediate values are never rounded.
type Settlement struct {
	Subtotal         decimal.Decimal
	GeneralDiscount  decimal.Decimal
	CouponDiscount   decimal.Decimal
	TotalDiscount    decimal.Decimal
	FinalPrice       decimal.Decimal
	AmountBeforeTax  decimal.Decimal
	TaxAmount        decimal.Decimal
	PlatformFee      decimal.Decimal
	ProviderEarnings decimal.Decimal

	CouponCode string
}

// NoPaymentRequired reports whether discounts fully covered the price; the
// gateway must not be invoked for such a settlement.
func (s *Settlement) NoPaymentRequired() bool {
	return s.FinalPrice.IsZero()
}

// AmountCents is the final price in minor currency units, as the gateway
// expects it.
func (s *Settlement) AmountCents() int64 {
	return s.FinalPrice.Round(2).Mul(hundred).Round(0).IntPart()
}

// Calculate computes the settlement for one booking. It is pure: coupon
// and settings rows are passed in, nothing is fetched or written.
func Calculate(in Input) (*Settlement, error) {
	if in.UnitPrice < 0 || in.Quantity < 0 || in.CommissionRate < 0 || in.CommissionRate > 100 {
		return nil, ErrValidation
	}

	qty := in.Quantity
	if qty == 0 {
		qty = 1
	}

	if in.CouponCode != "" && in.Coupon == nil {
		return nil, ErrCouponNotFound
	}

	subtotal := decimal.NewFromFloat(in.UnitPrice).Mul(decimal.NewFromInt(int64(qty)))

	generalDiscount := decimal.Zero
	if in.Settings.IsGeneralDiscountActive && in.Settings.GeneralDiscountPercent > 0 {
		generalDiscount = subtotal.Mul(decimal.NewFromFloat(in.Settings.GeneralDiscountPercent)).Div(hundred)
	}

	couponDiscount := decimal.Zero
	couponCode := ""
	if in.Coupon != nil {
		if in.Coupon.DiscountPercent < 0 || in.Coupon.DiscountPercent > 100 {
			return nil, ErrValidation
		}
		couponDiscount = subtotal.Mul(decimal.NewFromFloat(in.Coupon.DiscountPercent)).Div(hundred)
		couponCode = in.Coupon.Code
	}

	totalDiscount := generalDiscount.Add(couponDiscount)

	finalPrice := subtotal.Sub(totalDiscount)
	if finalPrice.IsNegative() {
		finalPrice = decimal.Zero
	}

	amountBeforeTax := finalPrice.Div(vatDivisor)
	taxAmount := finalPrice.Sub(amountBeforeTax)

	platformFee := amountBeforeTax.Mul(decimal.NewFromFloat(in.CommissionRate)).Div(hundred)
	providerEarnings := finalPrice.Sub(platformFee)

	return &Settlement{
		Subtotal:         subtotal,
		GeneralDiscount:  generalDiscount,
		CouponDiscount:   couponDiscount,
		TotalDiscount:    totalDiscount,
		FinalPrice:       finalPrice,
		AmountBeforeTax:  amountBeforeTax,
		TaxAmount:        taxAmount,
		PlatformFee:      platformFee,
		ProviderEarnings: providerEarnings,
		CouponCode:       couponCode,
	}, nil
}

// Rounded returns the 2dp view frozen onto the booking record. Derived
// fields are recomputed from the rounded components so the stored
// invariants hold exactly: final = subtotal - discount, tax = final -
// before_tax, earnings = final - fee.
func (s *Settlement) Rounded() *Settlement {
	subtotal := s.Subtotal.Round(2)
	totalDiscount := s.TotalDiscount.Round(2)

	finalPrice := subtotal.Sub(totalDiscount)
	if finalPrice.IsNegative() {
		finalPrice = decimal.Zero
	}

	amountBeforeTax := finalPrice.Div(vatDivisor).Round(2)
	taxAmount := finalPrice.Sub(amountBeforeTax)

	fee := s.PlatformFee.Round(2)
	earnings := finalPrice.Sub(fee)

	return &Settlement{
		Subtotal:         subtotal,
		GeneralDiscount:  s.GeneralDiscount.Round(2),
		CouponDiscount:   s.CouponDiscount.Round(2),
		TotalDiscount:    totalDiscount,
		FinalPrice:       finalPrice,
		AmountBeforeTax:  amountBeforeTax,
		TaxAmount:        taxAmount,
		PlatformFee:      fee,
		ProviderEarnings: earnings,
		CouponCode:       s.CouponCode,
	}
}
