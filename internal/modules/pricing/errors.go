package pricing

import "errors"

var (
	ErrValidation = errors.New("validation error")

	// ErrCouponNotFound is a recoverable signal: the caller is expected to
	// drop the coupon and recompute rather than fail the checkout.
	ErrCouponNotFound = errors.New("coupon not found")
)
