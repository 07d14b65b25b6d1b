package ticketing

import "errors"

var (
	// ErrNotOnSale is returned for reservations outside the sale window.
	ErrNotOnSale = errors.New("ticket type is not on sale")

	// ErrQuantityOutOfRange is returned when the requested quantity violates
	// the per-order min/max.
	ErrQuantityOutOfRange = errors.New("quantity outside allowed per-order range")

	// ErrPromoNotFound is returned for unknown promo codes.
	ErrPromoNotFound = errors.New("promo code not found")

	// ErrPromoExhausted is returned when the redeem-time conditional update
	// finds no headroom (inactive, expired or usage cap reached).
	ErrPromoExhausted = errors.New("promo code can no longer be redeemed")

	// ErrPromoCustomerLimit is returned when one customer exceeds the
	// per-customer usage cap.
	ErrPromoCustomerLimit = errors.New("per-customer promo usage limit reached")
)
