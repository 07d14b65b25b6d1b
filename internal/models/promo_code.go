package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Promo discount types.
const (
	PromoPercentage = "PERCENTAGE"
	PromoFixed      = "FIXED"
	PromoBogo       = "BOGO"
)

// PromoCode is a discount token. UsedCount never exceeds MaxUses when set;
// the redeem path enforces that with a conditional update, not a read-check.
type PromoCode struct {
	bun.BaseModel `bun:"table:promo_codes"`

	ID                 string    `bun:"id,pk" json:"id"`
	Code               string    `bun:"code,unique,notnull" json:"code"`
	Type               string    `bun:"type,notnull" json:"type"`
	Value              float64   `bun:"value,notnull" json:"value"`
	MinOrderAmount     *float64  `bun:"min_order_amount" json:"min_order_amount,omitempty"`
	MaxDiscount        *float64  `bun:"max_discount" json:"max_discount,omitempty"`
	BuyQuantity        *int      `bun:"buy_quantity" json:"buy_quantity,omitempty"`
	GetQuantity        *int      `bun:"get_quantity" json:"get_quantity,omitempty"`
	MaxUses            *int      `bun:"max_uses" json:"max_uses,omitempty"`
	MaxUsesPerCustomer *int      `bun:"max_uses_per_customer" json:"max_uses_per_customer,omitempty"`
	UsedCount          int       `bun:"used_count,notnull,default:0" json:"used_count"`
	ActiveFrom         time.Time `bun:"active_from,notnull" json:"active_from"`
	ExpiresAt          time.Time `bun:"expires_at,notnull" json:"expires_at"`
	Active             bool      `bun:"active,notnull,default:true" json:"active"`
	CreatedAt          time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// PromoRedemption records one use of a promo code by a customer, used to
// enforce per-customer usage caps.
type PromoRedemption struct {
	bun.BaseModel `bun:"table:promo_redemptions"`

	ID         int64     `bun:"id,pk,autoincrement" json:"id"`
	PromoID    string    `bun:"promo_id,notnull" json:"promo_id"`
	CustomerID string    `bun:"customer_id,notnull" json:"customer_id"`
	RedeemedAt time.Time `bun:"redeemed_at,notnull" json:"redeemed_at"`
}
