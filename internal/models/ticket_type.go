package models

import (
	"time"

	"github.com/uptrace/bun"
)

// TicketType is a purchasable category of admission. QuotaTotal nil means
// unlimited; Sold is the committed counter guarded by the capacity ledger.
type TicketType struct {
	bun.BaseModel `bun:"table:ticket_types"`

	ID          string    `bun:"id,pk" json:"id"`
	EventID     string    `bun:"event_id,notnull" json:"event_id"`
	Name        string    `bun:"name,notnull" json:"name"`
	Price       float64   `bun:"price,notnull" json:"price"`
	VATRate     float64   `bun:"vat_rate,notnull,default:0" json:"vat_rate"`
	QuotaTotal  *int      `bun:"quota_total" json:"quota_total,omitempty"`
	Sold        int       `bun:"sold,notnull,default:0" json:"sold"`
	MinPerOrder int       `bun:"min_per_order,notnull,default:1" json:"min_per_order"`
	MaxPerOrder int       `bun:"max_per_order,notnull,default:10" json:"max_per_order"`
	SaleStart   time.Time `bun:"sale_start,notnull" json:"sale_start"`
	SaleEnd     time.Time `bun:"sale_end,notnull" json:"sale_end"`
	Visible     bool      `bun:"visible,notnull,default:true" json:"visible"`
	CreatedAt   time.Time `bun:"created_at,notnull,default:current_timestamp" json:"created_at"`
}

// QuotaRemaining returns the number of unsold units, or -1 when unlimited.
func (t *TicketType) QuotaRemaining() int {
	if t.QuotaTotal == nil {
		return -1
	}
	remaining := *t.QuotaTotal - t.Sold
	if remaining < 0 {
		remaining = 0
	}
	return remaining
}

// OnSaleAt reports whether the ticket type can be sold at the given instant.
func (t *TicketType) OnSaleAt(now time.Time) bool {
	return !now.Before(t.SaleStart) && now.Before(t.SaleEnd)
}
