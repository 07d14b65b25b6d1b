package models

import "time"

// CheckinRequest is the body of POST /api/checkin. Either QRToken (scan
// path, raw decoded payload) or ParticipantID (manual path) must be set.
type CheckinRequest struct {
	QRToken       string `json:"qr_token,omitempty"`
	ParticipantID string `json:"participant_id,omitempty"`
	SessionID     string `json:"session_id" validate:"required"`
	EventCode     string `json:"event_code" validate:"required,len=4,numeric"`
	CheckedBy     string `json:"checked_by" validate:"required"`
	Method        string `json:"method" validate:"required,oneof=scan manual"`
	DeviceInfo    string `json:"device_info,omitempty"`
}

// CheckinResponse is the structured outcome of a check-in attempt. Duplicate
// check-ins are success with a distinct status, never an error.
type CheckinResponse struct {
	Success     bool         `json:"success"`
	Status      string       `json:"status"`
	Message     string       `json:"message"`
	Participant *Participant `json:"participant,omitempty"`
}

// EventAccessRequest unlocks a scanner for one event via its digit code.
type EventAccessRequest struct {
	EventCode string `json:"event_code" validate:"required,len=4,numeric"`
}

// EventAccessData is returned on a successful unlock.
type EventAccessData struct {
	Event        *Event     `json:"event"`
	Sessions     []Session  `json:"sessions"`
	Stats        EventStats `json:"stats"`
	ScannerToken string     `json:"scanner_token"`
}

// EventStats aggregates attendance numbers for an event.
type EventStats struct {
	TotalParticipants int            `json:"total_participants"`
	CheckedIn         int            `json:"checked_in"`
	Sessions          []SessionStats `json:"sessions"`
}

// SessionStats aggregates attendance numbers for one session.
type SessionStats struct {
	SessionID       string `json:"session_id"`
	Title           string `json:"title"`
	Registered      int    `json:"registered"`
	CheckedIn       int    `json:"checked_in"`
	MaxParticipants *int   `json:"max_participants,omitempty"`
}

// RegistrationRequest is the body of POST /api/sessions/participants.
type RegistrationRequest struct {
	SessionID     string `json:"session_id" validate:"required"`
	ParticipantID string `json:"participant_id" validate:"required"`
}

// CapacityInfo is attached to capacity-exceeded responses.
type CapacityInfo struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// CreateParticipantRequest adds a registrant to an event (admin path).
type CreateParticipantRequest struct {
	EventID    string `json:"event_id" validate:"required"`
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"phone,omitempty"`
	Profession string `json:"profession,omitempty"`
}

// CreateTicketTypeRequest configures a new sellable ticket category.
type CreateTicketTypeRequest struct {
	EventID     string    `json:"event_id" validate:"required"`
	Name        string    `json:"name" validate:"required"`
	Price       float64   `json:"price" validate:"gte=0"`
	VATRate     float64   `json:"vat_rate" validate:"gte=0,lte=100"`
	QuotaTotal  *int      `json:"quota_total,omitempty" validate:"omitempty,gt=0"`
	MinPerOrder int       `json:"min_per_order" validate:"gte=1"`
	MaxPerOrder int       `json:"max_per_order" validate:"gtefield=MinPerOrder"`
	SaleStart   time.Time `json:"sale_start" validate:"required"`
	SaleEnd     time.Time `json:"sale_end" validate:"required,gtfield=SaleStart"`
	Visible     bool      `json:"visible"`
}

// ReserveTicketsRequest claims quota units against a ticket type.
type ReserveTicketsRequest struct {
	Quantity int `json:"quantity" validate:"required,gte=1"`
}

// PromoValidateRequest asks whether a code applies to an order amount.
type PromoValidateRequest struct {
	Code        string    `json:"code" validate:"required"`
	OrderAmount float64   `json:"order_amount" validate:"gte=0"`
	ItemPrices  []float64 `json:"item_prices,omitempty"`
	CustomerID  string    `json:"customer_id,omitempty"`
}

// PromoRedeemRequest consumes one use of a promo code.
type PromoRedeemRequest struct {
	Code       string `json:"code" validate:"required"`
	CustomerID string `json:"customer_id" validate:"required"`
}

// CheckinEvent is the payload broadcast on the live feed and on Kafka when a
// participant is checked in.
type CheckinEvent struct {
	EventID       string    `json:"event_id"`
	SessionID     string    `json:"session_id"`
	ParticipantID string    `json:"participant_id"`
	Name          string    `json:"name"`
	CheckedBy     string    `json:"checked_by"`
	Method        string    `json:"method"`
	CheckedAt     time.Time `json:"checked_at"`
}

// RegistrationEvent is published when a reservation is committed or released.
type RegistrationEvent struct {
	SessionID     string    `json:"session_id"`
	ParticipantID string    `json:"participant_id"`
	Action        string    `json:"action"`
	OccurredAt    time.Time `json:"occurred_at"`
}
