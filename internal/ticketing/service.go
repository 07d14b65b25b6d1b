package ticketing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ms-checkin/internal/logger"
	"ms-checkin/internal/models"
)

// DBLayer is the storage contract for ticket type management. Quota
// accounting is NOT here: counters only move through the capacity ledger.
type DBLayer interface {
	CreateTicketType(ctx context.Context, ticketType models.TicketType) error
	GetTicketType(ctx context.Context, id string) (*models.TicketType, error)
	ListTicketTypes(ctx context.Context, eventID string, visibleOnly bool) ([]models.TicketType, error)
	UpdateTicketType(ctx context.Context, ticketType models.TicketType) error
	DeleteTicketType(ctx context.Context, id string) error
}

// QuotaLedger is the slice of the capacity service the ticket flow needs.
type QuotaLedger interface {
	ReserveTickets(ctx context.Context, ticketTypeID string, qty int) error
	ReleaseTickets(ctx context.Context, ticketTypeID string, qty int) error
}

type Service struct {
	DB     DBLayer
	Quota  QuotaLedger
	Logger *logger.Logger
}

func NewService(db DBLayer, quota QuotaLedger, log *logger.Logger) *Service {
	return &Service{DB: db, Quota: quota, Logger: log}
}

func (s *Service) CreateTicketType(ctx context.Context, req models.CreateTicketTypeRequest) (*models.TicketType, error) {
	ticketType := models.TicketType{
		ID:          uuid.NewString(),
		EventID:     req.EventID,
		Name:        req.Name,
		Price:       req.Price,
		VATRate:     req.VATRate,
		QuotaTotal:  req.QuotaTotal,
		MinPerOrder: req.MinPerOrder,
		MaxPerOrder: req.MaxPerOrder,
		SaleStart:   req.SaleStart,
		SaleEnd:     req.SaleEnd,
		Visible:     req.Visible,
		CreatedAt:   time.Now(),
	}
	if err := s.DB.CreateTicketType(ctx, ticketType); err != nil {
		return nil, fmt.Errorf("failed to create ticket type: %w", err)
	}
	return &ticketType, nil
}

func (s *Service) GetTicketType(ctx context.Context, id string) (*models.TicketType, error) {
	return s.DB.GetTicketType(ctx, id)
}

func (s *Service) ListTicketTypes(ctx context.Context, eventID string, visibleOnly bool) ([]models.TicketType, error) {
	return s.DB.ListTicketTypes(ctx, eventID, visibleOnly)
}

// Reserve claims qty units against a ticket type, enforcing the sale window
// and per-order bounds before handing the count itself to the quota ledger.
func (s *Service) Reserve(ctx context.Context, ticketTypeID string, qty int) (*models.TicketType, error) {
	ticketType, err := s.DB.GetTicketType(ctx, ticketTypeID)
	if err != nil {
		return nil, err
	}

	if !ticketType.OnSaleAt(time.Now()) {
		return nil, ErrNotOnSale
	}
	if qty < ticketType.MinPerOrder || qty > ticketType.MaxPerOrder {
		return nil, ErrQuantityOutOfRange
	}

	if err := s.Quota.ReserveTickets(ctx, ticketTypeID, qty); err != nil {
		return nil, err
	}

	if s.Logger != nil {
		s.Logger.Info("TICKETING", fmt.Sprintf("reserved %d x %s", qty, ticketType.Name))
	}
	return s.DB.GetTicketType(ctx, ticketTypeID)
}

// Release returns qty units (cancelled or abandoned order).
func (s *Service) Release(ctx context.Context, ticketTypeID string, qty int) error {
	return s.Quota.ReleaseTickets(ctx, ticketTypeID, qty)
}
