package ticketing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"ms-checkin/internal/models"
	"ms-checkin/internal/ticketing"
)

type MockTicketDB struct {
	mock.Mock
}

func (m *MockTicketDB) CreateTicketType(ctx context.Context, ticketType models.TicketType) error {
	args := m.Called(ctx, ticketType)
	return args.Error(0)
}

func (m *MockTicketDB) GetTicketType(ctx context.Context, id string) (*models.TicketType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.TicketType), args.Error(1)
}

func (m *MockTicketDB) ListTicketTypes(ctx context.Context, eventID string, visibleOnly bool) ([]models.TicketType, error) {
	args := m.Called(ctx, eventID, visibleOnly)
	return args.Get(0).([]models.TicketType), args.Error(1)
}

func (m *MockTicketDB) UpdateTicketType(ctx context.Context, ticketType models.TicketType) error {
	args := m.Called(ctx, ticketType)
	return args.Error(0)
}

func (m *MockTicketDB) DeleteTicketType(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockQuota struct {
	mock.Mock
}

func (m *MockQuota) ReserveTickets(ctx context.Context, ticketTypeID string, qty int) error {
	args := m.Called(ctx, ticketTypeID, qty)
	return args.Error(0)
}

func (m *MockQuota) ReleaseTickets(ctx context.Context, ticketTypeID string, qty int) error {
	args := m.Called(ctx, ticketTypeID, qty)
	return args.Error(0)
}

func onSaleTicketType() *models.TicketType {
	return &models.TicketType{
		ID:          "tt-1",
		EventID:     "event-1",
		Name:        "General",
		Price:       20,
		MinPerOrder: 1,
		MaxPerOrder: 4,
		SaleStart:   time.Now().Add(-time.Hour),
		SaleEnd:     time.Now().Add(time.Hour),
		Visible:     true,
	}
}

func TestReserveHappyPath(t *testing.T) {
	mockDB := new(MockTicketDB)
	mockQuota := new(MockQuota)
	mockDB.On("GetTicketType", mock.Anything, "tt-1").Return(onSaleTicketType(), nil)
	mockQuota.On("ReserveTickets", mock.Anything, "tt-1", 2).Return(nil)

	svc := ticketing.NewService(mockDB, mockQuota, nil)
	_, err := svc.Reserve(context.Background(), "tt-1", 2)

	assert.NoError(t, err)
	mockQuota.AssertCalled(t, "ReserveTickets", mock.Anything, "tt-1", 2)
}

func TestReserveOutsideSaleWindow(t *testing.T) {
	ticketType := onSaleTicketType()
	ticketType.SaleEnd = time.Now().Add(-time.Minute)

	mockDB := new(MockTicketDB)
	mockQuota := new(MockQuota)
	mockDB.On("GetTicketType", mock.Anything, "tt-1").Return(ticketType, nil)

	svc := ticketing.NewService(mockDB, mockQuota, nil)
	_, err := svc.Reserve(context.Background(), "tt-1", 1)

	assert.ErrorIs(t, err, ticketing.ErrNotOnSale)
	mockQuota.AssertNotCalled(t, "ReserveTickets", mock.Anything, mock.Anything, mock.Anything)
}

func TestReserveQuantityBounds(t *testing.T) {
	mockDB := new(MockTicketDB)
	mockQuota := new(MockQuota)
	mockDB.On("GetTicketType", mock.Anything, "tt-1").Return(onSaleTicketType(), nil)

	svc := ticketing.NewService(mockDB, mockQuota, nil)

	_, err := svc.Reserve(context.Background(), "tt-1", 0)
	assert.ErrorIs(t, err, ticketing.ErrQuantityOutOfRange)

	_, err = svc.Reserve(context.Background(), "tt-1", 5)
	assert.ErrorIs(t, err, ticketing.ErrQuantityOutOfRange)
}

func TestQuotaRemaining(t *testing.T) {
	ticketType := onSaleTicketType()
	assert.Equal(t, -1, ticketType.QuotaRemaining())

	quota := 10
	ticketType.QuotaTotal = &quota
	ticketType.Sold = 4
	assert.Equal(t, 6, ticketType.QuotaRemaining())

	ticketType.Sold = 12 // drifted counter
	assert.Equal(t, 0, ticketType.QuotaRemaining())
}
