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

type MockPromoDB struct {
	mock.Mock
}

func (m *MockPromoDB) GetPromoByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PromoCode), args.Error(1)
}

func (m *MockPromoDB) CountRedemptionsByCustomer(ctx context.Context, promoID, customerID string) (int, error) {
	args := m.Called(ctx, promoID, customerID)
	return args.Int(0), args.Error(1)
}

func (m *MockPromoDB) RedeemPromo(ctx context.Context, promo *models.PromoCode, customerID string) error {
	args := m.Called(ctx, promo, customerID)
	return args.Error(0)
}

func activePromo(promoType string, value float64) *models.PromoCode {
	return &models.PromoCode{
		ID:         "promo-1",
		Code:       "SAVE",
		Type:       promoType,
		Value:      value,
		ActiveFrom: time.Now().Add(-time.Hour),
		ExpiresAt:  time.Now().Add(time.Hour),
		Active:     true,
	}
}

func TestValidatePercentage(t *testing.T) {
	mockDB := new(MockPromoDB)
	mockDB.On("GetPromoByCode", mock.Anything, "SAVE").Return(activePromo(models.PromoPercentage, 10), nil)

	svc := ticketing.NewPromoService(mockDB, nil, nil)
	result, err := svc.Validate(context.Background(), models.PromoValidateRequest{Code: "save", OrderAmount: 200})

	assert.NoError(t, err)
	assert.True(t, result.IsValid)
	assert.Equal(t, 20.0, result.DiscountAmount)
	assert.Equal(t, 180.0, result.FinalAmount)
}

func TestValidatePercentageCapped(t *testing.T) {
	promo := activePromo(models.PromoPercentage, 50)
	maxDiscount := 30.0
	promo.MaxDiscount = &maxDiscount

	mockDB := new(MockPromoDB)
	mockDB.On("GetPromoByCode", mock.Anything, "SAVE").Return(promo, nil)

	svc := ticketing.NewPromoService(mockDB, nil, nil)
	result, err := svc.Validate(context.Background(), models.PromoValidateRequest{Code: "SAVE", OrderAmount: 200})

	assert.NoError(t, err)
	assert.Equal(t, 30.0, result.DiscountAmount)
}

func TestValidateFixedNeverExceedsOrder(t *testing.T) {
	mockDB := new(MockPromoDB)
	mockDB.On("GetPromoByCode", mock.Anything, "SAVE").Return(activePromo(models.PromoFixed, 50), nil)

	svc := ticketing.NewPromoService(mockDB, nil, nil)
	result, err := svc.Validate(context.Background(), models.PromoValidateRequest{Code: "SAVE", OrderAmount: 30})

	assert.NoError(t, err)
	assert.Equal(t, 30.0, result.DiscountAmount)
	assert.Equal(t, 0.0, result.FinalAmount)
}

func TestValidateBogoCheapestFree(t *testing.T) {
	promo := activePromo(models.PromoBogo, 0)
	buy, get := 2, 1
	promo.BuyQuantity = &buy
	promo.GetQuantity = &get

	mockDB := new(MockPromoDB)
	mockDB.On("GetPromoByCode", mock.Anything, "SAVE").Return(promo, nil)

	svc := ticketing.NewPromoService(mockDB, nil, nil)
	result, err := svc.Validate(context.Background(), models.PromoValidateRequest{
		Code:        "SAVE",
		OrderAmount: 90,
		ItemPrices:  []float64{40, 30, 20},
	})

	assert.NoError(t, err)
	assert.True(t, result.IsValid)
	// One group of 3: the cheapest item is free.
	assert.Equal(t, 20.0, result.DiscountAmount)
}

func TestValidateExpired(t *testing.T) {
	promo := activePromo(models.PromoPercentage, 10)
	promo.ExpiresAt = time.Now().Add(-time.Minute)

	mockDB := new(MockPromoDB)
	mockDB.On("GetPromoByCode", mock.Anything, "SAVE").Return(promo, nil)

	svc := ticketing.NewPromoService(mockDB, nil, nil)
	result, err := svc.Validate(context.Background(), models.PromoValidateRequest{Code: "SAVE", OrderAmount: 100})

	assert.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Reason, "expired")
	assert.Equal(t, 100.0, result.FinalAmount)
}

func TestValidateMinOrderAmount(t *testing.T) {
	promo := activePromo(models.PromoPercentage, 10)
	minOrder := 50.0
	promo.MinOrderAmount = &minOrder

	mockDB := new(MockPromoDB)
	mockDB.On("GetPromoByCode", mock.Anything, "SAVE").Return(promo, nil)

	svc := ticketing.NewPromoService(mockDB, nil, nil)
	result, err := svc.Validate(context.Background(), models.PromoValidateRequest{Code: "SAVE", OrderAmount: 20})

	assert.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Reason, "Minimum order amount")
}

func TestValidateUsageCapReached(t *testing.T) {
	promo := activePromo(models.PromoPercentage, 10)
	maxUses := 5
	promo.MaxUses = &maxUses
	promo.UsedCount = 5

	mockDB := new(MockPromoDB)
	mockDB.On("GetPromoByCode", mock.Anything, "SAVE").Return(promo, nil)

	svc := ticketing.NewPromoService(mockDB, nil, nil)
	result, err := svc.Validate(context.Background(), models.PromoValidateRequest{Code: "SAVE", OrderAmount: 100})

	assert.NoError(t, err)
	assert.False(t, result.IsValid)
	assert.Contains(t, result.Reason, "usage limit")
}

func TestValidatePerCustomerCap(t *testing.T) {
	promo := activePromo(models.PromoPercentage, 10)
	perCustomer := 1
	promo.MaxUsesPerCustomer = &perCustomer

	mockDB := new(MockPromoDB)
	mockDB.On("GetPromoByCode", mock.Anything, "SAVE").Return(promo, nil)
	mockDB.On("CountRedemptionsByCustomer", mock.Anything, "promo-1", "cust-1").Return(1, nil)

	svc := ticketing.NewPromoService(mockDB, nil, nil)
	result, err := svc.Validate(context.Background(), models.PromoValidateRequest{
		Code:        "SAVE",
		OrderAmount: 100,
		CustomerID:  "cust-1",
	})

	assert.NoError(t, err)
	assert.False(t, result.IsValid)
}

func TestValidateUnknownCode(t *testing.T) {
	mockDB := new(MockPromoDB)
	mockDB.On("GetPromoByCode", mock.Anything, "NOPE").Return(nil, ticketing.ErrPromoNotFound)

	svc := ticketing.NewPromoService(mockDB, nil, nil)
	_, err := svc.Validate(context.Background(), models.PromoValidateRequest{Code: "nope", OrderAmount: 100})

	assert.ErrorIs(t, err, ticketing.ErrPromoNotFound)
}

func TestRedeemDelegatesToStore(t *testing.T) {
	promo := activePromo(models.PromoPercentage, 10)

	mockDB := new(MockPromoDB)
	mockDB.On("GetPromoByCode", mock.Anything, "SAVE").Return(promo, nil)
	mockDB.On("RedeemPromo", mock.Anything, promo, "cust-1").Return(nil)

	svc := ticketing.NewPromoService(mockDB, nil, nil)
	err := svc.Redeem(context.Background(), models.PromoRedeemRequest{Code: "SAVE", CustomerID: "cust-1"})

	assert.NoError(t, err)
	mockDB.AssertCalled(t, "RedeemPromo", mock.Anything, promo, "cust-1")
}

func TestRedeemExhausted(t *testing.T) {
	promo := activePromo(models.PromoPercentage, 10)

	mockDB := new(MockPromoDB)
	mockDB.On("GetPromoByCode", mock.Anything, "SAVE").Return(promo, nil)
	mockDB.On("RedeemPromo", mock.Anything, promo, "cust-1").Return(ticketing.ErrPromoExhausted)

	svc := ticketing.NewPromoService(mockDB, nil, nil)
	err := svc.Redeem(context.Background(), models.PromoRedeemRequest{Code: "SAVE", CustomerID: "cust-1"})

	assert.ErrorIs(t, err, ticketing.ErrPromoExhausted)
}
