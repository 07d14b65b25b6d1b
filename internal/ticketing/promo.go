package ticketing

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"ms-checkin/internal/logger"
	"ms-checkin/internal/models"
)

// PromoDBLayer is the storage contract for promo validation and redemption.
// RedeemPromo must be atomic: the usage counter moves with a conditional
// update, never a read followed by a write.
type PromoDBLayer interface {
	GetPromoByCode(ctx context.Context, code string) (*models.PromoCode, error)
	CountRedemptionsByCustomer(ctx context.Context, promoID, customerID string) (int, error)
	RedeemPromo(ctx context.Context, promo *models.PromoCode, customerID string) error
}

// PromoPublisher announces committed redemptions.
type PromoPublisher interface {
	PublishPromoRedeemed(ctx context.Context, promoID, code, customerID string) error
}

// ValidationResult explains whether and how a promo code applies. Business
// rejections set IsValid=false with a Reason; only lookup/storage failures
// surface as errors.
type ValidationResult struct {
	IsValid        bool    `json:"is_valid"`
	DiscountAmount float64 `json:"discount_amount"`
	FinalAmount    float64 `json:"final_amount"`
	Reason         string  `json:"reason,omitempty"`
}

type PromoService struct {
	DB     PromoDBLayer
	Kafka  PromoPublisher
	Logger *logger.Logger
}

func NewPromoService(db PromoDBLayer, kafka PromoPublisher, log *logger.Logger) *PromoService {
	return &PromoService{DB: db, Kafka: kafka, Logger: log}
}

// Validate checks a code against an order without consuming a use.
func (s *PromoService) Validate(ctx context.Context, req models.PromoValidateRequest) (*ValidationResult, error) {
	promo, err := s.DB.GetPromoByCode(ctx, strings.ToUpper(strings.TrimSpace(req.Code)))
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if reason := s.rejectReason(promo, now, req.OrderAmount); reason != "" {
		return &ValidationResult{IsValid: false, FinalAmount: req.OrderAmount, Reason: reason}, nil
	}

	if promo.MaxUsesPerCustomer != nil && req.CustomerID != "" {
		used, err := s.DB.CountRedemptionsByCustomer(ctx, promo.ID, req.CustomerID)
		if err != nil {
			return nil, err
		}
		if used >= *promo.MaxUsesPerCustomer {
			return &ValidationResult{
				IsValid:     false,
				FinalAmount: req.OrderAmount,
				Reason:      "You have already used this promo code the maximum number of times",
			}, nil
		}
	}

	discount := s.calculateDiscount(promo, req.OrderAmount, req.ItemPrices)
	if discount > req.OrderAmount {
		discount = req.OrderAmount
	}

	return &ValidationResult{
		IsValid:        true,
		DiscountAmount: discount,
		FinalAmount:    req.OrderAmount - discount,
	}, nil
}

// Redeem consumes one use of the code for the customer. The global cap is
// enforced inside the storage layer's conditional update.
func (s *PromoService) Redeem(ctx context.Context, req models.PromoRedeemRequest) error {
	promo, err := s.DB.GetPromoByCode(ctx, strings.ToUpper(strings.TrimSpace(req.Code)))
	if err != nil {
		return err
	}

	if err := s.DB.RedeemPromo(ctx, promo, req.CustomerID); err != nil {
		return err
	}

	if s.Logger != nil {
		s.Logger.Info("TICKETING", fmt.Sprintf("promo %s redeemed by %s", promo.Code, req.CustomerID))
	}
	if s.Kafka != nil {
		if err := s.Kafka.PublishPromoRedeemed(ctx, promo.ID, promo.Code, req.CustomerID); err != nil && s.Logger != nil {
			s.Logger.Error("KAFKA", fmt.Sprintf("failed to publish promo redemption: %v", err))
		}
	}
	return nil
}

func (s *PromoService) rejectReason(promo *models.PromoCode, now time.Time, orderAmount float64) string {
	switch {
	case !promo.Active:
		return "Promo code is no longer active"
	case now.Before(promo.ActiveFrom):
		return "Promo code is not active yet"
	case !now.Before(promo.ExpiresAt):
		return "Promo code has expired"
	case promo.MaxUses != nil && promo.UsedCount >= *promo.MaxUses:
		return "Promo code usage limit reached"
	case promo.MinOrderAmount != nil && orderAmount < *promo.MinOrderAmount:
		return fmt.Sprintf("Minimum order amount of %.2f required", *promo.MinOrderAmount)
	}
	return ""
}

func (s *PromoService) calculateDiscount(promo *models.PromoCode, orderAmount float64, itemPrices []float64) float64 {
	switch promo.Type {
	case models.PromoPercentage:
		discount := orderAmount * promo.Value / 100
		if promo.MaxDiscount != nil && discount > *promo.MaxDiscount {
			discount = *promo.MaxDiscount
		}
		return discount

	case models.PromoFixed:
		return promo.Value

	case models.PromoBogo:
		if promo.BuyQuantity == nil || promo.GetQuantity == nil || len(itemPrices) == 0 {
			return 0
		}
		return bogoDiscount(itemPrices, *promo.BuyQuantity, *promo.GetQuantity)
	}
	return 0
}

// bogoDiscount makes the cheapest eligible items free: for every buyQty items
// paid, getQty further items cost nothing.
func bogoDiscount(itemPrices []float64, buyQty, getQty int) float64 {
	if buyQty <= 0 || getQty <= 0 {
		return 0
	}
	groupSize := buyQty + getQty
	freeCount := (len(itemPrices) / groupSize) * getQty
	if freeCount == 0 {
		return 0
	}

	sorted := make([]float64, len(itemPrices))
	copy(sorted, itemPrices)
	sort.Float64s(sorted)

	var discount float64
	for i := 0; i < freeCount && i < len(sorted); i++ {
		discount += sorted[i]
	}
	return discount
}
