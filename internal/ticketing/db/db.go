package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"ms-checkin/internal/capacity"
	"ms-checkin/internal/models"
	"ms-checkin/internal/ticketing"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) CreateTicketType(ctx context.Context, ticketType models.TicketType) error {
	_, err := d.Bun.NewInsert().Model(&ticketType).Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to insert ticket type: %w", err)
	}
	return nil
}

func (d *DB) GetTicketType(ctx context.Context, id string) (*models.TicketType, error) {
	ticketType := new(models.TicketType)
	err := d.Bun.NewSelect().Model(ticketType).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, capacity.ErrTicketTypeNotFound
	}
	if err != nil {
		return nil, err
	}
	return ticketType, nil
}

func (d *DB) ListTicketTypes(ctx context.Context, eventID string, visibleOnly bool) ([]models.TicketType, error) {
	var ticketTypes []models.TicketType
	q := d.Bun.NewSelect().Model(&ticketTypes).Where("event_id = ?", eventID).Order("created_at ASC")
	if visibleOnly {
		q = q.Where("visible = ?", true)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}
	return ticketTypes, nil
}

func (d *DB) UpdateTicketType(ctx context.Context, ticketType models.TicketType) error {
	_, err := d.Bun.NewUpdate().
		Model(&ticketType).
		WherePK().
		ExcludeColumn("sold", "created_at").
		Exec(ctx)
	return err
}

func (d *DB) DeleteTicketType(ctx context.Context, id string) error {
	_, err := d.Bun.NewDelete().Model((*models.TicketType)(nil)).Where("id = ?", id).Exec(ctx)
	return err
}

func (d *DB) GetPromoByCode(ctx context.Context, code string) (*models.PromoCode, error) {
	promo := new(models.PromoCode)
	err := d.Bun.NewSelect().Model(promo).Where("code = ?", code).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ticketing.ErrPromoNotFound
	}
	if err != nil {
		return nil, err
	}
	return promo, nil
}

func (d *DB) CountRedemptionsByCustomer(ctx context.Context, promoID, customerID string) (int, error) {
	return d.Bun.NewSelect().
		Model((*models.PromoRedemption)(nil)).
		Where("promo_id = ?", promoID).
		Where("customer_id = ?", customerID).
		Count(ctx)
}

// RedeemPromo consumes one use. The usage counter only moves through the
// conditional update; zero rows affected means the code lost its headroom
// (deactivated, expired or cap reached) since it was read.
func (d *DB) RedeemPromo(ctx context.Context, promo *models.PromoCode, customerID string) error {
	return d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		now := time.Now()

		if promo.MaxUsesPerCustomer != nil {
			used, err := tx.NewSelect().
				Model((*models.PromoRedemption)(nil)).
				Where("promo_id = ?", promo.ID).
				Where("customer_id = ?", customerID).
				Count(ctx)
			if err != nil {
				return err
			}
			if used >= *promo.MaxUsesPerCustomer {
				return ticketing.ErrPromoCustomerLimit
			}
		}

		res, err := tx.NewUpdate().
			Model((*models.PromoCode)(nil)).
			Set("used_count = used_count + 1").
			Where("id = ?", promo.ID).
			Where("active = ?", true).
			Where("active_from <= ?", now).
			Where("expires_at > ?", now).
			Where("(max_uses IS NULL OR used_count < max_uses)").
			Exec(ctx)
		if err != nil {
			return err
		}
		rows, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return ticketing.ErrPromoExhausted
		}

		redemption := models.PromoRedemption{
			PromoID:    promo.ID,
			CustomerID: customerID,
			RedeemedAt: now,
		}
		_, err = tx.NewInsert().Model(&redemption).Exec(ctx)
		return err
	})
}
