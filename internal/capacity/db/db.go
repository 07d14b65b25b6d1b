package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/uptrace/bun"

	"ms-checkin/internal/capacity"
	"ms-checkin/internal/models"
)

type DB struct {
	Bun *bun.DB
}

// ReserveSeat inserts the registration row and bumps the session counter in
// one transaction. The unique (session_id, participant_id) constraint makes
// repeats idempotent, and the conditional update closes the read-then-write
// window: two racing requests for the last seat cannot both pass the check.
func (d *DB) ReserveSeat(ctx context.Context, sessionID, participantID string) (capacity.Outcome, error) {
	var outcome capacity.Outcome

	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		exists, err := tx.NewSelect().
			Model((*models.Session)(nil)).
			Where("id = ?", sessionID).
			Exists(ctx)
		if err != nil {
			return err
		}
		if !exists {
			return capacity.ErrSessionNotFound
		}

		registration := models.SessionParticipant{
			SessionID:     sessionID,
			ParticipantID: participantID,
			CreatedAt:     time.Now(),
		}
		res, err := tx.NewInsert().
			Model(&registration).
			On("CONFLICT DO NOTHING").
			Exec(ctx)
		if err != nil {
			return err
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if inserted == 0 {
			outcome = capacity.OutcomeAlreadyRegistered
			return nil
		}

		res, err = tx.NewUpdate().
			Model((*models.Session)(nil)).
			Set("participant_count = participant_count + 1").
			Where("id = ?", sessionID).
			Where("(max_participants IS NULL OR participant_count < max_participants)").
			Exec(ctx)
		if err != nil {
			return err
		}
		counted, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if counted == 0 {
			// Full. Abort the transaction so the registration row above is
			// rolled back, and report the counts seen at rejection time.
			var session models.Session
			if err := tx.NewSelect().
				Model(&session).
				Where("id = ?", sessionID).
				Limit(1).
				Scan(ctx); err != nil {
				return err
			}
			max := 0
			if session.MaxParticipants != nil {
				max = *session.MaxParticipants
			}
			return &capacity.CapacityError{Current: session.ParticipantCount, Max: max}
		}

		outcome = capacity.OutcomeReserved
		return nil
	})
	if err != nil {
		return "", err
	}
	return outcome, nil
}

// ReleaseSeat removes a registration and decrements the counter. Returns
// false when no reservation was held (no-op).
func (d *DB) ReleaseSeat(ctx context.Context, sessionID, participantID string) (bool, error) {
	var released bool

	err := d.Bun.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		res, err := tx.NewDelete().
			Model((*models.SessionParticipant)(nil)).
			Where("session_id = ?", sessionID).
			Where("participant_id = ?", participantID).
			Exec(ctx)
		if err != nil {
			return err
		}
		deleted, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if deleted == 0 {
			return nil
		}

		// The counter never goes below zero even if it drifted.
		_, err = tx.NewUpdate().
			Model((*models.Session)(nil)).
			Set("participant_count = participant_count - 1").
			Where("id = ?", sessionID).
			Where("participant_count > 0").
			Exec(ctx)
		if err != nil {
			return err
		}

		released = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return released, nil
}

// ReserveTicketQuota claims qty units of a ticket type's quota with a single
// conditional update.
func (d *DB) ReserveTicketQuota(ctx context.Context, ticketTypeID string, qty int) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.TicketType)(nil)).
		Set("sold = sold + ?", qty).
		Where("id = ?", ticketTypeID).
		Where("(quota_total IS NULL OR sold + ? <= quota_total)", qty).
		Exec(ctx)
	if err != nil {
		return err
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if updated > 0 {
		return nil
	}

	var ticketType models.TicketType
	err = d.Bun.NewSelect().
		Model(&ticketType).
		Where("id = ?", ticketTypeID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return capacity.ErrTicketTypeNotFound
	}
	max := 0
	if ticketType.QuotaTotal != nil {
		max = *ticketType.QuotaTotal
	}
	return &capacity.CapacityError{Current: ticketType.Sold, Max: max}
}

// ReleaseTicketQuota returns qty units, clamped at zero.
func (d *DB) ReleaseTicketQuota(ctx context.Context, ticketTypeID string, qty int) error {
	res, err := d.Bun.NewUpdate().
		Model((*models.TicketType)(nil)).
		Set("sold = CASE WHEN sold >= ? THEN sold - ? ELSE 0 END", qty, qty).
		Where("id = ?", ticketTypeID).
		Exec(ctx)
	if err != nil {
		return err
	}
	updated, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if updated == 0 {
		return capacity.ErrTicketTypeNotFound
	}
	return nil
}

func (d *DB) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	var session models.Session
	err := d.Bun.NewSelect().
		Model(&session).
		Where("id = ?", sessionID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, capacity.ErrSessionNotFound
	}
	return &session, nil
}
