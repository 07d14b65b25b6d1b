package db

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"ms-checkin/internal/models"
	"ms-checkin/internal/participants"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) EventExists(ctx context.Context, eventID string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.Event)(nil)).
		Where("id = ?", eventID).
		Exists(ctx)
}

// InsertParticipant writes the row unless (event_id, email) already exists.
// The conflict target is the unique index, so two concurrent registrations
// of the same email resolve to a single row without an error.
func (d *DB) InsertParticipant(ctx context.Context, participant models.Participant) (bool, error) {
	res, err := d.Bun.NewInsert().
		Model(&participant).
		On("CONFLICT (event_id, email) DO NOTHING").
		Exec(ctx)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows == 1, nil
}

func (d *DB) GetParticipant(ctx context.Context, id string) (*models.Participant, error) {
	participant := new(models.Participant)
	err := d.Bun.NewSelect().Model(participant).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, participants.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return participant, nil
}

func (d *DB) GetParticipantByEmail(ctx context.Context, eventID, email string) (*models.Participant, error) {
	participant := new(models.Participant)
	err := d.Bun.NewSelect().
		Model(participant).
		Where("event_id = ?", eventID).
		Where("email = ?", email).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, participants.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return participant, nil
}

func (d *DB) ListParticipantsByEvent(ctx context.Context, eventID string) ([]models.Participant, error) {
	var list []models.Participant
	err := d.Bun.NewSelect().
		Model(&list).
		Where("event_id = ?", eventID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return list, nil
}
