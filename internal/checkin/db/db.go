package db

import (
	"context"
	"time"

	"github.com/uptrace/bun"

	"ms-checkin/internal/models"
)

type DB struct {
	Bun *bun.DB
}

func (d *DB) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	var session models.Session
	err := d.Bun.NewSelect().
		Model(&session).
		Where("id = ?", sessionID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (d *DB) GetParticipant(ctx context.Context, participantID string) (*models.Participant, error) {
	var participant models.Participant
	err := d.Bun.NewSelect().
		Model(&participant).
		Where("id = ?", participantID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (d *DB) IsRegistered(ctx context.Context, sessionID, participantID string) (bool, error) {
	return d.Bun.NewSelect().
		Model((*models.SessionParticipant)(nil)).
		Where("session_id = ?", sessionID).
		Where("participant_id = ?", participantID).
		Exists(ctx)
}

// MarkCheckedIn flips the checked_in flag if and only if it is still false.
// The WHERE clause is the whole concurrency story: of N racing scanners,
// exactly one update matches a row.
func (d *DB) MarkCheckedIn(ctx context.Context, participantID string, at time.Time) (bool, error) {
	res, err := d.Bun.NewUpdate().
		Model((*models.Participant)(nil)).
		Set("checked_in = ?", true).
		Set("checked_in_at = ?", at).
		Where("id = ?", participantID).
		Where("checked_in = ?", false).
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

// InsertRecord stores the attendance record; the unique
// (participant_id, session_id) index makes repeats a no-op.
func (d *DB) InsertRecord(ctx context.Context, record models.CheckinRecord) error {
	_, err := d.Bun.NewInsert().
		Model(&record).
		On("CONFLICT DO NOTHING").
		Exec(ctx)
	return err
}

func (d *DB) RosterBySession(ctx context.Context, sessionID string) ([]models.Participant, error) {
	var participants []models.Participant
	err := d.Bun.NewSelect().
		Model(&participants).
		Join("JOIN session_participants sp ON sp.participant_id = participant.id").
		Where("sp.session_id = ?", sessionID).
		Order("participant.name").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return participants, nil
}
