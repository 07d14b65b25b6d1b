package stats

import (
	"context"
	"sort"
	"time"

	"github.com/uptrace/bun"

	"ms-checkin/internal/models"
)

// Service aggregates attendance numbers for dashboards and the scanner's
// unlock response.
type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// HourlyCheckins is one bucket of the check-in timeline.
type HourlyCheckins struct {
	Hour  time.Time `json:"hour"`
	Count int       `json:"count"`
}

// EventStats returns registered/checked-in totals for an event plus a
// per-session breakdown.
func (s *Service) EventStats(ctx context.Context, eventID string) (*models.EventStats, error) {
	total, err := s.db.NewSelect().
		Model((*models.Participant)(nil)).
		Where("event_id = ?", eventID).
		Count(ctx)
	if err != nil {
		return nil, err
	}

	checkedIn, err := s.db.NewSelect().
		Model((*models.Participant)(nil)).
		Where("event_id = ?", eventID).
		Where("checked_in = ?", true).
		Count(ctx)
	if err != nil {
		return nil, err
	}

	var sessions []models.Session
	err = s.db.NewSelect().
		Model(&sessions).
		Where("event_id = ?", eventID).
		Order("starts_at").
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	result := &models.EventStats{
		TotalParticipants: total,
		CheckedIn:         checkedIn,
		Sessions:          make([]models.SessionStats, 0, len(sessions)),
	}

	for _, session := range sessions {
		sessionCheckins, err := s.db.NewSelect().
			Model((*models.CheckinRecord)(nil)).
			Where("session_id = ?", session.ID).
			Count(ctx)
		if err != nil {
			return nil, err
		}
		result.Sessions = append(result.Sessions, models.SessionStats{
			SessionID:       session.ID,
			Title:           session.Title,
			Registered:      session.ParticipantCount,
			CheckedIn:       sessionCheckins,
			MaxParticipants: session.MaxParticipants,
		})
	}

	return result, nil
}

// SessionStats returns the attendance numbers for a single session.
func (s *Service) SessionStats(ctx context.Context, sessionID string) (*models.SessionStats, error) {
	var session models.Session
	err := s.db.NewSelect().
		Model(&session).
		Where("id = ?", sessionID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, err
	}

	checkins, err := s.db.NewSelect().
		Model((*models.CheckinRecord)(nil)).
		Where("session_id = ?", sessionID).
		Count(ctx)
	if err != nil {
		return nil, err
	}

	return &models.SessionStats{
		SessionID:       session.ID,
		Title:           session.Title,
		Registered:      session.ParticipantCount,
		CheckedIn:       checkins,
		MaxParticipants: session.MaxParticipants,
	}, nil
}

// CheckinTimeline buckets an event's check-ins by hour. Bucketing happens
// here rather than in SQL so the query stays portable across dialects.
func (s *Service) CheckinTimeline(ctx context.Context, eventID string) ([]HourlyCheckins, error) {
	var timestamps []time.Time
	err := s.db.NewSelect().
		ColumnExpr("cr.checked_at").
		TableExpr("checkin_records AS cr").
		Join("JOIN sessions s ON s.id = cr.session_id").
		Where("s.event_id = ?", eventID).
		Scan(ctx, &timestamps)
	if err != nil {
		return nil, err
	}

	buckets := make(map[time.Time]int)
	for _, ts := range timestamps {
		buckets[ts.Truncate(time.Hour)]++
	}

	timeline := make([]HourlyCheckins, 0, len(buckets))
	for hour, count := range buckets {
		timeline = append(timeline, HourlyCheckins{Hour: hour, Count: count})
	}
	sort.Slice(timeline, func(i, j int) bool {
		return timeline[i].Hour.Before(timeline[j].Hour)
	})
	return timeline, nil
}
