package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/sirupsen/logrus"

	"github.com/temcen/tastematch/internal/taste"
	"github.com/temcen/tastematch/pkg/models"
)

var ErrMatchNotFound = errors.New("match not found")

const matchColumns = `id, user_id, matched_user_id, week_id, similarity_score,
	shared_artists, shared_genres, user_responded, connection_quality, created_at`

// MatchStore persists weekly_matches rows.
type MatchStore struct {
	db     PgxQuerier
	logger *logrus.Logger
}

func NewMatchStore(db PgxQuerier, logger *logrus.Logger) *MatchStore {
	return &MatchStore{db: db, logger: logger}
}

// Save upserts by the record's deterministic ID. A re-run refreshes score
// and shared data but keeps the user's response.
func (s *MatchStore) Save(ctx context.Context, record models.MatchRecord) error {
	query := `
		INSERT INTO weekly_matches (` + matchColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			similarity_score = EXCLUDED.similarity_score,
			shared_artists = EXCLUDED.shared_artists,
			shared_genres = EXCLUDED.shared_genres
	`

	artists, err := json.Marshal(record.SharedArtists)
	if err != nil {
		return fmt.Errorf("failed to marshal shared artists: %w", err)
	}
	genres := record.SharedGenres
	if genres == nil {
		genres = []string{}
	}

	_, err = s.db.Exec(ctx, query,
		record.ID, record.UserID, record.MatchedUserID, record.WeekID, record.SimilarityScore,
		artists, genres, record.UserResponded, string(record.ConnectionQuality), record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save match %s: %w", record.ID, err)
	}

	return nil
}

// RecentPartners returns everyone matched with userID, in either direction,
// at or after since. Matches from excludeWeekID are ignored so re-running a
// week reproduces its selection.
func (s *MatchStore) RecentPartners(ctx context.Context, userID string, since time.Time, excludeWeekID string) (taste.UserSet, error) {
	query := `
		SELECT matched_user_id FROM weekly_matches
		WHERE user_id = $1 AND created_at >= $2 AND week_id <> $3
		UNION
		SELECT user_id FROM weekly_matches
		WHERE matched_user_id = $1 AND created_at >= $2 AND week_id <> $3
	`

	rows, err := s.db.Query(ctx, query, userID, since, excludeWeekID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent partners: %w", err)
	}
	defer rows.Close()

	partners := taste.NewUserSet()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan partner id: %w", err)
		}
		partners.Add(id)
	}

	return partners, rows.Err()
}

// ListForUser returns userID's matches, optionally restricted to one week,
// best first.
func (s *MatchStore) ListForUser(ctx context.Context, userID, weekID string) ([]models.MatchRecord, error) {
	query := `
		SELECT ` + matchColumns + `
		FROM weekly_matches
		WHERE user_id = $1 AND ($2 = '' OR week_id = $2)
		ORDER BY created_at DESC, similarity_score DESC
	`

	rows, err := s.db.Query(ctx, query, userID, weekID)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	records := []models.MatchRecord{}
	for rows.Next() {
		record, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	return records, rows.Err()
}

func (s *MatchStore) Get(ctx context.Context, id string) (*models.MatchRecord, error) {
	query := `SELECT ` + matchColumns + ` FROM weekly_matches WHERE id = $1`

	record, err := scanMatch(s.db.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	return record, err
}

// UpdateOutcome records the user's response. Nil or empty arguments leave
// the stored value unchanged.
func (s *MatchStore) UpdateOutcome(ctx context.Context, id string, responded *bool, quality models.ConnectionQuality) (*models.MatchRecord, error) {
	query := `
		UPDATE weekly_matches SET
			user_responded = COALESCE($2, user_responded),
			connection_quality = COALESCE(NULLIF($3, ''), connection_quality)
		WHERE id = $1
		RETURNING ` + matchColumns

	record, err := scanMatch(s.db.QueryRow(ctx, query, id, responded, string(quality)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrMatchNotFound
	}
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"match_id":           id,
		"user_responded":     record.UserResponded,
		"connection_quality": record.ConnectionQuality,
	}).Info("Match outcome updated")

	return record, nil
}

func scanMatch(row pgx.Row) (*models.MatchRecord, error) {
	var record models.MatchRecord
	var artists []byte
	var quality string

	err := row.Scan(
		&record.ID, &record.UserID, &record.MatchedUserID, &record.WeekID, &record.SimilarityScore,
		&artists, &record.SharedGenres, &record.UserResponded, &quality, &record.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan match: %w", err)
	}

	record.ConnectionQuality = models.ConnectionQuality(quality)
	if len(artists) > 0 {
		if err := json.Unmarshal(artists, &record.SharedArtists); err != nil {
			return nil, fmt.Errorf("failed to unmarshal shared artists: %w", err)
		}
	}
	if record.SharedArtists == nil {
		record.SharedArtists = []models.SharedArtist{}
	}

	return &record, nil
}
