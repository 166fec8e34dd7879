package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avast/retry-go"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/temcen/tastematch/internal/config"
	"github.com/temcen/tastematch/pkg/models"
)

// ListingStore reads and writes listening_logs.
type ListingStore struct {
	db      PgxQuerier
	limiter *rate.Limiter
	retries uint
	delay   time.Duration
	logger  *logrus.Logger
}

func NewListingStore(db PgxQuerier, cfg *config.MatchingConfig, logger *logrus.Logger) *ListingStore {
	limit := rate.Inf
	if cfg.FetchRate > 0 {
		limit = rate.Limit(cfg.FetchRate)
	}
	retries := cfg.FetchRetries
	if retries == 0 {
		retries = 1
	}

	return &ListingStore{
		db:      db,
		limiter: rate.NewLimiter(limit, 1),
		retries: retries,
		delay:   100 * time.Millisecond,
		logger:  logger,
	}
}

// FetchPublicLogs returns up to limit public records for userID, newest
// first. Transient failures are retried; context errors are not.
func (s *ListingStore) FetchPublicLogs(ctx context.Context, userID string, limit int) ([]models.LogRecord, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("waiting for fetch slot: %w", err)
	}

	var logs []models.LogRecord
	err := retry.Do(
		func() error {
			var err error
			logs, err = s.queryPublicLogs(ctx, userID, limit)
			return err
		},
		retry.Context(ctx),
		retry.Attempts(s.retries),
		retry.Delay(s.delay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
		}),
		retry.OnRetry(func(n uint, err error) {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"user_id": userID,
				"attempt": n + 1,
			}).Warn("Retrying listening log fetch")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("fetching logs for %s: %w", userID, err)
	}

	return logs, nil
}

func (s *ListingStore) queryPublicLogs(ctx context.Context, userID string, limit int) ([]models.LogRecord, error) {
	query := `
		SELECT user_id, item_id, COALESCE(universal_track_id, ''), title, artist_name,
			   COALESCE(primary_genre, ''), COALESCE(additional_genres, '{}'),
			   rating, logged_at, is_public
		FROM listening_logs
		WHERE user_id = $1 AND is_public = TRUE
		ORDER BY logged_at DESC
		LIMIT $2
	`

	rows, err := s.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query listening logs: %w", err)
	}
	defer rows.Close()

	var logs []models.LogRecord
	for rows.Next() {
		var r models.LogRecord
		if err := rows.Scan(
			&r.UserID, &r.ItemID, &r.UniversalTrackID, &r.Title, &r.ArtistName,
			&r.PrimaryGenre, &r.AdditionalGenres, &r.Rating, &r.LoggedAt, &r.IsPublic,
		); err != nil {
			return nil, fmt.Errorf("failed to scan listening log: %w", err)
		}
		logs = append(logs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read listening logs: %w", err)
	}

	return logs, nil
}

// EligibleUserIDs lists users with at least one public record, ascending.
func (s *ListingStore) EligibleUserIDs(ctx context.Context) ([]string, error) {
	query := `
		SELECT DISTINCT user_id
		FROM listening_logs
		WHERE is_public = TRUE
		ORDER BY user_id
	`

	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible users: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan user id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// ImportLogs stores records for userID in one transaction and returns how
// many were new. Re-imported records (same item and timestamp) are skipped.
func (s *ListingStore) ImportLogs(ctx context.Context, userID string, logs []models.LogRecord) (int, error) {
	query := `
		INSERT INTO listening_logs (
			user_id, item_id, universal_track_id, title, artist_name,
			primary_genre, additional_genres, rating, logged_at, is_public
		) VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), $7, $8, $9, $10)
		ON CONFLICT (user_id, item_id, logged_at) DO NOTHING
	`

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}

	imported := 0
	for _, r := range logs {
		genres := r.AdditionalGenres
		if genres == nil {
			genres = []string{}
		}
		tag, err := tx.Exec(ctx, query,
			userID, r.ItemID, r.UniversalTrackID, r.Title, r.ArtistName,
			r.PrimaryGenre, genres, r.Rating, r.LoggedAt, r.IsPublic,
		)
		if err != nil {
			_ = tx.Rollback(ctx)
			return 0, fmt.Errorf("failed to insert listening log %s: %w", r.ItemID, err)
		}
		imported += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit listening logs: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"received": len(logs),
		"imported": imported,
	}).Info("Listening logs imported")

	return imported, nil
}
