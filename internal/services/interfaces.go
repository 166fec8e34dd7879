package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/temcen/tastematch/internal/taste"
	"github.com/temcen/tastematch/pkg/models"
)

// PgxQuerier is the subset of pgxpool.Pool the stores use, so tests can
// run against pgxmock.
type PgxQuerier interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// LogSource supplies the listening history profiles are built from.
type LogSource interface {
	FetchPublicLogs(ctx context.Context, userID string, limit int) ([]models.LogRecord, error)
	EligibleUserIDs(ctx context.Context) ([]string, error)
}

// MatchRepository persists weekly matches and answers cooldown queries.
type MatchRepository interface {
	Save(ctx context.Context, record models.MatchRecord) error
	RecentPartners(ctx context.Context, userID string, since time.Time, excludeWeekID string) (taste.UserSet, error)
}

// MatchRecorder mirrors matches into a secondary store.
type MatchRecorder interface {
	RecordMatch(ctx context.Context, record models.MatchRecord) error
}

// MatchNotifier tells a user about a new match.
type MatchNotifier interface {
	PublishMatch(ctx context.Context, record models.MatchRecord) error
}

// ProfileProvider is what the HTTP layer and the round need from
// ProfileService.
type ProfileProvider interface {
	Profile(ctx context.Context, userID string, now time.Time) (*models.TasteProfile, error)
	LoadProfiles(ctx context.Context, userIDs []string, now time.Time) (map[string]*models.TasteProfile, error)
	Invalidate(ctx context.Context, userID string)
	ClearCache(ctx context.Context) error
}

// RoundTracking records round progress for later inspection.
type RoundTracking interface {
	Create(ctx context.Context, roundID, weekID string) (*RoundProgress, error)
	Get(ctx context.Context, roundID string) (*RoundProgress, error)
	UpdateProgress(ctx context.Context, roundID string, total, processed, failed int) error
	Complete(ctx context.Context, roundID string, summary *RoundSummary) error
	Fail(ctx context.Context, roundID string, cause error) error
}
