package handlers

import (
	"context"
	"time"

	"github.com/temcen/tastematch/internal/services"
	"github.com/temcen/tastematch/internal/taste"
	"github.com/temcen/tastematch/pkg/models"
)

type HealthChecker interface {
	CheckHealth(ctx context.Context) *services.HealthStatus
}

type ProfileReader interface {
	Profile(ctx context.Context, userID string, now time.Time) (*models.TasteProfile, error)
	LoadProfiles(ctx context.Context, userIDs []string, now time.Time) (map[string]*models.TasteProfile, error)
}

type CandidateSource interface {
	EligibleUserIDs(ctx context.Context) ([]string, error)
}

type MatchHistory interface {
	RecentPartners(ctx context.Context, userID string, since time.Time, excludeWeekID string) (taste.UserSet, error)
	ListForUser(ctx context.Context, userID, weekID string) ([]models.MatchRecord, error)
	Get(ctx context.Context, id string) (*models.MatchRecord, error)
	UpdateOutcome(ctx context.Context, id string, responded *bool, quality models.ConnectionQuality) (*models.MatchRecord, error)
}

type LogImporter interface {
	ImportLogs(ctx context.Context, userID string, logs []models.LogRecord) (int, error)
}

type ProfileInvalidator interface {
	Invalidate(ctx context.Context, userID string)
	ClearCache(ctx context.Context) error
}

type RoundStarter interface {
	Start(ctx context.Context) (string, error)
}

type RoundReader interface {
	Get(ctx context.Context, roundID string) (*services.RoundProgress, error)
}
