package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/temcen/tastematch/internal/config"
	"github.com/temcen/tastematch/internal/taste"
	"github.com/temcen/tastematch/pkg/models"
)

// ProfileService builds taste profiles on demand, backed by a cache.
type ProfileService struct {
	logs    LogSource
	cache   ProfileCache
	builder *taste.ProfileBuilder
	config  *config.MatchingConfig
	metrics *MatchingMetrics
	logger  *logrus.Logger
}

func NewProfileService(logs LogSource, cache ProfileCache, cfg *config.MatchingConfig, metrics *MatchingMetrics, logger *logrus.Logger) (*ProfileService, error) {
	builder, err := taste.NewProfileBuilder(builderConfig(cfg))
	if err != nil {
		return nil, err
	}
	if cache == nil {
		cache = NewMemoryProfileCache(cfg.ProfileCacheTTL)
	}

	return &ProfileService{
		logs:    logs,
		cache:   cache,
		builder: builder,
		config:  cfg,
		metrics: metrics,
		logger:  logger,
	}, nil
}

// Profile returns userID's profile as of now. A user with no public logs
// gets an ineligible profile, not an error.
func (s *ProfileService) Profile(ctx context.Context, userID string, now time.Time) (*models.TasteProfile, error) {
	if profile, ok := s.cache.Get(ctx, userID); ok {
		s.metrics.cacheHit()
		return profile, nil
	}
	s.metrics.cacheMiss()

	logs, err := s.logs.FetchPublicLogs(ctx, userID, s.config.ProfileLogLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to load logs: %w", err)
	}

	profile := s.builder.Build(userID, logs, now)
	s.metrics.profileBuilt()
	s.cache.Set(ctx, profile)

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"total_logs": profile.TotalLogs,
	}).Debug("Taste profile built")

	return profile, nil
}

// LoadProfiles builds profiles for userIDs with bounded concurrency. The
// first failure cancels the rest.
func (s *ProfileService) LoadProfiles(ctx context.Context, userIDs []string, now time.Time) (map[string]*models.TasteProfile, error) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.config.Concurrency)

	var mu sync.Mutex
	profiles := make(map[string]*models.TasteProfile, len(userIDs))

	for _, id := range userIDs {
		id := id
		g.Go(func() error {
			profile, err := s.Profile(gctx, id, now)
			if err != nil {
				return fmt.Errorf("profile %s: %w", id, err)
			}
			mu.Lock()
			profiles[id] = profile
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return profiles, nil
}

func (s *ProfileService) Invalidate(ctx context.Context, userID string) {
	s.cache.Delete(ctx, userID)
}

func (s *ProfileService) ClearCache(ctx context.Context) error {
	return s.cache.Clear(ctx)
}
