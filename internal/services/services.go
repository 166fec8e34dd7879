package services

import (
	"github.com/sirupsen/logrus"

	"github.com/temcen/tastematch/internal/config"
	"github.com/temcen/tastematch/internal/database"
	"github.com/temcen/tastematch/internal/messaging"
	"github.com/temcen/tastematch/internal/taste"
)

type Services struct {
	Auth      *AuthService
	Health    *HealthService
	Metrics   *MatchingMetrics
	Listings  *ListingStore
	Matches   *MatchStore
	Profiles  *ProfileService
	Selector  *taste.Selector
	Tracker   *RoundTracker
	Round     *MatchingRound
	Publisher *messaging.MatchPublisher
	// RateLimit is nil when auth.rate_limit is disabled.
	RateLimit *RateLimitService
}

func New(cfg *config.Config, logger *logrus.Logger, db *database.Database) (*Services, error) {
	metrics := NewMatchingMetrics(logger)

	listings := NewListingStore(db.PG, &cfg.Matching, logger)
	matches := NewMatchStore(db.PG, logger)

	var cache ProfileCache
	if cfg.Matching.ProfileCache == "redis" {
		cache = NewRedisProfileCache(db.Redis, cfg.Matching.ProfileCacheTTL, logger)
	} else {
		cache = NewMemoryProfileCache(cfg.Matching.ProfileCacheTTL)
	}

	profiles, err := NewProfileService(listings, cache, &cfg.Matching, metrics, logger)
	if err != nil {
		return nil, err
	}

	engine, err := NewEngine(&cfg.Matching)
	if err != nil {
		return nil, err
	}
	selector := taste.NewSelector(engine)
	tracker := NewRoundTracker(db.Redis, logger)

	deps := RoundDependencies{
		Logs:     listings,
		Profiles: profiles,
		Matches:  matches,
		Tracker:  tracker,
		Selector: selector,
	}
	if db.Neo4j != nil {
		deps.Graph = NewMatchGraph(db.Neo4j, logger)
	}

	var publisher *messaging.MatchPublisher
	if cfg.Kafka.Enabled {
		publisher = messaging.NewMatchPublisher(cfg, logger)
		deps.Notifier = publisher
	}

	round, err := NewMatchingRound(deps, &cfg.Matching, metrics, logger)
	if err != nil {
		return nil, err
	}

	var rateLimit *RateLimitService
	if cfg.Auth.RateLimit.Enabled {
		rateLimit = NewRateLimitService(db.Redis, &cfg.Auth.RateLimit, logger)
	}

	return &Services{
		Auth:      NewAuthService(&cfg.Auth, logger),
		Health:    NewHealthService(db, logger),
		Metrics:   metrics,
		Listings:  listings,
		Matches:   matches,
		Profiles:  profiles,
		Selector:  selector,
		Tracker:   tracker,
		Round:     round,
		Publisher: publisher,
		RateLimit: rateLimit,
	}, nil
}

func (s *Services) Close() error {
	if s.Publisher != nil {
		return s.Publisher.Close()
	}
	return nil
}
