package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/temcen/tastematch/internal/config"
	"github.com/temcen/tastematch/internal/taste"
	"github.com/temcen/tastematch/pkg/models"
)

// RoundSummary reports one weekly matching round.
type RoundSummary struct {
	RoundID         string    `json:"round_id"`
	WeekID          string    `json:"week_id"`
	StartedAt       time.Time `json:"started_at"`
	UsersConsidered int       `json:"users_considered"`
	UsersMatched    int       `json:"users_matched"`
	MatchesCreated  int       `json:"matches_created"`
	Failures        int       `json:"failures"`
	DurationMS      int64     `json:"duration_ms"`
}

// RoundDependencies wires a MatchingRound. Graph, Notifier and Tracker are
// optional.
type RoundDependencies struct {
	Logs     LogSource
	Profiles ProfileProvider
	Matches  MatchRepository
	Graph    MatchRecorder
	Notifier MatchNotifier
	Tracker  RoundTracking
	Selector *taste.Selector
}

// MatchingRound runs the weekly pairing over every eligible user.
type MatchingRound struct {
	deps    RoundDependencies
	config  *config.MatchingConfig
	metrics *MatchingMetrics
	logger  *logrus.Logger
	now     func() time.Time
}

func NewMatchingRound(deps RoundDependencies, cfg *config.MatchingConfig, metrics *MatchingMetrics, logger *logrus.Logger) (*MatchingRound, error) {
	if deps.Logs == nil || deps.Profiles == nil || deps.Matches == nil {
		return nil, fmt.Errorf("matching round requires logs, profiles and matches")
	}
	if err := taste.ValidateSelection(cfg.MinimumScore, cfg.Limit); err != nil {
		return nil, err
	}
	if deps.Selector == nil {
		engine, err := NewEngine(cfg)
		if err != nil {
			return nil, err
		}
		deps.Selector = taste.NewSelector(engine)
	}

	return &MatchingRound{
		deps:    deps,
		config:  cfg,
		metrics: metrics,
		logger:  logger,
		now:     time.Now,
	}, nil
}

// Run executes a round as of now under a fresh round ID.
func (r *MatchingRound) Run(ctx context.Context, now time.Time) (*RoundSummary, error) {
	return r.run(ctx, uuid.New().String(), now)
}

// Start launches a round in the background and returns its ID at once.
// Progress is readable through the tracker.
func (r *MatchingRound) Start(ctx context.Context) (string, error) {
	now := r.now()
	roundID := uuid.New().String()

	if r.deps.Tracker != nil {
		if _, err := r.deps.Tracker.Create(ctx, roundID, models.WeekID(now)); err != nil {
			return "", fmt.Errorf("failed to track round: %w", err)
		}
	}

	go func() {
		if _, err := r.run(context.WithoutCancel(ctx), roundID, now); err != nil {
			r.logger.WithError(err).WithField("round_id", roundID).Error("Background matching round failed")
		}
	}()

	return roundID, nil
}

func (r *MatchingRound) run(ctx context.Context, roundID string, now time.Time) (*RoundSummary, error) {
	if r.config.RoundTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.config.RoundTimeout)
		defer cancel()
	}

	started := time.Now()
	summary := &RoundSummary{
		RoundID:   roundID,
		WeekID:    models.WeekID(now),
		StartedAt: now,
	}
	log := r.logger.WithFields(logrus.Fields{
		"round_id": roundID,
		"week_id":  summary.WeekID,
	})
	log.Info("Matching round started")

	if err := r.execute(ctx, summary, now, log); err != nil {
		r.recordOutcome("failed", started)
		if r.deps.Tracker != nil {
			if terr := r.deps.Tracker.Fail(context.WithoutCancel(ctx), roundID, err); terr != nil {
				log.WithError(terr).Warn("Failed to record round failure")
			}
		}
		log.WithError(err).Error("Matching round aborted")
		return nil, err
	}

	summary.DurationMS = time.Since(started).Milliseconds()
	r.recordOutcome("completed", started)
	if r.deps.Tracker != nil {
		if err := r.deps.Tracker.Complete(ctx, roundID, summary); err != nil {
			log.WithError(err).Warn("Failed to record round completion")
		}
	}

	log.WithFields(logrus.Fields{
		"users_considered": summary.UsersConsidered,
		"users_matched":    summary.UsersMatched,
		"matches_created":  summary.MatchesCreated,
		"failures":         summary.Failures,
		"duration_ms":      summary.DurationMS,
	}).Info("Matching round completed")

	return summary, nil
}

func (r *MatchingRound) execute(ctx context.Context, summary *RoundSummary, now time.Time, log *logrus.Entry) error {
	ids, err := r.deps.Logs.EligibleUserIDs(ctx)
	if err != nil {
		return fmt.Errorf("failed to list eligible users: %w", err)
	}
	sort.Strings(ids)

	// Profiles are cached for one pass only; entries left by previews or an
	// earlier round were built against a different now.
	if err := r.deps.Profiles.ClearCache(ctx); err != nil {
		log.WithError(err).Warn("Failed to clear profile cache before round")
	}

	profiles, err := r.deps.Profiles.LoadProfiles(ctx, ids, now)
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	candidates := make([]*models.TasteProfile, 0, len(ids))
	for _, id := range ids {
		if p := profiles[id]; p.Eligible() {
			candidates = append(candidates, p)
		}
	}

	cutoff := models.CooldownCutoff(now, r.config.CooldownWeeks)
	summary.UsersConsidered = len(ids)

	for i, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}

		created, err := r.matchUser(ctx, profiles[id], candidates, cutoff, summary.WeekID, now)
		if err != nil {
			summary.Failures++
			if r.metrics != nil {
				r.metrics.RoundFailures.Inc()
			}
			log.WithError(err).WithField("user_id", id).Warn("Failed to match user")
		}
		if created > 0 {
			summary.UsersMatched++
			summary.MatchesCreated += created
		}

		if r.deps.Tracker != nil {
			done := i + 1 - summary.Failures
			if err := r.deps.Tracker.UpdateProgress(ctx, summary.RoundID, len(ids), done, summary.Failures); err != nil {
				log.WithError(err).Debug("Failed to update round progress")
			}
		}
	}

	return nil
}

// matchUser selects and stores one user's matches, returning how many were
// saved.
func (r *MatchingRound) matchUser(ctx context.Context, profile *models.TasteProfile, candidates []*models.TasteProfile, cutoff time.Time, weekID string, now time.Time) (int, error) {
	if !profile.Eligible() {
		return 0, nil
	}

	history, err := r.deps.Matches.RecentPartners(ctx, profile.UserID, cutoff, weekID)
	if err != nil {
		return 0, fmt.Errorf("failed to load match history: %w", err)
	}

	selected, err := r.deps.Selector.SelectMatches(profile, candidates, history, r.config.MinimumScore, r.config.Limit)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, m := range selected {
		record := models.NewMatchRecord(profile.UserID, m.Result, weekID, now)
		if err := r.deps.Matches.Save(ctx, record); err != nil {
			return created, err
		}
		created++

		if r.metrics != nil {
			r.metrics.MatchesCreated.Inc()
			r.metrics.MatchScores.Observe(record.SimilarityScore)
		}

		if r.deps.Graph != nil {
			if err := r.deps.Graph.RecordMatch(ctx, record); err != nil {
				r.logger.WithError(err).WithField("match_id", record.ID).Warn("Failed to mirror match to graph")
			}
		}
		if r.deps.Notifier != nil {
			if err := r.deps.Notifier.PublishMatch(ctx, record); err != nil {
				r.logger.WithError(err).WithField("match_id", record.ID).Warn("Failed to publish match notification")
			}
		}
	}

	return created, nil
}

func (r *MatchingRound) recordOutcome(status string, started time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.RoundsTotal.WithLabelValues(status).Inc()
	r.metrics.RoundDuration.Observe(time.Since(started).Seconds())
}
