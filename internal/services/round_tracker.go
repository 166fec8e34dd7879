package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	RoundStatusQueued    = "queued"
	RoundStatusRunning   = "running"
	RoundStatusCompleted = "completed"
	RoundStatusFailed    = "failed"
)

var ErrRoundNotFound = errors.New("round not found")

// RoundProgress is the tracked state of one matching round.
type RoundProgress struct {
	RoundID        string        `json:"round_id"`
	WeekID         string        `json:"week_id"`
	Status         string        `json:"status"`
	Progress       int           `json:"progress"`
	TotalUsers     int           `json:"total_users"`
	ProcessedUsers int           `json:"processed_users"`
	FailedUsers    int           `json:"failed_users"`
	ErrorMessage   *string       `json:"error_message,omitempty"`
	Summary        *RoundSummary `json:"summary,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// RoundTracker keeps round progress in redis under round:<id>. Finished
// rounds expire after a day.
type RoundTracker struct {
	client *redis.Client
	logger *logrus.Logger
	now    func() time.Time
}

func NewRoundTracker(client *redis.Client, logger *logrus.Logger) *RoundTracker {
	return &RoundTracker{client: client, logger: logger, now: time.Now}
}

func roundKey(roundID string) string {
	return fmt.Sprintf("round:%s", roundID)
}

func (t *RoundTracker) Create(ctx context.Context, roundID, weekID string) (*RoundProgress, error) {
	now := t.now()
	round := &RoundProgress{
		RoundID:   roundID,
		WeekID:    weekID,
		Status:    RoundStatusQueued,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := t.store(ctx, round); err != nil {
		return nil, err
	}

	t.logger.WithFields(logrus.Fields{
		"round_id": roundID,
		"week_id":  weekID,
	}).Info("Round created")

	return round, nil
}

func (t *RoundTracker) Get(ctx context.Context, roundID string) (*RoundProgress, error) {
	data, err := t.client.Get(ctx, roundKey(roundID)).Bytes()
	if err == redis.Nil {
		return nil, ErrRoundNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get round: %w", err)
	}

	var round RoundProgress
	if err := json.Unmarshal(data, &round); err != nil {
		return nil, fmt.Errorf("failed to unmarshal round: %w", err)
	}
	return &round, nil
}

// UpdateProgress records processed and failed counts out of total.
func (t *RoundTracker) UpdateProgress(ctx context.Context, roundID string, total, processed, failed int) error {
	round, err := t.Get(ctx, roundID)
	if err != nil {
		return err
	}

	round.Status = RoundStatusRunning
	round.TotalUsers = total
	round.ProcessedUsers = processed
	round.FailedUsers = failed
	round.Progress = progressPercent(total, processed+failed)
	round.UpdatedAt = t.now()

	return t.store(ctx, round)
}

func (t *RoundTracker) Complete(ctx context.Context, roundID string, summary *RoundSummary) error {
	round, err := t.Get(ctx, roundID)
	if err != nil {
		return err
	}

	round.Status = RoundStatusCompleted
	round.Summary = summary
	round.Progress = 100
	if summary != nil {
		round.TotalUsers = summary.UsersConsidered
		round.ProcessedUsers = summary.UsersConsidered - summary.Failures
		round.FailedUsers = summary.Failures
	}
	round.UpdatedAt = t.now()

	return t.store(ctx, round)
}

func (t *RoundTracker) Fail(ctx context.Context, roundID string, cause error) error {
	round, err := t.Get(ctx, roundID)
	if err != nil {
		return err
	}

	message := cause.Error()
	round.Status = RoundStatusFailed
	round.ErrorMessage = &message
	round.UpdatedAt = t.now()

	return t.store(ctx, round)
}

func (t *RoundTracker) store(ctx context.Context, round *RoundProgress) error {
	data, err := json.Marshal(round)
	if err != nil {
		return fmt.Errorf("failed to marshal round: %w", err)
	}

	ttl := time.Duration(0)
	if round.Status == RoundStatusCompleted || round.Status == RoundStatusFailed {
		ttl = 24 * time.Hour
	}

	if err := t.client.Set(ctx, roundKey(round.RoundID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store round: %w", err)
	}
	return nil
}

func progressPercent(total, done int) int {
	if total <= 0 {
		return 0
	}
	if done >= total {
		return 100
	}
	return int(float64(done) / float64(total) * 100)
}
