package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/tastematch/internal/config"
)

type RateLimitInfo struct {
	Limit     int
	Remaining int
	ResetTime int64
}

// RateLimitService is a redis sliding-window limiter keyed by user and
// action. It fails open when redis is unavailable.
type RateLimitService struct {
	client *redis.Client
	limit  int
	window time.Duration
	logger *logrus.Logger
	now    func() time.Time
}

func NewRateLimitService(client *redis.Client, cfg *config.RateLimitConfig, logger *logrus.Logger) *RateLimitService {
	return &RateLimitService{
		client: client,
		limit:  cfg.Requests,
		window: cfg.Window,
		logger: logger,
		now:    time.Now,
	}
}

func rateLimitKey(userID, action string) string {
	return fmt.Sprintf("rate_limit:%s:%s", action, userID)
}

// Allow records one call and reports whether it fits in the window.
func (s *RateLimitService) Allow(ctx context.Context, userID, action string) (bool, *RateLimitInfo) {
	now := s.now()
	key := rateLimitKey(userID, action)
	windowStart := now.Add(-s.window)
	info := &RateLimitInfo{Limit: s.limit, ResetTime: now.Add(s.window).Unix()}

	pipe := s.client.Pipeline()
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart.UnixNano(), 10))
	countCmd := pipe.ZCard(ctx, key)
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: strconv.FormatInt(now.UnixNano(), 10),
	})
	pipe.Expire(ctx, key, s.window)

	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.WithError(err).WithField("user_id", userID).Warn("Rate limit check failed, allowing request")
		info.Remaining = s.limit - 1
		return true, info
	}

	count := int(countCmd.Val())
	info.Remaining = s.limit - count - 1
	if info.Remaining < 0 {
		info.Remaining = 0
	}
	return count < s.limit, info
}

// Reset clears a user's window for action.
func (s *RateLimitService) Reset(ctx context.Context, userID, action string) error {
	return s.client.Del(ctx, rateLimitKey(userID, action)).Err()
}
