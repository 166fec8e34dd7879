package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/tastematch/pkg/models"
)

const profileKeyPrefix = "taste_profile:"

// ProfileCache stores built profiles by user ID. Failures are misses.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*models.TasteProfile, bool)
	Set(ctx context.Context, profile *models.TasteProfile)
	Delete(ctx context.Context, userID string)
	Clear(ctx context.Context) error
}

type cachedProfile struct {
	profile  *models.TasteProfile
	storedAt time.Time
}

// MemoryProfileCache is a process-local cache. A ttl <= 0 never expires.
type MemoryProfileCache struct {
	mu      sync.RWMutex
	entries map[string]cachedProfile
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryProfileCache(ttl time.Duration) *MemoryProfileCache {
	return &MemoryProfileCache{
		entries: make(map[string]cachedProfile),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (c *MemoryProfileCache) Get(_ context.Context, userID string) (*models.TasteProfile, bool) {
	c.mu.RLock()
	entry, ok := c.entries[userID]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.ttl > 0 && c.now().Sub(entry.storedAt) >= c.ttl {
		c.mu.Lock()
		// Another writer may have refreshed it meanwhile.
		if current, ok := c.entries[userID]; ok && current.storedAt.Equal(entry.storedAt) {
			delete(c.entries, userID)
		}
		c.mu.Unlock()
		return nil, false
	}
	return entry.profile, true
}

func (c *MemoryProfileCache) Set(_ context.Context, profile *models.TasteProfile) {
	if profile == nil {
		return
	}
	c.mu.Lock()
	c.entries[profile.UserID] = cachedProfile{profile: profile, storedAt: c.now()}
	c.mu.Unlock()
}

func (c *MemoryProfileCache) Delete(_ context.Context, userID string) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.mu.Unlock()
}

func (c *MemoryProfileCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.entries = make(map[string]cachedProfile)
	c.mu.Unlock()
	return nil
}

func (c *MemoryProfileCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// RedisProfileCache shares profiles across processes as JSON under
// taste_profile:<userId>.
type RedisProfileCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
}

func NewRedisProfileCache(client *redis.Client, ttl time.Duration, logger *logrus.Logger) *RedisProfileCache {
	return &RedisProfileCache{client: client, ttl: ttl, logger: logger}
}

func profileKey(userID string) string {
	return profileKeyPrefix + userID
}

func (c *RedisProfileCache) Get(ctx context.Context, userID string) (*models.TasteProfile, bool) {
	data, err := c.client.Get(ctx, profileKey(userID)).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.WithError(err).WithField("user_id", userID).Warn("Failed to read cached profile")
		}
		return nil, false
	}

	var profile models.TasteProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		c.logger.WithError(err).WithField("user_id", userID).Warn("Failed to decode cached profile")
		return nil, false
	}
	return &profile, true
}

func (c *RedisProfileCache) Set(ctx context.Context, profile *models.TasteProfile) {
	if profile == nil {
		return
	}
	data, err := json.Marshal(profile)
	if err != nil {
		c.logger.WithError(err).WithField("user_id", profile.UserID).Warn("Failed to encode profile")
		return
	}
	if err := c.client.Set(ctx, profileKey(profile.UserID), data, c.ttl).Err(); err != nil {
		c.logger.WithError(err).WithField("user_id", profile.UserID).Warn("Failed to cache profile")
	}
}

func (c *RedisProfileCache) Delete(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, profileKey(userID)).Err(); err != nil {
		c.logger.WithError(err).WithField("user_id", userID).Warn("Failed to delete cached profile")
	}
}

// Clear removes only this cache's keys.
func (c *RedisProfileCache) Clear(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, profileKeyPrefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := c.client.Del(ctx, batch...).Err(); err != nil {
				return fmt.Errorf("failed to delete cached profiles: %w", err)
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan cached profiles: %w", err)
	}
	if len(batch) > 0 {
		if err := c.client.Del(ctx, batch...).Err(); err != nil {
			return fmt.Errorf("failed to delete cached profiles: %w", err)
		}
	}
	return nil
}
