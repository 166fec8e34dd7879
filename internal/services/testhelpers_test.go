package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/temcen/tastematch/internal/config"
	"github.com/temcen/tastematch/internal/taste"
	"github.com/temcen/tastematch/pkg/models"
)

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func testMatchingConfig() *config.MatchingConfig {
	return &config.MatchingConfig{
		Weights:            config.WeightsConfig{Artist: 0.4, Genre: 0.3, Rating: 0.2, Discovery: 0.1},
		ArtistBoost:        0.1,
		GenreBoost:         0.15,
		FallbackConfidence: 0.7,
		MinCommonRatings:   3,
		MinimumScore:       0.6,
		Limit:              5,
		CooldownWeeks:      8,
		ProfileLogLimit:    500,
		TopArtists:         10,
		TopGenres:          5,
		RecentWindow:       720 * time.Hour,
		Concurrency:        4,
		RoundTimeout:       time.Minute,
		ProfileCacheTTL:    time.Hour,
		ProfileCache:       "memory",
		FetchRetries:       3,
	}
}

func intPtr(v int) *int { return &v }

func logRecord(user, item, artist, genre string, rating int) models.LogRecord {
	r := models.LogRecord{
		UserID:       user,
		ItemID:       item,
		Title:        "Song " + item,
		ArtistName:   artist,
		PrimaryGenre: genre,
		LoggedAt:     testNow.Add(-48 * time.Hour),
		IsPublic:     true,
	}
	if rating > 0 {
		r.Rating = intPtr(rating)
	}
	return r
}

// fakeLogSource serves canned logs and counts fetches.
type fakeLogSource struct {
	mu      sync.Mutex
	logs    map[string][]models.LogRecord
	fetches map[string]int
	failFor string
}

func newFakeLogSource(logs map[string][]models.LogRecord) *fakeLogSource {
	return &fakeLogSource{logs: logs, fetches: map[string]int{}}
}

func (f *fakeLogSource) FetchPublicLogs(_ context.Context, userID string, limit int) ([]models.LogRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetches[userID]++
	if userID == f.failFor {
		return nil, fmt.Errorf("listing store unavailable")
	}
	logs := f.logs[userID]
	if len(logs) > limit {
		logs = logs[:limit]
	}
	return logs, nil
}

func (f *fakeLogSource) EligibleUserIDs(_ context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.logs))
	for id := range f.logs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (f *fakeLogSource) fetchCount(userID string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fetches[userID]
}

// fakeMatchRepository keeps saved records in memory.
type fakeMatchRepository struct {
	mu        sync.Mutex
	saved     []models.MatchRecord
	history   map[string]taste.UserSet
	failFor   string
	lastWeeks []string
}

func (f *fakeMatchRepository) Save(_ context.Context, record models.MatchRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = append(f.saved, record)
	return nil
}

func (f *fakeMatchRepository) RecentPartners(_ context.Context, userID string, _ time.Time, excludeWeekID string) (taste.UserSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastWeeks = append(f.lastWeeks, excludeWeekID)
	if userID == f.failFor {
		return nil, fmt.Errorf("history unavailable")
	}
	return f.history[userID], nil
}

type fakeNotifier struct {
	mu        sync.Mutex
	published []models.MatchRecord
}

func (f *fakeNotifier) PublishMatch(_ context.Context, record models.MatchRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, record)
	return nil
}

func (f *fakeNotifier) RecordMatch(ctx context.Context, record models.MatchRecord) error {
	return f.PublishMatch(ctx, record)
}

// testRedis returns a client on the local test DB or skips the test.
func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{Addr: "localhost:6379", DB: 1})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}
