package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/tastematch/pkg/models"
)

func TestProfileService_Profile(t *testing.T) {
	source := newFakeLogSource(map[string][]models.LogRecord{
		"alice": {
			logRecord("alice", "i1", "Radiohead", "rock", 5),
			logRecord("alice", "i2", "Radiohead", "rock", 4),
			logRecord("alice", "i3", "Portishead", "trip-hop", 0),
		},
	})
	metrics := NewMatchingMetrics(testLogger())

	service, err := NewProfileService(source, nil, testMatchingConfig(), metrics, testLogger())
	require.NoError(t, err)

	profile, err := service.Profile(context.Background(), "alice", testNow)
	require.NoError(t, err)
	assert.Equal(t, 3, profile.TotalLogs)
	assert.Equal(t, []string{"Radiohead", "Portishead"}, profile.TopArtists)
	assert.InDelta(t, 4.5, profile.AverageRating, 1e-9)

	again, err := service.Profile(context.Background(), "alice", testNow)
	require.NoError(t, err)
	assert.Same(t, profile, again)
	assert.Equal(t, 1, source.fetchCount("alice"))

	service.Invalidate(context.Background(), "alice")
	_, err = service.Profile(context.Background(), "alice", testNow)
	require.NoError(t, err)
	assert.Equal(t, 2, source.fetchCount("alice"))
}

func TestProfileService_UserWithoutLogs(t *testing.T) {
	source := newFakeLogSource(map[string][]models.LogRecord{})
	service, err := NewProfileService(source, nil, testMatchingConfig(), nil, testLogger())
	require.NoError(t, err)

	profile, err := service.Profile(context.Background(), "ghost", testNow)
	require.NoError(t, err)
	assert.False(t, profile.Eligible())
}

func TestProfileService_LoadProfiles(t *testing.T) {
	source := newFakeLogSource(map[string][]models.LogRecord{
		"alice": {logRecord("alice", "i1", "Radiohead", "rock", 5)},
		"bob":   {logRecord("bob", "i2", "Bjork", "electronic", 4)},
		"carol": {logRecord("carol", "i3", "Low", "slowcore", 3)},
	})
	service, err := NewProfileService(source, nil, testMatchingConfig(), nil, testLogger())
	require.NoError(t, err)

	profiles, err := service.LoadProfiles(context.Background(), []string{"alice", "bob", "carol"}, testNow)
	require.NoError(t, err)
	require.Len(t, profiles, 3)
	assert.Equal(t, "bob", profiles["bob"].UserID)

	source.failFor = "dave"
	_, err = service.LoadProfiles(context.Background(), []string{"alice", "dave"}, testNow)
	assert.ErrorContains(t, err, "dave")
}

func TestProfileService_RejectsInvalidBuilderConfig(t *testing.T) {
	cfg := testMatchingConfig()
	cfg.TopArtists = 0

	_, err := NewProfileService(newFakeLogSource(nil), nil, cfg, nil, testLogger())
	assert.Error(t, err)
}
