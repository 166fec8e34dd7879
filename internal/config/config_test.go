package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cfg, err := Load()
	require.NoError(t, err)

	m := cfg.Matching
	assert.Equal(t, 0.4, m.Weights.Artist)
	assert.Equal(t, 0.3, m.Weights.Genre)
	assert.Equal(t, 0.2, m.Weights.Rating)
	assert.Equal(t, 0.1, m.Weights.Discovery)
	assert.Equal(t, 0.6, m.MinimumScore)
	assert.Equal(t, 5, m.Limit)
	assert.Equal(t, 8, m.CooldownWeeks)
	assert.Equal(t, 3, m.MinCommonRatings)
	assert.Equal(t, 720*time.Hour, m.RecentWindow)
	assert.Equal(t, 30*time.Minute, m.RoundTimeout)
	assert.Equal(t, "memory", m.ProfileCache)
	assert.Equal(t, uint(3), m.FetchRetries)
	assert.Equal(t, "weekly-matches", cfg.Kafka.Topics.WeeklyMatches)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Auth.RateLimit.Enabled)
	assert.Equal(t, 60, cfg.Auth.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.Auth.RateLimit.Window)
}

func TestLoad_EnvOverride(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("MATCHING_LIMIT", "3")
	t.Setenv("MATCHING_PROFILE_CACHE", "redis")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Matching.Limit)
	assert.Equal(t, "redis", cfg.Matching.ProfileCache)
}

func validConfig() *Config {
	return &Config{Matching: MatchingConfig{
		Weights:            WeightsConfig{Artist: 0.4, Genre: 0.3, Rating: 0.2, Discovery: 0.1},
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
		Concurrency:        4,
		ProfileCache:       "memory",
	}}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "weights do not sum to one", mutate: func(c *Config) { c.Matching.Weights.Artist = 0.5 }, wantErr: true},
		{name: "negative boost", mutate: func(c *Config) { c.Matching.ArtistBoost = -0.1 }, wantErr: true},
		{name: "minimum score above one", mutate: func(c *Config) { c.Matching.MinimumScore = 1.5 }, wantErr: true},
		{name: "zero limit", mutate: func(c *Config) { c.Matching.Limit = 0 }, wantErr: true},
		{name: "unknown cache", mutate: func(c *Config) { c.Matching.ProfileCache = "disk" }, wantErr: true},
		{name: "zero concurrency", mutate: func(c *Config) { c.Matching.Concurrency = 0 }, wantErr: true},
		{name: "rate limit without window", mutate: func(c *Config) {
			c.Auth.RateLimit = RateLimitConfig{Enabled: true, Requests: 10}
		}, wantErr: true},
		{name: "disabled rate limit ignores values", mutate: func(c *Config) { c.Auth.RateLimit = RateLimitConfig{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
