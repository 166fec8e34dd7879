package taste

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrInvalidConfig is returned for caller-supplied settings outside their
// allowed range. Values are rejected, never clamped.
var ErrInvalidConfig = errors.New("invalid matching configuration")

type Weights struct {
	Artist    float64
	Genre     float64
	Rating    float64
	Discovery float64
}

type EngineConfig struct {
	Weights            Weights
	ArtistBoost        float64
	GenreBoost         float64
	FallbackConfidence float64
	MinCommonRatings   int
}

func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Weights: Weights{
			Artist:    0.4,
			Genre:     0.3,
			Rating:    0.2,
			Discovery: 0.1,
		},
		ArtistBoost:        0.1,
		GenreBoost:         0.15,
		FallbackConfidence: 0.7,
		MinCommonRatings:   3,
	}
}

// Validate keeps the overall score inside [0,1]: weights must be
// non-negative and sum to 1.
func (c EngineConfig) Validate() error {
	w := c.Weights
	for name, v := range map[string]float64{
		"weights.artist":      w.Artist,
		"weights.genre":       w.Genre,
		"weights.rating":      w.Rating,
		"weights.discovery":   w.Discovery,
		"artist_boost":        c.ArtistBoost,
		"genre_boost":         c.GenreBoost,
		"fallback_confidence": c.FallbackConfidence,
	} {
		if math.IsNaN(v) || v < 0 {
			return fmt.Errorf("%w: %s must be >= 0, got %v", ErrInvalidConfig, name, v)
		}
	}
	if sum := w.Artist + w.Genre + w.Rating + w.Discovery; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("%w: weights must sum to 1, got %v", ErrInvalidConfig, sum)
	}
	if c.FallbackConfidence > 1 {
		return fmt.Errorf("%w: fallback_confidence must be <= 1, got %v", ErrInvalidConfig, c.FallbackConfidence)
	}
	if c.MinCommonRatings < 2 {
		return fmt.Errorf("%w: min_common_ratings must be >= 2, got %d", ErrInvalidConfig, c.MinCommonRatings)
	}
	return nil
}

type BuilderConfig struct {
	TopArtists   int
	TopGenres    int
	RecentWindow time.Duration
}

func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		TopArtists:   10,
		TopGenres:    5,
		RecentWindow: 30 * 24 * time.Hour,
	}
}

func (c BuilderConfig) Validate() error {
	if c.TopArtists <= 0 {
		return fmt.Errorf("%w: top_artists must be > 0, got %d", ErrInvalidConfig, c.TopArtists)
	}
	if c.TopGenres <= 0 {
		return fmt.Errorf("%w: top_genres must be > 0, got %d", ErrInvalidConfig, c.TopGenres)
	}
	if c.RecentWindow <= 0 {
		return fmt.Errorf("%w: recent_window must be > 0, got %s", ErrInvalidConfig, c.RecentWindow)
	}
	return nil
}

// ValidateSelection checks the per-call selection parameters.
func ValidateSelection(minimumScore float64, limit int) error {
	if math.IsNaN(minimumScore) || minimumScore < 0 || minimumScore > 1 {
		return fmt.Errorf("%w: minimum score must be within [0,1], got %v", ErrInvalidConfig, minimumScore)
	}
	if limit <= 0 {
		return fmt.Errorf("%w: limit must be > 0, got %d", ErrInvalidConfig, limit)
	}
	return nil
}
