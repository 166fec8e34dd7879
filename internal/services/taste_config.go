package services

import (
	"github.com/temcen/tastematch/internal/config"
	"github.com/temcen/tastematch/internal/taste"
)

func builderConfig(cfg *config.MatchingConfig) taste.BuilderConfig {
	return taste.BuilderConfig{
		TopArtists:   cfg.TopArtists,
		TopGenres:    cfg.TopGenres,
		RecentWindow: cfg.RecentWindow,
	}
}

func engineConfig(cfg *config.MatchingConfig) taste.EngineConfig {
	return taste.EngineConfig{
		Weights: taste.Weights{
			Artist:    cfg.Weights.Artist,
			Genre:     cfg.Weights.Genre,
			Rating:    cfg.Weights.Rating,
			Discovery: cfg.Weights.Discovery,
		},
		ArtistBoost:        cfg.ArtistBoost,
		GenreBoost:         cfg.GenreBoost,
		FallbackConfidence: cfg.FallbackConfidence,
		MinCommonRatings:   cfg.MinCommonRatings,
	}
}

// NewEngine builds the similarity engine from the matching section.
func NewEngine(cfg *config.MatchingConfig) (*taste.Engine, error) {
	return taste.NewEngine(engineConfig(cfg), taste.DefaultItemMatcher())
}
