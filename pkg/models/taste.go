package models

import "time"

// TasteProfile summarises a user's public listening history.
type TasteProfile struct {
	UserID             string         `json:"user_id"`
	ArtistFrequency    map[string]int `json:"artist_frequency"`
	GenreFrequency     map[string]int `json:"genre_frequency"`
	AverageRating      float64        `json:"average_rating"`
	RatingDistribution map[int]int    `json:"rating_distribution"`
	TotalLogs          int            `json:"total_logs"`
	RecentActivity     []LogRecord    `json:"recent_activity"`
	TopArtists         []string       `json:"top_artists"`
	TopGenres          []string       `json:"top_genres"`
	DiversityIndex     float64        `json:"diversity_index"`
	// Logs are the records the profile was built from. Rating correlation
	// and shared-song counting need the full set, not just the summaries.
	Logs    []LogRecord `json:"logs,omitempty"`
	BuiltAt time.Time   `json:"built_at"`
}

// Eligible reports whether the profile carries any taste data.
func (p *TasteProfile) Eligible() bool {
	return p != nil && p.TotalLogs > 0
}

type SharedArtist struct {
	ArtistName      string   `json:"artist_name"`
	RatingA         *float64 `json:"rating_a,omitempty"`
	RatingB         *float64 `json:"rating_b,omitempty"`
	CommonSongCount int      `json:"common_song_count"`
}

type SimilarityResult struct {
	UserAID            string         `json:"user_a_id"`
	UserBID            string         `json:"user_b_id"`
	OverallScore       float64        `json:"overall_score"`
	ArtistSimilarity   float64        `json:"artist_similarity"`
	GenreSimilarity    float64        `json:"genre_similarity"`
	RatingCorrelation  float64        `json:"rating_correlation"`
	DiscoveryPotential float64        `json:"discovery_potential"`
	SharedArtists      []SharedArtist `json:"shared_artists"`
	SharedGenres       []string       `json:"shared_genres"`
}
