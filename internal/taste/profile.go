package taste

import (
	"math"
	"sort"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/temcen/tastematch/pkg/models"
)

// ProfileBuilder turns a user's public log records into a TasteProfile.
type ProfileBuilder struct {
	cfg BuilderConfig
}

func NewProfileBuilder(cfg BuilderConfig) (*ProfileBuilder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &ProfileBuilder{cfg: cfg}, nil
}

// BuildProfile builds with the default configuration.
func BuildProfile(userID string, logs []models.LogRecord, now time.Time) *models.TasteProfile {
	b := &ProfileBuilder{cfg: DefaultBuilderConfig()}
	return b.Build(userID, logs, now)
}

// Build is deterministic for a given input and now. An empty (or
// all-private) input yields a profile with TotalLogs == 0, which callers
// treat as ineligible.
func (b *ProfileBuilder) Build(userID string, logs []models.LogRecord, now time.Time) *models.TasteProfile {
	profile := &models.TasteProfile{
		UserID:             userID,
		ArtistFrequency:    make(map[string]int),
		GenreFrequency:     make(map[string]int),
		RatingDistribution: make(map[int]int),
		RecentActivity:     []models.LogRecord{},
		TopArtists:         []string{},
		TopGenres:          []string{},
		BuiltAt:            now,
	}

	artists := newCounter()
	genres := newCounter()
	cutoff := now.Add(-b.cfg.RecentWindow)
	ratingSum, ratingCount := 0, 0

	for _, record := range logs {
		if !record.IsPublic {
			continue
		}
		profile.Logs = append(profile.Logs, record)

		artists.add(strings.TrimSpace(record.ArtistName))
		for _, genre := range recordGenres(record) {
			genres.add(genre)
		}

		if record.HasRating() {
			ratingSum += *record.Rating
			ratingCount++
			profile.RatingDistribution[*record.Rating]++
		}

		if !record.LoggedAt.Before(cutoff) && !record.LoggedAt.After(now) {
			profile.RecentActivity = append(profile.RecentActivity, record)
		}
	}

	profile.TotalLogs = len(profile.Logs)
	if profile.TotalLogs == 0 {
		return profile
	}

	profile.ArtistFrequency = artists.counts
	profile.GenreFrequency = genres.counts
	profile.TopArtists = artists.top(b.cfg.TopArtists)
	profile.TopGenres = genres.top(b.cfg.TopGenres)
	profile.DiversityIndex = diversityIndex(artists)
	if ratingCount > 0 {
		profile.AverageRating = float64(ratingSum) / float64(ratingCount)
	}

	return profile
}

// recordGenres returns the record's primary and additional genres, each
// once.
func recordGenres(record models.LogRecord) []string {
	seen := make(map[string]struct{}, 1+len(record.AdditionalGenres))
	genres := make([]string, 0, 1+len(record.AdditionalGenres))
	for _, g := range append([]string{record.PrimaryGenre}, record.AdditionalGenres...) {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if _, dup := seen[g]; dup {
			continue
		}
		seen[g] = struct{}{}
		genres = append(genres, g)
	}
	return genres
}

// counter is a frequency table that remembers first-seen order so ties
// rank deterministically.
type counter struct {
	counts map[string]int
	order  []string
}

func newCounter() *counter {
	return &counter{counts: make(map[string]int)}
}

func (c *counter) add(key string) {
	if key == "" {
		return
	}
	if _, ok := c.counts[key]; !ok {
		c.order = append(c.order, key)
	}
	c.counts[key]++
}

func (c *counter) top(n int) []string {
	keys := make([]string, len(c.order))
	copy(keys, c.order)
	sort.SliceStable(keys, func(i, j int) bool {
		return c.counts[keys[i]] > c.counts[keys[j]]
	})
	if len(keys) > n {
		keys = keys[:n]
	}
	return keys
}

// diversityIndex is Shannon entropy over artist proportions normalised by
// its maximum, log(distinct). The base cancels out, so natural log is fine.
func diversityIndex(artists *counter) float64 {
	distinct := len(artists.order)
	if distinct < 2 {
		return 0
	}

	total := 0
	for _, name := range artists.order {
		total += artists.counts[name]
	}
	if total == 0 {
		return 0
	}

	p := make([]float64, distinct)
	for i, name := range artists.order {
		p[i] = float64(artists.counts[name]) / float64(total)
	}

	return clamp01(stat.Entropy(p) / math.Log(float64(distinct)))
}
