package taste

import (
	"math"
	"sort"
	"strings"

	"github.com/temcen/tastematch/pkg/models"
)

// Engine scores how alike two taste profiles are.
type Engine struct {
	cfg     EngineConfig
	matcher *ItemMatcher
}

// NewEngine validates cfg. A nil matcher uses DefaultItemMatcher.
func NewEngine(cfg EngineConfig, matcher *ItemMatcher) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if matcher == nil {
		matcher = DefaultItemMatcher()
	}
	return &Engine{cfg: cfg, matcher: matcher}, nil
}

func DefaultEngine() *Engine {
	return &Engine{cfg: DefaultEngineConfig(), matcher: DefaultItemMatcher()}
}

func (e *Engine) Config() EngineConfig {
	return e.cfg
}

// Compare is symmetric in its scores: Compare(a, b) and Compare(b, a) return
// identical sub-scores and overall score. Nil profiles compare as empty.
func (e *Engine) Compare(a, b *models.TasteProfile) models.SimilarityResult {
	a, b = orEmpty(a), orEmpty(b)

	result := models.SimilarityResult{
		UserAID:       a.UserID,
		UserBID:       b.UserID,
		SharedArtists: []models.SharedArtist{},
		SharedGenres:  []string{},
	}

	result.ArtistSimilarity = boostedJaccard(a.TopArtists, b.TopArtists, a.ArtistFrequency, b.ArtistFrequency, a.TotalLogs, b.TotalLogs, e.cfg.ArtistBoost)
	result.GenreSimilarity = boostedJaccard(a.TopGenres, b.TopGenres, a.GenreFrequency, b.GenreFrequency, a.TotalLogs, b.TotalLogs, e.cfg.GenreBoost)
	result.RatingCorrelation = e.ratingCorrelation(a, b)
	result.DiscoveryPotential = discoveryPotential(a.TopArtists, b.TopArtists)

	w := e.cfg.Weights
	result.OverallScore = clamp01(result.ArtistSimilarity*w.Artist +
		result.GenreSimilarity*w.Genre +
		result.RatingCorrelation*w.Rating +
		result.DiscoveryPotential*w.Discovery)

	result.SharedArtists = sharedArtists(a, b)
	result.SharedGenres = sharedGenres(a, b)

	return result
}

func orEmpty(p *models.TasteProfile) *models.TasteProfile {
	if p != nil {
		return p
	}
	return &models.TasteProfile{}
}

// boostedJaccard is |A∩B|/|A∪B| over the top lists plus a per-shared-key
// boost proportional to how often both users logged it. Shared keys are
// summed in sorted order so the float result does not depend on argument
// order.
func boostedJaccard(topA, topB []string, freqA, freqB map[string]int, totalA, totalB int, boost float64) float64 {
	shared := intersect(topA, topB)
	union := len(toSet(topA)) + len(toSet(topB)) - len(shared)
	if union == 0 {
		return 0
	}

	score := float64(len(shared)) / float64(union)

	maxTotal := totalA
	if totalB > maxTotal {
		maxTotal = totalB
	}
	if maxTotal > 0 {
		for _, key := range shared {
			avg := float64(freqA[key]+freqB[key]) / 2
			score += avg / float64(maxTotal) * boost
		}
	}

	return math.Min(score, 1)
}

// ratingCorrelation maps Pearson r over commonly rated items into [0,1].
// With too few common items it falls back to a damped closeness of the two
// average ratings.
func (e *Engine) ratingCorrelation(a, b *models.TasteProfile) float64 {
	pairs := e.matcher.Pair(ratedLogs(a.Logs), ratedLogs(b.Logs))
	if len(pairs) >= e.cfg.MinCommonRatings {
		x := make([]int, len(pairs))
		y := make([]int, len(pairs))
		for i, p := range pairs {
			x[i], y[i] = *p.A.Rating, *p.B.Rating
		}
		r, ok := pearson(x, y)
		if !ok {
			return 0
		}
		return clamp01((r + 1) / 2)
	}

	closeness := math.Max(0, 1-math.Abs(a.AverageRating-b.AverageRating)/4)
	return closeness * e.cfg.FallbackConfidence
}

func ratedLogs(logs []models.LogRecord) []models.LogRecord {
	rated := make([]models.LogRecord, 0, len(logs))
	for _, l := range logs {
		if l.HasRating() {
			rated = append(rated, l)
		}
	}
	return rated
}

// pearson computes r from integer sums so the result is exact up to the
// final division and independent of pair order. ok is false when either
// series has zero variance.
func pearson(x, y []int) (float64, bool) {
	n := int64(len(x))
	if n < 2 {
		return 0, false
	}
	var sx, sy, sxx, syy, sxy int64
	for i := range x {
		xi, yi := int64(x[i]), int64(y[i])
		sx += xi
		sy += yi
		sxx += xi * xi
		syy += yi * yi
		sxy += xi * yi
	}
	cov := n*sxy - sx*sy
	varX := n*sxx - sx*sx
	varY := n*syy - sy*sy
	if varX == 0 || varY == 0 {
		return 0, false
	}
	r := float64(cov) / math.Sqrt(float64(varX)*float64(varY))
	if math.IsNaN(r) {
		return 0, false
	}
	return math.Max(-1, math.Min(1, r)), true
}

// discoveryPotential rewards artists unique to either side while keeping
// some shared ground.
func discoveryPotential(topA, topB []string) float64 {
	setA, setB := toSet(topA), toSet(topB)
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}
	shared := len(intersect(topA, topB))
	unique := (len(setA) - shared) + (len(setB) - shared)

	discoveryRatio := float64(unique) / float64(len(setA)+len(setB))
	larger := len(setA)
	if len(setB) > larger {
		larger = len(setB)
	}
	overlapRatio := float64(shared) / float64(larger)

	return clamp01(discoveryRatio*0.7 + overlapRatio*0.3)
}

type artistStats struct {
	ratingSum   int
	ratingCount int
	titles      map[string]struct{}
}

func (s *artistStats) average() *float64 {
	if s == nil || s.ratingCount == 0 {
		return nil
	}
	avg := float64(s.ratingSum) / float64(s.ratingCount)
	return &avg
}

func collectArtistStats(logs []models.LogRecord) map[string]*artistStats {
	stats := make(map[string]*artistStats)
	for _, l := range logs {
		artist := strings.TrimSpace(l.ArtistName)
		if artist == "" {
			continue
		}
		s, ok := stats[artist]
		if !ok {
			s = &artistStats{titles: make(map[string]struct{})}
			stats[artist] = s
		}
		if l.HasRating() {
			s.ratingSum += *l.Rating
			s.ratingCount++
		}
		if title := foldKey(l.Title); title != "" {
			s.titles[title] = struct{}{}
		}
	}
	return stats
}

// sharedArtists lists artists in both top lists, ordered by common song
// count desc then name asc.
func sharedArtists(a, b *models.TasteProfile) []models.SharedArtist {
	names := intersect(a.TopArtists, b.TopArtists)
	out := make([]models.SharedArtist, 0, len(names))
	if len(names) == 0 {
		return out
	}

	statsA := collectArtistStats(a.Logs)
	statsB := collectArtistStats(b.Logs)
	for _, name := range names {
		sa, sb := statsA[name], statsB[name]
		common := 0
		if sa != nil && sb != nil {
			for title := range sa.titles {
				if _, ok := sb.titles[title]; ok {
					common++
				}
			}
		}
		out = append(out, models.SharedArtist{
			ArtistName:      name,
			RatingA:         sa.average(),
			RatingB:         sb.average(),
			CommonSongCount: common,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CommonSongCount != out[j].CommonSongCount {
			return out[i].CommonSongCount > out[j].CommonSongCount
		}
		return out[i].ArtistName < out[j].ArtistName
	})
	return out
}

// sharedGenres lists genres in both top lists, ordered by combined
// frequency desc then name asc.
func sharedGenres(a, b *models.TasteProfile) []string {
	names := intersect(a.TopGenres, b.TopGenres)
	if names == nil {
		return []string{}
	}
	sort.SliceStable(names, func(i, j int) bool {
		ci := a.GenreFrequency[names[i]] + b.GenreFrequency[names[i]]
		cj := a.GenreFrequency[names[j]] + b.GenreFrequency[names[j]]
		if ci != cj {
			return ci > cj
		}
		return names[i] < names[j]
	})
	return names
}

func toSet(items []string) map[string]struct{} {
	set := make(map[string]struct{}, len(items))
	for _, item := range items {
		set[item] = struct{}{}
	}
	return set
}

// intersect returns the distinct items present in both lists, sorted.
func intersect(a, b []string) []string {
	setB := toSet(b)
	seen := make(map[string]struct{})
	var out []string
	for _, item := range a {
		if _, ok := setB[item]; !ok {
			continue
		}
		if _, dup := seen[item]; dup {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	sort.Strings(out)
	return out
}
