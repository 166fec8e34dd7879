package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
)

// MatchingMetrics are the Prometheus series for profile building and
// weekly rounds.
type MatchingMetrics struct {
	RoundsTotal       *prometheus.CounterVec
	MatchesCreated    prometheus.Counter
	ProfilesBuilt     prometheus.Counter
	CacheLookups      *prometheus.CounterVec
	RoundFailures     prometheus.Counter
	RoundDuration     prometheus.Histogram
	MatchScores       prometheus.Histogram
	SimilarityQueries prometheus.Counter
}

func NewMatchingMetrics(logger *logrus.Logger) *MatchingMetrics {
	m := &MatchingMetrics{
		RoundsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matching_rounds_total",
			Help: "Weekly matching rounds by outcome",
		}, []string{"status"}),
		MatchesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matching_matches_created_total",
			Help: "Match records written by weekly rounds",
		}),
		ProfilesBuilt: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matching_profiles_built_total",
			Help: "Taste profiles built from listening logs",
		}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "matching_profile_cache_lookups_total",
			Help: "Profile cache lookups by result (hit or miss)",
		}, []string{"result"}),
		RoundFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matching_round_user_failures_total",
			Help: "Per-user failures inside weekly rounds",
		}),
		RoundDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "matching_round_duration_seconds",
			Help:    "Weekly round duration in seconds",
			Buckets: []float64{1, 5, 15, 60, 300, 900, 1800},
		}),
		MatchScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "matching_selected_score",
			Help:    "Overall similarity of selected matches",
			Buckets: prometheus.LinearBuckets(0.5, 0.05, 10),
		}),
		SimilarityQueries: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "matching_similarity_queries_total",
			Help: "Ad-hoc similarity comparisons served",
		}),
	}

	m.RoundsTotal = register(m.RoundsTotal, logger)
	m.MatchesCreated = register(m.MatchesCreated, logger)
	m.ProfilesBuilt = register(m.ProfilesBuilt, logger)
	m.CacheLookups = register(m.CacheLookups, logger)
	m.RoundFailures = register(m.RoundFailures, logger)
	m.RoundDuration = register(m.RoundDuration, logger)
	m.MatchScores = register(m.MatchScores, logger)
	m.SimilarityQueries = register(m.SimilarityQueries, logger)

	return m
}

// register adds c to the default registry. If an identical collector is
// already there, that one is returned so every instance feeds one series.
func register[T prometheus.Collector](c T, logger *logrus.Logger) T {
	if err := prometheus.Register(c); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
			return c
		}
		logger.WithError(err).Warn("Failed to register metric")
	}
	return c
}

func (m *MatchingMetrics) cacheHit() {
	if m != nil {
		m.CacheLookups.WithLabelValues("hit").Inc()
	}
}

func (m *MatchingMetrics) cacheMiss() {
	if m != nil {
		m.CacheLookups.WithLabelValues("miss").Inc()
	}
}

func (m *MatchingMetrics) profileBuilt() {
	if m != nil {
		m.ProfilesBuilt.Inc()
	}
}
