package taste

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temcen/tastematch/pkg/models"
)

func TestBuildProfile_Frequencies(t *testing.T) {
	a, _ := scenarioProfiles()

	assert.Equal(t, "user-a", a.UserID)
	assert.Equal(t, 3, a.TotalLogs)
	assert.Equal(t, map[string]int{"X": 2, "Y": 1}, a.ArtistFrequency)
	assert.Equal(t, map[string]int{"rock": 3}, a.GenreFrequency)
	assert.Equal(t, []string{"X", "Y"}, a.TopArtists)
	assert.Equal(t, []string{"rock"}, a.TopGenres)
	assert.Equal(t, 5.0, a.AverageRating)
	assert.Equal(t, map[int]int{5: 3}, a.RatingDistribution)
	assert.InDelta(t, 0.918296, a.DiversityIndex, 1e-6)
	assert.Len(t, a.RecentActivity, 3)
	assert.Equal(t, testNow, a.BuiltAt)
}

func TestBuildProfile_EmptyInput(t *testing.T) {
	p := BuildProfile("user-c", nil, testNow)

	assert.Equal(t, 0, p.TotalLogs)
	assert.Empty(t, p.TopArtists)
	assert.Empty(t, p.TopGenres)
	assert.Empty(t, p.RecentActivity)
	assert.Equal(t, 0.0, p.DiversityIndex)
	assert.Equal(t, 0.0, p.AverageRating)
	assert.False(t, p.Eligible())
}

func TestBuildProfile_SkipsPrivateRecords(t *testing.T) {
	private := rec("user-a", "p1", "Hidden", "Secret", "ambient", 2)
	private.IsPublic = false

	p := BuildProfile("user-a", []models.LogRecord{
		rec("user-a", "a1", "X", "Song", "rock", 4),
		private,
	}, testNow)

	assert.Equal(t, 1, p.TotalLogs)
	assert.NotContains(t, p.ArtistFrequency, "Hidden")
	assert.NotContains(t, p.GenreFrequency, "ambient")
	assert.Equal(t, 4.0, p.AverageRating)

	onlyPrivate := BuildProfile("user-a", []models.LogRecord{private}, testNow)
	assert.False(t, onlyPrivate.Eligible())
}

func TestBuildProfile_IgnoresOutOfRangeRatings(t *testing.T) {
	p := BuildProfile("user-a", []models.LogRecord{
		rec("user-a", "a1", "X", "One", "rock", 4),
		rec("user-a", "a2", "X", "Two", "rock", 9),
		rec("user-a", "a3", "X", "Three", "rock", -1),
		rec("user-a", "a4", "X", "Four", "rock", 0),
	}, testNow)

	assert.Equal(t, 4, p.TotalLogs)
	assert.Equal(t, 4.0, p.AverageRating)
	assert.Equal(t, map[int]int{4: 1}, p.RatingDistribution)
}

func TestBuildProfile_TopListTiesKeepFirstSeenOrder(t *testing.T) {
	p := BuildProfile("user-a", []models.LogRecord{
		rec("user-a", "1", "Beta", "b1", "pop", 0),
		rec("user-a", "2", "Alpha", "a1", "folk", 0),
		rec("user-a", "3", "Beta", "b2", "pop", 0),
		rec("user-a", "4", "Alpha", "a2", "folk", 0),
		rec("user-a", "5", "Gamma", "g1", "folk", 0),
	}, testNow)

	assert.Equal(t, []string{"Beta", "Alpha", "Gamma"}, p.TopArtists)
	assert.Equal(t, []string{"folk", "pop"}, p.TopGenres)
}

func TestBuildProfile_TopListsAreTruncated(t *testing.T) {
	builder, err := NewProfileBuilder(BuilderConfig{TopArtists: 2, TopGenres: 1, RecentWindow: time.Hour})
	require.NoError(t, err)

	p := builder.Build("user-a", []models.LogRecord{
		rec("user-a", "1", "A", "t", "g1", 0),
		rec("user-a", "2", "B", "t", "g2", 0),
		rec("user-a", "3", "C", "t", "g3", 0),
	}, testNow)

	assert.Len(t, p.TopArtists, 2)
	assert.Len(t, p.TopGenres, 1)
	for _, artist := range p.TopArtists {
		assert.Contains(t, p.ArtistFrequency, artist)
	}
	// Every record is a day old, outside the one-hour window.
	assert.Empty(t, p.RecentActivity)
}

func TestBuildProfile_AdditionalGenresCountedOncePerRecord(t *testing.T) {
	r := rec("user-a", "1", "A", "t", "rock", 0)
	r.AdditionalGenres = []string{"indie", "rock", " indie ", ""}

	p := BuildProfile("user-a", []models.LogRecord{r}, testNow)

	assert.Equal(t, map[string]int{"rock": 1, "indie": 1}, p.GenreFrequency)
}

func TestBuildProfile_RecentActivityWindow(t *testing.T) {
	old := rec("user-a", "old", "X", "Old", "rock", 0)
	old.LoggedAt = testNow.AddDate(0, 0, -31)
	edge := rec("user-a", "edge", "X", "Edge", "rock", 0)
	edge.LoggedAt = testNow.AddDate(0, 0, -30)
	future := rec("user-a", "future", "X", "Future", "rock", 0)
	future.LoggedAt = testNow.Add(time.Hour)

	p := BuildProfile("user-a", []models.LogRecord{old, edge, future}, testNow)

	require.Len(t, p.RecentActivity, 1)
	assert.Equal(t, "edge", p.RecentActivity[0].ItemID)
	assert.Equal(t, 3, p.TotalLogs)
}

func TestBuildProfile_SingleArtistHasZeroDiversity(t *testing.T) {
	p := BuildProfile("user-a", []models.LogRecord{
		rec("user-a", "1", "Solo", "a", "rock", 0),
		rec("user-a", "2", "Solo", "b", "rock", 0),
	}, testNow)

	assert.Equal(t, 0.0, p.DiversityIndex)
}

func TestBuildProfile_EvenSpreadHasFullDiversity(t *testing.T) {
	p := BuildProfile("user-a", []models.LogRecord{
		rec("user-a", "1", "A", "a", "rock", 0),
		rec("user-a", "2", "B", "b", "rock", 0),
		rec("user-a", "3", "C", "c", "rock", 0),
		rec("user-a", "4", "D", "d", "rock", 0),
	}, testNow)

	assert.InDelta(t, 1.0, p.DiversityIndex, 1e-9)
}

func TestBuildProfile_Deterministic(t *testing.T) {
	a1, _ := scenarioProfiles()
	a2, _ := scenarioProfiles()
	assert.Equal(t, a1, a2)
}

func TestNewProfileBuilder_RejectsInvalidConfig(t *testing.T) {
	_, err := NewProfileBuilder(BuilderConfig{TopArtists: 0, TopGenres: 5, RecentWindow: time.Hour})
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewProfileBuilder(BuilderConfig{TopArtists: 10, TopGenres: 5})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
