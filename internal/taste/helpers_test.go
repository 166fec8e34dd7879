package taste

import (
	"time"

	"github.com/temcen/tastematch/pkg/models"
)

var testNow = time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)

// rec builds a public record; rating 0 means unrated.
func rec(user, item, artist, title, genre string, rating int) models.LogRecord {
	r := models.LogRecord{
		UserID:       user,
		ItemID:       item,
		Title:        title,
		ArtistName:   artist,
		PrimaryGenre: genre,
		LoggedAt:     testNow.Add(-24 * time.Hour),
		IsPublic:     true,
	}
	if rating != 0 {
		r.Rating = &rating
	}
	return r
}

// scenarioProfiles returns two users sharing artist X and genre rock but
// no common items.
func scenarioProfiles() (*models.TasteProfile, *models.TasteProfile) {
	a := BuildProfile("user-a", []models.LogRecord{
		rec("user-a", "a1", "X", "Song A1", "rock", 5),
		rec("user-a", "a2", "X", "Song A2", "rock", 5),
		rec("user-a", "a3", "Y", "Song Y1", "rock", 5),
	}, testNow)
	b := BuildProfile("user-b", []models.LogRecord{
		rec("user-b", "b1", "X", "Song B1", "rock", 4),
		rec("user-b", "b2", "Z", "Song Z1", "jazz", 3),
	}, testNow)
	return a, b
}
