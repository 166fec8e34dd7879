package models

import "time"

// LogRecord is a single listening/rating entry logged by a user.
type LogRecord struct {
	UserID           string    `json:"user_id" db:"user_id"`
	ItemID           string    `json:"item_id" db:"item_id"`
	UniversalTrackID string    `json:"universal_track_id,omitempty" db:"universal_track_id"`
	Title            string    `json:"title" db:"title"`
	ArtistName       string    `json:"artist_name" db:"artist_name"`
	PrimaryGenre     string    `json:"primary_genre,omitempty" db:"primary_genre"`
	AdditionalGenres []string  `json:"additional_genres,omitempty" db:"additional_genres"`
	Rating           *int      `json:"rating,omitempty" db:"rating"` // 1-5
	LoggedAt         time.Time `json:"logged_at" db:"logged_at"`
	IsPublic         bool      `json:"is_public" db:"is_public"`
}

// HasRating reports whether the record carries a usable 1-5 rating.
func (r LogRecord) HasRating() bool {
	return r.Rating != nil && *r.Rating >= 1 && *r.Rating <= 5
}

type LogImportRequest struct {
	Logs []LogRecord `json:"logs" validate:"required,min=1,max=500,dive"`
}

type LogImportResponse struct {
	UserID   string `json:"user_id"`
	Imported int    `json:"imported"`
}
