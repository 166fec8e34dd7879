package models

import (
	"fmt"
	"time"
)

type ConnectionQuality string

const (
	ConnectionPending   ConnectionQuality = "pending"
	ConnectionExcellent ConnectionQuality = "excellent"
	ConnectionGood      ConnectionQuality = "good"
	ConnectionFair      ConnectionQuality = "fair"
	ConnectionPoor      ConnectionQuality = "poor"
)

func (q ConnectionQuality) Valid() bool {
	switch q {
	case ConnectionPending, ConnectionExcellent, ConnectionGood, ConnectionFair, ConnectionPoor:
		return true
	}
	return false
}

// MatchRecord is the persisted outcome of one weekly pairing.
type MatchRecord struct {
	ID                string            `json:"id" db:"id"`
	UserID            string            `json:"user_id" db:"user_id"`
	MatchedUserID     string            `json:"matched_user_id" db:"matched_user_id"`
	WeekID            string            `json:"week_id" db:"week_id"`
	SimilarityScore   float64           `json:"similarity_score" db:"similarity_score"`
	SharedArtists     []SharedArtist    `json:"shared_artists" db:"shared_artists"`
	SharedGenres      []string          `json:"shared_genres" db:"shared_genres"`
	UserResponded     bool              `json:"user_responded" db:"user_responded"`
	ConnectionQuality ConnectionQuality `json:"connection_quality" db:"connection_quality"`
	CreatedAt         time.Time         `json:"created_at" db:"created_at"`
}

// NewMatchRecord builds the record for userID's match against result's
// other side.
func NewMatchRecord(userID string, result SimilarityResult, weekID string, now time.Time) MatchRecord {
	matched := result.UserBID
	if matched == userID {
		matched = result.UserAID
	}
	return MatchRecord{
		ID:                MatchRecordID(userID, matched, weekID),
		UserID:            userID,
		MatchedUserID:     matched,
		WeekID:            weekID,
		SimilarityScore:   result.OverallScore,
		SharedArtists:     result.SharedArtists,
		SharedGenres:      result.SharedGenres,
		ConnectionQuality: ConnectionPending,
		CreatedAt:         now,
	}
}

// MatchRecordID is deterministic so re-running a week overwrites instead of
// duplicating.
func MatchRecordID(userID, matchedUserID, weekID string) string {
	return fmt.Sprintf("%s_%s_%s", userID, matchedUserID, weekID)
}

// WeekID returns the ISO-8601 week of t, e.g. "2026-W42".
func WeekID(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// CooldownCutoff is the earliest match time still inside the cooldown window.
func CooldownCutoff(now time.Time, weeks int) time.Time {
	return now.AddDate(0, 0, -7*weeks)
}

type MatchOutcomeRequest struct {
	UserResponded     *bool             `json:"user_responded"`
	ConnectionQuality ConnectionQuality `json:"connection_quality" validate:"omitempty,oneof=pending excellent good fair poor"`
}

type MatchPreviewRequest struct {
	UserID       string   `json:"user_id" validate:"required"`
	CandidateIDs []string `json:"candidate_ids,omitempty"`
	MinScore     *float64 `json:"min_score,omitempty"`
	Limit        int      `json:"limit,omitempty"`
}

type RankedMatch struct {
	UserID string           `json:"user_id"`
	Score  float64          `json:"score"`
	Result SimilarityResult `json:"result"`
}

type MatchPreviewResponse struct {
	UserID      string        `json:"user_id"`
	WeekID      string        `json:"week_id"`
	Matches     []RankedMatch `json:"matches"`
	GeneratedAt time.Time     `json:"generated_at"`
}

type MatchListResponse struct {
	UserID  string        `json:"user_id"`
	WeekID  string        `json:"week_id,omitempty"`
	Matches []MatchRecord `json:"matches"`
}
