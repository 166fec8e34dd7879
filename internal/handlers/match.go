package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/temcen/tastematch/internal/config"
	"github.com/temcen/tastematch/internal/services"
	"github.com/temcen/tastematch/internal/taste"
	"github.com/temcen/tastematch/internal/validation"
	"github.com/temcen/tastematch/pkg/models"
)

var weekIDPattern = regexp.MustCompile(`^\d{4}-W\d{2}$`)

type MatchHandler struct {
	logger     *logrus.Logger
	profiles   ProfileReader
	candidates CandidateSource
	history    MatchHistory
	selector   *taste.Selector
	config     *config.MatchingConfig
	schemas    *validation.SchemaValidator
	validator  *validator.Validate
	now        func() time.Time
}

func NewMatchHandler(
	logger *logrus.Logger,
	profiles ProfileReader,
	candidates CandidateSource,
	history MatchHistory,
	selector *taste.Selector,
	cfg *config.MatchingConfig,
	schemas *validation.SchemaValidator,
) *MatchHandler {
	return &MatchHandler{
		logger:     logger,
		profiles:   profiles,
		candidates: candidates,
		history:    history,
		selector:   selector,
		config:     cfg,
		schemas:    schemas,
		validator:  validator.New(),
		now:        time.Now,
	}
}

// Preview ranks candidates for one user the way this week's round would,
// without saving anything.
func (h *MatchHandler) Preview(c *gin.Context) {
	var req models.MatchPreviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondErrorDetails(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error())
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		respondErrorDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", err.Error())
		return
	}
	if !authorizeUser(c, req.UserID) {
		return
	}

	minScore := h.config.MinimumScore
	if req.MinScore != nil {
		minScore = *req.MinScore
	}
	limit := h.config.Limit
	if req.Limit != 0 {
		limit = req.Limit
	}
	if err := taste.ValidateSelection(minScore, limit); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_PARAMETERS", err.Error())
		return
	}

	ctx := c.Request.Context()
	now := h.now()
	weekID := models.WeekID(now)
	log := h.logger.WithFields(logrus.Fields{"user_id": req.UserID, "week_id": weekID})

	candidateIDs := req.CandidateIDs
	if len(candidateIDs) == 0 {
		ids, err := h.candidates.EligibleUserIDs(ctx)
		if err != nil {
			log.WithError(err).Error("Failed to list candidates")
			respondError(c, http.StatusInternalServerError, "CANDIDATES_FAILED", "Failed to list match candidates")
			return
		}
		candidateIDs = ids
	}

	profiles, err := h.profiles.LoadProfiles(ctx, appendUnique(candidateIDs, req.UserID), now)
	if err != nil {
		log.WithError(err).Error("Failed to load profiles for preview")
		respondError(c, http.StatusInternalServerError, "PROFILE_FAILED", "Failed to build taste profiles")
		return
	}

	history, err := h.history.RecentPartners(ctx, req.UserID, models.CooldownCutoff(now, h.config.CooldownWeeks), weekID)
	if err != nil {
		log.WithError(err).Error("Failed to load match history")
		respondError(c, http.StatusInternalServerError, "HISTORY_FAILED", "Failed to load match history")
		return
	}

	candidates := make([]*models.TasteProfile, 0, len(candidateIDs))
	for _, id := range candidateIDs {
		if p, ok := profiles[id]; ok {
			candidates = append(candidates, p)
		}
	}

	matches, err := h.selector.SelectMatches(profiles[req.UserID], candidates, history, minScore, limit)
	if err != nil {
		if errors.Is(err, taste.ErrInvalidConfig) {
			respondError(c, http.StatusBadRequest, "INVALID_PARAMETERS", err.Error())
			return
		}
		log.WithError(err).Error("Failed to select matches")
		respondError(c, http.StatusInternalServerError, "SELECTION_FAILED", "Failed to select matches")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": models.MatchPreviewResponse{
			UserID:      req.UserID,
			WeekID:      weekID,
			Matches:     matches,
			GeneratedAt: now,
		},
	})
}

func (h *MatchHandler) List(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userId"))
	if userID == "" {
		respondError(c, http.StatusBadRequest, "INVALID_USER_ID", "User ID is required")
		return
	}
	weekID := c.Query("week")
	if weekID != "" && !weekIDPattern.MatchString(weekID) {
		respondError(c, http.StatusBadRequest, "INVALID_WEEK", "Week must be in format YYYY-Www")
		return
	}
	if !authorizeUser(c, userID) {
		return
	}

	records, err := h.history.ListForUser(c.Request.Context(), userID, weekID)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to list matches")
		respondError(c, http.StatusInternalServerError, "QUERY_FAILED", "Failed to retrieve matches")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": models.MatchListResponse{
			UserID:  userID,
			WeekID:  weekID,
			Matches: records,
		},
	})
}

// UpdateOutcome records whether the user followed up on a match and how it
// went. Only the match's owner or an admin may change it.
func (h *MatchHandler) UpdateOutcome(c *gin.Context) {
	matchID := c.Param("matchId")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "BODY_READ_ERROR", "Failed to read request body")
		return
	}
	if result := h.schemas.ValidateMatchOutcome(body); !result.Valid {
		respondErrorDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Request validation failed", result.FieldErrors())
		return
	}

	var req models.MatchOutcomeRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondErrorDetails(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error())
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		respondErrorDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", err.Error())
		return
	}

	ctx := c.Request.Context()
	existing, err := h.history.Get(ctx, matchID)
	if err != nil {
		h.handleMatchError(c, matchID, err)
		return
	}
	if !authorizeUser(c, existing.UserID) {
		return
	}

	record, err := h.history.UpdateOutcome(ctx, matchID, req.UserResponded, req.ConnectionQuality)
	if err != nil {
		h.handleMatchError(c, matchID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": record,
	})
}

func (h *MatchHandler) handleMatchError(c *gin.Context, matchID string, err error) {
	if errors.Is(err, services.ErrMatchNotFound) {
		respondError(c, http.StatusNotFound, "MATCH_NOT_FOUND", "Match not found")
		return
	}
	h.logger.WithError(err).WithField("match_id", matchID).Error("Failed to update match outcome")
	respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update match")
}

// appendUnique returns ids plus id with duplicates removed, leaving ids
// untouched.
func appendUnique(ids []string, id string) []string {
	out := make([]string, 0, len(ids)+1)
	seen := make(map[string]struct{}, len(ids)+1)
	add := func(v string) {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	for _, v := range ids {
		add(v)
	}
	add(id)
	return out
}
