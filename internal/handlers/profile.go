package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/temcen/tastematch/internal/services"
	"github.com/temcen/tastematch/internal/taste"
)

type ProfileHandler struct {
	logger   *logrus.Logger
	profiles ProfileReader
	engine   *taste.Engine
	metrics  *services.MatchingMetrics
	now      func() time.Time
}

func NewProfileHandler(logger *logrus.Logger, profiles ProfileReader, engine *taste.Engine, metrics *services.MatchingMetrics) *ProfileHandler {
	return &ProfileHandler{
		logger:   logger,
		profiles: profiles,
		engine:   engine,
		metrics:  metrics,
		now:      time.Now,
	}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userId"))
	if userID == "" {
		respondError(c, http.StatusBadRequest, "INVALID_USER_ID", "User ID is required")
		return
	}
	if !authorizeUser(c, userID) {
		return
	}

	profile, err := h.profiles.Profile(c.Request.Context(), userID, h.now())
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to build taste profile")
		respondError(c, http.StatusInternalServerError, "PROFILE_FAILED", "Failed to build taste profile")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"profile":     publicProfile(profile),
			"eligible":    profile.Eligible(),
			"recent_logs": len(profile.RecentActivity),
		},
	})
}

// Similarity compares two users' public taste profiles. The caller must be
// the first user unless they are an admin.
func (h *ProfileHandler) Similarity(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userId"))
	otherID := strings.TrimSpace(c.Param("otherUserId"))
	if userID == "" || otherID == "" {
		respondError(c, http.StatusBadRequest, "INVALID_USER_ID", "Both user IDs are required")
		return
	}
	if userID == otherID {
		respondError(c, http.StatusBadRequest, "SAME_USER", "Cannot compare a user with themselves")
		return
	}
	// Members compare themselves against others; admins compare anyone.
	if !authorizeUser(c, userID) {
		return
	}

	profiles, err := h.profiles.LoadProfiles(c.Request.Context(), []string{userID, otherID}, h.now())
	if err != nil {
		h.logger.WithError(err).WithFields(logrus.Fields{
			"user_id":       userID,
			"other_user_id": otherID,
		}).Error("Failed to load profiles for similarity")
		respondError(c, http.StatusInternalServerError, "PROFILE_FAILED", "Failed to build taste profiles")
		return
	}

	a, b := profiles[userID], profiles[otherID]
	if !a.Eligible() || !b.Eligible() {
		respondError(c, http.StatusUnprocessableEntity, "INSUFFICIENT_DATA", "Both users need public listening history")
		return
	}

	result := h.engine.Compare(a, b)
	if h.metrics != nil {
		h.metrics.SimilarityQueries.Inc()
	}

	c.JSON(http.StatusOK, gin.H{
		"data": result,
	})
}
