package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/temcen/tastematch/internal/services"
)

type AdminHandler struct {
	logger   *logrus.Logger
	round    RoundStarter
	tracker  RoundReader
	profiles ProfileInvalidator
}

func NewAdminHandler(logger *logrus.Logger, round RoundStarter, tracker RoundReader, profiles ProfileInvalidator) *AdminHandler {
	return &AdminHandler{
		logger:   logger,
		round:    round,
		tracker:  tracker,
		profiles: profiles,
	}
}

// StartRound kicks off a weekly matching round in the background.
func (h *AdminHandler) StartRound(c *gin.Context) {
	roundID, err := h.round.Start(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Failed to start matching round")
		respondError(c, http.StatusInternalServerError, "ROUND_START_FAILED", "Failed to start matching round")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"data": gin.H{
			"round_id":   roundID,
			"status":     services.RoundStatusQueued,
			"status_url": "/api/v1/admin/rounds/" + roundID,
		},
	})
}

func (h *AdminHandler) GetRound(c *gin.Context) {
	roundID := c.Param("roundId")

	progress, err := h.tracker.Get(c.Request.Context(), roundID)
	if err != nil {
		if errors.Is(err, services.ErrRoundNotFound) {
			respondError(c, http.StatusNotFound, "ROUND_NOT_FOUND", "Round not found")
			return
		}
		h.logger.WithError(err).WithField("round_id", roundID).Error("Failed to get round status")
		respondError(c, http.StatusInternalServerError, "QUERY_FAILED", "Failed to retrieve round status")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": progress,
	})
}

func (h *AdminHandler) ClearCache(c *gin.Context) {
	if err := h.profiles.ClearCache(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("Failed to clear profile cache")
		respondError(c, http.StatusInternalServerError, "CACHE_CLEAR_FAILED", "Failed to clear profile cache")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Profile cache cleared",
	})
}
