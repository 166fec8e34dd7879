package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/temcen/tastematch/internal/validation"
	"github.com/temcen/tastematch/pkg/models"
)

type LogHandler struct {
	logger    *logrus.Logger
	importer  LogImporter
	profiles  ProfileInvalidator
	schemas   *validation.SchemaValidator
	validator *validator.Validate
}

func NewLogHandler(logger *logrus.Logger, importer LogImporter, profiles ProfileInvalidator, schemas *validation.SchemaValidator) *LogHandler {
	return &LogHandler{
		logger:    logger,
		importer:  importer,
		profiles:  profiles,
		schemas:   schemas,
		validator: validator.New(),
	}
}

// Import stores a batch of listening logs for the user and drops the
// user's cached profile so the next lookup sees them.
func (h *LogHandler) Import(c *gin.Context) {
	userID := strings.TrimSpace(c.Param("userId"))
	if userID == "" {
		respondError(c, http.StatusBadRequest, "INVALID_USER_ID", "User ID is required")
		return
	}
	if !authorizeUser(c, userID) {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "BODY_READ_ERROR", "Failed to read request body")
		return
	}
	if result := h.schemas.ValidateLogImport(body); !result.Valid {
		h.logger.WithField("user_id", userID).Warn("Log import failed schema validation")
		respondErrorDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Request validation failed", result.FieldErrors())
		return
	}

	var req models.LogImportRequest
	if err := json.Unmarshal(body, &req); err != nil {
		respondErrorDetails(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request format", err.Error())
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		respondErrorDetails(c, http.StatusBadRequest, "VALIDATION_FAILED", "Request validation failed", err.Error())
		return
	}

	for i := range req.Logs {
		req.Logs[i].UserID = userID
	}

	ctx := c.Request.Context()
	imported, err := h.importer.ImportLogs(ctx, userID, req.Logs)
	if err != nil {
		h.logger.WithError(err).WithField("user_id", userID).Error("Failed to import logs")
		respondError(c, http.StatusInternalServerError, "IMPORT_FAILED", "Failed to import listening logs")
		return
	}
	h.profiles.Invalidate(ctx, userID)

	c.JSON(http.StatusCreated, gin.H{
		"data": models.LogImportResponse{
			UserID:   userID,
			Imported: imported,
		},
	})
}
