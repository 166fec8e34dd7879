package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/temcen/tastematch/internal/middleware"
	"github.com/temcen/tastematch/pkg/models"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

func respondErrorDetails(c *gin.Context, status int, code, message string, details interface{}) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}

// authorizeUser lets members act on their own data and admins on anyone's.
func authorizeUser(c *gin.Context, userID string) bool {
	caller, role := middleware.GetUserFromContext(c)
	if caller == userID || role == models.RoleAdmin {
		return true
	}
	respondError(c, http.StatusForbidden, "FORBIDDEN", "Not allowed to access another user's data")
	return false
}

// publicProfile drops raw log records from API responses. Only the
// aggregates leave the service.
func publicProfile(p *models.TasteProfile) *models.TasteProfile {
	out := *p
	out.Logs = nil
	out.RecentActivity = nil
	return &out
}
