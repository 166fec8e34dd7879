package middleware

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/temcen/tastematch/internal/services"
)

// Limiter is satisfied by services.RateLimitService.
type Limiter interface {
	Allow(ctx context.Context, userID, action string) (bool, *services.RateLimitInfo)
}

// RateLimit must run after Auth. A nil limiter disables limiting.
func RateLimit(limiter Limiter, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}

		userID, _ := GetUserFromContext(c)
		allowed, info := limiter.Allow(c.Request.Context(), userID, action)

		c.Header("X-RateLimit-Limit", strconv.Itoa(info.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(info.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(info.ResetTime, 10))

		if !allowed {
			abort(c, http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Rate limit exceeded")
			return
		}
		c.Next()
	}
}
