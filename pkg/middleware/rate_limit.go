package middleware

import (
	"fmt"
	"net/http"

	"videofetch/internal/model"
	"videofetch/internal/service"

	"github.com/gin-gonic/gin"
)

// RateLimitMiddleware creates a middleware for rate limiting
func RateLimitMiddleware(rateLimitService *service.RateLimitService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()

		allowed, retryAfter := rateLimitService.Allow(ip)
		if !allowed {
			c.Header("Retry-After", fmt.Sprintf("%d", retryAfter))
			c.JSON(http.StatusTooManyRequests, model.ErrorResponse{
				Error:      "rate limit exceeded, please wait and retry",
				RetryAfter: retryAfter,
			})
			c.Abort()
			return
		}

		remaining := rateLimitService.Remaining(ip)
		if remaining >= 0 {
			c.Header("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
		}

		c.Next()
	}
}
