package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/meridianlabs/backoffice/pkg"
	"github.com/meridianlabs/backoffice/pkg/apperrors"
)

// WriteRateLimit rejects mutation requests once the limiter is exhausted.
// Reads are never throttled.
func WriteRateLimit(limiter *pkg.DistributedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == "GET" {
			c.Next()
			return
		}
		if !limiter.Allow(c.Request.Context()) {
			_ = c.Error(apperrors.NewRateLimited("write rate limit exceeded"))
			c.Abort()
			return
		}
		c.Next()
	}
}
