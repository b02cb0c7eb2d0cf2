package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"time"

	"game_store_backend/pkg/utils"

	"github.com/gin-gonic/gin"
)

// Limiter is satisfied by cache.SlidingWindowLimiter.
type Limiter interface {
	Allow(ctx context.Context, scope, id string) (bool, time.Duration, error)
}

// RateLimit limits each client IP within scope. A nil limiter disables the
// check; limiter failures let the request through.
func RateLimit(limiter Limiter, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil {
			c.Next()
			return
		}
		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), scope, c.ClientIP())
		if err != nil {
			utils.LogWarn(err, "rate limiter unavailable", map[string]interface{}{"scope": scope})
			c.Next()
			return
		}
		if !allowed {
			secs := int(math.Ceil(retryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Header("Retry-After", strconv.Itoa(secs))
			utils.RespondWithError(c, utils.NewAPIError(http.StatusTooManyRequests, utils.ErrCodeRateLimited,
				"Too many requests, please try again later", "retry after "+strconv.Itoa(secs)+"s"))
			return
		}
		c.Next()
	}
}
