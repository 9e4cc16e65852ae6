package middleware

import (
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"

	apierrors "github.com/yukikurage/task-tracker-api/internal/errors"
	"github.com/yukikurage/task-tracker-api/internal/ratelimit"
)

// ThrottleKey identifies the caller for rate limiting: the authenticated
// subject when a valid token is present, the client address otherwise.
func (r *SessionResolver) ThrottleKey(c *gin.Context) string {
	if p, ok := r.ResolveOptional(c); ok {
		return "user:" + strconv.FormatUint(p.SubjectID, 10)
	}
	return c.ClientIP()
}

// RateLimiter enforces per-route policies keyed by ThrottleKey.
type RateLimiter struct {
	limiter  ratelimit.Limiter
	resolver *SessionResolver
	logger   *slog.Logger
}

// NewRateLimiter creates the rate limit middleware factory.
func NewRateLimiter(limiter ratelimit.Limiter, resolver *SessionResolver, logger *slog.Logger) *RateLimiter {
	return &RateLimiter{limiter: limiter, resolver: resolver, logger: logger}
}

// Limit returns a middleware applying policy to the named route. Each route
// counts in its own buckets.
func (rl *RateLimiter) Limit(route string, policy ratelimit.Policy) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := rl.resolver.ThrottleKey(c)

		allowed, retryAfter, err := rl.limiter.Allow(c.Request.Context(), route+":"+key, policy)
		if err != nil {
			// Fail open while the counter store is unreachable.
			rl.logger.Error("rate limiter unavailable", "route", route, "error", err)
			c.Next()
			return
		}
		if !allowed {
			rl.logger.Info("rate limit exceeded", "route", route, "key", key, "policy", policy.String())
			apierrors.TooManyRequests(c, retryAfter)
			return
		}
		c.Next()
	}
}
