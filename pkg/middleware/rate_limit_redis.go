package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/lifeshield/lifeshield-api/pkg/metrics"
)

// RedisRateLimit provides a coarse fixed-window Redis-backed limiter: INCR a
// per-window key and compare against the allowed count. Deterministic and
// suitable for multi-instance deployments.
func RedisRateLimit(client *redis.Client, max int, window time.Duration) gin.HandlerFunc {
	if client == nil {
		// fallback to in-memory if no client
		return RateLimit(float64(max)/window.Seconds(), max)
	}
	windowSeconds := int(window.Seconds())
	if windowSeconds <= 0 {
		windowSeconds = 1
	}
	return func(c *gin.Context) {
		bucket := time.Now().Unix() / int64(windowSeconds)
		redisKey := fmt.Sprintf("%s:%d", limiterKey(c, "rl:"), bucket)

		cnt, err := client.Incr(c.Request.Context(), redisKey).Result()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Rate limit check failed"})
			return
		}
		if cnt == 1 {
			_ = client.Expire(c.Request.Context(), redisKey, time.Duration(windowSeconds+1)*time.Second).Err()
		}
		if int(cnt) > max {
			c.Header("Retry-After", fmt.Sprintf("%d", windowSeconds))
			metrics.ThrottleDecisions.WithLabelValues("redis", metrics.OutcomeRejected).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": RateLimitMessage})
			return
		}
		metrics.ThrottleDecisions.WithLabelValues("redis", metrics.OutcomeAllowed).Inc()
		c.Next()
	}
}
