package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/lifeshield/lifeshield-api/pkg/metrics"
)

// RateLimitMessage is the fixed rejection body for throttled requests.
const RateLimitMessage = "Too many requests. Please try again later."

// per-key limiter store (simple in-memory token-bucket)
var limiterStore sync.Map // map[string]*rate.Limiter

// getLimiter returns (and lazily creates) a token-bucket limiter for the given key
func getLimiter(key string, rps float64, burst int) *rate.Limiter {
	if v, ok := limiterStore.Load(key); ok {
		return v.(*rate.Limiter)
	}
	lim := rate.NewLimiter(rate.Limit(rps), burst)
	limiterStore.Store(key, lim)
	return lim
}

// limiterKey prefers the authenticated subject when present, falling back to
// the client IP (NAT-friendly per-user limiting).
func limiterKey(c *gin.Context, prefix string) string {
	if v, ok := c.Get(ClaimsKey); ok {
		if cm, ok2 := v.(map[string]interface{}); ok2 {
			if uid, ok3 := cm["uid"].(string); ok3 && uid != "" {
				return prefix + "uid:" + uid
			}
		}
	}
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return prefix + "ip:" + ip
}

// RateLimit returns a middleware enforcing a token-bucket per-key limit.
// rps = allowed events per second, burst = maximum tokens in bucket.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	return func(c *gin.Context) {
		lim := getLimiter(limiterKey(c, ""), rps, burst)
		if !lim.Allow() {
			c.Header("Retry-After", "1")
			metrics.ThrottleDecisions.WithLabelValues("memory", metrics.OutcomeRejected).Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": RateLimitMessage})
			return
		}
		metrics.ThrottleDecisions.WithLabelValues("memory", metrics.OutcomeAllowed).Inc()
		c.Next()
	}
}
