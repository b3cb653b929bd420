package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// visitor is one client IP's token bucket.
type visitor struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// RateLimit enforces a per-client-IP token bucket of `limit` requests
// per second with the given burst. Buckets idle for 10 minutes are
// swept so the map does not grow with every IP ever seen.
func RateLimit(limit rate.Limit, burst int) gin.HandlerFunc {
	var visitors sync.Map

	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			cutoff := time.Now().Add(-10 * time.Minute)
			visitors.Range(func(k, v interface{}) bool {
				if v.(*visitor).lastSeen.Before(cutoff) {
					visitors.Delete(k)
				}
				return true
			})
		}
	}()

	bucketFor := func(ip string) *rate.Limiter {
		v, _ := visitors.LoadOrStore(ip, &visitor{bucket: rate.NewLimiter(limit, burst)})
		vis := v.(*visitor)
		vis.lastSeen = time.Now()
		return vis.bucket
	}

	return func(c *gin.Context) {
		if !bucketFor(c.ClientIP()).Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
