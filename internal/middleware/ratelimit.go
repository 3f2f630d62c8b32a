package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// RateLimit throttles each client to one request per window for the matched
// route. The heavy aggregation endpoints sit behind it; a nil redis client
// disables limiting entirely.
func RateLimit(rdb *redis.Client, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		clientID, exists := c.Get("client_id")
		if !exists {
			c.Next()
			return
		}

		key := fmt.Sprintf("rate_limit:client:%s:%s", clientID, c.FullPath())

		wasSet, err := rdb.SetNX(c.Request.Context(), key, "locked", window).Result()
		if err != nil {
			// Redis trouble never blocks reads.
			c.Next()
			return
		}

		if !wasSet {
			ttl, _ := rdb.TTL(c.Request.Context(), key).Result()
			c.Header("Retry-After", fmt.Sprintf("%d", int(ttl.Seconds())+1))
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}

		c.Next()
	}
}
