package middleware

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"github.com/qs3c/portfolio_server/internal/pkg/log"
	"github.com/qs3c/portfolio_server/internal/pkg/response"
	"github.com/qs3c/portfolio_server/internal/service"
)

const rateLimitPrefix = "portfolio:ratelimit:"

// RateLimit 按客户端 IP 的固定窗口限流，limit<=0 时不限制。
// Redis 不可用时放行。
func RateLimit(rdb *redis.Client, name string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limit <= 0 || rdb == nil {
			c.Next()
			return
		}

		ip := service.ClientIP(c.GetHeader("X-Forwarded-For"), c.GetHeader("X-Real-IP"))
		key := fmt.Sprintf("%s%s:%s", rateLimitPrefix, name, ip)
		ctx := c.Request.Context()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			log.Warnf("rate limit %s unavailable: %v", name, err)
			c.Next()
			return
		}
		if count == 1 {
			if err := rdb.Expire(ctx, key, window).Err(); err != nil {
				log.Warnf("rate limit %s expire: %v", name, err)
			}
		}

		if count > int64(limit) {
			if ttl, err := rdb.TTL(ctx, key).Result(); err == nil && ttl > 0 {
				c.Header("Retry-After", strconv.Itoa(int(ttl.Round(time.Second)/time.Second)))
			}
			log.Infof("rate limit %s exceeded for %s", name, log.MaskIP(ip))
			response.RateLimitError(c, "Too many requests. Please try again later.")
			return
		}

		c.Next()
	}
}
