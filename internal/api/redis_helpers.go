package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resumeforge/internal/api/middleware"
)

type redisRateCounter interface {
	Incr(ctx context.Context, key string) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

func incrWithTTL(ctx context.Context, client redisRateCounter, key string, ttl time.Duration) (int64, error) {
	count, err := client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if count == 1 {
		_ = client.Expire(ctx, key, ttl).Err()
	}
	return count, nil
}

// RenderRateLimit 按客户端 IP 限制每分钟的同步渲染次数。Redis 不可用时放行。
func RenderRateLimit(client redisRateCounter, perMinute int) gin.HandlerFunc {
	return func(c *gin.Context) {
		window := time.Now().Unix() / 60
		key := fmt.Sprintf("render_rate:%s:%d", c.ClientIP(), window)

		count, err := incrWithTTL(c.Request.Context(), client, key, time.Minute)
		if err != nil {
			middleware.LoggerFromContext(c).Warn("render rate counter unavailable", slog.Any("error", err))
			c.Next()
			return
		}
		if count > int64(perMinute) {
			TooManyRequests(c)
			c.Abort()
			return
		}
		c.Next()
	}
}
