package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"scholchat/backend/pkg/redis"
	"scholchat/backend/pkg/response"
)

// RateLimit 提交限流中间件（固定窗口，按用户维度计数）
// rdb 为 nil 或 Redis 出错时降级放行，不阻塞业务
func RateLimit(rdb *redis.Client, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil || limit <= 0 {
			c.Next()
			return
		}

		userID := c.GetString("user_id")
		if userID == "" {
			userID = c.ClientIP()
		}

		key := fmt.Sprintf("ratelimit:%s:%s", c.FullPath(), userID)
		allowed, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			c.Next()
			return
		}

		if !allowed {
			response.Error(c, http.StatusTooManyRequests, 10005, "请求过于频繁，请稍后再试")
			c.Abort()
			return
		}

		c.Next()
	}
}
