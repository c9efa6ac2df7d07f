package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tertcoder/garbage-app-backend/pkg/redis"
	"github.com/tertcoder/garbage-app-backend/pkg/response"
)

// RateLimit 认证接口限流，按 客户端 IP + 路由模板 计数
// rdb 为 nil 或 limit<=0 时不限流；Redis 出错时放行
func RateLimit(rdb *redis.Client, limit int, window time.Duration, logger *zap.Logger) gin.HandlerFunc {
	if rdb == nil || limit <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := c.FullPath() + ":" + c.ClientIP()

		allowed, retryAfter, err := rdb.CheckRateLimit(c.Request.Context(), key, limit, window)
		if err != nil {
			logger.Warn("限流检查失败，已放行", zap.String("key", key), zap.Error(err))
			c.Next()
			return
		}
		if allowed {
			c.Next()
			return
		}

		secs := int(math.Ceil(retryAfter.Seconds()))
		if secs < 1 {
			secs = 1
		}
		c.Header("Retry-After", strconv.Itoa(secs))
		response.Error(c, http.StatusTooManyRequests, 10006, "请求过于频繁，请稍后再试")
		c.Abort()
	}
}
