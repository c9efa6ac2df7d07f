package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tertcoder/garbage-app-backend/internal/service"
	"github.com/tertcoder/garbage-app-backend/pkg/response"
)

// MustGetCaller 从 Gin 上下文构造调用方身份。
// 如果 JWT 中间件未正确注入 user_id，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetCaller(c *gin.Context) (service.Caller, bool) {
	v, exists := c.Get("user_id")
	if !exists {
		response.Unauthorized(c, 10002, "未认证")
		return service.Caller{}, false
	}
	userID, ok := v.(string)
	if !ok || userID == "" {
		response.Unauthorized(c, 10002, "未认证")
		return service.Caller{}, false
	}

	var roles []string
	if r, exists := c.Get("roles"); exists {
		roles, _ = r.([]string)
	}
	return service.Caller{UserID: userID, Roles: roles}, true
}

// pathID 读取路径中的 uuid 参数；格式非法时按对应模块的"不存在"响应
func pathID(c *gin.Context, name string, notFound error) (string, bool) {
	id := c.Param(name)
	if _, err := uuid.Parse(id); err != nil {
		response.FromError(c, notFound)
		return "", false
	}
	return id, true
}

// getTokenMeta 读取当前 Access Token 的 jti 与过期时间（登出时使用）
func getTokenMeta(c *gin.Context) (string, time.Time) {
	jti := c.GetString("token_jti")
	exp, _ := c.Get("token_exp")
	expAt, _ := exp.(time.Time)
	return jti, expAt
}
