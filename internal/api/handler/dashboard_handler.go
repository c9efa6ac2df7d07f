package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tertcoder/garbage-app-backend/internal/service"
	"github.com/tertcoder/garbage-app-backend/pkg/response"
)

// DashboardHandler 仪表盘 HTTP 处理器
type DashboardHandler struct {
	statsSvc service.StatisticsService
}

// NewDashboardHandler 创建 DashboardHandler
func NewDashboardHandler(statsSvc service.StatisticsService) *DashboardHandler {
	return &DashboardHandler{statsSvc: statsSvc}
}

// AdminStats 管理员统计
// GET /api/v1/dashboard/admin/stats
func (h *DashboardHandler) AdminStats(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	stats, err := h.statsSvc.AdminStats(c.Request.Context(), caller)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, stats)
}

// UserStats 用户统计
// GET /api/v1/dashboard/user/stats
func (h *DashboardHandler) UserStats(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	stats, err := h.statsSvc.UserStats(c.Request.Context(), caller)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, stats)
}
