package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tertcoder/garbage-app-backend/internal/dto"
	"github.com/tertcoder/garbage-app-backend/internal/service"
	"github.com/tertcoder/garbage-app-backend/pkg/response"
)

// AreaHandler 区域模块 HTTP 处理器
type AreaHandler struct {
	areaSvc service.AreaService
}

// NewAreaHandler 创建 AreaHandler
func NewAreaHandler(areaSvc service.AreaService) *AreaHandler {
	return &AreaHandler{areaSvc: areaSvc}
}

// CreateArea 创建区域
// POST /api/v1/areas
func (h *AreaHandler) CreateArea(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	area, err := h.areaSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, area)
}

// GetArea 区域详情
// GET /api/v1/areas/:id
func (h *AreaHandler) GetArea(c *gin.Context) {
	id, ok := pathID(c, "id", service.ErrAreaNotFound)
	if !ok {
		return
	}

	area, err := h.areaSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, area)
}

// ListAreas 分页列表
// GET /api/v1/areas
func (h *AreaHandler) ListAreas(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.ValidationError(c, err)
		return
	}

	areas, err := h.areaSvc.List(c.Request.Context(), &page)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, areas)
}

// ListAllAreas 全部区域
// GET /api/v1/areas/all
func (h *AreaHandler) ListAllAreas(c *gin.Context) {
	areas, err := h.areaSvc.ListAll(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, areas)
}

// ListAreasByZone 按片区查询
// GET /api/v1/areas/zone/:zone
func (h *AreaHandler) ListAreasByZone(c *gin.Context) {
	areas, err := h.areaSvc.ListByZone(c.Request.Context(), c.Param("zone"))
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, areas)
}

// UpdateArea 更新区域
// PUT /api/v1/areas/:id
func (h *AreaHandler) UpdateArea(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id", service.ErrAreaNotFound)
	if !ok {
		return
	}

	var req dto.UpdateAreaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	area, err := h.areaSvc.Update(c.Request.Context(), caller, id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, area)
}

// DeleteArea 删除区域
// DELETE /api/v1/areas/:id
func (h *AreaHandler) DeleteArea(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id", service.ErrAreaNotFound)
	if !ok {
		return
	}

	if err := h.areaSvc.Delete(c.Request.Context(), caller, id); err != nil {
		response.FromError(c, err)
		return
	}

	response.OKWithMessage(c, "区域已删除", nil)
}
