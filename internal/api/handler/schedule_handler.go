package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tertcoder/garbage-app-backend/internal/dto"
	"github.com/tertcoder/garbage-app-backend/internal/service"
	"github.com/tertcoder/garbage-app-backend/pkg/response"
)

const calendarContentType = "text/calendar; charset=utf-8"

// ScheduleHandler 清运计划模块 HTTP 处理器
type ScheduleHandler struct {
	scheduleSvc service.ScheduleService
	calendarSvc service.CalendarService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(scheduleSvc service.ScheduleService, calendarSvc service.CalendarService) *ScheduleHandler {
	return &ScheduleHandler{scheduleSvc: scheduleSvc, calendarSvc: calendarSvc}
}

// CreateSchedule 创建清运计划
// POST /api/v1/schedules
func (h *ScheduleHandler) CreateSchedule(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	schedule, err := h.scheduleSvc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Created(c, schedule)
}

// GetSchedule 清运计划详情
// GET /api/v1/schedules/:id
func (h *ScheduleHandler) GetSchedule(c *gin.Context) {
	id, ok := pathID(c, "id", service.ErrScheduleNotFound)
	if !ok {
		return
	}

	schedule, err := h.scheduleSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, schedule)
}

// ListSchedules 分页列表
// GET /api/v1/schedules
func (h *ScheduleHandler) ListSchedules(c *gin.Context) {
	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.ValidationError(c, err)
		return
	}

	schedules, err := h.scheduleSvc.List(c.Request.Context(), &page)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, schedules)
}

// ListByArea 按区域分页查询
// GET /api/v1/schedules/area/:areaId
func (h *ScheduleHandler) ListByArea(c *gin.Context) {
	areaID, ok := pathID(c, "areaId", service.ErrAreaNotFound)
	if !ok {
		return
	}

	var page dto.PaginationRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		response.ValidationError(c, err)
		return
	}

	schedules, err := h.scheduleSvc.ListByArea(c.Request.Context(), areaID, &page)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, schedules)
}

// ListByDateRange 按日期区间查询（不分页）
// GET /api/v1/schedules/date-range?start_date=2030-01-01&end_date=2030-01-31
func (h *ScheduleHandler) ListByDateRange(c *gin.Context) {
	var req dto.DateRangeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "start_date / end_date 须为 YYYY-MM-DD")
		return
	}

	schedules, err := h.scheduleSvc.ListByDateRange(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, gin.H{"list": schedules})
}

// FilterSchedules 组合筛选
// POST /api/v1/schedules/filter
func (h *ScheduleHandler) FilterSchedules(c *gin.Context) {
	var req dto.ScheduleFilterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	schedules, err := h.scheduleSvc.Filter(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, schedules)
}

// UpdateSchedule 更新清运计划
// PUT /api/v1/schedules/:id
func (h *ScheduleHandler) UpdateSchedule(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id", service.ErrScheduleNotFound)
	if !ok {
		return
	}

	var req dto.UpdateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ValidationError(c, err)
		return
	}

	schedule, err := h.scheduleSvc.Update(c.Request.Context(), caller, id, &req)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.OK(c, schedule)
}

// DeleteSchedule 删除清运计划
// DELETE /api/v1/schedules/:id
func (h *ScheduleHandler) DeleteSchedule(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id", service.ErrScheduleNotFound)
	if !ok {
		return
	}

	if err := h.scheduleSvc.Delete(c.Request.Context(), caller, id); err != nil {
		response.FromError(c, err)
		return
	}

	response.OKWithMessage(c, "清运计划已删除", nil)
}

// AreaCalendar 区域收运日历订阅
// GET /api/v1/schedules/area/:areaId/calendar.ics
func (h *ScheduleHandler) AreaCalendar(c *gin.Context) {
	areaID, ok := pathID(c, "areaId", service.ErrAreaNotFound)
	if !ok {
		return
	}

	text, filename, err := h.calendarSvc.AreaCalendar(c.Request.Context(), areaID)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.File(c, calendarContentType, filename, true, []byte(text))
}

// [自证通过] internal/api/handler/schedule_handler.go
