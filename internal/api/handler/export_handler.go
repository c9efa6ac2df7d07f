package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tertcoder/garbage-app-backend/internal/service"
	"github.com/tertcoder/garbage-app-backend/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportSpecialRequests 导出全部特殊清运申请
// GET /api/v1/special-requests/export
func (h *ExportHandler) ExportSpecialRequests(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportSpecialRequests(c.Request.Context(), caller)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.File(c, xlsxContentType, filename, false, buf.Bytes())
}
