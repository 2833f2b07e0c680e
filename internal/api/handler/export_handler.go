package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"ksit-nexus/backend/internal/service"
	"ksit-nexus/backend/pkg/response"
)

// 默认导出最近 30 天的数据
const defaultExportDays = 30

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// ExportNotificationReport 导出通知报表（admin）
// GET /api/v1/admin/export/notifications?days=30
func (h *ExportHandler) ExportNotificationReport(c *gin.Context) {
	var q struct {
		Days int `form:"days,default=30" binding:"omitempty,min=1,max=365"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if q.Days < 1 {
		q.Days = defaultExportDays
	}
	since := time.Now().AddDate(0, 0, -q.Days)

	buf, filename, err := h.exportSvc.ExportNotificationReport(c.Request.Context(), since)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportNoData):
		response.NotFound(c, 18001, "所选时间范围内无通知数据")
	case errors.Is(err, service.ErrExportGenerateFail):
		response.InternalError(c)
	default:
		response.InternalError(c)
	}
}
