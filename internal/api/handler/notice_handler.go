package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ksit-nexus/backend/internal/dto"
	"ksit-nexus/backend/internal/service"
	"ksit-nexus/backend/pkg/response"
)

// NoticeHandler 公告模块 HTTP 处理器
type NoticeHandler struct {
	svc service.NoticeService
}

// NewNoticeHandler 创建 NoticeHandler
func NewNoticeHandler(svc service.NoticeService) *NoticeHandler {
	return &NoticeHandler{svc: svc}
}

// Create 创建公告草稿（staff/admin）
// POST /api/v1/notices
func (h *NoticeHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.svc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidTimeFormat) {
			response.BadRequest(c, 14001, "过期时间格式错误")
			return
		}
		response.InternalError(c)
		return
	}
	response.Created(c, result)
}

// Publish 发布公告并按受众扇出通知（staff/admin）
// PUT /api/v1/notices/:id/publish
func (h *NoticeHandler) Publish(c *gin.Context) {
	result, err := h.svc.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNoticeNotFound):
			response.NotFound(c, 14002, "公告不存在")
		case errors.Is(err, service.ErrNoticePublished):
			response.Conflict(c, 14003, "公告已发布")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}

// Get 公告详情
// GET /api/v1/notices/:id
func (h *NoticeHandler) Get(c *gin.Context) {
	result, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNoticeNotFound) {
			response.NotFound(c, 14002, "公告不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// List 公告列表（草稿仅 staff/admin 可见）
// GET /api/v1/notices
func (h *NoticeHandler) List(c *gin.Context) {
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var req dto.NoticeListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	includeDrafts := role == "staff" || role == "admin"
	items, total, err := h.svc.List(c.Request.Context(), &req, includeDrafts)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, items, total, req.Page, req.PageSize)
}

// Delete 删除公告（admin）
// DELETE /api/v1/notices/:id
func (h *NoticeHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrNoticeNotFound) {
			response.NotFound(c, 14002, "公告不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}
