package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ksit-nexus/backend/internal/dto"
	"ksit-nexus/backend/internal/service"
	"ksit-nexus/backend/pkg/response"
)

// ComplaintHandler 投诉模块 HTTP 处理器
type ComplaintHandler struct {
	svc service.ComplaintService
}

// NewComplaintHandler 创建 ComplaintHandler
func NewComplaintHandler(svc service.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{svc: svc}
}

// Create 提交投诉
// POST /api/v1/complaints
func (h *ComplaintHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.svc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.Created(c, result)
}

// Get 投诉详情（本人或 staff/admin）
// GET /api/v1/complaints/:id
func (h *ComplaintHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, _ := MustGetRole(c)

	result, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrComplaintNotFound) {
			response.NotFound(c, 13001, "投诉不存在")
			return
		}
		response.InternalError(c)
		return
	}
	// 学生只能看自己的投诉
	if role == "student" && result.UserID != userID {
		response.NotFound(c, 13001, "投诉不存在")
		return
	}
	response.OK(c, result)
}

// List 投诉列表（学生仅自己的，staff/admin 全量）
// GET /api/v1/complaints
func (h *ComplaintHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, _ := MustGetRole(c)

	var req dto.ComplaintListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	scope := userID
	if role == "staff" || role == "admin" {
		scope = ""
	}
	items, total, err := h.svc.List(c.Request.Context(), scope, &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, items, total, req.Page, req.PageSize)
}

// Assign 指派处理人（staff/admin）
// PUT /api/v1/complaints/:id/assign
func (h *ComplaintHandler) Assign(c *gin.Context) {
	var req dto.AssignComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.svc.Assign(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, service.ErrComplaintNotFound) {
			response.NotFound(c, 13001, "投诉不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// UpdateStatus 更新投诉状态（staff/admin）
// PUT /api/v1/complaints/:id/status
func (h *ComplaintHandler) UpdateStatus(c *gin.Context) {
	var req dto.UpdateComplaintStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.svc.UpdateStatus(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, service.ErrComplaintNotFound) {
			response.NotFound(c, 13001, "投诉不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}
