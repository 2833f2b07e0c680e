package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ksit-nexus/backend/internal/dto"
	"ksit-nexus/backend/internal/service"
	"ksit-nexus/backend/pkg/response"
)

// ReservationHandler 资源预约模块 HTTP 处理器
type ReservationHandler struct {
	svc service.ReservationService
}

// NewReservationHandler 创建 ReservationHandler
func NewReservationHandler(svc service.ReservationService) *ReservationHandler {
	return &ReservationHandler{svc: svc}
}

// Create 发起预约
// POST /api/v1/reservations
func (h *ReservationHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.svc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidTimeFormat):
			response.BadRequest(c, 16001, "时间格式错误")
		case errors.Is(err, service.ErrInvalidTimeSlot):
			response.BadRequest(c, 16002, "结束时间必须晚于开始时间")
		case errors.Is(err, service.ErrSlotConflict):
			response.Conflict(c, 16003, "该时段已被占用")
		default:
			response.InternalError(c)
		}
		return
	}
	response.Created(c, result)
}

// Get 预约详情
// GET /api/v1/reservations/:id
func (h *ReservationHandler) Get(c *gin.Context) {
	result, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrReservationNotFound) {
			response.NotFound(c, 16004, "预约不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// List 预约列表（学生仅自己的，staff/admin 全量）
// GET /api/v1/reservations
func (h *ReservationHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, _ := MustGetRole(c)

	var req dto.ReservationListRequest
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

// Decide 审批预约（staff/admin；批准前复核时段冲突）
// PUT /api/v1/reservations/:id/decide
func (h *ReservationHandler) Decide(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.DecideReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.svc.Decide(c.Request.Context(), c.Param("id"), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrReservationNotFound):
			response.NotFound(c, 16004, "预约不存在")
		case errors.Is(err, service.ErrReservationDecided):
			response.Conflict(c, 16005, "预约已处理")
		case errors.Is(err, service.ErrSlotConflict):
			response.Conflict(c, 16003, "该时段已被占用")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}

// Cancel 取消预约（仅本人）
// PUT /api/v1/reservations/:id/cancel
func (h *ReservationHandler) Cancel(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Cancel(c.Request.Context(), c.Param("id"), userID); err != nil {
		switch {
		case errors.Is(err, service.ErrReservationNotFound):
			response.NotFound(c, 16004, "预约不存在")
		case errors.Is(err, service.ErrNotReservationOwner):
			response.Forbidden(c, 16006, "只能取消自己的预约")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, nil)
}
