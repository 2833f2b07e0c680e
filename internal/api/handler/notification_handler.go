package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"ksit-nexus/backend/internal/dto"
	"ksit-nexus/backend/internal/model"
	"ksit-nexus/backend/internal/service"
	pkgerrors "ksit-nexus/backend/pkg/errors"
	"ksit-nexus/backend/pkg/response"
)

// NotificationHandler 通知模块 HTTP 处理器
type NotificationHandler struct {
	notifSvc  service.NotificationService
	digestSvc service.DigestService
}

// NewNotificationHandler 创建 NotificationHandler
func NewNotificationHandler(notifSvc service.NotificationService, digestSvc service.DigestService) *NotificationHandler {
	return &NotificationHandler{notifSvc: notifSvc, digestSvc: digestSvc}
}

// Create 创建通知（staff/admin，管线入口）
// POST /api/v1/notifications
func (h *NotificationHandler) Create(c *gin.Context) {
	var req dto.CreateNotificationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.notifSvc.Create(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrInvalidEnum):
			response.BadRequest(c, 12001, "通知类型或优先级非法")
		case errors.Is(err, service.ErrInvalidTimeFormat):
			response.BadRequest(c, 12002, "过期时间格式错误")
		case errors.Is(err, service.ErrUserNotFound):
			response.NotFound(c, 11005, "用户不存在")
		default:
			response.InternalError(c)
		}
		return
	}
	response.Created(c, result)
}

// List 我的通知列表
// GET /api/v1/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.NotificationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	items, total, err := h.notifSvc.List(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrInvalidEnum) {
			response.BadRequest(c, 12001, "通知类型非法")
			return
		}
		response.InternalError(c)
		return
	}
	response.OKPage(c, items, total, req.Page, req.PageSize)
}

// Get 通知详情
// GET /api/v1/notifications/:id
func (h *NotificationHandler) Get(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.notifSvc.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			response.NotFound(c, 12003, "通知不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// MarkRead 标记已读
// PUT /api/v1/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.notifSvc.MarkRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		if errors.Is(err, service.ErrNotificationNotFound) {
			response.NotFound(c, 12003, "通知不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// MarkAllRead 全部标记已读
// PUT /api/v1/notifications/read-all
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	affected, err := h.notifSvc.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"marked": affected})
}

// UnreadCount 未读数
// GET /api/v1/notifications/unread-count
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	count, err := h.notifSvc.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"unread": count})
}

// GetSummary 通知摘要（kind=short|long，默认 short）
// GET /api/v1/notifications/:id/summary
func (h *NotificationHandler) GetSummary(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	kind := model.SummaryKind(c.DefaultQuery("kind", string(model.SummaryShort)))
	result, err := h.notifSvc.GetSummary(c.Request.Context(), c.Param("id"), userID, kind)
	if err != nil {
		switch {
		case errors.Is(err, pkgerrors.ErrInvalidEnum):
			response.BadRequest(c, 12004, "摘要粒度非法")
		case errors.Is(err, service.ErrNotificationNotFound):
			response.NotFound(c, 12003, "通知不存在")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, result)
}

// ── 偏好设置 ──

// GetPreference 我的通知偏好
// GET /api/v1/notifications/preferences
func (h *NotificationHandler) GetPreference(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	result, err := h.notifSvc.GetPreference(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// UpdatePreference 更新通知偏好（未提供的字段保持不变）
// PUT /api/v1/notifications/preferences
func (h *NotificationHandler) UpdatePreference(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.UpdatePreferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.notifSvc.UpdatePreference(c.Request.Context(), userID, &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// ── 投递分层 ──

// ListTiers 我的投递分层
// GET /api/v1/notifications/tiers
func (h *NotificationHandler) ListTiers(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	items, err := h.notifSvc.ListTiers(c.Request.Context(), userID)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, items)
}

// SetTier 设置投递分层（后写覆盖同类型的旧设置）
// POST /api/v1/notifications/tiers
func (h *NotificationHandler) SetTier(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.SetTierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.notifSvc.SetTier(c.Request.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrInvalidEnum) {
			response.BadRequest(c, 12005, "分层档位或通知类型非法")
			return
		}
		response.InternalError(c)
		return
	}
	response.Created(c, result)
}

// DeleteTier 删除投递分层
// DELETE /api/v1/notifications/tiers/:id
func (h *NotificationHandler) DeleteTier(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.notifSvc.DeleteTier(c.Request.Context(), c.Param("id"), userID); err != nil {
		if errors.Is(err, service.ErrTierNotFound) {
			response.NotFound(c, 12006, "分层设置不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// ── 摘要汇总 ──

// ListDigests 我的摘要列表（kind=daily|weekly 可选）
// GET /api/v1/notifications/digests
func (h *NotificationHandler) ListDigests(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	page, pageSize := pageParams(c)
	items, total, err := h.digestSvc.ListDigests(c.Request.Context(), userID, c.Query("kind"), page, pageSize)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrInvalidEnum) {
			response.BadRequest(c, 12007, "摘要周期非法")
			return
		}
		response.InternalError(c)
		return
	}
	response.OKPage(c, items, total, page, pageSize)
}

// ── 优先级规则（admin）──

// CreateRule 创建优先级规则
// POST /api/v1/admin/priority-rules
func (h *NotificationHandler) CreateRule(c *gin.Context) {
	var req dto.CreatePriorityRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.notifSvc.CreateRule(c.Request.Context(), &req)
	if err != nil {
		if errors.Is(err, pkgerrors.ErrInvalidEnum) {
			response.BadRequest(c, 12001, "通知类型或优先级非法")
			return
		}
		response.InternalError(c)
		return
	}
	response.Created(c, result)
}

// ListRules 优先级规则列表
// GET /api/v1/admin/priority-rules
func (h *NotificationHandler) ListRules(c *gin.Context) {
	page, pageSize := pageParams(c)
	items, total, err := h.notifSvc.ListRules(c.Request.Context(), page, pageSize)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, items, total, page, pageSize)
}

// DeleteRule 删除优先级规则
// DELETE /api/v1/admin/priority-rules/:id
func (h *NotificationHandler) DeleteRule(c *gin.Context) {
	if err := h.notifSvc.DeleteRule(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrRuleNotFound) {
			response.NotFound(c, 12008, "优先级规则不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}

// RunDigests 手动触发摘要生成（kind=daily|weekly，运维兜底入口）
// POST /api/v1/admin/digests/run
func (h *NotificationHandler) RunDigests(c *gin.Context) {
	kind := model.PeriodKind(c.DefaultQuery("kind", string(model.PeriodDaily)))
	if !kind.Valid() {
		response.BadRequest(c, 12007, "摘要周期非法")
		return
	}

	firedAt := time.Now()
	var generated int
	var err error
	if kind == model.PeriodWeekly {
		generated, err = h.digestSvc.RunWeekly(c.Request.Context(), firedAt)
	} else {
		generated, err = h.digestSvc.RunDaily(c.Request.Context(), firedAt)
	}
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, gin.H{"generated": generated})
}

// pageParams 解析通用分页参数
func pageParams(c *gin.Context) (int, int) {
	var q struct {
		Page     int `form:"page,default=1"       binding:"omitempty,min=1"`
		PageSize int `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	}
	if err := c.ShouldBindQuery(&q); err != nil || q.Page < 1 || q.PageSize < 1 {
		return 1, 20
	}
	return q.Page, q.PageSize
}
