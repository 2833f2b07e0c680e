package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ksit-nexus/backend/internal/dto"
	"ksit-nexus/backend/internal/service"
	"ksit-nexus/backend/pkg/response"
)

// StudyGroupHandler 学习小组模块 HTTP 处理器
type StudyGroupHandler struct {
	svc service.StudyGroupService
}

// NewStudyGroupHandler 创建 StudyGroupHandler
func NewStudyGroupHandler(svc service.StudyGroupService) *StudyGroupHandler {
	return &StudyGroupHandler{svc: svc}
}

// Create 创建学习小组（创建者自动入组）
// POST /api/v1/study-groups
func (h *StudyGroupHandler) Create(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	var req dto.CreateStudyGroupRequest
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

// Get 小组详情
// GET /api/v1/study-groups/:id
func (h *StudyGroupHandler) Get(c *gin.Context) {
	result, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrGroupNotFound) {
			response.NotFound(c, 15001, "学习小组不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// List 小组列表（支持按学科筛选）
// GET /api/v1/study-groups
func (h *StudyGroupHandler) List(c *gin.Context) {
	var req dto.StudyGroupListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	items, total, err := h.svc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, items, total, req.Page, req.PageSize)
}

// Join 加入小组
// POST /api/v1/study-groups/:id/join
func (h *StudyGroupHandler) Join(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Join(c.Request.Context(), c.Param("id"), userID); err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			response.NotFound(c, 15001, "学习小组不存在")
		case errors.Is(err, service.ErrGroupFull):
			response.Conflict(c, 15002, "小组人数已满")
		case errors.Is(err, service.ErrAlreadyMember):
			response.Conflict(c, 15003, "已是小组成员")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, nil)
}

// Leave 退出小组（组长不可退出）
// POST /api/v1/study-groups/:id/leave
func (h *StudyGroupHandler) Leave(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.svc.Leave(c.Request.Context(), c.Param("id"), userID); err != nil {
		switch {
		case errors.Is(err, service.ErrGroupNotFound):
			response.NotFound(c, 15001, "学习小组不存在")
		case errors.Is(err, service.ErrNotMember):
			response.BadRequest(c, 15004, "不是小组成员")
		case errors.Is(err, service.ErrOwnerCantLeave):
			response.BadRequest(c, 15005, "组长不能退出小组")
		default:
			response.InternalError(c)
		}
		return
	}
	response.OK(c, nil)
}
