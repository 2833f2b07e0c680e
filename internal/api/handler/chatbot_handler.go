package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"ksit-nexus/backend/internal/dto"
	"ksit-nexus/backend/internal/service"
	"ksit-nexus/backend/pkg/response"
)

// ChatbotHandler 校园问答机器人 HTTP 处理器
type ChatbotHandler struct {
	svc service.ChatbotService
}

// NewChatbotHandler 创建 ChatbotHandler
func NewChatbotHandler(svc service.ChatbotService) *ChatbotHandler {
	return &ChatbotHandler{svc: svc}
}

// Ask 向机器人提问
// POST /api/v1/chatbot/ask
func (h *ChatbotHandler) Ask(c *gin.Context) {
	var req dto.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.svc.Ask(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// ── FAQ 管理（admin）──

// CreateFAQ 创建 FAQ 条目
// POST /api/v1/admin/faqs
func (h *ChatbotHandler) CreateFAQ(c *gin.Context) {
	var req dto.CreateFAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.svc.CreateFAQ(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.Created(c, result)
}

// ListFAQs FAQ 列表（含停用条目）
// GET /api/v1/admin/faqs
func (h *ChatbotHandler) ListFAQs(c *gin.Context) {
	page, pageSize := pageParams(c)
	items, total, err := h.svc.ListFAQs(c.Request.Context(), page, pageSize)
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OKPage(c, items, total, page, pageSize)
}

// UpdateFAQ 更新 FAQ 条目
// PUT /api/v1/admin/faqs/:id
func (h *ChatbotHandler) UpdateFAQ(c *gin.Context) {
	var req dto.UpdateFAQRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.svc.UpdateFAQ(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		if errors.Is(err, service.ErrFAQNotFound) {
			response.NotFound(c, 17001, "FAQ 不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, result)
}

// DeleteFAQ 删除 FAQ 条目
// DELETE /api/v1/admin/faqs/:id
func (h *ChatbotHandler) DeleteFAQ(c *gin.Context) {
	if err := h.svc.DeleteFAQ(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, service.ErrFAQNotFound) {
			response.NotFound(c, 17001, "FAQ 不存在")
			return
		}
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}
