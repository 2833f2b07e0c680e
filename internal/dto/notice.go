package dto

// ── 公告模块 DTO ──

// CreateNoticeRequest 创建公告请求
type CreateNoticeRequest struct {
	Title     string `json:"title"      binding:"required,min=2,max=200"`
	Body      string `json:"body"       binding:"required"`
	Category  string `json:"category"   binding:"omitempty,max=50"`
	Audience  string `json:"audience"   binding:"omitempty,oneof=all student staff"`
	ExpiresAt string `json:"expires_at" binding:"omitempty"` // RFC3339
}

// NoticeListRequest 公告列表查询参数
type NoticeListRequest struct {
	Page          int    `form:"page,default=1"       binding:"omitempty,min=1"`
	PageSize      int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	Category      string `form:"category" binding:"omitempty,max=50"`
	IncludeDrafts bool   `form:"include_drafts"` // 仅 staff/admin 生效
}

// NoticeResponse 公告响应
type NoticeResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Category    string `json:"category"`
	Audience    string `json:"audience"`
	IsPublished bool   `json:"is_published"`
	PublishedAt string `json:"published_at,omitempty"`
	ExpiresAt   string `json:"expires_at,omitempty"`
	CreatedAt   string `json:"created_at"`
}
