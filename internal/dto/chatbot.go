package dto

// ── 机器人问答模块 DTO ──

// AskRequest 提问请求
type AskRequest struct {
	Question string `json:"question" binding:"required,min=2,max=500"`
}

// AskResponse 问答响应
type AskResponse struct {
	Answer   string  `json:"answer"`
	Matched  bool    `json:"matched"`            // 是否命中知识库
	FAQID    string  `json:"faq_id,omitempty"`   // 命中的条目
	Score    float64 `json:"score"`              // 匹配得分
	Category string  `json:"category,omitempty"`
}

// CreateFAQRequest 创建 FAQ 条目请求（admin）
type CreateFAQRequest struct {
	Question string   `json:"question" binding:"required,min=5,max=500"`
	Answer   string   `json:"answer"   binding:"required"`
	Category string   `json:"category" binding:"omitempty,max=50"`
	Keywords []string `json:"keywords" binding:"required,min=1"`
}

// UpdateFAQRequest 更新 FAQ 条目请求（admin）
type UpdateFAQRequest struct {
	Question *string   `json:"question" binding:"omitempty,min=5,max=500"`
	Answer   *string   `json:"answer"`
	Category *string   `json:"category" binding:"omitempty,max=50"`
	Keywords *[]string `json:"keywords" binding:"omitempty,min=1"`
	IsActive *bool     `json:"is_active"`
}

// FAQResponse FAQ 条目响应
type FAQResponse struct {
	ID       string   `json:"id"`
	Question string   `json:"question"`
	Answer   string   `json:"answer"`
	Category string   `json:"category"`
	Keywords []string `json:"keywords"`
	HitCount int      `json:"hit_count"`
	IsActive bool     `json:"is_active"`
}
