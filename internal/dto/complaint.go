package dto

// ── 投诉模块 DTO ──

// CreateComplaintRequest 提交投诉请求
type CreateComplaintRequest struct {
	Category    string `json:"category"    binding:"required,max=50"`
	Subject     string `json:"subject"     binding:"required,min=5,max=200"`
	Description string `json:"description" binding:"required,min=10"`
}

// UpdateComplaintStatusRequest 更新投诉状态请求（staff/admin）
type UpdateComplaintStatusRequest struct {
	Status     string `json:"status"     binding:"required,oneof=open in_progress resolved rejected"`
	Resolution string `json:"resolution" binding:"omitempty"`
}

// AssignComplaintRequest 指派处理人请求
type AssignComplaintRequest struct {
	AssigneeID string `json:"assignee_id" binding:"required,uuid"`
}

// ComplaintListRequest 投诉列表查询参数
type ComplaintListRequest struct {
	Page     int    `form:"page,default=1"       binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=open in_progress resolved rejected"`
}

// ComplaintResponse 投诉响应
type ComplaintResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	Category    string `json:"category"`
	Subject     string `json:"subject"`
	Description string `json:"description"`
	Status      string `json:"status"`
	AssigneeID  string `json:"assignee_id,omitempty"`
	Resolution  string `json:"resolution,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}
