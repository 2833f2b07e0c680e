package dto

// ── 预约模块 DTO ──

// CreateReservationRequest 提交预约请求
type CreateReservationRequest struct {
	ResourceType string `json:"resource_type" binding:"required,oneof=room seat equipment court"`
	ResourceName string `json:"resource_name" binding:"required,max=100"`
	StartsAt     string `json:"starts_at"     binding:"required"` // RFC3339
	EndsAt       string `json:"ends_at"       binding:"required"` // RFC3339
	Purpose      string `json:"purpose"       binding:"omitempty,max=500"`
}

// DecideReservationRequest 审批预约请求（staff/admin）
type DecideReservationRequest struct {
	Approve bool   `json:"approve"`
	Reason  string `json:"reason" binding:"omitempty,max=500"`
}

// ReservationListRequest 预约列表查询参数
type ReservationListRequest struct {
	Page     int    `form:"page,default=1"       binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	Status   string `form:"status" binding:"omitempty,oneof=pending approved rejected cancelled"`
}

// ReservationResponse 预约响应
type ReservationResponse struct {
	ID           string `json:"id"`
	UserID       string `json:"user_id"`
	ResourceType string `json:"resource_type"`
	ResourceName string `json:"resource_name"`
	StartsAt     string `json:"starts_at"`
	EndsAt       string `json:"ends_at"`
	Purpose      string `json:"purpose,omitempty"`
	Status       string `json:"status"`
	CreatedAt    string `json:"created_at"`
}
