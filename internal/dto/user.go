package dto

// ── 用户模块 DTO ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	USN        string `json:"usn"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
}

// UpdateUserRequest 更新用户请求
type UpdateUserRequest struct {
	Name       *string `json:"name"       binding:"omitempty,min=2,max=50"`
	Phone      *string `json:"phone"      binding:"omitempty,max=20"`
	Department *string `json:"department" binding:"omitempty,max=100"`
}

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	Page     int    `form:"page,default=1"       binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	Role     string `form:"role"                 binding:"omitempty,oneof=student staff admin"`
}

// RegisterDeviceRequest 注册推送设备请求
type RegisterDeviceRequest struct {
	DeviceToken string `json:"device_token" binding:"required,max=255"`
	Platform    string `json:"platform"     binding:"required,oneof=android ios web"`
}
