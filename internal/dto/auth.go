package dto

// ── 认证模块 DTO ──

// RegisterRequest 注册请求
type RegisterRequest struct {
	Name       string `json:"name"       binding:"required,min=2,max=50"`
	USN        string `json:"usn"        binding:"required,max=20"`
	Email      string `json:"email"      binding:"required,email"`
	Phone      string `json:"phone"      binding:"omitempty,max=20"`
	Password   string `json:"password"   binding:"required,min=8,max=32"`
	Department string `json:"department" binding:"omitempty,max=100"`
}

// LoginRequest 登录请求
type LoginRequest struct {
	USN        string `json:"usn"      binding:"required"`
	Password   string `json:"password" binding:"required"`
	RememberMe bool   `json:"remember_me"`
}

// RefreshTokenRequest 刷新 Token 请求
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=8,max=32"`
}

// TokenResponse Token 对响应
type TokenResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	ExpiresIn    int          `json:"expires_in"` // Access Token 有效期（秒）
	User         UserResponse `json:"user"`
}

// RegisterResponse 注册成功响应
type RegisterResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	USN   string `json:"usn"`
	Email string `json:"email"`
}
