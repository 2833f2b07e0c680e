package dto

// ── 学习小组模块 DTO ──

// CreateStudyGroupRequest 创建小组请求
type CreateStudyGroupRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=100"`
	Subject     string `json:"subject"     binding:"required,max=100"`
	Description string `json:"description" binding:"omitempty,max=1000"`
	Capacity    int    `json:"capacity"    binding:"omitempty,min=2,max=100"`
}

// StudyGroupListRequest 小组列表查询参数
type StudyGroupListRequest struct {
	Page     int    `form:"page,default=1"       binding:"omitempty,min=1"`
	PageSize int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	Subject  string `form:"subject" binding:"omitempty,max=100"`
}

// StudyGroupResponse 小组响应
type StudyGroupResponse struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Subject     string `json:"subject"`
	Description string `json:"description,omitempty"`
	Capacity    int    `json:"capacity"`
	MemberCount int    `json:"member_count"`
	CreatedAt   string `json:"created_at"`
}
