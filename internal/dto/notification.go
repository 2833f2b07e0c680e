package dto

// ── 通知模块 DTO ──

// CreateNotificationRequest 创建通知请求（管理/内部入口）
type CreateNotificationRequest struct {
	UserID      string                 `json:"user_id"  binding:"required,uuid"`
	Type        string                 `json:"type"     binding:"required"`
	Title       string                 `json:"title"    binding:"required,max=200"`
	Message     string                 `json:"message"  binding:"required"`
	Priority    string                 `json:"priority" binding:"omitempty"` // 缺省 medium，作为规则未命中时的回退值
	Data        map[string]interface{} `json:"data"     binding:"omitempty"`
	RelatedType string                 `json:"related_type" binding:"omitempty,max=20"`
	RelatedID   string                 `json:"related_id"   binding:"omitempty,uuid"`
	ExpiresAt   string                 `json:"expires_at"   binding:"omitempty"` // RFC3339
}

// NotificationResponse 通知响应
type NotificationResponse struct {
	ID          string                 `json:"id"`
	Type        string                 `json:"type"`
	Priority    string                 `json:"priority"`
	Tier        string                 `json:"tier,omitempty"` // 创建时解析出的投递档位
	Title       string                 `json:"title"`
	Message     string                 `json:"message"`
	Data        map[string]interface{} `json:"data,omitempty"`
	IsRead      bool                   `json:"is_read"`
	IsSent      bool                   `json:"is_sent"`
	RelatedType string                 `json:"related_type,omitempty"`
	RelatedID   string                 `json:"related_id,omitempty"`
	CreatedAt   string                 `json:"created_at"`
}

// NotificationListRequest 通知列表查询参数
type NotificationListRequest struct {
	Page       int    `form:"page,default=1"       binding:"omitempty,min=1"`
	PageSize   int    `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
	UnreadOnly bool   `form:"unread_only"`
	Type       string `form:"type" binding:"omitempty"`
}

// PreferenceResponse 通知偏好响应
type PreferenceResponse struct {
	PushEnabled         bool   `json:"push_enabled"`
	EmailEnabled        bool   `json:"email_enabled"`
	SMSEnabled          bool   `json:"sms_enabled"`
	InAppEnabled        bool   `json:"in_app_enabled"`
	ComplaintEnabled    bool   `json:"complaint_enabled"`
	StudyGroupEnabled   bool   `json:"study_group_enabled"`
	NoticeEnabled       bool   `json:"notice_enabled"`
	ReservationEnabled  bool   `json:"reservation_enabled"`
	FeedbackEnabled     bool   `json:"feedback_enabled"`
	AnnouncementEnabled bool   `json:"announcement_enabled"`
	GeneralEnabled      bool   `json:"general_enabled"`
	QuietEnabled        bool   `json:"quiet_enabled"`
	QuietStart          string `json:"quiet_start"`
	QuietEnd            string `json:"quiet_end"`
	QuietAllowUrgent    bool   `json:"quiet_allow_urgent"`
	Timezone            string `json:"timezone"`
}

// UpdatePreferenceRequest 更新通知偏好请求（未提供的字段保持不变）
type UpdatePreferenceRequest struct {
	PushEnabled         *bool   `json:"push_enabled"`
	EmailEnabled        *bool   `json:"email_enabled"`
	SMSEnabled          *bool   `json:"sms_enabled"`
	InAppEnabled        *bool   `json:"in_app_enabled"`
	ComplaintEnabled    *bool   `json:"complaint_enabled"`
	StudyGroupEnabled   *bool   `json:"study_group_enabled"`
	NoticeEnabled       *bool   `json:"notice_enabled"`
	ReservationEnabled  *bool   `json:"reservation_enabled"`
	FeedbackEnabled     *bool   `json:"feedback_enabled"`
	AnnouncementEnabled *bool   `json:"announcement_enabled"`
	GeneralEnabled      *bool   `json:"general_enabled"`
	QuietEnabled        *bool   `json:"quiet_enabled"`
	QuietStart          *string `json:"quiet_start" binding:"omitempty,len=5"`
	QuietEnd            *string `json:"quiet_end"   binding:"omitempty,len=5"`
	QuietAllowUrgent    *bool   `json:"quiet_allow_urgent"`
	Timezone            *string `json:"timezone"    binding:"omitempty,max=50"`
}

// CreatePriorityRuleRequest 创建优先级规则请求
type CreatePriorityRuleRequest struct {
	UserID           string `json:"user_id"           binding:"omitempty,uuid"` // 空 = 全局规则
	NotificationType string `json:"notification_type" binding:"required"`
	Keyword          string `json:"keyword"           binding:"required,min=1,max=100"`
	Priority         string `json:"priority"          binding:"required"`
}

// PriorityRuleResponse 优先级规则响应
type PriorityRuleResponse struct {
	ID               string `json:"id"`
	UserID           string `json:"user_id,omitempty"` // 空 = 全局规则
	NotificationType string `json:"notification_type"`
	Keyword          string `json:"keyword"`
	Priority         string `json:"priority"`
	IsActive         bool   `json:"is_active"`
	CreatedAt        string `json:"created_at"`
}

// SetTierRequest 设置投递分层请求
type SetTierRequest struct {
	Tier  string   `json:"tier"  binding:"required"`
	Types []string `json:"types" binding:"required,min=1"`
}

// TierResponse 投递分层响应
type TierResponse struct {
	ID    string   `json:"id"`
	Tier  string   `json:"tier"`
	Types []string `json:"types"`
}

// DigestResponse 通知摘要汇总响应
type DigestResponse struct {
	ID            string `json:"id"`
	PeriodKind    string `json:"period_kind"`
	WindowStart   string `json:"window_start"`
	WindowEnd     string `json:"window_end"`
	Title         string `json:"title"`
	Summary       string `json:"summary"`
	IncludedCount int    `json:"included_count"`
	GeneratedAt   string `json:"generated_at"`
}

// SummaryResponse 单条通知摘要响应
type SummaryResponse struct {
	ID             string   `json:"id"`
	NotificationID string   `json:"notification_id"`
	Kind           string   `json:"kind"`
	Summary        string   `json:"summary"`
	WordCount      int      `json:"word_count"`
	KeyPoints      []string `json:"key_points"`
}
