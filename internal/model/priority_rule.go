package model

// PriorityRule 优先级规则表 — 对应 priority_rules
// UserID 为空表示全局默认规则；匹配顺序：用户规则在前、全局规则在后，命中即停
type PriorityRule struct {
	RuleID           string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"rule_id"`
	UserID           *string          `gorm:"type:uuid;index"                                json:"user_id,omitempty"`
	NotificationType NotificationType `gorm:"type:varchar(20);not null"                      json:"notification_type"`
	Keyword          string           `gorm:"type:varchar(100);not null"                     json:"keyword"`
	Priority         Priority         `gorm:"type:varchar(10);not null"                      json:"priority"`
	IsActive         bool             `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (PriorityRule) TableName() string { return "priority_rules" }

// Global 是否为全局规则
func (r *PriorityRule) Global() bool { return r.UserID == nil }
