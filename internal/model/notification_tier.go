package model

// NotificationTier 投递分层表 — 对应 notification_tiers
// 一条记录把用户的一组通知类型归入同一档位；同一 (用户, 类型) 至多归属一条记录
type NotificationTier struct {
	TierID string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"tier_id"`
	UserID string      `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Tier   TierLabel   `gorm:"type:varchar(20);not null"                      json:"tier"`
	Types  StringArray `gorm:"type:text[];not null"                           json:"types"`
	BaseModel
}

// TableName 指定表名
func (NotificationTier) TableName() string { return "notification_tiers" }
