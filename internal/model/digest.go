package model

import "time"

// NotificationDigest 通知摘要汇总表 — 对应 notification_digests
// 每 (用户, 周期, 窗口) 至多一条；生成后不可变，下一周期生成新记录取代
type NotificationDigest struct {
	DigestID      string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"digest_id"`
	UserID        string     `gorm:"type:uuid;not null;index"                       json:"user_id"`
	PeriodKind    PeriodKind `gorm:"type:varchar(10);not null"                      json:"period_kind"`
	WindowStart   time.Time  `gorm:"not null"                                       json:"window_start"`
	WindowEnd     time.Time  `gorm:"not null"                                       json:"window_end"`
	Title         string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Summary       string     `gorm:"type:text;not null"                             json:"summary"`
	IncludedCount int        `gorm:"not null"                                       json:"included_count"`
	GeneratedAt   time.Time  `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"generated_at"`
}

// TableName 指定表名
func (NotificationDigest) TableName() string { return "notification_digests" }

// NotificationDigestItem 摘要包含的通知 — 对应 notification_digest_items
type NotificationDigestItem struct {
	DigestID       string `gorm:"type:uuid;primaryKey" json:"digest_id"`
	NotificationID string `gorm:"type:uuid;primaryKey" json:"notification_id"`
}

// TableName 指定表名
func (NotificationDigestItem) TableName() string { return "notification_digest_items" }

// NotificationSummary 单条通知摘要表 — 对应 notification_summaries（与 notifications 1:1）
// 生成后不可变；重新生成需先删除再创建
type NotificationSummary struct {
	SummaryID      string      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"summary_id"`
	NotificationID string      `gorm:"type:uuid;not null;uniqueIndex"                 json:"notification_id"`
	Kind           SummaryKind `gorm:"type:varchar(10);not null"                      json:"kind"`
	Summary        string      `gorm:"type:text;not null"                             json:"summary"`
	WordCount      int         `gorm:"not null;default:0"                             json:"word_count"`
	KeyPoints      StringArray `gorm:"type:text[];not null"                           json:"key_points"`
	CreatedAt      time.Time   `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
}

// TableName 指定表名
func (NotificationSummary) TableName() string { return "notification_summaries" }
