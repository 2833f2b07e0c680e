package model

import "time"

// Notice 公告表 — 对应 notices
type Notice struct {
	NoticeID    string     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notice_id"`
	AuthorID    string     `gorm:"type:uuid;not null"                             json:"author_id"`
	Title       string     `gorm:"type:varchar(200);not null"                     json:"title"`
	Body        string     `gorm:"type:text;not null"                             json:"body"`
	Category    string     `gorm:"type:varchar(50);not null;default:'general'"    json:"category"`
	Audience    string     `gorm:"type:varchar(20);not null;default:'all'"        json:"audience"` // all | student | staff
	IsPublished bool       `gorm:"not null;default:false"                         json:"is_published"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Notice) TableName() string { return "notices" }
