package model

// FAQEntry 常见问题表 — 对应 faq_entries（机器人问答知识库）
type FAQEntry struct {
	FAQID    string      `gorm:"column:faq_id;type:uuid;primaryKey;default:gen_random_uuid()" json:"faq_id"`
	Question string      `gorm:"type:varchar(500);not null"                     json:"question"`
	Answer   string      `gorm:"type:text;not null"                             json:"answer"`
	Category string      `gorm:"type:varchar(50);not null;default:'general'"    json:"category"`
	Keywords StringArray `gorm:"type:text[];not null"                           json:"keywords"`
	HitCount int         `gorm:"not null;default:0"                             json:"hit_count"`
	IsActive bool        `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (FAQEntry) TableName() string { return "faq_entries" }
