package model

// Complaint 投诉表 — 对应 complaints
type Complaint struct {
	ComplaintID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"complaint_id"`
	UserID      string  `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Category    string  `gorm:"type:varchar(50);not null"                      json:"category"`
	Subject     string  `gorm:"type:varchar(200);not null"                     json:"subject"`
	Description string  `gorm:"type:text;not null"                             json:"description"`
	Status      string  `gorm:"type:varchar(20);not null;default:'open'"       json:"status"` // open | in_progress | resolved | rejected
	AssigneeID  *string `gorm:"type:uuid"                                      json:"assignee_id,omitempty"`
	Resolution  *string `gorm:"type:text"                                      json:"resolution,omitempty"`
	SoftDeleteModel
}

// TableName 指定表名
func (Complaint) TableName() string { return "complaints" }

// ── 投诉状态 ──

const (
	ComplaintOpen       = "open"
	ComplaintInProgress = "in_progress"
	ComplaintResolved   = "resolved"
	ComplaintRejected   = "rejected"
)

// ValidComplaintStatus 判断投诉状态是否合法
func ValidComplaintStatus(s string) bool {
	switch s {
	case ComplaintOpen, ComplaintInProgress, ComplaintResolved, ComplaintRejected:
		return true
	}
	return false
}
