package model

import "time"

// Notification 通知消息表 — 对应 notifications
type Notification struct {
	NotificationID string           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"notification_id"`
	UserID         string           `gorm:"type:uuid;not null;index"                       json:"user_id"`
	Type           NotificationType `gorm:"type:varchar(20);not null"                      json:"type"`
	Priority       Priority         `gorm:"type:varchar(10);not null;default:'medium'"     json:"priority"`
	Title          string           `gorm:"type:varchar(200);not null"                     json:"title"`
	Message        string           `gorm:"type:text;not null"                             json:"message"`
	Data           JSONMap          `gorm:"type:jsonb;not null;default:'{}'"               json:"data,omitempty"`
	IsRead         bool             `gorm:"not null;default:false"                         json:"is_read"`
	IsSent         bool             `gorm:"not null;default:false"                         json:"is_sent"`
	PushSent       bool             `gorm:"not null;default:false"                         json:"push_sent"`
	EmailSent      bool             `gorm:"not null;default:false"                         json:"email_sent"`
	SMSSent        bool             `gorm:"column:sms_sent;not null;default:false"         json:"sms_sent"`
	RelatedType    *string          `gorm:"type:varchar(20)"                               json:"related_type,omitempty"` // complaint | notice | study_group | reservation
	RelatedID      *string          `gorm:"type:uuid"                                      json:"related_id,omitempty"`
	ExpiresAt      *time.Time       `json:"expires_at,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Notification) TableName() string { return "notifications" }

// Active 通知是否仍然有效（未设置过期时间或尚未过期）
func (n *Notification) Active(now time.Time) bool {
	return n.ExpiresAt == nil || n.ExpiresAt.After(now)
}

// NotificationStat 通知量统计读模型（报表导出用，无对应表）
type NotificationStat struct {
	Type     NotificationType `json:"type"`
	Priority Priority         `json:"priority"`
	Total    int64            `json:"total"`
	Unread   int64            `json:"unread"`
	Sent     int64            `json:"sent"`
}

// NotificationPreference 通知偏好表 — 对应 notification_preferences（与 users 1:1，首次访问时懒创建）
type NotificationPreference struct {
	UserID              string `gorm:"type:uuid;primaryKey"              json:"user_id"`
	PushEnabled         bool   `gorm:"not null;default:true"             json:"push_enabled"`
	EmailEnabled        bool   `gorm:"not null;default:true"             json:"email_enabled"`
	SMSEnabled          bool   `gorm:"column:sms_enabled;not null;default:false" json:"sms_enabled"`
	InAppEnabled        bool   `gorm:"not null;default:true"             json:"in_app_enabled"`
	ComplaintEnabled    bool   `gorm:"not null;default:true"             json:"complaint_enabled"`
	StudyGroupEnabled   bool   `gorm:"not null;default:true"             json:"study_group_enabled"`
	NoticeEnabled       bool   `gorm:"not null;default:true"             json:"notice_enabled"`
	ReservationEnabled  bool   `gorm:"not null;default:true"             json:"reservation_enabled"`
	FeedbackEnabled     bool   `gorm:"not null;default:true"             json:"feedback_enabled"`
	AnnouncementEnabled bool   `gorm:"not null;default:true"             json:"announcement_enabled"`
	GeneralEnabled      bool   `gorm:"not null;default:true"             json:"general_enabled"`
	QuietEnabled        bool   `gorm:"not null;default:false"            json:"quiet_enabled"`
	QuietStart          string `gorm:"type:varchar(5);not null;default:'22:00'" json:"quiet_start"`
	QuietEnd            string `gorm:"type:varchar(5);not null;default:'07:00'" json:"quiet_end"`
	QuietAllowUrgent    bool   `gorm:"not null;default:true"             json:"quiet_allow_urgent"`
	Timezone            string `gorm:"type:varchar(50);not null;default:'Asia/Kolkata'" json:"timezone"`
	BaseModel
}

// TableName 指定表名
func (NotificationPreference) TableName() string { return "notification_preferences" }

// CategoryEnabled 指定类型的通知是否开启
func (p *NotificationPreference) CategoryEnabled(t NotificationType) bool {
	switch t {
	case TypeComplaint:
		return p.ComplaintEnabled
	case TypeStudyGroup:
		return p.StudyGroupEnabled
	case TypeNotice:
		return p.NoticeEnabled
	case TypeReservation:
		return p.ReservationEnabled
	case TypeFeedback:
		return p.FeedbackEnabled
	case TypeAnnouncement:
		return p.AnnouncementEnabled
	case TypeGeneral:
		return p.GeneralEnabled
	}
	return false
}

// DefaultPreference 用户默认偏好（懒创建时落库）
func DefaultPreference(userID string) *NotificationPreference {
	return &NotificationPreference{
		UserID:              userID,
		PushEnabled:         true,
		EmailEnabled:        true,
		SMSEnabled:          false,
		InAppEnabled:        true,
		ComplaintEnabled:    true,
		StudyGroupEnabled:   true,
		NoticeEnabled:       true,
		ReservationEnabled:  true,
		FeedbackEnabled:     true,
		AnnouncementEnabled: true,
		GeneralEnabled:      true,
		QuietEnabled:        false,
		QuietStart:          "22:00",
		QuietEnd:            "07:00",
		QuietAllowUrgent:    true,
		Timezone:            "Asia/Kolkata",
	}
}
