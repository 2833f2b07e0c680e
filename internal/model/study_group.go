package model

import "time"

// StudyGroup 学习小组表 — 对应 study_groups
type StudyGroup struct {
	GroupID     string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"group_id"`
	OwnerID     string `gorm:"type:uuid;not null"                             json:"owner_id"`
	Name        string `gorm:"type:varchar(100);not null"                     json:"name"`
	Subject     string `gorm:"type:varchar(100);not null"                     json:"subject"`
	Description string `gorm:"type:text;not null;default:''"                  json:"description"`
	Capacity    int    `gorm:"not null;default:10"                            json:"capacity"`
	SoftDeleteModel

	// 关联
	Members []StudyGroupMember `gorm:"foreignKey:GroupID;references:GroupID" json:"members,omitempty"`
}

// TableName 指定表名
func (StudyGroup) TableName() string { return "study_groups" }

// StudyGroupMember 小组成员表 — 对应 study_group_members
type StudyGroupMember struct {
	GroupID  string    `gorm:"type:uuid;primaryKey"                       json:"group_id"`
	UserID   string    `gorm:"type:uuid;primaryKey"                       json:"user_id"`
	Role     string    `gorm:"type:varchar(20);not null;default:'member'" json:"role"` // owner | member
	JoinedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"         json:"joined_at"`
}

// TableName 指定表名
func (StudyGroupMember) TableName() string { return "study_group_members" }
