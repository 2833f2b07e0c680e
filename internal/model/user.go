package model

import "time"

// User 用户表 — 对应 users
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	USN          string `gorm:"type:varchar(20);not null"                      json:"usn"`
	Email        string `gorm:"type:varchar(255);not null"                     json:"email"`
	Phone        string `gorm:"type:varchar(20)"                               json:"phone,omitempty"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	Department   string `gorm:"type:varchar(100);not null;default:''"          json:"department"`
	SoftDeleteModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// Device 推送设备表 — 对应 devices（一个用户可注册多台设备）
type Device struct {
	DeviceToken  string    `gorm:"type:varchar(255);primaryKey"        json:"device_token"`
	UserID       string    `gorm:"type:uuid;not null;index"            json:"user_id"`
	Platform     string    `gorm:"type:varchar(10);not null;default:'android'" json:"platform"`
	IsActive     bool      `gorm:"not null;default:true"               json:"is_active"`
	RegisteredAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"  json:"registered_at"`
	LastActive   time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"  json:"last_active"`
}

// TableName 指定表名
func (Device) TableName() string { return "devices" }
