package model

import "time"

// Reservation 资源预约表 — 对应 reservations
// 同一资源同一时段至多一条 approved 记录（Service 层在审批时校验）
type Reservation struct {
	ReservationID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"reservation_id"`
	UserID        string    `gorm:"type:uuid;not null;index"                       json:"user_id"`
	ResourceType  string    `gorm:"type:varchar(20);not null"                      json:"resource_type"` // room | seat | equipment | court
	ResourceName  string    `gorm:"type:varchar(100);not null"                     json:"resource_name"`
	StartsAt      time.Time `gorm:"not null"                                       json:"starts_at"`
	EndsAt        time.Time `gorm:"not null"                                       json:"ends_at"`
	Purpose       string    `gorm:"type:varchar(500);not null;default:''"          json:"purpose"`
	Status        string    `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"` // pending | approved | rejected | cancelled
	DecidedBy     *string   `gorm:"type:uuid"                                      json:"decided_by,omitempty"`
	BaseModel
}

// TableName 指定表名
func (Reservation) TableName() string { return "reservations" }

// ── 预约状态 ──

const (
	ReservationPending   = "pending"
	ReservationApproved  = "approved"
	ReservationRejected  = "rejected"
	ReservationCancelled = "cancelled"
)
