package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ksit-nexus/backend/internal/model"
)

// ReservationRepository 场地/设备预约数据访问接口
type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	GetByID(ctx context.Context, id string) (*model.Reservation, error)
	List(ctx context.Context, userID, status string, offset, limit int) ([]model.Reservation, int64, error)
	Update(ctx context.Context, reservation *model.Reservation) error
	HasApprovedOverlap(ctx context.Context, resourceType, resourceName string, startsAt, endsAt time.Time, excludeID string) (bool, error)
}

// reservationRepo ReservationRepository 的 GORM 实现
type reservationRepo struct {
	db *gorm.DB
}

// NewReservationRepo 创建 ReservationRepository 实例
func NewReservationRepo(db *gorm.DB) ReservationRepository {
	return &reservationRepo{db: db}
}

func (r *reservationRepo) Create(ctx context.Context, reservation *model.Reservation) error {
	return r.db.WithContext(ctx).Create(reservation).Error
}

func (r *reservationRepo) GetByID(ctx context.Context, id string) (*model.Reservation, error) {
	var reservation model.Reservation
	err := r.db.WithContext(ctx).
		Where("reservation_id = ?", id).
		First(&reservation).Error
	if err != nil {
		return nil, err
	}
	return &reservation, nil
}

func (r *reservationRepo) List(ctx context.Context, userID, status string, offset, limit int) ([]model.Reservation, int64, error) {
	var reservations []model.Reservation
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Reservation{})
	if userID != "" {
		db = db.Where("user_id = ?", userID)
	}
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).
		Order("starts_at DESC").
		Find(&reservations).Error; err != nil {
		return nil, 0, err
	}
	return reservations, total, nil
}

func (r *reservationRepo) Update(ctx context.Context, reservation *model.Reservation) error {
	return r.db.WithContext(ctx).Save(reservation).Error
}

// HasApprovedOverlap 检查同一资源在时间段内是否已有通过审批的预约
// 区间相交判定:已有预约开始早于新预约结束,且结束晚于新预约开始
func (r *reservationRepo) HasApprovedOverlap(ctx context.Context, resourceType, resourceName string, startsAt, endsAt time.Time, excludeID string) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).
		Model(&model.Reservation{}).
		Where("resource_type = ? AND resource_name = ?", resourceType, resourceName).
		Where("status = ?", model.ReservationApproved).
		Where("starts_at < ? AND ends_at > ?", endsAt, startsAt)
	if excludeID != "" {
		db = db.Where("reservation_id <> ?", excludeID)
	}
	if err := db.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}
