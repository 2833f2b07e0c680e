package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"ksit-nexus/backend/internal/model"
)

// DeviceRepository 推送设备数据访问接口
type DeviceRepository interface {
	Upsert(ctx context.Context, device *model.Device) error
	ActiveTokens(ctx context.Context, userID string) ([]model.Device, error)
	Deactivate(ctx context.Context, token string) error
	TouchLastActive(ctx context.Context, token string) error
}

// deviceRepo DeviceRepository 的 GORM 实现
type deviceRepo struct {
	db *gorm.DB
}

// NewDeviceRepo 创建 DeviceRepository 实例
func NewDeviceRepo(db *gorm.DB) DeviceRepository {
	return &deviceRepo{db: db}
}

// Upsert 同一 token 重复注册时刷新归属与活跃状态
func (r *deviceRepo) Upsert(ctx context.Context, device *model.Device) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "device_token"}},
			DoUpdates: clause.AssignmentColumns([]string{"user_id", "platform", "is_active", "last_active"}),
		}).
		Create(device).Error
}

func (r *deviceRepo) ActiveTokens(ctx context.Context, userID string) ([]model.Device, error) {
	var devices []model.Device
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND is_active", userID).
		Find(&devices).Error
	if err != nil {
		return nil, err
	}
	return devices, nil
}

func (r *deviceRepo) Deactivate(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Model(&model.Device{}).
		Where("device_token = ?", token).
		Update("is_active", false).Error
}

func (r *deviceRepo) TouchLastActive(ctx context.Context, token string) error {
	return r.db.WithContext(ctx).
		Model(&model.Device{}).
		Where("device_token = ?", token).
		Update("last_active", time.Now()).Error
}
