package repository

import (
	"context"

	"gorm.io/gorm"

	"ksit-nexus/backend/internal/model"
)

// SummaryRepository 单条通知摘要数据访问接口
type SummaryRepository interface {
	Create(ctx context.Context, summary *model.NotificationSummary) error
	GetByNotification(ctx context.Context, notificationID string) (*model.NotificationSummary, error)
	// DeleteByNotification 摘要不可变，重新生成须先删除
	DeleteByNotification(ctx context.Context, notificationID string) error
}

// summaryRepo SummaryRepository 的 GORM 实现
type summaryRepo struct {
	db *gorm.DB
}

// NewSummaryRepo 创建 SummaryRepository 实例
func NewSummaryRepo(db *gorm.DB) SummaryRepository {
	return &summaryRepo{db: db}
}

func (r *summaryRepo) Create(ctx context.Context, summary *model.NotificationSummary) error {
	return r.db.WithContext(ctx).Create(summary).Error
}

func (r *summaryRepo) GetByNotification(ctx context.Context, notificationID string) (*model.NotificationSummary, error) {
	var summary model.NotificationSummary
	err := r.db.WithContext(ctx).
		Where("notification_id = ?", notificationID).
		First(&summary).Error
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

func (r *summaryRepo) DeleteByNotification(ctx context.Context, notificationID string) error {
	return r.db.WithContext(ctx).
		Delete(&model.NotificationSummary{}, "notification_id = ?", notificationID).Error
}
