package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"ksit-nexus/backend/internal/model"
	pkgerrors "ksit-nexus/backend/pkg/errors"
)

// DigestRepository 通知摘要汇总数据访问接口
type DigestRepository interface {
	// FindByWindow 查找同 (用户, 周期, 窗口) 的既有摘要；不存在返回 gorm.ErrRecordNotFound
	FindByWindow(ctx context.Context, userID string, kind model.PeriodKind, windowStart time.Time) (*model.NotificationDigest, error)
	// CreateWithItems 单事务写入摘要及其包含的通知；唯一索引冲突返回 pkgerrors.ErrDuplicateDigest
	CreateWithItems(ctx context.Context, digest *model.NotificationDigest, notificationIDs []string) error
	ListByUser(ctx context.Context, userID string, kind model.PeriodKind, offset, limit int) ([]model.NotificationDigest, int64, error)
	ListAll(ctx context.Context, since time.Time) ([]model.NotificationDigest, error)
}

// digestRepo DigestRepository 的 GORM 实现
type digestRepo struct {
	db *gorm.DB
}

// NewDigestRepo 创建 DigestRepository 实例
func NewDigestRepo(db *gorm.DB) DigestRepository {
	return &digestRepo{db: db}
}

func (r *digestRepo) FindByWindow(ctx context.Context, userID string, kind model.PeriodKind, windowStart time.Time) (*model.NotificationDigest, error) {
	var digest model.NotificationDigest
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND period_kind = ? AND window_start = ?", userID, kind, windowStart).
		First(&digest).Error
	if err != nil {
		return nil, err
	}
	return &digest, nil
}

func (r *digestRepo) CreateWithItems(ctx context.Context, digest *model.NotificationDigest, notificationIDs []string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(digest).Error; err != nil {
			return err
		}
		items := make([]model.NotificationDigestItem, len(notificationIDs))
		for i, id := range notificationIDs {
			items[i] = model.NotificationDigestItem{
				DigestID:       digest.DigestID,
				NotificationID: id,
			}
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 并发任务已写入同窗口摘要，交由调用方按无操作处理
		return pkgerrors.ErrDuplicateDigest
	}
	return err
}

func (r *digestRepo) ListByUser(ctx context.Context, userID string, kind model.PeriodKind, offset, limit int) ([]model.NotificationDigest, int64, error) {
	var digests []model.NotificationDigest
	var total int64

	db := r.db.WithContext(ctx).Model(&model.NotificationDigest{}).
		Where("user_id = ?", userID)
	if kind != "" {
		db = db.Where("period_kind = ?", kind)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).
		Order("window_start DESC").
		Find(&digests).Error; err != nil {
		return nil, 0, err
	}
	return digests, total, nil
}

func (r *digestRepo) ListAll(ctx context.Context, since time.Time) ([]model.NotificationDigest, error) {
	var digests []model.NotificationDigest
	err := r.db.WithContext(ctx).
		Where("generated_at >= ?", since).
		Order("generated_at ASC").
		Find(&digests).Error
	if err != nil {
		return nil, err
	}
	return digests, nil
}
