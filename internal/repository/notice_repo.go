package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ksit-nexus/backend/internal/model"
)

// NoticeRepository 公告数据访问接口
type NoticeRepository interface {
	Create(ctx context.Context, notice *model.Notice) error
	GetByID(ctx context.Context, id string) (*model.Notice, error)
	List(ctx context.Context, category string, publishedOnly bool, offset, limit int) ([]model.Notice, int64, error)
	Update(ctx context.Context, notice *model.Notice) error
	Delete(ctx context.Context, id string) error
}

// noticeRepo NoticeRepository 的 GORM 实现
type noticeRepo struct {
	db *gorm.DB
}

// NewNoticeRepo 创建 NoticeRepository 实例
func NewNoticeRepo(db *gorm.DB) NoticeRepository {
	return &noticeRepo{db: db}
}

func (r *noticeRepo) Create(ctx context.Context, notice *model.Notice) error {
	return r.db.WithContext(ctx).Create(notice).Error
}

func (r *noticeRepo) GetByID(ctx context.Context, id string) (*model.Notice, error) {
	var notice model.Notice
	err := r.db.WithContext(ctx).
		Where("notice_id = ?", id).
		First(&notice).Error
	if err != nil {
		return nil, err
	}
	return &notice, nil
}

func (r *noticeRepo) List(ctx context.Context, category string, publishedOnly bool, offset, limit int) ([]model.Notice, int64, error) {
	var notices []model.Notice
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Notice{})
	if category != "" {
		db = db.Where("category = ?", category)
	}
	if publishedOnly {
		db = db.Where("is_published").
			Where("expires_at IS NULL OR expires_at > ?", time.Now())
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).
		Order("published_at DESC NULLS LAST, created_at DESC").
		Find(&notices).Error; err != nil {
		return nil, 0, err
	}
	return notices, total, nil
}

func (r *noticeRepo) Update(ctx context.Context, notice *model.Notice) error {
	return r.db.WithContext(ctx).Save(notice).Error
}

func (r *noticeRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&model.Notice{}, "notice_id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
