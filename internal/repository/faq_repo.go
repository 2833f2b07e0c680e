package repository

import (
	"context"

	"gorm.io/gorm"

	"ksit-nexus/backend/internal/model"
)

// FAQRepository 常见问题知识库数据访问接口
type FAQRepository interface {
	Create(ctx context.Context, entry *model.FAQEntry) error
	GetByID(ctx context.Context, id string) (*model.FAQEntry, error)
	ListActive(ctx context.Context) ([]model.FAQEntry, error)
	List(ctx context.Context, offset, limit int) ([]model.FAQEntry, int64, error)
	Update(ctx context.Context, entry *model.FAQEntry) error
	Delete(ctx context.Context, id string) error
	IncrementHit(ctx context.Context, id string) error
}

// faqRepo FAQRepository 的 GORM 实现
type faqRepo struct {
	db *gorm.DB
}

// NewFAQRepo 创建 FAQRepository 实例
func NewFAQRepo(db *gorm.DB) FAQRepository {
	return &faqRepo{db: db}
}

func (r *faqRepo) Create(ctx context.Context, entry *model.FAQEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *faqRepo) GetByID(ctx context.Context, id string) (*model.FAQEntry, error) {
	var entry model.FAQEntry
	err := r.db.WithContext(ctx).
		Where("faq_id = ?", id).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *faqRepo) ListActive(ctx context.Context) ([]model.FAQEntry, error) {
	var entries []model.FAQEntry
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at ASC").
		Find(&entries).Error
	return entries, err
}

func (r *faqRepo) List(ctx context.Context, offset, limit int) ([]model.FAQEntry, int64, error) {
	var entries []model.FAQEntry
	var total int64

	db := r.db.WithContext(ctx).Model(&model.FAQEntry{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

func (r *faqRepo) Update(ctx context.Context, entry *model.FAQEntry) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

func (r *faqRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&model.FAQEntry{}, "faq_id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// IncrementHit 命中计数自增,用于统计高频问题
func (r *faqRepo) IncrementHit(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&model.FAQEntry{}).
		Where("faq_id = ?", id).
		UpdateColumn("hit_count", gorm.Expr("hit_count + 1")).Error
}
