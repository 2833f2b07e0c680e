package repository

import (
	"context"

	"gorm.io/gorm"

	"ksit-nexus/backend/internal/model"
)

// PriorityRuleRepository 优先级规则数据访问接口
type PriorityRuleRepository interface {
	Create(ctx context.Context, rule *model.PriorityRule) error
	GetByID(ctx context.Context, id string) (*model.PriorityRule, error)
	// ListActive 返回 (用户规则在前, 全局规则在后) 的稳定顺序，供首命中扫描
	ListActive(ctx context.Context, userID string, typ model.NotificationType) ([]model.PriorityRule, error)
	List(ctx context.Context, offset, limit int) ([]model.PriorityRule, int64, error)
	Update(ctx context.Context, rule *model.PriorityRule) error
	Delete(ctx context.Context, id string) error
}

// priorityRuleRepo PriorityRuleRepository 的 GORM 实现
type priorityRuleRepo struct {
	db *gorm.DB
}

// NewPriorityRuleRepo 创建 PriorityRuleRepository 实例
func NewPriorityRuleRepo(db *gorm.DB) PriorityRuleRepository {
	return &priorityRuleRepo{db: db}
}

func (r *priorityRuleRepo) Create(ctx context.Context, rule *model.PriorityRule) error {
	return r.db.WithContext(ctx).Create(rule).Error
}

func (r *priorityRuleRepo) GetByID(ctx context.Context, id string) (*model.PriorityRule, error) {
	var rule model.PriorityRule
	err := r.db.WithContext(ctx).
		Where("rule_id = ?", id).
		First(&rule).Error
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// ListActive 排序键：用户规则优先于全局，再按创建时间与 rule_id 兜底，保证评估顺序可复现
func (r *priorityRuleRepo) ListActive(ctx context.Context, userID string, typ model.NotificationType) ([]model.PriorityRule, error) {
	var rules []model.PriorityRule
	err := r.db.WithContext(ctx).
		Where("is_active").
		Where("notification_type = ?", typ).
		Where("user_id = ? OR user_id IS NULL", userID).
		Order("(user_id IS NULL) ASC, created_at ASC, rule_id ASC").
		Find(&rules).Error
	if err != nil {
		return nil, err
	}
	return rules, nil
}

func (r *priorityRuleRepo) List(ctx context.Context, offset, limit int) ([]model.PriorityRule, int64, error) {
	var rules []model.PriorityRule
	var total int64

	db := r.db.WithContext(ctx).Model(&model.PriorityRule{})
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&rules).Error; err != nil {
		return nil, 0, err
	}
	return rules, total, nil
}

func (r *priorityRuleRepo) Update(ctx context.Context, rule *model.PriorityRule) error {
	return r.db.WithContext(ctx).Save(rule).Error
}

func (r *priorityRuleRepo) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Delete(&model.PriorityRule{}, "rule_id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
