package repository

import (
	"context"

	"gorm.io/gorm"

	"ksit-nexus/backend/internal/model"
)

// TierRepository 投递分层数据访问接口
type TierRepository interface {
	ListByUser(ctx context.Context, userID string) ([]model.NotificationTier, error)
	// FindForType 查找包含指定类型的分层记录；不存在返回 gorm.ErrRecordNotFound
	FindForType(ctx context.Context, userID string, typ model.NotificationType) (*model.NotificationTier, error)
	// Replace 以 last-write-wins 语义落库：先从既有记录中摘除受影响的类型，再插入新记录，单事务完成
	Replace(ctx context.Context, tier *model.NotificationTier) error
	Delete(ctx context.Context, id, userID string) error
}

// tierRepo TierRepository 的 GORM 实现
type tierRepo struct {
	db *gorm.DB
}

// NewTierRepo 创建 TierRepository 实例
func NewTierRepo(db *gorm.DB) TierRepository {
	return &tierRepo{db: db}
}

func (r *tierRepo) ListByUser(ctx context.Context, userID string) ([]model.NotificationTier, error) {
	var tiers []model.NotificationTier
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&tiers).Error
	if err != nil {
		return nil, err
	}
	return tiers, nil
}

func (r *tierRepo) FindForType(ctx context.Context, userID string, typ model.NotificationType) (*model.NotificationTier, error) {
	var tier model.NotificationTier
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("? = ANY(types)", string(typ)).
		First(&tier).Error
	if err != nil {
		return nil, err
	}
	return &tier, nil
}

// Replace 合并策略：受影响类型从旧记录摘除（摘空即删行），保证 (用户, 类型) 至多归属一条记录
func (r *tierRepo) Replace(ctx context.Context, tier *model.NotificationTier) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing []model.NotificationTier
		if err := tx.Where("user_id = ?", tier.UserID).Find(&existing).Error; err != nil {
			return err
		}

		affected := make(map[string]bool, len(tier.Types))
		for _, t := range tier.Types {
			affected[t] = true
		}

		for i := range existing {
			old := &existing[i]
			remaining := make(model.StringArray, 0, len(old.Types))
			for _, t := range old.Types {
				if !affected[t] {
					remaining = append(remaining, t)
				}
			}
			if len(remaining) == len(old.Types) {
				continue // 未受影响
			}
			if len(remaining) == 0 {
				if err := tx.Delete(&model.NotificationTier{}, "tier_id = ?", old.TierID).Error; err != nil {
					return err
				}
				continue
			}
			if err := tx.Model(&model.NotificationTier{}).
				Where("tier_id = ?", old.TierID).
				Update("types", remaining).Error; err != nil {
				return err
			}
		}

		return tx.Create(tier).Error
	})
}

func (r *tierRepo) Delete(ctx context.Context, id, userID string) error {
	result := r.db.WithContext(ctx).
		Delete(&model.NotificationTier{}, "tier_id = ? AND user_id = ?", id, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
