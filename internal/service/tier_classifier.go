package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ksit-nexus/backend/config"
	"ksit-nexus/backend/internal/model"
	"ksit-nexus/backend/internal/repository"
)

// TierClassifier 投递分层分类器
// 根据用户的分层设置决定通知的投递档位；urgent 优先级无条件即时投递。
type TierClassifier interface {
	Classify(ctx context.Context, userID string, typ model.NotificationType, priority model.Priority) (model.TierLabel, error)
}

type tierClassifier struct {
	cfg    *config.NotificationConfig
	tiers  repository.TierRepository
	logger *zap.Logger
}

// NewTierClassifier 创建 TierClassifier 实例
func NewTierClassifier(cfg *config.NotificationConfig, tiers repository.TierRepository, logger *zap.Logger) TierClassifier {
	return &tierClassifier{cfg: cfg, tiers: tiers, logger: logger}
}

func (c *tierClassifier) Classify(ctx context.Context, userID string, typ model.NotificationType, priority model.Priority) (model.TierLabel, error) {
	// urgent 不可折叠进摘要，分层设置对其无效
	if priority == model.PriorityUrgent {
		return model.TierImmediate, nil
	}

	tier, err := c.tiers.FindForType(ctx, userID, typ)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.defaultTier(), nil
		}
		c.logger.Error("查询投递分层失败", zap.Error(err))
		return "", err
	}
	return tier.Tier, nil
}

func (c *tierClassifier) defaultTier() model.TierLabel {
	label := model.TierLabel(c.cfg.DefaultTier)
	if !label.Valid() {
		return model.TierStandard
	}
	return label
}
