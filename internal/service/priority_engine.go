package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"ksit-nexus/backend/internal/model"
	"ksit-nexus/backend/internal/repository"
)

// PriorityEngine 优先级规则引擎
// 按 (通知类型, 关键词) 匹配规则决定通知优先级：
// 用户规则先于全局规则，同级按创建时间排序，首条命中即返回。
type PriorityEngine interface {
	// Resolve 解析通知优先级；无规则命中时返回 fallback 与 nil 规则
	Resolve(ctx context.Context, userID string, typ model.NotificationType, title, message string, fallback model.Priority) (model.Priority, *model.PriorityRule, error)
}

type priorityEngine struct {
	rules  repository.PriorityRuleRepository
	logger *zap.Logger
}

// NewPriorityEngine 创建 PriorityEngine 实例
func NewPriorityEngine(rules repository.PriorityRuleRepository, logger *zap.Logger) PriorityEngine {
	return &priorityEngine{rules: rules, logger: logger}
}

func (e *priorityEngine) Resolve(ctx context.Context, userID string, typ model.NotificationType, title, message string, fallback model.Priority) (model.Priority, *model.PriorityRule, error) {
	rules, err := e.rules.ListActive(ctx, userID, typ)
	if err != nil {
		e.logger.Error("查询优先级规则失败", zap.Error(err))
		return "", nil, err
	}

	// 关键词对标题与正文做大小写不敏感的子串匹配
	haystack := strings.ToLower(title + "\n" + message)
	for i := range rules {
		rule := &rules[i]
		if strings.Contains(haystack, strings.ToLower(rule.Keyword)) {
			return rule.Priority, rule, nil
		}
	}

	if !fallback.Valid() {
		fallback = model.PriorityMedium
	}
	return fallback, nil, nil
}
