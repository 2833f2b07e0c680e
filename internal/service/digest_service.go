package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ksit-nexus/backend/config"
	"ksit-nexus/backend/internal/dto"
	"ksit-nexus/backend/internal/model"
	"ksit-nexus/backend/internal/repository"
	pkgerrors "ksit-nexus/backend/pkg/errors"
)

// 摘要生成锁的保护时长，覆盖单用户一次生成的最长耗时
const digestLockTTL = 2 * time.Minute

// DigestLock 摘要任务锁入口（pkg/redis 实现）
// 锁只用来挡并发任务的重复劳动，幂等性由数据库唯一索引保证
type DigestLock interface {
	AcquireDigestLock(ctx context.Context, key string, ttl time.Duration) (bool, error)
	ReleaseDigestLock(ctx context.Context, key string) error
}

// DigestService 摘要汇总业务接口
// 同一 (用户, 周期, 窗口) 至多生成一份摘要；重复触发返回既有记录
type DigestService interface {
	// GenerateDailyDigest 生成用户的每日摘要，窗口为 firedAt 前 24 小时
	// 窗口内无待汇总通知时返回 (nil, nil)
	GenerateDailyDigest(ctx context.Context, userID string, firedAt time.Time) (*model.NotificationDigest, error)
	// GenerateWeeklyDigest 生成用户的每周摘要，窗口为 firedAt 前 7 天
	GenerateWeeklyDigest(ctx context.Context, userID string, firedAt time.Time) (*model.NotificationDigest, error)
	// RunDaily 为窗口内有通知的全部用户生成每日摘要，返回实际生成数
	RunDaily(ctx context.Context, firedAt time.Time) (int, error)
	// RunWeekly 为窗口内有通知的全部用户生成每周摘要
	RunWeekly(ctx context.Context, firedAt time.Time) (int, error)
	ListDigests(ctx context.Context, userID string, kind string, page, pageSize int) ([]dto.DigestResponse, int64, error)
}

type digestService struct {
	cfg        *config.NotificationConfig
	repo       *repository.Repository
	summarizer SummaryGenerator
	lock       DigestLock
	logger     *zap.Logger
}

// NewDigestService 创建 DigestService 实例
func NewDigestService(
	cfg *config.NotificationConfig,
	repo *repository.Repository,
	summarizer SummaryGenerator,
	lock DigestLock,
	logger *zap.Logger,
) DigestService {
	return &digestService{
		cfg:        cfg,
		repo:       repo,
		summarizer: summarizer,
		lock:       lock,
		logger:     logger,
	}
}

func (s *digestService) GenerateDailyDigest(ctx context.Context, userID string, firedAt time.Time) (*model.NotificationDigest, error) {
	return s.generate(ctx, userID, model.PeriodDaily, firedAt.Add(-24*time.Hour), firedAt)
}

func (s *digestService) GenerateWeeklyDigest(ctx context.Context, userID string, firedAt time.Time) (*model.NotificationDigest, error) {
	return s.generate(ctx, userID, model.PeriodWeekly, firedAt.Add(-7*24*time.Hour), firedAt)
}

func (s *digestService) generate(ctx context.Context, userID string, kind model.PeriodKind, windowStart, windowEnd time.Time) (*model.NotificationDigest, error) {
	// 1. 既有摘要直接返回，不重复生成
	existing, err := s.repo.Digest.FindByWindow(ctx, userID, kind, windowStart)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	// 2. 并发任务间的挡板锁；拿不到锁说明另一实例正在生成，按已处理对待
	lockKey := fmt.Sprintf("%s:%s:%d", userID, kind, windowStart.Unix())
	acquired, err := s.lock.AcquireDigestLock(ctx, lockKey, digestLockTTL)
	if err != nil {
		s.logger.Warn("获取摘要锁失败，继续依赖唯一索引兜底", zap.Error(err))
	} else if !acquired {
		return s.findExisting(ctx, userID, kind, windowStart)
	} else {
		defer func() {
			if rerr := s.lock.ReleaseDigestLock(context.WithoutCancel(ctx), lockKey); rerr != nil {
				s.logger.Warn("释放摘要锁失败", zap.Error(rerr))
			}
		}()
	}

	// 3. 窗口内未汇总过的通知；空窗口不产出记录
	notifications, err := s.repo.Notification.ListUndigested(ctx, userID, kind, windowStart, windowEnd)
	if err != nil {
		return nil, err
	}
	if len(notifications) == 0 {
		return nil, nil
	}

	// 4. 生成汇总文本并落库
	digest := &model.NotificationDigest{
		UserID:        userID,
		PeriodKind:    kind,
		WindowStart:   windowStart,
		WindowEnd:     windowEnd,
		Title:         digestTitle(kind, windowEnd),
		Summary:       s.summarizer.DigestText(notifications, s.cfg.DigestMaxLength),
		IncludedCount: len(notifications),
		GeneratedAt:   windowEnd,
	}
	ids := make([]string, len(notifications))
	for i := range notifications {
		ids[i] = notifications[i].NotificationID
	}

	if err := s.repo.Digest.CreateWithItems(ctx, digest, ids); err != nil {
		// 唯一索引兜底：并发写入已完成，改为返回既有记录
		if errors.Is(err, pkgerrors.ErrDuplicateDigest) {
			return s.findExisting(ctx, userID, kind, windowStart)
		}
		s.logger.Error("写入通知摘要失败",
			zap.String("user_id", userID),
			zap.String("period_kind", string(kind)),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("通知摘要生成完成",
		zap.String("user_id", userID),
		zap.String("period_kind", string(kind)),
		zap.Int("included", digest.IncludedCount))
	return digest, nil
}

func (s *digestService) findExisting(ctx context.Context, userID string, kind model.PeriodKind, windowStart time.Time) (*model.NotificationDigest, error) {
	existing, err := s.repo.Digest.FindByWindow(ctx, userID, kind, windowStart)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return existing, nil
}

func (s *digestService) RunDaily(ctx context.Context, firedAt time.Time) (int, error) {
	return s.run(ctx, model.PeriodDaily, firedAt.Add(-24*time.Hour), firedAt)
}

func (s *digestService) RunWeekly(ctx context.Context, firedAt time.Time) (int, error) {
	return s.run(ctx, model.PeriodWeekly, firedAt.Add(-7*24*time.Hour), firedAt)
}

// run 按用户迭代生成；单个用户失败只记日志，不中断整轮任务
func (s *digestService) run(ctx context.Context, kind model.PeriodKind, windowStart, windowEnd time.Time) (int, error) {
	userIDs, err := s.repo.Notification.UserIDsInWindow(ctx, windowStart, windowEnd)
	if err != nil {
		return 0, err
	}

	generated := 0
	for _, userID := range userIDs {
		digest, err := s.generate(ctx, userID, kind, windowStart, windowEnd)
		if err != nil {
			s.logger.Error("用户摘要生成失败",
				zap.String("user_id", userID),
				zap.String("period_kind", string(kind)),
				zap.Error(err))
			continue
		}
		if digest != nil {
			generated++
		}
	}
	return generated, nil
}

func (s *digestService) ListDigests(ctx context.Context, userID string, kind string, page, pageSize int) ([]dto.DigestResponse, int64, error) {
	periodKind := model.PeriodKind(kind)
	if kind != "" && !periodKind.Valid() {
		return nil, 0, pkgerrors.ErrInvalidEnum
	}

	digests, total, err := s.repo.Digest.ListByUser(ctx, userID, periodKind, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]dto.DigestResponse, len(digests))
	for i := range digests {
		items[i] = *toDigestResponse(&digests[i])
	}
	return items, total, nil
}

func digestTitle(kind model.PeriodKind, windowEnd time.Time) string {
	if kind == model.PeriodWeekly {
		return fmt.Sprintf("每周通知摘要 (%s)", windowEnd.Format("2006-01-02"))
	}
	return fmt.Sprintf("每日通知摘要 (%s)", windowEnd.Format("2006-01-02"))
}

func toDigestResponse(d *model.NotificationDigest) *dto.DigestResponse {
	return &dto.DigestResponse{
		ID:            d.DigestID,
		PeriodKind:    string(d.PeriodKind),
		WindowStart:   d.WindowStart.Format(time.RFC3339),
		WindowEnd:     d.WindowEnd.Format(time.RFC3339),
		Title:         d.Title,
		Summary:       d.Summary,
		IncludedCount: d.IncludedCount,
		GeneratedAt:   d.GeneratedAt.Format(time.RFC3339),
	}
}
