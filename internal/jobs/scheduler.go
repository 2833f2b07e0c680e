package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"ksit-nexus/backend/config"
	"ksit-nexus/backend/internal/service"
)

// 单次任务的总超时，含全部重试
const jobTimeout = 10 * time.Minute

// Scheduler 定时任务调度器
// 注册三类任务：每日摘要、每周摘要、未读升级。
// 任务触发时刻 (firedAt) 作为摘要窗口锚点传入，保证多实例同刻触发时窗口一致。
type Scheduler struct {
	cron   *cron.Cron
	cfg    *config.NotificationConfig
	svc    *service.Service
	logger *zap.Logger
}

// NewScheduler 创建调度器（标准 5 段 cron 表达式）
func NewScheduler(cfg *config.NotificationConfig, svc *service.Service, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		cfg:    cfg,
		svc:    svc,
		logger: logger,
	}
}

// Register 注册全部任务
func (s *Scheduler) Register() error {
	jobs := []struct {
		name string
		spec string
		run  func(ctx context.Context, firedAt time.Time) error
	}{
		{
			name: "daily_digest",
			spec: s.cfg.DailyDigestCron,
			run: func(ctx context.Context, firedAt time.Time) error {
				n, err := s.svc.Digest.RunDaily(ctx, firedAt)
				if err == nil {
					s.logger.Info("每日摘要任务完成", zap.Int("generated", n))
				}
				return err
			},
		},
		{
			name: "weekly_digest",
			spec: s.cfg.WeeklyDigestCron,
			run: func(ctx context.Context, firedAt time.Time) error {
				n, err := s.svc.Digest.RunWeekly(ctx, firedAt)
				if err == nil {
					s.logger.Info("每周摘要任务完成", zap.Int("generated", n))
				}
				return err
			},
		},
		{
			name: "escalation",
			spec: s.cfg.EscalationCron,
			run: func(ctx context.Context, firedAt time.Time) error {
				_, err := s.svc.Notification.EscalateStale(ctx, firedAt)
				return err
			},
		},
	}

	for _, job := range jobs {
		job := job
		_, err := s.cron.AddFunc(job.spec, func() {
			s.runWithRetry(job.name, job.run)
		})
		if err != nil {
			return err
		}
		s.logger.Info("定时任务已注册",
			zap.String("job", job.name), zap.String("spec", job.spec))
	}
	return nil
}

// runWithRetry 有限次重试执行任务；窗口锚点固定为首次触发时刻，重试不改变窗口
func (s *Scheduler) runWithRetry(name string, run func(ctx context.Context, firedAt time.Time) error) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	firedAt := time.Now()
	attempts := s.cfg.JobRetryAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = run(ctx, firedAt); err == nil {
			return
		}
		s.logger.Error("定时任务执行失败",
			zap.String("job", name),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err))
		if attempt < attempts {
			select {
			case <-time.After(s.cfg.JobRetryDelay):
			case <-ctx.Done():
				return
			}
		}
	}
	s.logger.Error("定时任务重试耗尽", zap.String("job", name), zap.Error(err))
}

// Start 启动调度循环（异步）
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("定时任务调度器已启动")
}

// Stop 停止调度并等待在途任务结束
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("定时任务调度器已停止")
}
