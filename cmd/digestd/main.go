package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ksit-nexus/backend/config"
	"ksit-nexus/backend/internal/jobs"
	"ksit-nexus/backend/internal/notify"
	"ksit-nexus/backend/internal/repository"
	"ksit-nexus/backend/internal/service"
	"ksit-nexus/backend/pkg/database"
	"ksit-nexus/backend/pkg/jwt"
	applogger "ksit-nexus/backend/pkg/logger"
	"ksit-nexus/backend/pkg/redis"
)

// digestd 定时任务守护进程：每日/每周摘要生成与未读通知升级
// 独立于 API 服务运行，多实例并发时由摘要锁与数据库唯一索引兜底
func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("摘要任务进程启动中...",
		zap.String("daily_cron", cfg.Notification.DailyDigestCron),
		zap.String("weekly_cron", cfg.Notification.WeeklyDigestCron),
		zap.String("escalation_cron", cfg.Notification.EscalationCron),
	)

	// 3. 连接数据库（迁移由 API 服务负责，此处只校验连接）
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 4. 连接 Redis（失败时降级：摘要幂等完全依赖数据库唯一索引）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，摘要锁功能降级", zap.Error(err))
		rdb = nil
	}

	// 5. 装配依赖：升级任务会重新分发通知，需要完整的通道投递器
	repo := repository.NewRepository(db)
	dispatcher := notify.NewDispatcher(&cfg.Notification, repo, buildSenders(cfg, repo, logger), logger)
	svc := service.NewService(cfg, repo, jwt.NewManager(&cfg.Auth), rdb, dispatcher, logger)

	// 6. 注册并启动调度器
	sched := jobs.NewScheduler(&cfg.Notification, svc, logger)
	if err := sched.Register(); err != nil {
		logger.Fatal("注册定时任务失败", zap.Error(err))
	}
	sched.Start()
	logger.Info("定时任务调度器已启动")

	// 7. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，等待运行中任务结束...", zap.String("signal", sig.String()))
	sched.Stop()

	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}
	rdb.Close()

	logger.Info("摘要任务进程已退出")
}

// buildSenders 按配置装配启用的投递通道；单个通道初始化失败只降级该通道
func buildSenders(cfg *config.Config, repo *repository.Repository, logger *zap.Logger) []notify.Sender {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	var senders []notify.Sender
	if cfg.Mail.Enabled {
		senders = append(senders, notify.NewEmailSender(&cfg.Mail, logger))
	}
	if cfg.Push.Enabled {
		push, err := notify.NewPushSender(ctx, &cfg.Push, repo.Device, logger)
		if err != nil {
			logger.Warn("FCM 推送通道初始化失败，已禁用", zap.Error(err))
		} else {
			senders = append(senders, push)
		}
	}
	if cfg.SMS.Enabled {
		sms, err := notify.NewSMSSender(ctx, &cfg.SMS, logger)
		if err != nil {
			logger.Warn("SNS 短信通道初始化失败，已禁用", zap.Error(err))
		} else {
			senders = append(senders, sms)
		}
	}
	return senders
}
