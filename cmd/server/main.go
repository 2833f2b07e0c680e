package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"ksit-nexus/backend/config"
	"ksit-nexus/backend/internal/api/handler"
	"ksit-nexus/backend/internal/api/router"
	"ksit-nexus/backend/internal/notify"
	"ksit-nexus/backend/internal/repository"
	"ksit-nexus/backend/internal/service"
	"ksit-nexus/backend/pkg/database"
	"ksit-nexus/backend/pkg/jwt"
	applogger "ksit-nexus/backend/pkg/logger"
	"ksit-nexus/backend/pkg/redis"
)

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

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	var rdb *redis.Client
	rdb, err = redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，黑名单/未读缓存/摘要锁功能降级", zap.Error(err))
		rdb = nil
	}

	// 5. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 6. 依赖注入: Repository → 通道投递器 → Service → Handler
	repo := repository.NewRepository(db)
	dispatcher := notify.NewDispatcher(&cfg.Notification, repo, buildSenders(cfg, repo, logger), logger)
	svc := service.NewService(cfg, repo, jwtMgr, rdb, dispatcher, logger)
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	closeDB, _ := db.DB()
	if closeDB != nil {
		closeDB.Close()
	}

	// 关闭 Redis 连接
	rdb.Close()

	logger.Info("服务器已关闭")
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
