package service

import (
	"go.uber.org/zap"

	"ksit-nexus/backend/config"
	"ksit-nexus/backend/internal/repository"
	"ksit-nexus/backend/pkg/jwt"
	"ksit-nexus/backend/pkg/redis"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth         AuthService
	User         UserService
	Notification NotificationService
	Digest       DigestService
	Complaint    ComplaintService
	Notice       NoticeService
	StudyGroup   StudyGroupService
	Reservation  ReservationService
	Chatbot      ChatbotService
	Export       ExportService
}

// NewService 创建 Service 聚合
// dispatcher 由 cmd 层装配（通道投递器依赖外部凭据），其余依赖在此接线
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	dispatcher Dispatcher,
	logger *zap.Logger,
) *Service {
	engine := NewPriorityEngine(repo.PriorityRule, logger)
	classifier := NewTierClassifier(&cfg.Notification, repo.Tier, logger)
	summarizer := NewSummaryGenerator()

	notification := NewNotificationService(
		&cfg.Notification, repo, engine, classifier, summarizer, dispatcher, rdb, logger)

	return &Service{
		Auth:         NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		User:         NewUserService(repo, logger),
		Notification: notification,
		Digest:       NewDigestService(&cfg.Notification, repo, summarizer, rdb, logger),
		Complaint:    NewComplaintService(repo, notification, logger),
		Notice:       NewNoticeService(repo, notification, logger),
		StudyGroup:   NewStudyGroupService(repo, notification, logger),
		Reservation:  NewReservationService(repo, notification, logger),
		Chatbot:      NewChatbotService(repo, logger),
		Export:       NewExportService(repo, logger),
	}
}
