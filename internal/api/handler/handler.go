package handler

import "ksit-nexus/backend/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth         *AuthHandler
	User         *UserHandler
	Notification *NotificationHandler
	Complaint    *ComplaintHandler
	Notice       *NoticeHandler
	StudyGroup   *StudyGroupHandler
	Reservation  *ReservationHandler
	Chatbot      *ChatbotHandler
	Export       *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:         NewAuthHandler(svc.Auth, svc.User),
		User:         NewUserHandler(svc.User),
		Notification: NewNotificationHandler(svc.Notification, svc.Digest),
		Complaint:    NewComplaintHandler(svc.Complaint),
		Notice:       NewNoticeHandler(svc.Notice),
		StudyGroup:   NewStudyGroupHandler(svc.StudyGroup),
		Reservation:  NewReservationHandler(svc.Reservation),
		Chatbot:      NewChatbotHandler(svc.Chatbot),
		Export:       NewExportHandler(svc.Export),
	}
}
