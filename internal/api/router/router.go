package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ksit-nexus/backend/config"
	"ksit-nexus/backend/internal/api/handler"
	"ksit-nexus/backend/internal/api/middleware"
	"ksit-nexus/backend/pkg/jwt"
	"ksit-nexus/backend/pkg/redis"
)

const (
	maxBodyBytes   = 1 << 20 // 请求体上限 1MB
	authRateLimit  = 10      // 认证接口限流：每窗口次数
	authRateWindow = time.Minute
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.BodyLimit(maxBodyBytes))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证，带限流）
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, authRateLimit, authRateWindow))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 问答机器人（无需认证）
		v1.POST("/chatbot/ask", h.Chatbot.Ask)

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块
			users := authorized.Group("/users")
			{
				users.GET("", middleware.RoleAuth("staff", "admin"), h.User.ListUsers)
				users.PUT("/me", h.User.UpdateProfile)
				users.POST("/me/devices", h.User.RegisterDevice)
				users.GET("/:id", middleware.RoleAuth("staff", "admin"), h.User.GetUser)
			}

			// 通知模块
			notifications := authorized.Group("/notifications")
			{
				notifications.POST("", middleware.RoleAuth("staff", "admin"), h.Notification.Create)
				notifications.GET("", h.Notification.List)
				notifications.GET("/unread-count", h.Notification.UnreadCount)
				notifications.PUT("/read-all", h.Notification.MarkAllRead)
				notifications.GET("/preferences", h.Notification.GetPreference)
				notifications.PUT("/preferences", h.Notification.UpdatePreference)
				notifications.GET("/tiers", h.Notification.ListTiers)
				notifications.POST("/tiers", h.Notification.SetTier)
				notifications.DELETE("/tiers/:id", h.Notification.DeleteTier)
				notifications.GET("/digests", h.Notification.ListDigests)
				notifications.GET("/:id", h.Notification.Get)
				notifications.PUT("/:id/read", h.Notification.MarkRead)
				notifications.GET("/:id/summary", h.Notification.GetSummary)
			}

			// 投诉模块
			complaints := authorized.Group("/complaints")
			{
				complaints.POST("", h.Complaint.Create)
				complaints.GET("", h.Complaint.List)
				complaints.GET("/:id", h.Complaint.Get)
				complaints.PUT("/:id/assign", middleware.RoleAuth("staff", "admin"), h.Complaint.Assign)
				complaints.PUT("/:id/status", middleware.RoleAuth("staff", "admin"), h.Complaint.UpdateStatus)
			}

			// 公告模块
			notices := authorized.Group("/notices")
			{
				notices.GET("", h.Notice.List)
				notices.GET("/:id", h.Notice.Get)
				notices.POST("", middleware.RoleAuth("staff", "admin"), h.Notice.Create)
				notices.PUT("/:id/publish", middleware.RoleAuth("staff", "admin"), h.Notice.Publish)
				notices.DELETE("/:id", middleware.RoleAuth("admin"), h.Notice.Delete)
			}

			// 学习小组模块
			groups := authorized.Group("/study-groups")
			{
				groups.POST("", h.StudyGroup.Create)
				groups.GET("", h.StudyGroup.List)
				groups.GET("/:id", h.StudyGroup.Get)
				groups.POST("/:id/join", h.StudyGroup.Join)
				groups.POST("/:id/leave", h.StudyGroup.Leave)
			}

			// 资源预约模块
			reservations := authorized.Group("/reservations")
			{
				reservations.POST("", h.Reservation.Create)
				reservations.GET("", h.Reservation.List)
				reservations.GET("/:id", h.Reservation.Get)
				reservations.PUT("/:id/decide", middleware.RoleAuth("staff", "admin"), h.Reservation.Decide)
				reservations.PUT("/:id/cancel", h.Reservation.Cancel)
			}

			// 管理后台
			admin := authorized.Group("/admin")
			admin.Use(middleware.RoleAuth("admin"))
			{
				admin.POST("/priority-rules", h.Notification.CreateRule)
				admin.GET("/priority-rules", h.Notification.ListRules)
				admin.DELETE("/priority-rules/:id", h.Notification.DeleteRule)
				admin.POST("/digests/run", h.Notification.RunDigests)
				admin.POST("/faqs", h.Chatbot.CreateFAQ)
				admin.GET("/faqs", h.Chatbot.ListFAQs)
				admin.PUT("/faqs/:id", h.Chatbot.UpdateFAQ)
				admin.DELETE("/faqs/:id", h.Chatbot.DeleteFAQ)
				admin.GET("/export/notifications", h.Export.ExportNotificationReport)
			}
		}
	}

	return r
}
