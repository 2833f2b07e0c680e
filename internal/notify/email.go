package notify

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"

	"ksit-nexus/backend/config"
	"ksit-nexus/backend/internal/model"
)

// EmailSender SMTP 邮件投递器（gomail）
type EmailSender struct {
	cfg    *config.MailConfig
	logger *zap.Logger
}

// NewEmailSender 创建邮件投递器
func NewEmailSender(cfg *config.MailConfig, logger *zap.Logger) *EmailSender {
	return &EmailSender{cfg: cfg, logger: logger}
}

// Channel 返回通道标识
func (s *EmailSender) Channel() Channel { return ChannelEmail }

// Send 发送通知邮件；用户无邮箱时直接视为失败
func (s *EmailSender) Send(ctx context.Context, user *model.User, n *model.Notification) error {
	if user.Email == "" {
		return fmt.Errorf("用户 %s 未设置邮箱", user.UserID)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.cfg.From)
	m.SetHeader("To", user.Email)
	m.SetHeader("Subject", fmt.Sprintf("[KSIT Nexus] %s", n.Title))
	m.SetBody("text/html", s.renderBody(user, n))

	d := gomail.NewDialer(s.cfg.SMTPHost, s.cfg.SMTPPort, s.cfg.Username, s.cfg.Password)
	if err := d.DialAndSend(m); err != nil {
		s.logger.Warn("邮件发送失败",
			zap.String("notification_id", n.NotificationID),
			zap.String("to", user.Email),
			zap.Error(err))
		return err
	}
	return nil
}

func (s *EmailSender) renderBody(user *model.User, n *model.Notification) string {
	return fmt.Sprintf(`
		<div style="font-family: sans-serif; max-width: 600px;">
			<h2>%s</h2>
			<p>%s 同学/老师，您好：</p>
			<p>%s</p>
			<hr/>
			<p style="color: #888; font-size: 12px;">
				此邮件由 KSIT Nexus 系统自动发送，请勿直接回复。
				可在「通知偏好设置」中关闭邮件提醒。
			</p>
		</div>`,
		n.Title, user.Name, n.Message)
}
