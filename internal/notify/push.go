package notify

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"firebase.google.com/go/v4/messaging"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"ksit-nexus/backend/config"
	"ksit-nexus/backend/internal/model"
	"ksit-nexus/backend/internal/repository"
)

// PushSender Firebase Cloud Messaging 推送投递器
// 向用户全部活跃设备多播，并在回包中清理已失效的 token
type PushSender struct {
	client  *messaging.Client
	devices repository.DeviceRepository
	logger  *zap.Logger
}

// NewPushSender 初始化 Firebase App 并创建推送投递器
func NewPushSender(ctx context.Context, cfg *config.PushConfig, devices repository.DeviceRepository, logger *zap.Logger) (*PushSender, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(cfg.CredentialsFile))
	if err != nil {
		return nil, fmt.Errorf("初始化 Firebase App 失败: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("初始化 FCM 客户端失败: %w", err)
	}
	return &PushSender{client: client, devices: devices, logger: logger}, nil
}

// Channel 返回通道标识
func (s *PushSender) Channel() Channel { return ChannelPush }

// Send 向用户所有活跃设备多播；无活跃设备视为失败，全部 token 投递失败也视为失败
func (s *PushSender) Send(ctx context.Context, user *model.User, n *model.Notification) error {
	devices, err := s.devices.ActiveTokens(ctx, user.UserID)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return fmt.Errorf("用户 %s 无活跃推送设备", user.UserID)
	}

	tokens := make([]string, len(devices))
	for i, d := range devices {
		tokens[i] = d.DeviceToken
	}

	msg := &messaging.MulticastMessage{
		Tokens: tokens,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Message,
		},
		Data: map[string]string{
			"notification_id": n.NotificationID,
			"type":            string(n.Type),
			"priority":        string(n.Priority),
		},
	}

	br, err := s.client.SendEachForMulticast(ctx, msg)
	if err != nil {
		return err
	}

	// 失效 token（卸载/过期）从设备表下线，下次不再投递
	for i, resp := range br.Responses {
		if resp.Error != nil && messaging.IsRegistrationTokenNotRegistered(resp.Error) {
			if derr := s.devices.Deactivate(ctx, tokens[i]); derr != nil {
				s.logger.Warn("下线失效设备失败",
					zap.String("token", tokens[i]), zap.Error(derr))
			}
		}
	}

	if br.SuccessCount == 0 {
		return fmt.Errorf("推送全部失败: %d 台设备", br.FailureCount)
	}
	return nil
}
