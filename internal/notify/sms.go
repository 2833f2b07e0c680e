package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"go.uber.org/zap"

	"ksit-nexus/backend/config"
	"ksit-nexus/backend/internal/model"
)

// SMSSender AWS SNS 短信投递器
type SMSSender struct {
	client   *sns.Client
	senderID string
	logger   *zap.Logger
}

// NewSMSSender 加载 AWS 配置并创建短信投递器
func NewSMSSender(ctx context.Context, cfg *config.SMSConfig, logger *zap.Logger) (*SMSSender, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("加载 AWS 配置失败: %w", err)
	}
	return &SMSSender{
		client:   sns.NewFromConfig(awsCfg),
		senderID: cfg.SenderID,
		logger:   logger,
	}, nil
}

// Channel 返回通道标识
func (s *SMSSender) Channel() Channel { return ChannelSMS }

// Send 发送通知短信；用户无手机号时直接视为失败
// 短信只带标题，正文留给 App 内查看
func (s *SMSSender) Send(ctx context.Context, user *model.User, n *model.Notification) error {
	if user.Phone == "" {
		return fmt.Errorf("用户 %s 未设置手机号", user.UserID)
	}

	input := &sns.PublishInput{
		Message:     aws.String(fmt.Sprintf("[KSIT Nexus] %s", n.Title)),
		PhoneNumber: aws.String(user.Phone),
		MessageAttributes: map[string]snstypes.MessageAttributeValue{
			"AWS.SNS.SMS.SenderID": {
				DataType:    aws.String("String"),
				StringValue: aws.String(s.senderID),
			},
			"AWS.SNS.SMS.SMSType": {
				DataType:    aws.String("String"),
				StringValue: aws.String("Transactional"),
			},
		},
	}

	if _, err := s.client.Publish(ctx, input); err != nil {
		s.logger.Warn("短信发送失败",
			zap.String("notification_id", n.NotificationID),
			zap.Error(err))
		return err
	}
	return nil
}
