package notify

import (
	"context"

	"ksit-nexus/backend/internal/model"
)

// Channel 投递通道标识
type Channel string

const (
	ChannelPush  Channel = "push"
	ChannelEmail Channel = "email"
	ChannelSMS   Channel = "sms"
)

// Sender 单通道投递器。各实现只关心自己的通道，
// 通道选择、偏好过滤和静默时段判断由 Dispatcher 统一处理。
type Sender interface {
	Channel() Channel
	Send(ctx context.Context, user *model.User, n *model.Notification) error
}
