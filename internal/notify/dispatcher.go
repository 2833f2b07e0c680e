package notify

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ksit-nexus/backend/config"
	"ksit-nexus/backend/internal/model"
	"ksit-nexus/backend/internal/repository"
)

// Dispatcher 通道分发器。根据投递档位、用户偏好和静默时段
// 决定一条通知走哪些外部通道，并把各通道结果回写到通知记录。
// 站内（in-app）不经过分发器：通知落库即对用户可见。
type Dispatcher struct {
	cfg     *config.NotificationConfig
	users   repository.UserRepository
	prefs   repository.PreferenceRepository
	notifs  repository.NotificationRepository
	senders map[Channel]Sender
	logger  *zap.Logger
}

// NewDispatcher 创建分发器；senders 中缺失的通道视为未启用
func NewDispatcher(
	cfg *config.NotificationConfig,
	repo *repository.Repository,
	senders []Sender,
	logger *zap.Logger,
) *Dispatcher {
	m := make(map[Channel]Sender, len(senders))
	for _, s := range senders {
		if s != nil {
			m[s.Channel()] = s
		}
	}
	return &Dispatcher{
		cfg:     cfg,
		users:   repo.User,
		prefs:   repo.Preference,
		notifs:  repo.Notification,
		senders: m,
		logger:  logger,
	}
}

// Dispatch 按档位投递一条通知
//   - digest_daily / digest_weekly 档位不走即时通道，由摘要任务统一汇总
//   - immediate 档位强制全通道，忽略通道开关（类型开关与静默时段仍生效）
//   - standard 档位遵循用户的通道开关
//
// 任一通道成功即置 is_sent；全部失败保持未投递，等待升级任务兜底。
func (d *Dispatcher) Dispatch(ctx context.Context, n *model.Notification, tier model.TierLabel) error {
	if tier.Digested() {
		return nil
	}
	now := time.Now()
	if d.cfg.DispatchExpireSkip && !n.Active(now) {
		return nil
	}

	user, err := d.users.GetByID(ctx, n.UserID)
	if err != nil {
		return err
	}

	pref, err := d.preference(ctx, n.UserID)
	if err != nil {
		return err
	}

	if !pref.CategoryEnabled(n.Type) {
		return nil // 该类型已关闭，仅保留站内记录
	}
	if d.inQuietHours(pref, now) && !(n.Priority == model.PriorityUrgent && pref.QuietAllowUrgent) {
		return nil
	}

	var pushOK, emailOK, smsOK bool
	for ch, sender := range d.senders {
		if !d.channelEnabled(pref, ch, tier) {
			continue
		}
		if err := sender.Send(ctx, user, n); err != nil {
			d.logger.Warn("通道投递失败",
				zap.String("notification_id", n.NotificationID),
				zap.String("channel", string(ch)),
				zap.Error(err))
			continue
		}
		switch ch {
		case ChannelPush:
			pushOK = true
		case ChannelEmail:
			emailOK = true
		case ChannelSMS:
			smsOK = true
		}
	}

	if !pushOK && !emailOK && !smsOK {
		return nil
	}
	return d.notifs.UpdateSentFlags(ctx, n.NotificationID, pushOK, emailOK, smsOK, true)
}

// preference 读取用户偏好；首次访问时以默认值懒创建
func (d *Dispatcher) preference(ctx context.Context, userID string) (*model.NotificationPreference, error) {
	pref, err := d.prefs.Get(ctx, userID)
	if err == nil {
		return pref, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	pref = model.DefaultPreference(userID)
	if cerr := d.prefs.Create(ctx, pref); cerr != nil {
		// 并发懒创建冲突时回读既有记录
		if errors.Is(cerr, gorm.ErrDuplicatedKey) {
			return d.prefs.Get(ctx, userID)
		}
		return nil, cerr
	}
	return pref, nil
}

func (d *Dispatcher) channelEnabled(pref *model.NotificationPreference, ch Channel, tier model.TierLabel) bool {
	if tier == model.TierImmediate {
		return true
	}
	switch ch {
	case ChannelPush:
		return pref.PushEnabled
	case ChannelEmail:
		return pref.EmailEnabled
	case ChannelSMS:
		return pref.SMSEnabled
	}
	return false
}

// inQuietHours 判断当前时刻是否落在用户静默时段内（支持跨午夜窗口）
func (d *Dispatcher) inQuietHours(pref *model.NotificationPreference, now time.Time) bool {
	if !pref.QuietEnabled {
		return false
	}
	loc, err := time.LoadLocation(pref.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := now.In(loc)

	start, err1 := time.Parse("15:04", pref.QuietStart)
	end, err2 := time.Parse("15:04", pref.QuietEnd)
	if err1 != nil || err2 != nil {
		return false
	}

	cur := local.Hour()*60 + local.Minute()
	s := start.Hour()*60 + start.Minute()
	e := end.Hour()*60 + end.Minute()

	if s <= e {
		return cur >= s && cur < e
	}
	// 跨午夜窗口，如 22:00 - 07:00
	return cur >= s || cur < e
}
