package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"ksit-nexus/backend/internal/model"
)

// NotificationRepository 通知数据访问接口
type NotificationRepository interface {
	Create(ctx context.Context, n *model.Notification) error
	GetByID(ctx context.Context, id string) (*model.Notification, error)
	ListByUser(ctx context.Context, userID string, unreadOnly bool, typ model.NotificationType, offset, limit int) ([]model.Notification, int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	UpdateSentFlags(ctx context.Context, id string, pushSent, emailSent, smsSent, isSent bool) error
	UpdatePriority(ctx context.Context, id string, priority model.Priority) error
	ListUndigested(ctx context.Context, userID string, kind model.PeriodKind, windowStart, windowEnd time.Time) ([]model.Notification, error)
	UserIDsInWindow(ctx context.Context, windowStart, windowEnd time.Time) ([]string, error)
	ListStaleUnread(ctx context.Context, olderThan time.Time, limit int) ([]model.Notification, error)
	// Stats 按 (类型, 优先级) 聚合通知量（报表导出用）
	Stats(ctx context.Context, since time.Time) ([]model.NotificationStat, error)
}

// notificationRepo NotificationRepository 的 GORM 实现
type notificationRepo struct {
	db *gorm.DB
}

// NewNotificationRepo 创建 NotificationRepository 实例
func NewNotificationRepo(db *gorm.DB) NotificationRepository {
	return &notificationRepo{db: db}
}

func (r *notificationRepo) Create(ctx context.Context, n *model.Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

func (r *notificationRepo) GetByID(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	err := r.db.WithContext(ctx).
		Where("notification_id = ?", id).
		First(&n).Error
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepo) ListByUser(ctx context.Context, userID string, unreadOnly bool, typ model.NotificationType, offset, limit int) ([]model.Notification, int64, error) {
	var notifications []model.Notification
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ?", userID).
		Where("expires_at IS NULL OR expires_at > ?", time.Now())
	if unreadOnly {
		db = db.Where("NOT is_read")
	}
	if typ != "" {
		db = db.Where("type = ?", typ)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

func (r *notificationRepo) UnreadCount(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND NOT is_read", userID).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}

func (r *notificationRepo) MarkRead(ctx context.Context, id, userID string) error {
	result := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("notification_id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("user_id = ? AND NOT is_read", userID).
		Update("is_read", true)
	return result.RowsAffected, result.Error
}

// UpdateSentFlags 记录各通道投递结果；is_sent 仅在至少一个通道成功后置位
func (r *notificationRepo) UpdateSentFlags(ctx context.Context, id string, pushSent, emailSent, smsSent, isSent bool) error {
	updates := map[string]interface{}{
		"is_sent": isSent,
	}
	if pushSent {
		updates["push_sent"] = true
	}
	if emailSent {
		updates["email_sent"] = true
	}
	if smsSent {
		updates["sms_sent"] = true
	}
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("notification_id = ?", id).
		Updates(updates).Error
}

func (r *notificationRepo) UpdatePriority(ctx context.Context, id string, priority model.Priority) error {
	return r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("notification_id = ?", id).
		Update("priority", priority).Error
}

// ListUndigested 查询窗口内尚未纳入指定周期摘要的通知（创建时间升序，保证汇总文本稳定）
func (r *notificationRepo) ListUndigested(ctx context.Context, userID string, kind model.PeriodKind, windowStart, windowEnd time.Time) ([]model.Notification, error) {
	var notifications []model.Notification
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where("created_at >= ? AND created_at < ?", windowStart, windowEnd).
		Where(`NOT EXISTS (
			SELECT 1 FROM notification_digest_items di
			JOIN notification_digests d ON d.digest_id = di.digest_id
			WHERE di.notification_id = notifications.notification_id
			  AND d.period_kind = ?
		)`, kind).
		Order("created_at ASC, notification_id ASC").
		Find(&notifications).Error
	if err != nil {
		return nil, err
	}
	return notifications, nil
}

// UserIDsInWindow 查询窗口内有通知的用户（摘要任务按此迭代）
func (r *notificationRepo) UserIDsInWindow(ctx context.Context, windowStart, windowEnd time.Time) ([]string, error) {
	var userIDs []string
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Where("created_at >= ? AND created_at < ?", windowStart, windowEnd).
		Distinct("user_id").
		Order("user_id").
		Pluck("user_id", &userIDs).Error
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}

// ListStaleUnread 查询超龄未读且未投递成功的通知（升级任务使用）
func (r *notificationRepo) ListStaleUnread(ctx context.Context, olderThan time.Time, limit int) ([]model.Notification, error) {
	var notifications []model.Notification
	db := r.db.WithContext(ctx).
		Where("NOT is_read AND NOT is_sent").
		Where("created_at < ?", olderThan).
		Where("expires_at IS NULL OR expires_at > ?", time.Now()).
		Order("created_at ASC")
	if limit > 0 {
		db = db.Limit(limit)
	}
	if err := db.Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}

func (r *notificationRepo) Stats(ctx context.Context, since time.Time) ([]model.NotificationStat, error) {
	var stats []model.NotificationStat
	err := r.db.WithContext(ctx).
		Model(&model.Notification{}).
		Select(`type, priority,
			COUNT(*) AS total,
			COUNT(*) FILTER (WHERE NOT is_read) AS unread,
			COUNT(*) FILTER (WHERE is_sent) AS sent`).
		Where("created_at >= ?", since).
		Group("type, priority").
		Order("type, priority").
		Scan(&stats).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}
