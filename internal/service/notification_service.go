package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ksit-nexus/backend/config"
	"ksit-nexus/backend/internal/dto"
	"ksit-nexus/backend/internal/model"
	"ksit-nexus/backend/internal/repository"
	pkgerrors "ksit-nexus/backend/pkg/errors"
)

var (
	ErrNotificationNotFound = errors.New("通知不存在")
	ErrRuleNotFound         = errors.New("优先级规则不存在")
	ErrTierNotFound         = errors.New("分层设置不存在")
	ErrInvalidTimeFormat    = errors.New("时间格式错误，应为 RFC3339")
)

// 未读数缓存有效期；写操作后主动失效，TTL 只是兜底
const unreadCacheTTL = 5 * time.Minute

// 单轮升级任务最多处理的通知数，防止积压时单次任务过重
const escalateBatchLimit = 500

// Dispatcher 即时通道分发入口（internal/notify 实现）
type Dispatcher interface {
	Dispatch(ctx context.Context, n *model.Notification, tier model.TierLabel) error
}

// UnreadCache 未读数缓存入口（pkg/redis 实现）
type UnreadCache interface {
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
	SetUnreadCount(ctx context.Context, userID string, count int64, ttl time.Duration) error
	InvalidateUnreadCount(ctx context.Context, userID string) error
}

// NotificationService 通知业务接口（管线编排入口）
type NotificationService interface {
	// Create 创建通知并完成整条管线：校验 → 规则引擎 → 分层 → 落库 → 摘要 → 即时分发
	Create(ctx context.Context, req *dto.CreateNotificationRequest) (*dto.NotificationResponse, error)
	// Notify 业务模块内部产生通知的便捷入口
	Notify(ctx context.Context, userID string, typ model.NotificationType, title, message string, data model.JSONMap, relatedType, relatedID string) error
	List(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error)
	Get(ctx context.Context, id, userID string) (*dto.NotificationResponse, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)

	GetPreference(ctx context.Context, userID string) (*dto.PreferenceResponse, error)
	UpdatePreference(ctx context.Context, userID string, req *dto.UpdatePreferenceRequest) (*dto.PreferenceResponse, error)

	GetSummary(ctx context.Context, notificationID, userID string, kind model.SummaryKind) (*dto.SummaryResponse, error)

	CreateRule(ctx context.Context, req *dto.CreatePriorityRuleRequest) (*dto.PriorityRuleResponse, error)
	ListRules(ctx context.Context, page, pageSize int) ([]dto.PriorityRuleResponse, int64, error)
	DeleteRule(ctx context.Context, id string) error

	SetTier(ctx context.Context, userID string, req *dto.SetTierRequest) (*dto.TierResponse, error)
	ListTiers(ctx context.Context, userID string) ([]dto.TierResponse, error)
	DeleteTier(ctx context.Context, id, userID string) error

	// EscalateStale 将超龄未读且未投递成功的通知提升一级并重新分发，返回处理条数
	EscalateStale(ctx context.Context, firedAt time.Time) (int, error)
}

type notificationService struct {
	cfg        *config.NotificationConfig
	repo       *repository.Repository
	engine     PriorityEngine
	classifier TierClassifier
	summarizer SummaryGenerator
	dispatcher Dispatcher
	cache      UnreadCache
	logger     *zap.Logger
}

// NewNotificationService 创建 NotificationService 实例
func NewNotificationService(
	cfg *config.NotificationConfig,
	repo *repository.Repository,
	engine PriorityEngine,
	classifier TierClassifier,
	summarizer SummaryGenerator,
	dispatcher Dispatcher,
	cache UnreadCache,
	logger *zap.Logger,
) NotificationService {
	return &notificationService{
		cfg:        cfg,
		repo:       repo,
		engine:     engine,
		classifier: classifier,
		summarizer: summarizer,
		dispatcher: dispatcher,
		cache:      cache,
		logger:     logger,
	}
}

func (s *notificationService) Create(ctx context.Context, req *dto.CreateNotificationRequest) (*dto.NotificationResponse, error) {
	// 1. 枚举校验
	typ := model.NotificationType(req.Type)
	if !typ.Valid() {
		return nil, pkgerrors.ErrInvalidEnum
	}
	fallback := model.PriorityMedium
	if req.Priority != "" {
		fallback = model.Priority(req.Priority)
		if !fallback.Valid() {
			return nil, pkgerrors.ErrInvalidEnum
		}
	}

	// 2. 收件人存在性
	if _, err := s.repo.User.GetByID(ctx, req.UserID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	var expiresAt *time.Time
	if req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return nil, ErrInvalidTimeFormat
		}
		expiresAt = &t
	}

	// 3. 规则引擎决定优先级（调用方给的值仅作未命中回退）
	priority, rule, err := s.engine.Resolve(ctx, req.UserID, typ, req.Title, req.Message, fallback)
	if err != nil {
		return nil, err
	}
	if rule != nil {
		s.logger.Debug("优先级规则命中",
			zap.String("rule_id", rule.RuleID),
			zap.String("keyword", rule.Keyword),
			zap.String("priority", string(priority)))
	}

	// 4. 分层决定投递档位
	tier, err := s.classifier.Classify(ctx, req.UserID, typ, priority)
	if err != nil {
		return nil, err
	}

	// 5. 落库
	n := &model.Notification{
		UserID:    req.UserID,
		Type:      typ,
		Priority:  priority,
		Title:     req.Title,
		Message:   req.Message,
		Data:      model.JSONMap(req.Data),
		ExpiresAt: expiresAt,
	}
	if req.RelatedType != "" {
		n.RelatedType = &req.RelatedType
	}
	if req.RelatedID != "" {
		n.RelatedID = &req.RelatedID
	}
	if err := s.repo.Notification.Create(ctx, n); err != nil {
		s.logger.Error("创建通知失败", zap.Error(err))
		return nil, err
	}

	// 6. 附带短摘要（失败不阻断管线）
	summary := s.summarizer.Generate(n, model.SummaryShort)
	if err := s.repo.Summary.Create(ctx, summary); err != nil {
		s.logger.Warn("写入通知摘要失败",
			zap.String("notification_id", n.NotificationID), zap.Error(err))
	}

	if err := s.cache.InvalidateUnreadCount(ctx, n.UserID); err != nil {
		s.logger.Warn("失效未读数缓存失败", zap.Error(err))
	}

	// 7. 即时档位同步分发；通道失败不影响创建结果，留给升级任务兜底
	if !tier.Digested() {
		if err := s.dispatcher.Dispatch(ctx, n, tier); err != nil {
			s.logger.Warn("通知分发失败",
				zap.String("notification_id", n.NotificationID), zap.Error(err))
		}
	}

	resp := toNotificationResponse(n)
	resp.Tier = string(tier)
	return resp, nil
}

func (s *notificationService) Notify(ctx context.Context, userID string, typ model.NotificationType, title, message string, data model.JSONMap, relatedType, relatedID string) error {
	_, err := s.Create(ctx, &dto.CreateNotificationRequest{
		UserID:      userID,
		Type:        string(typ),
		Title:       title,
		Message:     message,
		Data:        data,
		RelatedType: relatedType,
		RelatedID:   relatedID,
	})
	return err
}

func (s *notificationService) List(ctx context.Context, userID string, req *dto.NotificationListRequest) ([]dto.NotificationResponse, int64, error) {
	typ := model.NotificationType(req.Type)
	if req.Type != "" && !typ.Valid() {
		return nil, 0, pkgerrors.ErrInvalidEnum
	}

	offset := (req.Page - 1) * req.PageSize
	notifications, total, err := s.repo.Notification.ListByUser(ctx, userID, req.UnreadOnly, typ, offset, req.PageSize)
	if err != nil {
		s.logger.Error("查询通知列表失败", zap.Error(err))
		return nil, 0, err
	}

	items := make([]dto.NotificationResponse, len(notifications))
	for i := range notifications {
		items[i] = *toNotificationResponse(&notifications[i])
	}
	return items, total, nil
}

func (s *notificationService) Get(ctx context.Context, id, userID string) (*dto.NotificationResponse, error) {
	n, err := s.repo.Notification.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	if n.UserID != userID {
		return nil, ErrNotificationNotFound // 不泄露他人通知的存在性
	}
	return toNotificationResponse(n), nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.Notification.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotificationNotFound
		}
		return err
	}
	if err := s.cache.InvalidateUnreadCount(ctx, userID); err != nil {
		s.logger.Warn("失效未读数缓存失败", zap.Error(err))
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	affected, err := s.repo.Notification.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.cache.InvalidateUnreadCount(ctx, userID); err != nil {
		s.logger.Warn("失效未读数缓存失败", zap.Error(err))
	}
	return affected, nil
}

func (s *notificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	if cached, err := s.cache.GetUnreadCount(ctx, userID); err == nil && cached >= 0 {
		return cached, nil
	}

	count, err := s.repo.Notification.UnreadCount(ctx, userID)
	if err != nil {
		return 0, err
	}
	if err := s.cache.SetUnreadCount(ctx, userID, count, unreadCacheTTL); err != nil {
		s.logger.Warn("写入未读数缓存失败", zap.Error(err))
	}
	return count, nil
}

// ── 偏好设置 ──

func (s *notificationService) GetPreference(ctx context.Context, userID string) (*dto.PreferenceResponse, error) {
	pref, err := s.preference(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toPreferenceResponse(pref), nil
}

func (s *notificationService) UpdatePreference(ctx context.Context, userID string, req *dto.UpdatePreferenceRequest) (*dto.PreferenceResponse, error) {
	pref, err := s.preference(ctx, userID)
	if err != nil {
		return nil, err
	}

	applyPreferenceUpdate(pref, req)
	if err := s.repo.Preference.Update(ctx, pref); err != nil {
		s.logger.Error("更新通知偏好失败", zap.Error(err))
		return nil, err
	}
	return toPreferenceResponse(pref), nil
}

// preference 读取偏好；首次访问时以默认值懒创建
func (s *notificationService) preference(ctx context.Context, userID string) (*model.NotificationPreference, error) {
	pref, err := s.repo.Preference.Get(ctx, userID)
	if err == nil {
		return pref, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	pref = model.DefaultPreference(userID)
	if cerr := s.repo.Preference.Create(ctx, pref); cerr != nil {
		if errors.Is(cerr, gorm.ErrDuplicatedKey) {
			return s.repo.Preference.Get(ctx, userID)
		}
		return nil, cerr
	}
	return pref, nil
}

// ── 单条摘要 ──

// GetSummary 读取通知摘要；落库的是 short，请求 long 时按需生成并缓存
func (s *notificationService) GetSummary(ctx context.Context, notificationID, userID string, kind model.SummaryKind) (*dto.SummaryResponse, error) {
	if !kind.Valid() {
		return nil, pkgerrors.ErrInvalidEnum
	}

	n, err := s.repo.Notification.GetByID(ctx, notificationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotificationNotFound
		}
		return nil, err
	}
	if n.UserID != userID {
		return nil, ErrNotificationNotFound
	}

	summary, err := s.repo.Summary.GetByNotification(ctx, notificationID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if summary != nil && summary.Kind == kind {
		return toSummaryResponse(summary), nil
	}

	// 粒度不符或尚无摘要：摘要不可变，先删后建
	if summary != nil {
		if err := s.repo.Summary.DeleteByNotification(ctx, notificationID); err != nil {
			return nil, err
		}
	}
	summary = s.summarizer.Generate(n, kind)
	if err := s.repo.Summary.Create(ctx, summary); err != nil {
		return nil, err
	}
	return toSummaryResponse(summary), nil
}

// ── 优先级规则管理 ──

func (s *notificationService) CreateRule(ctx context.Context, req *dto.CreatePriorityRuleRequest) (*dto.PriorityRuleResponse, error) {
	typ := model.NotificationType(req.NotificationType)
	priority := model.Priority(req.Priority)
	if !typ.Valid() || !priority.Valid() {
		return nil, pkgerrors.ErrInvalidEnum
	}

	rule := &model.PriorityRule{
		NotificationType: typ,
		Keyword:          req.Keyword,
		Priority:         priority,
		IsActive:         true,
	}
	if req.UserID != "" {
		rule.UserID = &req.UserID
	}
	if err := s.repo.PriorityRule.Create(ctx, rule); err != nil {
		s.logger.Error("创建优先级规则失败", zap.Error(err))
		return nil, err
	}
	return toRuleResponse(rule), nil
}

func (s *notificationService) ListRules(ctx context.Context, page, pageSize int) ([]dto.PriorityRuleResponse, int64, error) {
	rules, total, err := s.repo.PriorityRule.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	items := make([]dto.PriorityRuleResponse, len(rules))
	for i := range rules {
		items[i] = *toRuleResponse(&rules[i])
	}
	return items, total, nil
}

func (s *notificationService) DeleteRule(ctx context.Context, id string) error {
	if err := s.repo.PriorityRule.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrRuleNotFound
		}
		return err
	}
	return nil
}

// ── 投递分层管理 ──

func (s *notificationService) SetTier(ctx context.Context, userID string, req *dto.SetTierRequest) (*dto.TierResponse, error) {
	label := model.TierLabel(req.Tier)
	if !label.Valid() {
		return nil, pkgerrors.ErrInvalidEnum
	}
	types := make(model.StringArray, len(req.Types))
	for i, t := range req.Types {
		if !model.NotificationType(t).Valid() {
			return nil, pkgerrors.ErrInvalidEnum
		}
		types[i] = t
	}

	tier := &model.NotificationTier{
		UserID: userID,
		Tier:   label,
		Types:  types,
	}
	// 后写覆盖：受影响的类型从既有记录中摘除
	if err := s.repo.Tier.Replace(ctx, tier); err != nil {
		s.logger.Error("写入投递分层失败", zap.Error(err))
		return nil, err
	}
	return toTierResponse(tier), nil
}

func (s *notificationService) ListTiers(ctx context.Context, userID string) ([]dto.TierResponse, error) {
	tiers, err := s.repo.Tier.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TierResponse, len(tiers))
	for i := range tiers {
		items[i] = *toTierResponse(&tiers[i])
	}
	return items, nil
}

func (s *notificationService) DeleteTier(ctx context.Context, id, userID string) error {
	if err := s.repo.Tier.Delete(ctx, id, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTierNotFound
		}
		return err
	}
	return nil
}

// ── 升级任务 ──

func (s *notificationService) EscalateStale(ctx context.Context, firedAt time.Time) (int, error) {
	olderThan := firedAt.Add(-s.cfg.EscalationAge)
	stale, err := s.repo.Notification.ListStaleUnread(ctx, olderThan, escalateBatchLimit)
	if err != nil {
		return 0, err
	}

	escalated := 0
	for i := range stale {
		n := &stale[i]
		next := n.Priority.Escalate()
		if next != n.Priority {
			if err := s.repo.Notification.UpdatePriority(ctx, n.NotificationID, next); err != nil {
				s.logger.Error("升级通知优先级失败",
					zap.String("notification_id", n.NotificationID), zap.Error(err))
				continue
			}
			n.Priority = next
		}

		tier, err := s.classifier.Classify(ctx, n.UserID, n.Type, n.Priority)
		if err != nil {
			s.logger.Error("升级重分发取档位失败",
				zap.String("notification_id", n.NotificationID), zap.Error(err))
			continue
		}
		if err := s.dispatcher.Dispatch(ctx, n, tier); err != nil {
			s.logger.Warn("升级重分发失败",
				zap.String("notification_id", n.NotificationID), zap.Error(err))
		}
		escalated++
	}

	if escalated > 0 {
		s.logger.Info("未读通知升级完成",
			zap.Int("count", escalated),
			zap.Time("older_than", olderThan))
	}
	return escalated, nil
}

// ── DTO 转换 ──

func toNotificationResponse(n *model.Notification) *dto.NotificationResponse {
	resp := &dto.NotificationResponse{
		ID:        n.NotificationID,
		Type:      string(n.Type),
		Priority:  string(n.Priority),
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		IsRead:    n.IsRead,
		IsSent:    n.IsSent,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
	if n.RelatedType != nil {
		resp.RelatedType = *n.RelatedType
	}
	if n.RelatedID != nil {
		resp.RelatedID = *n.RelatedID
	}
	return resp
}

func toPreferenceResponse(p *model.NotificationPreference) *dto.PreferenceResponse {
	return &dto.PreferenceResponse{
		PushEnabled:         p.PushEnabled,
		EmailEnabled:        p.EmailEnabled,
		SMSEnabled:          p.SMSEnabled,
		InAppEnabled:        p.InAppEnabled,
		ComplaintEnabled:    p.ComplaintEnabled,
		StudyGroupEnabled:   p.StudyGroupEnabled,
		NoticeEnabled:       p.NoticeEnabled,
		ReservationEnabled:  p.ReservationEnabled,
		FeedbackEnabled:     p.FeedbackEnabled,
		AnnouncementEnabled: p.AnnouncementEnabled,
		GeneralEnabled:      p.GeneralEnabled,
		QuietEnabled:        p.QuietEnabled,
		QuietStart:          p.QuietStart,
		QuietEnd:            p.QuietEnd,
		QuietAllowUrgent:    p.QuietAllowUrgent,
		Timezone:            p.Timezone,
	}
}

func applyPreferenceUpdate(pref *model.NotificationPreference, req *dto.UpdatePreferenceRequest) {
	if req.PushEnabled != nil {
		pref.PushEnabled = *req.PushEnabled
	}
	if req.EmailEnabled != nil {
		pref.EmailEnabled = *req.EmailEnabled
	}
	if req.SMSEnabled != nil {
		pref.SMSEnabled = *req.SMSEnabled
	}
	if req.InAppEnabled != nil {
		pref.InAppEnabled = *req.InAppEnabled
	}
	if req.ComplaintEnabled != nil {
		pref.ComplaintEnabled = *req.ComplaintEnabled
	}
	if req.StudyGroupEnabled != nil {
		pref.StudyGroupEnabled = *req.StudyGroupEnabled
	}
	if req.NoticeEnabled != nil {
		pref.NoticeEnabled = *req.NoticeEnabled
	}
	if req.ReservationEnabled != nil {
		pref.ReservationEnabled = *req.ReservationEnabled
	}
	if req.FeedbackEnabled != nil {
		pref.FeedbackEnabled = *req.FeedbackEnabled
	}
	if req.AnnouncementEnabled != nil {
		pref.AnnouncementEnabled = *req.AnnouncementEnabled
	}
	if req.GeneralEnabled != nil {
		pref.GeneralEnabled = *req.GeneralEnabled
	}
	if req.QuietEnabled != nil {
		pref.QuietEnabled = *req.QuietEnabled
	}
	if req.QuietStart != nil {
		pref.QuietStart = *req.QuietStart
	}
	if req.QuietEnd != nil {
		pref.QuietEnd = *req.QuietEnd
	}
	if req.QuietAllowUrgent != nil {
		pref.QuietAllowUrgent = *req.QuietAllowUrgent
	}
	if req.Timezone != nil {
		pref.Timezone = *req.Timezone
	}
}

func toSummaryResponse(s *model.NotificationSummary) *dto.SummaryResponse {
	return &dto.SummaryResponse{
		ID:             s.SummaryID,
		NotificationID: s.NotificationID,
		Kind:           string(s.Kind),
		Summary:        s.Summary,
		WordCount:      s.WordCount,
		KeyPoints:      s.KeyPoints,
	}
}

func toRuleResponse(r *model.PriorityRule) *dto.PriorityRuleResponse {
	resp := &dto.PriorityRuleResponse{
		ID:               r.RuleID,
		NotificationType: string(r.NotificationType),
		Keyword:          r.Keyword,
		Priority:         string(r.Priority),
		IsActive:         r.IsActive,
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
	}
	if r.UserID != nil {
		resp.UserID = *r.UserID
	}
	return resp
}

func toTierResponse(t *model.NotificationTier) *dto.TierResponse {
	return &dto.TierResponse{
		ID:    t.TierID,
		Tier:  string(t.Tier),
		Types: t.Types,
	}
}
