package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"ksit-nexus/backend/config"
	"ksit-nexus/backend/internal/dto"
	"ksit-nexus/backend/internal/model"
	pkgerrors "ksit-nexus/backend/pkg/errors"
)

// ── 测试辅助 ──

func setupTestNotificationService(cfg *config.NotificationConfig) (NotificationService, *testRepos, *mockDispatcher, *mockUnreadCache) {
	if cfg == nil {
		cfg = &config.NotificationConfig{
			DefaultTier:   "standard",
			EscalationAge: 24 * time.Hour,
		}
	}
	repos := newTestRepos()
	repos.users.Create(context.Background(), &model.User{
		UserID: "user-001", Name: "测试用户", USN: "1KS21CS001",
		Email: "test@ksit.edu.in", Role: "student",
	})

	dispatcher := &mockDispatcher{markSent: repos.notifications}
	cache := newMockUnreadCache()
	engine := NewPriorityEngine(repos.rules, zap.NewNop())
	classifier := NewTierClassifier(cfg, repos.tiers, zap.NewNop())
	svc := NewNotificationService(cfg, repos.repo, engine, classifier,
		NewSummaryGenerator(), dispatcher, cache, zap.NewNop())
	return svc, repos, dispatcher, cache
}

// ── Create 测试 ──

func TestNotificationService_Create_Pipeline(t *testing.T) {
	svc, repos, dispatcher, _ := setupTestNotificationService(nil)

	result, err := svc.Create(context.Background(), &dto.CreateNotificationRequest{
		UserID:  "user-001",
		Type:    "notice",
		Title:   "讲座通知",
		Message: "周五下午三点举行。",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Priority != "medium" {
		t.Errorf("无规则命中应落调用方回退（默认 medium），实际=%s", result.Priority)
	}
	if result.Tier != "standard" {
		t.Errorf("期望档位 standard，实际=%s", result.Tier)
	}
	if len(dispatcher.dispatched) != 1 {
		t.Errorf("standard 档位应即时分发，实际分发 %d 次", len(dispatcher.dispatched))
	}
	// 分发成功后 is_sent 应置位
	n, _ := repos.notifications.GetByID(context.Background(), result.ID)
	if !n.IsSent {
		t.Error("任一通道成功后 is_sent 应为 true")
	}
	// 管线应附带落一份短摘要
	if _, err := repos.summaries.GetByNotification(context.Background(), result.ID); err != nil {
		t.Error("创建通知应同步生成短摘要")
	}
}

func TestNotificationService_Create_RuleOverridesCallerPriority(t *testing.T) {
	svc, repos, _, _ := setupTestNotificationService(nil)
	repos.rules.Create(context.Background(), &model.PriorityRule{
		NotificationType: model.TypeNotice,
		Keyword:          "考试",
		Priority:         model.PriorityUrgent,
		IsActive:         true,
	})

	result, err := svc.Create(context.Background(), &dto.CreateNotificationRequest{
		UserID:   "user-001",
		Type:     "notice",
		Priority: "low", // 调用方给的值只是回退
		Title:    "考试安排",
		Message:  "下周一开始。",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Priority != "urgent" {
		t.Errorf("规则命中应覆盖调用方优先级，实际=%s", result.Priority)
	}
	if result.Tier != "immediate" {
		t.Errorf("urgent 应强制即时档位，实际=%s", result.Tier)
	}
}

func TestNotificationService_Create_DigestTierSkipsDispatch(t *testing.T) {
	svc, repos, dispatcher, _ := setupTestNotificationService(nil)
	repos.tiers.Replace(context.Background(), &model.NotificationTier{
		UserID: "user-001",
		Tier:   model.TierDigestDaily,
		Types:  model.StringArray{"notice"},
	})

	result, err := svc.Create(context.Background(), &dto.CreateNotificationRequest{
		UserID:  "user-001",
		Type:    "notice",
		Title:   "普通公告",
		Message: "无需即时打扰。",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Tier != "digest_daily" {
		t.Errorf("期望 digest_daily，实际=%s", result.Tier)
	}
	if len(dispatcher.dispatched) != 0 {
		t.Error("摘要档位不应触发即时分发")
	}
	n, _ := repos.notifications.GetByID(context.Background(), result.ID)
	if n.IsSent {
		t.Error("未分发的通知 is_sent 应保持 false")
	}
}

func TestNotificationService_Create_InvalidEnum(t *testing.T) {
	svc, _, _, _ := setupTestNotificationService(nil)

	_, err := svc.Create(context.Background(), &dto.CreateNotificationRequest{
		UserID: "user-001", Type: "bogus", Title: "t", Message: "m",
	})
	if !errors.Is(err, pkgerrors.ErrInvalidEnum) {
		t.Errorf("非法类型应返回 ErrInvalidEnum，实际: %v", err)
	}

	_, err = svc.Create(context.Background(), &dto.CreateNotificationRequest{
		UserID: "user-001", Type: "notice", Priority: "bogus", Title: "t", Message: "m",
	})
	if !errors.Is(err, pkgerrors.ErrInvalidEnum) {
		t.Errorf("非法优先级应返回 ErrInvalidEnum，实际: %v", err)
	}
}

func TestNotificationService_Create_UnknownRecipient(t *testing.T) {
	svc, _, _, _ := setupTestNotificationService(nil)

	_, err := svc.Create(context.Background(), &dto.CreateNotificationRequest{
		UserID: "ghost", Type: "notice", Title: "t", Message: "m",
	})
	if !errors.Is(err, ErrUserNotFound) {
		t.Errorf("期望 ErrUserNotFound，实际: %v", err)
	}
}

func TestNotificationService_Create_DispatchFailureDoesNotFailCreate(t *testing.T) {
	svc, repos, dispatcher, _ := setupTestNotificationService(nil)
	dispatcher.markSent = nil
	dispatcher.err = errors.New("所有通道不可用")

	result, err := svc.Create(context.Background(), &dto.CreateNotificationRequest{
		UserID: "user-001", Type: "notice", Title: "t", Message: "m",
	})
	if err != nil {
		t.Fatalf("分发失败不应让创建失败: %v", err)
	}
	n, _ := repos.notifications.GetByID(context.Background(), result.ID)
	if n.IsSent {
		t.Error("分发失败时 is_sent 应保持 false，留给升级任务兜底")
	}
}

// ── 读取与已读 ──

func TestNotificationService_Get_OtherUsersNotificationHidden(t *testing.T) {
	svc, repos, _, _ := setupTestNotificationService(nil)
	repos.notifications.Create(context.Background(), &model.Notification{
		UserID: "user-002", Type: model.TypeNotice, Priority: model.PriorityMedium,
		Title: "别人的通知", Message: "m",
	})

	_, err := svc.Get(context.Background(), "notif-001", "user-001")
	if !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("他人通知应表现为不存在，实际: %v", err)
	}
}

func TestNotificationService_MarkRead_InvalidatesCache(t *testing.T) {
	svc, repos, _, cache := setupTestNotificationService(nil)
	repos.notifications.Create(context.Background(), &model.Notification{
		UserID: "user-001", Type: model.TypeNotice, Priority: model.PriorityMedium,
		Title: "t", Message: "m",
	})
	cache.counts["user-001"] = 5

	if err := svc.MarkRead(context.Background(), "notif-001", "user-001"); err != nil {
		t.Fatalf("MarkRead 应成功: %v", err)
	}
	if _, ok := cache.counts["user-001"]; ok {
		t.Error("已读后未读数缓存应失效")
	}
}

func TestNotificationService_UnreadCount_CacheMissThenFill(t *testing.T) {
	svc, repos, _, cache := setupTestNotificationService(nil)
	for i := 0; i < 3; i++ {
		repos.notifications.Create(context.Background(), &model.Notification{
			UserID: "user-001", Type: model.TypeNotice, Priority: model.PriorityMedium,
			Title: "t", Message: "m",
		})
	}

	count, err := svc.UnreadCount(context.Background(), "user-001")
	if err != nil {
		t.Fatalf("UnreadCount 应成功: %v", err)
	}
	if count != 3 {
		t.Errorf("期望未读 3，实际=%d", count)
	}
	if cache.counts["user-001"] != 3 {
		t.Error("未命中后应回填缓存")
	}
}

// ── 偏好 ──

func TestNotificationService_GetPreference_LazyCreate(t *testing.T) {
	svc, repos, _, _ := setupTestNotificationService(nil)

	pref, err := svc.GetPreference(context.Background(), "user-001")
	if err != nil {
		t.Fatalf("GetPreference 应成功: %v", err)
	}
	if !pref.PushEnabled || pref.SMSEnabled {
		t.Error("首次访问应返回默认偏好")
	}
	if _, ok := repos.preferences.prefs["user-001"]; !ok {
		t.Error("默认偏好应已落库")
	}
}

func TestNotificationService_UpdatePreference_PartialUpdate(t *testing.T) {
	svc, _, _, _ := setupTestNotificationService(nil)
	f := false

	pref, err := svc.UpdatePreference(context.Background(), "user-001",
		&dto.UpdatePreferenceRequest{PushEnabled: &f})
	if err != nil {
		t.Fatalf("UpdatePreference 应成功: %v", err)
	}
	if pref.PushEnabled {
		t.Error("push 应已关闭")
	}
	if !pref.EmailEnabled {
		t.Error("未提供的字段应保持默认值")
	}
}

// ── 分层管理 ──

func TestNotificationService_SetTier_LastWriteWins(t *testing.T) {
	svc, _, _, _ := setupTestNotificationService(nil)

	_, err := svc.SetTier(context.Background(), "user-001", &dto.SetTierRequest{
		Tier: "digest_daily", Types: []string{"notice", "feedback"},
	})
	if err != nil {
		t.Fatalf("SetTier 应成功: %v", err)
	}
	// 覆盖其中一个类型
	_, err = svc.SetTier(context.Background(), "user-001", &dto.SetTierRequest{
		Tier: "digest_weekly", Types: []string{"notice"},
	})
	if err != nil {
		t.Fatalf("SetTier 应成功: %v", err)
	}

	tiers, err := svc.ListTiers(context.Background(), "user-001")
	if err != nil {
		t.Fatalf("ListTiers 应成功: %v", err)
	}
	for _, tr := range tiers {
		for _, typ := range tr.Types {
			if typ == "notice" && tr.Tier != "digest_weekly" {
				t.Errorf("notice 应归属后写的 digest_weekly，实际=%s", tr.Tier)
			}
			if typ == "feedback" && tr.Tier != "digest_daily" {
				t.Errorf("feedback 应保持 digest_daily，实际=%s", tr.Tier)
			}
		}
	}
}

func TestNotificationService_SetTier_InvalidEnum(t *testing.T) {
	svc, _, _, _ := setupTestNotificationService(nil)

	_, err := svc.SetTier(context.Background(), "user-001", &dto.SetTierRequest{
		Tier: "bogus", Types: []string{"notice"},
	})
	if !errors.Is(err, pkgerrors.ErrInvalidEnum) {
		t.Errorf("期望 ErrInvalidEnum，实际: %v", err)
	}
}

// ── 升级任务 ──

func TestNotificationService_EscalateStale(t *testing.T) {
	cfg := &config.NotificationConfig{DefaultTier: "standard", EscalationAge: time.Hour}
	svc, repos, dispatcher, _ := setupTestNotificationService(cfg)

	stale := &model.Notification{
		UserID: "user-001", Type: model.TypeNotice, Priority: model.PriorityMedium,
		Title: "积压通知", Message: "m",
	}
	stale.CreatedAt = time.Now().Add(-2 * time.Hour)
	repos.notifications.Create(context.Background(), stale)

	fresh := &model.Notification{
		UserID: "user-001", Type: model.TypeNotice, Priority: model.PriorityMedium,
		Title: "新通知", Message: "m",
	}
	repos.notifications.Create(context.Background(), fresh)

	count, err := svc.EscalateStale(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("EscalateStale 应成功: %v", err)
	}
	if count != 1 {
		t.Errorf("只应升级超龄的那条，实际=%d", count)
	}
	n, _ := repos.notifications.GetByID(context.Background(), stale.NotificationID)
	if n.Priority != model.PriorityHigh {
		t.Errorf("medium 应升到 high，实际=%s", n.Priority)
	}
	if len(dispatcher.dispatched) != 1 || dispatcher.dispatched[0] != stale.NotificationID {
		t.Error("升级后应重新分发该通知")
	}
}

func TestNotificationService_EscalateStale_UrgentCapped(t *testing.T) {
	cfg := &config.NotificationConfig{DefaultTier: "standard", EscalationAge: time.Hour}
	svc, repos, _, _ := setupTestNotificationService(cfg)

	stale := &model.Notification{
		UserID: "user-001", Type: model.TypeNotice, Priority: model.PriorityUrgent,
		Title: "已是最高优先级", Message: "m",
	}
	stale.CreatedAt = time.Now().Add(-2 * time.Hour)
	repos.notifications.Create(context.Background(), stale)

	if _, err := svc.EscalateStale(context.Background(), time.Now()); err != nil {
		t.Fatalf("EscalateStale 应成功: %v", err)
	}
	n, _ := repos.notifications.GetByID(context.Background(), stale.NotificationID)
	if n.Priority != model.PriorityUrgent {
		t.Errorf("urgent 应封顶不变，实际=%s", n.Priority)
	}
}

// ── 单条摘要 ──

func TestNotificationService_GetSummary_RegeneratesOnKindMismatch(t *testing.T) {
	svc, repos, _, _ := setupTestNotificationService(nil)
	result, err := svc.Create(context.Background(), &dto.CreateNotificationRequest{
		UserID:  "user-001",
		Type:    "notice",
		Title:   "Exam notice",
		Message: "Final exams start Monday. Timetable is on the portal. Bring your ID card.",
	})
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	// 落库的是 short，请求 long 应重新生成
	long, err := svc.GetSummary(context.Background(), result.ID, "user-001", model.SummaryLong)
	if err != nil {
		t.Fatalf("GetSummary 应成功: %v", err)
	}
	if long.Kind != "long" {
		t.Errorf("期望 kind=long，实际=%s", long.Kind)
	}
	stored, _ := repos.summaries.GetByNotification(context.Background(), result.ID)
	if stored.Kind != model.SummaryLong {
		t.Error("重新生成的 long 摘要应已替换落库记录")
	}
}
