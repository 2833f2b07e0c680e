package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"ksit-nexus/backend/config"
	"ksit-nexus/backend/internal/model"
)

func setupTestDigestService() (DigestService, *testRepos, *mockDigestLock) {
	repos := newTestRepos()
	lock := newMockDigestLock()
	cfg := &config.NotificationConfig{DefaultTier: "standard", DigestMaxLength: 2000}
	svc := NewDigestService(cfg, repos.repo, NewSummaryGenerator(), lock, zap.NewNop())
	return svc, repos, lock
}

func seedDigestNotification(repos *testRepos, userID string, typ model.NotificationType, title string, createdAt time.Time) *model.Notification {
	n := &model.Notification{
		UserID: userID, Type: typ, Priority: model.PriorityMedium,
		Title: title, Message: title + "的正文。",
	}
	n.CreatedAt = createdAt
	repos.notifications.Create(context.Background(), n)
	return n
}

func TestDigestService_GenerateDaily(t *testing.T) {
	svc, repos, _ := setupTestDigestService()
	firedAt := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	seedDigestNotification(repos, "user-001", model.TypeNotice, "讲座通知", firedAt.Add(-2*time.Hour))
	seedDigestNotification(repos, "user-001", model.TypeComplaint, "投诉已受理", firedAt.Add(-3*time.Hour))
	// 窗口外的通知不应进入摘要
	seedDigestNotification(repos, "user-001", model.TypeNotice, "陈年旧闻", firedAt.Add(-30*time.Hour))

	digest, err := svc.GenerateDailyDigest(context.Background(), "user-001", firedAt)
	if err != nil {
		t.Fatalf("GenerateDailyDigest 应成功: %v", err)
	}
	if digest == nil {
		t.Fatal("窗口内有通知时应产出摘要")
	}
	if digest.IncludedCount != 2 {
		t.Errorf("期望汇总 2 条，实际=%d", digest.IncludedCount)
	}
	if digest.PeriodKind != model.PeriodDaily {
		t.Errorf("期望周期 daily，实际=%s", digest.PeriodKind)
	}
	if !digest.WindowStart.Equal(firedAt.Add(-24 * time.Hour)) {
		t.Errorf("窗口起点应为触发时刻前 24 小时，实际=%v", digest.WindowStart)
	}
	if !digest.GeneratedAt.Equal(firedAt) {
		t.Errorf("GeneratedAt 应等于窗口终点，实际=%v", digest.GeneratedAt)
	}
	if digest.Title != "每日通知摘要 (2026-03-10)" {
		t.Errorf("标题格式不符: %q", digest.Title)
	}
	if digest.Summary == "" {
		t.Error("摘要正文不应为空")
	}
}

func TestDigestService_Generate_Idempotent(t *testing.T) {
	svc, repos, lock := setupTestDigestService()
	firedAt := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	seedDigestNotification(repos, "user-001", model.TypeNotice, "讲座通知", firedAt.Add(-time.Hour))

	first, err := svc.GenerateDailyDigest(context.Background(), "user-001", firedAt)
	if err != nil || first == nil {
		t.Fatalf("首次生成应成功: %v", err)
	}
	second, err := svc.GenerateDailyDigest(context.Background(), "user-001", firedAt)
	if err != nil {
		t.Fatalf("重复触发应成功: %v", err)
	}
	if second == nil || second.DigestID != first.DigestID {
		t.Error("重复触发应返回既有摘要而非新建")
	}
	if len(repos.digests.digests) != 1 {
		t.Errorf("同一窗口只应有一份摘要，实际=%d", len(repos.digests.digests))
	}
	// 首次生成后锁已释放，重复触发走 FindByWindow 短路，不再取锁
	if lock.acquired != 1 {
		t.Errorf("期望取锁 1 次，实际=%d", lock.acquired)
	}
}

func TestDigestService_Generate_EmptyWindow(t *testing.T) {
	svc, repos, _ := setupTestDigestService()
	firedAt := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)

	digest, err := svc.GenerateDailyDigest(context.Background(), "user-001", firedAt)
	if err != nil {
		t.Fatalf("空窗口不应报错: %v", err)
	}
	if digest != nil {
		t.Error("空窗口不应产出摘要记录")
	}
	if len(repos.digests.digests) != 0 {
		t.Error("空窗口不应落库")
	}
}

func TestDigestService_Generate_LockHeldByAnotherInstance(t *testing.T) {
	svc, repos, lock := setupTestDigestService()
	firedAt := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	seedDigestNotification(repos, "user-001", model.TypeNotice, "讲座通知", firedAt.Add(-time.Hour))

	// 预占锁模拟另一实例正在生成
	windowStart := firedAt.Add(-24 * time.Hour)
	lockKey := fmt.Sprintf("user-001:daily:%d", windowStart.Unix())
	lock.held[lockKey] = true

	digest, err := svc.GenerateDailyDigest(context.Background(), "user-001", firedAt)
	if err != nil {
		t.Fatalf("拿不到锁不应报错: %v", err)
	}
	if digest != nil {
		t.Error("另一实例持锁且尚未落库时应返回 nil")
	}
	if len(repos.digests.digests) != 0 {
		t.Error("未持锁的一方不应写入摘要")
	}
}

func TestDigestService_Generate_WeeklyWindow(t *testing.T) {
	svc, repos, _ := setupTestDigestService()
	firedAt := time.Date(2026, 3, 9, 7, 0, 0, 0, time.UTC)
	seedDigestNotification(repos, "user-001", model.TypeNotice, "上周讲座", firedAt.Add(-5*24*time.Hour))

	digest, err := svc.GenerateWeeklyDigest(context.Background(), "user-001", firedAt)
	if err != nil || digest == nil {
		t.Fatalf("GenerateWeeklyDigest 应成功: %v", err)
	}
	if digest.PeriodKind != model.PeriodWeekly {
		t.Errorf("期望周期 weekly，实际=%s", digest.PeriodKind)
	}
	if !digest.WindowStart.Equal(firedAt.Add(-7 * 24 * time.Hour)) {
		t.Errorf("周窗口起点应为触发时刻前 7 天，实际=%v", digest.WindowStart)
	}
	if digest.Title != "每周通知摘要 (2026-03-09)" {
		t.Errorf("标题格式不符: %q", digest.Title)
	}
}

func TestDigestService_RunDaily(t *testing.T) {
	svc, repos, _ := setupTestDigestService()
	firedAt := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	seedDigestNotification(repos, "user-001", model.TypeNotice, "讲座通知", firedAt.Add(-time.Hour))
	seedDigestNotification(repos, "user-002", model.TypeComplaint, "投诉已受理", firedAt.Add(-2*time.Hour))
	// user-003 只有窗口外的通知，不应产出
	seedDigestNotification(repos, "user-003", model.TypeNotice, "旧通知", firedAt.Add(-48*time.Hour))

	generated, err := svc.RunDaily(context.Background(), firedAt)
	if err != nil {
		t.Fatalf("RunDaily 应成功: %v", err)
	}
	if generated != 2 {
		t.Errorf("期望为 2 个用户生成摘要，实际=%d", generated)
	}

	// 再跑一轮：窗口内通知都已汇总，不应新增
	generated, err = svc.RunDaily(context.Background(), firedAt)
	if err != nil {
		t.Fatalf("第二轮 RunDaily 应成功: %v", err)
	}
	if generated != 2 {
		t.Errorf("第二轮应返回既有的 2 份摘要，实际=%d", generated)
	}
	if len(repos.digests.digests) != 2 {
		t.Errorf("摘要总数应保持 2，实际=%d", len(repos.digests.digests))
	}
}

func TestDigestService_ListDigests(t *testing.T) {
	svc, repos, _ := setupTestDigestService()
	firedAt := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	seedDigestNotification(repos, "user-001", model.TypeNotice, "讲座通知", firedAt.Add(-time.Hour))
	if _, err := svc.GenerateDailyDigest(context.Background(), "user-001", firedAt); err != nil {
		t.Fatalf("生成摘要失败: %v", err)
	}

	items, total, err := svc.ListDigests(context.Background(), "user-001", "daily", 1, 20)
	if err != nil {
		t.Fatalf("ListDigests 应成功: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("期望 1 份摘要，total=%d len=%d", total, len(items))
	}
	if items[0].PeriodKind != "daily" {
		t.Errorf("期望 daily，实际=%s", items[0].PeriodKind)
	}

	// 他人视角看不到
	_, total, err = svc.ListDigests(context.Background(), "user-002", "", 1, 20)
	if err != nil || total != 0 {
		t.Errorf("其他用户不应看到摘要, total=%d err=%v", total, err)
	}
}

func TestDigestService_ListDigests_InvalidKind(t *testing.T) {
	svc, _, _ := setupTestDigestService()
	if _, _, err := svc.ListDigests(context.Background(), "user-001", "monthly", 1, 20); err == nil {
		t.Error("非法周期应报错")
	}
}
