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
)

func setupTestReservationService() (ReservationService, *testRepos) {
	repos := newTestRepos()
	repos.users.Create(context.Background(), &model.User{
		UserID: "user-001", Name: "学生甲", USN: "1KS21CS001",
		Email: "a@ksit.edu.in", Role: "student",
	})
	repos.users.Create(context.Background(), &model.User{
		UserID: "staff-001", Name: "管理员", USN: "STAFF001",
		Email: "staff@ksit.edu.in", Role: "staff",
	})

	cfg := &config.NotificationConfig{DefaultTier: "standard"}
	notifier := NewNotificationService(cfg, repos.repo,
		NewPriorityEngine(repos.rules, zap.NewNop()),
		NewTierClassifier(cfg, repos.tiers, zap.NewNop()),
		NewSummaryGenerator(), &mockDispatcher{}, newMockUnreadCache(), zap.NewNop())
	return NewReservationService(repos.repo, notifier, zap.NewNop()), repos
}

func reservationReq(resource string, start, end time.Time) *dto.CreateReservationRequest {
	return &dto.CreateReservationRequest{
		ResourceType: "seminar_hall",
		ResourceName: resource,
		StartsAt:     start.Format(time.RFC3339),
		EndsAt:       end.Format(time.RFC3339),
		Purpose:      "技术讲座",
	}
}

func TestReservationService_Create(t *testing.T) {
	svc, _ := setupTestReservationService()
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	resp, err := svc.Create(context.Background(), "user-001", reservationReq("A 报告厅", start, start.Add(2*time.Hour)))
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if resp.Status != model.ReservationPending {
		t.Errorf("新预约应处于 pending，实际=%s", resp.Status)
	}
}

func TestReservationService_Create_InvalidTime(t *testing.T) {
	svc, _ := setupTestReservationService()
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	_, err := svc.Create(context.Background(), "user-001", &dto.CreateReservationRequest{
		ResourceType: "seminar_hall", ResourceName: "A 报告厅",
		StartsAt: "2026-04-01 10:00", EndsAt: start.Format(time.RFC3339),
	})
	if !errors.Is(err, ErrInvalidTimeFormat) {
		t.Errorf("非 RFC3339 时间应报 ErrInvalidTimeFormat，实际: %v", err)
	}

	// 结束不晚于开始
	_, err = svc.Create(context.Background(), "user-001", reservationReq("A 报告厅", start, start))
	if !errors.Is(err, ErrInvalidTimeSlot) {
		t.Errorf("期望 ErrInvalidTimeSlot，实际: %v", err)
	}
}

func TestReservationService_Create_ConflictWithApproved(t *testing.T) {
	svc, repos := setupTestReservationService()
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	repos.reservations.Create(context.Background(), &model.Reservation{
		UserID: "user-002", ResourceType: "seminar_hall", ResourceName: "A 报告厅",
		StartsAt: start, EndsAt: start.Add(2 * time.Hour), Status: model.ReservationApproved,
	})

	// 时段重叠
	_, err := svc.Create(context.Background(), "user-001",
		reservationReq("A 报告厅", start.Add(time.Hour), start.Add(3*time.Hour)))
	if !errors.Is(err, ErrSlotConflict) {
		t.Errorf("与已通过预约重叠应报 ErrSlotConflict，实际: %v", err)
	}

	// 紧邻不算重叠
	if _, err := svc.Create(context.Background(), "user-001",
		reservationReq("A 报告厅", start.Add(2*time.Hour), start.Add(4*time.Hour))); err != nil {
		t.Errorf("首尾相接的时段不应冲突: %v", err)
	}

	// 同时段不同资源不冲突
	if _, err := svc.Create(context.Background(), "user-001",
		reservationReq("B 报告厅", start, start.Add(2*time.Hour))); err != nil {
		t.Errorf("不同资源不应冲突: %v", err)
	}
}

func TestReservationService_Decide_Approve(t *testing.T) {
	svc, repos := setupTestReservationService()
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	resp, err := svc.Create(context.Background(), "user-001", reservationReq("A 报告厅", start, start.Add(2*time.Hour)))
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	decided, err := svc.Decide(context.Background(), resp.ID, "staff-001", &dto.DecideReservationRequest{Approve: true})
	if err != nil {
		t.Fatalf("Decide 应成功: %v", err)
	}
	// 落库状态值与迁移里的 CHECK 约束一致
	if decided.Status != model.ReservationApproved && decided.Status != "approved" {
		t.Errorf("期望 approved，实际=%s", decided.Status)
	}

	// 应通知申请人
	list, _, err := repos.notifications.ListByUser(context.Background(), "user-001", false, model.TypeReservation, 0, 10)
	if err != nil || len(list) != 1 {
		t.Fatalf("申请人应收到 1 条预约通知, len=%d err=%v", len(list), err)
	}
	if list[0].Title != "预约已通过" {
		t.Errorf("通知标题不符: %q", list[0].Title)
	}
}

func TestReservationService_Decide_Reject(t *testing.T) {
	svc, repos := setupTestReservationService()
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	resp, _ := svc.Create(context.Background(), "user-001", reservationReq("A 报告厅", start, start.Add(time.Hour)))

	decided, err := svc.Decide(context.Background(), resp.ID, "staff-001",
		&dto.DecideReservationRequest{Approve: false, Reason: "当天例行维护"})
	if err != nil {
		t.Fatalf("Decide 应成功: %v", err)
	}
	if decided.Status != model.ReservationRejected {
		t.Errorf("期望 rejected，实际=%s", decided.Status)
	}
	list, _, _ := repos.notifications.ListByUser(context.Background(), "user-001", false, model.TypeReservation, 0, 10)
	if len(list) != 1 || list[0].Title != "预约未通过" {
		t.Fatal("应通知申请人预约未通过")
	}
}

func TestReservationService_Decide_RechecksOverlapExcludingSelf(t *testing.T) {
	svc, _ := setupTestReservationService()
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	// 两个学生提交同一时段：提交时都还没有 approved 记录，预检都放行
	first, err := svc.Create(context.Background(), "user-001", reservationReq("A 报告厅", start, start.Add(2*time.Hour)))
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	second, err := svc.Create(context.Background(), "user-001", reservationReq("A 报告厅", start, start.Add(2*time.Hour)))
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}

	// 审批自己不应被自己挡住
	if _, err := svc.Decide(context.Background(), first.ID, "staff-001", &dto.DecideReservationRequest{Approve: true}); err != nil {
		t.Fatalf("首个审批应通过: %v", err)
	}
	// 第二个审批时复查发现冲突
	_, err = svc.Decide(context.Background(), second.ID, "staff-001", &dto.DecideReservationRequest{Approve: true})
	if !errors.Is(err, ErrSlotConflict) {
		t.Errorf("审批复查应发现冲突，实际: %v", err)
	}
}

func TestReservationService_Decide_Twice(t *testing.T) {
	svc, _ := setupTestReservationService()
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	resp, _ := svc.Create(context.Background(), "user-001", reservationReq("A 报告厅", start, start.Add(time.Hour)))

	if _, err := svc.Decide(context.Background(), resp.ID, "staff-001", &dto.DecideReservationRequest{Approve: true}); err != nil {
		t.Fatalf("首次审批应成功: %v", err)
	}
	_, err := svc.Decide(context.Background(), resp.ID, "staff-001", &dto.DecideReservationRequest{Approve: false})
	if !errors.Is(err, ErrReservationDecided) {
		t.Errorf("重复审批应报 ErrReservationDecided，实际: %v", err)
	}
}

func TestReservationService_Cancel(t *testing.T) {
	svc, repos := setupTestReservationService()
	start := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	resp, _ := svc.Create(context.Background(), "user-001", reservationReq("A 报告厅", start, start.Add(time.Hour)))

	if err := svc.Cancel(context.Background(), resp.ID, "user-002"); !errors.Is(err, ErrNotReservationOwner) {
		t.Errorf("非本人取消应报 ErrNotReservationOwner，实际: %v", err)
	}
	if err := svc.Cancel(context.Background(), resp.ID, "user-001"); err != nil {
		t.Fatalf("本人取消应成功: %v", err)
	}
	r, _ := repos.reservations.GetByID(context.Background(), resp.ID)
	if r.Status != model.ReservationCancelled {
		t.Errorf("期望 cancelled，实际=%s", r.Status)
	}
	// 重复取消幂等
	if err := svc.Cancel(context.Background(), resp.ID, "user-001"); err != nil {
		t.Errorf("重复取消应幂等: %v", err)
	}
}
