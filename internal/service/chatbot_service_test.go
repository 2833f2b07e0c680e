package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"ksit-nexus/backend/internal/dto"
	"ksit-nexus/backend/internal/model"
)

func setupTestChatbotService() (ChatbotService, *testRepos) {
	repos := newTestRepos()
	svc := NewChatbotService(repos.repo, zap.NewNop())
	return svc, repos
}

func seedFAQ(repos *testRepos, question, answer string, keywords ...string) *model.FAQEntry {
	entry := &model.FAQEntry{
		Question: question,
		Answer:   answer,
		Category: "general",
		Keywords: model.StringArray(keywords),
		IsActive: true,
	}
	repos.faqs.Create(context.Background(), entry)
	return entry
}

func TestChatbotService_Ask_BestMatch(t *testing.T) {
	svc, repos := setupTestChatbotService()
	seedFAQ(repos, "图书馆几点开门？", "图书馆每天 8:00 开放。", "library", "timings", "open")
	best := seedFAQ(repos, "如何申请补考？", "请在教务处提交补考申请表。", "exam", "reattempt")

	resp, err := svc.Ask(context.Background(), &dto.AskRequest{
		Question: "How do I apply for the exam reattempt?",
	})
	if err != nil {
		t.Fatalf("Ask 应成功: %v", err)
	}
	if !resp.Matched {
		t.Fatal("关键词充分命中时应匹配知识库")
	}
	if resp.FAQID != best.FAQID {
		t.Errorf("应命中补考条目，实际=%s", resp.FAQID)
	}
	if resp.Answer != best.Answer {
		t.Errorf("应返回条目答案，实际=%q", resp.Answer)
	}
}

func TestChatbotService_Ask_PhraseWeighting(t *testing.T) {
	svc, repos := setupTestChatbotService()
	// 同样各命中一个关键词；短语整体命中计 1.5，单词命中计 1.0
	phrase := seedFAQ(repos, "挂科怎么办？", "可在下学期申请重修。", "failed subject", "marks")
	seedFAQ(repos, "成绩查询", "请在门户查询成绩。", "failed", "marks")

	resp, err := svc.Ask(context.Background(), &dto.AskRequest{
		Question: "what happens if I failed subject this semester",
	})
	if err != nil {
		t.Fatalf("Ask 应成功: %v", err)
	}
	if resp.FAQID != phrase.FAQID {
		t.Errorf("短语整体命中应胜过单词命中，实际=%s", resp.FAQID)
	}
	if resp.Score != 0.75 {
		t.Errorf("期望得分 1.5/2=0.75，实际=%v", resp.Score)
	}
}

func TestChatbotService_Ask_BelowFloorFallsBack(t *testing.T) {
	svc, repos := setupTestChatbotService()
	seedFAQ(repos, "图书馆几点开门？", "图书馆每天 8:00 开放。", "library", "timings", "open", "hours")

	resp, err := svc.Ask(context.Background(), &dto.AskRequest{
		Question: "where is the hostel mess",
	})
	if err != nil {
		t.Fatalf("Ask 应成功: %v", err)
	}
	if resp.Matched {
		t.Error("得分低于阈值时不应返回知识库答案")
	}
	if resp.FAQID != "" {
		t.Error("兜底回复不应携带条目 ID")
	}
	if resp.Answer == "" {
		t.Error("兜底话术不应为空")
	}
}

func TestChatbotService_Ask_InactiveEntrySkipped(t *testing.T) {
	svc, repos := setupTestChatbotService()
	entry := seedFAQ(repos, "图书馆几点开门？", "图书馆每天 8:00 开放。", "library")
	entry.IsActive = false

	resp, err := svc.Ask(context.Background(), &dto.AskRequest{
		Question: "library open timings please",
	})
	if err != nil {
		t.Fatalf("Ask 应成功: %v", err)
	}
	if resp.Matched {
		t.Error("停用条目不应参与匹配")
	}
}

func TestChatbotService_Ask_IncrementsHitCount(t *testing.T) {
	svc, repos := setupTestChatbotService()
	entry := seedFAQ(repos, "图书馆几点开门？", "图书馆每天 8:00 开放。", "library")

	for i := 0; i < 3; i++ {
		if _, err := svc.Ask(context.Background(), &dto.AskRequest{Question: "library timings"}); err != nil {
			t.Fatalf("Ask 应成功: %v", err)
		}
	}
	if entry.HitCount != 3 {
		t.Errorf("命中计数应为 3，实际=%d", entry.HitCount)
	}
}

// ── FAQ 条目管理 ──

func TestChatbotService_CreateFAQ_DefaultsCategory(t *testing.T) {
	svc, _ := setupTestChatbotService()

	resp, err := svc.CreateFAQ(context.Background(), &dto.CreateFAQRequest{
		Question: "Wi-Fi 密码是什么？",
		Answer:   "连接 KSIT-Campus 后在门户登录。",
		Keywords: []string{"wifi", "password"},
	})
	if err != nil {
		t.Fatalf("CreateFAQ 应成功: %v", err)
	}
	if resp.Category != "general" {
		t.Errorf("未填分类应回落 general，实际=%s", resp.Category)
	}
	if !resp.IsActive {
		t.Error("新建条目应默认启用")
	}
}

func TestChatbotService_UpdateFAQ(t *testing.T) {
	svc, repos := setupTestChatbotService()
	entry := seedFAQ(repos, "图书馆几点开门？", "旧答案。", "library")
	newAnswer := "图书馆每天 8:00 至 20:00 开放。"
	inactive := false

	resp, err := svc.UpdateFAQ(context.Background(), entry.FAQID, &dto.UpdateFAQRequest{
		Answer:   &newAnswer,
		IsActive: &inactive,
	})
	if err != nil {
		t.Fatalf("UpdateFAQ 应成功: %v", err)
	}
	if resp.Answer != newAnswer {
		t.Errorf("答案应已更新，实际=%q", resp.Answer)
	}
	if resp.IsActive {
		t.Error("条目应已停用")
	}
	if resp.Question != entry.Question {
		t.Error("未提供的字段应保持不变")
	}
}

func TestChatbotService_UpdateFAQ_NotFound(t *testing.T) {
	svc, _ := setupTestChatbotService()
	q := "q"
	_, err := svc.UpdateFAQ(context.Background(), "ghost", &dto.UpdateFAQRequest{Question: &q})
	if !errors.Is(err, ErrFAQNotFound) {
		t.Errorf("期望 ErrFAQNotFound，实际: %v", err)
	}
}

func TestChatbotService_DeleteFAQ(t *testing.T) {
	svc, repos := setupTestChatbotService()
	entry := seedFAQ(repos, "q", "a", "kw")

	if err := svc.DeleteFAQ(context.Background(), entry.FAQID); err != nil {
		t.Fatalf("DeleteFAQ 应成功: %v", err)
	}
	if !errors.Is(svc.DeleteFAQ(context.Background(), entry.FAQID), ErrFAQNotFound) {
		t.Error("重复删除应返回 ErrFAQNotFound")
	}
}
