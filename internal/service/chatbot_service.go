package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ksit-nexus/backend/internal/dto"
	"ksit-nexus/backend/internal/model"
	"ksit-nexus/backend/internal/repository"
)

var ErrFAQNotFound = errors.New("FAQ 条目不存在")

// 匹配得分低于此阈值时不返回知识库答案
const faqScoreFloor = 0.3

// 未命中知识库时的兜底回复
const faqFallbackAnswer = "抱歉，我还回答不了这个问题。你可以换个问法，或通过「投诉反馈」联系管理员。"

// ChatbotService 机器人问答业务接口
// 按关键词重合度对知识库条目打分，返回最佳答案；低于阈值走兜底话术
type ChatbotService interface {
	Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error)
	CreateFAQ(ctx context.Context, req *dto.CreateFAQRequest) (*dto.FAQResponse, error)
	ListFAQs(ctx context.Context, page, pageSize int) ([]dto.FAQResponse, int64, error)
	UpdateFAQ(ctx context.Context, id string, req *dto.UpdateFAQRequest) (*dto.FAQResponse, error)
	DeleteFAQ(ctx context.Context, id string) error
}

type chatbotService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewChatbotService 创建 ChatbotService 实例
func NewChatbotService(repo *repository.Repository, logger *zap.Logger) ChatbotService {
	return &chatbotService{repo: repo, logger: logger}
}

func (s *chatbotService) Ask(ctx context.Context, req *dto.AskRequest) (*dto.AskResponse, error) {
	entries, err := s.repo.FAQ.ListActive(ctx)
	if err != nil {
		s.logger.Error("查询 FAQ 知识库失败", zap.Error(err))
		return nil, err
	}

	question := strings.ToLower(req.Question)
	words := questionWords(question)

	var best *model.FAQEntry
	bestScore := 0.0
	for i := range entries {
		score := scoreEntry(&entries[i], question, words)
		if score > bestScore {
			best = &entries[i]
			bestScore = score
		}
	}

	if best == nil || bestScore < faqScoreFloor {
		return &dto.AskResponse{
			Answer:  faqFallbackAnswer,
			Matched: false,
			Score:   bestScore,
		}, nil
	}

	if err := s.repo.FAQ.IncrementHit(ctx, best.FAQID); err != nil {
		s.logger.Warn("FAQ 命中计数失败", zap.String("faq_id", best.FAQID), zap.Error(err))
	}

	return &dto.AskResponse{
		Answer:   best.Answer,
		Matched:  true,
		FAQID:    best.FAQID,
		Score:    bestScore,
		Category: best.Category,
	}, nil
}

// scoreEntry 条目得分 = 关键词命中率，整个关键词短语出现在问题中时加权
func scoreEntry(entry *model.FAQEntry, question string, words map[string]bool) float64 {
	if len(entry.Keywords) == 0 {
		return 0
	}

	hits := 0.0
	for _, kw := range entry.Keywords {
		kw = strings.ToLower(kw)
		switch {
		case strings.Contains(question, kw):
			// 短语整体命中，权重更高
			hits += 1.5
		case words[kw]:
			hits += 1.0
		}
	}

	score := hits / float64(len(entry.Keywords))
	if score > 1.0 {
		score = 1.0
	}
	return score
}

func questionWords(question string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(question) {
		w = strings.Trim(w, ",.;:!?\"'()？！。，")
		if w != "" {
			words[w] = true
		}
	}
	return words
}

// ── FAQ 条目管理（admin）──

func (s *chatbotService) CreateFAQ(ctx context.Context, req *dto.CreateFAQRequest) (*dto.FAQResponse, error) {
	entry := &model.FAQEntry{
		Question: req.Question,
		Answer:   req.Answer,
		Category: req.Category,
		Keywords: model.StringArray(req.Keywords),
		IsActive: true,
	}
	if entry.Category == "" {
		entry.Category = "general"
	}
	if err := s.repo.FAQ.Create(ctx, entry); err != nil {
		s.logger.Error("创建 FAQ 条目失败", zap.Error(err))
		return nil, err
	}
	return toFAQResponse(entry), nil
}

func (s *chatbotService) ListFAQs(ctx context.Context, page, pageSize int) ([]dto.FAQResponse, int64, error) {
	entries, total, err := s.repo.FAQ.List(ctx, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, 0, err
	}
	items := make([]dto.FAQResponse, len(entries))
	for i := range entries {
		items[i] = *toFAQResponse(&entries[i])
	}
	return items, total, nil
}

func (s *chatbotService) UpdateFAQ(ctx context.Context, id string, req *dto.UpdateFAQRequest) (*dto.FAQResponse, error) {
	entry, err := s.repo.FAQ.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFAQNotFound
		}
		return nil, err
	}

	if req.Question != nil {
		entry.Question = *req.Question
	}
	if req.Answer != nil {
		entry.Answer = *req.Answer
	}
	if req.Category != nil {
		entry.Category = *req.Category
	}
	if req.Keywords != nil {
		entry.Keywords = model.StringArray(*req.Keywords)
	}
	if req.IsActive != nil {
		entry.IsActive = *req.IsActive
	}

	if err := s.repo.FAQ.Update(ctx, entry); err != nil {
		return nil, err
	}
	return toFAQResponse(entry), nil
}

func (s *chatbotService) DeleteFAQ(ctx context.Context, id string) error {
	if err := s.repo.FAQ.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFAQNotFound
		}
		return err
	}
	return nil
}

func toFAQResponse(e *model.FAQEntry) *dto.FAQResponse {
	return &dto.FAQResponse{
		ID:       e.FAQID,
		Question: e.Question,
		Answer:   e.Answer,
		Category: e.Category,
		Keywords: e.Keywords,
		HitCount: e.HitCount,
		IsActive: e.IsActive,
	}
}
