package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ksit-nexus/backend/internal/dto"
	"ksit-nexus/backend/internal/model"
	"ksit-nexus/backend/internal/repository"
)

var (
	ErrNoticeNotFound  = errors.New("公告不存在")
	ErrNoticePublished = errors.New("公告已发布")
)

// 受众通知按批拉取用户，避免一次性加载全表
const noticeFanoutBatch = 200

// NoticeService 公告业务接口
type NoticeService interface {
	// Create 创建公告草稿
	Create(ctx context.Context, authorID string, req *dto.CreateNoticeRequest) (*dto.NoticeResponse, error)
	// Publish 发布公告并向受众逐个产生通知
	Publish(ctx context.Context, id string) (*dto.NoticeResponse, error)
	Get(ctx context.Context, id string) (*dto.NoticeResponse, error)
	List(ctx context.Context, req *dto.NoticeListRequest, includeDrafts bool) ([]dto.NoticeResponse, int64, error)
	Delete(ctx context.Context, id string) error
}

type noticeService struct {
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewNoticeService 创建 NoticeService 实例
func NewNoticeService(repo *repository.Repository, notifier NotificationService, logger *zap.Logger) NoticeService {
	return &noticeService{repo: repo, notifier: notifier, logger: logger}
}

func (s *noticeService) Create(ctx context.Context, authorID string, req *dto.CreateNoticeRequest) (*dto.NoticeResponse, error) {
	notice := &model.Notice{
		AuthorID: authorID,
		Title:    req.Title,
		Body:     req.Body,
		Category: req.Category,
		Audience: req.Audience,
	}
	if notice.Category == "" {
		notice.Category = "general"
	}
	if notice.Audience == "" {
		notice.Audience = "all"
	}
	if req.ExpiresAt != "" {
		t, err := time.Parse(time.RFC3339, req.ExpiresAt)
		if err != nil {
			return nil, ErrInvalidTimeFormat
		}
		notice.ExpiresAt = &t
	}

	if err := s.repo.Notice.Create(ctx, notice); err != nil {
		s.logger.Error("创建公告失败", zap.Error(err))
		return nil, err
	}
	return toNoticeResponse(notice), nil
}

func (s *noticeService) Publish(ctx context.Context, id string) (*dto.NoticeResponse, error) {
	notice, err := s.repo.Notice.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoticeNotFound
		}
		return nil, err
	}
	if notice.IsPublished {
		return nil, ErrNoticePublished
	}

	now := time.Now()
	notice.IsPublished = true
	notice.PublishedAt = &now
	if err := s.repo.Notice.Update(ctx, notice); err != nil {
		s.logger.Error("发布公告失败", zap.Error(err))
		return nil, err
	}

	// 受众扇出：单个用户失败只记日志
	s.fanout(ctx, notice)

	return toNoticeResponse(notice), nil
}

// fanout 向公告受众逐个产生通知
// 「重要通告」类目走 announcement 类型，其余走 notice
func (s *noticeService) fanout(ctx context.Context, notice *model.Notice) {
	typ := model.TypeNotice
	if notice.Category == "announcement" {
		typ = model.TypeAnnouncement
	}
	role := ""
	if notice.Audience != "all" {
		role = notice.Audience
	}

	for offset := 0; ; offset += noticeFanoutBatch {
		users, _, err := s.repo.User.List(ctx, role, offset, noticeFanoutBatch)
		if err != nil {
			s.logger.Error("拉取公告受众失败", zap.String("notice_id", notice.NoticeID), zap.Error(err))
			return
		}
		if len(users) == 0 {
			return
		}
		for i := range users {
			err := s.notifier.Notify(ctx, users[i].UserID, typ, notice.Title, notice.Body,
				model.JSONMap{"category": notice.Category}, "notice", notice.NoticeID)
			if err != nil {
				s.logger.Warn("公告通知发送失败",
					zap.String("notice_id", notice.NoticeID),
					zap.String("user_id", users[i].UserID),
					zap.Error(err))
			}
		}
		if len(users) < noticeFanoutBatch {
			return
		}
	}
}

func (s *noticeService) Get(ctx context.Context, id string) (*dto.NoticeResponse, error) {
	notice, err := s.repo.Notice.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoticeNotFound
		}
		return nil, err
	}
	return toNoticeResponse(notice), nil
}

func (s *noticeService) List(ctx context.Context, req *dto.NoticeListRequest, includeDrafts bool) ([]dto.NoticeResponse, int64, error) {
	publishedOnly := !(includeDrafts && req.IncludeDrafts)
	notices, total, err := s.repo.Notice.List(ctx, req.Category, publishedOnly, (req.Page-1)*req.PageSize, req.PageSize)
	if err != nil {
		return nil, 0, err
	}
	items := make([]dto.NoticeResponse, len(notices))
	for i := range notices {
		items[i] = *toNoticeResponse(&notices[i])
	}
	return items, total, nil
}

func (s *noticeService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Notice.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoticeNotFound
		}
		return err
	}
	return nil
}

func toNoticeResponse(n *model.Notice) *dto.NoticeResponse {
	resp := &dto.NoticeResponse{
		ID:          n.NoticeID,
		Title:       n.Title,
		Body:        n.Body,
		Category:    n.Category,
		Audience:    n.Audience,
		IsPublished: n.IsPublished,
		CreatedAt:   n.CreatedAt.Format(time.RFC3339),
	}
	if n.PublishedAt != nil {
		resp.PublishedAt = n.PublishedAt.Format(time.RFC3339)
	}
	if n.ExpiresAt != nil {
		resp.ExpiresAt = n.ExpiresAt.Format(time.RFC3339)
	}
	return resp
}
