package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ksit-nexus/backend/internal/dto"
	"ksit-nexus/backend/internal/model"
	"ksit-nexus/backend/internal/repository"
)

var (
	ErrGroupNotFound  = errors.New("学习小组不存在")
	ErrGroupFull      = errors.New("学习小组已满员")
	ErrAlreadyMember  = errors.New("已是小组成员")
	ErrNotMember      = errors.New("不是小组成员")
	ErrOwnerCantLeave = errors.New("组长不能退出自己的小组")
)

// StudyGroupService 学习小组业务接口
type StudyGroupService interface {
	Create(ctx context.Context, ownerID string, req *dto.CreateStudyGroupRequest) (*dto.StudyGroupResponse, error)
	Get(ctx context.Context, id string) (*dto.StudyGroupResponse, error)
	List(ctx context.Context, req *dto.StudyGroupListRequest) ([]dto.StudyGroupResponse, int64, error)
	// Join 入组并通知组长
	Join(ctx context.Context, groupID, userID string) error
	Leave(ctx context.Context, groupID, userID string) error
}

type studyGroupService struct {
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewStudyGroupService 创建 StudyGroupService 实例
func NewStudyGroupService(repo *repository.Repository, notifier NotificationService, logger *zap.Logger) StudyGroupService {
	return &studyGroupService{repo: repo, notifier: notifier, logger: logger}
}

func (s *studyGroupService) Create(ctx context.Context, ownerID string, req *dto.CreateStudyGroupRequest) (*dto.StudyGroupResponse, error) {
	capacity := req.Capacity
	if capacity == 0 {
		capacity = 10
	}
	group := &model.StudyGroup{
		OwnerID:     ownerID,
		Name:        req.Name,
		Subject:     req.Subject,
		Description: req.Description,
		Capacity:    capacity,
	}
	owner := &model.StudyGroupMember{
		UserID:   ownerID,
		Role:     "owner",
		JoinedAt: time.Now(),
	}
	if err := s.repo.StudyGroup.Create(ctx, group, owner); err != nil {
		s.logger.Error("创建学习小组失败", zap.Error(err))
		return nil, err
	}

	resp := toStudyGroupResponse(group)
	resp.MemberCount = 1
	return resp, nil
}

func (s *studyGroupService) Get(ctx context.Context, id string) (*dto.StudyGroupResponse, error) {
	group, err := s.repo.StudyGroup.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, err
	}
	resp := toStudyGroupResponse(group)
	resp.MemberCount = len(group.Members)
	return resp, nil
}

func (s *studyGroupService) List(ctx context.Context, req *dto.StudyGroupListRequest) ([]dto.StudyGroupResponse, int64, error) {
	groups, total, err := s.repo.StudyGroup.List(ctx, req.Subject, (req.Page-1)*req.PageSize, req.PageSize)
	if err != nil {
		return nil, 0, err
	}
	items := make([]dto.StudyGroupResponse, len(groups))
	for i := range groups {
		items[i] = *toStudyGroupResponse(&groups[i])
		items[i].MemberCount = len(groups[i].Members)
	}
	return items, total, nil
}

func (s *studyGroupService) Join(ctx context.Context, groupID, userID string) error {
	group, err := s.repo.StudyGroup.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return err
	}

	if _, err := s.repo.StudyGroup.GetMember(ctx, groupID, userID); err == nil {
		return ErrAlreadyMember
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	count, err := s.repo.StudyGroup.MemberCount(ctx, groupID)
	if err != nil {
		return err
	}
	if count >= int64(group.Capacity) {
		return ErrGroupFull
	}

	member := &model.StudyGroupMember{
		GroupID:  groupID,
		UserID:   userID,
		Role:     "member",
		JoinedAt: time.Now(),
	}
	if err := s.repo.StudyGroup.AddMember(ctx, member); err != nil {
		s.logger.Error("加入学习小组失败", zap.Error(err))
		return err
	}

	// 通知组长（失败不阻断入组）
	joiner, err := s.repo.User.GetByID(ctx, userID)
	joinerName := "新成员"
	if err == nil {
		joinerName = joiner.Name
	}
	nerr := s.notifier.Notify(ctx, group.OwnerID, model.TypeStudyGroup, "小组有新成员",
		fmt.Sprintf("%s 加入了你的学习小组「%s」。", joinerName, group.Name),
		model.JSONMap{"member_id": userID}, "study_group", group.GroupID)
	if nerr != nil {
		s.logger.Warn("入组通知发送失败",
			zap.String("group_id", group.GroupID), zap.Error(nerr))
	}
	return nil
}

func (s *studyGroupService) Leave(ctx context.Context, groupID, userID string) error {
	group, err := s.repo.StudyGroup.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrGroupNotFound
		}
		return err
	}
	if group.OwnerID == userID {
		return ErrOwnerCantLeave
	}

	if err := s.repo.StudyGroup.RemoveMember(ctx, groupID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotMember
		}
		return err
	}
	return nil
}

func toStudyGroupResponse(g *model.StudyGroup) *dto.StudyGroupResponse {
	return &dto.StudyGroupResponse{
		ID:          g.GroupID,
		OwnerID:     g.OwnerID,
		Name:        g.Name,
		Subject:     g.Subject,
		Description: g.Description,
		Capacity:    g.Capacity,
		CreatedAt:   g.CreatedAt.Format(time.RFC3339),
	}
}
