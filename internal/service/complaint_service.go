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

var ErrComplaintNotFound = errors.New("投诉不存在")

// ComplaintService 投诉业务接口
type ComplaintService interface {
	Create(ctx context.Context, userID string, req *dto.CreateComplaintRequest) (*dto.ComplaintResponse, error)
	Get(ctx context.Context, id string) (*dto.ComplaintResponse, error)
	// List userID 为空时返回全部（staff/admin 视角）
	List(ctx context.Context, userID string, req *dto.ComplaintListRequest) ([]dto.ComplaintResponse, int64, error)
	Assign(ctx context.Context, id string, req *dto.AssignComplaintRequest) (*dto.ComplaintResponse, error)
	// UpdateStatus 更新处理状态并通知投诉人
	UpdateStatus(ctx context.Context, id string, req *dto.UpdateComplaintStatusRequest) (*dto.ComplaintResponse, error)
}

type complaintService struct {
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewComplaintService 创建 ComplaintService 实例
func NewComplaintService(repo *repository.Repository, notifier NotificationService, logger *zap.Logger) ComplaintService {
	return &complaintService{repo: repo, notifier: notifier, logger: logger}
}

func (s *complaintService) Create(ctx context.Context, userID string, req *dto.CreateComplaintRequest) (*dto.ComplaintResponse, error) {
	complaint := &model.Complaint{
		UserID:      userID,
		Category:    req.Category,
		Subject:     req.Subject,
		Description: req.Description,
		Status:      model.ComplaintOpen,
	}
	if err := s.repo.Complaint.Create(ctx, complaint); err != nil {
		s.logger.Error("创建投诉失败", zap.Error(err))
		return nil, err
	}

	// 提交确认通知（失败不阻断提交）
	s.notify(ctx, complaint, "投诉已受理",
		fmt.Sprintf("您提交的投诉「%s」已受理，当前状态：待处理。", complaint.Subject))

	return toComplaintResponse(complaint), nil
}

func (s *complaintService) Get(ctx context.Context, id string) (*dto.ComplaintResponse, error) {
	complaint, err := s.repo.Complaint.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComplaintNotFound
		}
		return nil, err
	}
	return toComplaintResponse(complaint), nil
}

func (s *complaintService) List(ctx context.Context, userID string, req *dto.ComplaintListRequest) ([]dto.ComplaintResponse, int64, error) {
	complaints, total, err := s.repo.Complaint.List(ctx, userID, req.Status, (req.Page-1)*req.PageSize, req.PageSize)
	if err != nil {
		return nil, 0, err
	}
	items := make([]dto.ComplaintResponse, len(complaints))
	for i := range complaints {
		items[i] = *toComplaintResponse(&complaints[i])
	}
	return items, total, nil
}

func (s *complaintService) Assign(ctx context.Context, id string, req *dto.AssignComplaintRequest) (*dto.ComplaintResponse, error) {
	complaint, err := s.repo.Complaint.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComplaintNotFound
		}
		return nil, err
	}

	complaint.AssigneeID = &req.AssigneeID
	if complaint.Status == model.ComplaintOpen {
		complaint.Status = model.ComplaintInProgress
	}
	if err := s.repo.Complaint.Update(ctx, complaint); err != nil {
		return nil, err
	}

	s.notify(ctx, complaint, "投诉处理中",
		fmt.Sprintf("您的投诉「%s」已分配处理人，正在处理中。", complaint.Subject))

	return toComplaintResponse(complaint), nil
}

func (s *complaintService) UpdateStatus(ctx context.Context, id string, req *dto.UpdateComplaintStatusRequest) (*dto.ComplaintResponse, error) {
	complaint, err := s.repo.Complaint.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComplaintNotFound
		}
		return nil, err
	}

	complaint.Status = req.Status
	if req.Resolution != "" {
		complaint.Resolution = &req.Resolution
	}
	if err := s.repo.Complaint.Update(ctx, complaint); err != nil {
		s.logger.Error("更新投诉状态失败", zap.Error(err))
		return nil, err
	}

	s.notify(ctx, complaint, "投诉状态更新",
		fmt.Sprintf("您的投诉「%s」状态已更新为：%s。", complaint.Subject, complaintStatusLabel(req.Status)))

	return toComplaintResponse(complaint), nil
}

func (s *complaintService) notify(ctx context.Context, complaint *model.Complaint, title, message string) {
	err := s.notifier.Notify(ctx, complaint.UserID, model.TypeComplaint, title, message,
		model.JSONMap{"status": complaint.Status}, "complaint", complaint.ComplaintID)
	if err != nil {
		s.logger.Warn("投诉通知发送失败",
			zap.String("complaint_id", complaint.ComplaintID), zap.Error(err))
	}
}

func complaintStatusLabel(status string) string {
	switch status {
	case model.ComplaintOpen:
		return "待处理"
	case model.ComplaintInProgress:
		return "处理中"
	case model.ComplaintResolved:
		return "已解决"
	case model.ComplaintRejected:
		return "已驳回"
	}
	return status
}

func toComplaintResponse(c *model.Complaint) *dto.ComplaintResponse {
	resp := &dto.ComplaintResponse{
		ID:          c.ComplaintID,
		UserID:      c.UserID,
		Category:    c.Category,
		Subject:     c.Subject,
		Description: c.Description,
		Status:      c.Status,
		CreatedAt:   c.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.Format(time.RFC3339),
	}
	if c.AssigneeID != nil {
		resp.AssigneeID = *c.AssigneeID
	}
	if c.Resolution != nil {
		resp.Resolution = *c.Resolution
	}
	return resp
}
