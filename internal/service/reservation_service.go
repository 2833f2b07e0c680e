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
	ErrReservationNotFound = errors.New("预约不存在")
	ErrInvalidTimeSlot     = errors.New("预约结束时间必须晚于开始时间")
	ErrSlotConflict        = errors.New("该资源在所选时段已被预约")
	ErrReservationDecided  = errors.New("预约已处理，不能重复操作")
	ErrNotReservationOwner = errors.New("只能取消自己的预约")
)

// ReservationService 资源预约业务接口
type ReservationService interface {
	Create(ctx context.Context, userID string, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error)
	Get(ctx context.Context, id string) (*dto.ReservationResponse, error)
	// List userID 为空时返回全部（staff/admin 视角）
	List(ctx context.Context, userID string, req *dto.ReservationListRequest) ([]dto.ReservationResponse, int64, error)
	// Decide 审批预约；通过前校验同资源同时段无已通过预约，并通知申请人
	Decide(ctx context.Context, id, deciderID string, req *dto.DecideReservationRequest) (*dto.ReservationResponse, error)
	Cancel(ctx context.Context, id, userID string) error
}

type reservationService struct {
	repo     *repository.Repository
	notifier NotificationService
	logger   *zap.Logger
}

// NewReservationService 创建 ReservationService 实例
func NewReservationService(repo *repository.Repository, notifier NotificationService, logger *zap.Logger) ReservationService {
	return &reservationService{repo: repo, notifier: notifier, logger: logger}
}

func (s *reservationService) Create(ctx context.Context, userID string, req *dto.CreateReservationRequest) (*dto.ReservationResponse, error) {
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}
	endsAt, err := time.Parse(time.RFC3339, req.EndsAt)
	if err != nil {
		return nil, ErrInvalidTimeFormat
	}
	if !endsAt.After(startsAt) {
		return nil, ErrInvalidTimeSlot
	}

	// 提交时先做一次冲突预检，给用户即时反馈；审批时还会复查
	conflict, err := s.repo.Reservation.HasApprovedOverlap(ctx, req.ResourceType, req.ResourceName, startsAt, endsAt, "")
	if err != nil {
		return nil, err
	}
	if conflict {
		return nil, ErrSlotConflict
	}

	reservation := &model.Reservation{
		UserID:       userID,
		ResourceType: req.ResourceType,
		ResourceName: req.ResourceName,
		StartsAt:     startsAt,
		EndsAt:       endsAt,
		Purpose:      req.Purpose,
		Status:       model.ReservationPending,
	}
	if err := s.repo.Reservation.Create(ctx, reservation); err != nil {
		s.logger.Error("创建预约失败", zap.Error(err))
		return nil, err
	}
	return toReservationResponse(reservation), nil
}

func (s *reservationService) Get(ctx context.Context, id string) (*dto.ReservationResponse, error) {
	reservation, err := s.repo.Reservation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	return toReservationResponse(reservation), nil
}

func (s *reservationService) List(ctx context.Context, userID string, req *dto.ReservationListRequest) ([]dto.ReservationResponse, int64, error) {
	reservations, total, err := s.repo.Reservation.List(ctx, userID, req.Status, (req.Page-1)*req.PageSize, req.PageSize)
	if err != nil {
		return nil, 0, err
	}
	items := make([]dto.ReservationResponse, len(reservations))
	for i := range reservations {
		items[i] = *toReservationResponse(&reservations[i])
	}
	return items, total, nil
}

func (s *reservationService) Decide(ctx context.Context, id, deciderID string, req *dto.DecideReservationRequest) (*dto.ReservationResponse, error) {
	reservation, err := s.repo.Reservation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrReservationNotFound
		}
		return nil, err
	}
	if reservation.Status != model.ReservationPending {
		return nil, ErrReservationDecided
	}

	if req.Approve {
		// 同一资源同一时段至多一条 approved 记录
		conflict, err := s.repo.Reservation.HasApprovedOverlap(ctx,
			reservation.ResourceType, reservation.ResourceName,
			reservation.StartsAt, reservation.EndsAt, reservation.ReservationID)
		if err != nil {
			return nil, err
		}
		if conflict {
			return nil, ErrSlotConflict
		}
		reservation.Status = model.ReservationApproved
	} else {
		reservation.Status = model.ReservationRejected
	}
	reservation.DecidedBy = &deciderID

	if err := s.repo.Reservation.Update(ctx, reservation); err != nil {
		s.logger.Error("更新预约状态失败", zap.Error(err))
		return nil, err
	}

	// 通知申请人（失败不阻断审批）
	title := "预约已通过"
	message := fmt.Sprintf("您预约的 %s（%s - %s）已通过审批。",
		reservation.ResourceName,
		reservation.StartsAt.Format("01-02 15:04"),
		reservation.EndsAt.Format("15:04"))
	if !req.Approve {
		title = "预约未通过"
		message = fmt.Sprintf("您预约的 %s 未通过审批。", reservation.ResourceName)
		if req.Reason != "" {
			message += "原因：" + req.Reason
		}
	}
	nerr := s.notifier.Notify(ctx, reservation.UserID, model.TypeReservation, title, message,
		model.JSONMap{"status": reservation.Status}, "reservation", reservation.ReservationID)
	if nerr != nil {
		s.logger.Warn("预约通知发送失败",
			zap.String("reservation_id", reservation.ReservationID), zap.Error(nerr))
	}

	return toReservationResponse(reservation), nil
}

func (s *reservationService) Cancel(ctx context.Context, id, userID string) error {
	reservation, err := s.repo.Reservation.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrReservationNotFound
		}
		return err
	}
	if reservation.UserID != userID {
		return ErrNotReservationOwner
	}
	if reservation.Status == model.ReservationCancelled {
		return nil
	}

	reservation.Status = model.ReservationCancelled
	return s.repo.Reservation.Update(ctx, reservation)
}

func toReservationResponse(r *model.Reservation) *dto.ReservationResponse {
	return &dto.ReservationResponse{
		ID:           r.ReservationID,
		UserID:       r.UserID,
		ResourceType: r.ResourceType,
		ResourceName: r.ResourceName,
		StartsAt:     r.StartsAt.Format(time.RFC3339),
		EndsAt:       r.EndsAt.Format(time.RFC3339),
		Purpose:      r.Purpose,
		Status:       r.Status,
		CreatedAt:    r.CreatedAt.Format(time.RFC3339),
	}
}
