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

// UserService 用户业务接口
type UserService interface {
	GetByID(ctx context.Context, id string) (*dto.UserResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error)
	// RegisterDevice 注册/刷新推送设备 token
	RegisterDevice(ctx context.Context, userID string, req *dto.RegisterDeviceRequest) error
}

type userService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(repo *repository.Repository, logger *zap.Logger) UserService {
	return &userService{repo: repo, logger: logger}
}

func (s *userService) GetByID(ctx context.Context, id string) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) Update(ctx context.Context, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Phone != nil {
		user.Phone = *req.Phone
	}
	if req.Department != nil {
		user.Department = *req.Department
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.Error(err))
		return nil, err
	}
	return toUserResponse(user), nil
}

func (s *userService) List(ctx context.Context, req *dto.UserListRequest) ([]dto.UserResponse, int64, error) {
	users, total, err := s.repo.User.List(ctx, req.Role, (req.Page-1)*req.PageSize, req.PageSize)
	if err != nil {
		return nil, 0, err
	}

	items := make([]dto.UserResponse, len(users))
	for i := range users {
		items[i] = *toUserResponse(&users[i])
	}
	return items, total, nil
}

func (s *userService) RegisterDevice(ctx context.Context, userID string, req *dto.RegisterDeviceRequest) error {
	now := time.Now()
	device := &model.Device{
		DeviceToken:  req.DeviceToken,
		UserID:       userID,
		Platform:     req.Platform,
		IsActive:     true,
		RegisteredAt: now,
		LastActive:   now,
	}
	if err := s.repo.Device.Upsert(ctx, device); err != nil {
		s.logger.Error("注册推送设备失败", zap.Error(err))
		return err
	}
	return nil
}

func toUserResponse(u *model.User) *dto.UserResponse {
	return &dto.UserResponse{
		ID:         u.UserID,
		Name:       u.Name,
		USN:        u.USN,
		Email:      u.Email,
		Phone:      u.Phone,
		Role:       u.Role,
		Department: u.Department,
		CreatedAt:  u.CreatedAt.Format(time.RFC3339),
	}
}
