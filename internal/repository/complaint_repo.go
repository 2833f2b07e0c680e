package repository

import (
	"context"

	"gorm.io/gorm"

	"ksit-nexus/backend/internal/model"
)

// ComplaintRepository 投诉数据访问接口
type ComplaintRepository interface {
	Create(ctx context.Context, complaint *model.Complaint) error
	GetByID(ctx context.Context, id string) (*model.Complaint, error)
	List(ctx context.Context, userID, status string, offset, limit int) ([]model.Complaint, int64, error)
	Update(ctx context.Context, complaint *model.Complaint) error
}

// complaintRepo ComplaintRepository 的 GORM 实现
type complaintRepo struct {
	db *gorm.DB
}

// NewComplaintRepo 创建 ComplaintRepository 实例
func NewComplaintRepo(db *gorm.DB) ComplaintRepository {
	return &complaintRepo{db: db}
}

func (r *complaintRepo) Create(ctx context.Context, complaint *model.Complaint) error {
	return r.db.WithContext(ctx).Create(complaint).Error
}

func (r *complaintRepo) GetByID(ctx context.Context, id string) (*model.Complaint, error) {
	var complaint model.Complaint
	err := r.db.WithContext(ctx).
		Where("complaint_id = ?", id).
		First(&complaint).Error
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

// List userID 为空时返回全部（staff/admin 视角）
func (r *complaintRepo) List(ctx context.Context, userID, status string, offset, limit int) ([]model.Complaint, int64, error) {
	var complaints []model.Complaint
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Complaint{})
	if userID != "" {
		db = db.Where("user_id = ?", userID)
	}
	if status != "" {
		db = db.Where("status = ?", status)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&complaints).Error; err != nil {
		return nil, 0, err
	}
	return complaints, total, nil
}

func (r *complaintRepo) Update(ctx context.Context, complaint *model.Complaint) error {
	return r.db.WithContext(ctx).Save(complaint).Error
}
