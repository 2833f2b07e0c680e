package repository

import (
	"context"

	"gorm.io/gorm"

	"ksit-nexus/backend/internal/model"
)

// StudyGroupRepository 学习小组数据访问接口
type StudyGroupRepository interface {
	Create(ctx context.Context, group *model.StudyGroup, owner *model.StudyGroupMember) error
	GetByID(ctx context.Context, id string) (*model.StudyGroup, error)
	List(ctx context.Context, subject string, offset, limit int) ([]model.StudyGroup, int64, error)
	MemberCount(ctx context.Context, groupID string) (int64, error)
	GetMember(ctx context.Context, groupID, userID string) (*model.StudyGroupMember, error)
	AddMember(ctx context.Context, member *model.StudyGroupMember) error
	RemoveMember(ctx context.Context, groupID, userID string) error
}

// studyGroupRepo StudyGroupRepository 的 GORM 实现
type studyGroupRepo struct {
	db *gorm.DB
}

// NewStudyGroupRepo 创建 StudyGroupRepository 实例
func NewStudyGroupRepo(db *gorm.DB) StudyGroupRepository {
	return &studyGroupRepo{db: db}
}

// Create 建组与组长入组在同一事务内完成
func (r *studyGroupRepo) Create(ctx context.Context, group *model.StudyGroup, owner *model.StudyGroupMember) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(group).Error; err != nil {
			return err
		}
		owner.GroupID = group.GroupID
		return tx.Create(owner).Error
	})
}

func (r *studyGroupRepo) GetByID(ctx context.Context, id string) (*model.StudyGroup, error) {
	var group model.StudyGroup
	err := r.db.WithContext(ctx).
		Preload("Members").
		Where("group_id = ?", id).
		First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *studyGroupRepo) List(ctx context.Context, subject string, offset, limit int) ([]model.StudyGroup, int64, error) {
	var groups []model.StudyGroup
	var total int64

	db := r.db.WithContext(ctx).Model(&model.StudyGroup{})
	if subject != "" {
		db = db.Where("subject ILIKE ?", "%"+subject+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := db.Preload("Members").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&groups).Error; err != nil {
		return nil, 0, err
	}
	return groups, total, nil
}

func (r *studyGroupRepo) MemberCount(ctx context.Context, groupID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.StudyGroupMember{}).
		Where("group_id = ?", groupID).
		Count(&count).Error
	return count, err
}

func (r *studyGroupRepo) GetMember(ctx context.Context, groupID, userID string) (*model.StudyGroupMember, error) {
	var member model.StudyGroupMember
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND user_id = ?", groupID, userID).
		First(&member).Error
	if err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *studyGroupRepo) AddMember(ctx context.Context, member *model.StudyGroupMember) error {
	return r.db.WithContext(ctx).Create(member).Error
}

func (r *studyGroupRepo) RemoveMember(ctx context.Context, groupID, userID string) error {
	result := r.db.WithContext(ctx).
		Delete(&model.StudyGroupMember{}, "group_id = ? AND user_id = ?", groupID, userID)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
