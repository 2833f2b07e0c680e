package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User         UserRepository
	Device       DeviceRepository
	Notification NotificationRepository
	Preference   PreferenceRepository
	PriorityRule PriorityRuleRepository
	Tier         TierRepository
	Summary      SummaryRepository
	Digest       DigestRepository
	Complaint    ComplaintRepository
	Notice       NoticeRepository
	StudyGroup   StudyGroupRepository
	Reservation  ReservationRepository
	FAQ          FAQRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:         NewUserRepo(db),
		Device:       NewDeviceRepo(db),
		Notification: NewNotificationRepo(db),
		Preference:   NewPreferenceRepo(db),
		PriorityRule: NewPriorityRuleRepo(db),
		Tier:         NewTierRepo(db),
		Summary:      NewSummaryRepo(db),
		Digest:       NewDigestRepo(db),
		Complaint:    NewComplaintRepo(db),
		Notice:       NewNoticeRepo(db),
		StudyGroup:   NewStudyGroupRepo(db),
		Reservation:  NewReservationRepo(db),
		FAQ:          NewFAQRepo(db),
	}
}
