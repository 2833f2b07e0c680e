package model

// NotificationType 通知类型（闭合枚举）
type NotificationType string

const (
	TypeComplaint    NotificationType = "complaint"
	TypeStudyGroup   NotificationType = "study_group"
	TypeNotice       NotificationType = "notice"
	TypeReservation  NotificationType = "reservation"
	TypeFeedback     NotificationType = "feedback"
	TypeAnnouncement NotificationType = "announcement"
	TypeGeneral      NotificationType = "general"
)

// AllNotificationTypes 全部通知类型（摘要分组输出按此顺序）
var AllNotificationTypes = []NotificationType{
	TypeComplaint, TypeStudyGroup, TypeNotice, TypeReservation,
	TypeFeedback, TypeAnnouncement, TypeGeneral,
}

// Valid 判断类型是否合法
func (t NotificationType) Valid() bool {
	switch t {
	case TypeComplaint, TypeStudyGroup, TypeNotice, TypeReservation,
		TypeFeedback, TypeAnnouncement, TypeGeneral:
		return true
	}
	return false
}

// Priority 通知优先级（闭合枚举，按严重度递增）
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Valid 判断优先级是否合法
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// Level 优先级序数（用于比较与升级）
func (p Priority) Level() int {
	switch p {
	case PriorityLow:
		return 0
	case PriorityMedium:
		return 1
	case PriorityHigh:
		return 2
	case PriorityUrgent:
		return 3
	}
	return -1
}

// Escalate 提升一级，urgent 封顶
func (p Priority) Escalate() Priority {
	switch p {
	case PriorityLow:
		return PriorityMedium
	case PriorityMedium:
		return PriorityHigh
	case PriorityHigh, PriorityUrgent:
		return PriorityUrgent
	}
	return p
}

// TierLabel 投递分层档位（闭合枚举）
type TierLabel string

const (
	TierImmediate    TierLabel = "immediate"     // 全通道即时投递
	TierStandard     TierLabel = "standard"      // 默认档位：即时投递，遵循偏好
	TierDigestDaily  TierLabel = "digest_daily"  // 折叠进每日摘要
	TierDigestWeekly TierLabel = "digest_weekly" // 折叠进每周摘要
)

// Valid 判断档位是否合法
func (l TierLabel) Valid() bool {
	switch l {
	case TierImmediate, TierStandard, TierDigestDaily, TierDigestWeekly:
		return true
	}
	return false
}

// Digested 该档位的通知是否折叠进摘要而非即时投递
func (l TierLabel) Digested() bool {
	return l == TierDigestDaily || l == TierDigestWeekly
}

// PeriodKind 摘要周期（闭合枚举）
type PeriodKind string

const (
	PeriodDaily  PeriodKind = "daily"
	PeriodWeekly PeriodKind = "weekly"
)

// Valid 判断周期是否合法
func (k PeriodKind) Valid() bool {
	return k == PeriodDaily || k == PeriodWeekly
}

// SummaryKind 摘要粒度（闭合枚举）
type SummaryKind string

const (
	SummaryShort SummaryKind = "short"
	SummaryLong  SummaryKind = "long"
)

// Valid 判断粒度是否合法
func (k SummaryKind) Valid() bool {
	return k == SummaryShort || k == SummaryLong
}
