package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"ksit-nexus/backend/internal/model"
	"ksit-nexus/backend/internal/repository"
	pkgerrors "ksit-nexus/backend/pkg/errors"
)

// testRepos 聚合全部 mock 仓储，供各 Service 测试装配
type testRepos struct {
	repo          *repository.Repository
	users         *mockUserRepo
	devices       *mockDeviceRepo
	notifications *mockNotificationRepo
	preferences   *mockPreferenceRepo
	rules         *mockPriorityRuleRepo
	tiers         *mockTierRepo
	summaries     *mockSummaryRepo
	digests       *mockDigestRepo
	complaints    *mockComplaintRepo
	notices       *mockNoticeRepo
	groups        *mockStudyGroupRepo
	reservations  *mockReservationRepo
	faqs          *mockFAQRepo
}

func newTestRepos() *testRepos {
	t := &testRepos{
		users:         newMockUserRepo(),
		devices:       newMockDeviceRepo(),
		notifications: newMockNotificationRepo(),
		preferences:   newMockPreferenceRepo(),
		rules:         newMockPriorityRuleRepo(),
		tiers:         newMockTierRepo(),
		summaries:     newMockSummaryRepo(),
		complaints:    newMockComplaintRepo(),
		notices:       newMockNoticeRepo(),
		groups:        newMockStudyGroupRepo(),
		reservations:  newMockReservationRepo(),
		faqs:          newMockFAQRepo(),
	}
	t.digests = newMockDigestRepo(t.notifications)
	t.repo = &repository.Repository{
		User:         t.users,
		Device:       t.devices,
		Notification: t.notifications,
		Preference:   t.preferences,
		PriorityRule: t.rules,
		Tier:         t.tiers,
		Summary:      t.summaries,
		Digest:       t.digests,
		Complaint:    t.complaints,
		Notice:       t.notices,
		StudyGroup:   t.groups,
		Reservation:  t.reservations,
		FAQ:          t.faqs,
	}
	return t
}

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.USN
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUSN(_ context.Context, usn string) (*model.User, error) {
	for _, u := range m.users {
		if u.USN == usn {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) List(_ context.Context, role string, offset, limit int) ([]model.User, int64, error) {
	var all []model.User
	for _, u := range m.users {
		if role != "" && u.Role != role {
			continue
		}
		all = append(all, *u)
	}
	sort.Slice(all, func(a, b int) bool { return all[a].UserID < all[b].UserID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

// ── Mock DeviceRepository ──

type mockDeviceRepo struct {
	devices map[string]*model.Device
}

func newMockDeviceRepo() *mockDeviceRepo {
	return &mockDeviceRepo{devices: make(map[string]*model.Device)}
}

func (m *mockDeviceRepo) Upsert(_ context.Context, device *model.Device) error {
	m.devices[device.DeviceToken] = device
	return nil
}

func (m *mockDeviceRepo) ActiveTokens(_ context.Context, userID string) ([]model.Device, error) {
	var result []model.Device
	for _, d := range m.devices {
		if d.UserID == userID && d.IsActive {
			result = append(result, *d)
		}
	}
	return result, nil
}

func (m *mockDeviceRepo) Deactivate(_ context.Context, token string) error {
	if d, ok := m.devices[token]; ok {
		d.IsActive = false
	}
	return nil
}

func (m *mockDeviceRepo) TouchLastActive(_ context.Context, token string) error {
	return nil
}

// ── Mock NotificationRepository ──

type mockNotificationRepo struct {
	notifications map[string]*model.Notification
	digested      map[string]bool // notification_id → 已进入摘要
	seq           int
}

func newMockNotificationRepo() *mockNotificationRepo {
	return &mockNotificationRepo{
		notifications: make(map[string]*model.Notification),
		digested:      make(map[string]bool),
	}
}

func (m *mockNotificationRepo) Create(_ context.Context, n *model.Notification) error {
	if n.NotificationID == "" {
		m.seq++
		n.NotificationID = fmt.Sprintf("notif-%03d", m.seq)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	m.notifications[n.NotificationID] = n
	return nil
}

func (m *mockNotificationRepo) GetByID(_ context.Context, id string) (*model.Notification, error) {
	if n, ok := m.notifications[id]; ok {
		return n, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, typ model.NotificationType, offset, limit int) ([]model.Notification, int64, error) {
	var all []model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID {
			continue
		}
		if unreadOnly && n.IsRead {
			continue
		}
		if typ != "" && n.Type != typ {
			continue
		}
		all = append(all, *n)
	}
	sort.Slice(all, func(a, b int) bool { return all[a].NotificationID < all[b].NotificationID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockNotificationRepo) UnreadCount(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			count++
		}
	}
	return count, nil
}

func (m *mockNotificationRepo) MarkRead(_ context.Context, id, userID string) error {
	n, ok := m.notifications[id]
	if !ok || n.UserID != userID {
		return gorm.ErrRecordNotFound
	}
	n.IsRead = true
	return nil
}

func (m *mockNotificationRepo) MarkAllRead(_ context.Context, userID string) (int64, error) {
	var affected int64
	for _, n := range m.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			affected++
		}
	}
	return affected, nil
}

func (m *mockNotificationRepo) UpdateSentFlags(_ context.Context, id string, pushSent, emailSent, smsSent, isSent bool) error {
	n, ok := m.notifications[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	n.PushSent = pushSent
	n.EmailSent = emailSent
	n.SMSSent = smsSent
	n.IsSent = isSent
	return nil
}

func (m *mockNotificationRepo) UpdatePriority(_ context.Context, id string, priority model.Priority) error {
	n, ok := m.notifications[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	n.Priority = priority
	return nil
}

func (m *mockNotificationRepo) ListUndigested(_ context.Context, userID string, kind model.PeriodKind, windowStart, windowEnd time.Time) ([]model.Notification, error) {
	var result []model.Notification
	for _, n := range m.notifications {
		if n.UserID != userID || m.digested[n.NotificationID] {
			continue
		}
		if n.CreatedAt.Before(windowStart) || !n.CreatedAt.Before(windowEnd) {
			continue
		}
		result = append(result, *n)
	}
	sort.Slice(result, func(a, b int) bool { return result[a].NotificationID < result[b].NotificationID })
	return result, nil
}

func (m *mockNotificationRepo) UserIDsInWindow(_ context.Context, windowStart, windowEnd time.Time) ([]string, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, n := range m.notifications {
		if n.CreatedAt.Before(windowStart) || !n.CreatedAt.Before(windowEnd) {
			continue
		}
		if !seen[n.UserID] {
			seen[n.UserID] = true
			ids = append(ids, n.UserID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

func (m *mockNotificationRepo) ListStaleUnread(_ context.Context, olderThan time.Time, limit int) ([]model.Notification, error) {
	var result []model.Notification
	for _, n := range m.notifications {
		if n.IsRead || n.IsSent || !n.CreatedAt.Before(olderThan) {
			continue
		}
		result = append(result, *n)
	}
	sort.Slice(result, func(a, b int) bool { return result[a].NotificationID < result[b].NotificationID })
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (m *mockNotificationRepo) Stats(_ context.Context, since time.Time) ([]model.NotificationStat, error) {
	byKey := make(map[string]*model.NotificationStat)
	for _, n := range m.notifications {
		if n.CreatedAt.Before(since) {
			continue
		}
		key := string(n.Type) + "/" + string(n.Priority)
		stat, ok := byKey[key]
		if !ok {
			stat = &model.NotificationStat{Type: n.Type, Priority: n.Priority}
			byKey[key] = stat
		}
		stat.Total++
		if !n.IsRead {
			stat.Unread++
		}
		if n.IsSent {
			stat.Sent++
		}
	}
	var result []model.NotificationStat
	for _, s := range byKey {
		result = append(result, *s)
	}
	sort.Slice(result, func(a, b int) bool {
		if result[a].Type != result[b].Type {
			return result[a].Type < result[b].Type
		}
		return result[a].Priority < result[b].Priority
	})
	return result, nil
}

// ── Mock PreferenceRepository ──

type mockPreferenceRepo struct {
	prefs map[string]*model.NotificationPreference
}

func newMockPreferenceRepo() *mockPreferenceRepo {
	return &mockPreferenceRepo{prefs: make(map[string]*model.NotificationPreference)}
}

func (m *mockPreferenceRepo) Get(_ context.Context, userID string) (*model.NotificationPreference, error) {
	if p, ok := m.prefs[userID]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockPreferenceRepo) Create(_ context.Context, pref *model.NotificationPreference) error {
	if _, ok := m.prefs[pref.UserID]; ok {
		return gorm.ErrDuplicatedKey
	}
	m.prefs[pref.UserID] = pref
	return nil
}

func (m *mockPreferenceRepo) Update(_ context.Context, pref *model.NotificationPreference) error {
	m.prefs[pref.UserID] = pref
	return nil
}

// ── Mock PriorityRuleRepository ──

type mockPriorityRuleRepo struct {
	rules []model.PriorityRule
	seq   int
}

func newMockPriorityRuleRepo() *mockPriorityRuleRepo {
	return &mockPriorityRuleRepo{}
}

func (m *mockPriorityRuleRepo) Create(_ context.Context, rule *model.PriorityRule) error {
	if rule.RuleID == "" {
		m.seq++
		rule.RuleID = fmt.Sprintf("rule-%03d", m.seq)
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now()
	}
	m.rules = append(m.rules, *rule)
	return nil
}

func (m *mockPriorityRuleRepo) GetByID(_ context.Context, id string) (*model.PriorityRule, error) {
	for i := range m.rules {
		if m.rules[i].RuleID == id {
			return &m.rules[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

// ListActive 模拟 (user_id IS NULL) ASC, created_at ASC 的扫描顺序：用户规则在前
func (m *mockPriorityRuleRepo) ListActive(_ context.Context, userID string, typ model.NotificationType) ([]model.PriorityRule, error) {
	var user, global []model.PriorityRule
	for _, r := range m.rules {
		if !r.IsActive || r.NotificationType != typ {
			continue
		}
		switch {
		case r.UserID == nil:
			global = append(global, r)
		case *r.UserID == userID:
			user = append(user, r)
		}
	}
	return append(user, global...), nil
}

func (m *mockPriorityRuleRepo) List(_ context.Context, offset, limit int) ([]model.PriorityRule, int64, error) {
	total := int64(len(m.rules))
	if offset >= len(m.rules) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(m.rules) {
		end = len(m.rules)
	}
	return m.rules[offset:end], total, nil
}

func (m *mockPriorityRuleRepo) Update(_ context.Context, rule *model.PriorityRule) error {
	for i := range m.rules {
		if m.rules[i].RuleID == rule.RuleID {
			m.rules[i] = *rule
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockPriorityRuleRepo) Delete(_ context.Context, id string) error {
	for i := range m.rules {
		if m.rules[i].RuleID == id {
			m.rules = append(m.rules[:i], m.rules[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock TierRepository ──

type mockTierRepo struct {
	tiers []model.NotificationTier
	seq   int
}

func newMockTierRepo() *mockTierRepo {
	return &mockTierRepo{}
}

func (m *mockTierRepo) ListByUser(_ context.Context, userID string) ([]model.NotificationTier, error) {
	var result []model.NotificationTier
	for _, t := range m.tiers {
		if t.UserID == userID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *mockTierRepo) FindForType(_ context.Context, userID string, typ model.NotificationType) (*model.NotificationTier, error) {
	for i := range m.tiers {
		if m.tiers[i].UserID == userID && m.tiers[i].Types.Contains(string(typ)) {
			return &m.tiers[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTierRepo) Replace(_ context.Context, tier *model.NotificationTier) error {
	// 后写覆盖：先从既有记录摘除受影响类型
	for i := range m.tiers {
		if m.tiers[i].UserID != tier.UserID {
			continue
		}
		var kept model.StringArray
		for _, t := range m.tiers[i].Types {
			if !tier.Types.Contains(t) {
				kept = append(kept, t)
			}
		}
		m.tiers[i].Types = kept
	}
	if tier.TierID == "" {
		m.seq++
		tier.TierID = fmt.Sprintf("tier-%03d", m.seq)
	}
	m.tiers = append(m.tiers, *tier)
	return nil
}

func (m *mockTierRepo) Delete(_ context.Context, id, userID string) error {
	for i := range m.tiers {
		if m.tiers[i].TierID == id && m.tiers[i].UserID == userID {
			m.tiers = append(m.tiers[:i], m.tiers[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock SummaryRepository ──

type mockSummaryRepo struct {
	summaries map[string]*model.NotificationSummary // notification_id → summary
	seq       int
}

func newMockSummaryRepo() *mockSummaryRepo {
	return &mockSummaryRepo{summaries: make(map[string]*model.NotificationSummary)}
}

func (m *mockSummaryRepo) Create(_ context.Context, summary *model.NotificationSummary) error {
	if summary.SummaryID == "" {
		m.seq++
		summary.SummaryID = fmt.Sprintf("sum-%03d", m.seq)
	}
	m.summaries[summary.NotificationID] = summary
	return nil
}

func (m *mockSummaryRepo) GetByNotification(_ context.Context, notificationID string) (*model.NotificationSummary, error) {
	if s, ok := m.summaries[notificationID]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSummaryRepo) DeleteByNotification(_ context.Context, notificationID string) error {
	delete(m.summaries, notificationID)
	return nil
}

// ── Mock DigestRepository ──

type mockDigestRepo struct {
	digests   []model.NotificationDigest
	itemsRepo *mockNotificationRepo // CreateWithItems 时标记通知已汇总
	seq       int
}

func newMockDigestRepo(notifRepo *mockNotificationRepo) *mockDigestRepo {
	return &mockDigestRepo{itemsRepo: notifRepo}
}

func (m *mockDigestRepo) FindByWindow(_ context.Context, userID string, kind model.PeriodKind, windowStart time.Time) (*model.NotificationDigest, error) {
	for i := range m.digests {
		d := &m.digests[i]
		if d.UserID == userID && d.PeriodKind == kind && d.WindowStart.Equal(windowStart) {
			return d, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDigestRepo) CreateWithItems(ctx context.Context, digest *model.NotificationDigest, notificationIDs []string) error {
	if _, err := m.FindByWindow(ctx, digest.UserID, digest.PeriodKind, digest.WindowStart); err == nil {
		return pkgerrors.ErrDuplicateDigest
	}
	if digest.DigestID == "" {
		m.seq++
		digest.DigestID = fmt.Sprintf("digest-%03d", m.seq)
	}
	m.digests = append(m.digests, *digest)
	for _, id := range notificationIDs {
		m.itemsRepo.digested[id] = true
	}
	return nil
}

func (m *mockDigestRepo) ListByUser(_ context.Context, userID string, kind model.PeriodKind, offset, limit int) ([]model.NotificationDigest, int64, error) {
	var all []model.NotificationDigest
	for _, d := range m.digests {
		if d.UserID != userID {
			continue
		}
		if kind != "" && d.PeriodKind != kind {
			continue
		}
		all = append(all, d)
	}
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockDigestRepo) ListAll(_ context.Context, since time.Time) ([]model.NotificationDigest, error) {
	var result []model.NotificationDigest
	for _, d := range m.digests {
		if !d.GeneratedAt.Before(since) {
			result = append(result, d)
		}
	}
	return result, nil
}

// ── Mock ComplaintRepository ──

type mockComplaintRepo struct {
	complaints map[string]*model.Complaint
	seq        int
}

func newMockComplaintRepo() *mockComplaintRepo {
	return &mockComplaintRepo{complaints: make(map[string]*model.Complaint)}
}

func (m *mockComplaintRepo) Create(_ context.Context, complaint *model.Complaint) error {
	if complaint.ComplaintID == "" {
		m.seq++
		complaint.ComplaintID = fmt.Sprintf("cmp-%03d", m.seq)
	}
	m.complaints[complaint.ComplaintID] = complaint
	return nil
}

func (m *mockComplaintRepo) GetByID(_ context.Context, id string) (*model.Complaint, error) {
	if c, ok := m.complaints[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockComplaintRepo) List(_ context.Context, userID, status string, offset, limit int) ([]model.Complaint, int64, error) {
	var all []model.Complaint
	for _, c := range m.complaints {
		if userID != "" && c.UserID != userID {
			continue
		}
		if status != "" && c.Status != status {
			continue
		}
		all = append(all, *c)
	}
	sort.Slice(all, func(a, b int) bool { return all[a].ComplaintID < all[b].ComplaintID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockComplaintRepo) Update(_ context.Context, complaint *model.Complaint) error {
	m.complaints[complaint.ComplaintID] = complaint
	return nil
}

// ── Mock NoticeRepository ──

type mockNoticeRepo struct {
	notices map[string]*model.Notice
	seq     int
}

func newMockNoticeRepo() *mockNoticeRepo {
	return &mockNoticeRepo{notices: make(map[string]*model.Notice)}
}

func (m *mockNoticeRepo) Create(_ context.Context, notice *model.Notice) error {
	if notice.NoticeID == "" {
		m.seq++
		notice.NoticeID = fmt.Sprintf("notice-%03d", m.seq)
	}
	m.notices[notice.NoticeID] = notice
	return nil
}

func (m *mockNoticeRepo) GetByID(_ context.Context, id string) (*model.Notice, error) {
	if n, ok := m.notices[id]; ok {
		return n, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockNoticeRepo) List(_ context.Context, category string, publishedOnly bool, offset, limit int) ([]model.Notice, int64, error) {
	var all []model.Notice
	for _, n := range m.notices {
		if category != "" && n.Category != category {
			continue
		}
		if publishedOnly && !n.IsPublished {
			continue
		}
		all = append(all, *n)
	}
	sort.Slice(all, func(a, b int) bool { return all[a].NoticeID < all[b].NoticeID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockNoticeRepo) Update(_ context.Context, notice *model.Notice) error {
	m.notices[notice.NoticeID] = notice
	return nil
}

func (m *mockNoticeRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.notices[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.notices, id)
	return nil
}

// ── Mock StudyGroupRepository ──

type mockStudyGroupRepo struct {
	groups  map[string]*model.StudyGroup
	members map[string][]model.StudyGroupMember // group_id → members
	seq     int
}

func newMockStudyGroupRepo() *mockStudyGroupRepo {
	return &mockStudyGroupRepo{
		groups:  make(map[string]*model.StudyGroup),
		members: make(map[string][]model.StudyGroupMember),
	}
}

func (m *mockStudyGroupRepo) Create(_ context.Context, group *model.StudyGroup, owner *model.StudyGroupMember) error {
	if group.GroupID == "" {
		m.seq++
		group.GroupID = fmt.Sprintf("grp-%03d", m.seq)
	}
	m.groups[group.GroupID] = group
	owner.GroupID = group.GroupID
	m.members[group.GroupID] = append(m.members[group.GroupID], *owner)
	return nil
}

func (m *mockStudyGroupRepo) GetByID(_ context.Context, id string) (*model.StudyGroup, error) {
	g, ok := m.groups[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *g
	copied.Members = m.members[id]
	return &copied, nil
}

func (m *mockStudyGroupRepo) List(_ context.Context, subject string, offset, limit int) ([]model.StudyGroup, int64, error) {
	var all []model.StudyGroup
	for _, g := range m.groups {
		if subject != "" && g.Subject != subject {
			continue
		}
		copied := *g
		copied.Members = m.members[g.GroupID]
		all = append(all, copied)
	}
	sort.Slice(all, func(a, b int) bool { return all[a].GroupID < all[b].GroupID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockStudyGroupRepo) MemberCount(_ context.Context, groupID string) (int64, error) {
	return int64(len(m.members[groupID])), nil
}

func (m *mockStudyGroupRepo) GetMember(_ context.Context, groupID, userID string) (*model.StudyGroupMember, error) {
	for i := range m.members[groupID] {
		if m.members[groupID][i].UserID == userID {
			return &m.members[groupID][i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudyGroupRepo) AddMember(_ context.Context, member *model.StudyGroupMember) error {
	m.members[member.GroupID] = append(m.members[member.GroupID], *member)
	return nil
}

func (m *mockStudyGroupRepo) RemoveMember(_ context.Context, groupID, userID string) error {
	members := m.members[groupID]
	for i := range members {
		if members[i].UserID == userID {
			m.members[groupID] = append(members[:i], members[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ── Mock ReservationRepository ──

type mockReservationRepo struct {
	reservations map[string]*model.Reservation
	seq          int
}

func newMockReservationRepo() *mockReservationRepo {
	return &mockReservationRepo{reservations: make(map[string]*model.Reservation)}
}

func (m *mockReservationRepo) Create(_ context.Context, reservation *model.Reservation) error {
	if reservation.ReservationID == "" {
		m.seq++
		reservation.ReservationID = fmt.Sprintf("rsv-%03d", m.seq)
	}
	m.reservations[reservation.ReservationID] = reservation
	return nil
}

func (m *mockReservationRepo) GetByID(_ context.Context, id string) (*model.Reservation, error) {
	if r, ok := m.reservations[id]; ok {
		return r, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockReservationRepo) List(_ context.Context, userID, status string, offset, limit int) ([]model.Reservation, int64, error) {
	var all []model.Reservation
	for _, r := range m.reservations {
		if userID != "" && r.UserID != userID {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		all = append(all, *r)
	}
	sort.Slice(all, func(a, b int) bool { return all[a].ReservationID < all[b].ReservationID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockReservationRepo) Update(_ context.Context, reservation *model.Reservation) error {
	m.reservations[reservation.ReservationID] = reservation
	return nil
}

func (m *mockReservationRepo) HasApprovedOverlap(_ context.Context, resourceType, resourceName string, startsAt, endsAt time.Time, excludeID string) (bool, error) {
	for _, r := range m.reservations {
		if r.ReservationID == excludeID || r.Status != model.ReservationApproved {
			continue
		}
		if r.ResourceType != resourceType || r.ResourceName != resourceName {
			continue
		}
		if r.StartsAt.Before(endsAt) && r.EndsAt.After(startsAt) {
			return true, nil
		}
	}
	return false, nil
}

// ── Mock FAQRepository ──

type mockFAQRepo struct {
	entries map[string]*model.FAQEntry
	seq     int
}

func newMockFAQRepo() *mockFAQRepo {
	return &mockFAQRepo{entries: make(map[string]*model.FAQEntry)}
}

func (m *mockFAQRepo) Create(_ context.Context, entry *model.FAQEntry) error {
	if entry.FAQID == "" {
		m.seq++
		entry.FAQID = fmt.Sprintf("faq-%03d", m.seq)
	}
	m.entries[entry.FAQID] = entry
	return nil
}

func (m *mockFAQRepo) GetByID(_ context.Context, id string) (*model.FAQEntry, error) {
	if e, ok := m.entries[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockFAQRepo) ListActive(_ context.Context) ([]model.FAQEntry, error) {
	var result []model.FAQEntry
	for _, e := range m.entries {
		if e.IsActive {
			result = append(result, *e)
		}
	}
	sort.Slice(result, func(a, b int) bool { return result[a].FAQID < result[b].FAQID })
	return result, nil
}

func (m *mockFAQRepo) List(_ context.Context, offset, limit int) ([]model.FAQEntry, int64, error) {
	var all []model.FAQEntry
	for _, e := range m.entries {
		all = append(all, *e)
	}
	sort.Slice(all, func(a, b int) bool { return all[a].FAQID < all[b].FAQID })
	total := int64(len(all))
	if offset >= len(all) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], total, nil
}

func (m *mockFAQRepo) Update(_ context.Context, entry *model.FAQEntry) error {
	m.entries[entry.FAQID] = entry
	return nil
}

func (m *mockFAQRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.entries[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(m.entries, id)
	return nil
}

func (m *mockFAQRepo) IncrementHit(_ context.Context, id string) error {
	if e, ok := m.entries[id]; ok {
		e.HitCount++
	}
	return nil
}

// ── Mock Dispatcher / 缓存 / 锁 ──

type mockDispatcher struct {
	dispatched []string // notification_id 记录调用顺序
	markSent   *mockNotificationRepo
	err        error
}

func (m *mockDispatcher) Dispatch(ctx context.Context, n *model.Notification, tier model.TierLabel) error {
	m.dispatched = append(m.dispatched, n.NotificationID)
	if m.err != nil {
		return m.err
	}
	if m.markSent != nil {
		// 真实 Dispatcher 在任一通道成功后置位 is_sent
		return m.markSent.UpdateSentFlags(ctx, n.NotificationID, true, false, false, true)
	}
	return nil
}

type mockUnreadCache struct {
	counts      map[string]int64
	invalidated int
}

func newMockUnreadCache() *mockUnreadCache {
	return &mockUnreadCache{counts: make(map[string]int64)}
}

func (m *mockUnreadCache) GetUnreadCount(_ context.Context, userID string) (int64, error) {
	if n, ok := m.counts[userID]; ok {
		return n, nil
	}
	return -1, nil
}

func (m *mockUnreadCache) SetUnreadCount(_ context.Context, userID string, count int64, _ time.Duration) error {
	m.counts[userID] = count
	return nil
}

func (m *mockUnreadCache) InvalidateUnreadCount(_ context.Context, userID string) error {
	delete(m.counts, userID)
	m.invalidated++
	return nil
}

type mockDigestLock struct {
	held     map[string]bool
	acquired int
}

func newMockDigestLock() *mockDigestLock {
	return &mockDigestLock{held: make(map[string]bool)}
}

func (m *mockDigestLock) AcquireDigestLock(_ context.Context, key string, _ time.Duration) (bool, error) {
	if m.held[key] {
		return false, nil
	}
	m.held[key] = true
	m.acquired++
	return true, nil
}

func (m *mockDigestLock) ReleaseDigestLock(_ context.Context, key string) error {
	delete(m.held, key)
	return nil
}
