package services

import (
	"context"
	"io"
	"log/slog"
	"time"

	"joynex/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type mockUserRepository struct {
	usersByEmail map[string]*domain.User
	usersByID    map[string]*domain.User
	createErr    error

	calls    []string
	created  []*domain.User
	verified []string
}

func (m *mockUserRepository) Create(ctx context.Context, user *domain.User) error {
	m.calls = append(m.calls, "Create")
	if m.createErr != nil {
		return m.createErr
	}
	user.ID = "user-new"
	m.created = append(m.created, user)
	return nil
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.calls = append(m.calls, "GetByEmail")
	if u, ok := m.usersByEmail[email]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	m.calls = append(m.calls, "GetByID")
	if u, ok := m.usersByID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (m *mockUserRepository) MarkVerified(ctx context.Context, id string) error {
	m.calls = append(m.calls, "MarkVerified")
	m.verified = append(m.verified, id)
	return nil
}

type mockCodeRepository struct {
	createErr  error
	consumed   bool
	consumeErr error

	storedEmails []string
}

func (m *mockCodeRepository) Create(ctx context.Context, email, codeHash string, expiresAt time.Time) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.storedEmails = append(m.storedEmails, email)
	return nil
}

func (m *mockCodeRepository) Consume(ctx context.Context, email, codeHash string) (bool, error) {
	if m.consumeErr != nil {
		return false, m.consumeErr
	}
	return m.consumed, nil
}

// fakeHasher hashes deterministically so Compare can match on the raw password.
type fakeHasher struct{}

func (fakeHasher) GenerateSalt() (string, error) { return "salt", nil }

func (fakeHasher) Hash(salt, password string) (string, error) {
	return "hashed:" + salt + ":" + password, nil
}

func (fakeHasher) Compare(hash, salt, password string) error {
	if hash != "hashed:"+salt+":"+password {
		return domain.ErrInvalidCredentials
	}
	return nil
}

type fakeTokenIssuer struct {
	token string
	err   error
}

func (f *fakeTokenIssuer) Issue(userID, email string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.token, nil
}

type mockEmailService struct {
	err error

	welcome      []string
	verification []string
	groupJoin    []string
}

func (m *mockEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	if m.err != nil {
		return m.err
	}
	m.welcome = append(m.welcome, data.Email)
	return nil
}

func (m *mockEmailService) SendVerificationCode(ctx context.Context, data *domain.VerificationEmailData) error {
	if m.err != nil {
		return m.err
	}
	m.verification = append(m.verification, data.Email)
	return nil
}

func (m *mockEmailService) SendGroupJoin(ctx context.Context, data *domain.GroupJoinEmailData) error {
	if m.err != nil {
		return m.err
	}
	m.groupJoin = append(m.groupJoin, data.Email)
	return nil
}

type mockGroupRepository struct {
	groups    map[string]*domain.Group
	available []*domain.Group
	joined    []*domain.Group
	createdBy []*domain.Group
	err       error

	deleted []string
}

func (m *mockGroupRepository) Create(ctx context.Context, g *domain.Group) error {
	if m.err != nil {
		return m.err
	}
	g.ID = "group-new"
	g.CurrentMembers = 1
	return nil
}

func (m *mockGroupRepository) GetByID(ctx context.Context, id string) (*domain.Group, error) {
	if m.err != nil {
		return nil, m.err
	}
	g, ok := m.groups[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return g, nil
}

func (m *mockGroupRepository) ListAvailable(ctx context.Context, userID string, p domain.PaginationParams) ([]*domain.Group, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.available, nil
}

func (m *mockGroupRepository) ListJoined(ctx context.Context, userID string) ([]*domain.Group, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.joined, nil
}

func (m *mockGroupRepository) ListCreated(ctx context.Context, userID string) ([]*domain.Group, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.createdBy, nil
}

func (m *mockGroupRepository) Update(ctx context.Context, groupID string, in domain.UpdateGroupInput) (*domain.Group, error) {
	if m.err != nil {
		return nil, m.err
	}
	g, ok := m.groups[groupID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return g, nil
}

func (m *mockGroupRepository) Delete(ctx context.Context, id string) error {
	if m.err != nil {
		return m.err
	}
	if _, ok := m.groups[id]; !ok {
		return domain.ErrNotFound
	}
	m.deleted = append(m.deleted, id)
	return nil
}

type mockMembershipRepository struct {
	member   *domain.GroupMember
	joinErr  error
	leaveErr error
	members  []*domain.GroupMember
	listErr  error

	joinCalls  int
	leaveCalls int
}

func (m *mockMembershipRepository) Join(ctx context.Context, groupID, userID string) (*domain.GroupMember, error) {
	m.joinCalls++
	if m.joinErr != nil {
		return nil, m.joinErr
	}
	if m.member != nil {
		return m.member, nil
	}
	return &domain.GroupMember{GroupID: groupID, UserID: userID, JoinedAt: time.Now()}, nil
}

func (m *mockMembershipRepository) Leave(ctx context.Context, groupID, userID string) error {
	m.leaveCalls++
	return m.leaveErr
}

func (m *mockMembershipRepository) ListByGroupID(ctx context.Context, groupID string) ([]*domain.GroupMember, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.members, nil
}

type mockNotificationService struct {
	err error

	joinUserIDs   []string
	updateUserIDs []string
	cancelUserIDs []string
}

func (m *mockNotificationService) ListUnread(ctx context.Context, userID string) ([]*domain.Notification, error) {
	return nil, nil
}

func (m *mockNotificationService) MarkRead(ctx context.Context, id, userID string) error {
	return m.err
}

func (m *mockNotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return m.err
}

func (m *mockNotificationService) NotifyGroupJoin(ctx context.Context, userID string, g *domain.Group) (*domain.Notification, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.joinUserIDs = append(m.joinUserIDs, userID)
	return &domain.Notification{ID: "n-1", UserID: userID, Type: domain.NotificationGroupJoin}, nil
}

func (m *mockNotificationService) NotifyGroupUpdate(ctx context.Context, userIDs []string, g *domain.Group) error {
	if m.err != nil {
		return m.err
	}
	m.updateUserIDs = append(m.updateUserIDs, userIDs...)
	return nil
}

func (m *mockNotificationService) NotifyGroupCancel(ctx context.Context, userIDs []string, g *domain.Group) error {
	if m.err != nil {
		return m.err
	}
	m.cancelUserIDs = append(m.cancelUserIDs, userIDs...)
	return nil
}

type mockNotificationRepository struct {
	items      []*domain.Notification
	createErr  error
	markErr    error
	markAllErr error

	created []*domain.Notification
}

func (m *mockNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.created = append(m.created, n)
	return nil
}

func (m *mockNotificationRepository) ListUnreadByUserID(ctx context.Context, userID string) ([]*domain.Notification, error) {
	return m.items, nil
}

func (m *mockNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	return m.markErr
}

func (m *mockNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	if m.markAllErr != nil {
		return 0, m.markAllErr
	}
	return int64(len(m.items)), nil
}

type mockPublisher struct {
	published []*domain.Notification
	users     []string
}

func (m *mockPublisher) Publish(userID string, n *domain.Notification) {
	m.users = append(m.users, userID)
	m.published = append(m.published, n)
}
