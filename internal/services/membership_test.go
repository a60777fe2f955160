package services

import (
	"context"
	"errors"
	"testing"

	"joynex/internal/domain"
)

func newTestMembershipService(
	groupRepo *mockGroupRepository,
	membershipRepo *mockMembershipRepository,
	userRepo *mockUserRepository,
	notifySvc *mockNotificationService,
	emailSvc *mockEmailService,
) *membershipService {
	return &membershipService{
		groupRepo:       groupRepo,
		membershipRepo:  membershipRepo,
		userRepo:        userRepo,
		notificationSvc: notifySvc,
		emailService:    emailSvc,
		logger:          testLogger(),
	}
}

func TestMembershipService_Join(t *testing.T) {
	openGroup := &domain.Group{ID: "g1", Name: "Poker Night", CreatedBy: "owner-1", CurrentMembers: 2, MaxMembers: 6}
	fullGroup := &domain.Group{ID: "g2", Name: "Tiny Study Pod", CreatedBy: "owner-1", CurrentMembers: 2, MaxMembers: 2}

	tests := []struct {
		name       string
		groupID    string
		joinErr    error
		wantErr    error
		wantNotify bool
	}{
		{
			name:       "join open group succeeds",
			groupID:    "g1",
			wantNotify: true,
		},
		{
			name:    "unknown group",
			groupID: "missing",
			wantErr: domain.ErrNotFound,
		},
		{
			name:    "full group rejected before the transaction",
			groupID: "g2",
			wantErr: domain.ErrGroupFull,
		},
		{
			name:    "race for the last slot surfaces the transactional check",
			groupID: "g1",
			joinErr: domain.ErrGroupFull,
			wantErr: domain.ErrGroupFull,
		},
		{
			name:    "duplicate join rejected",
			groupID: "g1",
			joinErr: domain.ErrAlreadyMember,
			wantErr: domain.ErrAlreadyMember,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			groupRepo := &mockGroupRepository{groups: map[string]*domain.Group{"g1": openGroup, "g2": fullGroup}}
			membershipRepo := &mockMembershipRepository{joinErr: tt.joinErr}
			userRepo := &mockUserRepository{usersByID: map[string]*domain.User{
				"user-9": {ID: "user-9", Email: "joiner@student.unimelb.edu.au", FullName: "Joi Ner"},
			}}
			notifySvc := &mockNotificationService{}
			emailSvc := &mockEmailService{}
			svc := newTestMembershipService(groupRepo, membershipRepo, userRepo, notifySvc, emailSvc)

			member, err := svc.Join(context.Background(), tt.groupID, "user-9")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				if len(notifySvc.joinUserIDs) != 0 {
					t.Fatalf("failed join must not notify, got %v", notifySvc.joinUserIDs)
				}
				if len(emailSvc.groupJoin) != 0 {
					t.Fatalf("failed join must not email, got %v", emailSvc.groupJoin)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if member.GroupID != tt.groupID || member.UserID != "user-9" {
				t.Fatalf("unexpected membership %+v", member)
			}
			if tt.wantNotify {
				if len(notifySvc.joinUserIDs) != 1 || notifySvc.joinUserIDs[0] != "user-9" {
					t.Fatalf("expected join notification for user-9, got %v", notifySvc.joinUserIDs)
				}
				if len(emailSvc.groupJoin) != 1 || emailSvc.groupJoin[0] != "joiner@student.unimelb.edu.au" {
					t.Fatalf("expected join email, got %v", emailSvc.groupJoin)
				}
			}
		})
	}
}

func TestMembershipService_Join_FullGroupSkipsTransaction(t *testing.T) {
	fullGroup := &domain.Group{ID: "g2", CurrentMembers: 2, MaxMembers: 2}
	membershipRepo := &mockMembershipRepository{}
	svc := newTestMembershipService(
		&mockGroupRepository{groups: map[string]*domain.Group{"g2": fullGroup}},
		membershipRepo,
		&mockUserRepository{},
		&mockNotificationService{},
		&mockEmailService{},
	)

	_, err := svc.Join(context.Background(), "g2", "user-9")
	if !errors.Is(err, domain.ErrGroupFull) {
		t.Fatalf("expected ErrGroupFull, got %v", err)
	}
	if membershipRepo.joinCalls != 0 {
		t.Fatalf("full group must not reach the join transaction, got %d calls", membershipRepo.joinCalls)
	}
}

func TestMembershipService_Join_NotificationFailureIsNotFatal(t *testing.T) {
	openGroup := &domain.Group{ID: "g1", CurrentMembers: 1, MaxMembers: 4}
	svc := newTestMembershipService(
		&mockGroupRepository{groups: map[string]*domain.Group{"g1": openGroup}},
		&mockMembershipRepository{},
		&mockUserRepository{},
		&mockNotificationService{err: errors.New("insert failed")},
		&mockEmailService{},
	)

	if _, err := svc.Join(context.Background(), "g1", "user-9"); err != nil {
		t.Fatalf("join must succeed when the notification insert fails, got %v", err)
	}
}

func TestMembershipService_Leave(t *testing.T) {
	tests := []struct {
		name     string
		leaveErr error
		wantErr  error
	}{
		{
			name: "member leaves",
		},
		{
			name:     "owner cannot leave",
			leaveErr: domain.ErrOwnerCannotLeave,
			wantErr:  domain.ErrOwnerCannotLeave,
		},
		{
			name:     "not a member",
			leaveErr: domain.ErrNotMember,
			wantErr:  domain.ErrNotMember,
		},
		{
			name:     "unknown group",
			leaveErr: domain.ErrNotFound,
			wantErr:  domain.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			membershipRepo := &mockMembershipRepository{leaveErr: tt.leaveErr}
			svc := newTestMembershipService(
				&mockGroupRepository{},
				membershipRepo,
				&mockUserRepository{},
				&mockNotificationService{},
				&mockEmailService{},
			)

			err := svc.Leave(context.Background(), "g1", "user-9")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if membershipRepo.leaveCalls != 1 {
				t.Fatalf("expected one leave call, got %d", membershipRepo.leaveCalls)
			}
		})
	}
}
