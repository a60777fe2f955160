package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"joynex/internal/domain"
)

func TestNotificationService_NotifyGroupJoin(t *testing.T) {
	repo := &mockNotificationRepository{}
	pub := &mockPublisher{}
	svc := &notificationService{repo: repo, publisher: pub}
	group := &domain.Group{
		ID:       "g1",
		Name:     "Poker Night",
		Date:     time.Date(2026, 9, 5, 0, 0, 0, 0, time.UTC),
		TimeSlot: "7:00 PM - 10:00 PM",
	}

	n, err := svc.NotifyGroupJoin(context.Background(), "user-1", group)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Type != domain.NotificationGroupJoin {
		t.Fatalf("expected type %s, got %s", domain.NotificationGroupJoin, n.Type)
	}
	if n.Data.Date != "2026-09-05" {
		t.Fatalf("expected wire date 2026-09-05, got %s", n.Data.Date)
	}
	if len(repo.created) != 1 {
		t.Fatalf("expected 1 persisted notification, got %d", len(repo.created))
	}
	if len(pub.users) != 1 || pub.users[0] != "user-1" {
		t.Fatalf("expected publish to user-1, got %v", pub.users)
	}
}

func TestNotificationService_NotifyGroupUpdate_FansOut(t *testing.T) {
	repo := &mockNotificationRepository{}
	pub := &mockPublisher{}
	svc := &notificationService{repo: repo, publisher: pub}
	group := &domain.Group{ID: "g1", Name: "Poker Night"}

	err := svc.NotifyGroupUpdate(context.Background(), []string{"u1", "u2", "u3"}, group)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.created) != 3 {
		t.Fatalf("expected 3 persisted notifications, got %d", len(repo.created))
	}
	for _, n := range repo.created {
		if n.Type != domain.NotificationGroupUpdate {
			t.Fatalf("expected type %s, got %s", domain.NotificationGroupUpdate, n.Type)
		}
	}
	if len(pub.users) != 3 {
		t.Fatalf("expected 3 publishes, got %d", len(pub.users))
	}
}

func TestNotificationService_NotifyGroupCancel_ReportsFirstError(t *testing.T) {
	repo := &mockNotificationRepository{createErr: errors.New("insert failed")}
	svc := &notificationService{repo: repo}
	group := &domain.Group{ID: "g1", Name: "Poker Night"}

	err := svc.NotifyGroupCancel(context.Background(), []string{"u1", "u2"}, group)
	if err == nil {
		t.Fatal("expected an error when inserts fail")
	}
}

func TestNotificationService_MarkRead(t *testing.T) {
	tests := []struct {
		name    string
		markErr error
		wantErr error
	}{
		{name: "success"},
		{name: "unknown id", markErr: domain.ErrNotFound, wantErr: domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &notificationService{repo: &mockNotificationRepository{markErr: tt.markErr}}
			err := svc.MarkRead(context.Background(), "n-1", "user-1")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestNotificationService_NilPublisherIsSafe(t *testing.T) {
	repo := &mockNotificationRepository{}
	svc := &notificationService{repo: repo}
	group := &domain.Group{ID: "g1", Name: "Poker Night", Date: time.Now()}

	if _, err := svc.NotifyGroupJoin(context.Background(), "user-1", group); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
