package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"joynex/internal/domain"
)

type notificationService struct {
	repo      domain.NotificationRepository
	publisher domain.NotificationPublisher
}

// NewNotificationService creates a NotificationService. publisher pushes new
// notifications to live subscribers; it may be nil when realtime delivery is
// not wired (the persisted rows are still the source of truth).
func NewNotificationService(repo domain.NotificationRepository, publisher domain.NotificationPublisher) domain.NotificationService {
	return &notificationService{repo: repo, publisher: publisher}
}

func (s *notificationService) ListUnread(ctx context.Context, userID string) ([]*domain.Notification, error) {
	notifications, err := s.repo.ListUnreadByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return notifications, nil
}

func (s *notificationService) MarkRead(ctx context.Context, id, userID string) error {
	if err := s.repo.MarkRead(ctx, id, userID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return nil
}

func (s *notificationService) MarkAllRead(ctx context.Context, userID string) error {
	if _, err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (s *notificationService) NotifyGroupJoin(ctx context.Context, userID string, g *domain.Group) (*domain.Notification, error) {
	return s.create(ctx, userID, domain.NotificationGroupJoin, g)
}

func (s *notificationService) NotifyGroupUpdate(ctx context.Context, userIDs []string, g *domain.Group) error {
	return s.createForAll(ctx, userIDs, domain.NotificationGroupUpdate, g)
}

func (s *notificationService) NotifyGroupCancel(ctx context.Context, userIDs []string, g *domain.Group) error {
	return s.createForAll(ctx, userIDs, domain.NotificationGroupCancel, g)
}

func (s *notificationService) create(ctx context.Context, userID string, typ domain.NotificationType, g *domain.Group) (*domain.Notification, error) {
	n := domain.NewNotification(userID, typ, domain.NotificationData{
		GroupID:   g.ID,
		GroupName: g.Name,
		Date:      g.Date.Format("2006-01-02"),
		TimeSlot:  g.TimeSlot,
	}, time.Now())
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	if s.publisher != nil {
		s.publisher.Publish(userID, n)
	}
	return n, nil
}

// createForAll fans a notification out to every listed user. A failing insert
// doesn't stop the remaining deliveries; the first error is reported.
func (s *notificationService) createForAll(ctx context.Context, userIDs []string, typ domain.NotificationType, g *domain.Group) error {
	var firstErr error
	for _, userID := range userIDs {
		if _, err := s.create(ctx, userID, typ, g); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
