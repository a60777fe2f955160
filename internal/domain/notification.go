package domain

import (
	"context"
	"fmt"
	"time"
)

// NotificationType identifies the event a notification describes.
type NotificationType string

// Notification types created in response to membership or group-state changes.
const (
	NotificationGroupJoin   NotificationType = "GROUP_JOIN"
	NotificationGroupUpdate NotificationType = "GROUP_UPDATE"
	NotificationGroupCancel NotificationType = "GROUP_CANCEL"
)

// NotificationData is the opaque payload attached to a notification,
// persisted as JSON.
type NotificationData struct {
	GroupID   string `json:"group_id"`
	GroupName string `json:"group_name"`
	Date      string `json:"date,omitempty"`
	TimeSlot  string `json:"time_slot,omitempty"`
}

// Notification is an unread-feed entry owned by a single user. Created by
// membership/group mutations, mutated only by read-state transitions, never
// deleted.
// swagger:model Notification
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Type      NotificationType `json:"type"`
	Data      NotificationData `json:"data"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

// NewNotification returns an unread Notification. ID is set by the repository
// on create.
func NewNotification(userID string, typ NotificationType, data NotificationData, createdAt time.Time) *Notification {
	return &Notification{
		UserID:    userID,
		Type:      typ,
		Data:      data,
		CreatedAt: createdAt,
	}
}

// Message renders the human-readable body for the notification. Pure function
// of (type, payload); unknown types render a generic fallback rather than
// failing.
func (n *Notification) Message() string {
	switch n.Type {
	case NotificationGroupJoin:
		return fmt.Sprintf("You've joined %q on %s at %s",
			n.Data.GroupName, formatNotificationDate(n.Data.Date), n.Data.TimeSlot)
	case NotificationGroupUpdate:
		return fmt.Sprintf("%q has been updated", n.Data.GroupName)
	case NotificationGroupCancel:
		return fmt.Sprintf("%q has been cancelled", n.Data.GroupName)
	default:
		return "New notification"
	}
}

// formatNotificationDate renders an ISO date as "2 Jan 2006". Unparseable
// values pass through unchanged.
func formatNotificationDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("2 Jan 2006")
}

// NotificationRepository defines the interface for notification storage.
type NotificationRepository interface {
	Create(ctx context.Context, n *Notification) error
	ListUnreadByUserID(ctx context.Context, userID string) ([]*Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// NotificationPublisher pushes a freshly created notification to any live
// subscribers of the owning user. Delivery is best-effort, at-least-once;
// consumers must be idempotent.
type NotificationPublisher interface {
	Publish(userID string, n *Notification)
}

// NotificationService defines the unread-feed operations and the fan-out
// entry points invoked by membership/group mutations.
type NotificationService interface {
	ListUnread(ctx context.Context, userID string) ([]*Notification, error)
	MarkRead(ctx context.Context, id, userID string) error
	MarkAllRead(ctx context.Context, userID string) error
	NotifyGroupJoin(ctx context.Context, userID string, g *Group) (*Notification, error)
	NotifyGroupUpdate(ctx context.Context, userIDs []string, g *Group) error
	NotifyGroupCancel(ctx context.Context, userIDs []string, g *Group) error
}
