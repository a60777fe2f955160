// Package realtime provides an in-process publish/subscribe hub that fans
// notification events out to live subscribers, keyed by user ID. Subscriptions
// are cancellable handles: after Close returns, no further events are delivered.
package realtime

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"joynex/internal/domain"
)

const defaultBuffer = 16

// Hub routes published notifications to the subscriptions of the owning user.
// Safe for concurrent use. Implements domain.NotificationPublisher.
type Hub struct {
	logger *slog.Logger

	mu   sync.RWMutex
	subs map[string]map[string]*Subscription // userID -> subscription ID -> sub
}

// NewHub returns an empty Hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		logger: logger,
		subs:   make(map[string]map[string]*Subscription),
	}
}

// Subscribe registers a new subscription for the user's notifications.
// The caller must Close the returned handle when done.
func (h *Hub) Subscribe(userID string) *Subscription {
	sub := &Subscription{
		id:     uuid.NewString(),
		userID: userID,
		hub:    h,
		events: make(chan *domain.Notification, defaultBuffer),
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[string]*Subscription)
	}
	h.subs[userID][sub.id] = sub
	return sub
}

// Publish delivers n to every live subscription of userID. Delivery is
// best-effort: a subscriber whose buffer is full misses the event (it still
// holds the persisted row and can reconcile on the next fetch).
func (h *Hub) Publish(userID string, n *domain.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, sub := range h.subs[userID] {
		select {
		case sub.events <- n:
		default:
			h.logger.Warn("dropping realtime notification, subscriber buffer full",
				"user_id", userID, "notification_id", n.ID)
		}
	}
}

// remove detaches the subscription from the hub. Called with the hub's write
// lock held exclusively against publishers, so no send can race the close.
func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	userSubs := h.subs[sub.userID]
	if _, ok := userSubs[sub.id]; !ok {
		return
	}
	delete(userSubs, sub.id)
	if len(userSubs) == 0 {
		delete(h.subs, sub.userID)
	}
	close(sub.events)
}

// Subscription is a cancellable handle on a user's notification stream.
type Subscription struct {
	id     string
	userID string
	hub    *Hub
	events chan *domain.Notification

	closeOnce sync.Once
}

// Events returns the stream of delivered notifications. The channel is closed
// by Close.
func (s *Subscription) Events() <-chan *domain.Notification {
	return s.events
}

// Close detaches the subscription. Idempotent; once it returns, no further
// events are delivered on Events.
func (s *Subscription) Close() {
	s.closeOnce.Do(func() {
		s.hub.remove(s)
	})
}
