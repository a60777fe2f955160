// Package feed maintains a per-user unread notification list: seeded from an
// initial fetch, appended by push events, and drained by optimistic mark-read
// with reconciliation when the confirming store call fails.
package feed

import (
	"context"
	"sync"

	"joynex/internal/domain"
)

// Store confirms read-state transitions against the authoritative store.
// Satisfied by domain.NotificationService.
type Store interface {
	MarkRead(ctx context.Context, id, userID string) error
}

// Feed is the in-memory unread list for one user, newest first. Safe for
// concurrent use; push handlers are idempotent against duplicate delivery.
type Feed struct {
	userID string
	store  Store

	mu    sync.Mutex
	items []*domain.Notification
	seen  map[string]struct{}
}

// New seeds a Feed from an initial fetch. The seed is assumed newest-first as
// returned by the repository; read entries and duplicates are skipped.
func New(userID string, store Store, seed []*domain.Notification) *Feed {
	f := &Feed{
		userID: userID,
		store:  store,
		seen:   make(map[string]struct{}, len(seed)),
	}
	for _, n := range seed {
		if n.Read {
			continue
		}
		if _, dup := f.seen[n.ID]; dup {
			continue
		}
		f.seen[n.ID] = struct{}{}
		f.items = append(f.items, n)
	}
	return f
}

// Add inserts a pushed notification at the head of the unread list. Returns
// false for duplicates and already-read entries, so at-least-once delivery
// and reordering against in-flight fetches are harmless.
func (f *Feed) Add(n *domain.Notification) bool {
	if n.Read {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, dup := f.seen[n.ID]; dup {
		return false
	}
	f.seen[n.ID] = struct{}{}
	f.items = append([]*domain.Notification{n}, f.items...)
	return true
}

// Unread returns a copy of the current unread list, newest first.
func (f *Feed) Unread() []*domain.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*domain.Notification, len(f.items))
	copy(out, f.items)
	return out
}

// Len returns the number of unread notifications.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// Clear empties the unread list after a successful bulk mark-read. Seen IDs
// are kept so a late redelivery of a cleared notification stays suppressed.
func (f *Feed) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = nil
}

// MarkRead optimistically removes the notification, then confirms against the
// store. If the confirming call fails the entry is restored at its prior
// position, so unread state is never silently lost.
func (f *Feed) MarkRead(ctx context.Context, id string) error {
	f.mu.Lock()
	idx := -1
	var removed *domain.Notification
	for i, n := range f.items {
		if n.ID == id {
			idx = i
			removed = n
			break
		}
	}
	if idx < 0 {
		f.mu.Unlock()
		return domain.ErrNotFound
	}
	f.items = append(f.items[:idx], f.items[idx+1:]...)
	f.mu.Unlock()

	if err := f.store.MarkRead(ctx, id, f.userID); err != nil {
		f.mu.Lock()
		if idx > len(f.items) {
			idx = len(f.items)
		}
		f.items = append(f.items[:idx], append([]*domain.Notification{removed}, f.items[idx:]...)...)
		f.mu.Unlock()
		return err
	}
	return nil
}
