package domain

import (
	"context"
	"time"
)

// Group categories selectable at creation and used by the discovery filter.
var GroupCategories = []string{"Poker", "Sports", "Study", "Party", "Gaming", "Other"}

// Contact methods a group owner can advertise.
var ContactMethods = []string{"Instagram", "WhatsApp", "WeChat", "Phone"}

// ValidGroupCategory reports whether category is one of GroupCategories.
func ValidGroupCategory(category string) bool {
	for _, c := range GroupCategories {
		if c == category {
			return true
		}
	}
	return false
}

// ValidContactMethod reports whether method is one of ContactMethods.
func ValidContactMethod(method string) bool {
	for _, m := range ContactMethods {
		if m == method {
			return true
		}
	}
	return false
}

// Group represents a scheduled social/activity meetup with a capacity limit.
// Invariant: 1 <= CurrentMembers <= MaxMembers and MaxMembers >= 2, enforced
// by the repository transactions.
// swagger:model Group
type Group struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	Description    string    `json:"description"`
	Date           time.Time `json:"date"`
	TimeSlot       string    `json:"time_slot"`
	Location       string    `json:"location"`
	LocationLink   string    `json:"location_link"`
	ContactMethod  string    `json:"contact_method"`
	ContactInfo    string    `json:"contact_info"`
	MaxMembers     int       `json:"max_members"`
	CurrentMembers int       `json:"current_members"`
	CreatedBy      string    `json:"created_by"`
	CreatedByName  string    `json:"created_by_name,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// IsFull reports whether the group has reached capacity. Advisory only: the
// authoritative check is the join transaction in the repository.
func (g *Group) IsFull() bool {
	return g.CurrentMembers >= g.MaxMembers
}

// GroupMember is the relation linking a user to a group they have joined.
// swagger:model GroupMember
type GroupMember struct {
	GroupID  string    `json:"group_id"`
	UserID   string    `json:"user_id"`
	FullName string    `json:"full_name,omitempty"`
	JoinedAt time.Time `json:"joined_at"`
}

// GroupRepository defines the interface for group storage. Create inserts the
// group row and the owner's membership row as a single transaction.
type GroupRepository interface {
	Create(ctx context.Context, g *Group) error
	GetByID(ctx context.Context, id string) (*Group, error)
	ListAvailable(ctx context.Context, userID string, p PaginationParams) ([]*Group, error)
	ListJoined(ctx context.Context, userID string) ([]*Group, error)
	ListCreated(ctx context.Context, userID string) ([]*Group, error)
	Update(ctx context.Context, groupID string, in UpdateGroupInput) (*Group, error)
	Delete(ctx context.Context, id string) error
}

// MembershipRepository defines storage operations for group membership.
// Join and Leave run the membership insert/delete and the current_members
// counter update in one transaction, so capacity races between concurrent
// callers are resolved by the store.
type MembershipRepository interface {
	Join(ctx context.Context, groupID, userID string) (*GroupMember, error)
	Leave(ctx context.Context, groupID, userID string) error
	ListByGroupID(ctx context.Context, groupID string) ([]*GroupMember, error)
}

// CreateGroupInput holds the validated fields for creating a group.
type CreateGroupInput struct {
	Name          string
	Category      string
	Description   string
	Date          time.Time
	TimeSlot      string
	Location      string
	LocationLink  string
	ContactMethod string
	ContactInfo   string
	MaxMembers    int
}

// UpdateGroupInput holds the optional fields for editing a group. Nil fields
// are left unchanged.
type UpdateGroupInput struct {
	Description  *string
	Date         *time.Time
	TimeSlot     *string
	Location     *string
	LocationLink *string
	ContactInfo  *string
}

// GroupService defines group CRUD and listing operations. All operations
// require an authenticated caller; there is no anonymous read path.
type GroupService interface {
	CreateGroup(ctx context.Context, userID string, in CreateGroupInput) (*Group, error)
	ListAvailable(ctx context.Context, userID, searchTerm, category string, p PaginationParams) ([]*Group, error)
	ListJoined(ctx context.Context, userID string) ([]*Group, error)
	ListCreated(ctx context.Context, userID string) ([]*Group, error)
	GetMembers(ctx context.Context, groupID string) ([]*GroupMember, error)
	UpdateGroup(ctx context.Context, groupID, userID string, in UpdateGroupInput) (*Group, error)
	DeleteGroup(ctx context.Context, groupID, userID string) error
}

// MembershipService defines the join/leave state machine for a (user, group) pair.
type MembershipService interface {
	Join(ctx context.Context, groupID, userID string) (*GroupMember, error)
	Leave(ctx context.Context, groupID, userID string) error
}
