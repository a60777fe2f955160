package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"joynex/internal/domain"
)

// mapLinkRegexp accepts the map-provider URL shapes users actually paste:
// maps.google.com, google.com/maps, and the two short-link hosts.
var mapLinkRegexp = regexp.MustCompile(`^https?://(maps\.google\.com|(www\.)?google\.com/maps|goo\.gl/maps|maps\.app\.goo\.gl)(/|\?|$)`)

type groupService struct {
	groupRepo       domain.GroupRepository
	membershipRepo  domain.MembershipRepository
	notificationSvc domain.NotificationService
	logger          *slog.Logger
}

// NewGroupService creates a GroupService with the given repositories.
// notificationSvc receives GROUP_UPDATE/GROUP_CANCEL fan-out on edits and
// deletes; it may be nil in tests that don't exercise fan-out.
func NewGroupService(
	groupRepo domain.GroupRepository,
	membershipRepo domain.MembershipRepository,
	notificationSvc domain.NotificationService,
	logger *slog.Logger,
) domain.GroupService {
	return &groupService{
		groupRepo:       groupRepo,
		membershipRepo:  membershipRepo,
		notificationSvc: notificationSvc,
		logger:          logger,
	}
}

func (s *groupService) CreateGroup(ctx context.Context, userID string, in domain.CreateGroupInput) (*domain.Group, error) {
	if errs := validateGroupInput(&in); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidInput, strings.Join(errs, "; "))
	}

	now := time.Now()
	g := &domain.Group{
		Name:          in.Name,
		Category:      in.Category,
		Description:   in.Description,
		Date:          in.Date,
		TimeSlot:      in.TimeSlot,
		Location:      in.Location,
		LocationLink:  in.LocationLink,
		ContactMethod: in.ContactMethod,
		ContactInfo:   in.ContactInfo,
		MaxMembers:    in.MaxMembers,
		CreatedBy:     userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.groupRepo.Create(ctx, g); err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return g, nil
}

// validateGroupInput trims and checks all required creation fields, returning
// one message per failing field.
func validateGroupInput(in *domain.CreateGroupInput) []string {
	var errs []string
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	in.Location = strings.TrimSpace(in.Location)
	in.LocationLink = strings.TrimSpace(in.LocationLink)
	in.ContactInfo = strings.TrimSpace(in.ContactInfo)
	in.TimeSlot = strings.TrimSpace(in.TimeSlot)

	if in.Name == "" {
		errs = append(errs, "group name is required")
	}
	if !domain.ValidGroupCategory(in.Category) {
		errs = append(errs, "please select a group type")
	}
	if in.Date.IsZero() {
		errs = append(errs, "date is required")
	} else if in.Date.Before(today()) {
		errs = append(errs, "date must not be in the past")
	}
	if in.TimeSlot == "" {
		errs = append(errs, "time is required")
	}
	if in.Description == "" {
		errs = append(errs, "description is required")
	}
	if in.Location == "" {
		errs = append(errs, "location is required")
	}
	if in.LocationLink == "" {
		errs = append(errs, "map link is required")
	} else if !mapLinkRegexp.MatchString(in.LocationLink) {
		errs = append(errs, "please provide a valid Google Maps link")
	}
	if in.MaxMembers < 2 {
		errs = append(errs, "group must have at least 2 members")
	}
	if !domain.ValidContactMethod(in.ContactMethod) {
		errs = append(errs, "please select a contact method")
	}
	if in.ContactInfo == "" {
		errs = append(errs, "contact info is required")
	}
	return errs
}

func today() time.Time {
	now := time.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
}

func (s *groupService) ListAvailable(ctx context.Context, userID, searchTerm, category string, p domain.PaginationParams) ([]*domain.Group, error) {
	groups, err := s.groupRepo.ListAvailable(ctx, userID, p)
	if err != nil {
		return nil, fmt.Errorf("failed to list available groups: %w", err)
	}
	return domain.FilterGroups(groups, searchTerm, category), nil
}

func (s *groupService) ListJoined(ctx context.Context, userID string) ([]*domain.Group, error) {
	groups, err := s.groupRepo.ListJoined(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list joined groups: %w", err)
	}
	return groups, nil
}

func (s *groupService) ListCreated(ctx context.Context, userID string) ([]*domain.Group, error) {
	groups, err := s.groupRepo.ListCreated(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list created groups: %w", err)
	}
	return groups, nil
}

func (s *groupService) GetMembers(ctx context.Context, groupID string) ([]*domain.GroupMember, error) {
	if _, err := s.groupRepo.GetByID(ctx, groupID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	members, err := s.membershipRepo.ListByGroupID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

func (s *groupService) UpdateGroup(ctx context.Context, groupID, userID string, in domain.UpdateGroupInput) (*domain.Group, error) {
	existing, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	if existing.CreatedBy != userID {
		return nil, domain.ErrForbidden
	}
	if in.Date != nil && in.Date.Before(today()) {
		return nil, fmt.Errorf("%w: date must not be in the past", domain.ErrInvalidInput)
	}
	if in.LocationLink != nil && !mapLinkRegexp.MatchString(strings.TrimSpace(*in.LocationLink)) {
		return nil, fmt.Errorf("%w: please provide a valid Google Maps link", domain.ErrInvalidInput)
	}

	updated, err := s.groupRepo.Update(ctx, groupID, in)
	if err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}

	s.fanOut(ctx, updated, userID, domain.NotificationGroupUpdate)
	return updated, nil
}

func (s *groupService) DeleteGroup(ctx context.Context, groupID, userID string) error {
	existing, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to get group: %w", err)
	}
	if existing.CreatedBy != userID {
		return domain.ErrForbidden
	}

	// Capture the member list before the delete cascades the membership rows.
	members, err := s.membershipRepo.ListByGroupID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("failed to list members: %w", err)
	}

	if err := s.groupRepo.Delete(ctx, groupID); err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	if s.notificationSvc != nil {
		ids := make([]string, 0, len(members))
		for _, m := range members {
			if m.UserID != userID {
				ids = append(ids, m.UserID)
			}
		}
		if err := s.notificationSvc.NotifyGroupCancel(ctx, ids, existing); err != nil {
			s.logger.WarnContext(ctx, "failed to notify members of group cancel", "group_id", groupID, "err", err)
		}
	}
	return nil
}

// fanOut notifies all members except the acting owner of a group-state change.
// Failures are logged, not propagated: the mutation already committed.
func (s *groupService) fanOut(ctx context.Context, g *domain.Group, actorID string, typ domain.NotificationType) {
	if s.notificationSvc == nil {
		return
	}
	members, err := s.membershipRepo.ListByGroupID(ctx, g.ID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to list members for notification fan-out", "group_id", g.ID, "err", err)
		return
	}
	ids := make([]string, 0, len(members))
	for _, m := range members {
		if m.UserID != actorID {
			ids = append(ids, m.UserID)
		}
	}
	if typ == domain.NotificationGroupUpdate {
		err = s.notificationSvc.NotifyGroupUpdate(ctx, ids, g)
	} else {
		err = s.notificationSvc.NotifyGroupCancel(ctx, ids, g)
	}
	if err != nil {
		s.logger.WarnContext(ctx, "failed to notify members of group change", "group_id", g.ID, "err", err)
	}
}
