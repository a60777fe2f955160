package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"joynex/internal/domain"
)

type membershipService struct {
	groupRepo       domain.GroupRepository
	membershipRepo  domain.MembershipRepository
	userRepo        domain.UserRepository
	notificationSvc domain.NotificationService
	emailService    domain.EmailService
	logger          *slog.Logger
}

// NewMembershipService creates the join/leave service. The membership
// repository performs the actual state transition atomically; this layer adds
// the advisory fast-path checks and the post-commit notification and email.
func NewMembershipService(
	groupRepo domain.GroupRepository,
	membershipRepo domain.MembershipRepository,
	userRepo domain.UserRepository,
	notificationSvc domain.NotificationService,
	emailService domain.EmailService,
	logger *slog.Logger,
) domain.MembershipService {
	return &membershipService{
		groupRepo:       groupRepo,
		membershipRepo:  membershipRepo,
		userRepo:        userRepo,
		notificationSvc: notificationSvc,
		emailService:    emailService,
		logger:          logger,
	}
}

func (s *membershipService) Join(ctx context.Context, groupID, userID string) (*domain.GroupMember, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get group: %w", err)
	}
	// Fast-path capacity check. Advisory only: the repository transaction is
	// the authoritative guard, so a race for the last slot still resolves there.
	if group.IsFull() {
		return nil, domain.ErrGroupFull
	}

	member, err := s.membershipRepo.Join(ctx, groupID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrGroupFull),
			errors.Is(err, domain.ErrAlreadyMember),
			errors.Is(err, domain.ErrNotFound):
			return nil, err
		}
		return nil, fmt.Errorf("failed to join group: %w", err)
	}

	// The join is committed; notification and email are best-effort from here.
	if s.notificationSvc != nil {
		if _, err := s.notificationSvc.NotifyGroupJoin(ctx, userID, group); err != nil {
			s.logger.WarnContext(ctx, "failed to create join notification", "group_id", groupID, "user_id", userID, "err", err)
		}
	}
	s.sendJoinEmail(ctx, userID, group)

	return member, nil
}

func (s *membershipService) Leave(ctx context.Context, groupID, userID string) error {
	err := s.membershipRepo.Leave(ctx, groupID, userID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound),
			errors.Is(err, domain.ErrNotMember),
			errors.Is(err, domain.ErrOwnerCannotLeave):
			return err
		}
		return fmt.Errorf("failed to leave group: %w", err)
	}
	return nil
}

func (s *membershipService) sendJoinEmail(ctx context.Context, userID string, group *domain.Group) {
	if s.emailService == nil {
		return
	}
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "failed to load user for join email", "user_id", userID, "err", err)
		return
	}
	data := &domain.GroupJoinEmailData{
		Email:         user.Email,
		GroupName:     group.Name,
		Category:      group.Category,
		Date:          group.Date.Format("2 Jan 2006"),
		TimeSlot:      group.TimeSlot,
		Location:      group.Location,
		LocationLink:  group.LocationLink,
		ContactMethod: group.ContactMethod,
		ContactInfo:   group.ContactInfo,
	}
	if err := s.emailService.SendGroupJoin(ctx, data); err != nil {
		s.logger.WarnContext(ctx, "failed to send join email", "user_id", userID, "err", err)
	}
}
