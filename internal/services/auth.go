package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"joynex/internal/domain"
)

const (
	minPasswordLen         = 8
	verificationCodeDigits = 6
	verificationExpiryMins = 15
)

var (
	emailRegexp            = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	verificationCodeRegexp = regexp.MustCompile(`^\d{6}$`)
)

type authService struct {
	userRepo       domain.UserRepository
	codeRepo       domain.VerificationCodeRepository
	hasher         domain.PasswordHasher
	tokenIssuer    domain.TokenIssuer
	tokenExpiry    time.Duration
	emailService   domain.EmailService
	allowedDomains []string
	logger         *slog.Logger
}

// NewAuthService creates an AuthService. allowedDomains are the email suffixes
// accepted at sign-up and sign-in; pass domain.DefaultAllowedEmailDomains for
// the standard university allow-list.
func NewAuthService(
	userRepo domain.UserRepository,
	codeRepo domain.VerificationCodeRepository,
	hasher domain.PasswordHasher,
	tokenIssuer domain.TokenIssuer,
	tokenExpiry time.Duration,
	emailService domain.EmailService,
	allowedDomains []string,
	logger *slog.Logger,
) domain.AuthService {
	return &authService{
		userRepo:       userRepo,
		codeRepo:       codeRepo,
		hasher:         hasher,
		tokenIssuer:    tokenIssuer,
		tokenExpiry:    tokenExpiry,
		emailService:   emailService,
		allowedDomains: allowedDomains,
		logger:         logger,
	}
}

func (s *authService) SignUp(ctx context.Context, email, password, fullName string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	// Domain gate runs before anything touches the store or the network.
	if err := domain.ValidateEmailDomain(email, s.allowedDomains); err != nil {
		return nil, err
	}
	if !emailRegexp.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, fmt.Errorf("%w: full name is required", domain.ErrInvalidInput)
	}

	salt, err := s.hasher.GenerateSalt()
	if err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	hash, err := s.hasher.Hash(salt, password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user := domain.NewUser(email, fullName, now, now)
	user.PasswordHash = hash
	user.Salt = salt
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	code, err := generateVerificationCode(verificationCodeDigits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate verification code: %w", err)
	}
	expiresAt := now.Add(verificationExpiryMins * time.Minute)
	if err := s.codeRepo.Create(ctx, email, hashVerificationCode(code), expiresAt); err != nil {
		return nil, fmt.Errorf("failed to store verification code: %w", err)
	}

	// Email delivery is best-effort: the account exists either way and the
	// user can still sign in unverified.
	if s.emailService != nil {
		if err := s.emailService.SendVerificationCode(ctx, &domain.VerificationEmailData{
			Email:            email,
			Code:             code,
			ExpiresInMinutes: verificationExpiryMins,
		}); err != nil {
			s.logger.WarnContext(ctx, "failed to send verification email", "email", email, "err", err)
		}
		if err := s.emailService.SendWelcomeMessage(ctx, &domain.WelcomeMessageEmailData{
			Email:    email,
			FullName: fullName,
		}); err != nil {
			s.logger.WarnContext(ctx, "failed to send welcome email", "email", email, "err", err)
		}
	}

	return user, nil
}

func (s *authService) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if err := domain.ValidateEmailDomain(email, s.allowedDomains); err != nil {
		return "", nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("failed to get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokenIssuer.Issue(user.ID, user.Email, s.tokenExpiry)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return token, user, nil
}

func (s *authService) VerifyEmail(ctx context.Context, email, code string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	code = strings.TrimSpace(code)
	if !verificationCodeRegexp.MatchString(code) {
		return fmt.Errorf("%w: invalid or expired code", domain.ErrInvalidInput)
	}
	consumed, err := s.codeRepo.Consume(ctx, email, hashVerificationCode(code))
	if err != nil {
		return fmt.Errorf("failed to verify code: %w", err)
	}
	if !consumed {
		return fmt.Errorf("%w: invalid or expired code", domain.ErrInvalidInput)
	}
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user.Verified {
		return nil
	}
	if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to mark user verified: %w", err)
	}
	return nil
}

func (s *authService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

func generateVerificationCode(digits int) (string, error) {
	const digitspace = "0123456789"
	b := make([]byte, digits)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = digitspace[int(b[i])%len(digitspace)]
	}
	return string(b), nil
}

func hashVerificationCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}
