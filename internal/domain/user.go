package domain

import (
	"context"
	"strings"
	"time"
)

// DefaultAllowedEmailDomains are the institutional email suffixes accepted at
// sign-up and sign-in when no override is configured.
var DefaultAllowedEmailDomains = []string{
	"@unimelb.edu.au",
	"@student.unimelb.edu.au",
}

// User represents a registered student account.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Verified     bool      `json:"verified"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewUser returns a new unverified User. ID is set by the repository on create.
func NewUser(email, fullName string, createdAt, updatedAt time.Time) *User {
	return &User{
		Email:     email,
		FullName:  fullName,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}
}

// ValidateEmailDomain reports whether email ends with one of the allowed
// institutional suffixes. Comparison is case-insensitive. Returns
// ErrInvalidDomain on mismatch; the check runs before any remote call.
func ValidateEmailDomain(email string, allowed []string) error {
	e := strings.ToLower(strings.TrimSpace(email))
	for _, suffix := range allowed {
		if strings.HasSuffix(e, strings.ToLower(suffix)) {
			return nil
		}
	}
	return ErrInvalidDomain
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated user.
type TokenIssuer interface {
	Issue(userID, email string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated user ID.
type TokenVerifier interface {
	Verify(token string) (userID string, err error)
}

// UserRepository defines the interface for user storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	MarkVerified(ctx context.Context, id string) error
}

// VerificationCodeRepository stores hashed one-time email verification codes.
type VerificationCodeRepository interface {
	Create(ctx context.Context, email, codeHash string, expiresAt time.Time) error
	Consume(ctx context.Context, email, codeHash string) (consumed bool, err error)
}

// AuthService defines sign-up, sign-in, and email verification.
type AuthService interface {
	SignUp(ctx context.Context, email, password, fullName string) (*User, error)
	SignIn(ctx context.Context, email, password string) (token string, user *User, err error)
	VerifyEmail(ctx context.Context, email, code string) error
	GetByID(ctx context.Context, id string) (*User, error)
}
