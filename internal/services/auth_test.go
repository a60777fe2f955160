package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"joynex/internal/domain"
)

func newTestAuthService(userRepo *mockUserRepository, codeRepo *mockCodeRepository, emailSvc *mockEmailService) *authService {
	return &authService{
		userRepo:       userRepo,
		codeRepo:       codeRepo,
		hasher:         fakeHasher{},
		tokenIssuer:    &fakeTokenIssuer{token: "signed-token"},
		tokenExpiry:    time.Hour,
		emailService:   emailSvc,
		allowedDomains: domain.DefaultAllowedEmailDomains,
		logger:         testLogger(),
	}
}

func TestAuthService_SignUp(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		password string
		fullName string
		wantErr  error
	}{
		{
			name:     "staff domain accepted",
			email:    "alice@unimelb.edu.au",
			password: "password123",
			fullName: "Alice Wong",
		},
		{
			name:     "student domain accepted",
			email:    "bob@student.unimelb.edu.au",
			password: "password123",
			fullName: "Bob Chen",
		},
		{
			name:     "uppercase email normalized and accepted",
			email:    "Carol@Student.UNIMELB.edu.au",
			password: "password123",
			fullName: "Carol Diaz",
		},
		{
			name:     "gmail rejected",
			email:    "dave@gmail.com",
			password: "password123",
			fullName: "Dave Park",
			wantErr:  domain.ErrInvalidDomain,
		},
		{
			name:     "lookalike suffix rejected",
			email:    "eve@unimelb.edu.au.evil.com",
			password: "password123",
			fullName: "Eve Lin",
			wantErr:  domain.ErrInvalidDomain,
		},
		{
			name:     "short password rejected",
			email:    "frank@unimelb.edu.au",
			password: "short",
			fullName: "Frank Hall",
			wantErr:  domain.ErrInvalidInput,
		},
		{
			name:     "missing full name rejected",
			email:    "grace@unimelb.edu.au",
			password: "password123",
			fullName: "   ",
			wantErr:  domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := &mockUserRepository{}
			codeRepo := &mockCodeRepository{}
			emailSvc := &mockEmailService{}
			svc := newTestAuthService(userRepo, codeRepo, emailSvc)

			user, err := svc.SignUp(context.Background(), tt.email, tt.password, tt.fullName)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if user.Verified {
				t.Fatal("new user should start unverified")
			}
			if len(codeRepo.storedEmails) != 1 {
				t.Fatalf("expected 1 stored verification code, got %d", len(codeRepo.storedEmails))
			}
			if len(emailSvc.verification) != 1 || len(emailSvc.welcome) != 1 {
				t.Fatalf("expected verification and welcome emails, got %d/%d", len(emailSvc.verification), len(emailSvc.welcome))
			}
		})
	}
}

func TestAuthService_SignUp_DomainCheckedBeforeStore(t *testing.T) {
	userRepo := &mockUserRepository{}
	svc := newTestAuthService(userRepo, &mockCodeRepository{}, &mockEmailService{})

	_, err := svc.SignUp(context.Background(), "mallory@hotmail.com", "password123", "Mallory Reid")
	if !errors.Is(err, domain.ErrInvalidDomain) {
		t.Fatalf("expected ErrInvalidDomain, got %v", err)
	}
	if len(userRepo.calls) != 0 {
		t.Fatalf("domain rejection must not touch the user store, saw calls: %v", userRepo.calls)
	}
}

func TestAuthService_SignUp_DuplicateEmail(t *testing.T) {
	userRepo := &mockUserRepository{createErr: domain.ErrDuplicateEmail}
	svc := newTestAuthService(userRepo, &mockCodeRepository{}, &mockEmailService{})

	_, err := svc.SignUp(context.Background(), "alice@unimelb.edu.au", "password123", "Alice Wong")
	if !errors.Is(err, domain.ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestAuthService_SignUp_EmailFailureIsNotFatal(t *testing.T) {
	userRepo := &mockUserRepository{}
	svc := newTestAuthService(userRepo, &mockCodeRepository{}, &mockEmailService{err: errors.New("ses unavailable")})

	user, err := svc.SignUp(context.Background(), "alice@unimelb.edu.au", "password123", "Alice Wong")
	if err != nil {
		t.Fatalf("sign-up must succeed when email delivery fails, got %v", err)
	}
	if user == nil || user.ID == "" {
		t.Fatal("expected a created user")
	}
}

func TestAuthService_SignIn(t *testing.T) {
	existing := &domain.User{
		ID:           "user-1",
		Email:        "alice@unimelb.edu.au",
		PasswordHash: "hashed:salt:password123",
		Salt:         "salt",
	}

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{
			name:     "valid credentials",
			email:    "alice@unimelb.edu.au",
			password: "password123",
		},
		{
			name:     "wrong password",
			email:    "alice@unimelb.edu.au",
			password: "wrongpass",
			wantErr:  domain.ErrInvalidCredentials,
		},
		{
			name:     "unknown user maps to invalid credentials",
			email:    "nobody@unimelb.edu.au",
			password: "password123",
			wantErr:  domain.ErrInvalidCredentials,
		},
		{
			name:     "disallowed domain rejected before lookup",
			email:    "alice@gmail.com",
			password: "password123",
			wantErr:  domain.ErrInvalidDomain,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			userRepo := &mockUserRepository{
				usersByEmail: map[string]*domain.User{existing.Email: existing},
			}
			svc := newTestAuthService(userRepo, &mockCodeRepository{}, &mockEmailService{})

			token, user, err := svc.SignIn(context.Background(), tt.email, tt.password)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if token != "signed-token" {
				t.Fatalf("expected issued token, got %q", token)
			}
			if user.ID != existing.ID {
				t.Fatalf("expected user %q, got %q", existing.ID, user.ID)
			}
		})
	}
}

func TestAuthService_VerifyEmail(t *testing.T) {
	existing := &domain.User{ID: "user-1", Email: "alice@unimelb.edu.au"}

	tests := []struct {
		name         string
		code         string
		consumed     bool
		verified     bool
		wantErr      error
		wantMarkCall bool
	}{
		{
			name:         "valid code marks verified",
			code:         "123456",
			consumed:     true,
			wantMarkCall: true,
		},
		{
			name:     "already verified is a no-op",
			code:     "123456",
			consumed: true,
			verified: true,
		},
		{
			name:    "malformed code rejected without lookup",
			code:    "12ab56",
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:    "expired or unknown code rejected",
			code:    "654321",
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := *existing
			user.Verified = tt.verified
			userRepo := &mockUserRepository{
				usersByEmail: map[string]*domain.User{user.Email: &user},
			}
			codeRepo := &mockCodeRepository{consumed: tt.consumed}
			svc := newTestAuthService(userRepo, codeRepo, &mockEmailService{})

			err := svc.VerifyEmail(context.Background(), user.Email, tt.code)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantMarkCall != (len(userRepo.verified) == 1) {
				t.Fatalf("MarkVerified called=%v, want %v", len(userRepo.verified) == 1, tt.wantMarkCall)
			}
		})
	}
}
