package services

import (
	"context"
	"fmt"
	"log"

	"joynex/internal/domain"
)

type emailService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
}

// NewEmailService returns an EmailService that uses the given Mailer and template renderer.
func NewEmailService(mailer domain.Mailer, renderer domain.EmailTemplateRenderer) domain.EmailService {
	return &emailService{mailer: mailer, renderer: renderer}
}

// SendWelcomeMessage sends the post-signup welcome email using the "welcome" template.
func (s *emailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	if data == nil {
		return fmt.Errorf("welcome message data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("welcome", data)
	if err != nil {
		return fmt.Errorf("failed to render welcome template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	log.Printf("[EMAIL] Welcome email sent to %s", data.Email)
	return nil
}

// SendVerificationCode sends the 6-digit account verification email using the "verification" template.
func (s *emailService) SendVerificationCode(ctx context.Context, data *domain.VerificationEmailData) error {
	if data == nil {
		return fmt.Errorf("verification email data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("verification", data)
	if err != nil {
		return fmt.Errorf("failed to render verification template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	log.Printf("[EMAIL] Verification code sent to %s", data.Email)
	return nil
}

// SendGroupJoin sends the group details email after a successful join using the "group_join" template.
func (s *emailService) SendGroupJoin(ctx context.Context, data *domain.GroupJoinEmailData) error {
	if data == nil {
		return fmt.Errorf("group join data is nil")
	}
	subject, htmlBody, textBody, err := s.renderer.Render("group_join", data)
	if err != nil {
		return fmt.Errorf("failed to render group_join template: %w", err)
	}
	if err := s.mailer.Send(data.Email, subject, htmlBody, textBody); err != nil {
		return fmt.Errorf("failed to send group join email: %w", err)
	}
	log.Printf("[EMAIL] Group join email sent to %s", data.Email)
	return nil
}
