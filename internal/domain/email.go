package domain

import "context"

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeMessageEmailData holds data for the welcome email.
type WelcomeMessageEmailData struct {
	Email    string
	FullName string
}

// VerificationEmailData holds data for the account verification code email.
type VerificationEmailData struct {
	Email            string
	Code             string
	ExpiresInMinutes int
}

// GroupJoinEmailData holds data for the email sent after joining a group.
type GroupJoinEmailData struct {
	Email         string
	GroupName     string
	Category      string
	Date          string
	TimeSlot      string
	Location      string
	LocationLink  string
	ContactMethod string
	ContactInfo   string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendWelcomeMessage(ctx context.Context, data *WelcomeMessageEmailData) error
	SendVerificationCode(ctx context.Context, data *VerificationEmailData) error
	SendGroupJoin(ctx context.Context, data *GroupJoinEmailData) error
}
