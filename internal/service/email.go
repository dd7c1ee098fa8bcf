package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/resend/resend-go/v2"
)

type EmailService struct {
	client    *resend.Client
	fromEmail string
	appName   string
	isDev     bool
}

func NewEmailService(apiKey, fromEmail, appName string, isDev bool) *EmailService {
	var client *resend.Client
	if apiKey != "" && !isDev {
		client = resend.NewClient(apiKey)
	}

	return &EmailService{
		client:    client,
		fromEmail: fromEmail,
		appName:   appName,
		isDev:     isDev,
	}
}

// SendWelcomeEmail greets a new user after signup. Failures are logged, never
// surfaced: signup must not depend on the email provider.
func (s *EmailService) SendWelcomeEmail(email, name string) {
	subject := fmt.Sprintf("Welcome to %s", s.appName)
	body := fmt.Sprintf("Hi %s,\n\nYour %s account is ready. Upload your first file to get started.\n", name, s.appName)

	if s.isDev || s.client == nil {
		slog.Info("email sent (log mode)", "type", "welcome", "to", email, "subject", subject)
		return
	}

	params := &resend.SendEmailRequest{
		From:    s.fromEmail,
		To:      []string{email},
		Subject: subject,
		Text:    body,
	}

	_, err := s.client.Emails.SendWithContext(context.Background(), params)
	if err != nil {
		slog.Warn("failed to send welcome email", "error", err, "to", email)
		return
	}
	slog.Info("email sent", "type", "welcome", "to", email)
}
