package email

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/nano-blog/backend/internal/logger"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"
)

// Mailer delivers account emails
type Mailer interface {
	SendVerificationEmail(ctx context.Context, toEmail, username, token string) error
	SendPasswordResetEmail(ctx context.Context, toEmail, username, token string) error
}

// VerificationURL is the link a user follows to verify their email
func VerificationURL(siteURL, token string) string {
	return fmt.Sprintf("%s/api/v1/auth/verify-email/?token=%s", siteURL, token)
}

// PasswordResetURL is the link a user follows to reset their password
func PasswordResetURL(siteURL, token string) string {
	return fmt.Sprintf("%s/api/v1/auth/password-reset/confirm/?token=%s", siteURL, token)
}

// SESMailer sends email through AWS SES
type SESMailer struct {
	client    *ses.Client
	fromEmail string
	fromName  string
	siteURL   string
}

// NewSESMailer loads the default AWS config for region and creates an SES client
func NewSESMailer(region, fromEmail, fromName, siteURL string) (*SESMailer, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESMailer{
		client:    ses.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		siteURL:   siteURL,
	}, nil
}

func (m *SESMailer) SendVerificationEmail(ctx context.Context, toEmail, username, token string) error {
	link := VerificationURL(m.siteURL, token)
	body := fmt.Sprintf("Hi %s,\n\nClick here to verify your email: %s\n", username, link)
	if err := m.send(ctx, toEmail, "Verify your email", body); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

func (m *SESMailer) SendPasswordResetEmail(ctx context.Context, toEmail, username, token string) error {
	link := PasswordResetURL(m.siteURL, token)
	body := fmt.Sprintf("Hi %s,\n\nClick here to reset your password: %s\n\nIf you didn't request this, you can ignore this email.\n", username, link)
	if err := m.send(ctx, toEmail, "Password Reset", body); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

func (m *SESMailer) send(ctx context.Context, toEmail, subject, textBody string) error {
	from := m.fromEmail
	if m.fromName != "" {
		from = fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail)
	}

	_, err := m.client.SendEmail(ctx, &ses.SendEmailInput{
		Source:      aws.String(from),
		Destination: &types.Destination{ToAddresses: []string{toEmail}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(textBody), Charset: aws.String("UTF-8")},
			},
		},
	})
	return err
}

// LogMailer writes the links to the log instead of sending mail
type LogMailer struct {
	siteURL string
}

// NewLogMailer creates a LogMailer
func NewLogMailer(siteURL string) *LogMailer {
	return &LogMailer{siteURL: siteURL}
}

func (m *LogMailer) SendVerificationEmail(_ context.Context, toEmail, username, token string) error {
	logger.Log.Info("Verification email",
		zap.String("to", toEmail),
		zap.String("username", username),
		zap.String("link", VerificationURL(m.siteURL, token)),
	)
	return nil
}

func (m *LogMailer) SendPasswordResetEmail(_ context.Context, toEmail, username, token string) error {
	logger.Log.Info("Password reset email",
		zap.String("to", toEmail),
		zap.String("username", username),
		zap.String("link", PasswordResetURL(m.siteURL, token)),
	)
	return nil
}
