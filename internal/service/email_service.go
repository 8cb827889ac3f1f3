package service

import (
	"context"
	"fmt"
	"html"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"heartbridge/internal/logger"
	"heartbridge/internal/models"
)

// Notifier is told about workflow events that need a human
type Notifier interface {
	NotifyAdminRequest(ctx context.Context, req *models.AdminRequest) error
}

// sesSender is the part of the SES client the email service uses
type sesSender interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService sends notification emails via Amazon SES
type EmailService struct {
	client      sesSender
	fromEmail   string
	fromName    string
	notifyEmail string
	appBaseURL  string
	enabled     bool
}

// EmailConfig holds what NewEmailService needs
type EmailConfig struct {
	AWSRegion   string
	FromEmail   string
	FromName    string
	NotifyEmail string
	AppBaseURL  string
}

// NewEmailService creates a new email service. It is disabled unless both
// the sender and the notification address are configured.
func NewEmailService(ctx context.Context, cfg EmailConfig) (*EmailService, error) {
	if cfg.FromEmail == "" || cfg.NotifyEmail == "" {
		logger.Info().Msg("Email service disabled: SES_FROM_EMAIL or ADMIN_NOTIFY_EMAIL not configured")
		return &EmailService{}, nil
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(cfg.AWSRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info().Str("from", cfg.FromEmail).Str("region", cfg.AWSRegion).Msg("Email service enabled")
	return newEmailService(sesv2.NewFromConfig(awsCfg), cfg), nil
}

func newEmailService(client sesSender, cfg EmailConfig) *EmailService {
	return &EmailService{
		client:      client,
		fromEmail:   cfg.FromEmail,
		fromName:    cfg.FromName,
		notifyEmail: cfg.NotifyEmail,
		appBaseURL:  cfg.AppBaseURL,
		enabled:     true,
	}
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// NotifyAdminRequest tells the configured administrator address that a user asked for admin rights
func (s *EmailService) NotifyAdminRequest(ctx context.Context, req *models.AdminRequest) error {
	if !s.enabled {
		logger.Debug().Int64("request_id", req.ID).Msg("Skipping admin request email (service disabled)")
		return nil
	}

	link := s.appBaseURL + "/admin"
	subject := fmt.Sprintf("HeartBridge: %s requested admin rights", req.Nickname)
	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
	<p><strong>%s</strong> asked to become an administrator on %s.</p>
	<p>Review the request in the <a href="%s">admin console</a>.</p>
	<p style="font-size: 12px; color: #666;">This is an automated email from HeartBridge. Please do not reply.</p>
</body>
</html>
`, html.EscapeString(req.Nickname), req.CreatedAt.Format("2006-01-02 15:04 MST"), link)

	textBody := fmt.Sprintf(`%s asked to become an administrator on %s.

Review the request in the admin console: %s

---
This is an automated email from HeartBridge. Please do not reply.
`, req.Nickname, req.CreatedAt.Format("2006-01-02 15:04 MST"), link)

	return s.sendEmail(ctx, s.notifyEmail, subject, htmlBody, textBody)
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	event := logger.Info().Str("to", toEmail).Str("subject", subject)
	if result != nil && result.MessageId != nil {
		event = event.Str("message_id", *result.MessageId)
	}
	event.Msg("Email sent")
	return nil
}
