package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/fixitsanclemente/quote-intake/pkg/logging"
)

type resendEmails interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendSender sends emails via the Resend API.
type ResendSender struct {
	emails    resendEmails
	fromEmail string
	fromName  string
	logger    *logging.Logger
}

// ResendConfig holds configuration for Resend.
type ResendConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

var _ EmailSender = (*ResendSender)(nil)

// NewResendSender returns nil when no API key is configured.
func NewResendSender(cfg ResendConfig, logger *logging.Logger) *ResendSender {
	if cfg.APIKey == "" {
		return nil
	}
	return newResendSender(resend.NewClient(cfg.APIKey).Emails, cfg, logger)
}

func newResendSender(emails resendEmails, cfg ResendConfig, logger *logging.Logger) *ResendSender {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = defaultFromName
	}
	return &ResendSender{
		emails:    emails,
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

func (s *ResendSender) Send(ctx context.Context, msg EmailMessage) error {
	if s.emails == nil {
		return fmt.Errorf("notify: resend client not configured")
	}
	if err := msg.validate(); err != nil {
		return err
	}

	fromEmail, fromName := resolveFrom(msg, s.fromEmail, s.fromName)
	req := &resend.SendEmailRequest{
		From:    formatAddress(fromEmail, fromName),
		To:      []string{formatAddress(msg.To, msg.ToName)},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Body,
		ReplyTo: msg.ReplyTo,
	}

	sent, err := s.emails.SendWithContext(ctx, req)
	if err != nil {
		s.logger.Error("resend send failed", "error", err)
		return fmt.Errorf("notify: resend send failed: %w", err)
	}

	s.logger.Info("email sent via resend", "message_id", sent.Id)
	return nil
}
