package notify

import (
	"fmt"
	"strings"

	"github.com/fixitsanclemente/quote-intake/pkg/logging"
)

// Provider names accepted by EMAIL_PROVIDER.
const (
	ProviderAuto     = "auto"
	ProviderResend   = "resend"
	ProviderSendGrid = "sendgrid"
	ProviderSES      = "ses"
	ProviderStub     = "stub"
)

// SenderConfig carries the credentials for every supported provider.
type SenderConfig struct {
	Provider       string
	ResendAPIKey   string
	SendGridAPIKey string
	// SESClient is nil unless AWS is configured.
	SESClient SESAPI
	FromEmail string
	FromName  string
}

// NewSender picks the email provider. "auto" takes the first configured
// provider in the order resend, sendgrid, ses and falls back to the stub.
// Naming a provider explicitly without its credentials is an error.
func NewSender(cfg SenderConfig, logger *logging.Logger) (EmailSender, string, error) {
	if logger == nil {
		logger = logging.Default()
	}
	provider := strings.ToLower(strings.TrimSpace(cfg.Provider))
	if provider == "" {
		provider = ProviderAuto
	}

	build := map[string]func() EmailSender{
		ProviderResend: func() EmailSender {
			if s := NewResendSender(ResendConfig{APIKey: cfg.ResendAPIKey, FromEmail: cfg.FromEmail, FromName: cfg.FromName}, logger); s != nil {
				return s
			}
			return nil
		},
		ProviderSendGrid: func() EmailSender {
			if s := NewSendGridSender(SendGridConfig{APIKey: cfg.SendGridAPIKey, FromEmail: cfg.FromEmail, FromName: cfg.FromName}, logger); s != nil {
				return s
			}
			return nil
		},
		ProviderSES: func() EmailSender {
			if s := NewSESSender(cfg.SESClient, SESConfig{FromEmail: cfg.FromEmail, FromName: cfg.FromName}, logger); s != nil {
				return s
			}
			return nil
		},
		ProviderStub: func() EmailSender { return NewStubEmailSender(logger) },
	}

	if provider == ProviderAuto {
		for _, name := range []string{ProviderResend, ProviderSendGrid, ProviderSES} {
			if s := build[name](); s != nil {
				return s, name, nil
			}
		}
		logger.Warn("no email provider configured, emails will only be logged")
		return NewStubEmailSender(logger), ProviderStub, nil
	}

	factory, ok := build[provider]
	if !ok {
		return nil, "", fmt.Errorf("%w: %q", ErrUnknownProvider, cfg.Provider)
	}
	s := factory()
	if s == nil {
		return nil, "", fmt.Errorf("%w: %s", ErrProviderNotConfigured, provider)
	}
	return s, provider, nil
}
