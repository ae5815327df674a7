package bootstrap

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/fixitsanclemente/quote-intake/internal/business"
	appconfig "github.com/fixitsanclemente/quote-intake/internal/config"
	"github.com/fixitsanclemente/quote-intake/internal/notify"
	"github.com/fixitsanclemente/quote-intake/pkg/logging"
)

// BuildEmailSender selects the provider from EMAIL_PROVIDER. SES needs AWS
// credentials, so it is only built when named explicitly; auto selection
// considers the API-key providers.
func BuildEmailSender(ctx context.Context, cfg *appconfig.Config, profile *business.Profile, awsp *awsProvider, logger *logging.Logger) (notify.EmailSender, error) {
	if logger == nil {
		logger = logging.Default()
	}

	senderCfg := notify.SenderConfig{
		Provider:       cfg.EmailProvider,
		ResendAPIKey:   cfg.ResendAPIKey,
		SendGridAPIKey: cfg.SendGridAPIKey,
		FromEmail:      profile.FromEmail,
		FromName:       profile.FromName,
	}

	if cfg.EmailProvider == notify.ProviderSES {
		awsCfg, err := awsp.Get(ctx)
		if err != nil {
			return nil, err
		}
		senderCfg.SESClient = sesv2.NewFromConfig(awsCfg)
	}

	sender, provider, err := notify.NewSender(senderCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: email sender: %w", err)
	}
	logger.Info("email provider selected", "provider", provider)
	return sender, nil
}
