package bootstrap

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"

	appconfig "github.com/fixitsanclemente/quote-intake/internal/config"
	"github.com/fixitsanclemente/quote-intake/internal/llm"
	"github.com/fixitsanclemente/quote-intake/internal/observability/metrics"
	"github.com/fixitsanclemente/quote-intake/internal/quote"
	"github.com/fixitsanclemente/quote-intake/pkg/logging"
)

// BuildLLMClient wires the generative classifier backends. Gemini is
// preferred and Bedrock backs it up when both are configured. A nil client
// means the analyzer runs rules only; backend setup failures are logged and
// never block startup.
func BuildLLMClient(ctx context.Context, cfg *appconfig.Config, awsp *awsProvider, logger *logging.Logger) (llm.Client, func()) {
	if logger == nil {
		logger = logging.Default()
	}
	noop := func() {}

	var gemini *llm.GeminiClient
	if strings.TrimSpace(cfg.GeminiAPIKey) != "" {
		c, err := llm.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
		if err != nil {
			logger.Warn("gemini unavailable", "error", err)
		} else {
			gemini = c
		}
	}

	var bedrock *llm.BedrockClient
	if modelID := strings.TrimSpace(cfg.BedrockModelID); modelID != "" {
		awsCfg, err := awsp.Get(ctx)
		if err != nil {
			logger.Warn("bedrock unavailable", "error", err)
		} else {
			bedrock = llm.NewBedrockClient(bedrockruntime.NewFromConfig(awsCfg), modelID)
		}
	}

	switch {
	case gemini != nil && bedrock != nil:
		logger.Info("quote classifier enabled", "backend", "gemini", "fallback", "bedrock")
		return llm.NewFallbackClient(gemini, bedrock, logger), func() { _ = gemini.Close() }
	case gemini != nil:
		logger.Info("quote classifier enabled", "backend", "gemini")
		return gemini, func() { _ = gemini.Close() }
	case bedrock != nil:
		logger.Info("quote classifier enabled", "backend", "bedrock")
		return bedrock, noop
	default:
		logger.Info("no classifier backend configured, using rules")
		return nil, noop
	}
}

// BuildAnalyzer wraps client (possibly nil) in the quote analyzer.
func BuildAnalyzer(cfg *appconfig.Config, client llm.Client, businessName string, m *metrics.QuoteMetrics, logger *logging.Logger) *quote.Analyzer {
	opts := []quote.AnalyzerOption{
		quote.WithTimeout(cfg.ClassifierTimeout),
		quote.WithBusinessName(businessName),
		quote.WithMetrics(m),
	}
	return quote.NewAnalyzer(client, logger, opts...)
}

// NewClassifier builds a standalone analyzer for tools that do not need the
// full App.
func NewClassifier(ctx context.Context, cfg *appconfig.Config, loadAWS AWSConfigLoader, logger *logging.Logger) (*quote.Analyzer, func()) {
	profile, err := BuildProfile(cfg)
	name := ""
	if err == nil {
		name = profile.Name
	}
	client, closeFn := BuildLLMClient(ctx, cfg, newAWSProvider(cfg, loadAWS), logger)
	return BuildAnalyzer(cfg, client, name, nil, logger), closeFn
}
