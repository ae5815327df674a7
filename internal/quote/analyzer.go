package quote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/fixitsanclemente/quote-intake/internal/llm"
	"github.com/fixitsanclemente/quote-intake/internal/observability/metrics"
	"github.com/fixitsanclemente/quote-intake/pkg/logging"
)

var analyzerTracer = otel.Tracer("fixit.internal.quote.analyzer")

const (
	StrategyRules      = "rules"
	StrategyGenerative = "generative"

	defaultTimeout     = 15 * time.Second
	defaultMaxTokens   = 500
	defaultTemperature = 0.3
)

// Outcome reports how an analysis was produced.
type Outcome struct {
	Strategy       string
	FallbackReason FallbackReason
}

// Fallback reports whether the generative strategy was attempted and
// abandoned.
func (o Outcome) Fallback() bool {
	return o.FallbackReason != ReasonNone
}

// AnalyzerOption customises an Analyzer.
type AnalyzerOption func(*Analyzer)

// WithModel pins the backend model id.
func WithModel(model string) AnalyzerOption {
	return func(a *Analyzer) { a.model = strings.TrimSpace(model) }
}

// WithTimeout bounds the single backend call.
func WithTimeout(d time.Duration) AnalyzerOption {
	return func(a *Analyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithBusinessName personalises the system prompt.
func WithBusinessName(name string) AnalyzerOption {
	return func(a *Analyzer) { a.businessName = name }
}

func WithMetrics(m *metrics.QuoteMetrics) AnalyzerOption {
	return func(a *Analyzer) { a.metrics = m }
}

// Analyzer classifies descriptions with a generative backend when one is
// configured and with the keyword rules otherwise. It never fails: every
// backend problem downgrades to the rule-based result.
type Analyzer struct {
	client       llm.Client
	model        string
	timeout      time.Duration
	businessName string
	metrics      *metrics.QuoteMetrics
	logger       *logging.Logger
}

// NewAnalyzer builds an Analyzer. A nil client selects the rule-based
// strategy only.
func NewAnalyzer(client llm.Client, logger *logging.Logger, opts ...AnalyzerOption) *Analyzer {
	if logger == nil {
		logger = logging.Default()
	}
	a := &Analyzer{
		client:  client,
		timeout: defaultTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Generative reports whether a backend is configured.
func (a *Analyzer) Generative() bool {
	return a != nil && a.client != nil
}

// Analyze returns the best available analysis for description.
func (a *Analyzer) Analyze(ctx context.Context, description string) Analysis {
	result, _ := a.AnalyzeWithOutcome(ctx, description)
	return result
}

// AnalyzeWithOutcome is Analyze plus the strategy that produced the result.
func (a *Analyzer) AnalyzeWithOutcome(ctx context.Context, description string) (Analysis, Outcome) {
	if !a.Generative() {
		result, rule := analyzeRules(description)
		if a != nil {
			a.metrics.ObserveAnalysis(StrategyRules)
			a.logger.Debug("rule-based analysis", "rule", rule, "category", result.Category)
		}
		return result, Outcome{Strategy: StrategyRules}
	}

	ctx, span := analyzerTracer.Start(ctx, "quote.analyze")
	defer span.End()

	result, reason := a.generate(ctx, description)
	if reason == ReasonNone {
		span.SetAttributes(
			attribute.String("fixit.quote.strategy", StrategyGenerative),
			attribute.String("fixit.quote.category", result.Category),
		)
		a.metrics.ObserveAnalysis(StrategyGenerative)
		return result, Outcome{Strategy: StrategyGenerative}
	}

	fallback, rule := analyzeRules(description)
	span.SetAttributes(
		attribute.String("fixit.quote.strategy", StrategyRules),
		attribute.String("fixit.quote.fallback_reason", string(reason)),
		attribute.String("fixit.quote.category", fallback.Category),
	)
	a.logger.Warn("generative analysis failed, using keyword rules", "reason", string(reason), "rule", rule)
	a.metrics.ObserveFallback(string(reason))
	a.metrics.ObserveAnalysis(StrategyRules)
	return fallback, Outcome{Strategy: StrategyRules, FallbackReason: reason}
}

func (a *Analyzer) generate(ctx context.Context, description string) (result Analysis, reason FallbackReason) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("generative backend panicked", "panic", fmt.Sprint(r))
			result, reason = Analysis{}, ReasonBackendError
		}
	}()

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	resp, err := a.client.Complete(callCtx, llm.Request{
		Model:       a.model,
		System:      []string{BuildSystemPrompt(a.businessName)},
		Messages:    llm.UserPrompt(BuildUserPrompt(description)),
		MaxTokens:   defaultMaxTokens,
		Temperature: defaultTemperature,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(callCtx.Err(), context.DeadlineExceeded) {
			return Analysis{}, ReasonTimeout
		}
		a.logger.Debug("generative backend error", "error", err)
		return Analysis{}, ReasonBackendError
	}
	return parseReply(resp.Text)
}
