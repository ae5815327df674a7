// Package bootstrap assembles the quote intake service from configuration.
// Binaries call New and serve App.Handler.
package bootstrap

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fixitsanclemente/quote-intake/internal/api/router"
	"github.com/fixitsanclemente/quote-intake/internal/business"
	appconfig "github.com/fixitsanclemente/quote-intake/internal/config"
	httpmiddleware "github.com/fixitsanclemente/quote-intake/internal/http/middleware"
	"github.com/fixitsanclemente/quote-intake/internal/intake"
	"github.com/fixitsanclemente/quote-intake/internal/leads"
	"github.com/fixitsanclemente/quote-intake/internal/notify"
	"github.com/fixitsanclemente/quote-intake/internal/observability/metrics"
	"github.com/fixitsanclemente/quote-intake/internal/quote"
	"github.com/fixitsanclemente/quote-intake/pkg/logging"
)

// App is a fully wired service.
type App struct {
	Handler  http.Handler
	Profile  *business.Profile
	Leads    leads.Repository
	Sender   notify.EmailSender
	Analyzer *quote.Analyzer
	Intake   *intake.Service

	closers []func()
}

// Options carries dependencies the binaries provide.
type Options struct {
	// LoadAWS is required only when a component uses AWS.
	LoadAWS AWSConfigLoader
	// Registry defaults to a fresh registry with Go and process collectors.
	Registry *prometheus.Registry
}

// BuildProfile loads the business profile and applies env overrides.
func BuildProfile(cfg *appconfig.Config) (*business.Profile, error) {
	profile, err := business.Load(cfg.BusinessProfilePath)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	profile.ApplyOverrides(cfg.BusinessName, cfg.BusinessPhone, cfg.BusinessSiteURL, cfg.OwnerEmail, cfg.FromEmail, cfg.FromName)
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("bootstrap: %w", err)
	}
	return profile, nil
}

// New wires every component. On error, anything already opened is closed.
func New(ctx context.Context, cfg *appconfig.Config, logger *logging.Logger, opts Options) (_ *App, err error) {
	if cfg == nil {
		return nil, fmt.Errorf("bootstrap: config is required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	if ctx == nil {
		ctx = context.Background()
	}

	app := &App{}
	defer func() {
		if err != nil {
			app.Close()
		}
	}()

	app.Profile, err = BuildProfile(cfg)
	if err != nil {
		return nil, err
	}
	if app.Profile.OwnerEmail == "" {
		logger.Warn("no owner email configured, new quote requests will not be emailed")
	}

	reg := opts.Registry
	if reg == nil {
		reg = prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	}
	intakeMetrics := metrics.NewIntakeMetrics(reg)
	quoteMetrics := metrics.NewQuoteMetrics(reg)

	awsp := newAWSProvider(cfg, opts.LoadAWS)

	repo, closeRepo, err := BuildLeadRepository(ctx, cfg, awsp, logger)
	if err != nil {
		return nil, err
	}
	app.Leads = repo
	app.closers = append(app.closers, closeRepo)

	app.Sender, err = BuildEmailSender(ctx, cfg, app.Profile, awsp, logger)
	if err != nil {
		return nil, err
	}

	client, closeLLM := BuildLLMClient(ctx, cfg, awsp, logger)
	app.closers = append(app.closers, closeLLM)
	app.Analyzer = BuildAnalyzer(cfg, client, app.Profile.Name, quoteMetrics, logger)

	app.Intake = intake.NewService(repo, app.Sender, app.Profile, logger,
		intake.WithStorePolicy(intake.StorePolicy(cfg.StoreFailurePolicy)),
		intake.WithStepTimeout(cfg.StepTimeout),
		intake.WithSummaryMaxChars(cfg.ConfirmationSummaryMaxChars),
		intake.WithMetrics(intakeMetrics),
	)

	redisClient := BuildRedisClient(ctx, cfg, logger, true)
	if redisClient != nil {
		app.closers = append(app.closers, func() { _ = redisClient.Close() })
	}
	limiter := BuildRateLimiter(cfg, redisClient)
	if tb, ok := limiter.(*httpmiddleware.TokenBucket); ok {
		app.closers = append(app.closers, tb.Stop)
	}

	routerCfg := &router.Config{
		Logger:             logger,
		IntakeHandler:      intake.NewHandler(app.Intake, logger),
		QuoteHandler:       quote.NewHandler(app.Analyzer, logger),
		LeadsHandler:       leads.NewHandler(repo, logger),
		RateLimiter:        limiter,
		AdminAuthSecret:    cfg.AdminJWTSecret,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}
	if cfg.MetricsEnabled {
		routerCfg.MetricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	}
	if cfg.AdminJWTSecret == "" {
		logger.Info("ADMIN_JWT_SECRET not set, admin lead routes disabled")
	}
	app.Handler = router.New(routerCfg)

	classifier := quote.StrategyRules
	if app.Analyzer.Generative() {
		classifier = quote.StrategyGenerative
	}
	logger.Info("quote intake ready",
		"business", app.Profile.Name,
		"lead_store", cfg.LeadStore,
		"store_failure_policy", cfg.StoreFailurePolicy,
		"classifier", classifier,
	)
	return app, nil
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
