package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	httpmiddleware "github.com/fixitsanclemente/quote-intake/internal/http/middleware"
	"github.com/fixitsanclemente/quote-intake/internal/intake"
	"github.com/fixitsanclemente/quote-intake/internal/leads"
	"github.com/fixitsanclemente/quote-intake/internal/quote"
	"github.com/fixitsanclemente/quote-intake/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	IntakeHandler      *intake.Handler
	QuoteHandler       *quote.Handler
	LeadsHandler       *leads.Handler
	RateLimiter        httpmiddleware.Limiter
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", healthCheck)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	// Public form endpoints. The handlers own method dispatch so they can
	// answer 405 with an Allow header.
	r.Group(func(public chi.Router) {
		public.Use(httpmiddleware.RateLimit(cfg.RateLimiter, cfg.Logger))
		if cfg.IntakeHandler != nil {
			public.HandleFunc("/api/contact", cfg.IntakeHandler.Contact)
		}
		if cfg.QuoteHandler != nil {
			public.HandleFunc("/api/quote/analyze", cfg.QuoteHandler.Analyze)
		}
	})

	if cfg.LeadsHandler != nil && cfg.AdminAuthSecret != "" {
		r.Route("/admin/leads", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Get("/", cfg.LeadsHandler.ListLeads)
			admin.Get("/{leadID}", cfg.LeadsHandler.GetLead)
			admin.Patch("/{leadID}", cfg.LeadsHandler.UpdateStatus)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
