package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/fixitsanclemente/quote-intake/cmd/mainconfig"
	"github.com/fixitsanclemente/quote-intake/internal/app/bootstrap"
	appconfig "github.com/fixitsanclemente/quote-intake/internal/config"
	"github.com/fixitsanclemente/quote-intake/pkg/logging"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.NewWithOptions(logging.Options{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logger.Info("starting quote intake API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Options{LoadAWS: mainconfig.LoadAWSConfig})
	if err != nil {
		logger.Error("failed to initialize", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	srv := newServer(cfg, app.Handler)
	if err := serve(ctx, srv, logger); err != nil {
		logger.Error("server error", "error", err)
		app.Close()
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// newServer sets timeouts above STEP_TIMEOUT so a submission that spends a
// full step budget on each of the store and both emails still gets a reply.
func newServer(cfg *appconfig.Config, handler http.Handler) *http.Server {
	writeTimeout := 3*cfg.StepTimeout + 5*time.Second
	if writeTimeout < 15*time.Second {
		writeTimeout = 15 * time.Second
	}
	return &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       60 * time.Second,
	}
}

// serve runs srv until ctx is cancelled, then drains in-flight requests.
func serve(ctx context.Context, srv *http.Server, logger *logging.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
