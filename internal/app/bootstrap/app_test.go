package bootstrap

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/fixitsanclemente/quote-intake/internal/config"
	httpmiddleware "github.com/fixitsanclemente/quote-intake/internal/http/middleware"
	"github.com/fixitsanclemente/quote-intake/internal/leads"
	"github.com/fixitsanclemente/quote-intake/internal/notify"
	"github.com/fixitsanclemente/quote-intake/pkg/logging"
)

func testConfig() *appconfig.Config {
	return &appconfig.Config{
		Env:                         "test",
		LeadStore:                   StoreMemory,
		StoreFailurePolicy:          appconfig.StoreFailureStrict,
		StepTimeout:                 time.Second,
		EmailProvider:               notify.ProviderStub,
		OwnerEmail:                  "owner@example.com",
		ConfirmationSummaryMaxChars: 300,
		ClassifierTimeout:           time.Second,
		RateLimitPerMinute:          10,
		MetricsEnabled:              true,
	}
}

func testLogger() *logging.Logger {
	return logging.New("error")
}

func TestNewWiresMemoryStack(t *testing.T) {
	app, err := New(context.Background(), testConfig(), testLogger(), Options{})
	require.NoError(t, err)
	defer app.Close()

	assert.IsType(t, &leads.InMemoryRepository{}, app.Leads)
	assert.IsType(t, &notify.StubEmailSender{}, app.Sender)
	assert.False(t, app.Analyzer.Generative())
	assert.Equal(t, "owner@example.com", app.Profile.OwnerEmail)

	body := `{"name":"Jane","phone":"949-555-0100","email":"jane@example.com","description":"Fix a squeaky door"}`
	rr := httptest.NewRecorder()
	app.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/api/contact", strings.NewReader(body)))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, 1, app.Leads.(*leads.InMemoryRepository).Len())

	rr = httptest.NewRecorder()
	app.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "fixit_intake_submissions_total")
	assert.Contains(t, rr.Body.String(), "go_goroutines")
}

func TestNewWithoutEmailProviderReportsNotSent(t *testing.T) {
	cfg := testConfig()
	cfg.EmailProvider = notify.ProviderAuto
	app, err := New(context.Background(), cfg, testLogger(), Options{})
	require.NoError(t, err)
	defer app.Close()
	assert.IsType(t, &notify.StubEmailSender{}, app.Sender)

	result, err := app.Intake.Submit(context.Background(), leads.Submission{
		Name:        "Jane",
		Phone:       "949-555-0100",
		Email:       "jane@example.com",
		Description: "Fix a squeaky door",
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	require.NotNil(t, result.LeadID)
	assert.False(t, result.EmailSent)
	assert.False(t, result.ConfirmationEmailSent)

	rr := httptest.NewRecorder()
	app.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rr.Body.String()
	assert.Contains(t, body, `fixit_intake_emails_total{kind="owner",status="failed"} 1`)
	assert.Contains(t, body, `fixit_intake_emails_total{kind="customer",status="failed"} 1`)
	assert.NotContains(t, body, `status="sent"`)
}

func TestNewMetricsDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.MetricsEnabled = false
	app, err := New(context.Background(), cfg, testLogger(), Options{})
	require.NoError(t, err)
	defer app.Close()

	rr := httptest.NewRecorder()
	app.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestNewConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*appconfig.Config)
		target error
	}{
		{"unknown store", func(c *appconfig.Config) { c.LeadStore = "mongo" }, nil},
		{"postgres without url", func(c *appconfig.Config) { c.LeadStore = StorePostgres }, nil},
		{"dynamodb without aws", func(c *appconfig.Config) { c.LeadStore = StoreDynamoDB }, ErrAWSUnavailable},
		{"ses without aws", func(c *appconfig.Config) { c.EmailProvider = notify.ProviderSES }, ErrAWSUnavailable},
		{"resend without key", func(c *appconfig.Config) { c.EmailProvider = notify.ProviderResend }, notify.ErrProviderNotConfigured},
		{"unknown provider", func(c *appconfig.Config) { c.EmailProvider = "pigeon" }, notify.ErrUnknownProvider},
		{"missing profile file", func(c *appconfig.Config) { c.BusinessProfilePath = "/nonexistent/profile.yaml" }, os.ErrNotExist},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(cfg)
			_, err := New(context.Background(), cfg, testLogger(), Options{})
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestBuildProfileAppliesFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: Harbor Handyman\nphone: \"(949) 555-0199\"\n"), 0o600))

	cfg := testConfig()
	cfg.BusinessProfilePath = path
	cfg.BusinessPhone = "(949) 555-0000"

	profile, err := BuildProfile(cfg)
	require.NoError(t, err)
	assert.Equal(t, "Harbor Handyman", profile.Name)
	assert.Equal(t, "(949) 555-0000", profile.Phone)
	assert.Equal(t, "owner@example.com", profile.OwnerEmail)
}

func TestAWSProviderLoadsOnce(t *testing.T) {
	calls := 0
	p := newAWSProvider(testConfig(), func(context.Context, *appconfig.Config) (aws.Config, error) {
		calls++
		return aws.Config{Region: "us-west-2"}, nil
	})
	for i := 0; i < 3; i++ {
		cfg, err := p.Get(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "us-west-2", cfg.Region)
	}
	assert.Equal(t, 1, calls)

	failing := newAWSProvider(testConfig(), func(context.Context, *appconfig.Config) (aws.Config, error) {
		return aws.Config{}, errors.New("no credentials")
	})
	_, err := failing.Get(context.Background())
	assert.ErrorContains(t, err, "load aws config")
}

func TestBuildRateLimiter(t *testing.T) {
	cfg := testConfig()

	tb := BuildRateLimiter(cfg, nil)
	require.IsType(t, &httpmiddleware.TokenBucket{}, tb)
	tb.(*httpmiddleware.TokenBucket).Stop()

	mr := miniredis.RunT(t)
	cfg.RedisAddr = mr.Addr()
	client := BuildRedisClient(context.Background(), cfg, testLogger(), true)
	require.NotNil(t, client)
	defer client.Close()
	assert.IsType(t, &httpmiddleware.RedisLimiter{}, BuildRateLimiter(cfg, client))

	cfg.RateLimitPerMinute = 0
	assert.Nil(t, BuildRateLimiter(cfg, client))
}

func TestBuildRedisClientUnreachable(t *testing.T) {
	cfg := testConfig()
	assert.Nil(t, BuildRedisClient(context.Background(), cfg, testLogger(), true))

	mr := miniredis.RunT(t)
	cfg.RedisAddr = mr.Addr()
	mr.Close()
	assert.Nil(t, BuildRedisClient(context.Background(), cfg, testLogger(), true))
}

func TestBuildLLMClientWithoutBackends(t *testing.T) {
	client, closeFn := BuildLLMClient(context.Background(), testConfig(), newAWSProvider(testConfig(), nil), testLogger())
	defer closeFn()
	assert.Nil(t, client)
}

func TestBuildLLMClientBedrockWithoutAWSFallsBackToRules(t *testing.T) {
	cfg := testConfig()
	cfg.BedrockModelID = "anthropic.claude-3-haiku"
	client, closeFn := BuildLLMClient(context.Background(), cfg, newAWSProvider(cfg, nil), testLogger())
	defer closeFn()
	assert.Nil(t, client)
}
