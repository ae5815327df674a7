package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/fixitsanclemente/quote-intake/internal/config"
	"github.com/fixitsanclemente/quote-intake/internal/quote"
	"github.com/fixitsanclemente/quote-intake/pkg/logging"
)

var fixedNow = time.Date(2025, 6, 1, 9, 30, 0, 0, time.UTC)

func testDeps() *deps {
	logger := logging.New("error")
	return &deps{
		cfg: &appconfig.Config{
			ConfirmationSummaryMaxChars: 300,
			AdminJWTSecret:              "cli-secret",
		},
		logger: logger,
		newAnalyzer: func(context.Context) (*quote.Analyzer, func()) {
			return quote.NewAnalyzer(nil, logger), func() {}
		},
		now: func() time.Time { return fixedNow },
	}
}

func execute(t *testing.T, d *deps, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(d)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAnalyzeCommand(t *testing.T) {
	for _, args := range [][]string{
		{"analyze", "My kitchen faucet is dripping and the handle is loose"},
		{"analyze", "--rules", "My", "kitchen", "faucet", "is", "dripping"},
	} {
		out, err := execute(t, testDeps(), args...)
		require.NoError(t, err)

		var got analyzeOutput
		require.NoError(t, json.Unmarshal([]byte(out), &got), out)
		assert.Equal(t, quote.CategoryPlumbing, got.Analysis.Category)
		assert.Equal(t, quote.ComplexityLow, got.Analysis.Complexity)
		assert.Equal(t, quote.StrategyRules, got.Strategy)
		assert.Empty(t, got.FallbackReason)
	}
}

func TestAnalyzeRequiresDescription(t *testing.T) {
	_, err := execute(t, testDeps(), "analyze")
	assert.Error(t, err)

	_, err = execute(t, testDeps(), "analyze", "   ")
	assert.Error(t, err)
}

func TestPreviewCommand(t *testing.T) {
	out, err := execute(t, testDeps(), "preview", "owner", "--format", "subject")
	require.NoError(t, err)
	assert.Equal(t, "New Quote Request: Plumbing (Light) - Sample Customer\n", out)

	out, err = execute(t, testDeps(), "preview", "customer", "--format", "html", "--description", "<b>fix</b> my gate")
	require.NoError(t, err)
	assert.Contains(t, out, "&lt;b&gt;fix&lt;/b&gt;")
	assert.NotContains(t, out, "<b>fix</b>")

	out, err = execute(t, testDeps(), "preview", "owner")
	require.NoError(t, err)
	assert.Contains(t, out, "Sample Customer")
}

func TestPreviewRejectsUnknownInput(t *testing.T) {
	_, err := execute(t, testDeps(), "preview", "landlord")
	assert.Error(t, err)

	_, err = execute(t, testDeps(), "preview", "owner", "--format", "pdf")
	assert.Error(t, err)
}

func TestTokenCommand(t *testing.T) {
	d := testDeps()
	d.now = time.Now
	out, err := execute(t, d, "token", "--subject", "paul", "--ttl", "1h")
	require.NoError(t, err)

	claims := jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(strings.TrimSpace(out), &claims, func(*jwt.Token) (any, error) {
		return []byte("cli-secret"), nil
	}, jwt.WithValidMethods([]string{"HS256"}), jwt.WithExpirationRequired())
	require.NoError(t, err)
	assert.True(t, token.Valid)
	assert.Equal(t, "paul", claims.Subject)
}

func TestTokenRequiresSecret(t *testing.T) {
	d := testDeps()
	d.cfg.AdminJWTSecret = ""
	_, err := execute(t, d, "token")
	assert.ErrorContains(t, err, "ADMIN_JWT_SECRET")
}
