// Command quotectl is the operator CLI for the quote intake service.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/fixitsanclemente/quote-intake/cmd/mainconfig"
	"github.com/fixitsanclemente/quote-intake/internal/app/bootstrap"
	appconfig "github.com/fixitsanclemente/quote-intake/internal/config"
	"github.com/fixitsanclemente/quote-intake/internal/quote"
	"github.com/fixitsanclemente/quote-intake/pkg/logging"
)

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()
	// Logs go to stderr so command output stays pipeable.
	logger := logging.NewWithOptions(logging.Options{Level: "warn", Format: "text", Output: os.Stderr})

	d := &deps{
		cfg:    cfg,
		logger: logger,
		newAnalyzer: func(ctx context.Context) (*quote.Analyzer, func()) {
			return bootstrap.NewClassifier(ctx, cfg, mainconfig.LoadAWSConfig, logger)
		},
	}
	if err := newRootCmd(d).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
