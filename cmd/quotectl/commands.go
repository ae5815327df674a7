package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/cobra"

	"github.com/fixitsanclemente/quote-intake/internal/app/bootstrap"
	appconfig "github.com/fixitsanclemente/quote-intake/internal/config"
	"github.com/fixitsanclemente/quote-intake/internal/leads"
	"github.com/fixitsanclemente/quote-intake/internal/notify"
	"github.com/fixitsanclemente/quote-intake/internal/quote"
	"github.com/fixitsanclemente/quote-intake/pkg/logging"
)

type deps struct {
	cfg         *appconfig.Config
	logger      *logging.Logger
	newAnalyzer func(ctx context.Context) (*quote.Analyzer, func())
	now         func() time.Time
}

func newRootCmd(d *deps) *cobra.Command {
	if d.now == nil {
		d.now = time.Now
	}
	root := &cobra.Command{
		Use:           "quotectl",
		Short:         "Operate the quote intake service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newAnalyzeCmd(d), newPreviewCmd(d), newTokenCmd(d))
	return root
}

type analyzeOutput struct {
	Analysis       quote.Analysis `json:"analysis"`
	Strategy       string         `json:"strategy"`
	FallbackReason string         `json:"fallbackReason,omitempty"`
}

func newAnalyzeCmd(d *deps) *cobra.Command {
	var rulesOnly bool
	cmd := &cobra.Command{
		Use:   "analyze <description>",
		Short: "Classify a project description",
		Long: `Classify a project description the same way the website's quote helper does.

Uses the configured generative backend (GEMINI_API_KEY or BEDROCK_MODEL_ID)
and falls back to the keyword rules, reporting which strategy answered.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			description := strings.Join(args, " ")
			if strings.TrimSpace(description) == "" {
				return errors.New("description is empty")
			}

			var out analyzeOutput
			if rulesOnly {
				out.Analysis = quote.Analyze(description)
				out.Strategy = quote.StrategyRules
			} else {
				analyzer, closeFn := d.newAnalyzer(cmd.Context())
				defer closeFn()
				analysis, outcome := analyzer.AnalyzeWithOutcome(cmd.Context(), description)
				out = analyzeOutput{
					Analysis:       analysis,
					Strategy:       outcome.Strategy,
					FallbackReason: string(outcome.FallbackReason),
				}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().BoolVar(&rulesOnly, "rules", false, "skip the generative backend")
	return cmd
}

func newPreviewCmd(d *deps) *cobra.Command {
	var (
		format      string
		description string
	)
	cmd := &cobra.Command{
		Use:       "preview owner|customer",
		Short:     "Render a notification email for a sample lead",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"owner", "customer"},
		RunE: func(cmd *cobra.Command, args []string) error {
			profile, err := bootstrap.BuildProfile(d.cfg)
			if err != nil {
				return err
			}
			rec := sampleLead(description, d.now())

			var email notify.RenderedEmail
			switch args[0] {
			case "owner":
				email, err = notify.RenderOwnerNotification(profile, rec)
			case "customer":
				email, err = notify.RenderCustomerConfirmation(profile, rec, d.cfg.ConfirmationSummaryMaxChars)
			default:
				return fmt.Errorf("unknown email %q (want owner or customer)", args[0])
			}
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch format {
			case "html":
				_, err = fmt.Fprintln(w, email.HTML)
			case "text":
				_, err = fmt.Fprintln(w, email.Text)
			case "subject":
				_, err = fmt.Fprintln(w, email.Subject)
			default:
				return fmt.Errorf("unknown format %q (want html, text or subject)", format)
			}
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output: html, text or subject")
	cmd.Flags().StringVar(&description, "description", "My kitchen faucet is dripping and the handle is loose.", "sample project description")
	return cmd
}

func sampleLead(description string, now time.Time) *leads.Record {
	sub := leads.Submission{
		Name:        "Sample Customer",
		Phone:       "(949) 555-0100",
		Email:       "customer@example.com",
		Address:     "123 Avenida Del Mar, San Clemente",
		ServiceType: "Plumbing (Light)",
		Description: description,
	}
	analysis := quote.Analyze(description)
	sub.AIAnalysis = &analysis

	rec := leads.NewRecord(sub)
	rec.ID = "00000000-0000-0000-0000-000000000000"
	rec.Status = leads.StatusNew
	rec.CreatedAt = now.UTC()
	rec.UpdatedAt = rec.CreatedAt
	return rec
}

func newTokenCmd(d *deps) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an admin bearer token for the /admin/leads routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if d.cfg.AdminJWTSecret == "" {
				return errors.New("ADMIN_JWT_SECRET is not set")
			}
			if ttl <= 0 {
				return errors.New("--ttl must be positive")
			}
			now := d.now()
			claims := jwt.RegisteredClaims{
				Subject:   subject,
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			}
			signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(d.cfg.AdminJWTSecret))
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), signed)
			return err
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "owner", "token subject")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}
