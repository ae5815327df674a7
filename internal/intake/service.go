// Package intake runs a contact form submission through validation, the
// lead store and the two notification emails.
package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/fixitsanclemente/quote-intake/internal/business"
	"github.com/fixitsanclemente/quote-intake/internal/leads"
	"github.com/fixitsanclemente/quote-intake/internal/notify"
	"github.com/fixitsanclemente/quote-intake/internal/observability/metrics"
	"github.com/fixitsanclemente/quote-intake/pkg/logging"
)

var intakeTracer = otel.Tracer("fixit.internal.intake")

// StorePolicy decides what happens when the lead store fails.
type StorePolicy string

const (
	// StorePolicyStrict fails the submission and sends no email.
	StorePolicyStrict StorePolicy = "strict"
	// StorePolicyBestEffort logs the failure and still notifies.
	StorePolicyBestEffort StorePolicy = "best_effort"
)

const (
	defaultStepTimeout     = 10 * time.Second
	defaultSummaryMaxChars = 300
)

// Result reports which steps of a submission succeeded.
type Result struct {
	Success               bool
	LeadID                *string
	EmailSent             bool
	ConfirmationEmailSent bool
}

// Option customises a Service.
type Option func(*Service)

func WithStorePolicy(p StorePolicy) Option {
	return func(s *Service) {
		if p == StorePolicyBestEffort {
			s.policy = StorePolicyBestEffort
		} else {
			s.policy = StorePolicyStrict
		}
	}
}

// WithStepTimeout bounds each external call.
func WithStepTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.stepTimeout = d
		}
	}
}

// WithSummaryMaxChars sets how much of the description the customer
// confirmation echoes.
func WithSummaryMaxChars(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.summaryMaxChars = n
		}
	}
}

func WithMetrics(m *metrics.IntakeMetrics) Option {
	return func(s *Service) { s.metrics = m }
}

// Service processes contact form submissions. It holds no per-request
// state and is safe for concurrent use.
type Service struct {
	repo            leads.Repository
	sender          notify.EmailSender
	profile         *business.Profile
	policy          StorePolicy
	stepTimeout     time.Duration
	summaryMaxChars int
	metrics         *metrics.IntakeMetrics
	logger          *logging.Logger
}

// NewService wires the collaborators. A nil repo skips persistence and a
// nil sender skips both emails.
func NewService(repo leads.Repository, sender notify.EmailSender, profile *business.Profile, logger *logging.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if profile == nil {
		profile = business.Default()
	}
	s := &Service{
		repo:            repo,
		sender:          sender,
		profile:         profile,
		policy:          StorePolicyStrict,
		stepTimeout:     defaultStepTimeout,
		summaryMaxChars: defaultSummaryMaxChars,
		logger:          logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Profile returns the business profile used for copy and addresses.
func (s *Service) Profile() *business.Profile {
	return s.profile
}

// Validate checks the required fields without side effects.
func Validate(sub leads.Submission) error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", sub.Name},
		{"phone", sub.Phone},
		{"email", sub.Email},
		{"description", sub.Description},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return &ValidationError{Missing: missing}
	}
	return nil
}

// Submit validates, persists and notifies, strictly in that order. Email
// failures are reported in the result and never fail the submission.
func (s *Service) Submit(ctx context.Context, sub leads.Submission) (Result, error) {
	ctx, span := intakeTracer.Start(ctx, "intake.submit")
	defer span.End()

	if err := Validate(sub); err != nil {
		s.metrics.ObserveSubmission("invalid")
		span.SetStatus(codes.Error, "validation failed")
		return Result{}, err
	}
	sub.ServiceType = s.profile.NormalizeServiceType(strings.TrimSpace(sub.ServiceType))
	span.AddEvent("validated", trace.WithAttributes(attribute.String("fixit.intake.service_type", sub.ServiceType)))

	rec, err := s.persist(ctx, leads.NewRecord(sub))
	if err != nil {
		span.RecordError(err)
		if s.policy == StorePolicyStrict {
			s.logger.Error("lead store failed, rejecting submission", "error", err, "service_type", sub.ServiceType)
			s.metrics.ObserveSubmission("store_failed")
			span.SetStatus(codes.Error, "store failed")
			return Result{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
		}
		s.logger.Warn("lead store failed, continuing without lead id", "error", err, "service_type", sub.ServiceType)
	}

	result := Result{Success: true}
	if rec.ID != "" {
		id := rec.ID
		result.LeadID = &id
		span.SetAttributes(attribute.String("fixit.lead_id", id))
		span.AddEvent("persisted")
	}

	// Notifications outlive a disconnected client once the lead is accepted.
	notifyCtx := context.WithoutCancel(ctx)
	result.EmailSent = s.notifyOwner(notifyCtx, rec)
	span.AddEvent("owner_notified", trace.WithAttributes(attribute.Bool("fixit.intake.sent", result.EmailSent)))
	result.ConfirmationEmailSent = s.confirmCustomer(notifyCtx, rec)
	span.AddEvent("customer_confirmed", trace.WithAttributes(attribute.Bool("fixit.intake.sent", result.ConfirmationEmailSent)))

	s.metrics.ObserveSubmission("accepted")
	s.logger.Info("submission accepted",
		"lead_id", rec.ID,
		"service_type", rec.ServiceType,
		"email_sent", result.EmailSent,
		"confirmation_email_sent", result.ConfirmationEmailSent,
	)
	return result, nil
}

// persist always returns a usable record; on failure it is the unsaved
// input with no id.
func (s *Service) persist(ctx context.Context, rec *leads.Record) (*leads.Record, error) {
	if s.repo == nil {
		return rec, nil
	}
	stepCtx, cancel := context.WithTimeout(ctx, s.stepTimeout)
	defer cancel()

	start := time.Now()
	stored, err := s.repo.Create(stepCtx, rec)
	s.metrics.ObserveStoreLatency(time.Since(start).Seconds())
	if err != nil {
		return rec, err
	}
	return stored, nil
}

func (s *Service) notifyOwner(ctx context.Context, rec *leads.Record) bool {
	if s.sender == nil || s.profile.OwnerEmail == "" {
		return false
	}
	email, err := notify.RenderOwnerNotification(s.profile, rec)
	if err != nil {
		s.logger.Error("failed to render owner notification", "error", err, "lead_id", rec.ID)
		s.metrics.ObserveEmail("owner", false)
		return false
	}
	msg := email.Message(s.profile.OwnerEmail, s.profile.OwnerName)
	msg.ReplyTo = rec.Email
	return s.send(ctx, "owner", rec.ID, msg)
}

func (s *Service) confirmCustomer(ctx context.Context, rec *leads.Record) bool {
	if s.sender == nil {
		return false
	}
	email, err := notify.RenderCustomerConfirmation(s.profile, rec, s.summaryMaxChars)
	if err != nil {
		s.logger.Error("failed to render customer confirmation", "error", err, "lead_id", rec.ID)
		s.metrics.ObserveEmail("customer", false)
		return false
	}
	msg := email.Message(rec.Email, rec.Name)
	msg.ReplyTo = s.profile.OwnerEmail
	return s.send(ctx, "customer", rec.ID, msg)
}

func (s *Service) send(ctx context.Context, kind, leadID string, msg notify.EmailMessage) bool {
	msg.From = s.profile.FromEmail
	msg.FromName = s.profile.FromName

	stepCtx, cancel := context.WithTimeout(ctx, s.stepTimeout)
	defer cancel()

	if err := s.sender.Send(stepCtx, msg); err != nil {
		if errors.Is(err, notify.ErrNotDelivered) {
			s.logger.Warn("intake email not delivered", "kind", kind, "lead_id", leadID)
		} else {
			s.logger.Error("intake email failed", "kind", kind, "error", err, "lead_id", leadID)
		}
		s.metrics.ObserveEmail(kind, false)
		return false
	}
	s.metrics.ObserveEmail(kind, true)
	return true
}
