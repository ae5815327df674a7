package leads

import (
	"fmt"
	"strings"
	"time"

	"github.com/fixitsanclemente/quote-intake/internal/quote"
)

// Status tracks where a lead is in the owner's follow-up process.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQuoted    Status = "quoted"
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusLost      Status = "lost"
)

// pipeline is the forward order of the non-lost statuses.
var pipeline = []Status{StatusNew, StatusContacted, StatusQuoted, StatusScheduled, StatusCompleted}

// ParseStatus validates a status string.
func ParseStatus(s string) (Status, error) {
	status := Status(strings.ToLower(strings.TrimSpace(s)))
	if status == StatusLost || stage(status) >= 0 {
		return status, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func stage(s Status) int {
	for i, p := range pipeline {
		if p == s {
			return i
		}
	}
	return -1
}

// Terminal reports whether no further transitions are allowed.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusLost
}

// CanTransition reports whether a lead may move from s to next. Leads move
// forward through the pipeline, possibly skipping stages, and may be marked
// lost from any non-terminal state.
func (s Status) CanTransition(next Status) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusLost {
		return true
	}
	from, to := stage(s), stage(next)
	return from >= 0 && to > from
}

// Submission is the contact form payload as sent by the website.
type Submission struct {
	Name        string          `json:"name"`
	Phone       string          `json:"phone"`
	Email       string          `json:"email"`
	Address     string          `json:"address,omitempty"`
	ServiceType string          `json:"serviceType"`
	Description string          `json:"description"`
	AIAnalysis  *quote.Analysis `json:"aiAnalysis,omitempty"`
}

// Record is a persisted lead.
type Record struct {
	ID               string    `json:"id" dynamodbav:"id"`
	Name             string    `json:"name" dynamodbav:"name"`
	Phone            string    `json:"phone" dynamodbav:"phone"`
	Email            string    `json:"email" dynamodbav:"email"`
	Address          string    `json:"address,omitempty" dynamodbav:"address,omitempty"`
	ServiceType      string    `json:"service_type" dynamodbav:"service_type"`
	Description      string    `json:"description" dynamodbav:"description"`
	AICategory       string    `json:"ai_category,omitempty" dynamodbav:"ai_category,omitempty"`
	AIEstimatedHours string    `json:"ai_estimated_hours,omitempty" dynamodbav:"ai_estimated_hours,omitempty"`
	AIComplexity     string    `json:"ai_complexity,omitempty" dynamodbav:"ai_complexity,omitempty"`
	AIRecommendation string    `json:"ai_recommendation,omitempty" dynamodbav:"ai_recommendation,omitempty"`
	Status           Status    `json:"status" dynamodbav:"status"`
	CreatedAt        time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

// NewRecord flattens a submission into an unsaved record.
func NewRecord(sub Submission) *Record {
	rec := &Record{
		Name:        strings.TrimSpace(sub.Name),
		Phone:       strings.TrimSpace(sub.Phone),
		Email:       strings.TrimSpace(sub.Email),
		Address:     strings.TrimSpace(sub.Address),
		ServiceType: strings.TrimSpace(sub.ServiceType),
		Description: sub.Description,
	}
	if a := sub.AIAnalysis; a != nil {
		rec.AICategory = a.Category
		rec.AIEstimatedHours = a.EstimatedHours
		rec.AIComplexity = string(a.Complexity)
		rec.AIRecommendation = a.Recommendation
	}
	return rec
}

// Analysis rebuilds the classifier result attached to the lead, or nil.
func (r *Record) Analysis() *quote.Analysis {
	if r == nil || (r.AICategory == "" && r.AIEstimatedHours == "" && r.AIComplexity == "" && r.AIRecommendation == "") {
		return nil
	}
	return &quote.Analysis{
		Category:       r.AICategory,
		EstimatedHours: r.AIEstimatedHours,
		Complexity:     quote.Complexity(r.AIComplexity),
		Recommendation: r.AIRecommendation,
	}
}

func (r *Record) clone() *Record {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// ListFilter narrows admin listings.
type ListFilter struct {
	Status Status
	Limit  int
	Offset int
}

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

func (f ListFilter) normalize() ListFilter {
	if f.Limit <= 0 {
		f.Limit = defaultListLimit
	}
	if f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	if f.Offset < 0 {
		f.Offset = 0
	}
	return f
}
