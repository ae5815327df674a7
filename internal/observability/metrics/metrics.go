package metrics

import "github.com/prometheus/client_golang/prometheus"

// IntakeMetrics exposes counters/histograms for the contact form pipeline.
type IntakeMetrics struct {
	submissionsTotal *prometheus.CounterVec
	emailsTotal      *prometheus.CounterVec
	storeLatency     prometheus.Histogram
}

func NewIntakeMetrics(reg prometheus.Registerer) *IntakeMetrics {
	m := &IntakeMetrics{
		submissionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fixit",
			Subsystem: "intake",
			Name:      "submissions_total",
			Help:      "Contact form submissions by outcome",
		}, []string{"outcome"}),
		emailsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fixit",
			Subsystem: "intake",
			Name:      "emails_total",
			Help:      "Outbound intake emails by kind and status",
		}, []string{"kind", "status"}),
		storeLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fixit",
			Subsystem: "intake",
			Name:      "store_latency_seconds",
			Help:      "Latency of lead store inserts",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.submissionsTotal, m.emailsTotal, m.storeLatency)
	return m
}

// ObserveSubmission records the terminal outcome of one submission, e.g.
// "accepted", "invalid", "store_failed".
func (m *IntakeMetrics) ObserveSubmission(outcome string) {
	if m == nil {
		return
	}
	m.submissionsTotal.WithLabelValues(outcome).Inc()
}

func (m *IntakeMetrics) ObserveEmail(kind string, sent bool) {
	if m == nil {
		return
	}
	status := "failed"
	if sent {
		status = "sent"
	}
	m.emailsTotal.WithLabelValues(kind, status).Inc()
}

func (m *IntakeMetrics) ObserveStoreLatency(seconds float64) {
	if m == nil {
		return
	}
	m.storeLatency.Observe(seconds)
}

// QuoteMetrics tracks classifier strategy use and fallback reasons.
type QuoteMetrics struct {
	analysesTotal  *prometheus.CounterVec
	fallbacksTotal *prometheus.CounterVec
}

func NewQuoteMetrics(reg prometheus.Registerer) *QuoteMetrics {
	m := &QuoteMetrics{
		analysesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fixit",
			Subsystem: "quote",
			Name:      "analyses_total",
			Help:      "Project analyses by the strategy that produced the result",
		}, []string{"strategy"}),
		fallbacksTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "fixit",
			Subsystem: "quote",
			Name:      "fallbacks_total",
			Help:      "Generative analyses that fell back to the keyword rules",
		}, []string{"reason"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.analysesTotal, m.fallbacksTotal)
	return m
}

func (m *QuoteMetrics) ObserveAnalysis(strategy string) {
	if m == nil {
		return
	}
	m.analysesTotal.WithLabelValues(strategy).Inc()
}

func (m *QuoteMetrics) ObserveFallback(reason string) {
	if m == nil {
		return
	}
	m.fallbacksTotal.WithLabelValues(reason).Inc()
}
