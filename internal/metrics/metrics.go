package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for Campanero
type Metrics struct {
	// Campaign lifecycle counters
	CampaignsCreatedTotal prometheus.Counter
	CampaignsSentTotal    prometheus.Counter
	SendFailuresTotal     prometheus.Counter
	MessagesSentTotal     *prometheus.CounterVec

	// Validation
	ValidationFailuresTotal *prometheus.CounterVec

	// Backend client
	BackendRequestsTotal          *prometheus.CounterVec
	BackendRequestDurationSeconds *prometheus.HistogramVec

	// API metrics
	APIRequestsTotal          *prometheus.CounterVec
	APIRequestDurationSeconds *prometheus.HistogramVec

	// Session gauge
	SessionsActive prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		CampaignsCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "campanero_campaigns_created_total",
				Help: "Total number of campaign sessions created",
			},
		),
		CampaignsSentTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "campanero_campaigns_sent_total",
				Help: "Total number of campaigns successfully sent",
			},
		),
		SendFailuresTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "campanero_send_failures_total",
				Help: "Total number of campaign sends rejected by the backend",
			},
		),
		MessagesSentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campanero_messages_sent_total",
				Help: "Total number of per-recipient deliveries by channel and outcome",
			},
			[]string{"channel", "status"},
		),
		ValidationFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campanero_validation_failures_total",
				Help: "Total number of preview attempts blocked by validation",
			},
			[]string{"field"},
		),
		BackendRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campanero_backend_requests_total",
				Help: "Total number of delivery backend requests",
			},
			[]string{"op", "status"},
		),
		BackendRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "campanero_backend_request_duration_seconds",
				Help:    "Delivery backend request duration in seconds",
				Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 120},
			},
			[]string{"op"},
		),
		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "campanero_api_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"method", "path", "status"},
		),
		APIRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "campanero_api_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "campanero_sessions_active",
				Help: "Number of active campaign sessions",
			},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.CampaignsCreatedTotal,
		m.CampaignsSentTotal,
		m.SendFailuresTotal,
		m.MessagesSentTotal,
		m.ValidationFailuresTotal,
		m.BackendRequestsTotal,
		m.BackendRequestDurationSeconds,
		m.APIRequestsTotal,
		m.APIRequestDurationSeconds,
		m.SessionsActive,
	)

	return m
}

// Registry returns the underlying Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveBackend records one backend request outcome.
func (m *Metrics) ObserveBackend(op string, seconds float64, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.BackendRequestsTotal.WithLabelValues(op, status).Inc()
	m.BackendRequestDurationSeconds.WithLabelValues(op).Observe(seconds)
}

// RecordSendResult feeds the per-recipient counters from a send outcome.
func (m *Metrics) RecordSendResult(whatsappOK, whatsappFail, correosOK, correosFail int) {
	m.MessagesSentTotal.WithLabelValues("whatsapp", "ok").Add(float64(whatsappOK))
	m.MessagesSentTotal.WithLabelValues("whatsapp", "error").Add(float64(whatsappFail))
	m.MessagesSentTotal.WithLabelValues("correo", "ok").Add(float64(correosOK))
	m.MessagesSentTotal.WithLabelValues("correo", "error").Add(float64(correosFail))
}
