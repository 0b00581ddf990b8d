package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusRecorder implements the Recorder interface using Prometheus metrics.
type PrometheusRecorder struct {
	eventsTotal      *prometheus.CounterVec
	rejectionsTotal  *prometheus.CounterVec
	submissionsTotal prometheus.Counter
	deliveriesTotal  *prometheus.CounterVec
	fallbacksTotal   *prometheus.CounterVec
	activeSessions   prometheus.Gauge
}

// NewPrometheusRecorder creates a recorder registered on reg.
func NewPrometheusRecorder(reg prometheus.Registerer) *PrometheusRecorder {
	f := promauto.With(reg)
	return &PrometheusRecorder{
		eventsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "anketa_events_total",
				Help: "Total number of inbound events by kind",
			},
			[]string{"kind"},
		),
		rejectionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "anketa_rejections_total",
				Help: "Total number of rejected inputs and stale selections by reason",
			},
			[]string{"reason"},
		),
		submissionsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "anketa_submissions_total",
				Help: "Total number of completed questionnaires",
			},
		),
		deliveriesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "anketa_deliveries_total",
				Help: "Total number of reviewer deliveries by kind and status",
			},
			[]string{"kind", "status"},
		),
		fallbacksTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "anketa_prompt_fallbacks_total",
				Help: "Total number of prompt clips replaced by plain text",
			},
			[]string{"key"},
		),
		activeSessions: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "anketa_active_sessions",
				Help: "Number of questionnaires in progress",
			},
		),
	}
}

func (p *PrometheusRecorder) IncEvent(kind string) {
	p.eventsTotal.WithLabelValues(kind).Inc()
}

func (p *PrometheusRecorder) IncRejection(reason string) {
	p.rejectionsTotal.WithLabelValues(reason).Inc()
}

func (p *PrometheusRecorder) IncSubmission() {
	p.submissionsTotal.Inc()
}

func (p *PrometheusRecorder) IncDelivery(kind, status string) {
	p.deliveriesTotal.WithLabelValues(kind, status).Inc()
}

func (p *PrometheusRecorder) IncPromptFallback(key string) {
	p.fallbacksTotal.WithLabelValues(key).Inc()
}

func (p *PrometheusRecorder) SetActiveSessions(n int) {
	p.activeSessions.Set(float64(n))
}
