package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	IngestCount    prometheus.Counter
	MatchCount     prometheus.Counter
	NoMatchCount   prometheus.Counter
	DuplicateCount prometheus.Counter
	SweptEmails    prometheus.Counter
	IngestFailures prometheus.Counter
	ProcessingTime prometheus.Histogram
	ActiveEmails   prometheus.Gauge
	EnabledRules   prometheus.Gauge
	TotalRules     prometheus.Gauge
}

// NewMetrics creates new Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		IngestCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mail_webhook_relay_ingest_count",
			Help: "Total number of ingestion requests processed",
		}),
		MatchCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mail_webhook_relay_match_count",
			Help: "Total number of emails that matched a forwarding rule",
		}),
		NoMatchCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mail_webhook_relay_no_match_count",
			Help: "Total number of emails dropped because no rule matched",
		}),
		DuplicateCount: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mail_webhook_relay_duplicate_count",
			Help: "Total number of redelivered emails skipped by deduplication",
		}),
		SweptEmails: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mail_webhook_relay_swept_emails_total",
			Help: "Total number of expired emails removed by sweeps",
		}),
		IngestFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "mail_webhook_relay_ingest_failures",
			Help: "Total number of ingestion requests that failed",
		}),
		ProcessingTime: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "mail_webhook_relay_processing_duration_seconds",
			Help:    "Time spent processing ingestion requests",
			Buckets: prometheus.DefBuckets,
		}),
		ActiveEmails: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mail_webhook_relay_active_emails",
			Help: "Number of currently retained, non-expired emails",
		}),
		EnabledRules: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mail_webhook_relay_enabled_rules",
			Help: "Number of currently enabled forwarding rules",
		}),
		TotalRules: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "mail_webhook_relay_total_rules",
			Help: "Total number of forwarding rules (enabled and disabled)",
		}),
	}
}
