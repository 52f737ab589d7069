package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "onnasoft"
	subsystem = "cp"
)

var (
	// WebhookEventsTotal 按事件类型与处理结果统计 Stripe webhook
	WebhookEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "webhook_events_total",
		Help:      "Stripe webhook events by type and outcome.",
	}, []string{"event_type", "outcome"})

	WebhookDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "webhook_duration_seconds",
		Help:      "Stripe webhook processing duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"event_type"})

	// ProvisioningTotal outcome: success, pending, rolled_back, rejected
	ProvisioningTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "provisioning_total",
		Help:      "Installation provisioning attempts by edition and outcome.",
	}, []string{"edition", "outcome"})

	ProvisioningDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "provisioning_gateway_duration_seconds",
		Help:      "Duration of the Odoo database creation call.",
		Buckets:   []float64{1, 5, 15, 30, 60, 120, 300},
	})

	// RecoveryTotal 恢复任务对 in_flight 意图的处理结果
	RecoveryTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "provisioning_recovery_total",
		Help:      "In-flight provisioning intents resolved by recovery, by outcome.",
	}, []string{"outcome"})

	InFlightIntents = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "provisioning_in_flight",
		Help:      "Provisioning intents still in flight after the last recovery pass.",
	})

	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by method, route and status.",
	}, []string{"method", "route", "status"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request duration in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	EmailsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystem,
		Name:      "emails_total",
		Help:      "Transactional emails by template and outcome.",
	}, []string{"template", "outcome"})
)
