package utils

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all prometheus metrics
type Metrics struct {
	HTTPRequests        *prometheus.CounterVec
	HTTPDuration        *prometheus.HistogramVec
	ApplicationsCreated prometheus.Counter
	PaymentsInitiated   *prometheus.CounterVec
	PaymentOutcomes     *prometheus.CounterVec
	PaymentPolls        prometheus.Gauge
	InvoicesCreated     prometheus.Counter
	NotificationsSent   *prometheus.CounterVec
	UploadFallbacks     prometheus.Counter
	ReconciledPayments  prometheus.Counter
	ErrorsCount         *prometheus.CounterVec
	DependencyUp        *prometheus.GaugeVec
}

var (
	metricsOnce sync.Once
	appMetrics  *Metrics
)

// GetMetrics returns the process-wide metrics, registering them on first use.
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		appMetrics = newMetrics("visapoint")
	})
	return appMetrics
}

func newMetrics(namespace string) *Metrics {
	return &Metrics{
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "The total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		HTTPDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Time taken to serve HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		ApplicationsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "applications_created_total",
			Help:      "The total number of visa applications created",
		}),
		PaymentsInitiated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payments_initiated_total",
			Help:      "The total number of payment initiations by result",
		}, []string{"result"}),
		PaymentOutcomes: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_outcomes_total",
			Help:      "Terminal payment outcomes",
		}, []string{"status"}),
		PaymentPolls: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "payment_polls_active",
			Help:      "Number of payment status polls currently running",
		}),
		InvoicesCreated: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invoices_created_total",
			Help:      "The total number of invoices created from payments",
		}),
		NotificationsSent: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notifications_sent_total",
			Help:      "Notifications sent by kind and result",
		}, []string{"kind", "result"}),
		UploadFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upload_fallbacks_total",
			Help:      "Uploads that fell back to a local preview",
		}),
		ReconciledPayments: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconciled_payments_total",
			Help:      "Pending payments finalized by the reconcile job",
		}),
		ErrorsCount: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "errors_total",
			Help:      "The total number of errors",
		}, []string{"operation"}),
		DependencyUp: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "dependency_up",
			Help:      "1 when the last health check reached the dependency",
		}, []string{"dependency"}),
	}
}
