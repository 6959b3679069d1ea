// Package metrics регистрирует метрики Prometheus сервиса.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~4s
		},
		[]string{"method", "path", "status"},
	)

	LifecycleEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_lifecycle_events_total",
			Help: "Committed marketplace lifecycle events by type",
		},
		[]string{"event"},
	)

	PaymentsConfirmedAmount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "marketplace_payments_confirmed_amount_total",
			Help: "Sum of confirmed payment amounts",
		},
	)

	NotificationFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketplace_notification_failures_total",
			Help: "Notification deliveries that returned an error",
		},
		[]string{"event"},
	)

	WebSocketConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketplace_websocket_connections",
			Help: "Currently open websocket connections",
		},
	)
)

func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

func IncrementLifecycleEvent(event string) {
	LifecycleEvents.WithLabelValues(event).Inc()
}

func AddConfirmedPayment(amount float64) {
	if amount > 0 {
		PaymentsConfirmedAmount.Add(amount)
	}
}
