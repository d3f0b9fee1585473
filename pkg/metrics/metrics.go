// Package metrics exposes Prometheus metrics of notification dispatch and the comment cache.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"net/http"
	"time"
)

// Results of a notification send.
const (
	ResultSuccess = "success"
	ResultFailure = "failure"
)

var (
	sendsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "icingacore_notification_sends_started_total",
			Help: "Notification sends started, one per recipient",
		},
	)

	sendsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "icingacore_notification_sends_total",
			Help: "Completed notification sends by result",
		},
		[]string{"result"},
	)

	missingCapability = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "icingacore_notification_missing_capability_total",
			Help: "Notification sends skipped because the notification has no notify method",
		},
	)

	tasksInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "icingacore_notification_tasks_in_flight",
			Help: "Notification sends started but not yet completed",
		},
	)

	commentsExpired = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "icingacore_comments_expired_total",
			Help: "Comments removed by the expiry sweeper",
		},
	)

	commentsCached = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "icingacore_comments_cached",
			Help: "Comments indexed by the comment cache after the last refresh",
		},
	)

	cacheRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "icingacore_comment_cache_refresh_seconds",
			Help:    "Duration of full comment cache rebuilds",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordSendStarted records the start of one notification send.
func RecordSendStarted() {
	sendsStarted.Inc()
	tasksInFlight.Inc()
}

// RecordSendCompleted records the completion of one notification send with the given result.
func RecordSendCompleted(result string) {
	sendsCompleted.WithLabelValues(result).Inc()
	tasksInFlight.Dec()
}

// RecordMissingCapability records a notification without notify method.
func RecordMissingCapability() {
	missingCapability.Inc()
}

// RecordCommentsExpired records comments removed by expiry.
func RecordCommentsExpired(count int) {
	commentsExpired.Add(float64(count))
}

// RecordCacheRefresh records a comment cache rebuild.
func RecordCacheRefresh(cached int, took time.Duration) {
	commentsCached.Set(float64(cached))
	cacheRefreshDuration.Observe(took.Seconds())
}
