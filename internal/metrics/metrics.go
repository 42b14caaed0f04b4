package metrics

import (
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Notification outcomes recorded by the engine
const (
	OutcomeCreated     = "created"
	OutcomeRefreshed   = "refreshed"
	OutcomeSkippedSelf = "skipped_self"
	OutcomeFailed      = "failed"
	OutcomeDeleted     = "deleted"
)

// Metrics holds the Prometheus collectors of the application
type Metrics struct {
	NotificationsTotal  *prometheus.CounterVec
	LikesTotal          *prometheus.CounterVec
	FollowsTotal        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide metrics, registering them on first use
func Get() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			NotificationsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "blog_notifications_total",
					Help: "Notification engine outcomes by verb",
				},
				[]string{"verb", "outcome"},
			),
			LikesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "blog_likes_total",
					Help: "Likes created and removed by target type",
				},
				[]string{"target_type", "action"},
			),
			FollowsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "blog_follows_total",
					Help: "Follows created and removed",
				},
				[]string{"action"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "blog_http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
				},
				[]string{"method", "route", "status"},
			),
		}
	})
	return instance
}

// Notification records one engine outcome
func Notification(verb, outcome string) {
	Get().NotificationsTotal.WithLabelValues(verb, outcome).Inc()
}

// Like records a like ("create") or unlike ("delete")
func Like(targetType, action string) {
	Get().LikesTotal.WithLabelValues(targetType, action).Inc()
}

// Follow records a follow ("create") or unfollow ("delete")
func Follow(action string) {
	Get().FollowsTotal.WithLabelValues(action).Inc()
}

// HTTPRequest observes the latency of one handled request
func HTTPRequest(method, route string, status int, seconds float64) {
	Get().HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(seconds)
}
