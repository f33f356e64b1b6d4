// Package metrics holds the Prometheus collectors for the events backend.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "clubevents"

// Skip reasons recorded on ImagesSkipped.
const (
	SkipTooLarge     = "too_large"
	SkipUploadFailed = "upload_failed"
	SkipOverLimit    = "over_limit"
	SkipEmpty        = "empty"
)

// Metrics groups the application's collectors. A nil *Metrics records nothing.
type Metrics struct {
	loginAttempts   *prometheus.CounterVec
	eventsPublished prometheus.Counter
	eventsDeleted   prometheus.Counter
	imagesUploaded  prometheus.Counter
	imagesSkipped   *prometheus.CounterVec
	slugRetries     prometheus.Counter
	httpDuration    *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "admin_login_attempts_total",
			Help:      "Admin login attempts by result",
		}, []string{"result"}),
		eventsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_published_total",
			Help:      "Events successfully published",
		}),
		eventsDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_deleted_total",
			Help:      "Events deleted",
		}),
		imagesUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_uploaded_total",
			Help:      "Images stored on the image host",
		}),
		imagesSkipped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "images_skipped_total",
			Help:      "Images dropped from a publish request by reason",
		}, []string{"reason"}),
		slugRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slug_conflict_retries_total",
			Help:      "Publish attempts repeated after a slug uniqueness conflict",
		}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route and status",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(m.loginAttempts, m.eventsPublished, m.eventsDeleted, m.imagesUploaded,
		m.imagesSkipped, m.slugRetries, m.httpDuration)
	return m
}

func (m *Metrics) LoginAttempt(result string) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(result).Inc()
}

func (m *Metrics) EventPublished(images int) {
	if m == nil {
		return
	}
	m.eventsPublished.Inc()
	m.imagesUploaded.Add(float64(images))
}

func (m *Metrics) EventDeleted() {
	if m == nil {
		return
	}
	m.eventsDeleted.Inc()
}

func (m *Metrics) ImageSkipped(reason string) {
	if m == nil {
		return
	}
	m.imagesSkipped.WithLabelValues(reason).Inc()
}

func (m *Metrics) SlugRetry() {
	if m == nil {
		return
	}
	m.slugRetries.Inc()
}

// ObserveRequest records one HTTP request. An empty route is reported as "unmatched".
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(elapsed.Seconds())
}
