package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_counters(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.LoginAttempt("success")
	m.LoginAttempt("invalid")
	m.LoginAttempt("invalid")
	m.EventPublished(3)
	m.ImageSkipped(SkipTooLarge)
	m.SlugRetry()
	m.EventDeleted()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.loginAttempts.WithLabelValues("success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.loginAttempts.WithLabelValues("invalid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsPublished))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.imagesUploaded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.imagesSkipped.WithLabelValues(SkipTooLarge)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.slugRetries))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsDeleted))
}

func TestMetrics_observe_request(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.ObserveRequest("GET", "GET /api/events", 200, 10*time.Millisecond)
	m.ObserveRequest("GET", "", 404, time.Millisecond)
	assert.Equal(t, 2, testutil.CollectAndCount(m.httpDuration))
}

func TestMetrics_nil_is_noop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.LoginAttempt("success")
		m.EventPublished(1)
		m.EventDeleted()
		m.ImageSkipped(SkipUploadFailed)
		m.SlugRetry()
		m.ObserveRequest("GET", "/", 200, time.Second)
	})
}
