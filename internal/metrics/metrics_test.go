package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := MustNewMetrics(reg)

	m.IncQuizSubmission("thinker")
	m.IncQuizSubmission("thinker")
	m.IncQuizSubmission("creator")
	assert.Equal(t, 2.0, testutil.ToFloat64(m.quizSubmissions.WithLabelValues("thinker")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.quizSubmissions.WithLabelValues("creator")))

	m.ObserveCache("recommendation", "hit")
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("recommendation", "hit")))

	m.IncJobRun("snapshot_activity", nil)
	m.IncJobRun("snapshot_activity", errors.New("db down"))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.jobRuns.WithLabelValues("snapshot_activity", "error")))

	m.ObserveHTTP("GET", "/api/personas", 200, 5*time.Millisecond)
	assert.Equal(t, 1, testutil.CollectAndCount(m.httpDuration))
}

func TestMustNewMetrics_ReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first := MustNewMetrics(reg)
	second := MustNewMetrics(reg)

	second.IncQuizSubmission("explorer")
	assert.Equal(t, 1.0, testutil.ToFloat64(first.quizSubmissions.WithLabelValues("explorer")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.IncQuizSubmission("explorer")
		m.ObserveCache("x", "miss")
		m.ObserveHTTP("GET", "/", 200, time.Millisecond)
		m.IncJobRun("job", nil)
	})
}
