package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsAccumulate(t *testing.T) {
	m := NewMetrics()

	m.RecordIntent("create_request", "ok", 5*time.Millisecond)
	m.RecordIntent("create_request", "ok", 7*time.Millisecond)
	m.RecordIntent("create_request", "error", 2*time.Millisecond)
	m.RecordError("create_request", "PERSISTENCE_FAILED")

	assert.Equal(t, int64(2), m.IntentCount("create_request", "ok"))
	assert.Equal(t, 12*time.Millisecond, m.IntentDuration("create_request", "ok"))
	assert.Equal(t, int64(1), m.IntentCount("create_request", "error"))
	assert.Equal(t, 2*time.Millisecond, m.IntentDuration("create_request", "error"))
	assert.Zero(t, m.IntentCount("close_request", "ok"))
	assert.Zero(t, m.IntentDuration("close_request", "ok"))
}

func TestNilMetricsSafe(t *testing.T) {
	var m *Metrics
	m.RecordIntent("create_request", "ok", time.Millisecond)
	m.RecordError("create_request", "INTERNAL_ERROR")
	assert.Zero(t, m.IntentCount("create_request", "ok"))
	assert.Zero(t, m.IntentDuration("create_request", "ok"))
}
