package observability

import (
	"sync"
	"time"
)

// Metrics provides basic in-memory counters keyed by intent kind.
type Metrics struct {
	mu             sync.Mutex
	intentCount    map[string]int64
	intentDuration map[string]time.Duration
	errorCount     map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		intentCount:    make(map[string]int64),
		intentDuration: make(map[string]time.Duration),
		errorCount:     make(map[string]int64),
	}
}

// RecordIntent increments the counter and accumulates handling time for
// dispatched intents.
func (m *Metrics) RecordIntent(kind, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	key := kind + "|" + outcome
	m.mu.Lock()
	defer m.mu.Unlock()
	m.intentCount[key]++
	m.intentDuration[key] += duration
}

// RecordError increments error counters by intent kind and error code.
func (m *Metrics) RecordError(kind, code string) {
	if m == nil {
		return
	}
	key := kind + "|" + code
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errorCount[key]++
}

// IntentCount returns the counter for a kind/outcome pair.
func (m *Metrics) IntentCount(kind, outcome string) int64 {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.intentCount[kind+"|"+outcome]
}

// IntentDuration returns the accumulated handling time for a kind/outcome
// pair.
func (m *Metrics) IntentDuration(kind, outcome string) time.Duration {
	if m == nil {
		return 0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.intentDuration[kind+"|"+outcome]
}
