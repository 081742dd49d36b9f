package observability

import "sync"

// Metrics provides basic in-memory counters for one migration run.
type Metrics struct {
	mu       sync.Mutex
	apiCalls map[string]int64
	outcomes map[string]int64
}

// NewMetrics initializes metrics storage.
func NewMetrics() *Metrics {
	return &Metrics{
		apiCalls: make(map[string]int64),
		outcomes: make(map[string]int64),
	}
}

// RecordCall increments the counter for one outbound API operation.
func (m *Metrics) RecordCall(platform, op string, failed bool) {
	if m == nil {
		return
	}
	key := platform + "|" + op
	if failed {
		key += "|failed"
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.apiCalls[key]++
}

// RecordOutcome increments the counter for one terminal ticket state.
func (m *Metrics) RecordOutcome(state string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[state]++
}

// Snapshot returns copies of the counters for end-of-run reporting.
func (m *Metrics) Snapshot() (apiCalls, outcomes map[string]int64) {
	if m == nil {
		return nil, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	apiCalls = make(map[string]int64, len(m.apiCalls))
	for k, v := range m.apiCalls {
		apiCalls[k] = v
	}
	outcomes = make(map[string]int64, len(m.outcomes))
	for k, v := range m.outcomes {
		outcomes[k] = v
	}
	return apiCalls, outcomes
}
