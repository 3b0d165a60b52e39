package rpc

import (
	"sync"
	"sync/atomic"
	"time"
)

// ewmaAlpha is the smoothing factor for the rolling response-time
// average; higher weights recent samples more heavily.
const ewmaAlpha = 0.2

// Metrics tracks observation-only counters and a rolling EWMA response
// time. Nothing here influences consensus; it exists purely for
// diagnostics and dashboards.
type Metrics struct {
	total      uint64
	successful uint64
	failed     uint64
	retried    uint64
	batched    uint64

	mu             sync.Mutex
	ewmaLatencyMs  float64
	hasSample      bool
	lastErrorUnix  int64
}

func NewMetrics() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncTotal()      { atomic.AddUint64(&m.total, 1) }
func (m *Metrics) IncSuccessful() { atomic.AddUint64(&m.successful, 1) }
func (m *Metrics) IncFailed()     { atomic.AddUint64(&m.failed, 1) }
func (m *Metrics) IncRetried()    { atomic.AddUint64(&m.retried, 1) }
func (m *Metrics) IncBatched()    { atomic.AddUint64(&m.batched, 1) }

func (m *Metrics) ObserveLatency(d time.Duration) {
	ms := float64(d.Milliseconds())

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hasSample {
		m.ewmaLatencyMs = ms
		m.hasSample = true
		return
	}
	m.ewmaLatencyMs = ewmaAlpha*ms + (1-ewmaAlpha)*m.ewmaLatencyMs
}

func (m *Metrics) SetLastError(t time.Time) {
	atomic.StoreInt64(&m.lastErrorUnix, t.Unix())
}

// MetricsSnapshot is a point-in-time copy of a Metrics instance.
type MetricsSnapshot struct {
	Total         uint64
	Successful    uint64
	Failed        uint64
	Retried       uint64
	Batched       uint64
	EWMALatencyMs float64
	LastErrorUnix int64
}

func (m *Metrics) Snapshot() MetricsSnapshot {
	m.mu.Lock()
	latency := m.ewmaLatencyMs
	m.mu.Unlock()

	return MetricsSnapshot{
		Total:         atomic.LoadUint64(&m.total),
		Successful:    atomic.LoadUint64(&m.successful),
		Failed:        atomic.LoadUint64(&m.failed),
		Retried:       atomic.LoadUint64(&m.retried),
		Batched:       atomic.LoadUint64(&m.batched),
		EWMALatencyMs: latency,
		LastErrorUnix: atomic.LoadInt64(&m.lastErrorUnix),
	}
}
