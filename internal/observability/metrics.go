package observability

import (
	"sync/atomic"
)

// MetricsCollector provides hooks for metrics collection around message
// handling and blob acquisition.
// Can be implemented to integrate with Prometheus, StatsD, etc.
type MetricsCollector interface {
	IncReceived()
	IncProcessed()
	IncParseFailed()
	IncAcquireStarted()
	IncAcquired()
	IncAcquireFailed()
	AddBytesDownloaded(n int64)
}

// InMemoryMetrics is a simple in-memory implementation for testing/demo
type InMemoryMetrics struct {
	Received        atomic.Int64
	Processed       atomic.Int64
	ParseFailed     atomic.Int64
	AcquireStarted  atomic.Int64
	Acquired        atomic.Int64
	AcquireFailed   atomic.Int64
	BytesDownloaded atomic.Int64
}

func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{}
}

func (m *InMemoryMetrics) IncReceived() {
	m.Received.Add(1)
}

func (m *InMemoryMetrics) IncProcessed() {
	m.Processed.Add(1)
}

func (m *InMemoryMetrics) IncParseFailed() {
	m.ParseFailed.Add(1)
}

func (m *InMemoryMetrics) IncAcquireStarted() {
	m.AcquireStarted.Add(1)
}

func (m *InMemoryMetrics) IncAcquired() {
	m.Acquired.Add(1)
}

func (m *InMemoryMetrics) IncAcquireFailed() {
	m.AcquireFailed.Add(1)
}

func (m *InMemoryMetrics) AddBytesDownloaded(n int64) {
	m.BytesDownloaded.Add(n)
}

func (m *InMemoryMetrics) GetReceived() int64 {
	return m.Received.Load()
}

func (m *InMemoryMetrics) GetProcessed() int64 {
	return m.Processed.Load()
}

func (m *InMemoryMetrics) GetParseFailed() int64 {
	return m.ParseFailed.Load()
}

func (m *InMemoryMetrics) GetAcquireStarted() int64 {
	return m.AcquireStarted.Load()
}

func (m *InMemoryMetrics) GetAcquired() int64 {
	return m.Acquired.Load()
}

func (m *InMemoryMetrics) GetAcquireFailed() int64 {
	return m.AcquireFailed.Load()
}

func (m *InMemoryMetrics) GetBytesDownloaded() int64 {
	return m.BytesDownloaded.Load()
}
