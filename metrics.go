package lockgate

import "sync/atomic"

// MetricID identifies one in-process counter.
type MetricID uint16

const (
	// MetricLoginSuccess counts completed primary logins (no second factor).
	MetricLoginSuccess MetricID = iota
	// MetricLoginFailure counts soft login rejections.
	MetricLoginFailure
	// MetricLoginLocked counts attempts rejected by the lock gate or that
	// triggered a lock.
	MetricLoginLocked
	// MetricLoginWarned counts mismatches that crossed the warn threshold.
	MetricLoginWarned
	// MetricTwoFactorIssued counts successfully delivered challenges.
	MetricTwoFactorIssued
	// MetricTwoFactorSuccess counts completed two-factor logins.
	MetricTwoFactorSuccess
	// MetricTwoFactorFailure counts rejected two-factor verifications.
	MetricTwoFactorFailure
	// MetricLogout counts completed logouts.
	MetricLogout
	// MetricStoreConflictRetry counts version-conflict retries against the
	// user store.
	MetricStoreConflictRetry

	metricIDCount
)

// Metrics holds atomic counters. When disabled, all operations are no-ops.
type Metrics struct {
	enabled  bool
	counters [metricIDCount]atomic.Uint64
}

// NewMetrics creates a Metrics instance from a [MetricsConfig].
func NewMetrics(cfg MetricsConfig) *Metrics {
	return &Metrics{enabled: cfg.Enabled}
}

// Inc increments one counter.
func (m *Metrics) Inc(id MetricID) {
	if m == nil || !m.enabled || id >= metricIDCount {
		return
	}
	m.counters[id].Add(1)
}

// MetricsSnapshot is a point-in-time copy of all counters.
type MetricsSnapshot struct {
	Counters map[MetricID]uint64
}

// Snapshot copies every counter. Safe to call concurrently with Inc.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		Counters: make(map[MetricID]uint64, int(metricIDCount)),
	}
	if m == nil {
		return snap
	}
	for id := MetricID(0); id < metricIDCount; id++ {
		snap.Counters[id] = m.counters[id].Load()
	}
	return snap
}
