package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// LicenseMetrics records control-layer traffic.
type LicenseMetrics struct {
	requests *prometheus.CounterVec
	upstream *prometheus.HistogramVec
}

// NewLicenseMetrics registers the license metrics on the provided registerer.
func NewLicenseMetrics(reg prometheus.Registerer) *LicenseMetrics {
	if reg == nil {
		return &LicenseMetrics{}
	}
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dlm_license_requests_total",
		Help: "License requests handled, by action and resulting status.",
	}, []string{"action", "status"})
	upstream := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dlm_upstream_duration_seconds",
		Help:    "Duration of upstream license provider calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	reg.MustRegister(requests, upstream)
	return &LicenseMetrics{
		requests: requests,
		upstream: upstream,
	}
}

// IncRequest counts a handled request.
func (m *LicenseMetrics) IncRequest(action, status string) {
	if m == nil || m.requests == nil {
		return
	}
	m.requests.WithLabelValues(normalizeLabel(action), normalizeLabel(status)).Inc()
}

// ObserveUpstream records the duration of one provider call. Outcome is
// "ok", "rejected" or "transport".
func (m *LicenseMetrics) ObserveUpstream(outcome string, duration time.Duration) {
	if m == nil || m.upstream == nil {
		return
	}
	m.upstream.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
