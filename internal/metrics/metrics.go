package metrics

import "github.com/prometheus/client_golang/prometheus"

const (
	OutcomeHit   = "hit"
	OutcomeMiss  = "miss"
	OutcomeError = "error"
)

// AvailabilityMetrics exposes counters/histograms for availability lookups.
type AvailabilityMetrics struct {
	requestsTotal  *prometheus.CounterVec
	computeLatency *prometheus.HistogramVec
	slotsOffered   *prometheus.HistogramVec
}

func NewAvailabilityMetrics(reg prometheus.Registerer) *AvailabilityMetrics {
	m := &AvailabilityMetrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "availability",
			Subsystem: "scheduler",
			Name:      "requests_total",
			Help:      "Availability lookups by care type and cache outcome",
		}, []string{"care_type", "outcome"}),
		computeLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "availability",
			Subsystem: "scheduler",
			Name:      "compute_seconds",
			Help:      "Time spent loading the roster and computing availability",
			Buckets:   prometheus.DefBuckets,
		}, []string{"care_type"}),
		slotsOffered: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "availability",
			Subsystem: "scheduler",
			Name:      "slots_offered",
			Help:      "Number of slots offered per computed lookup",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250},
		}, []string{"care_type"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal, m.computeLatency, m.slotsOffered)
	return m
}

func (m *AvailabilityMetrics) ObserveRequest(careType, outcome string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(careType, outcome).Inc()
}

func (m *AvailabilityMetrics) ObserveCompute(careType string, seconds float64) {
	if m == nil {
		return
	}
	m.computeLatency.WithLabelValues(careType).Observe(seconds)
}

func (m *AvailabilityMetrics) ObserveSlotsOffered(careType string, slots int) {
	if m == nil {
		return
	}
	m.slotsOffered.WithLabelValues(careType).Observe(float64(slots))
}
