package cache

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts lookups per cache tier.
type Metrics struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		hits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "admindata",
			Subsystem: "type_cache",
			Name:      "hits_total",
			Help:      "Record type lookups answered from the cache.",
		}, []string{"tier"}),
		misses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "admindata",
			Subsystem: "type_cache",
			Name:      "misses_total",
			Help:      "Record type lookups not found in the cache.",
		}, []string{"tier"}),
	}
	if reg != nil {
		reg.MustRegister(m.hits, m.misses)
	}
	return m
}

func (m *Metrics) observe(tier string, hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.hits.WithLabelValues(tier).Inc()
	} else {
		m.misses.WithLabelValues(tier).Inc()
	}
}
