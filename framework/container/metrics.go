package container

import (
	"time"

	"github.com/rcrowley/go-metrics"
)

// Metric names registered by every container.
const (
	StatCacheHits           = "container/cache_hits"
	StatCacheMisses         = "container/cache_misses"
	StatInstantiations      = "container/instantiations"
	StatInstantiationErrors = "container/instantiation_errors"
	StatCycles              = "container/cycles"
	StatNotFound            = "container/not_found"
	StatBuildLatency        = "container/build_latency"
)

// Metrics groups the go-metrics instruments updated during resolution.
type Metrics struct {
	registry metrics.Registry

	hits           metrics.Counter
	misses         metrics.Counter
	instantiations metrics.Counter
	failures       metrics.Counter
	cycles         metrics.Counter
	notFound       metrics.Counter
	build          metrics.Timer
}

// NewMetrics registers the container instruments in reg. A nil reg gets a
// fresh private registry.
func NewMetrics(reg metrics.Registry) *Metrics {
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	return &Metrics{
		registry:       reg,
		hits:           metrics.GetOrRegisterCounter(StatCacheHits, reg),
		misses:         metrics.GetOrRegisterCounter(StatCacheMisses, reg),
		instantiations: metrics.GetOrRegisterCounter(StatInstantiations, reg),
		failures:       metrics.GetOrRegisterCounter(StatInstantiationErrors, reg),
		cycles:         metrics.GetOrRegisterCounter(StatCycles, reg),
		notFound:       metrics.GetOrRegisterCounter(StatNotFound, reg),
		build:          metrics.GetOrRegisterTimer(StatBuildLatency, reg),
	}
}

// Registry returns the underlying go-metrics registry.
func (m *Metrics) Registry() metrics.Registry { return m.registry }

// Counts returns the current value of every counter, keyed by metric name.
func (m *Metrics) Counts() map[string]int64 {
	return map[string]int64{
		StatCacheHits:           m.hits.Count(),
		StatCacheMisses:         m.misses.Count(),
		StatInstantiations:      m.instantiations.Count(),
		StatInstantiationErrors: m.failures.Count(),
		StatCycles:              m.cycles.Count(),
		StatNotFound:            m.notFound.Count(),
		StatBuildLatency:        m.build.Count(),
	}
}

func (m *Metrics) built(start time.Time) {
	m.build.UpdateSince(start)
	m.instantiations.Inc(1)
}
