package pool

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	acquiresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "viewportd",
			Subsystem: "pool",
			Name:      "acquires_total",
			Help:      "Total acquire attempts by outcome",
		},
		[]string{"outcome"},
	)

	releasesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "viewportd",
			Subsystem: "pool",
			Name:      "releases_total",
			Help:      "Total successful releases",
		},
	)

	gcRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "viewportd",
			Subsystem: "pool",
			Name:      "gc_runs_total",
			Help:      "Garbage collection passes by mode",
		},
		[]string{"mode"},
	)

	gcCleanedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "viewportd",
			Subsystem: "pool",
			Name:      "gc_cleaned_total",
			Help:      "Slots removed by garbage collection",
		},
	)

	slotsGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "viewportd",
			Subsystem: "pool",
			Name:      "slots",
			Help:      "Current slots by state",
		},
		[]string{"state"},
	)
)

func init() {
	prometheus.MustRegister(acquiresTotal, releasesTotal, gcRunsTotal, gcCleanedTotal, slotsGauge)
}

// updateSlotGauges refreshes the state gauges. Caller must hold p.mu.
func (p *Pool) updateSlotGauges() {
	var avail, inUse, pending float64
	for _, s := range p.slots {
		switch s.state {
		case SlotAvailable:
			avail++
		case SlotInUse:
			inUse++
		case SlotPendingCleanup:
			pending++
		}
	}
	slotsGauge.WithLabelValues(string(SlotAvailable)).Set(avail)
	slotsGauge.WithLabelValues(string(SlotInUse)).Set(inUse)
	slotsGauge.WithLabelValues(string(SlotPendingCleanup)).Set(pending)
}
