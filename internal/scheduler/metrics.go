package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	chunksDispatchedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "viewportd",
			Subsystem: "scheduler",
			Name:      "chunks_dispatched_total",
			Help:      "Chunks pulled from the priority buckets",
		},
	)

	chunksFinishedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "viewportd",
			Subsystem: "scheduler",
			Name:      "chunks_finished_total",
			Help:      "Chunks finished by terminal status",
		},
		[]string{"status"},
	)

	itemsLoadedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "viewportd",
			Subsystem: "scheduler",
			Name:      "items_loaded_total",
			Help:      "Items fetched successfully",
		},
	)

	itemsFailedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "viewportd",
			Subsystem: "scheduler",
			Name:      "items_failed_total",
			Help:      "Item fetches that failed",
		},
	)

	loadingChunksGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "viewportd",
			Subsystem: "scheduler",
			Name:      "loading_chunks",
			Help:      "Chunks currently loading",
		},
	)

	queuedChunksGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "viewportd",
			Subsystem: "scheduler",
			Name:      "queued_chunks",
			Help:      "Chunks waiting in priority buckets",
		},
	)
)

func init() {
	prometheus.MustRegister(chunksDispatchedTotal, chunksFinishedTotal, itemsLoadedTotal, itemsFailedTotal, loadingChunksGauge, queuedChunksGauge)
}
