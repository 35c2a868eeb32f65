package engine

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SimTicksTotal counts simulation steps that actually ran.
	SimTicksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "graphscope_sim_ticks_total",
			Help: "Total number of force simulation ticks executed",
		},
	)

	// SimTickSeconds tracks how long one simulation step takes.
	SimTickSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graphscope_sim_tick_seconds",
			Help:    "Duration of a single force simulation tick",
			Buckets: prometheus.ExponentialBuckets(0.00001, 4, 8),
		},
	)

	// SimAlpha is the current simulation temperature.
	SimAlpha = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "graphscope_sim_alpha",
			Help: "Current force simulation temperature",
		},
	)

	// GraphSize tracks the size of the graph on display.
	GraphSize = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "graphscope_graph_size",
			Help: "Number of nodes, edges and dangling edges in the loaded graph",
		},
		[]string{"kind"},
	)

	// FramesTotal counts rendered frames.
	FramesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "graphscope_frames_total",
			Help: "Total number of frames rendered",
		},
	)

	// LoadsTotal counts dataset loads by outcome.
	LoadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphscope_loads_total",
			Help: "Total number of dataset loads",
		},
		[]string{"result"},
	)
)

func init() {
	// Register metrics with the default registry
	prometheus.MustRegister(SimTicksTotal)
	prometheus.MustRegister(SimTickSeconds)
	prometheus.MustRegister(SimAlpha)
	prometheus.MustRegister(GraphSize)
	prometheus.MustRegister(FramesTotal)
	prometheus.MustRegister(LoadsTotal)
}
