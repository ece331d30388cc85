package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Step classification, scheduler transitions and guard activity.

var (
	// Tick classifier
	StepsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hydrogen",
		Subsystem: "tick",
		Name:      "steps_total",
		Help:      "Simulation steps by classification (presented, fast)",
	}, []string{"kind"})

	TicksPerPresentedFrame = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "hydrogen",
		Subsystem: "tick",
		Name:      "ticks_per_presented_frame",
		Help:      "Steps run between the last two presented steps",
	})

	StepDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "hydrogen",
		Subsystem: "tick",
		Name:      "step_elapsed_seconds",
		Help:      "Elapsed time the host reported for each step",
		Buckets:   []float64{0.0005, 0.001, 0.002, 0.004, 0.008, 0.0167, 0.033, 0.066, 0.1},
	})

	UncappedToggles = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "hydrogen",
		Subsystem: "tick",
		Name:      "uncapped_toggles_total",
		Help:      "Uncapped mode flips triggered by the toggle input",
	})

	// Scheduler
	ActiveOptimizations = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "hydrogen",
		Subsystem: "scheduler",
		Name:      "active_optimizations",
		Help:      "Optimization units currently loaded",
	})

	OptimizationLoads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hydrogen",
		Subsystem: "scheduler",
		Name:      "loads_total",
		Help:      "Optimization unit loads",
	}, []string{"unit"})

	OptimizationUnloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hydrogen",
		Subsystem: "scheduler",
		Name:      "unloads_total",
		Help:      "Optimization unit unloads",
	}, []string{"unit"})

	// Guards
	SuppressedCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hydrogen",
		Subsystem: "guard",
		Name:      "suppressed_calls_total",
		Help:      "Host calls skipped on fast steps",
	}, []string{"target"})

	CoalescedFlushes = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "hydrogen",
		Subsystem: "guard",
		Name:      "coalesced_flushed_total",
		Help:      "Deferred host calls applied on presented steps",
	}, []string{"target"})
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
