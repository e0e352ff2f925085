package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// LifecycleMetrics holds the instrumentation the orchestrator reports into.
// All fields are optional at the orchestrator; a nil LifecycleMetrics
// disables reporting entirely.
type LifecycleMetrics struct {
	// Activations counts Activate calls that armed a gate.
	Activations Counter
	// Ineligible counts Activate calls that degraded to resting because the
	// owner declined participation or had no tick source.
	Ineligible Counter
	// Fires counts gate fires partitioned by winning cause.
	Fires CounterVec
	// ActiveCycles tracks the number of currently armed gates.
	ActiveCycles Gauge
}

// NewLifecycleMetrics creates and registers the orchestrator metrics on the
// given registry.
func NewLifecycleMetrics(reg Registry) (*LifecycleMetrics, error) {
	activations, err := reg.NewCounter(prometheus.CounterOpts{
		Name: "lazylifecycle_activations_total",
		Help: "Activate calls that armed a lazy dispatch gate.",
	})
	if err != nil {
		return nil, fmt.Errorf("creating activations counter: %w", err)
	}

	ineligible, err := reg.NewCounter(prometheus.CounterOpts{
		Name: "lazylifecycle_ineligible_total",
		Help: "Activate calls that degraded to resting without arming a gate.",
	})
	if err != nil {
		return nil, fmt.Errorf("creating ineligible counter: %w", err)
	}

	fires, err := reg.NewCounterVec(prometheus.CounterOpts{
		Name: "lazylifecycle_gate_fires_total",
		Help: "Gate fires partitioned by winning cause.",
	}, []string{"cause"})
	if err != nil {
		return nil, fmt.Errorf("creating fires counter: %w", err)
	}

	active, err := reg.NewGauge(prometheus.GaugeOpts{
		Name: "lazylifecycle_active_cycles",
		Help: "Currently armed lazy dispatch gates.",
	})
	if err != nil {
		return nil, fmt.Errorf("creating active cycles gauge: %w", err)
	}

	return &LifecycleMetrics{
		Activations:  activations,
		Ineligible:   ineligible,
		Fires:        fires,
		ActiveCycles: active,
	}, nil
}
