// Package metrics exports calculation results as Prometheus metrics.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"solar_shading/internal/engine"
)

// Registry holds the Prometheus collectors updated after every calculation
// cycle. It implements engine.Callback.
type Registry struct {
	TotalPower    prometheus.Gauge
	WindowPower   *prometheus.GaugeVec
	WindowShading *prometheus.GaugeVec
	ShadingCount  prometheus.Gauge
	Cycles        prometheus.Counter
	WindowErrors  prometheus.Counter
}

func NewRegistry(reg prometheus.Registerer) *Registry {
	r := &Registry{
		TotalPower: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solar_shading_total_power_watts",
			Help: "Total solar power across all windows from the last cycle",
		}),
		WindowPower: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "solar_shading_window_power_watts",
			Help: "Solar power per window from the last cycle",
		}, []string{"window"}),
		WindowShading: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "solar_shading_window_shade_required",
			Help: "Whether a window currently requires shading (1) or not (0)",
		}, []string{"window"}),
		ShadingCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "solar_shading_windows_shading",
			Help: "Number of windows requiring shading",
		}),
		Cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "solar_shading_calculation_cycles_total",
			Help: "Completed calculation cycles",
		}),
		WindowErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "solar_shading_window_errors_total",
			Help: "Per-window calculation failures",
		}),
	}
	reg.MustRegister(r.TotalPower, r.WindowPower, r.WindowShading, r.ShadingCount, r.Cycles, r.WindowErrors)
	return r
}

// OnResults updates the collectors from a finished batch.
func (r *Registry) OnResults(batch engine.Batch) {
	r.Cycles.Inc()
	r.TotalPower.Set(batch.Summary.TotalPower)
	r.ShadingCount.Set(float64(batch.Summary.ShadingCount))

	for id, wr := range batch.Windows {
		r.WindowPower.WithLabelValues(id).Set(wr.TotalPower)
		if wr.ShadeRequired {
			r.WindowShading.WithLabelValues(id).Set(1)
		} else {
			r.WindowShading.WithLabelValues(id).Set(0)
		}
		if strings.HasPrefix(wr.ShadeReason, "Calculation error") {
			r.WindowErrors.Inc()
		}
	}
}

// OnState is part of engine.Callback; scheduling state is not exported.
func (r *Registry) OnState(engine.State) {}
