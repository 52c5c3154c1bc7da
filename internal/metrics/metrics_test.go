package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"solar_shading/internal/engine"
)

func sampleBatch() engine.Batch {
	return engine.Batch{
		Windows: map[string]engine.WindowResult{
			"south": {Name: "South window", TotalPower: 1206.8, ShadeRequired: true},
			"east":  {Name: "east", TotalPower: 67.2},
			"bad":   {Name: "bad", ShadeReason: "Calculation error: boom"},
		},
		Summary: engine.Summary{TotalPower: 1274.0, WindowCount: 3, ShadingCount: 1},
	}
}

func TestOnResults(t *testing.T) {
	r := NewRegistry(prometheus.NewRegistry())

	r.OnResults(sampleBatch())

	assert.Equal(t, 1274.0, testutil.ToFloat64(r.TotalPower))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.ShadingCount))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.Cycles))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.WindowErrors))

	assert.Equal(t, 1206.8, testutil.ToFloat64(r.WindowPower.WithLabelValues("south")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.WindowShading.WithLabelValues("south")))
	assert.Equal(t, 0.0, testutil.ToFloat64(r.WindowShading.WithLabelValues("east")))
}

func TestOnResultsCountsCycles(t *testing.T) {
	r := NewRegistry(prometheus.NewRegistry())

	r.OnResults(sampleBatch())
	r.OnResults(sampleBatch())

	assert.Equal(t, 2.0, testutil.ToFloat64(r.Cycles))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.WindowErrors))
}
