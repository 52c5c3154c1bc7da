package engine

import (
	"math"
	"time"
)

// WindowResult is the per-window outcome of one calculation cycle.
type WindowResult struct {
	Name string `json:"name"`

	TotalPower        float64 `json:"total_power"`
	TotalPowerDirect  float64 `json:"total_power_direct"`
	TotalPowerDiffuse float64 `json:"total_power_diffuse"`
	// TotalPowerRaw is the power the window would receive without the
	// overhang shadow.
	TotalPowerRaw float64 `json:"total_power_raw"`

	PowerM2Total   float64 `json:"power_m2_total"`
	PowerM2Direct  float64 `json:"power_m2_direct"`
	PowerM2Diffuse float64 `json:"power_m2_diffuse"`
	PowerM2Raw     float64 `json:"power_m2_raw"`

	ShadowFactor float64 `json:"shadow_factor"`
	AreaM2       float64 `json:"area_m2"`
	IsVisible    bool    `json:"is_visible"`

	ShadeRequired      bool    `json:"shade_required"`
	ShadeReason        string  `json:"shade_reason"`
	EffectiveThreshold float64 `json:"effective_threshold"`
}

// GroupResult aggregates the windows linked to one group.
type GroupResult struct {
	Name              string  `json:"name"`
	TotalPower        float64 `json:"total_power"`
	TotalPowerDirect  float64 `json:"total_power_direct"`
	TotalPowerDiffuse float64 `json:"total_power_diffuse"`
}

// Summary is the system-wide aggregate for one cycle.
type Summary struct {
	TotalPower        float64   `json:"total_power"`
	TotalPowerDirect  float64   `json:"total_power_direct"`
	TotalPowerDiffuse float64   `json:"total_power_diffuse"`
	WindowCount       int       `json:"window_count"`
	ShadingCount      int       `json:"shading_count"`
	CalculatedAt      time.Time `json:"calculation_time"`
}

// Batch is the complete result set of one calculation cycle. It is rebuilt
// from scratch every cycle; nothing carries over.
type Batch struct {
	Windows map[string]WindowResult `json:"windows"`
	Groups  map[string]GroupResult  `json:"groups"`
	Summary Summary                 `json:"summary"`
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
