package config

import (
	"fmt"
	"log"
)

// Effective is the fully resolved configuration for one window: every
// inherit marker replaced by a concrete value. It is a plain value object;
// callers never mutate a shared instance.
type Effective struct {
	GValue        float64
	FrameWidth    float64
	DiffuseFactor float64
	Tilt          float64

	ThresholdDirect  float64
	ThresholdDiffuse float64
	IndoorBase       float64
	OutdoorBase      float64

	AzimuthMin   float64
	AzimuthMax   float64
	ElevationMin float64
	ElevationMax float64

	ScenarioBEnabled       bool
	ScenarioBIndoorOffset  float64
	ScenarioBOutdoorOffset float64

	ScenarioCEnabled   bool
	ScenarioCForecast  float64
	ScenarioCStartHour int

	IndoorSensor string
	GroupType    string
}

// Overrides carries live per-cycle values that beat every configuration
// layer. Unset fields fall through to the resolved tree.
type Overrides struct {
	ThresholdDirect  OptFloat
	ThresholdDiffuse OptFloat
	IndoorBase       OptFloat
	OutdoorBase      OptFloat
	GValue           OptFloat
}

// Factors are the global adjustment knobs applied after inheritance.
type Factors struct {
	Sensitivity       float64
	ChildrenFactor    float64
	TemperatureOffset float64
}

// FactorsFrom extracts the factor values from a global config layer.
func FactorsFrom(g GlobalConfig) Factors {
	return Factors{
		Sensitivity:       g.Sensitivity.Or(DefaultSensitivity),
		ChildrenFactor:    g.ChildrenFactor.Or(DefaultChildrenFactor),
		TemperatureOffset: g.TemperatureOffset.Or(0),
	}
}

// Resolver merges the configuration layers for individual windows.
type Resolver struct {
	tree *Tree
}

func NewResolver(tree *Tree) *Resolver {
	return &Resolver{tree: tree}
}

// Effective resolves the configuration for windowID: hard defaults, then
// global, then the linked group, then the window itself, then live
// overrides. A window referencing an unknown group resolves as if no group
// were linked, with a logged warning.
func (r *Resolver) Effective(windowID string, ov Overrides) (Effective, error) {
	w, ok := r.tree.Windows[windowID]
	if !ok {
		return Effective{}, fmt.Errorf("window configuration not found: %s", windowID)
	}

	var grp GroupConfig
	if w.Group != "" {
		grp, ok = r.tree.Groups[w.Group]
		if !ok {
			log.Printf("window %s references unknown group %q, using global defaults", windowID, w.Group)
			grp = GroupConfig{}
		}
	}
	g := r.tree.Global

	pick := func(def float64, layers ...OptFloat) float64 {
		// Later layers win; the last explicitly set value is used.
		v := def
		for _, l := range layers {
			if l.IsSet() {
				v = l.Or(def)
			}
		}
		return v
	}

	eff := Effective{
		GValue:        pick(DefaultGValue, g.GValue, grp.GValue, w.GValue, ov.GValue),
		FrameWidth:    pick(DefaultFrameWidth, g.FrameWidth, grp.FrameWidth, w.FrameWidth),
		DiffuseFactor: pick(DefaultDiffuseFactor, g.DiffuseFactor, grp.DiffuseFactor, w.DiffuseFactor),
		Tilt:          pick(DefaultTilt, g.Tilt, grp.Tilt, w.Tilt),

		ThresholdDirect:  pick(DefaultThresholdDirect, g.ThresholdDirect, grp.ThresholdDirect, w.ThresholdDirect, ov.ThresholdDirect),
		ThresholdDiffuse: pick(DefaultThresholdDiffuse, g.ThresholdDiffuse, grp.ThresholdDiffuse, w.ThresholdDiffuse, ov.ThresholdDiffuse),
		IndoorBase:       pick(DefaultIndoorBase, g.IndoorBase, grp.IndoorBase, w.IndoorBase, ov.IndoorBase),
		OutdoorBase:      pick(DefaultOutdoorBase, g.OutdoorBase, grp.OutdoorBase, w.OutdoorBase, ov.OutdoorBase),

		AzimuthMin:   w.AzimuthMin.Or(DefaultAzimuthMin),
		AzimuthMax:   w.AzimuthMax.Or(DefaultAzimuthMax),
		ElevationMin: w.ElevationMin.Or(DefaultElevationMin),
		ElevationMax: w.ElevationMax.Or(DefaultElevationMax),

		ScenarioBIndoorOffset:  pick(DefaultScenarioBIndoorOffset, g.ScenarioBIndoorOffset, grp.ScenarioBIndoorOffset, w.ScenarioBIndoorOffset),
		ScenarioBOutdoorOffset: pick(DefaultScenarioBOutdoorOffset, g.ScenarioBOutdoorOffset, grp.ScenarioBOutdoorOffset, w.ScenarioBOutdoorOffset),
		ScenarioCForecast:      pick(DefaultScenarioCForecast, g.ScenarioCForecast, grp.ScenarioCForecast, w.ScenarioCForecast),
		ScenarioCStartHour:     int(pick(DefaultScenarioCStartHour, g.ScenarioCStartHour, grp.ScenarioCStartHour, w.ScenarioCStartHour)),

		GroupType: grp.Type,
	}

	// Scenario toggles resolve window -> group -> global.
	eff.ScenarioBEnabled = resolveToggle(w.ScenarioB, grp.ScenarioB, g.ScenarioBEnabled)
	eff.ScenarioCEnabled = resolveToggle(w.ScenarioC, grp.ScenarioC, g.ScenarioCEnabled)

	// Indoor sensor: nearest explicitly set reference wins.
	switch {
	case w.IndoorSensor.IsSet():
		eff.IndoorSensor = w.IndoorSensor.Or("")
	case grp.IndoorSensor.IsSet():
		eff.IndoorSensor = grp.IndoorSensor.Or("")
	default:
		eff.IndoorSensor = g.IndoorSensor.Or("")
	}

	return eff, nil
}

// WithFactors returns a copy of e with the global adjustment factors
// applied: thresholds scaled by sensitivity (and the children factor for
// windows in a group of type "children"), temperature bases shifted by the
// configured offset.
func (e Effective) WithFactors(f Factors) Effective {
	out := e

	sensitivity := f.Sensitivity
	if sensitivity <= 0 {
		sensitivity = DefaultSensitivity
	}
	out.ThresholdDirect /= sensitivity
	out.ThresholdDiffuse /= sensitivity

	if e.GroupType == "children" {
		out.ThresholdDirect *= f.ChildrenFactor
		out.ThresholdDiffuse *= f.ChildrenFactor
	}

	out.IndoorBase += f.TemperatureOffset
	out.OutdoorBase += f.TemperatureOffset

	return out
}

func resolveToggle(window, group TriState, global bool) bool {
	if window != TriInherit {
		return window.Resolve(global)
	}
	if group != TriInherit {
		return group.Resolve(global)
	}
	return global
}
