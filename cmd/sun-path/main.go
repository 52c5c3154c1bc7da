// sun-path sweeps a synthetic clear-sky day through the engine and prints
// the power and shading decision per step. The sun model is deliberately
// simple (sinusoidal elevation, linear east-to-west azimuth); it is a tuning
// aid, not an astronomical calculation.
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"strconv"
	"time"

	"solar_shading/internal/config"
	"solar_shading/internal/engine"
	"solar_shading/internal/states"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	peak := flag.Float64("peak-radiation", 800, "peak solar radiation in W/m²")
	maxElevation := flag.Float64("max-elevation", 60, "solar noon elevation in degrees")
	sunrise := flag.Float64("sunrise", 6, "sunrise hour")
	sunset := flag.Float64("sunset", 20, "sunset hour")
	indoor := flag.Float64("indoor", 24, "indoor temperature in °C")
	outdoor := flag.Float64("outdoor", 22, "outdoor temperature in °C")
	stepMin := flag.Int("step", 30, "step size in minutes")
	windowID := flag.String("window", "", "print details for a single window")
	flag.Parse()

	tree, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *windowID != "" {
		if _, ok := tree.Windows[*windowID]; !ok {
			log.Fatalf("Unknown window %q", *windowID)
		}
	}

	static := states.NewStatic(nil)
	seedFixed(tree, static, *indoor, *outdoor)

	eng := engine.New(tree, static, nil)

	day := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	simTime := day
	eng.SetClock(func() time.Time { return simTime })

	if *windowID != "" {
		fmt.Printf("%-6s %6s %6s %9s %10s %6s  %s\n", "Time", "El", "Az", "Rad", "Power [W]", "Shade", "Reason")
	} else {
		fmt.Printf("%-6s %6s %6s %9s %12s %8s\n", "Time", "El", "Az", "Rad", "Total [W]", "Shading")
	}

	step := time.Duration(*stepMin) * time.Minute
	for t := day; t.Before(day.Add(24 * time.Hour)); t = t.Add(step) {
		hour := float64(t.Hour()) + float64(t.Minute())/60

		el, az, rad := sunAt(hour, *sunrise, *sunset, *maxElevation, *peak)
		static.Set(tree.Global.Sensors.SunElevation, formatFloat(el))
		static.Set(tree.Global.Sensors.SunAzimuth, formatFloat(az))
		static.Set(tree.Global.Sensors.SolarRadiation, formatFloat(rad))

		simTime = t
		batch := eng.RunOnce()

		if *windowID != "" {
			wr := batch.Windows[*windowID]
			fmt.Printf("%-6s %6.1f %6.1f %9.1f %10.1f %6v  %s\n",
				t.Format("15:04"), el, az, rad, wr.TotalPower, wr.ShadeRequired, wr.ShadeReason)
		} else {
			fmt.Printf("%-6s %6.1f %6.1f %9.1f %12.1f %8d\n",
				t.Format("15:04"), el, az, rad, batch.Summary.TotalPower, batch.Summary.ShadingCount)
		}
	}
}

// sunAt returns the synthetic sun position and radiation for an hour of day.
func sunAt(hour, sunrise, sunset, maxElevation, peak float64) (elevation, azimuth, radiation float64) {
	if hour < sunrise || hour > sunset || sunset <= sunrise {
		return -5, 0, 0
	}
	frac := (hour - sunrise) / (sunset - sunrise)
	elevation = maxElevation * math.Sin(math.Pi*frac)
	azimuth = 90 + 180*frac // east at sunrise, west at sunset
	radiation = peak * math.Sin(math.Pi*frac)
	return elevation, azimuth, radiation
}

func seedFixed(tree *config.Tree, static *states.Static, indoor, outdoor float64) {
	refs := &tree.Global.Sensors
	ensure(&refs.SolarRadiation, "sim/solar_radiation")
	ensure(&refs.SunAzimuth, "sim/sun_azimuth")
	ensure(&refs.SunElevation, "sim/sun_elevation")
	ensure(&refs.OutdoorTemp, "sim/outdoor_temperature")
	if !tree.Global.IndoorSensor.IsSet() {
		tree.Global.IndoorSensor = config.String("sim/indoor_temperature")
	}

	static.Set(refs.OutdoorTemp, formatFloat(outdoor))
	static.Set(tree.Global.IndoorSensor.Or(""), formatFloat(indoor))
	for _, g := range tree.Groups {
		if g.IndoorSensor.IsSet() {
			static.Set(g.IndoorSensor.Or(""), formatFloat(indoor))
		}
	}
	for _, w := range tree.Windows {
		if w.IndoorSensor.IsSet() {
			static.Set(w.IndoorSensor.Or(""), formatFloat(indoor))
		}
	}
}

func ensure(ref *string, fallback string) {
	if *ref == "" {
		*ref = fallback
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
