// shade-check runs a single calculation cycle against a configuration file
// with sensor values supplied on the command line, and prints the decision
// for every window. Useful for tuning thresholds without a broker.
package main

import (
	"flag"
	"fmt"
	"log"
	"strconv"

	"solar_shading/internal/config"
	"solar_shading/internal/engine"
	"solar_shading/internal/states"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the configuration file")
	radiation := flag.Float64("radiation", 0, "solar radiation in W/m²")
	sunAzimuth := flag.Float64("sun-azimuth", 180, "sun azimuth in degrees")
	sunElevation := flag.Float64("sun-elevation", 45, "sun elevation in degrees")
	indoor := flag.Float64("indoor", 21, "indoor temperature in °C (applied to every window)")
	outdoor := flag.Float64("outdoor", 18, "outdoor temperature in °C")
	forecast := flag.Float64("forecast", 0, "forecast temperature in °C (0 = no forecast)")
	warning := flag.Bool("weather-warning", false, "simulate an active weather warning")
	maintenance := flag.Bool("maintenance", false, "simulate maintenance mode")
	flag.Parse()

	tree, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	static := states.NewStatic(nil)
	seedStates(tree, static, *radiation, *sunAzimuth, *sunElevation, *indoor, *outdoor, *forecast, *warning)

	eng := engine.New(tree, static, nil)
	eng.SetMaintenance(*maintenance)
	batch := eng.RunOnce()

	fmt.Printf("%-20s %10s %10s %8s %6s  %s\n", "Window", "Power [W]", "Thresh [W]", "Visible", "Shade", "Reason")
	for _, id := range tree.WindowIDs() {
		wr := batch.Windows[id]
		fmt.Printf("%-20s %10.1f %10.1f %8v %6v  %s\n",
			wr.Name, wr.TotalPower, wr.EffectiveThreshold, wr.IsVisible, wr.ShadeRequired, wr.ShadeReason)
	}
	fmt.Printf("\nTotal: %.1f W across %d windows, %d shading\n",
		batch.Summary.TotalPower, batch.Summary.WindowCount, batch.Summary.ShadingCount)
}

// seedStates fills the static provider with the flag values. Sensor
// references missing from the configuration get synthetic keys so the tool
// works with a bare windows-only config.
func seedStates(tree *config.Tree, static *states.Static, radiation, sunAz, sunEl, indoor, outdoor, forecast float64, warning bool) {
	refs := &tree.Global.Sensors
	ensure(&refs.SolarRadiation, "cli/solar_radiation")
	ensure(&refs.SunAzimuth, "cli/sun_azimuth")
	ensure(&refs.SunElevation, "cli/sun_elevation")
	ensure(&refs.OutdoorTemp, "cli/outdoor_temperature")
	ensure(&refs.ForecastTemp, "cli/forecast_temperature")
	ensure(&refs.WeatherWarning, "cli/weather_warning")
	if !tree.Global.IndoorSensor.IsSet() {
		tree.Global.IndoorSensor = config.String("cli/indoor_temperature")
	}

	static.Set(refs.SolarRadiation, formatFloat(radiation))
	static.Set(refs.SunAzimuth, formatFloat(sunAz))
	static.Set(refs.SunElevation, formatFloat(sunEl))
	static.Set(refs.OutdoorTemp, formatFloat(outdoor))
	static.Set(refs.ForecastTemp, formatFloat(forecast))
	if warning {
		static.Set(refs.WeatherWarning, "on")
	} else {
		static.Set(refs.WeatherWarning, "off")
	}

	// Every indoor sensor reference reads the same flag value.
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
