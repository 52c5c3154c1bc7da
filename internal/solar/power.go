package solar

import "math"

// Window holds the geometry and glazing properties needed to estimate solar
// power through one window.
type Window struct {
	Width  float64 // outer frame width in meters
	Height float64 // outer frame height in meters

	// Azimuth the window faces (0=N, 90=E, 180=S, 270=W).
	Azimuth float64
	// Sun visibility ranges. Azimuth bounds are relative to the window
	// azimuth, elevation bounds are absolute degrees above the horizon.
	AzimuthMin, AzimuthMax     float64
	ElevationMin, ElevationMax float64
	// Tilt from horizontal (90 = vertical facade window).
	Tilt float64

	FrameWidth    float64 // frame width subtracted from each edge
	GValue        float64 // solar heat gain coefficient of the glazing
	DiffuseFactor float64 // fraction of radiation treated as diffuse

	// Optional overhang casting a shadow onto the window.
	ShadowDepth  float64
	ShadowOffset float64
}

// Sun is the current solar position in degrees.
type Sun struct {
	Azimuth   float64
	Elevation float64
}

// Result holds the power estimate for one window.
type Result struct {
	PowerTotal   float64
	PowerDirect  float64
	PowerDiffuse float64
	ShadowFactor float64
	IsVisible    bool
	AreaM2       float64
}

// Radiation below this is treated as darkness.
const minRadiation = 1e-3

// Compute estimates the solar power through a window for the given sun
// position and horizontal radiation (W/m²). Diffuse power is always
// collected; direct power only while the sun is inside the window's
// visibility ranges, attenuated by the overhang shadow factor.
func Compute(w Window, sun Sun, radiation float64) Result {
	if radiation < minRadiation || sun.Elevation < 0 {
		return Result{ShadowFactor: 1.0}
	}

	glassW := math.Max(0, w.Width-2*w.FrameWidth)
	glassH := math.Max(0, w.Height-2*w.FrameWidth)
	area := glassW * glassH

	res := Result{
		PowerDiffuse: radiation * w.DiffuseFactor * area * w.GValue,
		ShadowFactor: 1.0,
		AreaM2:       area,
	}

	if sun.Elevation < w.ElevationMin || sun.Elevation > w.ElevationMax {
		res.PowerTotal = res.PowerDiffuse
		return res
	}
	azDiff := wrapDegrees(sun.Azimuth - w.Azimuth)
	if azDiff < w.AzimuthMin || azDiff > w.AzimuthMax {
		res.PowerTotal = res.PowerDiffuse
		return res
	}
	res.IsVisible = true

	sunEl := radians(sun.Elevation)
	tilt := radians(w.Tilt)
	cosIncidence := math.Sin(sunEl)*math.Cos(tilt) +
		math.Cos(sunEl)*math.Sin(tilt)*math.Cos(radians(sun.Azimuth-w.Azimuth))

	if cosIncidence > 0 && sunEl > 0 {
		res.PowerDirect = radiation * (1 - w.DiffuseFactor) * cosIncidence / math.Sin(sunEl) * area * w.GValue

		if w.ShadowDepth > 0 || w.ShadowOffset > 0 {
			res.ShadowFactor = shadowFactor(sun.Elevation, azDiff, w.ShadowDepth, w.ShadowOffset)
			res.PowerDirect *= res.ShadowFactor
		}
	}

	res.PowerTotal = res.PowerDirect + res.PowerDiffuse
	return res
}

// shadowFactor estimates how much of the direct beam an overhang blocks.
// Returns a multiplier between 0.1 (full shadow) and 1.0 (no shadow).
func shadowFactor(sunElevation, azDiff, depth, offset float64) float64 {
	if depth <= 0 && offset <= 0 {
		return 1.0
	}
	sunEl := radians(sunElevation)
	if sunEl <= 0 {
		return 1.0
	}

	// 1.0 when the sun faces the window head-on, 0.0 when perpendicular.
	azFactor := math.Max(0, math.Cos(radians(azDiff)))

	// Shadow cast down the facade, less the overhang's offset from the glass.
	shadowLength := depth / math.Max(math.Tan(sunEl), 1e-3)
	effectiveShadow := math.Max(0, shadowLength-offset)

	// Normalized against a 1 m reference height; linear between no shadow
	// and the 0.1 floor.
	const windowHeight = 1.0
	if effectiveShadow <= 0 {
		return 1.0
	}
	if effectiveShadow >= windowHeight {
		return 0.1
	}
	factor := 1.0 - 0.9*(effectiveShadow/windowHeight)
	factor = factor*azFactor + (1.0 - azFactor)
	return math.Min(1.0, math.Max(0.1, factor))
}

// wrapDegrees normalizes an angle difference to [-180, 180).
func wrapDegrees(deg float64) float64 {
	d := math.Mod(deg+180, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
