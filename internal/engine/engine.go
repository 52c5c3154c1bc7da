// Package engine runs the per-window shading calculation over the full
// window set and aggregates the results.
package engine

import (
	"fmt"
	"log"
	"sync"
	"time"

	"solar_shading/internal/config"
	"solar_shading/internal/shading"
	"solar_shading/internal/solar"
	"solar_shading/internal/states"
)

// State describes the engine's scheduling status.
type State struct {
	Interval    time.Duration `json:"interval"`
	Running     bool          `json:"running"`
	Maintenance bool          `json:"maintenance"`
	LastRun     time.Time     `json:"last_run"`
}

// Callback receives engine events.
type Callback interface {
	OnResults(batch Batch)
	OnState(state State)
}

// MultiCallback fans events out to several callbacks.
type MultiCallback []Callback

func (m MultiCallback) OnResults(b Batch) {
	for _, cb := range m {
		cb.OnResults(b)
	}
}

func (m MultiCallback) OnState(s State) {
	for _, cb := range m {
		cb.OnState(s)
	}
}

// Engine recomputes all window shading decisions once per tick. Each cycle
// produces a fresh Batch from the current configuration and live states; the
// previous batch is replaced atomically.
type Engine struct {
	mu       sync.Mutex
	tree     *config.Tree
	resolver *config.Resolver
	provider states.Provider
	callback Callback

	interval    time.Duration
	maintenance bool
	running     bool
	lastRun     time.Time
	last        *Batch

	stopCh chan struct{}
	now    func() time.Time
}

func New(tree *config.Tree, provider states.Provider, cb Callback) *Engine {
	return &Engine{
		tree:        tree,
		resolver:    config.NewResolver(tree),
		provider:    provider,
		callback:    cb,
		interval:    tree.Global.UpdateInterval(),
		maintenance: tree.Global.MaintenanceMode,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// State returns the current scheduling state.
func (e *Engine) State() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return State{
		Interval:    e.interval,
		Running:     e.running,
		Maintenance: e.maintenance,
		LastRun:     e.lastRun,
	}
}

// SetMaintenance toggles maintenance mode. While active every window
// resolves to "no shading".
func (e *Engine) SetMaintenance(on bool) {
	e.mu.Lock()
	changed := e.maintenance != on
	e.maintenance = on
	e.mu.Unlock()

	if changed {
		e.broadcastState()
	}
}

// Latest returns the most recent batch, if any cycle has run.
func (e *Engine) Latest() (Batch, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.last == nil {
		return Batch{}, false
	}
	return *e.last, true
}

// Start begins the periodic calculation loop. The first cycle runs
// immediately.
func (e *Engine) Start() {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		return
	}
	e.running = true
	e.stopCh = make(chan struct{})
	e.mu.Unlock()

	e.broadcastState()
	go e.loop()
}

// Stop halts the periodic loop.
func (e *Engine) Stop() {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return
	}
	e.running = false
	close(e.stopCh)
	e.mu.Unlock()

	e.broadcastState()
}

func (e *Engine) loop() {
	e.RunOnce()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopCh:
			return
		case <-ticker.C:
			e.RunOnce()
		}
	}
}

// SetClock overrides the engine's time source. Used by history replay and
// tests; the default is the UTC wall clock.
func (e *Engine) SetClock(fn func() time.Time) {
	e.mu.Lock()
	e.now = fn
	e.mu.Unlock()
}

// RunOnce executes a full calculation cycle and broadcasts the batch.
func (e *Engine) RunOnce() Batch {
	e.mu.Lock()
	now := e.now()
	maintenance := e.maintenance || e.tree.Global.MaintenanceMode
	e.mu.Unlock()

	snap := states.Collect(e.provider, e.tree.Global.Sensors)
	factors := config.FactorsFrom(e.tree.Global)

	batch := e.compute(snap, factors, maintenance, now)

	e.mu.Lock()
	e.last = &batch
	e.lastRun = now
	e.mu.Unlock()

	if e.callback != nil {
		e.callback.OnResults(batch)
	}
	e.broadcastState()
	return batch
}

func (e *Engine) compute(snap states.Snapshot, factors config.Factors, maintenance bool, now time.Time) Batch {
	batch := Batch{
		Windows: make(map[string]WindowResult, len(e.tree.Windows)),
		Groups:  make(map[string]GroupResult, len(e.tree.Groups)),
	}

	// Below the calculation minimums there is nothing to compute; every
	// window gets a zeroed, non-shading result.
	gateRadiation := e.tree.Global.MinSolarRadiation
	if gateRadiation < 1e-3 {
		gateRadiation = 1e-3
	}
	skipAll := snap.SolarRadiation < gateRadiation || snap.SunElevation < e.tree.Global.MinSunElevation

	for _, id := range e.tree.WindowIDs() {
		w := e.tree.Windows[id]

		if skipAll {
			batch.Windows[id] = WindowResult{Name: windowName(id, w), ShadowFactor: 1.0}
			continue
		}

		res, err := e.computeWindow(id, w, snap, factors, maintenance, now)
		if err != nil {
			log.Printf("error calculating window %s: %v", id, err)
			res = WindowResult{
				Name:        windowName(id, w),
				ShadeReason: fmt.Sprintf("Calculation error: %v", err),
			}
		}
		batch.Windows[id] = res
	}

	// Group aggregation over the linked windows.
	for gid, g := range e.tree.Groups {
		gr := GroupResult{Name: groupName(gid, g)}
		for wid, w := range e.tree.Windows {
			if w.Group != gid {
				continue
			}
			wr := batch.Windows[wid]
			gr.TotalPower += wr.TotalPower
			gr.TotalPowerDirect += wr.TotalPowerDirect
			gr.TotalPowerDiffuse += wr.TotalPowerDiffuse
		}
		gr.TotalPower = round2(gr.TotalPower)
		gr.TotalPowerDirect = round2(gr.TotalPowerDirect)
		gr.TotalPowerDiffuse = round2(gr.TotalPowerDiffuse)
		batch.Groups[gid] = gr
	}

	s := Summary{WindowCount: len(batch.Windows), CalculatedAt: now}
	for _, wr := range batch.Windows {
		s.TotalPower += wr.TotalPower
		s.TotalPowerDirect += wr.TotalPowerDirect
		s.TotalPowerDiffuse += wr.TotalPowerDiffuse
		if wr.ShadeRequired {
			s.ShadingCount++
		}
	}
	s.TotalPower = round2(s.TotalPower)
	s.TotalPowerDirect = round2(s.TotalPowerDirect)
	s.TotalPowerDiffuse = round2(s.TotalPowerDiffuse)
	batch.Summary = s

	return batch
}

// computeWindow runs resolve -> solar -> decide for a single window. Any
// failure, including a panic, is returned as an error so one bad window
// never aborts the batch.
func (e *Engine) computeWindow(id string, w config.WindowConfig, snap states.Snapshot, factors config.Factors, maintenance bool, now time.Time) (result WindowResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	eff, err := e.resolver.Effective(id, config.Overrides{})
	if err != nil {
		return WindowResult{}, err
	}
	eff = eff.WithFactors(factors)

	sol := solar.Compute(solar.Window{
		Width:         w.Width,
		Height:        w.Height,
		Azimuth:       w.Azimuth,
		AzimuthMin:    eff.AzimuthMin,
		AzimuthMax:    eff.AzimuthMax,
		ElevationMin:  eff.ElevationMin,
		ElevationMax:  eff.ElevationMax,
		Tilt:          eff.Tilt,
		FrameWidth:    eff.FrameWidth,
		GValue:        eff.GValue,
		DiffuseFactor: eff.DiffuseFactor,
		ShadowDepth:   w.ShadowDepth.Or(0),
		ShadowOffset:  w.ShadowOffset.Or(0),
	}, solar.Sun{Azimuth: snap.SunAzimuth, Elevation: snap.SunElevation}, snap.SolarRadiation)

	indoor := shading.IndoorReading{SensorID: eff.IndoorSensor}
	if eff.IndoorSensor != "" {
		raw, ok := e.provider.Value(eff.IndoorSensor)
		if !ok {
			raw = "0"
		}
		indoor.Raw = raw
	}

	decision := shading.Decide(shading.Request{
		WindowName:      windowName(id, w),
		Power:           sol.PowerTotal,
		Effective:       eff,
		Indoor:          indoor,
		Outdoor:         snap.OutdoorTemp,
		Forecast:        snap.ForecastTemp,
		WeatherWarning:  snap.WeatherWarning,
		MaintenanceMode: maintenance,
		Now:             now,
	})

	// Power the window would receive without the overhang shadow.
	raw := sol.PowerTotal
	if sol.ShadowFactor > 0 {
		raw = sol.PowerDirect/sol.ShadowFactor + sol.PowerDiffuse
	}
	area := sol.AreaM2
	if area <= 0 {
		area = 1
	}

	return WindowResult{
		Name:              windowName(id, w),
		TotalPower:        round2(sol.PowerTotal),
		TotalPowerDirect:  round2(sol.PowerDirect),
		TotalPowerDiffuse: round2(sol.PowerDiffuse),
		TotalPowerRaw:     round2(raw),
		PowerM2Total:      round2(sol.PowerTotal / area),
		PowerM2Direct:     round2(sol.PowerDirect / area),
		PowerM2Diffuse:    round2(sol.PowerDiffuse / area),
		PowerM2Raw:        round2(raw / area),
		ShadowFactor:      sol.ShadowFactor,
		AreaM2:            sol.AreaM2,
		IsVisible:         sol.IsVisible,

		ShadeRequired:      decision.ShadeRequired,
		ShadeReason:        decision.Reason,
		EffectiveThreshold: eff.ThresholdDirect,
	}, nil
}

func (e *Engine) broadcastState() {
	if e.callback == nil {
		return
	}
	e.callback.OnState(e.State())
}

func windowName(id string, w config.WindowConfig) string {
	if w.Name != "" {
		return w.Name
	}
	return id
}

func groupName(id string, g config.GroupConfig) string {
	if g.Name != "" {
		return g.Name
	}
	return id
}
