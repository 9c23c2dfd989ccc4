package engine

import (
	"context"
	"log/slog"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/mr1hm/go-flight-planner/internal/config"
	"github.com/mr1hm/go-flight-planner/internal/geo"
	"github.com/mr1hm/go-flight-planner/internal/mission"
	"github.com/mr1hm/go-flight-planner/internal/models"
	"github.com/mr1hm/go-flight-planner/internal/planner"
	"github.com/mr1hm/go-flight-planner/internal/terrain"
	"github.com/mr1hm/go-flight-planner/internal/weather"
)

// Engine is the simulation context for one session: the grid, both
// hazard fields, the planner and the mission driver, with no state
// outside it. Writers (hazard tick, mission tick, zone updates) are
// serialized by a single mutex; samples and planning read either under
// the read lock or from the immutable hazard snapshot.
type Engine struct {
	cfg     *config.Config
	grid    *geo.Grid
	weather *weather.Field
	terrain *terrain.Field
	planner *planner.Planner
	driver  *mission.Driver
	pool    *renderPool

	mu       sync.RWMutex
	snapshot atomic.Pointer[hazardSnapshot]

	hazardTask  *Task
	missionTask *Task
}

// hazardSnapshot is the derived per-cell weather field, regenerated in
// full on every hazard tick and swapped atomically. Planner and driver
// reads go through the snapshot so they never observe a mid-update
// field.
type hazardSnapshot struct {
	n       int
	samples []models.WeatherSample
}

func (s *hazardSnapshot) at(x, y int) models.WeatherSample {
	return s.samples[y*s.n+x]
}

// New builds a session context. Mission events go to pub; pass nil to
// discard them.
func New(cfg *config.Config, pub mission.Publisher) *Engine {
	region := models.Region{
		South: cfg.Region.South,
		North: cfg.Region.North,
		West:  cfg.Region.West,
		East:  cfg.Region.East,
	}
	e := &Engine{
		cfg:     cfg,
		grid:    geo.NewGrid(region, cfg.Grid.Size),
		weather: weather.NewField(cfg.Grid.Size, cfg.Weather.Seed, cfg.Weather.MinSystems, cfg.Weather.MaxSystems),
		pool:    newRenderPool(runtime.NumCPU()),
	}
	e.terrain = terrain.NewField(e.grid)
	e.planner = planner.New(e.grid, (*combinedSurface)(e))
	e.driver = mission.NewDriver(mission.Config{
		ProgressStep:    cfg.Mission.ProgressStep,
		BatteryDrain:    cfg.Mission.BatteryDrain,
		DangerRisk:      cfg.Mission.DangerRisk,
		WarningRisk:     cfg.Mission.WarningRisk,
		LowBattery:      cfg.Mission.LowBattery,
		ReplanTolerance: cfg.Mission.ReplanTolerance,
	}, (*lockFreeSampler)(e), e.planner, pub)
	e.renderSnapshot()
	return e
}

func (e *Engine) Grid() *geo.Grid { return e.grid }

// combinedSurface exposes the terrain-plus-snapshot surface to the
// planner without taking the engine lock: the planner runs either
// under the caller's read lock (PlanRoute) or inside the mission tick,
// which already holds the write lock.
type combinedSurface Engine

func (s *combinedSurface) CombinedRisk(x, y int) float64 {
	t := s.terrain.RiskAt(x, y)
	w := s.snapshot.Load().at(x, y).Risk
	// Hazard sources combine by maximum throughout, never by addition.
	if w > t {
		return w
	}
	return t
}

// lockFreeSampler is the driver's view of combined risk, used only
// while the mission tick holds the write lock.
type lockFreeSampler Engine

func (s *lockFreeSampler) CombinedRiskAt(c models.Coordinates) float64 {
	x, y := s.grid.Cell(c)
	return (*combinedSurface)(s).CombinedRisk(x, y)
}

// PlanRoute runs one planning pass over the current combined surface.
// An empty route means no admissible route exists at this tolerance.
func (e *Engine) PlanRoute(start, goal models.Coordinates, riskTolerance float64) models.Route {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.planner.FindPath(start, goal, riskTolerance)
}

// SampleRisk returns the combined risk at a point: the maximum of the
// terrain risk and the weather risk for the containing cell.
func (e *Engine) SampleRisk(c models.Coordinates) float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	x, y := e.grid.Cell(c)
	return (*combinedSurface)(e).CombinedRisk(x, y)
}

// SampleWeather returns the live weather reading at a point.
func (e *Engine) SampleWeather(c models.Coordinates) models.WeatherSample {
	e.mu.RLock()
	defer e.mu.RUnlock()
	fx, fy := e.grid.Locate(c)
	return e.weather.SampleAt(fx, fy)
}

// WeatherSystems reports the current system set for host display.
func (e *Engine) WeatherSystems() []weather.System {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.weather.Systems()
}

// SetWeatherSystems replaces the weather with a scripted scenario and
// regenerates the derived field.
func (e *Engine) SetWeatherSystems(systems []weather.System) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.weather.SetSystems(systems)
	e.renderSnapshot()
}

// SetNoFlyZones rebuilds the terrain surface from the given polygons.
func (e *Engine) SetNoFlyZones(polygons []models.Polygon) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.terrain.SetObstacles(polygons)
	slog.Info("no-fly zones registered", "count", len(polygons))
}

// EstimateUsage is a host-facing estimate of battery consumed by the
// straight-line trip, as a fraction of batteryRangeKm. The planner
// never consults it.
func (e *Engine) EstimateUsage(start, goal models.Coordinates, batteryRangeKm float64) float64 {
	if batteryRangeKm <= 0 {
		return 0
	}
	return geo.DistanceKm(start, goal) / batteryRangeKm
}

// StartMission begins a mission on a previously planned route.
func (e *Engine) StartMission(route models.Route) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.driver.Start(route)
}

func (e *Engine) PauseMission() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.driver.Pause()
}

func (e *Engine) ResumeMission() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.driver.Resume()
}

func (e *Engine) AbortMission() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.driver.Abort()
}

func (e *Engine) MissionStatus() models.MissionStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.driver.Status()
}

// HazardTick advances the weather systems and regenerates the derived
// hazard snapshot. Runs regardless of mission state.
func (e *Engine) HazardTick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.weather.Advance(e.cfg.Weather.TickDelta)
	e.renderSnapshot()
}

// MissionTick advances the mission driver by one step. Replanning
// triggered by a hazard breach completes before the tick returns.
func (e *Engine) MissionTick() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.driver.Tick()
}

// renderSnapshot rebuilds the per-cell weather field, rows in
// parallel, and publishes it atomically.
func (e *Engine) renderSnapshot() {
	n := e.grid.Size()
	snap := &hazardSnapshot{n: n, samples: make([]models.WeatherSample, n*n)}
	e.pool.Render(n, func(y int) {
		for x := 0; x < n; x++ {
			snap.samples[y*n+x] = e.weather.SampleCell(x, y)
		}
	})
	e.snapshot.Store(snap)
}

// Start launches the two periodic tasks. The hazard task keeps
// advancing after a mission ends; only Stop halts it.
func (e *Engine) Start(ctx context.Context) {
	e.hazardTask = NewTask("hazard-tick", e.cfg.Weather.TickInterval, e.HazardTick)
	e.missionTask = NewTask("mission-tick", e.cfg.Mission.TickInterval, e.MissionTick)
	e.hazardTask.Start(ctx)
	e.missionTask.Start(ctx)
}

// Stop waits for both tasks to exit (their context must already be
// cancelled) and releases the render workers.
func (e *Engine) Stop() {
	if e.hazardTask != nil {
		e.hazardTask.Wait()
	}
	if e.missionTask != nil {
		e.missionTask.Wait()
	}
	e.pool.Stop()
}
