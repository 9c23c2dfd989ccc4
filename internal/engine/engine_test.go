package engine

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/mr1hm/go-flight-planner/internal/config"
	"github.com/mr1hm/go-flight-planner/internal/models"
	"github.com/mr1hm/go-flight-planner/internal/weather"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testConfig() *config.Config {
	return &config.Config{
		Region: config.RegionConfig{South: 0, North: 1, West: 0, East: 1},
		Grid:   config.GridConfig{Size: 20},
		Weather: config.WeatherConfig{
			Seed:         7,
			MinSystems:   3,
			MaxSystems:   5,
			TickInterval: 200 * time.Millisecond,
			TickDelta:    1,
		},
		Mission: config.MissionConfig{
			TickInterval:    100 * time.Millisecond,
			ProgressStep:    0.5,
			BatteryDrain:    0.5,
			DangerRisk:      101, // breaches disabled unless a test lowers it
			WarningRisk:     100,
			LowBattery:      20,
			ReplanTolerance: 10,
		},
	}
}

func fullRegionPolygon() models.Polygon {
	return models.Polygon{
		{Latitude: -1, Longitude: -1},
		{Latitude: -1, Longitude: 2},
		{Latitude: 2, Longitude: 2},
		{Latitude: 2, Longitude: -1},
	}
}

func TestEngine_SampleRiskIsMaxOfSources(t *testing.T) {
	e := New(testConfig(), nil)
	defer e.pool.Stop()

	// A mild storm over cell (10,10): weather risk well above the
	// terrain base but below the cap.
	e.SetWeatherSystems([]weather.System{
		{Kind: weather.KindStorm, X: 10, Y: 10, Radius: 3, Intensity: 0.5},
	})
	point := e.grid.Center(10, 10)

	weatherRisk := e.SampleRisk(point)
	if weatherRisk <= 10 || weatherRisk >= 100 {
		t.Fatalf("storm cell risk = %f, want between terrain base and cap", weatherRisk)
	}

	// Blanket the region: terrain risk 100 dominates everywhere.
	e.SetNoFlyZones([]models.Polygon{fullRegionPolygon()})
	if r := e.SampleRisk(point); r != 100 {
		t.Errorf("risk over a block = %f, want 100", r)
	}

	// Cleared again, the weather component wins over the base terrain.
	e.SetNoFlyZones(nil)
	if r := e.SampleRisk(point); r < weatherRisk-10 {
		t.Errorf("combined risk %f lost the weather component %f", r, weatherRisk)
	}

	// Far from the storm, only the terrain base remains.
	if r := e.SampleRisk(e.grid.Center(1, 1)); r != 10 {
		t.Errorf("clear-sky risk = %f, want terrain base 10", r)
	}
}

func TestEngine_PlanRouteRespectsZones(t *testing.T) {
	e := New(testConfig(), nil)
	defer e.pool.Stop()
	e.SetWeatherSystems(nil) // clear sky, terrain only

	start := e.grid.Center(0, 10)
	goal := e.grid.Center(19, 10)

	e.SetNoFlyZones([]models.Polygon{fullRegionPolygon()})
	if route := e.PlanRoute(start, goal, 100); !route.Empty() {
		t.Fatalf("planned %d points through a fully blocked region", len(route))
	}

	e.SetNoFlyZones(nil)
	route := e.PlanRoute(start, goal, 100)
	if route.Empty() {
		t.Fatal("no route over open terrain")
	}
	if route[0] != start || route[len(route)-1] != goal {
		t.Error("route endpoints do not match start/goal cell centers")
	}
}

func TestEngine_HazardTickMovesSnapshot(t *testing.T) {
	cfg := testConfig()
	cfg.Weather.TickDelta = 5 // exaggerate drift so samples visibly change
	e := New(cfg, nil)
	defer e.pool.Stop()

	before := e.WeatherSystems()
	e.HazardTick()
	after := e.WeatherSystems()

	moved := false
	for i := range before {
		if before[i].X != after[i].X || before[i].Y != after[i].Y {
			moved = true
		}
	}
	if !moved {
		t.Error("hazard tick did not move any weather system")
	}
}

func TestEngine_MissionLifecycle(t *testing.T) {
	e := New(testConfig(), nil)
	defer e.pool.Stop()
	e.SetWeatherSystems(nil)

	route := e.PlanRoute(e.grid.Center(2, 2), e.grid.Center(5, 2), 100)
	if route.Empty() {
		t.Fatal("planning failed")
	}
	if err := e.StartMission(route); err != nil {
		t.Fatal(err)
	}

	// ProgressStep 0.5: each segment takes 2 ticks.
	ticksToComplete := 2 * (len(route) - 1)
	for i := 0; i < ticksToComplete; i++ {
		e.MissionTick()
	}
	if s := e.MissionStatus(); s.State != models.MissionComplete {
		t.Errorf("after %d ticks state = %s, want COMPLETE", ticksToComplete, s.State)
	}
}

func TestEngine_BreachReplansWithRealPlanner(t *testing.T) {
	cfg := testConfig()
	cfg.Mission.DangerRisk = 5 // any sampled risk is a breach
	cfg.Mission.WarningRisk = 4
	e := New(cfg, nil)
	defer e.pool.Stop()
	e.SetWeatherSystems(nil)

	route := e.PlanRoute(e.grid.Center(0, 0), e.grid.Center(10, 0), 100)
	if err := e.StartMission(route); err != nil {
		t.Fatal(err)
	}

	e.MissionTick()

	// Terrain base risk alone exceeds the threshold, so the tick must
	// have paused, replanned with the real planner, and resumed.
	s := e.MissionStatus()
	if s.State != models.MissionActive {
		t.Fatalf("state after breach tick = %s, want ACTIVE on a fresh route", s.State)
	}
	if s.Segment != 0 || s.Progress != 0 {
		t.Errorf("replan did not reset progress: segment %d progress %f", s.Segment, s.Progress)
	}
}

func TestEngine_EstimateUsage(t *testing.T) {
	e := New(testConfig(), nil)
	defer e.pool.Stop()

	a := models.Coordinates{Latitude: 0.1, Longitude: 0.1}
	b := models.Coordinates{Latitude: 0.9, Longitude: 0.1}

	if got := e.EstimateUsage(a, b, 0); got != 0 {
		t.Errorf("zero range estimate = %f, want 0", got)
	}
	frac := e.EstimateUsage(a, b, 100)
	if frac <= 0 {
		t.Errorf("usage estimate = %f, want > 0", frac)
	}
	if half := e.EstimateUsage(a, b, 200); half >= frac {
		t.Errorf("doubling range did not lower the estimate: %f vs %f", half, frac)
	}
}

func TestEngine_TasksStartStop(t *testing.T) {
	e := New(testConfig(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	e.Start(ctx)

	time.Sleep(250 * time.Millisecond) // let both tasks fire at least once

	cancel()
	e.Stop()
}

func TestTask_ManualTickSource(t *testing.T) {
	ticks := make(chan time.Time)
	fired := make(chan struct{}, 8)

	task := NewTask("test", time.Hour, func() { fired <- struct{}{} }).
		WithTickSource(func(time.Duration) (<-chan time.Time, func()) {
			return ticks, func() {}
		})

	ctx, cancel := context.WithCancel(context.Background())
	task.Start(ctx)

	for i := 0; i < 3; i++ {
		ticks <- time.Now()
	}
	for i := 0; i < 3; i++ {
		select {
		case <-fired:
		case <-time.After(time.Second):
			t.Fatalf("tick %d never ran", i+1)
		}
	}

	cancel()
	task.Wait()
}
