package mission

import (
	"errors"
	"log/slog"
	"time"

	"github.com/mr1hm/go-flight-planner/internal/models"
)

var (
	ErrRouteTooShort   = errors.New("mission route needs at least two points")
	ErrMissionUnderway = errors.New("a mission is already underway")
	ErrNoActiveMission = errors.New("no active mission")
)

// progressEpsilon absorbs float accumulation error so a segment of k
// steps completes in exactly k ticks.
const progressEpsilon = 1e-9

// RiskSampler reports the combined (maximum of terrain and weather)
// risk at a geographic point.
type RiskSampler interface {
	CombinedRiskAt(c models.Coordinates) float64
}

// Replanner re-runs route planning mid-mission.
type Replanner interface {
	FindPath(start, goal models.Coordinates, riskTolerance float64) models.Route
}

// Publisher receives mission lifecycle events.
type Publisher interface {
	Broadcast(e models.MissionEvent)
}

type Config struct {
	ProgressStep    float64 // intra-segment advance per tick
	BatteryDrain    float64 // battery units per tick, distance-independent
	DangerRisk      float64 // above this the driver pauses and replans
	WarningRisk     float64 // above this (up to DangerRisk) a warning is signaled
	LowBattery      float64 // below this a low-battery warning is signaled
	ReplanTolerance float64 // tightened tolerance used for mid-mission replans
}

func DefaultConfig() Config {
	return Config{
		ProgressStep:    0.1,
		BatteryDrain:    0.5,
		DangerRisk:      60,
		WarningRisk:     30,
		LowBattery:      20,
		ReplanTolerance: 10,
	}
}

// Driver advances a simulated agent along a planned route, samples
// live risk at its position every tick, and replans or aborts when
// thresholds are crossed. One Driver serves one mission at a time; a
// finished mission's state is discarded by the next Start.
type Driver struct {
	cfg     Config
	sampler RiskSampler
	planner Replanner
	pub     Publisher

	state    models.MissionState
	route    models.Route
	goal     models.Coordinates
	segment  int
	progress float64
	battery  float64
	position models.Coordinates
}

func NewDriver(cfg Config, sampler RiskSampler, planner Replanner, pub Publisher) *Driver {
	return &Driver{
		cfg:     cfg,
		sampler: sampler,
		planner: planner,
		pub:     pub,
		state:   models.MissionInactive,
	}
}

func (d *Driver) State() models.MissionState { return d.state }

func (d *Driver) Status() models.MissionStatus {
	return models.MissionStatus{
		State:    d.state,
		Position: d.position,
		Segment:  d.segment,
		Progress: d.progress,
		Battery:  d.battery,
		Route:    d.route,
	}
}

// Start begins a new mission on the given route. The previous
// mission's state is discarded; an in-flight mission must be aborted
// first.
func (d *Driver) Start(route models.Route) error {
	if d.state == models.MissionActive || d.state == models.MissionPaused {
		return ErrMissionUnderway
	}
	if len(route) < 2 {
		return ErrRouteTooShort
	}

	d.route = route
	d.goal = route[len(route)-1]
	d.segment = 0
	d.progress = 0
	d.battery = 100
	d.position = route[0]
	d.transition(models.MissionActive, "mission started")
	return nil
}

func (d *Driver) Pause() error {
	if d.state != models.MissionActive {
		return ErrNoActiveMission
	}
	d.transition(models.MissionPaused, "paused by host")
	return nil
}

func (d *Driver) Resume() error {
	if d.state != models.MissionPaused {
		return ErrNoActiveMission
	}
	d.transition(models.MissionActive, "resumed by host")
	return nil
}

func (d *Driver) Abort() error {
	if d.state != models.MissionActive && d.state != models.MissionPaused {
		return ErrNoActiveMission
	}
	d.transition(models.MissionAborted, "aborted by host")
	return nil
}

// Tick advances the mission by one step. It is a no-op unless the
// mission is ACTIVE. Replanning triggered by a hazard breach runs
// synchronously inside the tick; observers see PAUSED for its
// duration.
func (d *Driver) Tick() {
	if d.state != models.MissionActive {
		return
	}

	if d.battery <= 0 {
		d.transition(models.MissionAborted, "battery exhausted")
		return
	}

	d.progress += d.cfg.ProgressStep
	for d.progress >= 1-progressEpsilon {
		d.progress -= 1
		if d.progress < 0 {
			d.progress = 0
		}
		d.segment++
		if d.segment >= len(d.route)-1 {
			d.position = d.goal
			d.progress = 0
			d.transition(models.MissionComplete, "destination reached")
			return
		}
		d.position = d.route[d.segment]
		d.emit(models.EventCheckpoint, "checkpoint reached")
	}

	d.position = lerp(d.route[d.segment], d.route[d.segment+1], d.progress)
	d.battery -= d.cfg.BatteryDrain

	risk := d.sampler.CombinedRiskAt(d.position)
	switch {
	case risk > d.cfg.DangerRisk:
		d.replan(risk)
	case risk >= d.cfg.WarningRisk:
		d.emitRisk(models.EventRiskWarning, "elevated risk ahead", risk)
	}

	if d.battery < d.cfg.LowBattery {
		d.emit(models.EventLowBattery, "battery low")
	}
}

// replan pauses, re-runs the planner from the current position to the
// original goal with the tightened tolerance, and either resumes on
// the new route or aborts if none exists.
func (d *Driver) replan(risk float64) {
	d.transition(models.MissionPaused, "hazard breach")
	slog.Info("replanning around hazard",
		"risk", risk,
		"segment", d.segment,
		"battery", d.battery,
	)

	route := d.planner.FindPath(d.position, d.goal, d.cfg.ReplanTolerance)
	if route.Empty() {
		d.transition(models.MissionAborted, "no admissible route around hazard")
		return
	}
	if len(route) < 2 {
		d.position = d.goal
		d.transition(models.MissionComplete, "replan landed on destination")
		return
	}

	d.route = route
	d.segment = 0
	d.progress = 0
	d.emitRisk(models.EventReplanned, "rerouted around hazard", risk)
	d.transition(models.MissionActive, "resuming on new route")
}

func (d *Driver) transition(to models.MissionState, reason string) {
	from := d.state
	d.state = to
	slog.Info("mission state", "from", from, "to", to, "reason", reason)
	d.emit(models.EventStateChange, reason)
}

func (d *Driver) emit(kind models.MissionEventKind, msg string) {
	d.emitRisk(kind, msg, d.sampler.CombinedRiskAt(d.position))
}

func (d *Driver) emitRisk(kind models.MissionEventKind, msg string, risk float64) {
	if d.pub == nil {
		return
	}
	d.pub.Broadcast(models.MissionEvent{
		Kind:      kind,
		State:     d.state,
		Position:  d.position,
		Segment:   d.segment,
		Risk:      risk,
		Battery:   d.battery,
		Message:   msg,
		Timestamp: time.Now(),
	})
}

func lerp(a, b models.Coordinates, t float64) models.Coordinates {
	return models.Coordinates{
		Latitude:  a.Latitude + (b.Latitude-a.Latitude)*t,
		Longitude: a.Longitude + (b.Longitude-a.Longitude)*t,
	}
}
