package weather

import (
	"math"
	"math/rand/v2"

	"github.com/mr1hm/go-flight-planner/internal/models"
)

type SystemKind string

const (
	KindStorm SystemKind = "STORM"
	KindWind  SystemKind = "WIND"
)

// System is one moving weather cell. Positions and radii are in grid
// units; intensity is in [0.5, 1.0].
type System struct {
	Kind      SystemKind
	X, Y      float64
	Radius    float64
	Intensity float64
	DriftX    float64
	DriftY    float64
}

// Channel scales applied to the linear falloff of each system, and the
// piecewise-linear risk formula derived from the clamped channels.
const (
	stormWindScale = 70.0
	stormRainScale = 40.0
	stormVisScale  = 60.0
	gustWindScale  = 50.0
	gustVisScale   = 20.0

	windJitterMax = 5.0

	riskWindFloor = 20.0
	riskRainFloor = 10.0
	riskVisFloor  = 80.0
	riskWindMult  = 1.2
	riskRainMult  = 1.6
	riskVisMult   = 1.0

	maxWind = 100.0
	maxRain = 50.0
	maxVis  = 100.0
	maxRisk = 100.0
)

// Field owns the set of weather systems over an n-by-n grid. Advance and
// Reinitialize are writer operations; SampleAt is a pure read of
// current state and is safe for concurrent readers while no writer is
// running.
type Field struct {
	n       int
	systems []System
	rng     *rand.Rand
	epoch   uint64
}

// NewField seeds between minSystems and maxSystems systems at random
// positions. The same seed always produces the same field.
func NewField(n int, seed int64, minSystems, maxSystems int) *Field {
	if minSystems < 1 {
		minSystems = 1
	}
	if maxSystems < minSystems {
		maxSystems = minSystems
	}
	f := &Field{
		n:   n,
		rng: rand.New(rand.NewPCG(uint64(seed), 0)),
	}
	f.Reinitialize(minSystems, maxSystems)
	return f
}

// Reinitialize discards all systems and generates a fresh set.
func (f *Field) Reinitialize(minSystems, maxSystems int) {
	count := minSystems + f.rng.IntN(maxSystems-minSystems+1)
	n := float64(f.n)

	f.systems = make([]System, 0, count)
	for i := 0; i < count; i++ {
		kind := KindStorm
		if f.rng.IntN(2) == 1 {
			kind = KindWind
		}
		heading := f.rng.Float64() * 2 * math.Pi
		speed := 0.1 + f.rng.Float64()*0.4 // cells per unit time
		f.systems = append(f.systems, System{
			Kind:      kind,
			X:         f.rng.Float64() * n,
			Y:         f.rng.Float64() * n,
			Radius:    n/6 + f.rng.Float64()*n/6,
			Intensity: 0.5 + f.rng.Float64()*0.5,
			DriftX:    math.Cos(heading) * speed,
			DriftY:    math.Sin(heading) * speed,
		})
	}
	f.epoch++
}

// Advance moves every system by drift*dt with toroidal wraparound.
// The torus is a simulation-continuity artifact only: systems leaving
// one edge re-enter from the opposite edge.
func (f *Field) Advance(dt float64) {
	n := float64(f.n)
	for i := range f.systems {
		s := &f.systems[i]
		s.X = wrap(s.X+s.DriftX*dt, n)
		s.Y = wrap(s.Y+s.DriftY*dt, n)
	}
	f.epoch++
}

// SetSystems replaces the system set wholesale. Hosts use this to
// inject scripted scenarios; normal operation runs on the generated
// set. Writer operation, same discipline as Advance.
func (f *Field) SetSystems(systems []System) {
	f.systems = append([]System(nil), systems...)
	f.epoch++
}

// Systems returns a copy of the current system set.
func (f *Field) Systems() []System {
	out := make([]System, len(f.systems))
	copy(out, f.systems)
	return out
}

// SampleAt computes the derived hazard reading at a point in grid
// units. Each system within its radius contributes a linear falloff
// 1-d/radius scaled by intensity; contributions sum across overlapping
// systems before clamping.
func (f *Field) SampleAt(x, y float64) models.WeatherSample {
	var wind, rain, visLoss float64

	for i := range f.systems {
		s := &f.systems[i]
		d := math.Hypot(x-s.X, y-s.Y)
		if d >= s.Radius {
			continue
		}
		falloff := (1 - d/s.Radius) * s.Intensity
		switch s.Kind {
		case KindStorm:
			wind += stormWindScale * falloff
			rain += stormRainScale * falloff
			visLoss += stormVisScale * falloff
		case KindWind:
			wind += gustWindScale * falloff
			visLoss += gustVisScale * falloff
		}
	}

	wind += f.jitter(x, y)

	sample := models.WeatherSample{
		Wind:       clampCh(wind, maxWind),
		Rain:       clampCh(rain, maxRain),
		Visibility: clampCh(maxVis-visLoss, maxVis),
	}
	sample.Risk = riskFrom(sample)
	return sample
}

// SampleCell samples at the grid coordinate itself.
func (f *Field) SampleCell(x, y int) models.WeatherSample {
	return f.SampleAt(float64(x), float64(y))
}

// riskFrom derives the risk score from the clamped channels: wind above
// 20, rain above 10 and visibility deficit below 80 each accumulate
// with their own multiplier, capped at 100.
func riskFrom(s models.WeatherSample) float64 {
	risk := riskWindMult*math.Max(0, s.Wind-riskWindFloor) +
		riskRainMult*math.Max(0, s.Rain-riskRainFloor) +
		riskVisMult*math.Max(0, riskVisFloor-s.Visibility)
	return clampCh(risk, maxRisk)
}

// jitter is a bounded deterministic perturbation derived from the
// sample position and the current epoch. A shared live RNG here would
// race under concurrent readers; hashing keeps SampleAt pure.
func (f *Field) jitter(x, y float64) float64 {
	h := math.Float64bits(x)*0x9E3779B97F4A7C15 ^ math.Float64bits(y)*0xBF58476D1CE4E5B9 ^ f.epoch
	h ^= h >> 33
	h *= 0xFF51AFD7ED558CCD
	h ^= h >> 33
	return float64(h%1024) / 1024 * windJitterMax
}

func wrap(v, n float64) float64 {
	v = math.Mod(v, n)
	if v < 0 {
		v += n
	}
	return v
}

func clampCh(v, max float64) float64 {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}
