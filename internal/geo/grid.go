package geo

import (
	"math"

	"github.com/mr1hm/go-flight-planner/internal/models"
)

// Grid maps between a geographic bounding region and a fixed N-by-N cell
// grid. It is immutable for the lifetime of a session; every other
// component addresses space through it.
//
// Cell x grows eastward (longitude), y grows northward (latitude).
type Grid struct {
	region models.Region
	n      int
}

func NewGrid(region models.Region, n int) *Grid {
	if n < 2 {
		n = 2
	}
	return &Grid{region: region, n: n}
}

func (g *Grid) Size() int             { return g.n }
func (g *Grid) Region() models.Region { return g.region }

// Cell returns the grid coordinate containing the given point.
// Out-of-region points are clamped to the nearest valid cell, never
// rejected.
func (g *Grid) Cell(c models.Coordinates) (int, int) {
	fx := (c.Longitude - g.region.West) / (g.region.East - g.region.West) * float64(g.n)
	fy := (c.Latitude - g.region.South) / (g.region.North - g.region.South) * float64(g.n)
	return clamp(int(math.Floor(fx)), g.n), clamp(int(math.Floor(fy)), g.n)
}

// Center returns the geographic center of cell (x, y). Coordinates
// outside [0,n) are clamped first.
func (g *Grid) Center(x, y int) models.Coordinates {
	x, y = clamp(x, g.n), clamp(y, g.n)
	return models.Coordinates{
		Latitude:  g.region.South + (float64(y)+0.5)/float64(g.n)*(g.region.North-g.region.South),
		Longitude: g.region.West + (float64(x)+0.5)/float64(g.n)*(g.region.East-g.region.West),
	}
}

// Locate returns the continuous grid-unit position of a point, clamped
// into [0, n). Weather sampling uses this for sub-cell precision.
func (g *Grid) Locate(c models.Coordinates) (float64, float64) {
	fx := (c.Longitude - g.region.West) / (g.region.East - g.region.West) * float64(g.n)
	fy := (c.Latitude - g.region.South) / (g.region.North - g.region.South) * float64(g.n)
	return clampF(fx, g.n), clampF(fy, g.n)
}

// In reports whether (x, y) is a valid cell coordinate.
func (g *Grid) In(x, y int) bool {
	return x >= 0 && x < g.n && y >= 0 && y < g.n
}

func clamp(v, n int) int {
	if v < 0 {
		return 0
	}
	if v >= n {
		return n - 1
	}
	return v
}

func clampF(v float64, n int) float64 {
	if v < 0 {
		return 0
	}
	if max := float64(n) - 1e-9; v > max {
		return max
	}
	return v
}
