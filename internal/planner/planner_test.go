package planner

import (
	"math"
	"testing"

	"github.com/mr1hm/go-flight-planner/internal/geo"
	"github.com/mr1hm/go-flight-planner/internal/models"
)

var testRegion = models.Region{South: 0, North: 1, West: 0, East: 1}

// gridSurface is a hand-authored risk surface for tests.
type gridSurface struct {
	n    int
	base float64
	risk map[[2]int]float64
}

func newSurface(n int) *gridSurface {
	return &gridSurface{n: n, base: 10, risk: make(map[[2]int]float64)}
}

func (s *gridSurface) set(x, y int, r float64) { s.risk[[2]int{x, y}] = r }

func (s *gridSurface) CombinedRisk(x, y int) float64 {
	if r, ok := s.risk[[2]int{x, y}]; ok {
		return r
	}
	return s.base
}

func route2cells(g *geo.Grid, r models.Route) [][2]int {
	cells := make([][2]int, len(r))
	for i, c := range r {
		x, y := g.Cell(c)
		cells[i] = [2]int{x, y}
	}
	return cells
}

func TestFindPath_StraightLineWhenUniform(t *testing.T) {
	g := geo.NewGrid(testRegion, 10)
	p := New(g, newSurface(10))

	route := p.FindPath(g.Center(0, 5), g.Center(9, 5), 50)
	if len(route) != 10 {
		t.Fatalf("uniform surface route has %d points, want 10", len(route))
	}
	cells := route2cells(g, route)
	if cells[0] != [2]int{0, 5} || cells[9] != [2]int{9, 5} {
		t.Errorf("route endpoints %v .. %v, want (0,5) .. (9,5)", cells[0], cells[9])
	}
}

func TestFindPath_EightConnected(t *testing.T) {
	g := geo.NewGrid(testRegion, 16)
	p := New(g, newSurface(16))

	route := p.FindPath(g.Center(1, 2), g.Center(13, 11), 30)
	if route.Empty() {
		t.Fatal("no route on an open surface")
	}
	cells := route2cells(g, route)
	for i := 1; i < len(cells); i++ {
		dx := abs(cells[i][0] - cells[i-1][0])
		dy := abs(cells[i][1] - cells[i-1][1])
		if dx > 1 || dy > 1 || (dx == 0 && dy == 0) {
			t.Fatalf("step %d: %v -> %v is not an 8-connected move", i, cells[i-1], cells[i])
		}
	}
}

func TestFindPath_WallsExcludedAtAnyTolerance(t *testing.T) {
	g := geo.NewGrid(testRegion, 10)
	s := newSurface(10)
	// Wall across column 5 with one opening at y=0.
	for y := 1; y < 10; y++ {
		s.set(5, y, 100)
	}
	p := New(g, s)

	for _, tol := range []float64{0, 50, 100} {
		route := p.FindPath(g.Center(0, 5), g.Center(9, 5), tol)
		if route.Empty() {
			t.Fatalf("tolerance %v: no route through the opening", tol)
		}
		for _, cell := range route2cells(g, route) {
			if cell[0] == 5 && cell[1] != 0 {
				t.Fatalf("tolerance %v: route passes through wall cell %v", tol, cell)
			}
		}
	}
}

func TestFindPath_NoRouteWhenWalledOff(t *testing.T) {
	g := geo.NewGrid(testRegion, 20)
	s := newSurface(20)
	// Columns 9-11 blocked across every row: the goal side is
	// unreachable and the empty route is the sole failure signal.
	for x := 9; x <= 11; x++ {
		for y := 0; y < 20; y++ {
			s.set(x, y, 100)
		}
	}
	p := New(g, s)

	route := p.FindPath(g.Center(0, 10), g.Center(19, 10), 0)
	if !route.Empty() {
		t.Fatalf("expected empty route, got %d points", len(route))
	}
}

func TestFindPath_DetoursAroundBlockedColumns(t *testing.T) {
	g := geo.NewGrid(testRegion, 20)
	s := newSurface(20)
	// Columns 9-11 blocked for rows 0-16, open corridor at the top.
	for x := 9; x <= 11; x++ {
		for y := 0; y <= 16; y++ {
			s.set(x, y, 100)
		}
	}
	p := New(g, s)

	route := p.FindPath(g.Center(0, 10), g.Center(19, 10), 0)
	if route.Empty() {
		t.Fatal("no route despite open corridor")
	}
	for _, cell := range route2cells(g, route) {
		if cell[0] >= 9 && cell[0] <= 11 && cell[1] <= 16 {
			t.Fatalf("route enters blocked cell %v", cell)
		}
	}
}

func TestFindPath_ToleranceTradesDistanceForRisk(t *testing.T) {
	g := geo.NewGrid(testRegion, 12)
	s := newSurface(12)
	// A risky strip across the direct line; passable but expensive.
	for x := 0; x < 12; x++ {
		for y := 4; y <= 6; y++ {
			s.set(x, y, 90)
		}
	}
	// Low-risk lane along the bottom edge.
	for x := 0; x < 12; x++ {
		s.set(x, 0, 0)
		s.set(x, 1, 0)
	}
	p := New(g, s)

	start, goal := g.Center(0, 5), g.Center(11, 5)

	averse := p.FindPath(start, goal, 0)
	indifferent := p.FindPath(start, goal, 100)
	if averse.Empty() || indifferent.Empty() {
		t.Fatal("expected routes at both tolerances")
	}

	// Risk-indifferent planning degenerates to pure shortest path.
	if len(indifferent) != 12 {
		t.Errorf("tolerance 100 route has %d points, want 12 (straight line)", len(indifferent))
	}
	// The averse route must leave the risky strip.
	left := false
	for _, cell := range route2cells(g, averse) {
		if cell[1] < 4 || cell[1] > 6 {
			left = true
			break
		}
	}
	if !left {
		t.Error("tolerance 0 route never left the high-risk strip")
	}

	if pathLength(averse) < pathLength(indifferent) {
		t.Errorf("averse route is geometrically shorter than the tolerance-100 optimum: %f < %f",
			pathLength(averse), pathLength(indifferent))
	}
}

func TestFindPath_StartEqualsGoal(t *testing.T) {
	g := geo.NewGrid(testRegion, 10)
	p := New(g, newSurface(10))

	route := p.FindPath(g.Center(3, 3), g.Center(3, 3), 50)
	if len(route) != 1 {
		t.Fatalf("start==goal route has %d points, want 1", len(route))
	}
}

func pathLength(r models.Route) float64 {
	var total float64
	for i := 1; i < len(r); i++ {
		total += math.Hypot(r[i].Latitude-r[i-1].Latitude, r[i].Longitude-r[i-1].Longitude)
	}
	return total
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
