package planner

import (
	"container/heap"
	"math"

	"github.com/mr1hm/go-flight-planner/internal/geo"
	"github.com/mr1hm/go-flight-planner/internal/models"
)

// RiskSurface is the combined hazard the planner searches over.
// Implementations must return the maximum of all hazard sources for
// the cell; a value >= 100 marks the cell as a wall.
type RiskSurface interface {
	CombinedRisk(x, y int) float64
}

// Planner runs a risk-weighted A* search over an n-by-n grid. The
// tolerance parameter trades distance against risk: at 0 the search is
// maximally risk-averse, at 100 it ignores risk entirely.
type Planner struct {
	grid    *geo.Grid
	surface RiskSurface
}

func New(grid *geo.Grid, surface RiskSurface) *Planner {
	return &Planner{grid: grid, surface: surface}
}

type node struct {
	x, y   int
	g      float64 // accumulated cost
	f      float64 // g + heuristic
	parent *node
	index  int // heap bookkeeping
	closed bool
}

type frontier []*node

func (f frontier) Len() int            { return len(f) }
func (f frontier) Less(i, j int) bool  { return f[i].f < f[j].f }
func (f frontier) Swap(i, j int)       { f[i], f[j] = f[j], f[i]; f[i].index = i; f[j].index = j }
func (f *frontier) Push(x any)         { n := x.(*node); n.index = len(*f); *f = append(*f, n) }
func (f *frontier) Pop() any {
	old := *f
	n := old[len(old)-1]
	old[len(old)-1] = nil
	*f = old[:len(old)-1]
	return n
}

// FindPath searches from start to goal and returns the ordered cell
// centers of the best route, start and goal inclusive. An empty route
// is the sole failure signal: the goal is unreachable at any cost.
func (p *Planner) FindPath(start, goal models.Coordinates, riskTolerance float64) models.Route {
	if riskTolerance < 0 {
		riskTolerance = 0
	} else if riskTolerance > 100 {
		riskTolerance = 100
	}
	riskWeight := (100 - riskTolerance) / 2

	sx, sy := p.grid.Cell(start)
	gx, gy := p.grid.Cell(goal)
	if p.surface.CombinedRisk(gx, gy) >= 100 || p.surface.CombinedRisk(sx, sy) >= 100 {
		return nil
	}

	nodes := make(map[int]*node)
	n := p.grid.Size()
	key := func(x, y int) int { return y*n + x }
	h := func(x, y int) float64 { return math.Hypot(float64(x-gx), float64(y-gy)) }

	startNode := &node{x: sx, y: sy, f: h(sx, sy)}
	nodes[key(sx, sy)] = startNode

	open := frontier{}
	heap.Init(&open)
	heap.Push(&open, startNode)

	for open.Len() > 0 {
		cur := heap.Pop(&open).(*node)
		if cur.closed {
			continue
		}
		cur.closed = true

		if cur.x == gx && cur.y == gy {
			return p.reconstruct(cur)
		}

		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := cur.x+dx, cur.y+dy
				if !p.grid.In(nx, ny) {
					continue
				}
				risk := p.surface.CombinedRisk(nx, ny)
				if risk >= 100 {
					continue
				}

				step := 1.0
				if dx != 0 && dy != 0 {
					step = math.Sqrt2
				}
				g := cur.g + step + risk*riskWeight/10

				existing, seen := nodes[key(nx, ny)]
				if seen {
					if existing.closed || g >= existing.g {
						continue
					}
					existing.g = g
					existing.f = g + h(nx, ny)
					existing.parent = cur
					heap.Fix(&open, existing.index)
					continue
				}

				next := &node{x: nx, y: ny, g: g, f: g + h(nx, ny), parent: cur}
				nodes[key(nx, ny)] = next
				heap.Push(&open, next)
			}
		}
	}

	return nil
}

func (p *Planner) reconstruct(goal *node) models.Route {
	var count int
	for n := goal; n != nil; n = n.parent {
		count++
	}
	route := make(models.Route, count)
	for n := goal; n != nil; n = n.parent {
		count--
		route[count] = p.grid.Center(n.x, n.y)
	}
	return route
}
