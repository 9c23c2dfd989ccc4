package terrain

import (
	"math"

	"github.com/mr1hm/go-flight-planner/internal/geo"
	"github.com/mr1hm/go-flight-planner/internal/models"
)

const (
	// BaseRisk is the resting hazard of unobstructed terrain.
	BaseRisk = 10.0
	// BlockRisk marks a cell covered by an obstacle polygon. It is the
	// sole never-traversable value and is never altered by diffusion.
	BlockRisk = 100.0

	diffusionPasses    = 2
	diffusionThreshold = 15.0
	diffusionDecay     = 0.6
)

// Field holds the n-by-n terrain risk surface: a base value everywhere,
// exactly 100 inside obstacle polygons, and a diffused gradient around
// them. Mutated only by SetObstacles.
type Field struct {
	grid *geo.Grid
	n    int
	risk []float64 // row-major, y*n+x
}

func NewField(grid *geo.Grid) *Field {
	f := &Field{grid: grid, n: grid.Size()}
	f.risk = make([]float64, f.n*f.n)
	f.reset()
	return f
}

func (f *Field) reset() {
	for i := range f.risk {
		f.risk[i] = BaseRisk
	}
}

// RiskAt returns the terrain risk at cell (x, y). Out-of-range
// coordinates read as a block so callers never walk off the grid.
func (f *Field) RiskAt(x, y int) float64 {
	if !f.grid.In(x, y) {
		return BlockRisk
	}
	return f.risk[y*f.n+x]
}

// SetObstacles resets the surface to the base value, rasterizes every
// polygon into absolute-block cells, then spreads a bounded gradient
// outward from them.
func (f *Field) SetObstacles(polygons []models.Polygon) {
	f.reset()

	for y := 0; y < f.n; y++ {
		for x := 0; x < f.n; x++ {
			center := f.grid.Center(x, y)
			for _, p := range polygons {
				if pointInPolygon(center, p) {
					f.risk[y*f.n+x] = BlockRisk
					break
				}
			}
		}
	}

	for pass := 0; pass < diffusionPasses; pass++ {
		f.diffuse()
	}
}

// diffuse runs one pass of the max-and-decay rule: a non-block cell
// whose strongest 8-connected neighbor exceeds the threshold is raised
// to floor(max*decay) if that is higher than its current risk. Values
// are only ever raised.
func (f *Field) diffuse() {
	prev := make([]float64, len(f.risk))
	copy(prev, f.risk)

	for y := 0; y < f.n; y++ {
		for x := 0; x < f.n; x++ {
			if prev[y*f.n+x] >= BlockRisk {
				continue
			}
			var maxNeighbor float64
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if !f.grid.In(nx, ny) {
						continue
					}
					if r := prev[ny*f.n+nx]; r > maxNeighbor {
						maxNeighbor = r
					}
				}
			}
			if maxNeighbor <= diffusionThreshold {
				continue
			}
			if spread := math.Floor(maxNeighbor * diffusionDecay); spread > f.risk[y*f.n+x] {
				f.risk[y*f.n+x] = spread
			}
		}
	}
}

// pointInPolygon applies the even-odd ray-casting rule on geographic
// coordinates, treating longitude as x and latitude as y.
func pointInPolygon(c models.Coordinates, poly models.Polygon) bool {
	if len(poly) < 3 {
		return false
	}
	inside := false
	j := len(poly) - 1
	for i := 0; i < len(poly); i++ {
		yi, yj := poly[i].Latitude, poly[j].Latitude
		xi, xj := poly[i].Longitude, poly[j].Longitude
		if (yi > c.Latitude) != (yj > c.Latitude) &&
			c.Longitude < (xj-xi)*(c.Latitude-yi)/(yj-yi)+xi {
			inside = !inside
		}
		j = i
	}
	return inside
}
