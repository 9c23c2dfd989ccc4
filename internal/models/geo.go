package models

type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Region is the geographic bounding box the session operates in.
type Region struct {
	South float64
	North float64
	West  float64
	East  float64
}

// Polygon is an ordered list of geographic vertices. The last vertex is
// implicitly connected back to the first.
type Polygon []Coordinates

// Route is an ordered sequence of geographic waypoints, each the center
// of a traversed grid cell. Treated as immutable once returned.
type Route []Coordinates

func (r Route) Empty() bool { return len(r) == 0 }
