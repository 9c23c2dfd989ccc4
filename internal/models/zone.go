package models

import "time"

// NoFlyZone is an operator-defined forbidden polygon, persisted by the
// host and rasterized into the terrain grid on load.
type NoFlyZone struct {
	ID        string
	Name      string
	Vertices  Polygon
	CreatedAt time.Time
}
