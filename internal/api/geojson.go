package api

import (
	"github.com/mr1hm/go-flight-planner/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry coordinates follow GeoJSON nesting: []float64 for Point,
// [][]float64 for LineString, [][][]float64 for Polygon.
type Geometry struct {
	Type        string `json:"type"`
	Coordinates any    `json:"coordinates"`
}

func routeToGeoJSON(route models.Route, properties map[string]any) Feature {
	coords := make([][]float64, 0, len(route))
	for _, p := range route {
		coords = append(coords, []float64{p.Longitude, p.Latitude})
	}
	return Feature{
		Type: "Feature",
		Geometry: Geometry{
			Type:        "LineString",
			Coordinates: coords,
		},
		Properties: properties,
	}
}

func zonesToGeoJSON(zones []models.NoFlyZone) FeatureCollection {
	features := make([]Feature, 0, len(zones))

	for _, z := range zones {
		ring := make([][]float64, 0, len(z.Vertices)+1)
		for _, v := range z.Vertices {
			ring = append(ring, []float64{v.Longitude, v.Latitude})
		}
		if len(ring) > 0 {
			ring = append(ring, ring[0]) // GeoJSON rings close explicitly
		}
		features = append(features, Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Polygon",
				Coordinates: [][][]float64{ring},
			},
			Properties: map[string]any{
				"id":         z.ID,
				"name":       z.Name,
				"created_at": z.CreatedAt,
			},
		})
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
