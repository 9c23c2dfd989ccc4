package geo

import (
	"testing"

	"github.com/mr1hm/go-flight-planner/internal/models"
)

func TestDistanceKm(t *testing.T) {
	sf := models.Coordinates{Latitude: 37.7749, Longitude: -122.4194}
	la := models.Coordinates{Latitude: 34.0522, Longitude: -118.2437}

	d := DistanceKm(sf, la)
	if d < 540 || d > 580 {
		t.Errorf("SF-LA distance = %f km, want ~559", d)
	}

	if z := DistanceKm(sf, sf); z != 0 {
		t.Errorf("zero-length distance = %f", z)
	}
}
