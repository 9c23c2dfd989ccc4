package main

import (
	"encoding/json"
	"log/slog"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/mr1hm/go-flight-planner/internal/config"
	"github.com/mr1hm/go-flight-planner/internal/engine"
	"github.com/mr1hm/go-flight-planner/internal/logging"
	"github.com/mr1hm/go-flight-planner/internal/models"
)

// route-plan runs a single planning pass and prints the waypoints as
// JSON. Start and goal come from PLAN_START_LAT/LON and
// PLAN_GOAL_LAT/LON; tolerance from PLAN_TOLERANCE.
func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	start := models.Coordinates{
		Latitude:  envFloat("PLAN_START_LAT", cfg.Region.South),
		Longitude: envFloat("PLAN_START_LON", cfg.Region.West),
	}
	goal := models.Coordinates{
		Latitude:  envFloat("PLAN_GOAL_LAT", cfg.Region.North),
		Longitude: envFloat("PLAN_GOAL_LON", cfg.Region.East),
	}
	tolerance := envFloat("PLAN_TOLERANCE", cfg.Planner.DefaultTolerance)

	eng := engine.New(cfg, nil)
	route := eng.PlanRoute(start, goal, tolerance)
	if route.Empty() {
		slog.Error("no admissible route", "tolerance", tolerance)
		os.Exit(1)
	}

	slog.Info("route planned", "points", len(route), "tolerance", tolerance)
	if err := json.NewEncoder(os.Stdout).Encode(route); err != nil {
		logging.Fatalf("Failed to encode route: %v", err)
	}
}

func envFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}
