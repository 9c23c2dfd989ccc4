package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server  ServerConfig
	Region  RegionConfig
	Grid    GridConfig
	Weather WeatherConfig
	Mission MissionConfig
	Planner PlannerConfig
	DB      DatabaseConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

// RegionConfig is the geographic bounding box the session operates in.
type RegionConfig struct {
	South float64
	North float64
	West  float64
	East  float64
}

type GridConfig struct {
	Size int
}

type WeatherConfig struct {
	Seed         int64
	MinSystems   int
	MaxSystems   int
	TickInterval time.Duration
	TickDelta    float64 // simulated drift time per hazard tick
}

type MissionConfig struct {
	TickInterval    time.Duration
	ProgressStep    float64
	BatteryDrain    float64
	DangerRisk      float64
	WarningRisk     float64
	LowBattery      float64
	ReplanTolerance float64
}

type PlannerConfig struct {
	DefaultTolerance float64
}

type DatabaseConfig struct {
	Path string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Region: RegionConfig{
			South: getEnvFloat("REGION_SOUTH", 37.2),
			North: getEnvFloat("REGION_NORTH", 37.9),
			West:  getEnvFloat("REGION_WEST", -122.6),
			East:  getEnvFloat("REGION_EAST", -121.9),
		},
		Grid: GridConfig{
			Size: getEnvInt("GRID_SIZE", 50),
		},
		Weather: WeatherConfig{
			Seed:         int64(getEnvInt("WEATHER_SEED", 0)),
			MinSystems:   getEnvInt("WEATHER_MIN_SYSTEMS", 3),
			MaxSystems:   getEnvInt("WEATHER_MAX_SYSTEMS", 5),
			TickInterval: getEnvDuration("WEATHER_TICK_INTERVAL", 2*time.Second),
			TickDelta:    getEnvFloat("WEATHER_TICK_DELTA", 1.0),
		},
		Mission: MissionConfig{
			TickInterval:    getEnvDuration("MISSION_TICK_INTERVAL", time.Second),
			ProgressStep:    getEnvFloat("MISSION_PROGRESS_STEP", 0.1),
			BatteryDrain:    getEnvFloat("MISSION_BATTERY_DRAIN", 0.5),
			DangerRisk:      getEnvFloat("MISSION_DANGER_RISK", 60),
			WarningRisk:     getEnvFloat("MISSION_WARNING_RISK", 30),
			LowBattery:      getEnvFloat("MISSION_LOW_BATTERY", 20),
			ReplanTolerance: getEnvFloat("MISSION_REPLAN_TOLERANCE", 10),
		},
		Planner: PlannerConfig{
			DefaultTolerance: getEnvFloat("PLANNER_DEFAULT_TOLERANCE", 50),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "./data/flight-planner.db"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Region.South >= c.Region.North {
		return fmt.Errorf("region south (%f) must be below north (%f)", c.Region.South, c.Region.North)
	}
	if c.Region.West >= c.Region.East {
		return fmt.Errorf("region west (%f) must be below east (%f)", c.Region.West, c.Region.East)
	}

	if c.Grid.Size < 2 || c.Grid.Size > 1000 {
		return fmt.Errorf("grid size must be in [2,1000], got %d", c.Grid.Size)
	}

	if c.Weather.MinSystems < 1 || c.Weather.MaxSystems < c.Weather.MinSystems {
		return fmt.Errorf("invalid weather system count range [%d,%d]", c.Weather.MinSystems, c.Weather.MaxSystems)
	}
	if c.Weather.TickInterval < 100*time.Millisecond {
		return fmt.Errorf("weather tick interval must be at least 100ms")
	}

	if c.Mission.TickInterval < 100*time.Millisecond {
		return fmt.Errorf("mission tick interval must be at least 100ms")
	}
	if c.Mission.ProgressStep <= 0 || c.Mission.ProgressStep > 1 {
		return fmt.Errorf("mission progress step must be in (0,1], got %f", c.Mission.ProgressStep)
	}
	if c.Mission.BatteryDrain <= 0 {
		return fmt.Errorf("mission battery drain must be positive, got %f", c.Mission.BatteryDrain)
	}
	if c.Mission.WarningRisk >= c.Mission.DangerRisk {
		return fmt.Errorf("warning risk (%f) must be below danger risk (%f)", c.Mission.WarningRisk, c.Mission.DangerRisk)
	}

	if c.Planner.DefaultTolerance < 0 || c.Planner.DefaultTolerance > 100 {
		return fmt.Errorf("planner default tolerance must be in [0,100], got %f", c.Planner.DefaultTolerance)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
