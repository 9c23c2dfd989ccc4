package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mr1hm/go-flight-planner/internal/events"
	"github.com/mr1hm/go-flight-planner/internal/mission"
	"github.com/mr1hm/go-flight-planner/internal/models"
	"github.com/mr1hm/go-flight-planner/internal/repository"
	"github.com/mr1hm/go-flight-planner/internal/weather"
)

// Engine is the planning and simulation core the handlers expose.
type Engine interface {
	PlanRoute(start, goal models.Coordinates, riskTolerance float64) models.Route
	SampleRisk(c models.Coordinates) float64
	SampleWeather(c models.Coordinates) models.WeatherSample
	WeatherSystems() []weather.System
	EstimateUsage(start, goal models.Coordinates, batteryRangeKm float64) float64
	SetNoFlyZones(polygons []models.Polygon)
	StartMission(route models.Route) error
	PauseMission() error
	ResumeMission() error
	AbortMission() error
	MissionStatus() models.MissionStatus
}

type Handler struct {
	engine      Engine
	zones       repository.ZoneRepository
	broadcaster *events.Broadcaster
	defaultTol  float64
}

func NewHandler(engine Engine, zones repository.ZoneRepository, broadcaster *events.Broadcaster, defaultTolerance float64) *Handler {
	return &Handler{
		engine:      engine,
		zones:       zones,
		broadcaster: broadcaster,
		defaultTol:  defaultTolerance,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.health)

	r.POST("/api/route", h.planRoute)
	r.GET("/api/risk", h.sampleRisk)
	r.GET("/api/weather", h.sampleWeather)
	r.GET("/api/weather/systems", h.weatherSystems)

	r.GET("/api/zones", h.listZones)
	r.POST("/api/zones", h.createZone)
	r.DELETE("/api/zones/:id", h.deleteZone)

	r.POST("/api/missions", h.startMission)
	r.GET("/api/missions/current", h.missionStatus)
	r.POST("/api/missions/pause", h.pauseMission)
	r.POST("/api/missions/resume", h.resumeMission)
	r.POST("/api/missions/abort", h.abortMission)
	r.GET("/api/missions/events", h.streamEvents)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type planRequest struct {
	Start          models.Coordinates `json:"start" binding:"required"`
	Goal           models.Coordinates `json:"goal" binding:"required"`
	Tolerance      *float64           `json:"tolerance"`
	BatteryRangeKm float64            `json:"battery_range_km"`
}

func (h *Handler) planRoute(c *gin.Context) {
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid plan request: " + err.Error()})
		return
	}

	tolerance := h.defaultTol
	if req.Tolerance != nil {
		tolerance = *req.Tolerance
	}

	route := h.engine.PlanRoute(req.Start, req.Goal, tolerance)

	props := map[string]any{
		"found":     !route.Empty(),
		"points":    len(route),
		"tolerance": tolerance,
	}
	if req.BatteryRangeKm > 0 {
		props["battery_usage_estimate"] = h.engine.EstimateUsage(req.Start, req.Goal, req.BatteryRangeKm)
	}

	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, routeToGeoJSON(route, props))
}

func (h *Handler) sampleRisk(c *gin.Context) {
	point, ok := pointParams(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"risk": h.engine.SampleRisk(point)})
}

func (h *Handler) sampleWeather(c *gin.Context) {
	point, ok := pointParams(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, h.engine.SampleWeather(point))
}

func (h *Handler) weatherSystems(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"systems": h.engine.WeatherSystems()})
}

func (h *Handler) listZones(c *gin.Context) {
	zones, err := h.zones.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list zones"})
		return
	}
	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusOK, zonesToGeoJSON(zones))
}

type zoneRequest struct {
	Name     string         `json:"name" binding:"required"`
	Vertices models.Polygon `json:"vertices" binding:"required"`
}

func (h *Handler) createZone(c *gin.Context) {
	var req zoneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid zone request: " + err.Error()})
		return
	}
	if len(req.Vertices) < 3 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a zone polygon needs at least 3 vertices"})
		return
	}

	zone := &models.NoFlyZone{
		ID:        "zone_" + uuid.NewString(),
		Name:      req.Name,
		Vertices:  req.Vertices,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.zones.Add(c.Request.Context(), zone); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save zone"})
		return
	}
	if !h.reloadZones(c) {
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": zone.ID})
}

func (h *Handler) deleteZone(c *gin.Context) {
	if err := h.zones.Delete(c.Request.Context(), c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete zone"})
		return
	}
	if !h.reloadZones(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("id")})
}

// reloadZones pushes the persisted zone set into the engine's terrain
// field.
func (h *Handler) reloadZones(c *gin.Context) bool {
	zones, err := h.zones.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to reload zones"})
		return false
	}
	polygons := make([]models.Polygon, 0, len(zones))
	for _, z := range zones {
		polygons = append(polygons, z.Vertices)
	}
	h.engine.SetNoFlyZones(polygons)
	return true
}

type missionRequest struct {
	Start     models.Coordinates `json:"start" binding:"required"`
	Goal      models.Coordinates `json:"goal" binding:"required"`
	Tolerance *float64           `json:"tolerance"`
}

func (h *Handler) startMission(c *gin.Context) {
	var req missionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid mission request: " + err.Error()})
		return
	}

	tolerance := h.defaultTol
	if req.Tolerance != nil {
		tolerance = *req.Tolerance
	}

	route := h.engine.PlanRoute(req.Start, req.Goal, tolerance)
	if route.Empty() {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "no admissible route at this tolerance"})
		return
	}

	if err := h.engine.StartMission(route); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, mission.ErrMissionUnderway) || errors.Is(err, mission.ErrRouteTooShort) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.Header("Content-Type", "application/geo+json")
	c.JSON(http.StatusCreated, routeToGeoJSON(route, map[string]any{
		"found":     true,
		"points":    len(route),
		"tolerance": tolerance,
	}))
}

func (h *Handler) missionStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.engine.MissionStatus())
}

func (h *Handler) pauseMission(c *gin.Context)  { h.missionControl(c, h.engine.PauseMission) }
func (h *Handler) resumeMission(c *gin.Context) { h.missionControl(c, h.engine.ResumeMission) }
func (h *Handler) abortMission(c *gin.Context)  { h.missionControl(c, h.engine.AbortMission) }

func (h *Handler) missionControl(c *gin.Context, op func() error) {
	if err := op(); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, mission.ErrNoActiveMission) {
			status = http.StatusConflict
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.engine.MissionStatus())
}

// streamEvents pushes mission lifecycle events to the client over SSE
// until the client disconnects or the broadcaster shuts down.
func (h *Handler) streamEvents(c *gin.Context) {
	id, ch := h.broadcaster.Subscribe()
	defer h.broadcaster.Unsubscribe(id)

	c.Stream(func(w io.Writer) bool {
		select {
		case e, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("mission", e)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}

// pointParams reads lat/lon query parameters, rejecting anything
// unparseable. Range checking is the engine's job: geographically
// out-of-range points are clamped, not rejected.
func pointParams(c *gin.Context) (models.Coordinates, bool) {
	lat, errLat := strconv.ParseFloat(c.Query("lat"), 64)
	lon, errLon := strconv.ParseFloat(c.Query("lon"), 64)
	if errLat != nil || errLon != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "lat and lon query parameters are required"})
		return models.Coordinates{}, false
	}
	return models.Coordinates{Latitude: lat, Longitude: lon}, true
}
