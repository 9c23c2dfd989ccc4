package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/mr1hm/go-flight-planner/internal/api"
	"github.com/mr1hm/go-flight-planner/internal/config"
	"github.com/mr1hm/go-flight-planner/internal/engine"
	"github.com/mr1hm/go-flight-planner/internal/events"
	"github.com/mr1hm/go-flight-planner/internal/logging"
	"github.com/mr1hm/go-flight-planner/internal/models"
	"github.com/mr1hm/go-flight-planner/internal/repository"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port, "grid", cfg.Grid.Size)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Mission events fan out to SSE subscribers
	broadcaster := events.NewBroadcaster()

	eng := engine.New(cfg, broadcaster)

	// Load persisted no-fly zones into the terrain field
	zones, err := db.List(ctx)
	if err != nil {
		logging.Fatalf("Failed to load no-fly zones: %v", err)
	}
	polygons := make([]models.Polygon, 0, len(zones))
	for _, z := range zones {
		polygons = append(polygons, z.Vertices)
	}
	eng.SetNoFlyZones(polygons)
	slog.Info("no-fly zones loaded", "count", len(zones))

	// Start the hazard and mission tick tasks
	eng.Start(ctx)

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.RateLimitMiddleware(20)) // 20 req/s global limit

	handler := api.NewHandler(eng, db, broadcaster, cfg.Planner.DefaultTolerance)
	handler.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	eng.Stop()
	broadcaster.Close() // Close all event streams gracefully

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
