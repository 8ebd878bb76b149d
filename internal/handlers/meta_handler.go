package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gofiber/fiber/v3"

	"content-portal-api/internal/database"
	"content-portal-api/internal/models"
	"content-portal-api/internal/pool"
	"content-portal-api/internal/services"
)

// MetaHandler exposes informational endpoints about the API surface.
type MetaHandler struct {
	version   string
	readiness *database.ReadinessChecker
	blobs     *services.BlobService
	cleanup   *pool.WorkerPool
}

// NewMetaHandler constructs a metadata handler.
func NewMetaHandler(version string, readiness *database.ReadinessChecker, blobs *services.BlobService, cleanup *pool.WorkerPool) *MetaHandler {
	if version == "" {
		version = "1.0.0"
	}

	return &MetaHandler{
		version:   version,
		readiness: readiness,
		blobs:     blobs,
		cleanup:   cleanup,
	}
}

// APIInfo godoc
// @Summary API metadata
// @Description Provides API version and available endpoint catalogue.
// @Tags General
// @Produce json
// @Success 200 {object} models.APIInfoResponse
// @Router /api [get]
func (h *MetaHandler) APIInfo(c fiber.Ctx) error {
	endpoints := map[string]string{
		"editors":          "/api/editors",
		"secret_link":      "/api/links/{secret}",
		"uploads":          "/api/uploads",
		"upload_media":     "/api/uploads/media",
		"upload_policy":    "/api/uploads/policy",
		"network":          "/api/network",
		"admin_verify":     "/api/admin/verify",
		"admin_stats":      "/api/admin/stats",
		"admin_export":     "/api/admin/export",
		"admin_archive":    "/api/admin/archive",
		"admin_schedule":   "/api/admin/schedule",
		"admin_error_logs": "/api/admin/error-logs",
		"health":           "/health",
		"stats":            "/stats",
	}

	return c.JSON(models.APIInfoResponse{
		Name:      "Content Portal API",
		Version:   h.version,
		Endpoints: endpoints,
	})
}

// Health godoc
// @Summary Service health
// @Description Reports database and blob storage readiness.
// @Tags General
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Failure 503 {object} models.HealthResponse
// @Router /health [get]
func (h *MetaHandler) Health(c fiber.Ctx) error {
	response := models.HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Unix(),
		Database:  "ok",
		Storage:   "ok",
	}

	if h.readiness != nil {
		if status, _ := h.readiness.CheckReady(); status != "ok" {
			response.Database = "fail"
			response.Status = "unhealthy"
		}
	}

	if h.blobs != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := h.blobs.HealthCheck(ctx); err != nil {
			response.Storage = "fail"
			response.Status = "unhealthy"
		}
	}

	if response.Status != "healthy" {
		return c.Status(http.StatusServiceUnavailable).JSON(response)
	}
	return c.JSON(response)
}

// Stats godoc
// @Summary Runtime statistics
// @Description Blob storage counters, cleanup pool state and process memory.
// @Tags General
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /stats [get]
func (h *MetaHandler) Stats(c fiber.Ctx) error {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	stats := fiber.Map{
		"timestamp": time.Now().Unix(),
		"memory": fiber.Map{
			"alloc_mb":       m.Alloc / 1024 / 1024,
			"total_alloc_mb": m.TotalAlloc / 1024 / 1024,
			"sys_mb":         m.Sys / 1024 / 1024,
			"num_gc":         m.NumGC,
		},
		"goroutines": runtime.NumGoroutine(),
	}

	if h.blobs != nil {
		stats["storage"] = h.blobs.Stats()
	}
	if h.cleanup != nil {
		stats["cleanup_pool"] = h.cleanup.Stats()
	}

	return c.JSON(stats)
}

// RegisterRoutes registers informational routes. The stats endpoint can
// be disabled in production.
func (h *MetaHandler) RegisterRoutes(app *fiber.App, statsEnabled bool) {
	app.Get("/api", h.APIInfo)
	app.Get("/health", h.Health)
	if statsEnabled {
		app.Get("/stats", h.Stats)
	}
}
