package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"content-portal-api/internal/models"
	"content-portal-api/internal/services"
)

// AdminHandler backs the administrator surface: password verification,
// stats, CSV export, archive maintenance, error logs and scheduling.
type AdminHandler struct {
	admin     *services.AdminService
	scheduler *services.Scheduler
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(admin *services.AdminService, scheduler *services.Scheduler) *AdminHandler {
	return &AdminHandler{
		admin:     admin,
		scheduler: scheduler,
	}
}

// requireAdmin guards admin routes with the static password carried in
// the X-Admin-Password header.
func (h *AdminHandler) requireAdmin(c fiber.Ctx) error {
	if !h.admin.VerifyPassword(c.Get("X-Admin-Password")) {
		return c.Status(http.StatusUnauthorized).JSON(models.ErrorResponse{Error: "Invalid admin password"})
	}
	return c.Next()
}

// VerifyPassword godoc
// @Summary Verify the admin password
// @Tags Admin
// @Accept json
// @Produce json
// @Param request body models.VerifyAdminRequest true "Password"
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/admin/verify [post]
func (h *AdminHandler) VerifyPassword(c fiber.Ctx) error {
	var req models.VerifyAdminRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid JSON payload",
			Details: err.Error(),
		})
	}

	if !h.admin.VerifyPassword(req.Password) {
		return c.Status(http.StatusUnauthorized).JSON(models.ErrorResponse{Error: "Invalid admin password"})
	}

	return c.JSON(models.MessageResponse{
		Success: true,
		Message: "Password verified",
	})
}

// Stats godoc
// @Summary Portal content statistics
// @Description All-time video/image totals plus the last seven days of daily counts.
// @Tags Admin
// @Produce json
// @Param X-Admin-Password header string true "Admin password"
// @Success 200 {object} models.StatsResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/stats [get]
func (h *AdminHandler) Stats(c fiber.Ctx) error {
	stats, err := h.admin.Stats(c.Context())
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Failed to compute stats",
		})
	}
	return c.JSON(stats)
}

// ExportCSV godoc
// @Summary Export uploads as CSV
// @Description Streams the current uploads as a CSV attachment. filter is one of all|videos|images.
// @Tags Admin
// @Produce text/csv
// @Param X-Admin-Password header string true "Admin password"
// @Param filter query string false "Export filter" default(all)
// @Success 200 {string} string "CSV payload"
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/admin/export [get]
func (h *AdminHandler) ExportCSV(c fiber.Ctx) error {
	data, filename, err := h.admin.ExportCSV(c.Context(), c.Query("filter", services.ExportFilterAll))
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(models.ErrorResponse{Error: err.Error()})
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Send(data)
}

// ResetDaily godoc
// @Summary Archive today's uploads
// @Description Moves every upload created today into the archive (reason daily_reset).
// @Tags Admin
// @Produce json
// @Param X-Admin-Password header string true "Admin password"
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/reset-daily [post]
func (h *AdminHandler) ResetDaily(c fiber.Ctx) error {
	archived, err := h.admin.ResetDaily(c.Context())
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "Daily reset failed",
			Details: err.Error(),
		})
	}

	return c.JSON(models.MessageResponse{
		Success: true,
		Message: "Archived " + strconv.FormatInt(archived, 10) + " uploads",
	})
}

// PurgeOld godoc
// @Summary Archive uploads past retention
// @Description Moves uploads older than the retention window into the archive (reason purge_old).
// @Tags Admin
// @Produce json
// @Param X-Admin-Password header string true "Admin password"
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/purge [post]
func (h *AdminHandler) PurgeOld(c fiber.Ctx) error {
	archived, err := h.admin.PurgeOld(c.Context())
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "Purge failed",
			Details: err.Error(),
		})
	}

	return c.JSON(models.MessageResponse{
		Success: true,
		Message: "Archived " + strconv.FormatInt(archived, 10) + " uploads",
	})
}

// ListArchive godoc
// @Summary List archive entries
// @Tags Admin
// @Produce json
// @Param X-Admin-Password header string true "Admin password"
// @Success 200 {array} models.ArchiveEntryWithEditor
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/archive [get]
func (h *AdminHandler) ListArchive(c fiber.Ctx) error {
	entries, err := h.admin.ListArchive(c.Context())
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Failed to list archive",
		})
	}
	if entries == nil {
		entries = []*models.ArchiveEntryWithEditor{}
	}
	return c.JSON(entries)
}

// DeleteArchive godoc
// @Summary Delete archive entries
// @Tags Admin
// @Accept json
// @Produce json
// @Param X-Admin-Password header string true "Admin password"
// @Param request body models.DeleteArchiveRequest true "Entry IDs"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/admin/archive [delete]
func (h *AdminHandler) DeleteArchive(c fiber.Ctx) error {
	var req models.DeleteArchiveRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid JSON payload",
			Details: err.Error(),
		})
	}

	deleted, err := h.admin.DeleteArchiveEntries(c.Context(), req.IDs)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Failed to delete archive entries",
		})
	}

	return c.JSON(models.MessageResponse{
		Success: true,
		Message: "Deleted " + strconv.FormatInt(deleted, 10) + " entries",
	})
}

// ErrorLogs godoc
// @Summary Recent upload pipeline failures
// @Tags Admin
// @Produce json
// @Param X-Admin-Password header string true "Admin password"
// @Param limit query int false "Maximum number of entries" default(100)
// @Success 200 {array} models.ErrorLogEntry
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/admin/error-logs [get]
func (h *AdminHandler) ErrorLogs(c fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "100"))

	entries, err := h.admin.ErrorLogs(c.Context(), limit)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Failed to list error logs",
		})
	}
	if entries == nil {
		entries = []*models.ErrorLogEntry{}
	}
	return c.JSON(entries)
}

// PreviewSlots godoc
// @Summary Preview slot assignment
// @Description Classifies the submitted items and computes their default publish slots without dispatching anything.
// @Tags Admin
// @Accept json
// @Produce json
// @Param X-Admin-Password header string true "Admin password"
// @Param request body models.ScheduleRequest true "Items to classify"
// @Success 200 {object} models.PreviewSlotsResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/admin/schedule/preview [post]
func (h *AdminHandler) PreviewSlots(c fiber.Ctx) error {
	var req models.ScheduleRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid JSON payload",
			Details: err.Error(),
		})
	}

	return c.JSON(h.scheduler.PreviewSlots(req.Items))
}

// Schedule godoc
// @Summary Dispatch scheduled publishing
// @Description Sends every selected item to the publish API sequentially, videos first. Per-item failures do not abort the run.
// @Tags Admin
// @Accept json
// @Produce json
// @Param X-Admin-Password header string true "Admin password"
// @Param request body models.ScheduleRequest true "Items to schedule"
// @Success 200 {object} models.ScheduleResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/admin/schedule [post]
func (h *AdminHandler) Schedule(c fiber.Ctx) error {
	var req models.ScheduleRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid JSON payload",
			Details: err.Error(),
		})
	}

	return c.JSON(h.scheduler.Dispatch(c.Context(), req.Items))
}

// RegisterRoutes registers admin routes. All routes except the password
// verification require the X-Admin-Password header.
func (h *AdminHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/api/admin/verify", h.VerifyPassword)

	admin := app.Group("/api/admin")
	admin.Get("/stats", h.Stats, h.requireAdmin)
	admin.Get("/export", h.ExportCSV, h.requireAdmin)
	admin.Post("/reset-daily", h.ResetDaily, h.requireAdmin)
	admin.Post("/purge", h.PurgeOld, h.requireAdmin)
	admin.Get("/archive", h.ListArchive, h.requireAdmin)
	admin.Delete("/archive", h.DeleteArchive, h.requireAdmin)
	admin.Get("/error-logs", h.ErrorLogs, h.requireAdmin)
	admin.Post("/schedule/preview", h.PreviewSlots, h.requireAdmin)
	admin.Post("/schedule", h.Schedule, h.requireAdmin)
}
