package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v3"

	"content-portal-api/internal/models"
	"content-portal-api/internal/repository"
	"content-portal-api/internal/services"
)

// UploadHandler handles upload metadata and the media ingest path.
type UploadHandler struct {
	uploads   *services.UploadService
	estimator *services.NetworkEstimator
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(uploads *services.UploadService, estimator *services.NetworkEstimator) *UploadHandler {
	return &UploadHandler{
		uploads:   uploads,
		estimator: estimator,
	}
}

// CreateUpload godoc
// @Summary Record upload metadata
// @Description Registers a completed media upload against an editor.
// @Tags Uploads
// @Accept json
// @Produce json
// @Param request body models.CreateUploadRequest true "Upload metadata"
// @Success 201 {object} models.Upload
// @Failure 400 {object} models.ErrorResponse
// @Router /api/uploads [post]
func (h *UploadHandler) CreateUpload(c fiber.Ctx) error {
	var req models.CreateUploadRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid JSON payload",
			Details: err.Error(),
		})
	}

	upload, err := h.uploads.Create(c.Context(), &req)
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(models.ErrorResponse{Error: err.Error()})
	}

	return c.Status(http.StatusCreated).JSON(upload)
}

// IngestMedia godoc
// @Summary Upload a media file through the reliability pipeline
// @Description Accepts multipart form-data and pushes the file to blob storage with retry and backoff; failures are recorded to the error log.
// @Tags Uploads
// @Accept multipart/form-data
// @Produce json
// @Param editor_id formData string true "Editor ID"
// @Param media_type formData string true "Media category (video|image)"
// @Param thumbnail formData bool false "Store as thumbnail"
// @Param file formData file true "Binary media file"
// @Success 200 {object} models.StoreResultResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/uploads/media [post]
func (h *UploadHandler) IngestMedia(c fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(http.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Failed to parse multipart form",
			Details: err.Error(),
		})
	}

	editorID := formValue(form.Value, "editor_id")
	mediaType := formValue(form.Value, "media_type")
	thumbnail, _ := strconv.ParseBool(formValue(form.Value, "thumbnail"))

	files := form.File["file"]
	if len(files) == 0 {
		return c.Status(http.StatusBadRequest).JSON(models.ErrorResponse{Error: "No file provided"})
	}
	fileHeader := files[0]

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Failed to open uploaded file",
		})
	}
	defer src.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, err := h.uploads.Ingest(c.Context(), editorID, services.UploadFile{
		Name:        fileHeader.Filename,
		Size:        fileHeader.Size,
		ContentType: contentType,
		Reader:      src,
	}, mediaType, thumbnail, nil)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "Upload failed",
			Details: err.Error(),
		})
	}

	return c.JSON(models.StoreResultResponse{
		Success: true,
		URL:     url,
	})
}

// GetPolicy godoc
// @Summary Resolve upload policy
// @Description Returns the destination key, size limit and MIME allowlist for a prospective upload.
// @Tags Uploads
// @Produce json
// @Param editor_id query string true "Editor ID"
// @Param filename query string true "Original file name"
// @Param media_type query string true "Media category (video|image)"
// @Param thumbnail query bool false "Thumbnail upload"
// @Success 200 {object} models.UploadPolicyResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/uploads/policy [get]
func (h *UploadHandler) GetPolicy(c fiber.Ctx) error {
	editorID := c.Query("editor_id")
	filename := c.Query("filename")
	mediaType := c.Query("media_type")
	thumbnail, _ := strconv.ParseBool(c.Query("thumbnail"))

	if editorID == "" || filename == "" || mediaType == "" {
		return c.Status(http.StatusBadRequest).JSON(models.ErrorResponse{
			Error: "editor_id, filename and media_type are required",
		})
	}

	policy, err := h.uploads.Policy(c.Context(), editorID, filename, mediaType, thumbnail)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(models.ErrorResponse{Error: "Editor not found"})
		}
		return c.Status(http.StatusBadRequest).JSON(models.ErrorResponse{Error: err.Error()})
	}

	return c.JSON(policy)
}

// ListUploads godoc
// @Summary List uploads
// @Description Lists one editor's uploads when editor_id is given, otherwise all uploads with editor context.
// @Tags Uploads
// @Produce json
// @Param editor_id query string false "Filter by editor"
// @Param type query string false "Filter by media type (video|image)"
// @Success 200 {array} models.UploadWithEditor
// @Failure 500 {object} models.ErrorResponse
// @Router /api/uploads [get]
func (h *UploadHandler) ListUploads(c fiber.Ctx) error {
	if editorID := c.Query("editor_id"); editorID != "" {
		uploads, err := h.uploads.ListByEditor(c.Context(), editorID)
		if err != nil {
			return c.Status(http.StatusInternalServerError).JSON(models.ErrorResponse{
				Error: "Failed to list uploads",
			})
		}
		if uploads == nil {
			uploads = []*models.Upload{}
		}
		return c.JSON(uploads)
	}

	var mediaType *string
	if t := c.Query("type"); t != "" {
		mediaType = &t
	}

	uploads, err := h.uploads.List(c.Context(), mediaType)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Failed to list uploads",
		})
	}
	if uploads == nil {
		uploads = []*models.UploadWithEditor{}
	}
	return c.JSON(uploads)
}

// DeleteUpload godoc
// @Summary Delete an upload
// @Description Removes the upload record; its blob objects are deleted in the background.
// @Tags Uploads
// @Produce json
// @Param id path string true "Upload ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/uploads/{id} [delete]
func (h *UploadHandler) DeleteUpload(c fiber.Ctx) error {
	if err := h.uploads.Delete(c.Context(), c.Params("id")); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(models.ErrorResponse{Error: "Upload not found"})
		}
		return c.Status(http.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "Failed to delete upload",
			Details: err.Error(),
		})
	}

	return c.JSON(models.MessageResponse{
		Success: true,
		Message: "Upload deleted successfully",
	})
}

// NetworkQuality godoc
// @Summary Estimate network quality
// @Description Computes a bandwidth/latency snapshot from forwarded client connection hints, falling back to coarse connection-type defaults. Optionally estimates the transfer time for a file size.
// @Tags Uploads
// @Produce json
// @Param downlink query number false "Declared downlink in Mbps"
// @Param rtt query number false "Round-trip time in milliseconds"
// @Param type query string false "Connection type label (4g|3g|2g|wifi)"
// @Param size query int false "Prospective file size in bytes"
// @Success 200 {object} models.NetworkDiagnosticsResponse
// @Router /api/network [get]
func (h *UploadHandler) NetworkQuality(c fiber.Ctx) error {
	estimator := h.estimator

	// Connection hints from the client override the server fallback.
	if downlink := c.Query("downlink"); downlink != "" {
		mbps, _ := strconv.ParseFloat(downlink, 64)
		rtt, _ := strconv.ParseFloat(c.Query("rtt"), 64)
		info := &services.ConnectionInfo{
			EffectiveType: c.Query("type"),
			DownlinkMbps:  mbps,
			RTTMs:         rtt,
		}
		estimator = services.NewNetworkEstimator(func() *services.ConnectionInfo { return info }, "")
	} else if connType := c.Query("type"); connType != "" {
		estimator = services.NewNetworkEstimator(nil, connType)
	}

	diag := estimator.Detect()
	response := models.NetworkDiagnosticsResponse{
		Bandwidth:         diag.Bandwidth,
		LatencyMs:         diag.LatencyMs,
		ConnectionType:    diag.ConnectionType,
		IsSlowConnection:  diag.IsSlowConnection,
		ConnectionQuality: diag.ConnectionQuality,
	}

	if size := c.Query("size"); size != "" {
		if bytes, err := strconv.ParseInt(size, 10, 64); err == nil {
			response.EstimatedSeconds = services.EstimateUploadTime(bytes, diag)
		}
	}

	return c.JSON(response)
}

// RegisterRoutes registers upload routes.
func (h *UploadHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/api/uploads", h.CreateUpload)
	app.Get("/api/uploads", h.ListUploads)
	app.Post("/api/uploads/media", h.IngestMedia)
	app.Get("/api/uploads/policy", h.GetPolicy)
	app.Delete("/api/uploads/:id", h.DeleteUpload)
	app.Get("/api/network", h.NetworkQuality)
}

func formValue(values map[string][]string, key string) string {
	if v := values[key]; len(v) > 0 {
		return v[0]
	}
	return ""
}
