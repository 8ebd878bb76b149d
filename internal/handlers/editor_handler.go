package handlers

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"content-portal-api/internal/models"
	"content-portal-api/internal/repository"
	"content-portal-api/internal/services"
)

// EditorHandler handles the secret-link editor registry.
type EditorHandler struct {
	editors *services.EditorService
	uploads *services.UploadService
}

// NewEditorHandler creates a new editor handler.
func NewEditorHandler(editors *services.EditorService, uploads *services.UploadService) *EditorHandler {
	return &EditorHandler{
		editors: editors,
		uploads: uploads,
	}
}

// CreateEditor godoc
// @Summary Register a new editor
// @Description Creates an editor and mints their unique secret upload link.
// @Tags Editors
// @Accept json
// @Produce json
// @Param request body models.CreateEditorRequest true "Editor registration"
// @Success 201 {object} models.Editor
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/editors [post]
func (h *EditorHandler) CreateEditor(c fiber.Ctx) error {
	var req models.CreateEditorRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(http.StatusBadRequest).JSON(models.ErrorResponse{
			Error:   "Invalid JSON payload",
			Details: err.Error(),
		})
	}

	editor, err := h.editors.Create(c.Context(), &req)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return c.Status(http.StatusConflict).JSON(models.ErrorResponse{Error: err.Error()})
		}
		return c.Status(http.StatusBadRequest).JSON(models.ErrorResponse{Error: err.Error()})
	}

	return c.Status(http.StatusCreated).JSON(editor)
}

// ListEditors godoc
// @Summary List registered editors
// @Tags Editors
// @Produce json
// @Success 200 {array} models.Editor
// @Failure 500 {object} models.ErrorResponse
// @Router /api/editors [get]
func (h *EditorHandler) ListEditors(c fiber.Ctx) error {
	editors, err := h.editors.List(c.Context())
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Failed to list editors",
		})
	}
	if editors == nil {
		editors = []*models.Editor{}
	}
	return c.JSON(editors)
}

// DeleteEditor godoc
// @Summary Delete an editor
// @Description Removes the editor, their uploads and archive entries; blob objects are cleaned up in the background.
// @Tags Editors
// @Produce json
// @Param id path string true "Editor ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /api/editors/{id} [delete]
func (h *EditorHandler) DeleteEditor(c fiber.Ctx) error {
	id := c.Params("id")

	if err := h.editors.Delete(c.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(models.ErrorResponse{Error: "Editor not found"})
		}
		return c.Status(http.StatusInternalServerError).JSON(models.ErrorResponse{
			Error:   "Failed to delete editor",
			Details: err.Error(),
		})
	}

	return c.JSON(models.MessageResponse{
		Success: true,
		Message: "Editor deleted successfully",
	})
}

// ResolveSecretLink godoc
// @Summary Resolve a secret upload link
// @Description Returns the editor a secret link belongs to, together with their uploads.
// @Tags Editors
// @Produce json
// @Param secret path string true "Secret link token"
// @Success 200 {object} models.SecretLinkResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/links/{secret} [get]
func (h *EditorHandler) ResolveSecretLink(c fiber.Ctx) error {
	editor, err := h.editors.Resolve(c.Context(), c.Params("secret"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return c.Status(http.StatusNotFound).JSON(models.ErrorResponse{Error: "Invalid link"})
		}
		return c.Status(http.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Failed to resolve link",
		})
	}

	uploads, err := h.uploads.ListByEditor(c.Context(), editor.ID)
	if err != nil {
		return c.Status(http.StatusInternalServerError).JSON(models.ErrorResponse{
			Error: "Failed to load uploads",
		})
	}
	if uploads == nil {
		uploads = []*models.Upload{}
	}

	return c.JSON(models.SecretLinkResponse{
		Editor:  editor,
		Uploads: uploads,
	})
}

// RegisterRoutes registers editor routes.
func (h *EditorHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/api/editors", h.CreateEditor)
	app.Get("/api/editors", h.ListEditors)
	app.Delete("/api/editors/:id", h.DeleteEditor)
	app.Get("/api/links/:secret", h.ResolveSecretLink)
}
