package handlers

import (
	"github.com/gofiber/fiber/v2"

	"inventory/internal/apperrors"
	"inventory/internal/services"
)

// UploadHandler handles file uploads.
type UploadHandler struct {
	uploadService *services.UploadService
}

// NewUploadHandler creates a new UploadHandler.
func NewUploadHandler(uploadService *services.UploadService) *UploadHandler {
	return &UploadHandler{uploadService: uploadService}
}

// RegisterRoutes registers the upload routes, guarded by the given handlers.
func (h *UploadHandler) RegisterRoutes(router fiber.Router, guards ...fiber.Handler) {
	uploadRoutes := router.Group("/upload", guards...)
	uploadRoutes.Post("/", h.HandleUpload)
	uploadRoutes.Delete("/:filename", h.HandleDelete)
}

// HandleUpload stores the multipart part named "file".
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return apperrors.ErrNoFile
	}

	stored, err := h.uploadService.Upload(fh)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": "file uploaded successfully",
		"file":    stored,
	})
}

// HandleDelete removes a stored upload. Deleting a missing file succeeds.
func (h *UploadHandler) HandleDelete(c *fiber.Ctx) error {
	filename := c.Params("filename")
	if err := h.uploadService.Delete(filename); err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"success":  true,
		"filename": filename,
	})
}
