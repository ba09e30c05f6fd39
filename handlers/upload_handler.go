package handlers

import (
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// UploadSignature creates a signature for a direct browser upload.
func (h *Handler) UploadSignature(c *fiber.Ctx) error {
	if h.files == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Uploads are not configured"})
	}
	sig, err := h.files.Sign()
	if err != nil {
		log.WithError(err).Error("🔥 failed to sign upload params")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to sign upload params"})
	}
	return c.JSON(sig)
}

// Upload takes a multipart "file" and returns the ref to store on the assignment.
func (h *Handler) Upload(c *fiber.Ctx) error {
	if h.files == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "Uploads are not configured"})
	}
	header, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "File is required"})
	}
	file, err := header.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot read file"})
	}
	defer file.Close()

	ref, err := h.files.Upload(c.UserContext(), file, header.Filename)
	if err != nil {
		log.WithError(err).WithField("file", header.Filename).Error("🔥 upload failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "Failed to upload file"})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"url": ref.URL, "id": ref.ID})
}
