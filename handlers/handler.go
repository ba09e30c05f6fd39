package handlers

import (
	"context"
	"time"

	"github.com/anjiri1684/assignment_bidding/apperrors"
	"github.com/anjiri1684/assignment_bidding/middleware"
	"github.com/anjiri1684/assignment_bidding/models"
	"github.com/anjiri1684/assignment_bidding/realtime"
	"github.com/anjiri1684/assignment_bidding/services"
	"github.com/anjiri1684/assignment_bidding/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Files is the blob store behind the upload endpoints.
type Files interface {
	Upload(ctx context.Context, file any, name string) (models.FileRef, error)
	Sign() (storage.Signature, error)
}

type Handler struct {
	core   *services.Core
	hub    *realtime.Hub
	files  Files
	secret string
	ttl    time.Duration
}

// New wires the HTTP and websocket handlers. files may be nil when uploads are
// not configured.
func New(core *services.Core, hub *realtime.Hub, files Files, secret string, ttl time.Duration) *Handler {
	return &Handler{core: core, hub: hub, files: files, secret: secret, ttl: ttl}
}

// Auth guards a route group with the JWT this handler issues.
func (h *Handler) Auth() fiber.Handler {
	return middleware.Protected(h.secret)
}

// ErrorHandler renders every error returned by a handler as {"error": message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
	}
	if errors.Is(err, services.ErrInvalidCredentials) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid email or password"})
	}

	kind := apperrors.KindOf(err)
	if kind == apperrors.KindUnexpected {
		log.WithError(err).WithFields(log.Fields{"path": c.Path(), "method": c.Method()}).Error("🔥 request failed")
	}
	return c.Status(apperrors.HTTPStatus(kind)).JSON(fiber.Map{"error": apperrors.PublicMessage(err)})
}

func paramID(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, apperrors.Validation("Invalid " + name)
	}
	return id, nil
}

func parseBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return apperrors.Validation("Cannot parse JSON")
	}
	return nil
}
