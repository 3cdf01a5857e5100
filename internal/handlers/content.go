package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/schoolsite/backend/internal/middleware"
	"github.com/schoolsite/backend/internal/services"
	"github.com/schoolsite/backend/pkg/logger"
	"github.com/schoolsite/backend/pkg/utils"
)

var errInvalidBody = errors.New("invalid request body")

// ContentHandler serves one content kind over HTTP. All four kinds share this
// implementation; each kind supplies its model type and two parse functions
// that validate the kind-specific field set.
type ContentHandler[T any, P services.RecordOf[T]] struct {
	service *services.ContentService[T, P]

	// parseCreate validates the request body into a new record.
	parseCreate func(c *fiber.Ctx) (P, error)
	// parseUpdate validates the request body into the complete replacement
	// column set, image_id included.
	parseUpdate func(c *fiber.Ctx) (map[string]interface{}, error)
}

// Register mounts the kind's routes: public list and search, admin-only
// mutations.
func (h *ContentHandler[T, P]) Register(api fiber.Router, path string, auth *middleware.AuthMiddleware) {
	routes := api.Group(path)
	routes.Get("/", h.List)
	routes.Get("/search", h.Search)
	routes.Post("/", auth.RequireAuth, middleware.AdminOnly, h.Create)
	routes.Put("/:id", auth.RequireAuth, middleware.AdminOnly, h.Update)
	routes.Delete("/:id", auth.RequireAuth, middleware.AdminOnly, h.Delete)
}

func (h *ContentHandler[T, P]) List(c *fiber.Ctx) error {
	records, err := h.service.List(c.Context())
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing "+h.service.Kind().Plural)
	}
	return utils.Success(c, fiber.StatusOK, records)
}

func (h *ContentHandler[T, P]) Search(c *fiber.Ctx) error {
	q := strings.TrimSpace(c.Query("q"))
	if q == "" {
		return utils.Error(c, fiber.StatusBadRequest, "search query is required")
	}

	records, err := h.service.Search(c.Context(), q)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "search failed")
	}
	return utils.Success(c, fiber.StatusOK, records)
}

func (h *ContentHandler[T, P]) Create(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	record, err := h.parseCreate(c)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Create(c.Context(), record); err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed creating "+h.service.Kind().Name)
	}

	logger.InfoWithUser(currentUser.ID.String(), "content_created", map[string]interface{}{
		"kind":      h.service.Kind().Name,
		"record_id": record.RecordID().String(),
	})

	return utils.Success(c, fiber.StatusCreated, record)
}

func (h *ContentHandler[T, P]) Update(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid "+h.service.Kind().Name+" id")
	}

	fields, err := h.parseUpdate(c)
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, err.Error())
	}

	if err := h.service.Update(c.Context(), id, fields); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.Error(c, fiber.StatusNotFound, h.service.Kind().Name+" not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed updating "+h.service.Kind().Name)
	}

	logger.InfoWithUser(currentUser.ID.String(), "content_updated", map[string]interface{}{
		"kind":      h.service.Kind().Name,
		"record_id": id.String(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": h.service.Kind().Name + " updated"})
}

func (h *ContentHandler[T, P]) Delete(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	id, err := parseUUID(c.Params("id"))
	if err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid "+h.service.Kind().Name+" id")
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return utils.Error(c, fiber.StatusNotFound, h.service.Kind().Name+" not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed deleting "+h.service.Kind().Name)
	}

	logger.InfoWithUser(currentUser.ID.String(), "content_deleted", map[string]interface{}{
		"kind":      h.service.Kind().Name,
		"record_id": id.String(),
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": h.service.Kind().Name + " deleted"})
}

// cleanOptionalID normalizes an optional image identifier: empty or
// whitespace-only values collapse to nil (no image).
func cleanOptionalID(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
