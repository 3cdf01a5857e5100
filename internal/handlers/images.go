package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/schoolsite/backend/internal/middleware"
	"github.com/schoolsite/backend/internal/services"
	"github.com/schoolsite/backend/pkg/logger"
	"github.com/schoolsite/backend/pkg/utils"
)

const uploadURLExpiry = 15 * time.Minute

type ImagesHandler struct {
	Store services.ObjectStore
}

func NewImagesHandler(store services.ObjectStore) *ImagesHandler {
	return &ImagesHandler{Store: store}
}

// UploadURL hands an admin a short-lived presigned PUT URL. The client
// uploads the image bytes directly to storage and passes the returned
// imageId to a subsequent create or update call.
func (h *ImagesHandler) UploadURL(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "unauthorized")
	}

	objectName := "images/" + uuid.New().String()

	uploadURL, err := h.Store.PresignedPutURL(c.Context(), objectName, uploadURLExpiry)
	if err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed generating upload url")
	}

	logger.InfoWithUser(currentUser.ID.String(), "image_upload_url_issued", map[string]interface{}{
		"object_name": objectName,
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{
		"uploadUrl": uploadURL,
		"imageId":   objectName,
	})
}
