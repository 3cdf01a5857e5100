package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/schoolsite/backend/internal/models"
	"github.com/schoolsite/backend/internal/services"
	"github.com/schoolsite/backend/pkg/utils"
	"gorm.io/gorm"
)

type facilityRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	ImageID     *string `json:"imageId"`
}

func decodeFacility(c *fiber.Ctx) (*facilityRequest, error) {
	var req facilityRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, errInvalidBody
	}

	req.Name = utils.CleanText(req.Name)
	req.Description = utils.CleanText(req.Description)
	req.ImageID = cleanOptionalID(req.ImageID)

	if req.Name == "" {
		return nil, errors.New("name is required")
	}
	if req.Description == "" {
		return nil, errors.New("description is required")
	}
	return &req, nil
}

func NewFacilitiesHandler(db *gorm.DB, store services.ObjectStore) *ContentHandler[models.Facility, *models.Facility] {
	return &ContentHandler[models.Facility, *models.Facility]{
		service: services.NewContentService[models.Facility, *models.Facility](db, store, services.FacilityKind),
		parseCreate: func(c *fiber.Ctx) (*models.Facility, error) {
			req, err := decodeFacility(c)
			if err != nil {
				return nil, err
			}
			return &models.Facility{
				Name:          req.Name,
				Description:   req.Description,
				ContentFields: models.ContentFields{ImageID: req.ImageID},
			}, nil
		},
		parseUpdate: func(c *fiber.Ctx) (map[string]interface{}, error) {
			req, err := decodeFacility(c)
			if err != nil {
				return nil, err
			}
			fields := map[string]interface{}{
				"name":        req.Name,
				"description": req.Description,
				"image_id":    nil,
			}
			if req.ImageID != nil {
				fields["image_id"] = *req.ImageID
			}
			return fields, nil
		},
	}
}
