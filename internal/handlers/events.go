package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/schoolsite/backend/internal/models"
	"github.com/schoolsite/backend/internal/services"
	"github.com/schoolsite/backend/pkg/utils"
	"gorm.io/gorm"
)

type eventRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Venue       string  `json:"venue"`
	Date        int64   `json:"date"`
	ImageID     *string `json:"imageId"`
}

func decodeEvent(c *fiber.Ctx) (*eventRequest, error) {
	var req eventRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, errInvalidBody
	}

	req.Title = utils.CleanText(req.Title)
	req.Description = utils.CleanText(req.Description)
	req.Venue = utils.CleanText(req.Venue)
	req.ImageID = cleanOptionalID(req.ImageID)

	if req.Title == "" {
		return nil, errors.New("title is required")
	}
	if req.Description == "" {
		return nil, errors.New("description is required")
	}
	if req.Venue == "" {
		return nil, errors.New("venue is required")
	}
	if req.Date <= 0 {
		return nil, errors.New("date is required")
	}
	return &req, nil
}

func NewEventsHandler(db *gorm.DB, store services.ObjectStore) *ContentHandler[models.Event, *models.Event] {
	return &ContentHandler[models.Event, *models.Event]{
		service: services.NewContentService[models.Event, *models.Event](db, store, services.EventKind),
		parseCreate: func(c *fiber.Ctx) (*models.Event, error) {
			req, err := decodeEvent(c)
			if err != nil {
				return nil, err
			}
			return &models.Event{
				Title:         req.Title,
				Description:   req.Description,
				Venue:         req.Venue,
				ContentFields: models.ContentFields{Date: req.Date, ImageID: req.ImageID},
			}, nil
		},
		parseUpdate: func(c *fiber.Ctx) (map[string]interface{}, error) {
			req, err := decodeEvent(c)
			if err != nil {
				return nil, err
			}
			fields := map[string]interface{}{
				"title":       req.Title,
				"description": req.Description,
				"venue":       req.Venue,
				"date":        req.Date,
				"image_id":    nil,
			}
			if req.ImageID != nil {
				fields["image_id"] = *req.ImageID
			}
			return fields, nil
		},
	}
}
