package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/schoolsite/backend/internal/models"
	"github.com/schoolsite/backend/internal/services"
	"github.com/schoolsite/backend/pkg/utils"
	"gorm.io/gorm"
)

type achievementRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	ImageID     *string `json:"imageId"`
}

func decodeAchievement(c *fiber.Ctx) (*achievementRequest, error) {
	var req achievementRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, errInvalidBody
	}

	req.Title = utils.CleanText(req.Title)
	req.Description = utils.CleanText(req.Description)
	req.ImageID = cleanOptionalID(req.ImageID)

	if req.Title == "" {
		return nil, errors.New("title is required")
	}
	if req.Description == "" {
		return nil, errors.New("description is required")
	}
	return &req, nil
}

func NewAchievementsHandler(db *gorm.DB, store services.ObjectStore) *ContentHandler[models.Achievement, *models.Achievement] {
	return &ContentHandler[models.Achievement, *models.Achievement]{
		service: services.NewContentService[models.Achievement, *models.Achievement](db, store, services.AchievementKind),
		parseCreate: func(c *fiber.Ctx) (*models.Achievement, error) {
			req, err := decodeAchievement(c)
			if err != nil {
				return nil, err
			}
			return &models.Achievement{
				Title:         req.Title,
				Description:   req.Description,
				ContentFields: models.ContentFields{ImageID: req.ImageID},
			}, nil
		},
		parseUpdate: func(c *fiber.Ctx) (map[string]interface{}, error) {
			req, err := decodeAchievement(c)
			if err != nil {
				return nil, err
			}
			fields := map[string]interface{}{
				"title":       req.Title,
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
