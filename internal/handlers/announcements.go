package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/schoolsite/backend/internal/models"
	"github.com/schoolsite/backend/internal/services"
	"github.com/schoolsite/backend/pkg/utils"
	"gorm.io/gorm"
)

type announcementRequest struct {
	Title     string  `json:"title"`
	Content   string  `json:"content"`
	Important bool    `json:"important"`
	ImageID   *string `json:"imageId"`
}

func decodeAnnouncement(c *fiber.Ctx) (*announcementRequest, error) {
	var req announcementRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, errInvalidBody
	}

	req.Title = utils.CleanText(req.Title)
	req.Content = utils.CleanText(req.Content)
	req.ImageID = cleanOptionalID(req.ImageID)

	if req.Title == "" {
		return nil, errors.New("title is required")
	}
	if req.Content == "" {
		return nil, errors.New("content is required")
	}
	return &req, nil
}

func NewAnnouncementsHandler(db *gorm.DB, store services.ObjectStore) *ContentHandler[models.Announcement, *models.Announcement] {
	return &ContentHandler[models.Announcement, *models.Announcement]{
		service: services.NewContentService[models.Announcement, *models.Announcement](db, store, services.AnnouncementKind),
		parseCreate: func(c *fiber.Ctx) (*models.Announcement, error) {
			req, err := decodeAnnouncement(c)
			if err != nil {
				return nil, err
			}
			return &models.Announcement{
				Title:         req.Title,
				Content:       req.Content,
				Important:     req.Important,
				ContentFields: models.ContentFields{ImageID: req.ImageID},
			}, nil
		},
		parseUpdate: func(c *fiber.Ctx) (map[string]interface{}, error) {
			req, err := decodeAnnouncement(c)
			if err != nil {
				return nil, err
			}
			fields := map[string]interface{}{
				"title":     req.Title,
				"content":   req.Content,
				"important": req.Important,
				"image_id":  nil,
			}
			if req.ImageID != nil {
				fields["image_id"] = *req.ImageID
			}
			return fields, nil
		},
	}
}
