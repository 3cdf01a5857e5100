package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/schoolsite/backend/internal/middleware"
	"github.com/schoolsite/backend/internal/models"
	"github.com/schoolsite/backend/pkg/logger"
	"github.com/schoolsite/backend/pkg/utils"
	"gorm.io/gorm"
)

type AdminHandler struct {
	DB *gorm.DB

	// bootstrapEmail is the configured address allowed to self-promote while
	// the system has no admin yet.
	bootstrapEmail string
}

func NewAdminHandler(db *gorm.DB, bootstrapEmail string) *AdminHandler {
	return &AdminHandler{DB: db, bootstrapEmail: normalizeEmail(bootstrapEmail)}
}

// Status reports whether the current caller is an admin. Anonymous callers
// and requests without identity get false, never an error.
func (h *AdminHandler) Status(c *fiber.Ctx) error {
	currentUser := middleware.GetCurrentUser(c)
	isAdmin := currentUser != nil && currentUser.IsAdmin()
	return utils.Success(c, fiber.StatusOK, fiber.Map{"isAdmin": isAdmin})
}

type grantAdminRequest struct {
	Email string `json:"email"`
}

// Grant promotes the user with the given email to admin. While no admin
// exists at all, the configured bootstrap email may promote itself without
// authentication; as soon as any admin exists that path is closed for good
// and the caller must be an admin.
func (h *AdminHandler) Grant(c *fiber.Ctx) error {
	var req grantAdminRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.Error(c, fiber.StatusBadRequest, "invalid request body")
	}

	email := normalizeEmail(req.Email)
	if email == "" {
		return utils.Error(c, fiber.StatusBadRequest, "email is required")
	}

	var adminCount int64
	if err := h.DB.Model(&models.User{}).Where("role = ?", models.UserRoleAdmin).Count(&adminCount).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed checking admin state")
	}

	if adminCount == 0 && email == h.bootstrapEmail {
		var user models.User
		err := h.DB.First(&user, "email = ?", email).Error
		if err == nil {
			return h.promote(c, &user, "bootstrap")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusInternalServerError, "failed loading user")
		}
		// bootstrap address has no account yet; fall through to the normal
		// admin requirement
	}

	currentUser := middleware.GetCurrentUser(c)
	if currentUser == nil {
		return utils.Error(c, fiber.StatusUnauthorized, "not authenticated")
	}
	if !currentUser.IsAdmin() {
		logger.WarnWithUser(currentUser.ID.String(), "admin_grant_denied", map[string]interface{}{
			"target_email": email,
		})
		return utils.Error(c, fiber.StatusForbidden, "admin access required")
	}

	var user models.User
	if err := h.DB.First(&user, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Error(c, fiber.StatusNotFound, "user not found")
		}
		return utils.Error(c, fiber.StatusInternalServerError, "failed loading user")
	}

	return h.promote(c, &user, currentUser.ID.String())
}

func (h *AdminHandler) promote(c *fiber.Ctx, user *models.User, grantedBy string) error {
	if err := h.DB.Model(user).Update("role", models.UserRoleAdmin).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed granting admin")
	}

	logger.InfoWithUser(user.ID.String(), "admin_granted", map[string]interface{}{
		"granted_by": grantedBy,
	})

	return utils.Success(c, fiber.StatusOK, fiber.Map{"message": "admin access granted"})
}

// ListUsers is the admin view over accounts, paginated and searchable by
// email or name.
func (h *AdminHandler) ListUsers(c *fiber.Ctx) error {
	p := utils.ParsePagination(c)
	search := strings.TrimSpace(c.Query("search"))

	query := h.DB.Model(&models.User{})
	if search != "" {
		searchValue := "%" + strings.ToLower(search) + "%"
		query = query.Where("LOWER(email) LIKE ? OR LOWER(name) LIKE ?", searchValue, searchValue)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed counting users")
	}

	var users []models.User
	if err := utils.ApplyPagination(query.Order("created_at DESC"), p).Find(&users).Error; err != nil {
		return utils.Error(c, fiber.StatusInternalServerError, "failed listing users")
	}

	return utils.Paginated(c, users, p.Page, p.Limit, total)
}
