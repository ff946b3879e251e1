package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/npdi-tracker/internal/auth"
	"github.com/spec-kit/npdi-tracker/internal/domain"
	"github.com/spec-kit/npdi-tracker/internal/service"
	apperrors "github.com/spec-kit/npdi-tracker/pkg/util"
)

// SettingsHandler exposes the admin integration-settings document.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler constructs the handler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// Get GET /admin/settings.
func (h *SettingsHandler) Get(c *fiber.Ctx) error {
	doc, err := h.settings.Get(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": doc})
}

// Update PUT /admin/settings.
func (h *SettingsHandler) Update(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var doc domain.IntegrationSettings
	if err := c.BodyParser(&doc); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.settings.Update(c.UserContext(), identity.StableID, &doc)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": updated})
}
