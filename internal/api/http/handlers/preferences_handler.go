package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/npdi-tracker/internal/auth"
	"github.com/spec-kit/npdi-tracker/internal/domain"
	"github.com/spec-kit/npdi-tracker/internal/service"
	apperrors "github.com/spec-kit/npdi-tracker/pkg/util"
)

// PreferencesHandler serves the caller's own settings.
type PreferencesHandler struct {
	prefs *service.PreferencesService
}

// NewPreferencesHandler constructs the handler.
func NewPreferencesHandler(prefs *service.PreferencesService) *PreferencesHandler {
	return &PreferencesHandler{prefs: prefs}
}

// Get GET /preferences.
func (h *PreferencesHandler) Get(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	prefs, err := h.prefs.Get(c.UserContext(), identity.StableID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": prefs})
}

// Update PUT /preferences.
func (h *PreferencesHandler) Update(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var prefs domain.UserPreferences
	if err := c.BodyParser(&prefs); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.prefs.Update(c.UserContext(), identity.StableID, &prefs)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": updated})
}
