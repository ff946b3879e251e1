package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/npdi-tracker/internal/domain"
	"github.com/spec-kit/npdi-tracker/internal/service"
	apperrors "github.com/spec-kit/npdi-tracker/pkg/util"
)

// TemplatesHandler manages intake-form templates.
type TemplatesHandler struct {
	templates *service.TemplateService
}

// NewTemplatesHandler constructs the handler.
func NewTemplatesHandler(templates *service.TemplateService) *TemplatesHandler {
	return &TemplatesHandler{templates: templates}
}

// Create POST /admin/templates.
func (h *TemplatesHandler) Create(c *fiber.Ctx) error {
	var template domain.Template
	if err := c.BodyParser(&template); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	created, err := h.templates.Create(c.UserContext(), &template)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": created})
}

// Update PUT /admin/templates/:id.
func (h *TemplatesHandler) Update(c *fiber.Ctx) error {
	var template domain.Template
	if err := c.BodyParser(&template); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	updated, err := h.templates.Update(c.UserContext(), c.Params("id"), &template)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": updated})
}

// Get GET /admin/templates/:id.
func (h *TemplatesHandler) Get(c *fiber.Ctx) error {
	template, err := h.templates.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": template})
}

// List GET /admin/templates.
func (h *TemplatesHandler) List(c *fiber.Ctx) error {
	templates, err := h.templates.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": templates})
}
