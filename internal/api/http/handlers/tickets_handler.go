package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/npdi-tracker/internal/api/dto"
	"github.com/spec-kit/npdi-tracker/internal/auth"
	"github.com/spec-kit/npdi-tracker/internal/domain"
	"github.com/spec-kit/npdi-tracker/internal/service"
	apperrors "github.com/spec-kit/npdi-tracker/pkg/util"
)

const defaultPageSize = 20

// TicketsHandler manages the ticket CRUD surface.
type TicketsHandler struct {
	tickets   *service.TicketService
	dashboard *service.DashboardService
}

// NewTicketsHandler constructs the handler.
func NewTicketsHandler(tickets *service.TicketService, dashboard *service.DashboardService) *TicketsHandler {
	return &TicketsHandler{tickets: tickets, dashboard: dashboard}
}

// Create POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	ticket, err := h.tickets.CreateTicket(c.UserContext(), identity, req.Draft(), req.SkipEnrichment)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticket})
}

// List GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	filter := parseTicketFilter(c)
	tickets, total, err := h.tickets.ListTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketListResponse{
		Items: tickets, Total: total, Limit: filter.Limit, Offset: filter.Offset,
	}})
}

// ListArchived GET /tickets/archived.
func (h *TicketsHandler) ListArchived(c *fiber.Ctx) error {
	filter := parseTicketFilter(c)
	tickets, total, err := h.tickets.ListArchivedTickets(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.TicketListResponse{
		Items: tickets, Total: total, Limit: filter.Limit, Offset: filter.Offset,
	}})
}

// Get GET /tickets/:id. Returns the full document; the export generators
// consume this endpoint.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.tickets.GetTicket(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticket})
}

// Update PUT /tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.UpdateTicket(c.UserContext(), identity, c.Params("id"), req.Patch())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticket})
}

// UpdateStatus PATCH /tickets/:id/status.
func (h *TicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.UpdateStatus(c.UserContext(), identity, c.Params("id"), req.Status, req.Reason)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticket})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	identity, ok := auth.IdentityFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.AddCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.AddComment(c.UserContext(), identity, c.Params("id"), req.Content)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticket})
}

// Dashboard GET /tickets/dashboard.
func (h *TicketsHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.dashboard.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// RecentActivity GET /tickets/activity?days=N.
func (h *TicketsHandler) RecentActivity(c *fiber.Ctx) error {
	days := c.QueryInt("days", 7)
	if days < 1 || days > 90 {
		return apperrors.NewValidationError("days must be between 1 and 90", nil)
	}
	items, err := h.tickets.RecentActivity(c.UserContext(), time.Duration(days)*24*time.Hour)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": items})
}

func parseTicketFilter(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{
		Limit:  c.QueryInt("limit", defaultPageSize),
		Offset: c.QueryInt("offset", 0),
	}
	if filter.Limit < 1 || filter.Limit > 200 {
		filter.Limit = defaultPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}

	if raw := c.Query("status"); raw != "" {
		for _, piece := range strings.Split(raw, ",") {
			status := domain.TicketStatus(strings.ToUpper(strings.TrimSpace(piece)))
			if status.Valid() {
				filter.Statuses = append(filter.Statuses, status)
			}
		}
	}
	if sbu := c.Query("sbu"); sbu != "" {
		filter.SBU = &sbu
	}
	if raw := c.Query("priority"); raw != "" {
		priority := domain.TicketPriority(strings.ToUpper(raw))
		if priority.Valid() {
			filter.Priority = &priority
		}
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if creator := c.Query("createdBy"); creator != "" {
		filter.CreatedBy = &creator
	}
	return filter
}
