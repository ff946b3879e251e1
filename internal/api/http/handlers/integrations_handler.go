package handlers

import (
	"regexp"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/npdi-tracker/internal/enrichment"
	"github.com/spec-kit/npdi-tracker/internal/reconcile"
	apperrors "github.com/spec-kit/npdi-tracker/pkg/util"
)

var casPattern = regexp.MustCompile(`^\d{1,7}-\d{2}-\d$`)

// IntegrationsHandler exposes the chemical-lookup and enterprise-search
// surfaces.
type IntegrationsHandler struct {
	enricher  *enrichment.Client
	reconcile *reconcile.Client
}

// NewIntegrationsHandler constructs the handler.
func NewIntegrationsHandler(enricher *enrichment.Client, reconcileClient *reconcile.Client) *IntegrationsHandler {
	return &IntegrationsHandler{enricher: enricher, reconcile: reconcileClient}
}

// ChemicalLookup GET /chemicals/:cas.
func (h *IntegrationsHandler) ChemicalLookup(c *fiber.Ctx) error {
	cas := c.Params("cas")
	if !casPattern.MatchString(cas) {
		return apperrors.NewValidationError("invalid CAS registry number", map[string]any{
			"casNumber": cas,
		})
	}
	bundle, err := h.enricher.Enrich(c.UserContext(), cas)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": bundle})
}

// EnterpriseSearch GET /enterprise/search.
func (h *IntegrationsHandler) EnterpriseSearch(c *fiber.Ctx) error {
	searchType := reconcile.SearchType(c.Query("type"))
	if !searchType.Valid() {
		return apperrors.NewValidationError("type must be one of partNumber, productName, casNumber", nil)
	}
	value := c.Query("value")
	if value == "" {
		return apperrors.NewValidationError("value is required", nil)
	}
	limit := c.QueryInt("limit", 10)
	offset := c.QueryInt("offset", 0)
	if limit < 1 || limit > 100 {
		return apperrors.NewValidationError("limit must be between 1 and 100", nil)
	}
	if offset < 0 {
		return apperrors.NewValidationError("offset must not be negative", nil)
	}

	result, err := h.reconcile.Search(c.UserContext(), searchType, value, limit, offset)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}
