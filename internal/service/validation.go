package service

import (
	"context"
	"strings"

	"github.com/spec-kit/npdi-tracker/internal/domain"
	"github.com/spec-kit/npdi-tracker/internal/repository"
)

// SubmissionValidator checks template submission requirements. Validation
// runs on every transition into SUBMITTED: create, draft promotion, and the
// manual status endpoint alike.
type SubmissionValidator struct {
	templates repository.TemplateRepository
}

// NewSubmissionValidator constructs the validator.
func NewSubmissionValidator(templates repository.TemplateRepository) *SubmissionValidator {
	return &SubmissionValidator{templates: templates}
}

// MissingFields returns the required field keys that are still empty on the
// ticket. A creator with no assigned template has no requirements.
func (v *SubmissionValidator) MissingFields(ctx context.Context, ticket *domain.Ticket) ([]string, error) {
	if v == nil || v.templates == nil {
		return nil, nil
	}
	template, err := v.templates.FindForUser(ctx, ticket.CreatedBy)
	if err != nil {
		return nil, err
	}
	if template == nil {
		return nil, nil
	}

	missing := []string{}
	for _, key := range template.SubmissionRequirements {
		if !fieldPresent(ticket, key) {
			missing = append(missing, key)
		}
	}
	return missing, nil
}

func fieldPresent(ticket *domain.Ticket, key string) bool {
	switch key {
	case "productName":
		return strings.TrimSpace(ticket.ProductName) != ""
	case "sbu":
		return strings.TrimSpace(ticket.SBU) != ""
	case "description":
		return strings.TrimSpace(ticket.Description) != ""
	case "priority":
		return ticket.Priority != ""
	case "composition":
		return strings.TrimSpace(ticket.Composition) != ""
	case "casNumber", "chemicalProperties.casNumber":
		return strings.TrimSpace(ticket.ChemicalProperties.CASNumber) != ""
	case "keyFeatures":
		return len(ticket.KeyFeatures) > 0
	case "applications":
		return len(ticket.Applications) > 0
	case "skuVariants":
		return len(ticket.SKUVariants) > 0
	case "corpBaseData":
		return ticket.CorpBaseData != nil
	case "pricingData":
		return ticket.PricingData != nil
	case "regulatoryInfo":
		return ticket.RegulatoryInfo != nil
	case "vendorInformation":
		return ticket.VendorInformation != nil
	case "launchTimeline":
		return ticket.LaunchTimeline != nil
	default:
		// unknown requirement keys cannot block submission
		return true
	}
}
