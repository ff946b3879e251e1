package dto

import (
	"encoding/json"

	"github.com/spec-kit/npdi-tracker/internal/domain"
)

// StringList accepts either a JSON array of strings or a single string. The
// intake form sends textarea fields both ways depending on the widget.
type StringList []string

// UnmarshalJSON implements json.Unmarshaler.
func (l *StringList) UnmarshalJSON(data []byte) error {
	var many []string
	if err := json.Unmarshal(data, &many); err == nil {
		*l = many
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	if one == "" {
		*l = nil
		return nil
	}
	*l = []string{one}
	return nil
}

// ChemicalPropertiesRequest mirrors the chemical sub-record with lenient
// list fields.
type ChemicalPropertiesRequest struct {
	CASNumber            string                      `json:"casNumber"`
	MolecularFormula     string                      `json:"molecularFormula"`
	MolecularWeight      string                      `json:"molecularWeight"`
	IUPACName            string                      `json:"iupacName"`
	CanonicalSMILES      string                      `json:"canonicalSmiles"`
	IsomericSMILES       string                      `json:"isomericSmiles"`
	InChI                string                      `json:"inchi"`
	InChIKey             string                      `json:"inchiKey"`
	Synonyms             StringList                  `json:"synonyms"`
	Hazards              HazardClassificationRequest `json:"hazards"`
	AdditionalProperties domain.AdditionalProperties `json:"additionalProperties"`
}

// HazardClassificationRequest mirrors GHS labelling input.
type HazardClassificationRequest struct {
	SignalWord              string     `json:"signalWord"`
	HazardStatements        StringList `json:"hazardStatements"`
	PrecautionaryStatements StringList `json:"precautionaryStatements"`
}

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Status             string                     `json:"status"`
	Priority           string                     `json:"priority"`
	ProductName        string                     `json:"productName"`
	SBU                string                     `json:"sbu"`
	Description        string                     `json:"description"`
	Composition        string                     `json:"composition"`
	KeyFeatures        StringList                 `json:"keyFeatures"`
	Applications       StringList                 `json:"applications"`
	AssigneeID         *string                    `json:"assigneeId"`
	ChemicalProperties ChemicalPropertiesRequest  `json:"chemicalProperties"`
	SKUVariants        []domain.SKUVariant        `json:"skuVariants"`
	SKUBaseNumber      string                     `json:"skuBaseNumber"`
	CorpBaseData       *domain.CorpBaseData       `json:"corpBaseData"`
	PricingData        *domain.PricingData        `json:"pricingData"`
	RegulatoryInfo     *domain.RegulatoryInfo     `json:"regulatoryInfo"`
	VendorInformation  *domain.VendorInformation  `json:"vendorInformation"`
	LaunchTimeline     *domain.LaunchTimeline     `json:"launchTimeline"`
	SkipEnrichment     bool                       `json:"skipEnrichment"`
}

// Draft converts the request to the engine's input type.
func (r *CreateTicketRequest) Draft() *domain.TicketDraft {
	return &domain.TicketDraft{
		Status:             r.Status,
		Priority:           r.Priority,
		ProductName:        r.ProductName,
		SBU:                r.SBU,
		Description:        r.Description,
		Composition:        r.Composition,
		KeyFeatures:        r.KeyFeatures,
		Applications:       r.Applications,
		AssigneeID:         r.AssigneeID,
		ChemicalProperties: r.ChemicalProperties.Domain(),
		SKUVariants:        r.SKUVariants,
		SKUBaseNumber:      r.SKUBaseNumber,
		CorpBaseData:       r.CorpBaseData,
		PricingData:        r.PricingData,
		RegulatoryInfo:     r.RegulatoryInfo,
		VendorInformation:  r.VendorInformation,
		LaunchTimeline:     r.LaunchTimeline,
	}
}

// Domain converts the lenient request type to the persisted shape.
func (r ChemicalPropertiesRequest) Domain() domain.ChemicalProperties {
	return domain.ChemicalProperties{
		CASNumber:        r.CASNumber,
		MolecularFormula: r.MolecularFormula,
		MolecularWeight:  r.MolecularWeight,
		IUPACName:        r.IUPACName,
		CanonicalSMILES:  r.CanonicalSMILES,
		IsomericSMILES:   r.IsomericSMILES,
		InChI:            r.InChI,
		InChIKey:         r.InChIKey,
		Synonyms:         r.Synonyms,
		Hazards: domain.HazardClassification{
			SignalWord:              r.Hazards.SignalWord,
			HazardStatements:        r.Hazards.HazardStatements,
			PrecautionaryStatements: r.Hazards.PrecautionaryStatements,
		},
		AdditionalProperties: r.AdditionalProperties,
	}
}

// UpdateTicketRequest is a field-level patch; absent keys stay untouched.
type UpdateTicketRequest struct {
	Enrich             bool                       `json:"enrich"`
	Status             *domain.TicketStatus       `json:"status"`
	StatusReason       string                     `json:"statusReason"`
	Priority           *domain.TicketPriority     `json:"priority"`
	ProductName        *string                    `json:"productName"`
	SBU                *string                    `json:"sbu"`
	Description        *string                    `json:"description"`
	Composition        *string                    `json:"composition"`
	KeyFeatures        *StringList                `json:"keyFeatures"`
	Applications       *StringList                `json:"applications"`
	AssigneeID         *string                    `json:"assigneeId"`
	ChemicalProperties *ChemicalPropertiesRequest `json:"chemicalProperties"`
	SKUVariants        []domain.SKUVariant        `json:"skuVariants"`
	SKUBaseNumber      *string                    `json:"skuBaseNumber"`
	NPDITrackingNumber *string                    `json:"npdiTrackingNumber"`
	CorpBaseData       *domain.CorpBaseData       `json:"corpBaseData"`
	PricingData        *domain.PricingData        `json:"pricingData"`
	RegulatoryInfo     *domain.RegulatoryInfo     `json:"regulatoryInfo"`
	VendorInformation  *domain.VendorInformation  `json:"vendorInformation"`
	LaunchTimeline     *domain.LaunchTimeline     `json:"launchTimeline"`
}

// Patch converts the request to the engine's patch type.
func (r *UpdateTicketRequest) Patch() *domain.TicketUpdate {
	patch := &domain.TicketUpdate{
		Enrich:             r.Enrich,
		Status:             r.Status,
		StatusReason:       r.StatusReason,
		Priority:           r.Priority,
		ProductName:        r.ProductName,
		SBU:                r.SBU,
		Description:        r.Description,
		Composition:        r.Composition,
		AssigneeID:         r.AssigneeID,
		SKUVariants:        r.SKUVariants,
		SKUBaseNumber:      r.SKUBaseNumber,
		NPDITrackingNumber: r.NPDITrackingNumber,
		CorpBaseData:       r.CorpBaseData,
		PricingData:        r.PricingData,
		RegulatoryInfo:     r.RegulatoryInfo,
		VendorInformation:  r.VendorInformation,
		LaunchTimeline:     r.LaunchTimeline,
	}
	if r.KeyFeatures != nil {
		patch.KeyFeatures = *r.KeyFeatures
	}
	if r.Applications != nil {
		patch.Applications = *r.Applications
	}
	if r.ChemicalProperties != nil {
		chem := r.ChemicalProperties.Domain()
		patch.ChemicalProperties = &chem
	}
	return patch
}

// UpdateStatusRequest payload for the manual status endpoint.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
	Reason string              `json:"reason"`
}

// AddCommentRequest payload.
type AddCommentRequest struct {
	Content string `json:"content"`
}

// TicketListResponse wraps a page of tickets.
type TicketListResponse struct {
	Items  []domain.Ticket `json:"items"`
	Total  int64           `json:"total"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}
