package domain

// TicketDraft is the unvalidated form payload for ticket creation. Enum
// fields are plain strings because the form may send "" for untouched
// selects; the normalizer clears those before the lifecycle engine applies
// defaults.
type TicketDraft struct {
	Status             string
	Priority           string
	ProductName        string
	SBU                string
	Description        string
	Composition        string
	KeyFeatures        []string
	Applications       []string
	AssigneeID         *string
	ChemicalProperties ChemicalProperties
	SKUVariants        []SKUVariant
	SKUBaseNumber      string
	CorpBaseData       *CorpBaseData
	PricingData        *PricingData
	RegulatoryInfo     *RegulatoryInfo
	VendorInformation  *VendorInformation
	LaunchTimeline     *LaunchTimeline
}

// TicketUpdate is a field-level patch. Nil pointers mean "not part of this
// update"; the engine never interprets absence as a reset. Enrich requests a
// re-enrichment pass after the patch is applied, with the same gap-filling
// merge as create.
type TicketUpdate struct {
	Enrich             bool
	Status             *TicketStatus
	StatusReason       string
	Priority           *TicketPriority
	ProductName        *string
	SBU                *string
	Description        *string
	Composition        *string
	KeyFeatures        []string
	Applications       []string
	AssigneeID         *string
	ChemicalProperties *ChemicalProperties
	SKUVariants        []SKUVariant
	SKUBaseNumber      *string
	NPDITrackingNumber *string
	CorpBaseData       *CorpBaseData
	PricingData        *PricingData
	RegulatoryInfo     *RegulatoryInfo
	VendorInformation  *VendorInformation
	LaunchTimeline     *LaunchTimeline
}
