package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TicketStatus enumerates lifecycle states for NPDI tickets.
type TicketStatus string

const (
	TicketStatusDraft         TicketStatus = "DRAFT"
	TicketStatusSubmitted     TicketStatus = "SUBMITTED"
	TicketStatusInProcess     TicketStatus = "IN_PROCESS"
	TicketStatusNPDIInitiated TicketStatus = "NPDI_INITIATED"
	TicketStatusCompleted     TicketStatus = "COMPLETED"
	TicketStatusCanceled      TicketStatus = "CANCELED"
)

// Valid reports whether s is a known status.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusDraft, TicketStatusSubmitted, TicketStatusInProcess,
		TicketStatusNPDIInitiated, TicketStatusCompleted, TicketStatusCanceled:
		return true
	}
	return false
}

// Terminal reports whether s locks the ticket against plain edits.
func (s TicketStatus) Terminal() bool {
	return s == TicketStatusCompleted || s == TicketStatusCanceled
}

// TicketPriority enumerates processing urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// Valid reports whether p is a known priority.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// CorpBaseData carries corporate master-data fields for the product.
type CorpBaseData struct {
	MaterialGroup   string `bson:"materialGroup,omitempty" json:"materialGroup,omitempty"`
	ProductLine     string `bson:"productLine,omitempty" json:"productLine,omitempty"`
	Plant           string `bson:"plant,omitempty" json:"plant,omitempty"`
	ProfitCenter    string `bson:"profitCenter,omitempty" json:"profitCenter,omitempty"`
	StorageCondition string `bson:"storageCondition,omitempty" json:"storageCondition,omitempty"`
}

// PricingData carries commercial fields.
type PricingData struct {
	StandardCost   float64 `bson:"standardCost,omitempty" json:"standardCost,omitempty"`
	TargetMargin   float64 `bson:"targetMargin,omitempty" json:"targetMargin,omitempty"`
	Currency       string  `bson:"currency,omitempty" json:"currency,omitempty"`
	PriceReference string  `bson:"priceReference,omitempty" json:"priceReference,omitempty"`
}

// RegulatoryInfo carries compliance fields.
type RegulatoryInfo struct {
	TSCAListed       bool   `bson:"tscaListed,omitempty" json:"tscaListed,omitempty"`
	ReachRegistered  bool   `bson:"reachRegistered,omitempty" json:"reachRegistered,omitempty"`
	ExportControl    string `bson:"exportControl,omitempty" json:"exportControl,omitempty"`
	SDSAvailable     bool   `bson:"sdsAvailable,omitempty" json:"sdsAvailable,omitempty"`
	TransportClass   string `bson:"transportClass,omitempty" json:"transportClass,omitempty"`
}

// VendorInformation carries sourcing fields.
type VendorInformation struct {
	VendorName    string `bson:"vendorName,omitempty" json:"vendorName,omitempty"`
	VendorNumber  string `bson:"vendorNumber,omitempty" json:"vendorNumber,omitempty"`
	LeadTimeWeeks int    `bson:"leadTimeWeeks,omitempty" json:"leadTimeWeeks,omitempty"`
	MinOrderQty   string `bson:"minOrderQty,omitempty" json:"minOrderQty,omitempty"`
}

// LaunchTimeline carries planning dates.
type LaunchTimeline struct {
	TargetLaunch   *time.Time `bson:"targetLaunch,omitempty" json:"targetLaunch,omitempty"`
	SampleReady    *time.Time `bson:"sampleReady,omitempty" json:"sampleReady,omitempty"`
	FirstShipment  *time.Time `bson:"firstShipment,omitempty" json:"firstShipment,omitempty"`
}

// Ticket is the aggregate for a new-product-development request. The
// embedded status history and comments are persisted with the ticket in a
// single document so an audit append and the field update it records land
// in one atomic write.
type Ticket struct {
	ID                 primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	TicketNumber       string               `bson:"ticketNumber" json:"ticketNumber"`
	NPDITrackingNumber string               `bson:"npdiTrackingNumber,omitempty" json:"npdiTrackingNumber,omitempty"`
	Status             TicketStatus         `bson:"status" json:"status"`
	Priority           TicketPriority       `bson:"priority" json:"priority"`
	ProductName        string               `bson:"productName" json:"productName"`
	SBU                string               `bson:"sbu" json:"sbu"`
	Description        string               `bson:"description,omitempty" json:"description,omitempty"`
	KeyFeatures        []string             `bson:"keyFeatures,omitempty" json:"keyFeatures,omitempty"`
	Applications       []string             `bson:"applications,omitempty" json:"applications,omitempty"`
	Composition        string               `bson:"composition,omitempty" json:"composition,omitempty"`
	CreatedBy          string               `bson:"createdBy" json:"createdBy"`
	CreatedByName      string               `bson:"createdByName" json:"createdByName"`
	AssigneeID         *string              `bson:"assigneeId,omitempty" json:"assigneeId,omitempty"`
	ChemicalProperties ChemicalProperties   `bson:"chemicalProperties" json:"chemicalProperties"`
	SKUVariants        []SKUVariant         `bson:"skuVariants" json:"skuVariants"`
	SKUBaseNumber      string               `bson:"skuBaseNumber,omitempty" json:"skuBaseNumber,omitempty"`
	CorpBaseData       *CorpBaseData        `bson:"corpBaseData,omitempty" json:"corpBaseData,omitempty"`
	PricingData        *PricingData         `bson:"pricingData,omitempty" json:"pricingData,omitempty"`
	RegulatoryInfo     *RegulatoryInfo      `bson:"regulatoryInfo,omitempty" json:"regulatoryInfo,omitempty"`
	VendorInformation  *VendorInformation   `bson:"vendorInformation,omitempty" json:"vendorInformation,omitempty"`
	LaunchTimeline     *LaunchTimeline      `bson:"launchTimeline,omitempty" json:"launchTimeline,omitempty"`
	StatusHistory      []StatusHistoryEntry `bson:"statusHistory" json:"statusHistory"`
	Comments           []Comment            `bson:"comments" json:"comments"`
	CreatedAt          time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time            `bson:"updatedAt" json:"updatedAt"`
}
