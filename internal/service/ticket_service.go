package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/spec-kit/npdi-tracker/internal/auth"
	"github.com/spec-kit/npdi-tracker/internal/domain"
	"github.com/spec-kit/npdi-tracker/internal/enrichment"
	"github.com/spec-kit/npdi-tracker/internal/events"
	"github.com/spec-kit/npdi-tracker/internal/normalizer"
	"github.com/spec-kit/npdi-tracker/internal/repository"
	apperrors "github.com/spec-kit/npdi-tracker/pkg/util"
)

// Enricher fetches the chemistry bundle for a registry id.
type Enricher interface {
	Enrich(ctx context.Context, casNumber string) (*enrichment.Bundle, error)
}

// EnrichmentGate reports whether the enrichment integration is switched on.
type EnrichmentGate interface {
	Enrichment(ctx context.Context) (domain.EnrichmentSettings, error)
}

// TicketService owns the ticket lifecycle: create, update, status
// transitions, comments, and the audit trail they produce.
type TicketService struct {
	tickets    repository.TicketRepository
	normalizer *normalizer.Normalizer
	validator  *SubmissionValidator
	enricher   Enricher
	gate       EnrichmentGate
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo repository.TicketRepository
	Normalizer *normalizer.Normalizer
	Validator  *SubmissionValidator
	Enricher   Enricher
	Gate       EnrichmentGate
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TicketService{
		tickets:    deps.TicketRepo,
		normalizer: deps.Normalizer,
		validator:  deps.Validator,
		enricher:   deps.Enricher,
		gate:       deps.Gate,
		dispatcher: deps.Dispatcher,
		logger:     logger,
	}
}

// TicketListFilter describes listing parameters.
type TicketListFilter struct {
	Statuses   []domain.TicketStatus
	SBU        *string
	Priority   *domain.TicketPriority
	SearchTerm *string
	CreatedBy  *string
	Limit      int
	Offset     int
}

// CreateTicket creates a ticket in DRAFT or SUBMITTED state. Enrichment is
// attempted when a registry id is present and the caller has not opted out;
// its failure never blocks persistence.
func (s *TicketService) CreateTicket(ctx context.Context, actor auth.Identity, draft *domain.TicketDraft, skipEnrichment bool) (*domain.Ticket, error) {
	s.normalizer.Normalize(draft)

	status := domain.TicketStatusSubmitted
	if draft.Status == string(domain.TicketStatusDraft) {
		status = domain.TicketStatusDraft
	}
	priority := domain.TicketPriority(draft.Priority)
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}

	ticket := &domain.Ticket{
		Status:             status,
		Priority:           priority,
		ProductName:        draft.ProductName,
		SBU:                draft.SBU,
		Description:        draft.Description,
		Composition:        draft.Composition,
		KeyFeatures:        draft.KeyFeatures,
		Applications:       draft.Applications,
		CreatedBy:          actor.StableID,
		CreatedByName:      actor.DisplayName,
		AssigneeID:         draft.AssigneeID,
		ChemicalProperties: draft.ChemicalProperties,
		SKUVariants:        draft.SKUVariants,
		SKUBaseNumber:      draft.SKUBaseNumber,
		CorpBaseData:       draft.CorpBaseData,
		PricingData:        draft.PricingData,
		RegulatoryInfo:     draft.RegulatoryInfo,
		VendorInformation:  draft.VendorInformation,
		LaunchTimeline:     draft.LaunchTimeline,
		Comments:           []domain.Comment{},
	}

	if cas := ticket.ChemicalProperties.CASNumber; cas != "" && !skipEnrichment {
		s.applyEnrichment(ctx, ticket, cas)
	}

	if count := domain.CountBulk(ticket.SKUVariants); count > 1 {
		return nil, apperrors.NewConflict("a ticket may carry at most one BULK variant", map[string]any{
			"bulkCount": count,
		})
	}

	if status == domain.TicketStatusSubmitted {
		if err := s.checkSubmissionRequirements(ctx, ticket); err != nil {
			return nil, err
		}
	}

	number, err := s.uniqueTicketNumber(ctx)
	if err != nil {
		return nil, err
	}
	ticket.TicketNumber = number

	ticket.StatusHistory = []domain.StatusHistoryEntry{
		newHistoryEntry(actor, status, domain.ActionTicketCreated, "Ticket created", nil),
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:         events.EventTicketCreated,
		TicketID:     ticket.ID.Hex(),
		TicketNumber: ticket.TicketNumber,
		Actor:        actorOf(actor),
		Payload: events.TicketCreatedPayload{
			ProductName: ticket.ProductName,
			SBU:         ticket.SBU,
			Priority:    ticket.Priority,
			Status:      ticket.Status,
		},
	})
	return ticket, nil
}

// applyEnrichment merges the bundle under the user-supplied fields. User
// input always wins on conflict; enrichment only fills gaps.
func (s *TicketService) applyEnrichment(ctx context.Context, ticket *domain.Ticket, cas string) {
	if s.enricher == nil {
		return
	}
	if s.gate != nil {
		settings, err := s.gate.Enrichment(ctx)
		if err != nil || !settings.Enabled {
			return
		}
	}

	bundle, err := s.enricher.Enrich(ctx, cas)
	if err != nil {
		s.logger.Warn("enrichment failed, proceeding with user data",
			zap.String("cas", cas), zap.Error(err))
		ticket.ChemicalProperties.AutoPopulated = false
		ticket.ChemicalProperties.EnrichmentError = err.Error()
		return
	}
	mergeEnrichment(ticket, bundle)
}

func mergeEnrichment(ticket *domain.Ticket, bundle *enrichment.Bundle) {
	if ticket.ProductName == "" {
		ticket.ProductName = bundle.ProductName
	}
	if ticket.Description == "" {
		ticket.Description = bundle.Description
	}
	if len(ticket.KeyFeatures) == 0 {
		ticket.KeyFeatures = bundle.KeyFeatures
	}
	if len(ticket.Applications) == 0 {
		ticket.Applications = bundle.Applications
	}

	user := &ticket.ChemicalProperties
	enriched := bundle.Chemical
	fillString(&user.MolecularFormula, enriched.MolecularFormula)
	fillString(&user.MolecularWeight, enriched.MolecularWeight)
	fillString(&user.IUPACName, enriched.IUPACName)
	fillString(&user.CanonicalSMILES, enriched.CanonicalSMILES)
	fillString(&user.IsomericSMILES, enriched.IsomericSMILES)
	fillString(&user.InChI, enriched.InChI)
	fillString(&user.InChIKey, enriched.InChIKey)
	if len(user.Synonyms) == 0 {
		user.Synonyms = enriched.Synonyms
	}
	if user.Hazards.SignalWord == "" && len(user.Hazards.HazardStatements) == 0 {
		user.Hazards = enriched.Hazards
	}
	props := &user.AdditionalProperties
	enrichedProps := enriched.AdditionalProperties
	fillString(&props.BoilingPoint, enrichedProps.BoilingPoint)
	fillString(&props.MeltingPoint, enrichedProps.MeltingPoint)
	fillString(&props.FlashPoint, enrichedProps.FlashPoint)
	fillString(&props.Density, enrichedProps.Density)
	fillString(&props.VaporPressure, enrichedProps.VaporPressure)
	fillString(&props.VaporDensity, enrichedProps.VaporDensity)
	fillString(&props.RefractiveIndex, enrichedProps.RefractiveIndex)
	fillString(&props.UNNumber, enrichedProps.UNNumber)
	fillString(&props.PhysicalState, enrichedProps.PhysicalState)

	user.AutoPopulated = enriched.AutoPopulated
	user.EnrichmentError = enriched.EnrichmentError
}

func fillString(target *string, value string) {
	if *target == "" {
		*target = value
	}
}

// UpdateTicket applies a field-level patch. A terminal-status ticket rejects
// edits unless the patch itself moves the status away from the terminal
// value. One update appends up to four audit entries, in detection order:
// edit, status, SKU assignment, NPDI initiation.
func (s *TicketService) UpdateTicket(ctx context.Context, actor auth.Identity, id string, patch *domain.TicketUpdate) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	statusChanging := patch.Status != nil && *patch.Status != ticket.Status
	if statusChanging && !patch.Status.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": *patch.Status})
	}
	if ticket.Status.Terminal() && !statusChanging {
		return nil, apperrors.NewLocked(
			fmt.Sprintf("ticket is %s and cannot be edited", ticket.Status),
			map[string]any{"status": ticket.Status},
		)
	}

	if patch.SKUVariants != nil {
		if count := domain.CountBulk(patch.SKUVariants); count > 1 {
			return nil, apperrors.NewConflict("a ticket may carry at most one BULK variant", map[string]any{
				"bulkCount": count,
			})
		}
	}

	oldStatus := ticket.Status
	changes := applyPatch(ticket, patch)

	if patch.Enrich {
		if cas := ticket.ChemicalProperties.CASNumber; cas != "" {
			s.applyEnrichment(ctx, ticket, cas)
		}
	}

	if statusChanging {
		ticket.Status = *patch.Status
		if ticket.Status == domain.TicketStatusSubmitted {
			if err := s.checkSubmissionRequirements(ctx, ticket); err != nil {
				return nil, err
			}
		}
	}

	var skuChange, npdiChange *domain.StatusHistoryEntry

	if patch.SKUBaseNumber != nil && *patch.SKUBaseNumber != ticket.SKUBaseNumber {
		old := ticket.SKUBaseNumber
		ticket.SKUBaseNumber = *patch.SKUBaseNumber
		entry := newHistoryEntry(actor, ticket.Status, domain.ActionSKUAssignment,
			fmt.Sprintf("SKU base number set to %s", ticket.SKUBaseNumber),
			map[string]any{"oldBaseNumber": old, "newBaseNumber": ticket.SKUBaseNumber})
		skuChange = &entry
	}

	oldTicketNumber := ticket.TicketNumber
	if patch.NPDITrackingNumber != nil && *patch.NPDITrackingNumber != "" && ticket.NPDITrackingNumber == "" {
		tracking := *patch.NPDITrackingNumber
		existing, err := s.tickets.GetByNumber(ctx, tracking)
		if err != nil && !apperrors.IsCode(err, "NOT_FOUND") {
			return nil, apperrors.MapError(err)
		}
		if existing != nil && existing.ID != ticket.ID {
			return nil, apperrors.NewConflict("NPDI tracking number already in use", map[string]any{
				"trackingNumber":   tracking,
				"conflictTicketId": existing.ID.Hex(),
			})
		}
		ticket.NPDITrackingNumber = tracking
		// the only circumstance under which the ticket number is rewritten
		ticket.TicketNumber = tracking
		entry := newHistoryEntry(actor, ticket.Status, domain.ActionNPDIInitiated,
			fmt.Sprintf("NPDI initiated with tracking number %s", tracking),
			map[string]any{"oldTicketNumber": oldTicketNumber, "trackingNumber": tracking})
		npdiChange = &entry
	}

	if len(changes) > 0 {
		ticket.StatusHistory = append(ticket.StatusHistory,
			newHistoryEntry(actor, ticket.Status, domain.ActionTicketEdit,
				strings.Join(changes, "; "),
				map[string]any{"changes": changes}))
	}
	if statusChanging {
		reason := patch.StatusReason
		if reason == "" {
			reason = fmt.Sprintf("Status changed from %s to %s", oldStatus, ticket.Status)
		}
		ticket.StatusHistory = append(ticket.StatusHistory,
			newHistoryEntry(actor, ticket.Status, domain.ActionStatusChange, reason,
				map[string]any{"oldStatus": oldStatus, "newStatus": ticket.Status}))
	}
	if skuChange != nil {
		ticket.StatusHistory = append(ticket.StatusHistory, *skuChange)
	}
	if npdiChange != nil {
		ticket.StatusHistory = append(ticket.StatusHistory, *npdiChange)
	}

	if err := s.tickets.Replace(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if len(changes) > 0 {
		s.publishEvent(ctx, events.Event{
			Type:         events.EventTicketEdited,
			TicketID:     ticket.ID.Hex(),
			TicketNumber: ticket.TicketNumber,
			Actor:        actorOf(actor),
			Payload:      events.TicketEditedPayload{Changes: changes},
		})
	}
	if statusChanging {
		s.publishStatusChange(ctx, actor, ticket, oldStatus, patch.StatusReason)
	}
	if skuChange != nil {
		s.publishEvent(ctx, events.Event{
			Type:         events.EventSKUAssigned,
			TicketID:     ticket.ID.Hex(),
			TicketNumber: ticket.TicketNumber,
			Actor:        actorOf(actor),
			Payload: events.SKUAssignedPayload{
				OldBaseNumber: stringDetail(skuChange.Details, "oldBaseNumber"),
				NewBaseNumber: ticket.SKUBaseNumber,
			},
		})
	}
	if npdiChange != nil {
		s.publishEvent(ctx, events.Event{
			Type:         events.EventNPDIInitiated,
			TicketID:     ticket.ID.Hex(),
			TicketNumber: ticket.TicketNumber,
			Actor:        actorOf(actor),
			Payload: events.NPDIInitiatedPayload{
				TrackingNumber:  ticket.NPDITrackingNumber,
				OldTicketNumber: oldTicketNumber,
			},
		})
	}
	return ticket, nil
}

// applyPatch writes the patch onto the ticket and returns human-readable
// sentences for the significant changes.
func applyPatch(ticket *domain.Ticket, patch *domain.TicketUpdate) []string {
	changes := []string{}

	if patch.ProductName != nil && *patch.ProductName != ticket.ProductName {
		changes = append(changes, fmt.Sprintf("Product name changed from %q to %q", ticket.ProductName, *patch.ProductName))
		ticket.ProductName = *patch.ProductName
	}
	if patch.SBU != nil && *patch.SBU != ticket.SBU {
		changes = append(changes, fmt.Sprintf("SBU changed from %q to %q", ticket.SBU, *patch.SBU))
		ticket.SBU = *patch.SBU
	}
	if patch.Priority != nil && *patch.Priority != ticket.Priority && patch.Priority.Valid() {
		changes = append(changes, fmt.Sprintf("Priority changed from %s to %s", ticket.Priority, *patch.Priority))
		ticket.Priority = *patch.Priority
	}
	if patch.ChemicalProperties != nil {
		if cas := patch.ChemicalProperties.CASNumber; cas != ticket.ChemicalProperties.CASNumber {
			changes = append(changes, fmt.Sprintf("CAS number changed from %q to %q", ticket.ChemicalProperties.CASNumber, cas))
		}
		ticket.ChemicalProperties = *patch.ChemicalProperties
	}
	if patch.AssigneeID != nil {
		old := ""
		if ticket.AssigneeID != nil {
			old = *ticket.AssigneeID
		}
		if *patch.AssigneeID != old {
			changes = append(changes, fmt.Sprintf("Assignee changed from %q to %q", old, *patch.AssigneeID))
		}
		ticket.AssigneeID = patch.AssigneeID
	}

	if patch.Description != nil {
		ticket.Description = *patch.Description
	}
	if patch.Composition != nil {
		ticket.Composition = *patch.Composition
	}
	if patch.KeyFeatures != nil {
		ticket.KeyFeatures = normalizer.SplitList(patch.KeyFeatures)
	}
	if patch.Applications != nil {
		ticket.Applications = normalizer.SplitList(patch.Applications)
	}
	if patch.SKUVariants != nil {
		ticket.SKUVariants = patch.SKUVariants
	}
	if patch.CorpBaseData != nil {
		ticket.CorpBaseData = patch.CorpBaseData
	}
	if patch.PricingData != nil {
		ticket.PricingData = patch.PricingData
	}
	if patch.RegulatoryInfo != nil {
		ticket.RegulatoryInfo = patch.RegulatoryInfo
	}
	if patch.VendorInformation != nil {
		ticket.VendorInformation = patch.VendorInformation
	}
	if patch.LaunchTimeline != nil {
		ticket.LaunchTimeline = patch.LaunchTimeline
	}
	return changes
}

// UpdateStatus is the manual status endpoint. Setting the current status is
// a no-op: no history entry, no notification.
func (s *TicketService) UpdateStatus(ctx context.Context, actor auth.Identity, id string, newStatus domain.TicketStatus, reason string) (*domain.Ticket, error) {
	if !newStatus.Valid() {
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": newStatus})
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if ticket.Status == newStatus {
		return ticket, nil
	}

	oldStatus := ticket.Status
	ticket.Status = newStatus
	if newStatus == domain.TicketStatusSubmitted {
		if err := s.checkSubmissionRequirements(ctx, ticket); err != nil {
			return nil, err
		}
	}

	if reason == "" {
		reason = fmt.Sprintf("Status changed from %s to %s", oldStatus, newStatus)
	}
	ticket.StatusHistory = append(ticket.StatusHistory,
		newHistoryEntry(actor, newStatus, domain.ActionStatusChange, reason,
			map[string]any{"oldStatus": oldStatus, "newStatus": newStatus}))

	if err := s.tickets.Replace(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishStatusChange(ctx, actor, ticket, oldStatus, reason)
	return ticket, nil
}

// AddComment appends a comment and its audit entry.
func (s *TicketService) AddComment(ctx context.Context, actor auth.Identity, id, content string) (*domain.Ticket, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidationError("comment content required", nil)
	}
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := time.Now().UTC()
	ticket.Comments = append(ticket.Comments, domain.Comment{
		Author:     actor.StableID,
		AuthorName: actor.DisplayName,
		Content:    content,
		CreatedAt:  now,
	})
	preview := stringPreview(content, 80)
	ticket.StatusHistory = append(ticket.StatusHistory,
		newHistoryEntry(actor, ticket.Status, domain.ActionCommentAdded,
			fmt.Sprintf("Comment added: %s", preview),
			map[string]any{"preview": preview}))

	if err := s.tickets.Replace(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:         events.EventTicketCommentAdded,
		TicketID:     ticket.ID.Hex(),
		TicketNumber: ticket.TicketNumber,
		Actor:        actorOf(actor),
		Payload:      events.TicketCommentAddedPayload{Preview: preview},
	})
	return ticket, nil
}

// GetTicket returns the full ticket by id; export generators depend on this
// read-only accessor.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListTickets returns active tickets; COMPLETED and CANCELED are excluded
// unless an explicit status filter is given.
func (s *TicketService) ListTickets(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, int64, error) {
	items, total, err := s.tickets.List(ctx, repository.TicketFilter{
		Statuses:        filter.Statuses,
		SBU:             filter.SBU,
		Priority:        filter.Priority,
		SearchTerm:      filter.SearchTerm,
		CreatedBy:       filter.CreatedBy,
		ExcludeTerminal: len(filter.Statuses) == 0,
		Limit:           filter.Limit,
		Offset:          filter.Offset,
	})
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return items, total, nil
}

// ListArchivedTickets returns only terminal tickets.
func (s *TicketService) ListArchivedTickets(ctx context.Context, filter TicketListFilter) ([]domain.Ticket, int64, error) {
	items, total, err := s.tickets.List(ctx, repository.TicketFilter{
		SBU:          filter.SBU,
		Priority:     filter.Priority,
		SearchTerm:   filter.SearchTerm,
		CreatedBy:    filter.CreatedBy,
		OnlyTerminal: true,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	})
	if err != nil {
		return nil, 0, apperrors.MapError(err)
	}
	return items, total, nil
}

// ActivityItem is one entry of the recent-activity feed.
type ActivityItem struct {
	TicketID     string               `json:"ticketId"`
	TicketNumber string               `json:"ticketNumber"`
	ProductName  string               `json:"productName"`
	Kind         string               `json:"kind"`
	Action       domain.HistoryAction `json:"action,omitempty"`
	Actor        string               `json:"actor"`
	ActorName    string               `json:"actorName"`
	Summary      string               `json:"summary"`
	Timestamp    time.Time            `json:"timestamp"`
}

// RecentActivity returns the time-windowed union of audit-log and comment
// events across tickets, newest first.
func (s *TicketService) RecentActivity(ctx context.Context, window time.Duration) ([]ActivityItem, error) {
	since := time.Now().UTC().Add(-window)
	tickets, err := s.tickets.FindUpdatedSince(ctx, since)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	items := []ActivityItem{}
	for i := range tickets {
		ticket := &tickets[i]
		for _, entry := range ticket.StatusHistory {
			if entry.Timestamp.Before(since) {
				continue
			}
			items = append(items, ActivityItem{
				TicketID:     ticket.ID.Hex(),
				TicketNumber: ticket.TicketNumber,
				ProductName:  ticket.ProductName,
				Kind:         "history",
				Action:       entry.Action,
				Actor:        entry.ChangedBy,
				ActorName:    entry.ChangedByName,
				Summary:      entry.Reason,
				Timestamp:    entry.Timestamp,
			})
		}
		for _, comment := range ticket.Comments {
			if comment.CreatedAt.Before(since) {
				continue
			}
			items = append(items, ActivityItem{
				TicketID:     ticket.ID.Hex(),
				TicketNumber: ticket.TicketNumber,
				ProductName:  ticket.ProductName,
				Kind:         "comment",
				Actor:        comment.Author,
				ActorName:    comment.AuthorName,
				Summary:      stringPreview(comment.Content, 80),
				Timestamp:    comment.CreatedAt,
			})
		}
	}
	sortActivity(items)
	return items, nil
}

func sortActivity(items []ActivityItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp.After(items[j].Timestamp)
	})
}

func (s *TicketService) checkSubmissionRequirements(ctx context.Context, ticket *domain.Ticket) error {
	missing, err := s.validator.MissingFields(ctx, ticket)
	if err != nil {
		return err
	}
	if len(missing) > 0 {
		return apperrors.NewValidationError("required fields missing for submission", map[string]any{
			"missingFields": missing,
		})
	}
	return nil
}

func (s *TicketService) uniqueTicketNumber(ctx context.Context) (string, error) {
	for attempt := 0; attempt < 5; attempt++ {
		number := generateTicketNumber()
		exists, err := s.tickets.NumberExists(ctx, number, primitive.ObjectID{})
		if err != nil {
			return "", apperrors.MapError(err)
		}
		if !exists {
			return number, nil
		}
	}
	return "", apperrors.NewInternalError(fmt.Errorf("could not allocate a unique ticket number"))
}

func generateTicketNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return "NPDI-" + time.Now().UTC().Format("20060102") + "-" + suffix
}

func newHistoryEntry(actor auth.Identity, status domain.TicketStatus, action domain.HistoryAction, reason string, details map[string]any) domain.StatusHistoryEntry {
	return domain.StatusHistoryEntry{
		Status:        status,
		ChangedBy:     actor.StableID,
		ChangedByName: actor.DisplayName,
		Reason:        reason,
		Action:        action,
		Timestamp:     time.Now().UTC(),
		Details:       details,
	}
}

func (s *TicketService) publishStatusChange(ctx context.Context, actor auth.Identity, ticket *domain.Ticket, oldStatus domain.TicketStatus, reason string) {
	s.publishEvent(ctx, events.Event{
		Type:         events.EventTicketStatusChanged,
		TicketID:     ticket.ID.Hex(),
		TicketNumber: ticket.TicketNumber,
		Actor:        actorOf(actor),
		Payload: events.TicketStatusChangedPayload{
			ProductName: ticket.ProductName,
			SBU:         ticket.SBU,
			Priority:    ticket.Priority,
			OldStatus:   oldStatus,
			NewStatus:   ticket.Status,
			Reason:      reason,
		},
	})
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func actorOf(identity auth.Identity) events.Actor {
	return events.Actor{ID: identity.StableID, Name: identity.DisplayName}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	cut := max
	suffix := ""
	if max > 3 {
		cut = max - 3
		suffix = "..."
	}
	// back up to a rune boundary so the cut never splits a multibyte rune
	for cut > 0 && !utf8.RuneStart(body[cut]) {
		cut--
	}
	return body[:cut] + suffix
}

func stringDetail(details map[string]any, key string) string {
	if details == nil {
		return ""
	}
	if value, ok := details[key].(string); ok {
		return value
	}
	return ""
}
