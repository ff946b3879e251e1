package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/spec-kit/npdi-tracker/internal/auth"
	"github.com/spec-kit/npdi-tracker/internal/domain"
	"github.com/spec-kit/npdi-tracker/internal/enrichment"
	"github.com/spec-kit/npdi-tracker/internal/events"
	"github.com/spec-kit/npdi-tracker/internal/normalizer"
	"github.com/spec-kit/npdi-tracker/internal/repository"
	apperrors "github.com/spec-kit/npdi-tracker/pkg/util"
)

// fakeTicketRepo is an in-memory TicketRepository.
type fakeTicketRepo struct {
	tickets map[string]*domain.Ticket
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{tickets: map[string]*domain.Ticket{}}
}

func (r *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	if ticket.ID.IsZero() {
		ticket.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now
	copied := *ticket
	r.tickets[ticket.ID.Hex()] = &copied
	return nil
}

func (r *fakeTicketRepo) Replace(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := r.tickets[ticket.ID.Hex()]; !ok {
		return apperrors.NewNotFound("ticket", nil)
	}
	ticket.UpdatedAt = time.Now().UTC()
	copied := *ticket
	r.tickets[ticket.ID.Hex()] = &copied
	return nil
}

func (r *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := r.tickets[id]
	if !ok {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}
	copied := *ticket
	return &copied, nil
}

func (r *fakeTicketRepo) GetByNumber(_ context.Context, number string) (*domain.Ticket, error) {
	for _, ticket := range r.tickets {
		if ticket.TicketNumber == number {
			copied := *ticket
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFound("ticket", nil)
}

func (r *fakeTicketRepo) NumberExists(_ context.Context, number string, exclude primitive.ObjectID) (bool, error) {
	for _, ticket := range r.tickets {
		if ticket.TicketNumber == number && ticket.ID != exclude {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, int64, error) {
	out := []domain.Ticket{}
	for _, ticket := range r.tickets {
		if filter.ExcludeTerminal && ticket.Status.Terminal() {
			continue
		}
		if filter.OnlyTerminal && !ticket.Status.Terminal() {
			continue
		}
		out = append(out, *ticket)
	}
	return out, int64(len(out)), nil
}

func (r *fakeTicketRepo) CountsByField(_ context.Context, field string) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, ticket := range r.tickets {
		switch field {
		case "status":
			counts[string(ticket.Status)]++
		case "priority":
			counts[string(ticket.Priority)]++
		case "sbu":
			counts[ticket.SBU]++
		}
	}
	return counts, nil
}

func (r *fakeTicketRepo) FindByStatuses(_ context.Context, statuses []domain.TicketStatus) ([]domain.Ticket, error) {
	out := []domain.Ticket{}
	for _, ticket := range r.tickets {
		for _, status := range statuses {
			if ticket.Status == status {
				out = append(out, *ticket)
				break
			}
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) FindUpdatedSince(_ context.Context, since time.Time) ([]domain.Ticket, error) {
	out := []domain.Ticket{}
	for _, ticket := range r.tickets {
		if !ticket.UpdatedAt.Before(since) {
			out = append(out, *ticket)
		}
	}
	return out, nil
}

func (r *fakeTicketRepo) CompletionTimestamps(_ context.Context, since time.Time) ([]time.Time, error) {
	stamps := []time.Time{}
	for _, ticket := range r.tickets {
		for _, entry := range ticket.StatusHistory {
			if entry.Action == domain.ActionStatusChange &&
				entry.Status == domain.TicketStatusCompleted &&
				!entry.Timestamp.Before(since) {
				stamps = append(stamps, entry.Timestamp)
			}
		}
	}
	return stamps, nil
}

// fakeTemplateRepo returns a fixed template for every user.
type fakeTemplateRepo struct {
	template *domain.Template
}

func (r *fakeTemplateRepo) Create(context.Context, *domain.Template) error  { return nil }
func (r *fakeTemplateRepo) Update(context.Context, *domain.Template) error  { return nil }
func (r *fakeTemplateRepo) GetByID(context.Context, string) (*domain.Template, error) {
	return r.template, nil
}
func (r *fakeTemplateRepo) List(context.Context) ([]domain.Template, error) { return nil, nil }
func (r *fakeTemplateRepo) FindForUser(context.Context, string) (*domain.Template, error) {
	return r.template, nil
}

// fakeEnricher returns a canned bundle or error.
type fakeEnricher struct {
	bundle *enrichment.Bundle
	err    error
	calls  int
}

func (e *fakeEnricher) Enrich(context.Context, string) (*enrichment.Bundle, error) {
	e.calls++
	if e.err != nil {
		return nil, e.err
	}
	return e.bundle, nil
}

type enabledGate struct{}

func (enabledGate) Enrichment(context.Context) (domain.EnrichmentSettings, error) {
	return domain.EnrichmentSettings{Enabled: true}, nil
}

type eventRecorder struct {
	published []events.Event
}

func (r *eventRecorder) Publish(_ context.Context, event events.Event) error {
	r.published = append(r.published, event)
	return nil
}

func (r *eventRecorder) Subscribe(events.EventType, events.EventHandler) {}

func (r *eventRecorder) types() []events.EventType {
	out := make([]events.EventType, 0, len(r.published))
	for _, event := range r.published {
		out = append(out, event.Type)
	}
	return out
}

type fixture struct {
	svc      *TicketService
	repo     *fakeTicketRepo
	enricher *fakeEnricher
	recorder *eventRecorder
}

func newFixture(t *testing.T, enricher *fakeEnricher, template *domain.Template) *fixture {
	t.Helper()
	repo := newFakeTicketRepo()
	recorder := &eventRecorder{}
	svc := NewTicketService(TicketDependencies{
		TicketRepo: repo,
		Normalizer: normalizer.New("SBU-CHEM"),
		Validator:  NewSubmissionValidator(&fakeTemplateRepo{template: template}),
		Enricher:   enricher,
		Gate:       enabledGate{},
		Dispatcher: recorder,
	})
	return &fixture{svc: svc, repo: repo, enricher: enricher, recorder: recorder}
}

var actor = auth.Identity{StableID: "E12345", DisplayName: "Dana Reyes", Role: domain.RoleRequester}

func enrichedBundle() *enrichment.Bundle {
	return &enrichment.Bundle{
		ProductName: "ethanol",
		Description: "ethanol (CAS 64-17-5).",
		Chemical: domain.ChemicalProperties{
			CASNumber:        "64-17-5",
			MolecularFormula: "C2H6O",
			IUPACName:        "ethanol",
			AutoPopulated:    true,
		},
	}
}

func TestCreateTicketDefaultsScenario(t *testing.T) {
	f := newFixture(t, &fakeEnricher{bundle: enrichedBundle()}, nil)

	ticket, err := f.svc.CreateTicket(context.Background(), actor, &domain.TicketDraft{
		SBU:    "",
		Status: "",
		ChemicalProperties: domain.ChemicalProperties{
			CASNumber: "64-17-5",
		},
	}, false)
	require.NoError(t, err)

	assert.Equal(t, "SBU-CHEM", ticket.SBU)
	assert.Equal(t, domain.TicketStatusSubmitted, ticket.Status)
	assert.Equal(t, "ethanol", ticket.ProductName)
	assert.True(t, ticket.ChemicalProperties.AutoPopulated)
	assert.True(t, strings.HasPrefix(ticket.TicketNumber, "NPDI-"))
	require.Len(t, ticket.StatusHistory, 1)
	assert.Equal(t, domain.ActionTicketCreated, ticket.StatusHistory[0].Action)
	assert.Equal(t, "E12345", ticket.StatusHistory[0].ChangedBy)
	assert.Equal(t, "Dana Reyes", ticket.StatusHistory[0].ChangedByName)
	assert.Equal(t, []events.EventType{events.EventTicketCreated}, f.recorder.types())
}

func TestCreateTicketSucceedsWhenEnrichmentFails(t *testing.T) {
	f := newFixture(t, &fakeEnricher{err: errors.New("upstream down")}, nil)

	ticket, err := f.svc.CreateTicket(context.Background(), actor, &domain.TicketDraft{
		ProductName: "Ethanol, technical",
		ChemicalProperties: domain.ChemicalProperties{
			CASNumber: "64-17-5",
		},
	}, false)
	require.NoError(t, err)

	assert.False(t, ticket.ChemicalProperties.AutoPopulated)
	assert.Contains(t, ticket.ChemicalProperties.EnrichmentError, "upstream down")
	assert.Equal(t, "Ethanol, technical", ticket.ProductName)
	assert.NotEmpty(t, ticket.StatusHistory)
}

func TestCreateTicketEnrichmentNeverOverwritesUserValues(t *testing.T) {
	f := newFixture(t, &fakeEnricher{bundle: enrichedBundle()}, nil)

	ticket, err := f.svc.CreateTicket(context.Background(), actor, &domain.TicketDraft{
		ProductName: "Custom Name",
		Description: "Customer-provided description.",
		ChemicalProperties: domain.ChemicalProperties{
			CASNumber:        "64-17-5",
			MolecularFormula: "C2H5OH",
		},
	}, false)
	require.NoError(t, err)

	assert.Equal(t, "Custom Name", ticket.ProductName)
	assert.Equal(t, "Customer-provided description.", ticket.Description)
	assert.Equal(t, "C2H5OH", ticket.ChemicalProperties.MolecularFormula)
	// gaps are still filled
	assert.Equal(t, "ethanol", ticket.ChemicalProperties.IUPACName)
}

func TestCreateTicketSkipEnrichment(t *testing.T) {
	enricher := &fakeEnricher{bundle: enrichedBundle()}
	f := newFixture(t, enricher, nil)

	_, err := f.svc.CreateTicket(context.Background(), actor, &domain.TicketDraft{
		ProductName: "No lookup",
		ChemicalProperties: domain.ChemicalProperties{
			CASNumber: "64-17-5",
		},
	}, true)
	require.NoError(t, err)
	assert.Zero(t, enricher.calls)
}

func TestCreateTicketRejectsDuplicateBulk(t *testing.T) {
	f := newFixture(t, &fakeEnricher{}, nil)

	_, err := f.svc.CreateTicket(context.Background(), actor, &domain.TicketDraft{
		ProductName: "Bulk twice",
		SKUVariants: []domain.SKUVariant{
			{Type: domain.SKUTypeBulk, PackageSize: 25, PackageUnit: "kg"},
			{Type: domain.SKUTypeBulk, PackageSize: 200, PackageUnit: "kg"},
		},
	}, true)
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))
	assert.Empty(t, f.repo.tickets)
}

func TestCreateTicketSubmissionRequirements(t *testing.T) {
	template := &domain.Template{
		Name:                   "chem intake",
		SubmissionRequirements: []string{"productName", "casNumber", "description"},
		Active:                 true,
	}
	f := newFixture(t, &fakeEnricher{}, template)

	_, err := f.svc.CreateTicket(context.Background(), actor, &domain.TicketDraft{
		ProductName: "Ethanol",
	}, true)
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	assert.ElementsMatch(t, []string{"casNumber", "description"}, domainErr.Details["missingFields"])

	// a draft is not subject to submission requirements
	_, err = f.svc.CreateTicket(context.Background(), actor, &domain.TicketDraft{
		ProductName: "Ethanol",
		Status:      "DRAFT",
	}, true)
	assert.NoError(t, err)
}

func createTicket(t *testing.T, f *fixture, draft *domain.TicketDraft) *domain.Ticket {
	t.Helper()
	ticket, err := f.svc.CreateTicket(context.Background(), actor, draft, true)
	require.NoError(t, err)
	return ticket
}

func TestUpdateTicketBatchesAuditEntries(t *testing.T) {
	f := newFixture(t, &fakeEnricher{}, nil)
	ticket := createTicket(t, f, &domain.TicketDraft{ProductName: "Ethanol"})

	newStatus := domain.TicketStatusInProcess
	newName := "Ethanol, absolute"
	newBase := "E7023"
	tracking := "NPDI-2026-000417"
	updated, err := f.svc.UpdateTicket(context.Background(), actor, ticket.ID.Hex(), &domain.TicketUpdate{
		ProductName:        &newName,
		Status:             &newStatus,
		SKUBaseNumber:      &newBase,
		NPDITrackingNumber: &tracking,
	})
	require.NoError(t, err)

	require.Len(t, updated.StatusHistory, 5)
	actions := make([]domain.HistoryAction, 0, 4)
	for _, entry := range updated.StatusHistory[1:] {
		actions = append(actions, entry.Action)
	}
	assert.Equal(t, []domain.HistoryAction{
		domain.ActionTicketEdit,
		domain.ActionStatusChange,
		domain.ActionSKUAssignment,
		domain.ActionNPDIInitiated,
	}, actions)

	assert.Equal(t, tracking, updated.NPDITrackingNumber)
	assert.Equal(t, tracking, updated.TicketNumber, "first NPDI assignment renames the ticket")
	assert.Equal(t, "E7023", updated.SKUBaseNumber)
}

func TestUpdateTicketHistoryIsAppendOnly(t *testing.T) {
	f := newFixture(t, &fakeEnricher{}, nil)
	ticket := createTicket(t, f, &domain.TicketDraft{ProductName: "Ethanol"})

	lengths := []int{len(ticket.StatusHistory)}
	name := "Renamed once"
	updated, err := f.svc.UpdateTicket(context.Background(), actor, ticket.ID.Hex(), &domain.TicketUpdate{ProductName: &name})
	require.NoError(t, err)
	lengths = append(lengths, len(updated.StatusHistory))

	updated, err = f.svc.AddComment(context.Background(), actor, ticket.ID.Hex(), "checking in")
	require.NoError(t, err)
	lengths = append(lengths, len(updated.StatusHistory))

	for i := 1; i < len(lengths); i++ {
		assert.GreaterOrEqual(t, lengths[i], lengths[i-1])
	}
}

func TestUpdateTicketDuplicateBulkLeavesTicketUnchanged(t *testing.T) {
	f := newFixture(t, &fakeEnricher{}, nil)
	ticket := createTicket(t, f, &domain.TicketDraft{ProductName: "Ethanol"})

	_, err := f.svc.UpdateTicket(context.Background(), actor, ticket.ID.Hex(), &domain.TicketUpdate{
		SKUVariants: []domain.SKUVariant{
			{Type: domain.SKUTypeBulk},
			{Type: domain.SKUTypeBulk},
		},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))

	stored, err := f.svc.GetTicket(context.Background(), ticket.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, ticket.SKUVariants, stored.SKUVariants)
	assert.Equal(t, len(ticket.StatusHistory), len(stored.StatusHistory))
}

func TestUpdateTerminalTicketIsLocked(t *testing.T) {
	f := newFixture(t, &fakeEnricher{}, nil)
	ticket := createTicket(t, f, &domain.TicketDraft{ProductName: "Ethanol"})
	_, err := f.svc.UpdateStatus(context.Background(), actor, ticket.ID.Hex(), domain.TicketStatusCompleted, "done")
	require.NoError(t, err)

	priority := domain.TicketPriorityHigh
	_, err = f.svc.UpdateTicket(context.Background(), actor, ticket.ID.Hex(), &domain.TicketUpdate{Priority: &priority})
	require.Error(t, err)

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "TICKET_LOCKED", domainErr.Code)
	assert.Equal(t, domain.TicketStatusCompleted, domainErr.Details["status"])

	stored, err := f.svc.GetTicket(context.Background(), ticket.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, domain.TicketPriorityMedium, stored.Priority)
}

func TestUpdateTerminalTicketAllowedWhenStatusMovesAway(t *testing.T) {
	f := newFixture(t, &fakeEnricher{}, nil)
	ticket := createTicket(t, f, &domain.TicketDraft{ProductName: "Ethanol"})
	_, err := f.svc.UpdateStatus(context.Background(), actor, ticket.ID.Hex(), domain.TicketStatusCanceled, "scrapped")
	require.NoError(t, err)

	reopened := domain.TicketStatusInProcess
	priority := domain.TicketPriorityHigh
	updated, err := f.svc.UpdateTicket(context.Background(), actor, ticket.ID.Hex(), &domain.TicketUpdate{
		Status:   &reopened,
		Priority: &priority,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProcess, updated.Status)
	assert.Equal(t, domain.TicketPriorityHigh, updated.Priority)
}

func TestUpdateStatusSameStatusIsNoOp(t *testing.T) {
	f := newFixture(t, &fakeEnricher{}, nil)
	ticket := createTicket(t, f, &domain.TicketDraft{ProductName: "Ethanol"})
	before := len(ticket.StatusHistory)

	updated, err := f.svc.UpdateStatus(context.Background(), actor, ticket.ID.Hex(), ticket.Status, "")
	require.NoError(t, err)
	assert.Len(t, updated.StatusHistory, before)

	updated, err = f.svc.UpdateStatus(context.Background(), actor, ticket.ID.Hex(), domain.TicketStatusInProcess, "")
	require.NoError(t, err)
	assert.Len(t, updated.StatusHistory, before+1)

	updated, err = f.svc.UpdateStatus(context.Background(), actor, ticket.ID.Hex(), domain.TicketStatusInProcess, "")
	require.NoError(t, err)
	assert.Len(t, updated.StatusHistory, before+1, "repeated set to same status adds no history")
}

func TestCreateThenGetRoundTrip(t *testing.T) {
	f := newFixture(t, &fakeEnricher{}, nil)
	ticket := createTicket(t, f, &domain.TicketDraft{
		ProductName: "Ethanol",
		ChemicalProperties: domain.ChemicalProperties{
			CASNumber: "64-17-5",
		},
	})

	stored, err := f.svc.GetTicket(context.Background(), ticket.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, ticket.TicketNumber, stored.TicketNumber)
	assert.Equal(t, ticket.Status, stored.Status)
	assert.Equal(t, "64-17-5", stored.ChemicalProperties.CASNumber)
}

func TestAddCommentAppendsCommentAndAudit(t *testing.T) {
	f := newFixture(t, &fakeEnricher{}, nil)
	ticket := createTicket(t, f, &domain.TicketDraft{ProductName: "Ethanol"})

	updated, err := f.svc.AddComment(context.Background(), actor, ticket.ID.Hex(), "  Moving to QC review.  ")
	require.NoError(t, err)

	require.Len(t, updated.Comments, 1)
	assert.Equal(t, "Moving to QC review.", updated.Comments[0].Content)
	last := updated.StatusHistory[len(updated.StatusHistory)-1]
	assert.Equal(t, domain.ActionCommentAdded, last.Action)
	assert.Contains(t, last.Reason, "Moving to QC review.")

	_, err = f.svc.AddComment(context.Background(), actor, ticket.ID.Hex(), "   ")
	assert.Error(t, err)
}

func TestUpdateTicketRejectsDuplicateTrackingNumber(t *testing.T) {
	f := newFixture(t, &fakeEnricher{}, nil)
	first := createTicket(t, f, &domain.TicketDraft{ProductName: "Ethanol"})
	second := createTicket(t, f, &domain.TicketDraft{ProductName: "Methanol"})

	tracking := "NPDI-2026-000001"
	_, err := f.svc.UpdateTicket(context.Background(), actor, first.ID.Hex(), &domain.TicketUpdate{NPDITrackingNumber: &tracking})
	require.NoError(t, err)

	_, err = f.svc.UpdateTicket(context.Background(), actor, second.ID.Hex(), &domain.TicketUpdate{NPDITrackingNumber: &tracking})
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "CONFLICT"))

	var domainErr *apperrors.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, first.ID.Hex(), domainErr.Details["conflictTicketId"])
}

func TestUpdateTicketReEnrichmentFillsGapsOnly(t *testing.T) {
	enricher := &fakeEnricher{bundle: enrichedBundle()}
	f := newFixture(t, enricher, nil)
	ticket := createTicket(t, f, &domain.TicketDraft{
		ProductName: "Custom Name",
		ChemicalProperties: domain.ChemicalProperties{
			CASNumber:        "64-17-5",
			MolecularFormula: "C2H5OH",
		},
	})
	require.Zero(t, enricher.calls)

	updated, err := f.svc.UpdateTicket(context.Background(), actor, ticket.ID.Hex(), &domain.TicketUpdate{Enrich: true})
	require.NoError(t, err)
	assert.Equal(t, 1, enricher.calls)

	assert.Equal(t, "Custom Name", updated.ProductName)
	assert.Equal(t, "C2H5OH", updated.ChemicalProperties.MolecularFormula)
	assert.Equal(t, "ethanol", updated.ChemicalProperties.IUPACName)
	assert.True(t, updated.ChemicalProperties.AutoPopulated)
}

func TestAddCommentPreviewTruncatesOnRuneBoundary(t *testing.T) {
	f := newFixture(t, &fakeEnricher{}, nil)
	ticket := createTicket(t, f, &domain.TicketDraft{ProductName: "Ethanol"})

	// two bytes per rune, so a byte-index cut at 77 would split a rune
	content := strings.Repeat("é", 120)
	updated, err := f.svc.AddComment(context.Background(), actor, ticket.ID.Hex(), content)
	require.NoError(t, err)

	entry := updated.StatusHistory[len(updated.StatusHistory)-1]
	preview, ok := entry.Details["preview"].(string)
	require.True(t, ok)
	assert.True(t, utf8.ValidString(preview))
	assert.True(t, strings.HasSuffix(preview, "..."))
	assert.LessOrEqual(t, len(preview), 80)
}

func TestSortActivityNewestFirstKeepsTieOrder(t *testing.T) {
	base := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	items := []ActivityItem{
		{Summary: "older", Timestamp: base.Add(-time.Hour)},
		{Summary: "tie-first", Timestamp: base},
		{Summary: "tie-second", Timestamp: base},
		{Summary: "newest", Timestamp: base.Add(time.Hour)},
	}

	sortActivity(items)

	summaries := make([]string, 0, len(items))
	for _, item := range items {
		summaries = append(summaries, item.Summary)
	}
	assert.Equal(t, []string{"newest", "tie-first", "tie-second", "older"}, summaries)
}
