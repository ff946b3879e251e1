package service

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/npdi-tracker/internal/domain"
	"github.com/spec-kit/npdi-tracker/internal/repository"
	apperrors "github.com/spec-kit/npdi-tracker/pkg/util"
)

// DashboardService computes aggregate pipeline statistics.
type DashboardService struct {
	tickets repository.TicketRepository
	logger  *zap.Logger
	now     func() time.Time
}

// NewDashboardService constructs the service.
func NewDashboardService(tickets repository.TicketRepository, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{tickets: tickets, logger: logger, now: func() time.Time { return time.Now().UTC() }}
}

// CycleTimes holds average elapsed hours from submission to each downstream
// milestone, computed from audit-log timestamps.
type CycleTimes struct {
	SubmittedToInProcess     *float64 `json:"submittedToInProcessHours"`
	SubmittedToNPDIInitiated *float64 `json:"submittedToNpdiInitiatedHours"`
	SubmittedToCompleted     *float64 `json:"submittedToCompletedHours"`
}

// AgingEntry is one row of the oldest-first wait list.
type AgingEntry struct {
	TicketID     string              `json:"ticketId"`
	TicketNumber string              `json:"ticketNumber"`
	ProductName  string              `json:"productName"`
	Status       domain.TicketStatus `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	SBU          string              `json:"sbu"`
	WaitingHours float64             `json:"waitingHours"`
}

// ThroughputBucket is one completion-count period.
type ThroughputBucket struct {
	PeriodStart time.Time `json:"periodStart"`
	Count       int       `json:"count"`
}

// Stats is the dashboard payload.
type Stats struct {
	CountsByStatus   map[string]int64   `json:"countsByStatus"`
	CountsByPriority map[string]int64   `json:"countsByPriority"`
	CountsBySBU      map[string]int64   `json:"countsBySbu"`
	CycleTimes       CycleTimes         `json:"cycleTimes"`
	Aging            []AgingEntry       `json:"aging"`
	WeeklyThroughput []ThroughputBucket `json:"weeklyThroughput"`
	MonthlyThroughput []ThroughputBucket `json:"monthlyThroughput"`
}

const (
	throughputWeeks  = 12
	throughputMonths = 12
)

// Stats builds the dashboard in one pass over the collection plus three
// grouped counts.
func (s *DashboardService) Stats(ctx context.Context) (*Stats, error) {
	byStatus, err := s.tickets.CountsByField(ctx, "status")
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	byPriority, err := s.tickets.CountsByField(ctx, "priority")
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	bySBU, err := s.tickets.CountsByField(ctx, "sbu")
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	all, err := s.tickets.FindByStatuses(ctx, []domain.TicketStatus{
		domain.TicketStatusDraft,
		domain.TicketStatusSubmitted,
		domain.TicketStatusInProcess,
		domain.TicketStatusNPDIInitiated,
		domain.TicketStatusCompleted,
		domain.TicketStatusCanceled,
	})
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	now := s.now()
	stats := &Stats{
		CountsByStatus:   byStatus,
		CountsByPriority: byPriority,
		CountsBySBU:      bySBU,
		CycleTimes:       computeCycleTimes(all),
		Aging:            computeAging(all, now),
	}

	weekly, err := s.throughput(ctx, now.AddDate(0, 0, -7*throughputWeeks), weekStart)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	monthly, err := s.throughput(ctx, now.AddDate(0, -throughputMonths, 0), monthStart)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	stats.WeeklyThroughput = weekly
	stats.MonthlyThroughput = monthly
	return stats, nil
}

// computeCycleTimes averages submission-to-milestone hours. The timestamp
// source is the first audit entry recording each status; a ticket created
// directly into SUBMITTED has no explicit SUBMITTED entry, so creation time
// stands in.
func computeCycleTimes(tickets []domain.Ticket) CycleTimes {
	type acc struct {
		sum   float64
		count int
	}
	var inProcess, npdi, completed acc

	for i := range tickets {
		ticket := &tickets[i]
		submitted := firstStatusTime(ticket, domain.TicketStatusSubmitted)
		if submitted.IsZero() {
			submitted = ticket.CreatedAt
		}
		if submitted.IsZero() {
			continue
		}
		record := func(target domain.TicketStatus, bucket *acc) {
			reached := firstStatusTime(ticket, target)
			if reached.IsZero() || reached.Before(submitted) {
				return
			}
			bucket.sum += reached.Sub(submitted).Hours()
			bucket.count++
		}
		record(domain.TicketStatusInProcess, &inProcess)
		record(domain.TicketStatusNPDIInitiated, &npdi)
		record(domain.TicketStatusCompleted, &completed)
	}

	average := func(bucket acc) *float64 {
		if bucket.count == 0 {
			return nil
		}
		avg := bucket.sum / float64(bucket.count)
		return &avg
	}
	return CycleTimes{
		SubmittedToInProcess:     average(inProcess),
		SubmittedToNPDIInitiated: average(npdi),
		SubmittedToCompleted:     average(completed),
	}
}

func firstStatusTime(ticket *domain.Ticket, status domain.TicketStatus) time.Time {
	for _, entry := range ticket.StatusHistory {
		if entry.Status == status {
			return entry.Timestamp
		}
	}
	return time.Time{}
}

func computeAging(tickets []domain.Ticket, now time.Time) []AgingEntry {
	aging := []AgingEntry{}
	for i := range tickets {
		ticket := &tickets[i]
		if ticket.Status.Terminal() {
			continue
		}
		since := lastStatusChange(ticket)
		if since.IsZero() {
			since = ticket.CreatedAt
		}
		aging = append(aging, AgingEntry{
			TicketID:     ticket.ID.Hex(),
			TicketNumber: ticket.TicketNumber,
			ProductName:  ticket.ProductName,
			Status:       ticket.Status,
			Priority:     ticket.Priority,
			SBU:          ticket.SBU,
			WaitingHours: now.Sub(since).Hours(),
		})
	}
	sort.Slice(aging, func(i, j int) bool {
		return aging[i].WaitingHours > aging[j].WaitingHours
	})
	return aging
}

func lastStatusChange(ticket *domain.Ticket) time.Time {
	for i := len(ticket.StatusHistory) - 1; i >= 0; i-- {
		entry := ticket.StatusHistory[i]
		if entry.Action == domain.ActionStatusChange || entry.Action == domain.ActionTicketCreated {
			return entry.Timestamp
		}
	}
	return time.Time{}
}

// throughput buckets completion audit timestamps into calendar periods.
// History timestamps are immutable, so later edits cannot shift a past
// completion into a different bucket.
func (s *DashboardService) throughput(ctx context.Context, since time.Time, bucket func(time.Time) time.Time) ([]ThroughputBucket, error) {
	stamps, err := s.tickets.CompletionTimestamps(ctx, since)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	counts := map[time.Time]int{}
	for _, stamp := range stamps {
		counts[bucket(stamp.UTC())]++
	}
	buckets := make([]ThroughputBucket, 0, len(counts))
	for start, count := range counts {
		buckets = append(buckets, ThroughputBucket{PeriodStart: start, Count: count})
	}
	sort.Slice(buckets, func(i, j int) bool {
		return buckets[i].PeriodStart.Before(buckets[j].PeriodStart)
	})
	return buckets, nil
}

func weekStart(t time.Time) time.Time {
	day := t.Truncate(24 * time.Hour)
	offset := (int(day.Weekday()) + 6) % 7 // Monday-based weeks
	return day.AddDate(0, 0, -offset)
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
