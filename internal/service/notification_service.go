package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/npdi-tracker/internal/domain"
	"github.com/spec-kit/npdi-tracker/internal/events"
)

// NotificationGate supplies the current webhook configuration.
type NotificationGate interface {
	Notification(ctx context.Context) (domain.NotificationSettings, error)
}

// NotificationService posts MessageCard payloads to the team chat webhook.
// Every failure is logged and discarded; notifications never propagate an
// error into the write that triggered them.
type NotificationService struct {
	gate   NotificationGate
	httpc  *http.Client
	logger *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(gate NotificationGate, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		gate:   gate,
		httpc:  &http.Client{Timeout: 10 * time.Second},
		logger: logger,
	}
}

type messageCard struct {
	Type       string        `json:"@type"`
	Context    string        `json:"@context"`
	ThemeColor string        `json:"themeColor"`
	Summary    string        `json:"summary"`
	Sections   []cardSection `json:"sections"`
}

type cardSection struct {
	ActivityTitle string     `json:"activityTitle"`
	Facts         []cardFact `json:"facts"`
	Markdown      bool       `json:"markdown"`
}

type cardFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// HandleTicketCreated posts a card announcing a new ticket.
func (s *NotificationService) HandleTicketCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketCreatedPayload)
	if !ok {
		return nil
	}
	card := messageCard{
		Type:       "MessageCard",
		Context:    "http://schema.org/extensions",
		ThemeColor: "0076D7",
		Summary:    fmt.Sprintf("New NPDI ticket %s", event.TicketNumber),
		Sections: []cardSection{{
			ActivityTitle: fmt.Sprintf("New ticket **%s** created by %s", event.TicketNumber, event.Actor.Name),
			Facts: []cardFact{
				{Name: "Product", Value: payload.ProductName},
				{Name: "SBU", Value: payload.SBU},
				{Name: "Priority", Value: string(payload.Priority)},
				{Name: "Status", Value: string(payload.Status)},
			},
			Markdown: true,
		}},
	}
	s.post(ctx, event, card)
	return nil
}

// HandleStatusChanged posts a card announcing a status transition.
func (s *NotificationService) HandleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.TicketStatusChangedPayload)
	if !ok {
		return nil
	}
	facts := []cardFact{
		{Name: "Product", Value: payload.ProductName},
		{Name: "SBU", Value: payload.SBU},
		{Name: "Priority", Value: string(payload.Priority)},
		{Name: "Status", Value: fmt.Sprintf("%s → %s", payload.OldStatus, payload.NewStatus)},
		{Name: "Changed by", Value: event.Actor.Name},
	}
	if payload.Reason != "" {
		facts = append(facts, cardFact{Name: "Reason", Value: payload.Reason})
	}
	card := messageCard{
		Type:       "MessageCard",
		Context:    "http://schema.org/extensions",
		ThemeColor: statusColor(payload.NewStatus),
		Summary:    fmt.Sprintf("Ticket %s is now %s", event.TicketNumber, payload.NewStatus),
		Sections: []cardSection{{
			ActivityTitle: fmt.Sprintf("Ticket **%s** moved to %s", event.TicketNumber, payload.NewStatus),
			Facts:         facts,
			Markdown:      true,
		}},
	}
	s.post(ctx, event, card)
	return nil
}

func statusColor(status domain.TicketStatus) string {
	switch status {
	case domain.TicketStatusCompleted:
		return "2EB886"
	case domain.TicketStatusCanceled:
		return "D93025"
	default:
		return "0076D7"
	}
}

func (s *NotificationService) post(ctx context.Context, event events.Event, card messageCard) {
	settings, err := s.gate.Notification(ctx)
	if err != nil {
		s.logger.Warn("notification settings unavailable", zap.Error(err))
		return
	}
	if !settings.Enabled || settings.WebhookURL == "" {
		return
	}

	body, err := json.Marshal(card)
	if err != nil {
		s.logger.Warn("notification payload marshal failed", zap.Error(err))
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, settings.WebhookURL, bytes.NewReader(body))
	if err != nil {
		s.logger.Warn("notification request build failed", zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		s.logger.Warn("notification delivery failed",
			zap.String("ticketNumber", event.TicketNumber), zap.Error(err))
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1024))

	if resp.StatusCode >= 300 {
		s.logger.Warn("notification rejected by webhook",
			zap.String("ticketNumber", event.TicketNumber),
			zap.Int("status", resp.StatusCode))
		return
	}
	s.logger.Debug("notification delivered",
		zap.String("ticketNumber", event.TicketNumber), zap.String("type", string(event.Type)))
}
