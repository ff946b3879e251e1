package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/npdi-tracker/internal/domain"
	"github.com/spec-kit/npdi-tracker/internal/events"
)

type staticNotificationGate struct {
	settings domain.NotificationSettings
}

func (g staticNotificationGate) Notification(context.Context) (domain.NotificationSettings, error) {
	return g.settings, nil
}

func statusChangedEvent() events.Event {
	return events.Event{
		Type:         events.EventTicketStatusChanged,
		TicketNumber: "NPDI-20260820-AB12CD",
		Actor:        events.Actor{ID: "E12345", Name: "Dana Reyes"},
		Payload: events.TicketStatusChangedPayload{
			ProductName: "Ethanol, absolute",
			SBU:         "SBU-CHEM",
			Priority:    domain.TicketPriorityHigh,
			OldStatus:   domain.TicketStatusSubmitted,
			NewStatus:   domain.TicketStatusInProcess,
			Reason:      "picked up by PM Ops",
		},
	}
}

func TestNotificationPostsMessageCard(t *testing.T) {
	var body []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
	}))
	t.Cleanup(server.Close)

	svc := NewNotificationService(staticNotificationGate{domain.NotificationSettings{
		Enabled:    true,
		WebhookURL: server.URL,
	}}, nil)

	err := svc.HandleStatusChanged(context.Background(), statusChangedEvent())
	require.NoError(t, err)
	require.NotEmpty(t, body)

	var card map[string]any
	require.NoError(t, json.Unmarshal(body, &card))
	assert.Equal(t, "MessageCard", card["@type"])
	assert.Contains(t, card["summary"], "NPDI-20260820-AB12CD")

	raw := string(body)
	assert.Contains(t, raw, "SUBMITTED")
	assert.Contains(t, raw, "IN_PROCESS")
	assert.Contains(t, raw, "Dana Reyes")
	assert.Contains(t, raw, "picked up by PM Ops")
}

func TestNotificationDisabledSendsNothing(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	t.Cleanup(server.Close)

	svc := NewNotificationService(staticNotificationGate{domain.NotificationSettings{
		Enabled:    false,
		WebhookURL: server.URL,
	}}, nil)

	require.NoError(t, svc.HandleStatusChanged(context.Background(), statusChangedEvent()))
	assert.Zero(t, calls.Load())
}

func TestNotificationFailureIsSwallowed(t *testing.T) {
	svc := NewNotificationService(staticNotificationGate{domain.NotificationSettings{
		Enabled:    true,
		WebhookURL: "http://127.0.0.1:1",
	}}, nil)

	assert.NoError(t, svc.HandleStatusChanged(context.Background(), statusChangedEvent()))
}
