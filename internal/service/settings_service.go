package service

import (
	"context"
	"strings"
	"time"

	"github.com/spec-kit/npdi-tracker/internal/domain"
	"github.com/spec-kit/npdi-tracker/internal/repository"
	"github.com/spec-kit/npdi-tracker/internal/settings"
	apperrors "github.com/spec-kit/npdi-tracker/pkg/util"
)

const redactedToken = "********"

// SettingsService handles admin reads and writes of the integration
// settings document.
type SettingsService struct {
	repo     repository.SettingsRepository
	provider *settings.Provider
}

// NewSettingsService constructs the service.
func NewSettingsService(repo repository.SettingsRepository, provider *settings.Provider) *SettingsService {
	return &SettingsService{repo: repo, provider: provider}
}

// Get returns the stored document directly, bypassing the cache, so admins
// always see what they last saved. The bridge credential is redacted.
func (s *SettingsService) Get(ctx context.Context) (*domain.IntegrationSettings, error) {
	doc, err := s.repo.Get(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if doc.Reconciliation.Token != "" {
		doc.Reconciliation.Token = redactedToken
	}
	return doc, nil
}

// Update validates, persists, and invalidates the cached copy so the next
// integration call sees the new configuration.
func (s *SettingsService) Update(ctx context.Context, updatedBy string, doc *domain.IntegrationSettings) (*domain.IntegrationSettings, error) {
	details := map[string]any{}
	if doc.Enrichment.Enabled && !validHTTPURL(doc.Enrichment.BaseURL) {
		details["enrichment.baseUrl"] = "http(s) URL required when enabled"
	}
	if doc.Reconciliation.Enabled && !validHTTPURL(doc.Reconciliation.BaseURL) {
		details["reconciliation.baseUrl"] = "http(s) URL required when enabled"
	}
	if doc.Notification.Enabled && !validHTTPURL(doc.Notification.WebhookURL) {
		details["notification.webhookUrl"] = "http(s) URL required when enabled"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid integration settings", details)
	}

	// a round-tripped redacted credential means "keep the stored one"
	if doc.Reconciliation.Token == redactedToken {
		current, err := s.repo.Get(ctx)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		doc.Reconciliation.Token = current.Reconciliation.Token
	}

	doc.UpdatedBy = updatedBy
	doc.UpdatedAt = time.Now().UTC()
	if err := s.repo.Upsert(ctx, doc); err != nil {
		return nil, apperrors.MapError(err)
	}
	if s.provider != nil {
		s.provider.Invalidate(ctx)
	}
	out := *doc
	if out.Reconciliation.Token != "" {
		out.Reconciliation.Token = redactedToken
	}
	return &out, nil
}

func validHTTPURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}
