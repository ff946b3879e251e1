package service

import (
	"context"
	"time"

	"github.com/spec-kit/npdi-tracker/internal/domain"
	"github.com/spec-kit/npdi-tracker/internal/repository"
	apperrors "github.com/spec-kit/npdi-tracker/pkg/util"
)

// PreferencesService serves per-user settings.
type PreferencesService struct {
	prefs repository.PreferencesRepository
}

// NewPreferencesService constructs the service.
func NewPreferencesService(prefs repository.PreferencesRepository) *PreferencesService {
	return &PreferencesService{prefs: prefs}
}

// Get returns the user's preferences, creating defaults on first read.
func (s *PreferencesService) Get(ctx context.Context, userID string) (*domain.UserPreferences, error) {
	prefs, err := s.prefs.GetByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return prefs, nil
}

// Update fully replaces the user's preferences. Enum fields must be valid;
// absent enums fall back to the defaults rather than persisting "".
func (s *PreferencesService) Update(ctx context.Context, userID string, prefs *domain.UserPreferences) (*domain.UserPreferences, error) {
	if prefs.Display.Theme == "" {
		prefs.Display.Theme = domain.ThemeSystem
	}
	if prefs.Dashboard.DefaultView == "" {
		prefs.Dashboard.DefaultView = domain.DashboardViewMine
	}

	details := map[string]any{}
	if !prefs.Display.Theme.Valid() {
		details["display.theme"] = "unknown theme"
	}
	if !prefs.Dashboard.DefaultView.Valid() {
		details["dashboard.defaultView"] = "unknown view"
	}
	if prefs.Dashboard.PageSize < 0 || prefs.Dashboard.PageSize > 200 {
		details["dashboard.pageSize"] = "must be between 0 and 200"
	}
	if len(details) > 0 {
		return nil, apperrors.NewValidationError("invalid preferences payload", details)
	}
	if prefs.Dashboard.PageSize == 0 {
		prefs.Dashboard.PageSize = 20
	}

	prefs.UserID = userID
	prefs.UpdatedAt = time.Now().UTC()
	if err := s.prefs.Upsert(ctx, prefs); err != nil {
		return nil, apperrors.MapError(err)
	}
	return prefs, nil
}
