package service

import (
	"context"
	"strings"

	"github.com/spec-kit/npdi-tracker/internal/domain"
	"github.com/spec-kit/npdi-tracker/internal/repository"
	apperrors "github.com/spec-kit/npdi-tracker/pkg/util"
)

// TemplateService manages intake-form templates.
type TemplateService struct {
	templates repository.TemplateRepository
}

// NewTemplateService constructs the service.
func NewTemplateService(templates repository.TemplateRepository) *TemplateService {
	return &TemplateService{templates: templates}
}

// Create validates and stores a new template.
func (s *TemplateService) Create(ctx context.Context, template *domain.Template) (*domain.Template, error) {
	if err := validateTemplate(template); err != nil {
		return nil, err
	}
	if err := s.templates.Create(ctx, template); err != nil {
		return nil, apperrors.MapError(err)
	}
	return template, nil
}

// Update replaces an existing template.
func (s *TemplateService) Update(ctx context.Context, id string, template *domain.Template) (*domain.Template, error) {
	existing, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := validateTemplate(template); err != nil {
		return nil, err
	}
	template.ID = existing.ID
	template.CreatedAt = existing.CreatedAt
	if err := s.templates.Update(ctx, template); err != nil {
		return nil, apperrors.MapError(err)
	}
	return template, nil
}

// Get returns one template.
func (s *TemplateService) Get(ctx context.Context, id string) (*domain.Template, error) {
	template, err := s.templates.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return template, nil
}

// List returns all templates.
func (s *TemplateService) List(ctx context.Context) ([]domain.Template, error) {
	templates, err := s.templates.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return templates, nil
}

func validateTemplate(template *domain.Template) error {
	template.Name = strings.TrimSpace(template.Name)
	if template.Name == "" {
		return apperrors.NewValidationError("template name required", nil)
	}
	for i, req := range template.SubmissionRequirements {
		template.SubmissionRequirements[i] = strings.TrimSpace(req)
		if template.SubmissionRequirements[i] == "" {
			return apperrors.NewValidationError("empty submission requirement", map[string]any{
				"index": i,
			})
		}
	}
	return nil
}
