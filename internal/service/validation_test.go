package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/npdi-tracker/internal/domain"
)

func TestMissingFieldsReportsEmptyRequirements(t *testing.T) {
	v := NewSubmissionValidator(&fakeTemplateRepo{template: &domain.Template{
		Name:                   "chemicals",
		SubmissionRequirements: []string{"productName", "casNumber", "skuVariants", "pricingData"},
	}})

	ticket := &domain.Ticket{
		CreatedBy:   "E12345",
		ProductName: "Ethanol",
		SKUVariants: []domain.SKUVariant{{Type: domain.SKUTypePrepack}},
	}
	missing, err := v.MissingFields(context.Background(), ticket)
	require.NoError(t, err)
	assert.Equal(t, []string{"casNumber", "pricingData"}, missing)
}

func TestMissingFieldsWithoutTemplateIsEmpty(t *testing.T) {
	v := NewSubmissionValidator(&fakeTemplateRepo{})

	missing, err := v.MissingFields(context.Background(), &domain.Ticket{CreatedBy: "E99999"})
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestMissingFieldsIgnoresUnknownKeys(t *testing.T) {
	v := NewSubmissionValidator(&fakeTemplateRepo{template: &domain.Template{
		SubmissionRequirements: []string{"productName", "legacyField"},
	}})

	missing, err := v.MissingFields(context.Background(), &domain.Ticket{
		CreatedBy:   "E12345",
		ProductName: "Ethanol",
	})
	require.NoError(t, err)
	assert.Empty(t, missing)
}
