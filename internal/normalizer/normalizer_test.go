package normalizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/npdi-tracker/internal/domain"
)

func TestNormalizeClearsInvalidEnums(t *testing.T) {
	n := New("SBU-CHEM")
	draft := &domain.TicketDraft{
		Status:   "NOT_A_STATUS",
		Priority: "whenever",
	}
	n.Normalize(draft)

	assert.Equal(t, "", draft.Status)
	assert.Equal(t, "", draft.Priority)
}

func TestNormalizeKeepsValidEnums(t *testing.T) {
	n := New("SBU-CHEM")
	draft := &domain.TicketDraft{
		Status:   "DRAFT",
		Priority: "HIGH",
	}
	n.Normalize(draft)

	assert.Equal(t, "DRAFT", draft.Status)
	assert.Equal(t, "HIGH", draft.Priority)
}

func TestNormalizeSplitsTextareaLists(t *testing.T) {
	n := New("SBU-CHEM")
	draft := &domain.TicketDraft{
		KeyFeatures:  []string{"high purity\nlow odor", " anhydrous , ACS grade "},
		Applications: []string{"synthesis"},
	}
	n.Normalize(draft)

	assert.Equal(t, []string{"high purity", "low odor", "anhydrous", "ACS grade"}, draft.KeyFeatures)
	assert.Equal(t, []string{"synthesis"}, draft.Applications)
}

func TestNormalizeInjectsDefaults(t *testing.T) {
	n := New("SBU-CHEM")
	draft := &domain.TicketDraft{SBU: "  "}
	n.Normalize(draft)

	assert.Equal(t, "SBU-CHEM", draft.SBU)
	require.Len(t, draft.SKUVariants, 1)
	assert.Equal(t, domain.SKUTypePrepack, draft.SKUVariants[0].Type)
	assert.Equal(t, float64(100), draft.SKUVariants[0].PackageSize)
	assert.Equal(t, "g", draft.SKUVariants[0].PackageUnit)
}

func TestNormalizeKeepsProvidedVariants(t *testing.T) {
	n := New("SBU-CHEM")
	draft := &domain.TicketDraft{
		SKUVariants: []domain.SKUVariant{
			{Type: domain.SKUTypeBulk, PackageSize: 25, PackageUnit: "kg"},
			{Type: "MYSTERY", PackageSize: 1, PackageUnit: "g"},
		},
	}
	n.Normalize(draft)

	require.Len(t, draft.SKUVariants, 2)
	assert.Equal(t, domain.SKUTypeBulk, draft.SKUVariants[0].Type)
	assert.Equal(t, domain.SKUType(""), draft.SKUVariants[1].Type)
}

func TestSplitListDropsEmptySegments(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, SplitList([]string{"a,,b,"}))
	assert.Empty(t, SplitList([]string{",", "\n"}))
	assert.Nil(t, SplitList(nil))
}
