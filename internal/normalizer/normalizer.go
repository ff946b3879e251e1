// Package normalizer cleans raw intake-form payloads before they reach the
// lifecycle engine: empty enum selections are dropped, textarea-style fields
// are coerced into lists, and business defaults are injected.
package normalizer

import (
	"strings"

	"github.com/spec-kit/npdi-tracker/internal/domain"
)

// Normalizer carries the configured defaults.
type Normalizer struct {
	DefaultSBU string
}

// New constructs a normalizer.
func New(defaultSBU string) *Normalizer {
	return &Normalizer{DefaultSBU: defaultSBU}
}

// Normalize cleans the draft in place. It never fails and never drops a
// non-enum field.
func (n *Normalizer) Normalize(draft *domain.TicketDraft) {
	draft.Status = cleanEnum(draft.Status, func(v string) bool {
		return domain.TicketStatus(v).Valid()
	})
	draft.Priority = cleanEnum(draft.Priority, func(v string) bool {
		return domain.TicketPriority(v).Valid()
	})

	draft.ProductName = strings.TrimSpace(draft.ProductName)
	draft.SBU = strings.TrimSpace(draft.SBU)
	draft.KeyFeatures = SplitList(draft.KeyFeatures)
	draft.Applications = SplitList(draft.Applications)
	draft.ChemicalProperties.Synonyms = SplitList(draft.ChemicalProperties.Synonyms)
	draft.ChemicalProperties.Hazards.HazardStatements = SplitList(draft.ChemicalProperties.Hazards.HazardStatements)
	draft.ChemicalProperties.Hazards.PrecautionaryStatements = SplitList(draft.ChemicalProperties.Hazards.PrecautionaryStatements)
	draft.ChemicalProperties.CASNumber = strings.TrimSpace(draft.ChemicalProperties.CASNumber)

	for i := range draft.SKUVariants {
		if !draft.SKUVariants[i].Type.Valid() {
			draft.SKUVariants[i].Type = ""
		}
	}

	if len(draft.SKUVariants) == 0 {
		draft.SKUVariants = []domain.SKUVariant{DefaultVariant()}
	}
	if draft.SBU == "" {
		draft.SBU = n.DefaultSBU
	}
}

// DefaultVariant is the variant injected when a draft carries no SKU list.
func DefaultVariant() domain.SKUVariant {
	return domain.SKUVariant{
		Type:        domain.SKUTypePrepack,
		PackageSize: 100,
		PackageUnit: "g",
		ListPrice:   0,
		Currency:    "USD",
	}
}

// SplitList flattens textarea-style entries: elements containing newline or
// comma separators are split, every segment trimmed, and empty segments
// dropped.
func SplitList(values []string) []string {
	if len(values) == 0 {
		return values
	}
	out := make([]string, 0, len(values))
	for _, value := range values {
		for _, segment := range strings.FieldsFunc(value, isSeparator) {
			segment = strings.TrimSpace(segment)
			if segment != "" {
				out = append(out, segment)
			}
		}
	}
	return out
}

func isSeparator(r rune) bool {
	return r == '\n' || r == '\r' || r == ','
}

func cleanEnum(value string, valid func(string) bool) string {
	value = strings.TrimSpace(value)
	if value == "" || !valid(value) {
		return ""
	}
	return value
}
