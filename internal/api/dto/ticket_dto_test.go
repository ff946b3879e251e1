package dto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/npdi-tracker/internal/domain"
)

func TestStringListAcceptsArrayOrScalar(t *testing.T) {
	var fromArray StringList
	require.NoError(t, json.Unmarshal([]byte(`["a","b"]`), &fromArray))
	assert.Equal(t, StringList{"a", "b"}, fromArray)

	var fromScalar StringList
	require.NoError(t, json.Unmarshal([]byte(`"solvent"`), &fromScalar))
	assert.Equal(t, StringList{"solvent"}, fromScalar)

	var fromEmpty StringList
	require.NoError(t, json.Unmarshal([]byte(`""`), &fromEmpty))
	assert.Nil(t, fromEmpty)

	var fromNumber StringList
	assert.Error(t, json.Unmarshal([]byte(`42`), &fromNumber))
}

func TestCreateRequestCoercesTextareaFields(t *testing.T) {
	body := []byte(`{
		"productName": "Ethanol",
		"keyFeatures": "High purity",
		"applications": ["HPLC", "Extraction"],
		"chemicalProperties": {
			"casNumber": "64-17-5",
			"synonyms": "ethyl alcohol",
			"hazards": {"hazardStatements": "H225"}
		}
	}`)

	var req CreateTicketRequest
	require.NoError(t, json.Unmarshal(body, &req))

	draft := req.Draft()
	assert.Equal(t, []string{"High purity"}, draft.KeyFeatures)
	assert.Equal(t, []string{"HPLC", "Extraction"}, draft.Applications)
	assert.Equal(t, []string{"ethyl alcohol"}, draft.ChemicalProperties.Synonyms)
	assert.Equal(t, []string{"H225"}, draft.ChemicalProperties.Hazards.HazardStatements)
}

func TestUpdatePatchDistinguishesAbsentFromEmpty(t *testing.T) {
	var req UpdateTicketRequest
	require.NoError(t, json.Unmarshal([]byte(`{"keyFeatures": []}`), &req))

	patch := req.Patch()
	require.NotNil(t, req.KeyFeatures)
	assert.NotNil(t, patch.KeyFeatures)
	assert.Empty(t, patch.KeyFeatures)
	assert.Nil(t, req.Applications)
	assert.Nil(t, patch.ChemicalProperties)

	var untouched UpdateTicketRequest
	require.NoError(t, json.Unmarshal([]byte(`{"productName": "Ethanol"}`), &untouched))
	assert.Nil(t, untouched.KeyFeatures)
	require.NotNil(t, untouched.ProductName)
	assert.Equal(t, "Ethanol", *untouched.ProductName)
}

func TestChemicalRequestDomainRoundTrip(t *testing.T) {
	req := ChemicalPropertiesRequest{
		CASNumber:        "64-17-5",
		MolecularFormula: "C2H6O",
		Synonyms:         StringList{"ethanol"},
		Hazards: HazardClassificationRequest{
			SignalWord:       "Danger",
			HazardStatements: StringList{"H225"},
		},
	}
	chem := req.Domain()
	assert.Equal(t, domain.ChemicalProperties{
		CASNumber:        "64-17-5",
		MolecularFormula: "C2H6O",
		Synonyms:         []string{"ethanol"},
		Hazards: domain.HazardClassification{
			SignalWord:       "Danger",
			HazardStatements: []string{"H225"},
		},
	}, chem)
}
