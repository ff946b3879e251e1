package enrichment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPreferCelsiusSingleWinner(t *testing.T) {
	got := PreferCelsius([]string{"173 °F", "78.2 °C", "351 K"})
	assert.Equal(t, "78.2 °C", got)
}

func TestPreferCelsiusSeveralConcatenated(t *testing.T) {
	got := PreferCelsius([]string{"78 °C", "78.2 °C (lit.)"})
	assert.Equal(t, "78 °C; 78.2 °C (lit.)", got)
}

func TestPreferCelsiusNoneFallsBackToFirst(t *testing.T) {
	got := PreferCelsius([]string{" 173 °F ", "351 K"})
	assert.Equal(t, "173 °F", got)
}

func TestPreferCelsiusEmpty(t *testing.T) {
	assert.Equal(t, "", PreferCelsius(nil))
}

func TestExtractUNNumber(t *testing.T) {
	assert.Equal(t, "UN1170", ExtractUNNumber([]string{"no match here", "UN 1170; class 3"}))
	assert.Equal(t, "UN1993", ExtractUNNumber([]string{"UN1993"}))
	assert.Equal(t, "", ExtractUNNumber([]string{"UNKNOWN 12345"}))
}

func TestClassifyPhysicalState(t *testing.T) {
	assert.Equal(t, "LIQUID", ClassifyPhysicalState([]string{"Colorless liquid with a characteristic odor"}))
	assert.Equal(t, "SOLID", ClassifyPhysicalState([]string{"White crystalline powder"}))
	assert.Equal(t, "GAS", ClassifyPhysicalState([]string{"Colorless gas"}))
	assert.Equal(t, "", ClassifyPhysicalState([]string{"amorphous substance"}))
	assert.Equal(t, "", ClassifyPhysicalState(nil))
}

func TestExtractProperties(t *testing.T) {
	sections := map[string][]string{
		"Boiling Point":        {"173.1 °F at 760 mmHg", "78.37 °C"},
		"Melting Point":        {"-114.1 °C"},
		"Density":              {"0.7893 g/cm³ at 20 °C"},
		"Vapor Pressure":       {"59.3 mmHg at 25 °C"},
		"Refractive Index":     {"1.3611"},
		"Physical Description": {"Colorless liquid"},
		"UN Number":            {"UN 1170"},
	}

	props := ExtractProperties(sections)

	assert.Equal(t, "78.37 °C", props.BoilingPoint)
	assert.Equal(t, "-114.1 °C", props.MeltingPoint)
	assert.Equal(t, "0.7893 g/cm³ at 20 °C", props.Density)
	assert.Equal(t, "59.3 mmHg at 25 °C", props.VaporPressure)
	assert.Equal(t, "1.3611", props.RefractiveIndex)
	assert.Equal(t, "LIQUID", props.PhysicalState)
	assert.Equal(t, "UN1170", props.UNNumber)
	assert.Empty(t, props.FlashPoint)
}
