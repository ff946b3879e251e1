package enrichment

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/npdi-tracker/internal/config"
	apperrors "github.com/spec-kit/npdi-tracker/pkg/util"
)

func newTestClient(baseURL string) *Client {
	return NewClient(config.EnrichmentConfig{
		BaseURL:            baseURL,
		MinIntervalMillis:  0,
		RequestTimeoutSecs: 5,
	}, nil, zap.NewNop())
}

func stubUpstream(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return newTestClient(server.URL)
}

func TestEnrichUnknownCASIsNotFound(t *testing.T) {
	client := stubUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.Enrich(context.Background(), "0000000-00-0")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "NOT_FOUND"))
}

func TestEnrichUnreachableUpstreamIsUnavailable(t *testing.T) {
	client := newTestClient("http://127.0.0.1:1")

	_, err := client.Enrich(context.Background(), "64-17-5")
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, "UPSTREAM_UNAVAILABLE"))
}

func TestEnrichFullBundle(t *testing.T) {
	client := stubUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/cids/"):
			fmt.Fprint(w, `{"IdentifierList":{"CID":[702]}}`)
		case strings.Contains(r.URL.Path, "/property/"):
			fmt.Fprint(w, `{"PropertyTable":{"Properties":[{
				"MolecularFormula":"C2H6O","MolecularWeight":"46.07",
				"IUPACName":"ethanol","CanonicalSMILES":"CCO",
				"InChI":"InChI=1S/C2H6O/c1-2-3/h3H,2H2,1H3","InChIKey":"LFQSCWFLJHTTHZ-UHFFFAOYSA-N"}]}}`)
		case strings.Contains(r.URL.Path, "/synonyms/"):
			fmt.Fprint(w, `{"InformationList":{"Information":[{"Synonym":["ethanol","ethyl alcohol","alcohol"]}]}}`)
		case strings.Contains(r.URL.Path, "/pug_view/") && r.URL.Query().Get("heading") == "Experimental Properties":
			fmt.Fprint(w, `{"Record":{"Section":[{"TOCHeading":"Experimental Properties","Section":[
				{"TOCHeading":"Boiling Point","Information":[{"Value":{"StringWithMarkup":[{"String":"78.37 °C"}]}}]},
				{"TOCHeading":"Physical Description","Information":[{"Value":{"StringWithMarkup":[{"String":"Colorless liquid"}]}}]}
			]}]}}`)
		case strings.Contains(r.URL.Path, "/pug_view/"):
			fmt.Fprint(w, `{"Record":{"Section":[{"TOCHeading":"GHS Classification","Section":[
				{"TOCHeading":"Signal Word","Information":[{"Value":{"StringWithMarkup":[{"String":"Danger"}]}}]},
				{"TOCHeading":"GHS Hazard Statements","Information":[{"Value":{"StringWithMarkup":[{"String":"H225: Highly flammable liquid and vapour"}]}}]},
				{"TOCHeading":"Precautionary Statement Codes","Information":[{"Value":{"StringWithMarkup":[{"String":"P210, P233"}]}}]}
			]}]}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	bundle, err := client.Enrich(context.Background(), "64-17-5")
	require.NoError(t, err)

	assert.True(t, bundle.Chemical.AutoPopulated)
	assert.Empty(t, bundle.Chemical.EnrichmentError)
	assert.Equal(t, "64-17-5", bundle.Chemical.CASNumber)
	assert.Equal(t, "C2H6O", bundle.Chemical.MolecularFormula)
	assert.Equal(t, "ethanol", bundle.Chemical.IUPACName)
	assert.Equal(t, []string{"ethanol", "ethyl alcohol", "alcohol"}, bundle.Chemical.Synonyms)
	assert.Equal(t, "78.37 °C", bundle.Chemical.AdditionalProperties.BoilingPoint)
	assert.Equal(t, "LIQUID", bundle.Chemical.AdditionalProperties.PhysicalState)
	assert.Equal(t, "Danger", bundle.Chemical.Hazards.SignalWord)
	assert.Contains(t, bundle.Chemical.Hazards.PrecautionaryStatements, "P210")
	assert.Equal(t, "ethanol", bundle.ProductName)
	assert.NotEmpty(t, bundle.Description)
	assert.Empty(t, bundle.SKUVariants)
}

func TestEnrichDegradesToPartialBundle(t *testing.T) {
	client := stubUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/cids/"):
			fmt.Fprint(w, `{"IdentifierList":{"CID":[702]}}`)
		case strings.Contains(r.URL.Path, "/property/"):
			w.WriteHeader(http.StatusInternalServerError)
		case strings.Contains(r.URL.Path, "/synonyms/"):
			fmt.Fprint(w, `{"InformationList":{"Information":[{"Synonym":["ethanol"]}]}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	bundle, err := client.Enrich(context.Background(), "64-17-5")
	require.NoError(t, err)

	assert.False(t, bundle.Chemical.AutoPopulated)
	assert.NotEmpty(t, bundle.Chemical.EnrichmentError)
	assert.Equal(t, []string{"ethanol"}, bundle.Chemical.Synonyms)
	// no IUPAC name, so the first synonym names the product
	assert.Equal(t, "ethanol", bundle.ProductName)
}

func TestEnrichSynonymsCapped(t *testing.T) {
	synonyms := make([]string, 0, 25)
	for i := 0; i < 25; i++ {
		synonyms = append(synonyms, fmt.Sprintf(`"synonym-%d"`, i))
	}
	client := stubUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.Contains(r.URL.Path, "/cids/"):
			fmt.Fprint(w, `{"IdentifierList":{"CID":[1]}}`)
		case strings.Contains(r.URL.Path, "/synonyms/"):
			fmt.Fprintf(w, `{"InformationList":{"Information":[{"Synonym":[%s]}]}}`, strings.Join(synonyms, ","))
		case strings.Contains(r.URL.Path, "/property/"):
			fmt.Fprint(w, `{"PropertyTable":{"Properties":[{"MolecularFormula":"X"}]}}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	bundle, err := client.Enrich(context.Background(), "50-00-0")
	require.NoError(t, err)
	assert.Len(t, bundle.Chemical.Synonyms, 10)
}
