// Package enrichment queries the public chemistry database and assembles a
// best-effort property bundle for merge into a ticket.
package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/npdi-tracker/internal/config"
	"github.com/spec-kit/npdi-tracker/internal/domain"
	apperrors "github.com/spec-kit/npdi-tracker/pkg/util"
)

// Bundle is the merged enrichment result. SKUVariants is always empty: SKU
// assignment is not this client's authority.
type Bundle struct {
	ProductName  string
	Description  string
	KeyFeatures  []string
	Applications []string
	Chemical     domain.ChemicalProperties
	SKUVariants  []domain.SKUVariant
}

// SettingsSource supplies the admin-managed enrichment settings. A non-empty
// base URL in the settings document overrides the configured default.
type SettingsSource interface {
	Enrichment(ctx context.Context) (domain.EnrichmentSettings, error)
}

// Client talks to the chemistry database. Sub-fetches run sequentially with
// a minimum inter-call delay because the upstream enforces a request-rate
// ceiling.
type Client struct {
	httpc       *http.Client
	baseURL     string
	settings    SettingsSource
	minInterval time.Duration
	logger      *zap.Logger

	mu       sync.Mutex
	lastCall time.Time
}

// NewClient constructs a client from config. A nil settings source keeps the
// configured base URL for every call.
func NewClient(cfg config.EnrichmentConfig, settings SettingsSource, logger *zap.Logger) *Client {
	timeout := time.Duration(cfg.RequestTimeoutSecs) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	minInterval := time.Duration(cfg.MinIntervalMillis) * time.Millisecond
	return &Client{
		httpc:       &http.Client{Timeout: timeout},
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		settings:    settings,
		minInterval: minInterval,
		logger:      logger,
	}
}

// Enrich resolves the registry id and assembles a bundle. An unknown id is a
// NOT_FOUND error and an unreachable upstream is UPSTREAM_UNAVAILABLE, both
// before any data is gathered; once the compound resolves, sub-step failures
// degrade into a partial bundle flagged autoPopulated=false instead of
// failing the call.
func (c *Client) Enrich(ctx context.Context, casNumber string) (*Bundle, error) {
	cid, err := c.resolveCID(ctx, casNumber)
	if err != nil {
		return nil, err
	}

	bundle := &Bundle{
		Chemical: domain.ChemicalProperties{
			CASNumber:     casNumber,
			AutoPopulated: true,
		},
		SKUVariants: []domain.SKUVariant{},
	}

	degrade := func(step string, err error) {
		c.logger.Warn("enrichment step failed",
			zap.String("cas", casNumber), zap.String("step", step), zap.Error(err))
		bundle.Chemical.AutoPopulated = false
		if bundle.Chemical.EnrichmentError == "" {
			bundle.Chemical.EnrichmentError = fmt.Sprintf("%s: %v", step, err)
		}
	}

	if err := c.fetchComputedProperties(ctx, cid, &bundle.Chemical); err != nil {
		degrade("properties", err)
	}
	if sections, err := c.fetchRecordSections(ctx, cid, "Experimental Properties"); err != nil {
		degrade("experimental properties", err)
	} else {
		bundle.Chemical.AdditionalProperties = ExtractProperties(sections)
	}
	if err := c.fetchSynonyms(ctx, cid, &bundle.Chemical); err != nil {
		degrade("synonyms", err)
	}
	// GHS data is optional upstream; absence is not a degradation.
	if hazards, err := c.fetchHazards(ctx, cid); err != nil {
		degrade("ghs classification", err)
	} else if hazards != nil {
		bundle.Chemical.Hazards = *hazards
	}

	bundle.ProductName = deriveProductName(casNumber, bundle.Chemical)
	bundle.Description = synthesizeDescription(bundle.ProductName, bundle.Chemical)
	bundle.KeyFeatures = synthesizeFeatures(bundle.Chemical)
	bundle.Applications = defaultApplications()
	return bundle, nil
}

func (c *Client) resolveCID(ctx context.Context, casNumber string) (int64, error) {
	var payload struct {
		IdentifierList struct {
			CID []int64 `json:"CID"`
		} `json:"IdentifierList"`
	}
	path := fmt.Sprintf("/pug/compound/name/%s/cids/JSON", url.PathEscape(casNumber))
	status, err := c.getJSON(ctx, path, &payload)
	if err != nil {
		return 0, apperrors.NewUpstreamUnavailable("chemistry database", err)
	}
	if status == http.StatusNotFound || len(payload.IdentifierList.CID) == 0 {
		return 0, apperrors.NewNotFound("chemical", map[string]any{"casNumber": casNumber})
	}
	if status != http.StatusOK {
		return 0, apperrors.NewUpstreamUnavailable("chemistry database",
			fmt.Errorf("unexpected status %d", status))
	}
	return payload.IdentifierList.CID[0], nil
}

func (c *Client) fetchComputedProperties(ctx context.Context, cid int64, chem *domain.ChemicalProperties) error {
	var payload struct {
		PropertyTable struct {
			Properties []struct {
				MolecularFormula string `json:"MolecularFormula"`
				MolecularWeight  string `json:"MolecularWeight"`
				IUPACName        string `json:"IUPACName"`
				CanonicalSMILES  string `json:"CanonicalSMILES"`
				IsomericSMILES   string `json:"IsomericSMILES"`
				InChI            string `json:"InChI"`
				InChIKey         string `json:"InChIKey"`
			} `json:"Properties"`
		} `json:"PropertyTable"`
	}
	path := fmt.Sprintf("/pug/compound/cid/%d/property/MolecularFormula,MolecularWeight,IUPACName,CanonicalSMILES,IsomericSMILES,InChI,InChIKey/JSON", cid)
	status, err := c.getJSON(ctx, path, &payload)
	if err != nil {
		return err
	}
	if status != http.StatusOK || len(payload.PropertyTable.Properties) == 0 {
		return fmt.Errorf("no properties returned (status %d)", status)
	}
	p := payload.PropertyTable.Properties[0]
	chem.MolecularFormula = p.MolecularFormula
	chem.MolecularWeight = p.MolecularWeight
	chem.IUPACName = p.IUPACName
	chem.CanonicalSMILES = p.CanonicalSMILES
	chem.IsomericSMILES = p.IsomericSMILES
	chem.InChI = p.InChI
	chem.InChIKey = p.InChIKey
	return nil
}

func (c *Client) fetchSynonyms(ctx context.Context, cid int64, chem *domain.ChemicalProperties) error {
	var payload struct {
		InformationList struct {
			Information []struct {
				Synonym []string `json:"Synonym"`
			} `json:"Information"`
		} `json:"InformationList"`
	}
	path := fmt.Sprintf("/pug/compound/cid/%d/synonyms/JSON", cid)
	status, err := c.getJSON(ctx, path, &payload)
	if err != nil {
		return err
	}
	if status == http.StatusNotFound {
		return nil
	}
	if status != http.StatusOK {
		return fmt.Errorf("unexpected status %d", status)
	}
	for _, info := range payload.InformationList.Information {
		for _, synonym := range info.Synonym {
			chem.Synonyms = append(chem.Synonyms, synonym)
			if len(chem.Synonyms) >= 10 {
				return nil
			}
		}
	}
	return nil
}

// recordSection mirrors the upstream nested record-view document.
type recordSection struct {
	TOCHeading  string          `json:"TOCHeading"`
	Section     []recordSection `json:"Section"`
	Information []struct {
		Name  string `json:"Name"`
		Value struct {
			StringWithMarkup []struct {
				String string `json:"String"`
			} `json:"StringWithMarkup"`
		} `json:"Value"`
	} `json:"Information"`
}

func (c *Client) fetchRecordSections(ctx context.Context, cid int64, heading string) (map[string][]string, error) {
	var payload struct {
		Record struct {
			Section []recordSection `json:"Section"`
		} `json:"Record"`
	}
	path := fmt.Sprintf("/pug_view/data/compound/%d/JSON?heading=%s", cid, url.QueryEscape(heading))
	status, err := c.getJSON(ctx, path, &payload)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return map[string][]string{}, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", status)
	}
	sections := map[string][]string{}
	collectSectionStrings(payload.Record.Section, sections)
	return sections, nil
}

func collectSectionStrings(sections []recordSection, out map[string][]string) {
	for _, section := range sections {
		for _, info := range section.Information {
			for _, markup := range info.Value.StringWithMarkup {
				if text := strings.TrimSpace(markup.String); text != "" {
					out[section.TOCHeading] = append(out[section.TOCHeading], text)
				}
			}
		}
		collectSectionStrings(section.Section, out)
	}
}

func (c *Client) fetchHazards(ctx context.Context, cid int64) (*domain.HazardClassification, error) {
	sections, err := c.fetchRecordSections(ctx, cid, "GHS Classification")
	if err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, nil
	}

	hazards := &domain.HazardClassification{}
	for heading, values := range sections {
		switch {
		case strings.Contains(heading, "Signal"):
			if len(values) > 0 {
				hazards.SignalWord = values[0]
			}
		case strings.Contains(heading, "Hazard Statement"):
			hazards.HazardStatements = append(hazards.HazardStatements, values...)
		case strings.Contains(heading, "Precautionary"):
			for _, value := range values {
				for _, code := range strings.Split(value, ",") {
					if code = strings.TrimSpace(code); code != "" {
						hazards.PrecautionaryStatements = append(hazards.PrecautionaryStatements, code)
					}
				}
			}
		}
	}
	if hazards.SignalWord == "" && len(hazards.HazardStatements) == 0 && len(hazards.PrecautionaryStatements) == 0 {
		return nil, nil
	}
	return hazards, nil
}

// getJSON issues one throttled GET and decodes the body when present.
func (c *Client) getJSON(ctx context.Context, path string, out any) (int, error) {
	c.throttle()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.effectiveBaseURL(ctx)+path, nil)
	if err != nil {
		return 0, err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return resp.StatusCode, err
		}
		if err := json.Unmarshal(body, out); err != nil {
			return resp.StatusCode, err
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) effectiveBaseURL(ctx context.Context) string {
	if c.settings != nil {
		if settings, err := c.settings.Enrichment(ctx); err == nil && settings.BaseURL != "" {
			return strings.TrimRight(settings.BaseURL, "/")
		}
	}
	return c.baseURL
}

// throttle enforces the minimum inter-call delay. Blocking wait, not a
// scheduled retry.
func (c *Client) throttle() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if wait := c.minInterval - time.Since(c.lastCall); wait > 0 {
		time.Sleep(wait)
	}
	c.lastCall = time.Now()
}

func deriveProductName(casNumber string, chem domain.ChemicalProperties) string {
	if chem.IUPACName != "" {
		return chem.IUPACName
	}
	if len(chem.Synonyms) > 0 {
		return chem.Synonyms[0]
	}
	return "CAS " + casNumber
}

// synthesizeDescription renders the deterministic fallback description used
// for display when the submitter supplied none.
func synthesizeDescription(name string, chem domain.ChemicalProperties) string {
	var b strings.Builder
	b.WriteString(name)
	if state := chem.AdditionalProperties.PhysicalState; state != "" {
		b.WriteString(" is a " + strings.ToLower(state) + " chemical compound")
	} else {
		b.WriteString(" is a chemical compound")
	}
	if chem.MolecularFormula != "" {
		b.WriteString(" with molecular formula " + chem.MolecularFormula)
		if chem.MolecularWeight != "" {
			b.WriteString(" and molecular weight " + chem.MolecularWeight + " g/mol")
		}
	}
	b.WriteString(".")
	if chem.CASNumber != "" {
		b.WriteString(" CAS Registry Number " + chem.CASNumber + ".")
	}
	return b.String()
}

func synthesizeFeatures(chem domain.ChemicalProperties) []string {
	features := []string{}
	if chem.MolecularFormula != "" {
		features = append(features, "Molecular formula "+chem.MolecularFormula)
	}
	if chem.MolecularWeight != "" {
		features = append(features, "Molecular weight "+chem.MolecularWeight+" g/mol")
	}
	if state := chem.AdditionalProperties.PhysicalState; state != "" {
		features = append(features, "Supplied as "+strings.ToLower(state))
	}
	if chem.Hazards.SignalWord != "" {
		features = append(features, "GHS signal word: "+chem.Hazards.SignalWord)
	}
	return features
}

func defaultApplications() []string {
	return []string{
		"Research and development",
		"Analytical reference material",
	}
}
