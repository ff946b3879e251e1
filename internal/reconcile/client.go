// Package reconcile queries the enterprise data bridge: SQL statements are
// submitted over HTTP, polled to completion, and the columnar result decoded
// and mapped into the ticket field namespace.
package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/npdi-tracker/internal/config"
	apperrors "github.com/spec-kit/npdi-tracker/pkg/util"
)

// SearchType selects the lookup key.
type SearchType string

const (
	SearchByPartNumber  SearchType = "partNumber"
	SearchByProductName SearchType = "productName"
	SearchByCASNumber   SearchType = "casNumber"
)

// Valid reports whether t is a known search type.
func (t SearchType) Valid() bool {
	return t == SearchByPartNumber || t == SearchByProductName || t == SearchByCASNumber
}

// Candidate is one row of a disambiguation list.
type Candidate struct {
	SKUNumber   string `json:"skuNumber"`
	ProductName string `json:"productName"`
	CASNumber   string `json:"casNumber"`
	Brand       string `json:"brand"`
}

// Result is either a single mapped-fields record (part-number search) or a
// candidate list for user disambiguation (name/CAS search).
type Result struct {
	Fields     map[string]any `json:"fields,omitempty"`
	Candidates []Candidate    `json:"candidates,omitempty"`
	Warnings   []string       `json:"warnings,omitempty"`
}

// Settings is the live integration configuration consulted per call.
type Settings struct {
	Enabled   bool
	BaseURL   string
	Token     string
	Warehouse string
}

// SettingsSource supplies the current bridge settings.
type SettingsSource interface {
	Reconciliation(ctx context.Context) (Settings, error)
}

// Client talks to the bridge. The polling loop blocks the calling request
// for up to pollInterval*maxAttempts in the worst case.
type Client struct {
	httpc        *http.Client
	settings     SettingsSource
	pollInterval time.Duration
	maxAttempts  int
	partSuffix   string
	logger       *zap.Logger
}

// NewClient constructs a client from config.
func NewClient(cfg config.ReconciliationConfig, settings SettingsSource, logger *zap.Logger) *Client {
	interval := time.Duration(cfg.PollIntervalSecs) * time.Second
	if interval <= 0 {
		interval = time.Second
	}
	attempts := cfg.MaxPollAttempts
	if attempts <= 0 {
		attempts = 60
	}
	return &Client{
		httpc:        &http.Client{Timeout: 30 * time.Second},
		settings:     settings,
		pollInterval: interval,
		maxAttempts:  attempts,
		partSuffix:   cfg.PartNumberSuffix,
		logger:       logger,
	}
}

// Search runs one lookup against the bridge. Zero matching rows is NOT_FOUND,
// a disabled or unconfigured integration is UPSTREAM_UNAVAILABLE, rejected
// credentials UPSTREAM_AUTH, and an exhausted poll budget UPSTREAM_TIMEOUT.
func (c *Client) Search(ctx context.Context, searchType SearchType, value string, limit, offset int) (*Result, error) {
	settings, err := c.currentSettings(ctx)
	if err != nil {
		return nil, err
	}

	if limit <= 0 || limit > 100 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	var statement string
	switch searchType {
	case SearchByPartNumber:
		statement = c.partNumberQuery(value)
	case SearchByProductName:
		statement = prefixQuery("UPPER(product_name) LIKE "+quoted(strings.ToUpper(value)+"%"), limit, offset)
	case SearchByCASNumber:
		statement = prefixQuery("cas_number = "+quoted(value), limit, offset)
	default:
		return nil, apperrors.NewValidationError("unknown search type", map[string]any{"type": string(searchType)})
	}

	rows, err := c.execute(ctx, settings, statement)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, apperrors.NewNotFound("enterprise record", map[string]any{
			"type":  string(searchType),
			"value": value,
		})
	}

	if searchType == SearchByPartNumber {
		fields, warnings := MapRow(rows[0])
		for _, warning := range warnings {
			c.logger.Warn("reconciliation mapping warning", zap.String("warning", warning))
		}
		return &Result{Fields: fields, Warnings: warnings}, nil
	}

	candidates := make([]Candidate, 0, len(rows))
	for _, row := range rows {
		candidates = append(candidates, Candidate{
			SKUNumber:   stringValue(row["sku_number"]),
			ProductName: stringValue(row["product_name"]),
			CASNumber:   stringValue(row["cas_number"]),
			Brand:       stringValue(row["brand"]),
		})
	}
	return &Result{Candidates: candidates}, nil
}

func (c *Client) currentSettings(ctx context.Context) (Settings, error) {
	if c.settings == nil {
		return Settings{}, apperrors.NewUpstreamUnavailable("enterprise bridge", nil)
	}
	settings, err := c.settings.Reconciliation(ctx)
	if err != nil {
		return Settings{}, apperrors.NewUpstreamUnavailable("enterprise bridge", err)
	}
	if !settings.Enabled || settings.BaseURL == "" {
		return Settings{}, apperrors.NewUpstreamUnavailable("enterprise bridge", nil)
	}
	return settings, nil
}

func (c *Client) partNumberQuery(value string) string {
	part := strings.TrimSpace(value)
	if c.partSuffix != "" && !strings.HasSuffix(strings.ToUpper(part), strings.ToUpper(c.partSuffix)) {
		part += c.partSuffix
	}
	return fmt.Sprintf("SELECT %s FROM product_master WHERE sku_number = %s",
		strings.Join(selectColumns(), ", "), quoted(part))
}

// prefixQuery pages with a row-numbering subquery because the remote dialect
// has no OFFSET: the first page is a plain LIMIT, later pages window on
// ROW_NUMBER so no row from an earlier page repeats.
func prefixQuery(where string, limit, offset int) string {
	cols := strings.Join(selectColumns(), ", ")
	where = where + " AND sku_number LIKE '%-%'"
	if offset == 0 {
		return fmt.Sprintf("SELECT %s FROM product_master WHERE %s ORDER BY sku_number LIMIT %d",
			cols, where, limit)
	}
	return fmt.Sprintf(
		"SELECT %s FROM (SELECT %s, ROW_NUMBER() OVER (ORDER BY sku_number) AS rn FROM product_master WHERE %s) WHERE rn > %d AND rn <= %d",
		cols, cols, where, offset, offset+limit)
}

func quoted(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

type statementStatus struct {
	StatementID string `json:"statementId"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

// columnarResult is the bridge's column-major payload.
type columnarResult struct {
	Columns []struct {
		Name string `json:"name"`
	} `json:"columns"`
	Data     [][]any `json:"data"`
	RowCount int     `json:"rowCount"`
}

func (c *Client) execute(ctx context.Context, settings Settings, statement string) ([]map[string]any, error) {
	status, err := c.submit(ctx, settings, statement)
	if err != nil {
		return nil, err
	}

	attempts := 0
	for status.Status == "RUNNING" || status.Status == "PENDING" {
		if attempts >= c.maxAttempts {
			return nil, apperrors.NewUpstreamTimeout("enterprise bridge")
		}
		select {
		case <-ctx.Done():
			return nil, apperrors.NewUpstreamTimeout("enterprise bridge")
		case <-time.After(c.pollInterval):
		}
		attempts++
		status, err = c.poll(ctx, settings, status.StatementID)
		if err != nil {
			return nil, err
		}
	}

	switch status.Status {
	case "SUCCEEDED":
	case "FAILED", "CANCELED":
		return nil, apperrors.NewUpstreamUnavailable("enterprise bridge",
			fmt.Errorf("statement %s: %s", strings.ToLower(status.Status), status.Error))
	default:
		return nil, apperrors.NewUpstreamUnavailable("enterprise bridge",
			fmt.Errorf("unknown statement status %q", status.Status))
	}

	result, err := c.fetchResult(ctx, settings, status.StatementID)
	if err != nil {
		return nil, err
	}
	return pivotRows(result), nil
}

func (c *Client) submit(ctx context.Context, settings Settings, statement string) (*statementStatus, error) {
	body, _ := json.Marshal(map[string]string{
		"statement": statement,
		"warehouse": settings.Warehouse,
	})
	return c.doStatement(ctx, settings, http.MethodPost, "/api/sql/statements", bytes.NewReader(body))
}

func (c *Client) poll(ctx context.Context, settings Settings, id string) (*statementStatus, error) {
	return c.doStatement(ctx, settings, http.MethodGet, "/api/sql/statements/"+id, nil)
}

func (c *Client) doStatement(ctx context.Context, settings Settings, method, path string, body io.Reader) (*statementStatus, error) {
	resp, err := c.do(ctx, settings, method, path, body)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var status statementStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, apperrors.NewUpstreamUnavailable("enterprise bridge", err)
	}
	return &status, nil
}

func (c *Client) fetchResult(ctx context.Context, settings Settings, id string) (*columnarResult, error) {
	resp, err := c.do(ctx, settings, http.MethodGet, "/api/sql/statements/"+id+"/result", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	var result columnarResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, apperrors.NewUpstreamUnavailable("enterprise bridge", err)
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, settings Settings, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(settings.BaseURL, "/")+path, body)
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailable("enterprise bridge", err)
	}
	if settings.Token != "" {
		req.Header.Set("Authorization", "Bearer "+settings.Token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, apperrors.NewUpstreamUnavailable("enterprise bridge", err)
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return apperrors.NewUpstreamAuth("enterprise bridge")
	case resp.StatusCode >= 400:
		return apperrors.NewUpstreamUnavailable("enterprise bridge",
			fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
	return nil
}

// pivotRows turns the column-major payload into row objects.
func pivotRows(result *columnarResult) []map[string]any {
	rows := []map[string]any{}
	if result == nil || len(result.Columns) == 0 {
		return rows
	}
	count := result.RowCount
	if count == 0 {
		for _, column := range result.Data {
			if len(column) > count {
				count = len(column)
			}
		}
	}
	for i := 0; i < count; i++ {
		row := make(map[string]any, len(result.Columns))
		for j, column := range result.Columns {
			if j < len(result.Data) && i < len(result.Data[j]) {
				row[column.Name] = result.Data[j][i]
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func stringValue(value any) string {
	if value == nil {
		return ""
	}
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", value)
}
