package domain

import "time"

// EnrichmentSettings configures the chemistry-database integration.
type EnrichmentSettings struct {
	Enabled bool   `bson:"enabled" json:"enabled"`
	BaseURL string `bson:"baseUrl" json:"baseUrl"`
}

// ReconciliationSettings configures the enterprise data bridge.
type ReconciliationSettings struct {
	Enabled   bool   `bson:"enabled" json:"enabled"`
	BaseURL   string `bson:"baseUrl" json:"baseUrl"`
	Warehouse string `bson:"warehouse,omitempty" json:"warehouse,omitempty"`
	Token     string `bson:"token,omitempty" json:"token,omitempty"`
}

// NotificationSettings configures the chat webhook.
type NotificationSettings struct {
	Enabled    bool   `bson:"enabled" json:"enabled"`
	WebhookURL string `bson:"webhookUrl" json:"webhookUrl"`
}

// IntegrationSettings is the single admin-managed settings document.
type IntegrationSettings struct {
	Enrichment     EnrichmentSettings     `bson:"enrichment" json:"enrichment"`
	Reconciliation ReconciliationSettings `bson:"reconciliation" json:"reconciliation"`
	Notification   NotificationSettings   `bson:"notification" json:"notification"`
	UpdatedBy      string                 `bson:"updatedBy,omitempty" json:"updatedBy,omitempty"`
	UpdatedAt      time.Time              `bson:"updatedAt" json:"updatedAt"`
}
