package settings

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/npdi-tracker/internal/domain"
)

type fakeSettingsRepo struct {
	doc   *domain.IntegrationSettings
	reads int
}

func (r *fakeSettingsRepo) Get(context.Context) (*domain.IntegrationSettings, error) {
	r.reads++
	copied := *r.doc
	return &copied, nil
}

func (r *fakeSettingsRepo) Upsert(_ context.Context, doc *domain.IntegrationSettings) error {
	copied := *doc
	r.doc = &copied
	return nil
}

type memoryCache struct {
	entries map[string]string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]string{}}
}

func (c *memoryCache) Get(_ context.Context, key string) (string, bool, error) {
	value, found := c.entries[key]
	return value, found, nil
}

func (c *memoryCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.entries[key] = value
	return nil
}

func (c *memoryCache) Delete(_ context.Context, key string) error {
	delete(c.entries, key)
	return nil
}

func testDoc() *domain.IntegrationSettings {
	return &domain.IntegrationSettings{
		Enrichment:     domain.EnrichmentSettings{Enabled: true, BaseURL: "https://chem.example.com"},
		Reconciliation: domain.ReconciliationSettings{Enabled: true, BaseURL: "https://bridge.example.com", Warehouse: "product_master"},
		Notification:   domain.NotificationSettings{Enabled: true, WebhookURL: "https://chat.example.com/hook"},
	}
}

func TestProviderCachesWithinTTL(t *testing.T) {
	repo := &fakeSettingsRepo{doc: testDoc()}
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }

	provider := NewProvider(repo, nil, 5*time.Minute, clock)

	for i := 0; i < 3; i++ {
		settings, err := provider.Current(context.Background())
		require.NoError(t, err)
		assert.True(t, settings.Enrichment.Enabled)
	}
	assert.Equal(t, 1, repo.reads)
}

func TestProviderRefreshesAfterExpiry(t *testing.T) {
	repo := &fakeSettingsRepo{doc: testDoc()}
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	provider := NewProvider(repo, nil, 5*time.Minute, func() time.Time { return now })

	_, err := provider.Current(context.Background())
	require.NoError(t, err)

	repo.doc.Enrichment.Enabled = false
	now = now.Add(6 * time.Minute)

	settings, err := provider.Current(context.Background())
	require.NoError(t, err)
	assert.False(t, settings.Enrichment.Enabled)
	assert.Equal(t, 2, repo.reads)
}

func TestProviderReadsThroughSharedCache(t *testing.T) {
	repo := &fakeSettingsRepo{doc: testDoc()}
	cache := newMemoryCache()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	provider := NewProvider(repo, cache, 5*time.Minute, func() time.Time { return now })

	_, err := provider.Current(context.Background())
	require.NoError(t, err)
	assert.Contains(t, cache.entries, cacheKey)

	// a second process sharing the cache never touches the repository
	other := NewProvider(repo, cache, 5*time.Minute, func() time.Time { return now })
	settings, err := other.Current(context.Background())
	require.NoError(t, err)
	assert.True(t, settings.Reconciliation.Enabled)
	assert.Equal(t, 1, repo.reads)
}

func TestProviderInvalidateDropsBothLayers(t *testing.T) {
	repo := &fakeSettingsRepo{doc: testDoc()}
	cache := newMemoryCache()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	provider := NewProvider(repo, cache, 5*time.Minute, func() time.Time { return now })

	_, err := provider.Current(context.Background())
	require.NoError(t, err)

	repo.doc.Notification.WebhookURL = "https://chat.example.com/new-hook"
	provider.Invalidate(context.Background())
	assert.NotContains(t, cache.entries, cacheKey)

	notification, err := provider.Notification(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://chat.example.com/new-hook", notification.WebhookURL)
}

func TestProviderReconciliationAdaptsSettings(t *testing.T) {
	repo := &fakeSettingsRepo{doc: testDoc()}
	provider := NewProvider(repo, nil, time.Minute, nil)

	settings, err := provider.Reconciliation(context.Background())
	require.NoError(t, err)
	assert.True(t, settings.Enabled)
	assert.Equal(t, "https://bridge.example.com", settings.BaseURL)
	assert.Equal(t, "product_master", settings.Warehouse)
}
