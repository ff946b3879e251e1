// Package settings provides the integration configuration consulted by the
// enrichment and reconciliation clients. Reads go through a timed cache: a
// per-process copy guarded by an injected clock and TTL, backed by a shared
// Redis entry, backed by the admin-managed document.
package settings

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/npdi-tracker/internal/domain"
	"github.com/spec-kit/npdi-tracker/internal/reconcile"
	"github.com/spec-kit/npdi-tracker/internal/repository"
)

const cacheKey = "npdi:integration_settings"

// Clock supplies the current time; injected so tests can force expiry.
type Clock func() time.Time

// Cache is the shared cache layer. A nil Cache disables sharing and leaves
// only the per-process copy.
type Cache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Provider serves the current integration settings.
type Provider struct {
	repo  repository.SettingsRepository
	cache Cache
	ttl   time.Duration
	clock Clock

	mu        sync.Mutex
	cached    *domain.IntegrationSettings
	fetchedAt time.Time
}

// NewProvider constructs a provider. A nil clock defaults to time.Now.
func NewProvider(repo repository.SettingsRepository, cache Cache, ttl time.Duration, clock Clock) *Provider {
	if clock == nil {
		clock = time.Now
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Provider{repo: repo, cache: cache, ttl: ttl, clock: clock}
}

// Current returns the settings, refreshing the cache when the TTL elapsed.
func (p *Provider) Current(ctx context.Context) (*domain.IntegrationSettings, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cached != nil && p.clock().Sub(p.fetchedAt) < p.ttl {
		return p.cached, nil
	}

	if p.cache != nil {
		if raw, found, err := p.cache.Get(ctx, cacheKey); err == nil && found {
			var settings domain.IntegrationSettings
			if err := json.Unmarshal([]byte(raw), &settings); err == nil {
				p.cached = &settings
				p.fetchedAt = p.clock()
				return p.cached, nil
			}
		}
	}

	settings, err := p.repo.Get(ctx)
	if err != nil {
		return nil, err
	}
	if p.cache != nil {
		if raw, err := json.Marshal(settings); err == nil {
			_ = p.cache.Set(ctx, cacheKey, string(raw), p.ttl)
		}
	}
	p.cached = settings
	p.fetchedAt = p.clock()
	return p.cached, nil
}

// Invalidate drops both cache layers; called after an admin update.
func (p *Provider) Invalidate(ctx context.Context) {
	p.mu.Lock()
	p.cached = nil
	p.fetchedAt = time.Time{}
	p.mu.Unlock()
	if p.cache != nil {
		_ = p.cache.Delete(ctx, cacheKey)
	}
}

// Enrichment returns the chemistry-database settings.
func (p *Provider) Enrichment(ctx context.Context) (domain.EnrichmentSettings, error) {
	settings, err := p.Current(ctx)
	if err != nil {
		return domain.EnrichmentSettings{}, err
	}
	return settings.Enrichment, nil
}

// Reconciliation adapts the settings document for the bridge client.
func (p *Provider) Reconciliation(ctx context.Context) (reconcile.Settings, error) {
	settings, err := p.Current(ctx)
	if err != nil {
		return reconcile.Settings{}, err
	}
	return reconcile.Settings{
		Enabled:   settings.Reconciliation.Enabled,
		BaseURL:   settings.Reconciliation.BaseURL,
		Token:     settings.Reconciliation.Token,
		Warehouse: settings.Reconciliation.Warehouse,
	}, nil
}

// Notification returns the webhook settings.
func (p *Provider) Notification(ctx context.Context) (domain.NotificationSettings, error) {
	settings, err := p.Current(ctx)
	if err != nil {
		return domain.NotificationSettings{}, err
	}
	return settings.Notification, nil
}

// redisCache adapts go-redis to the Cache interface.
type redisCache struct {
	client *redis.Client
}

// NewRedisCache wraps a redis client as the shared cache layer.
func NewRedisCache(client *redis.Client) Cache {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (c *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, key).Err()
}
