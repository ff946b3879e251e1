package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/npdi-tracker/internal/domain"
)

const settingsDocID = "integration"

// SettingsRepository stores the single integration-settings document.
type SettingsRepository interface {
	Get(ctx context.Context) (*domain.IntegrationSettings, error)
	Upsert(ctx context.Context, settings *domain.IntegrationSettings) error
}

type settingsRepository struct {
	collection *mongo.Collection
	defaults   domain.IntegrationSettings
}

// NewSettingsRepository instantiates the repository. The defaults document is
// served until an admin saves settings for the first time; it is seeded from
// environment configuration at startup.
func NewSettingsRepository(db *mongo.Database, defaults domain.IntegrationSettings) SettingsRepository {
	return &settingsRepository{
		collection: db.Collection("integration_settings"),
		defaults:   defaults,
	}
}

// Get returns the settings document, falling back to the startup defaults
// when none has been saved yet.
func (r *settingsRepository) Get(ctx context.Context) (*domain.IntegrationSettings, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var settings domain.IntegrationSettings
	err := r.collection.FindOne(ctx, bson.M{"_id": settingsDocID}).Decode(&settings)
	if err == mongo.ErrNoDocuments {
		seed := r.defaults
		return &seed, nil
	}
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *settingsRepository) Upsert(ctx context.Context, settings *domain.IntegrationSettings) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	settings.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"enrichment":     settings.Enrichment,
		"reconciliation": settings.Reconciliation,
		"notification":   settings.Notification,
		"updatedBy":      settings.UpdatedBy,
		"updatedAt":      settings.UpdatedAt,
	}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": settingsDocID}, update, options.Update().SetUpsert(true))
	return err
}
