package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/npdi-tracker/internal/domain"
)

// PreferencesRepository encapsulates per-user settings persistence.
type PreferencesRepository interface {
	GetByUser(ctx context.Context, userID string) (*domain.UserPreferences, error)
	Upsert(ctx context.Context, prefs *domain.UserPreferences) error
}

type preferencesRepository struct {
	collection *mongo.Collection
}

// NewPreferencesRepository instantiates the repository.
func NewPreferencesRepository(db *mongo.Database) PreferencesRepository {
	return &preferencesRepository{collection: db.Collection("user_preferences")}
}

// GetByUser returns the user's preferences, lazily creating the default
// document on first read.
func (r *preferencesRepository) GetByUser(ctx context.Context, userID string) (*domain.UserPreferences, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var prefs domain.UserPreferences
	err := r.collection.FindOne(ctx, bson.M{"userId": userID}).Decode(&prefs)
	if err == nil {
		return &prefs, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	defaults := domain.DefaultPreferences(userID)
	defaults.UpdatedAt = time.Now().UTC()
	if _, err := r.collection.InsertOne(ctx, defaults); err != nil {
		return nil, err
	}
	return defaults, nil
}

func (r *preferencesRepository) Upsert(ctx context.Context, prefs *domain.UserPreferences) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	prefs.UpdatedAt = time.Now().UTC()
	update := bson.M{"$set": bson.M{
		"display":       prefs.Display,
		"notifications": prefs.Notifications,
		"dashboard":     prefs.Dashboard,
		"accessibility": prefs.Accessibility,
		"updatedAt":     prefs.UpdatedAt,
	}}
	_, err := r.collection.UpdateOne(ctx, bson.M{"userId": prefs.UserID}, update, options.Update().SetUpsert(true))
	return err
}
