package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/spec-kit/npdi-tracker/internal/domain"
	apperrors "github.com/spec-kit/npdi-tracker/pkg/util"
)

// TemplateRepository encapsulates intake-template persistence.
type TemplateRepository interface {
	Create(ctx context.Context, template *domain.Template) error
	Update(ctx context.Context, template *domain.Template) error
	GetByID(ctx context.Context, id string) (*domain.Template, error)
	List(ctx context.Context) ([]domain.Template, error)
	FindForUser(ctx context.Context, userID string) (*domain.Template, error)
}

type templateRepository struct {
	collection *mongo.Collection
}

// NewTemplateRepository instantiates the repository.
func NewTemplateRepository(db *mongo.Database) TemplateRepository {
	return &templateRepository{collection: db.Collection("templates")}
}

func (r *templateRepository) Create(ctx context.Context, template *domain.Template) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if template.ID.IsZero() {
		template.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	template.CreatedAt = now
	template.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, template)
	return err
}

func (r *templateRepository) Update(ctx context.Context, template *domain.Template) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	template.UpdatedAt = time.Now().UTC()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": template.ID}, template)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.NewNotFound("template", map[string]any{"id": template.ID.Hex()})
	}
	return nil
}

func (r *templateRepository) GetByID(ctx context.Context, id string) (*domain.Template, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NewNotFound("template", map[string]any{"id": id})
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var template domain.Template
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&template); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFound("template", map[string]any{"id": id})
		}
		return nil, err
	}
	return &template, nil
}

func (r *templateRepository) List(ctx context.Context) ([]domain.Template, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	templates := []domain.Template{}
	if err := cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

// FindForUser returns the active template assigned to the user, or nil when
// the user has no template (and therefore no submission requirements).
func (r *templateRepository) FindForUser(ctx context.Context, userID string) (*domain.Template, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var template domain.Template
	query := bson.M{"assignedUsers": userID, "active": true}
	if err := r.collection.FindOne(ctx, query).Decode(&template); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &template, nil
}
