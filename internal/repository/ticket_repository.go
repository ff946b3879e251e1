package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/spec-kit/npdi-tracker/internal/domain"
	apperrors "github.com/spec-kit/npdi-tracker/pkg/util"
)

// TicketFilter captures listing parameters.
type TicketFilter struct {
	Statuses        []domain.TicketStatus
	SBU             *string
	Priority        *domain.TicketPriority
	SearchTerm      *string
	CreatedBy       *string
	ExcludeTerminal bool
	OnlyTerminal    bool
	Limit           int
	Offset          int
}

// TicketRepository encapsulates ticket persistence. A ticket document is
// always written whole so the audit append and the field changes it records
// share one atomic write.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Replace(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number string) (*domain.Ticket, error)
	NumberExists(ctx context.Context, number string, exclude primitive.ObjectID) (bool, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int64, error)
	CountsByField(ctx context.Context, field string) (map[string]int64, error)
	FindByStatuses(ctx context.Context, statuses []domain.TicketStatus) ([]domain.Ticket, error)
	FindUpdatedSince(ctx context.Context, since time.Time) ([]domain.Ticket, error)
	CompletionTimestamps(ctx context.Context, since time.Time) ([]time.Time, error)
}

type ticketRepository struct {
	collection *mongo.Collection
}

// NewTicketRepository instantiates the repository.
func NewTicketRepository(db *mongo.Database) TicketRepository {
	return &ticketRepository{collection: db.Collection("tickets")}
}

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if ticket.ID.IsZero() {
		ticket.ID = primitive.NewObjectID()
	}
	now := time.Now().UTC()
	ticket.CreatedAt = now
	ticket.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, ticket); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NewConflict("ticket number already in use", map[string]any{
				"ticketNumber": ticket.TicketNumber,
			})
		}
		return err
	}
	return nil
}

func (r *ticketRepository) Replace(ctx context.Context, ticket *domain.Ticket) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	ticket.UpdatedAt = time.Now().UTC()
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": ticket.ID}, ticket)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperrors.NewConflict("ticket number already in use", map[string]any{
				"ticketNumber": ticket.TicketNumber,
			})
		}
		return err
	}
	if result.MatchedCount == 0 {
		return apperrors.NewNotFound("ticket", map[string]any{"id": ticket.ID.Hex()})
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var ticket domain.Ticket
	if err := r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&ticket); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"id": id})
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number string) (*domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var ticket domain.Ticket
	if err := r.collection.FindOne(ctx, bson.M{"ticketNumber": number}).Decode(&ticket); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticketNumber": number})
		}
		return nil, err
	}
	return &ticket, nil
}

func (r *ticketRepository) NumberExists(ctx context.Context, number string, exclude primitive.ObjectID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	query := bson.M{"ticketNumber": number}
	if !exclude.IsZero() {
		query["_id"] = bson.M{"$ne": exclude}
	}
	count, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	query := buildTicketQuery(filter)

	total, err := r.collection.CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	if filter.Offset > 0 {
		opts.SetSkip(int64(filter.Offset))
	}

	cursor, err := r.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	tickets := []domain.Ticket{}
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, 0, err
	}
	return tickets, total, nil
}

func buildTicketQuery(filter TicketFilter) bson.M {
	query := bson.M{}
	switch {
	case len(filter.Statuses) > 0:
		query["status"] = bson.M{"$in": filter.Statuses}
	case filter.OnlyTerminal:
		query["status"] = bson.M{"$in": []domain.TicketStatus{
			domain.TicketStatusCompleted, domain.TicketStatusCanceled,
		}}
	case filter.ExcludeTerminal:
		query["status"] = bson.M{"$nin": []domain.TicketStatus{
			domain.TicketStatusCompleted, domain.TicketStatusCanceled,
		}}
	}
	if filter.SBU != nil {
		query["sbu"] = *filter.SBU
	}
	if filter.Priority != nil {
		query["priority"] = *filter.Priority
	}
	if filter.CreatedBy != nil {
		query["createdBy"] = *filter.CreatedBy
	}
	if filter.SearchTerm != nil && *filter.SearchTerm != "" {
		pattern := primitive.Regex{Pattern: regexEscape(*filter.SearchTerm), Options: "i"}
		query["$or"] = bson.A{
			bson.M{"productName": pattern},
			bson.M{"ticketNumber": pattern},
			bson.M{"chemicalProperties.casNumber": pattern},
		}
	}
	return query
}

func regexEscape(s string) string {
	special := `\.+*?()|[]{}^$`
	out := make([]rune, 0, len(s))
	for _, r := range s {
		for _, sp := range special {
			if r == sp {
				out = append(out, '\\')
				break
			}
		}
		out = append(out, r)
	}
	return string(out)
}

func (r *ticketRepository) CountsByField(ctx context.Context, field string) (map[string]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$" + field, "count": bson.M{"$sum": 1}}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	counts := map[string]int64{}
	for cursor.Next(ctx) {
		var row struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		counts[row.ID] = row.Count
	}
	return counts, cursor.Err()
}

func (r *ticketRepository) FindByStatuses(ctx context.Context, statuses []domain.TicketStatus) ([]domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"status": bson.M{"$in": statuses}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tickets := []domain.Ticket{}
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *ticketRepository) FindUpdatedSince(ctx context.Context, since time.Time) ([]domain.Ticket, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.collection.Find(ctx, bson.M{"updatedAt": bson.M{"$gte": since}}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	tickets := []domain.Ticket{}
	if err := cursor.All(ctx, &tickets); err != nil {
		return nil, err
	}
	return tickets, nil
}

// CompletionTimestamps returns the audit-log timestamps of COMPLETED
// transitions since the given time. Throughput reads the immutable history,
// not updatedAt, so later edits cannot shift past completions.
func (r *ticketRepository) CompletionTimestamps(ctx context.Context, since time.Time) ([]time.Time, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$unwind", Value: "$statusHistory"}},
		{{Key: "$match", Value: bson.M{
			"statusHistory.action":    domain.ActionStatusChange,
			"statusHistory.status":    domain.TicketStatusCompleted,
			"statusHistory.timestamp": bson.M{"$gte": since},
		}}},
		{{Key: "$project", Value: bson.M{"timestamp": "$statusHistory.timestamp"}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	stamps := []time.Time{}
	for cursor.Next(ctx) {
		var row struct {
			Timestamp time.Time `bson:"timestamp"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		stamps = append(stamps, row.Timestamp)
	}
	return stamps, cursor.Err()
}
