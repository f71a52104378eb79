package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/ticketing-system/internal/core/domain"
)

const defaultPageSize = 100

// EventRepository implements ports.EventRepository using MongoDB.
type EventRepository struct {
	col      *mongo.Collection
	pageSize int64
	now      func() time.Time
}

// NewEventRepository creates a new EventRepository over the named collection.
func NewEventRepository(db *mongo.Database, collection string) *EventRepository {
	return &EventRepository{
		col:      db.Collection(collection),
		pageSize: defaultPageSize,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a new event document.
func (r *EventRepository) Create(ctx context.Context, e *domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.col.InsertOne(ctx, newEventDoc(e)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrEventExists
		}
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// FindByID retrieves an event by its id.
func (r *EventRepository) FindByID(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc eventDoc
	if err := r.col.FindOne(ctx, bson.M{fieldID: id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("find event: %w", err)
	}
	return doc.toDomain(), nil
}

// ListActive pages through the collection by _id until no documents remain.
func (r *EventRepository) ListActive(ctx context.Context) ([]*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	active := statusVariants(domain.ActiveStatusMarkers())
	out := []*domain.Event{}
	last := ""
	for {
		filter := bson.M{fieldStatus: bson.M{"$in": active}}
		if last != "" {
			filter[fieldID] = bson.M{"$gt": last}
		}
		opts := options.Find().SetSort(bson.D{{Key: fieldID, Value: 1}}).SetLimit(r.pageSize)

		cursor, err := r.col.Find(ctx, filter, opts)
		if err != nil {
			return nil, fmt.Errorf("list events: %w", err)
		}
		var page []eventDoc
		if err := cursor.All(ctx, &page); err != nil {
			return nil, fmt.Errorf("decode events: %w", err)
		}
		for _, d := range page {
			out = append(out, d.toDomain())
		}
		if int64(len(page)) < r.pageSize {
			return out, nil
		}
		last = page[len(page)-1].ID
	}
}

// Update applies the patch and returns the updated document.
func (r *EventRepository) Update(ctx context.Context, id string, patch domain.EventPatch) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc eventDoc
	err := r.col.FindOneAndUpdate(ctx, bson.M{fieldID: id}, patchUpdate(patch, r.now()), opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("update event: %w", err)
	}
	return doc.toDomain(), nil
}

// Delete removes the event and returns the deleted document.
func (r *EventRepository) Delete(ctx context.Context, id string) (*domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc eventDoc
	if err := r.col.FindOneAndDelete(ctx, bson.M{fieldID: id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrEventNotFound
		}
		return nil, fmt.Errorf("delete event: %w", err)
	}
	return doc.toDomain(), nil
}

// MarkSoldOut sets the status to DISABLED only while no tickets remain.
func (r *EventRepository) MarkSoldOut(ctx context.Context, id string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{fieldID: id, fieldQuantity: 0}
	update := bson.M{"$set": bson.M{fieldStatus: string(domain.StatusSoldOut), fieldUpdatedAt: r.now()}}
	res, err := r.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("mark sold out: %w", err)
	}
	return res.ModifiedCount > 0, nil
}

// EnsureIndexes creates the secondary indexes used by ListActive.
func (r *EventRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: fieldStatus, Value: 1}, {Key: fieldID, Value: 1}}},
	}
	_, err := r.col.Indexes().CreateMany(ctx, indexes)
	return err
}
