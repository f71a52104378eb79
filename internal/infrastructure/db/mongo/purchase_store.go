package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"

	"github.com/99minutos/ticketing-system/internal/core/domain"
)

const labelTransientTransaction = "TransientTransactionError"

// PurchaseStore commits purchases in a single multi-document transaction.
// It requires a replica set or sharded cluster.
type PurchaseStore struct {
	client        *mongo.Client
	events        *mongo.Collection
	users         *mongo.Collection
	registrations *mongo.Collection
	now           func() time.Time
}

// Collections names the three collections a purchase touches.
type Collections struct {
	Events        string
	Users         string
	Registrations string
}

func NewPurchaseStore(client *mongo.Client, db *mongo.Database, cols Collections) *PurchaseStore {
	return &PurchaseStore{
		client:        client,
		events:        db.Collection(cols.Events),
		users:         db.Collection(cols.Users),
		registrations: db.Collection(cols.Registrations),
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// CommitPurchase runs the user check, the conditional decrement and the
// registration insert in one transaction. It is not retried here; a lost race
// surfaces as a transaction-conflict.
func (s *PurchaseStore) CommitPurchase(ctx context.Context, reg *domain.Registration) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	sess, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	err = mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sess.StartTransaction(txnOpts); err != nil {
			return fmt.Errorf("start transaction: %w", err)
		}
		if err := s.apply(sc, reg); err != nil {
			_ = sess.AbortTransaction(sc)
			return err
		}
		return sess.CommitTransaction(sc)
	})
	return classifyTxnError(err)
}

func (s *PurchaseStore) apply(sc mongo.SessionContext, reg *domain.Registration) error {
	// 1. Buyer still exists.
	if err := s.users.FindOne(sc, bson.M{"_id": reg.UserID}).Err(); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &domain.ConflictError{Cause: domain.CauseUserMissing}
		}
		return fmt.Errorf("check user: %w", err)
	}

	// 2. Conditional decrement.
	filter := bson.M{
		fieldID:       reg.EventID,
		fieldQuantity: bson.M{"$gte": reg.Quantity},
		fieldStatus:   bson.M{"$nin": statusVariants(domain.DisabledStatusMarkers())},
	}
	update := bson.M{
		"$inc": bson.M{fieldQuantity: -reg.Quantity},
		"$set": bson.M{fieldUpdatedAt: s.now()},
	}
	res, err := s.events.UpdateOne(sc, filter, update)
	if err != nil {
		return fmt.Errorf("decrement inventory: %w", err)
	}
	if res.MatchedCount == 0 {
		return s.explainMiss(sc, reg)
	}

	// 3. Registration insert, unique on _id.
	if _, err := s.registrations.InsertOne(sc, newRegistrationDoc(reg)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return &domain.ConflictError{Cause: domain.CauseDuplicateRegistration}
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

// explainMiss reads the event inside the transaction to tell which condition failed.
func (s *PurchaseStore) explainMiss(sc mongo.SessionContext, reg *domain.Registration) error {
	var doc eventDoc
	if err := s.events.FindOne(sc, bson.M{fieldID: reg.EventID}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &domain.ConflictError{Cause: domain.CauseEventMissing}
		}
		return &domain.ConflictError{Cause: domain.CauseTransactionConflict}
	}
	if doc.toDomain().Status.IsDisabled() {
		return &domain.ConflictError{Cause: domain.CauseEventDisabled}
	}
	return &domain.ConflictError{Cause: domain.CauseInventoryInsufficient}
}

func classifyTxnError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := domain.IsConflict(err); ok {
		return err
	}
	if mongo.IsDuplicateKeyError(err) {
		return &domain.ConflictError{Cause: domain.CauseDuplicateRegistration}
	}
	if hasErrorLabel(err, labelTransientTransaction) {
		return &domain.ConflictError{Cause: domain.CauseTransactionConflict}
	}
	return fmt.Errorf("purchase transaction: %w", err)
}

func hasErrorLabel(err error, label string) bool {
	var se mongo.ServerError
	return errors.As(err, &se) && se.HasErrorLabel(label)
}

// EnsureIndexes creates the lookup indexes on registrations.
func (s *PurchaseStore) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "EventId", Value: 1}}},
		{Keys: bson.D{{Key: "UserId", Value: 1}}},
	}
	_, err := s.registrations.Indexes().CreateMany(ctx, indexes)
	return err
}
