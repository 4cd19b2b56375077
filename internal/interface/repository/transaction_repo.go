package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hostel-sync-service/internal/domain/entity"
	"hostel-sync-service/internal/domain/repository"
	"hostel-sync-service/internal/infrastructure/persistence"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoTransactionRepository implements the TransactionRepository interface
type MongoTransactionRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoTransactionRepository creates a new MongoDB transaction repository
func NewMongoTransactionRepository(db *mongo.Database) *MongoTransactionRepository {
	return &MongoTransactionRepository{
		collection: db.Collection(persistence.TransactionsCollection),
		now:        time.Now,
	}
}

var _ repository.TransactionRepository = (*MongoTransactionRepository)(nil)

// EnsureIndexes creates the lookup index used by FindDuplicate
func (r *MongoTransactionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "description", Value: 1},
				{Key: "amount", Value: 1},
				{Key: "date", Value: 1},
			},
		},
		{Keys: bson.D{{Key: "date", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create transaction indexes: %w", err)
	}
	return nil
}

// FindDuplicate finds a transaction with the exact description, amount and date
func (r *MongoTransactionRepository) FindDuplicate(ctx context.Context, description string, amount float64, date time.Time) (*entity.Transaction, error) {
	filter := bson.M{
		"description": description,
		"amount":      amount,
		"date":        date,
	}

	var tx entity.Transaction
	err := r.collection.FindOne(ctx, filter, options.FindOne().SetProjection(bson.M{"_id": 1})).Decode(&tx)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return &tx, nil
}

// Insert stores a new transaction and sets its id and timestamps
func (r *MongoTransactionRepository) Insert(ctx context.Context, tx *entity.Transaction) error {
	now := r.now()
	tx.CreatedAt = now
	tx.UpdatedAt = now

	res, err := r.collection.InsertOne(ctx, tx)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	if id, ok := objectID(res.InsertedID); ok {
		tx.ID = id
	}
	return nil
}
