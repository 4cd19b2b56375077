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

// MongoCredentialRepository keeps refresh tokens in the systemsettings
// collection, one document per purpose
type MongoCredentialRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoCredentialRepository creates a new MongoDB credential repository
func NewMongoCredentialRepository(db *mongo.Database) *MongoCredentialRepository {
	return &MongoCredentialRepository{
		collection: db.Collection(persistence.SystemSettingsCollection),
		now:        time.Now,
	}
}

var _ repository.CredentialRepository = (*MongoCredentialRepository)(nil)

// EnsureIndexes creates the unique key index
func (r *MongoCredentialRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("failed to create systemsettings index: %w", err)
	}
	return nil
}

// Get returns the refresh token for purpose
func (r *MongoCredentialRepository) Get(ctx context.Context, purpose entity.Purpose) (string, error) {
	var setting entity.SystemSetting
	err := r.collection.FindOne(ctx, bson.M{"key": purpose.SettingKey()}).Decode(&setting)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", repository.ErrCredentialNotFound
		}
		return "", fmt.Errorf("failed to read %s: %w", purpose.SettingKey(), err)
	}
	if setting.Value == "" {
		return "", repository.ErrCredentialNotFound
	}
	return setting.Value, nil
}

// Save upserts the refresh token for purpose
func (r *MongoCredentialRepository) Save(ctx context.Context, purpose entity.Purpose, refreshToken string) error {
	now := r.now()
	update := bson.M{
		"$set": bson.M{
			"value":     refreshToken,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"createdAt": now,
		},
	}

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"key": purpose.SettingKey()},
		update,
		options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", purpose.SettingKey(), err)
	}
	return nil
}

// Delete removes the refresh token for purpose. Deleting a missing token is
// not an error.
func (r *MongoCredentialRepository) Delete(ctx context.Context, purpose entity.Purpose) error {
	if _, err := r.collection.DeleteOne(ctx, bson.M{"key": purpose.SettingKey()}); err != nil {
		return fmt.Errorf("failed to delete %s: %w", purpose.SettingKey(), err)
	}
	return nil
}
