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
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoBookingRepository implements the BookingRepository interface
type MongoBookingRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

// NewMongoBookingRepository creates a new MongoDB booking repository
func NewMongoBookingRepository(db *mongo.Database) *MongoBookingRepository {
	return &MongoBookingRepository{
		collection: db.Collection(persistence.BookingsCollection),
		now:        time.Now,
	}
}

var _ repository.BookingRepository = (*MongoBookingRepository)(nil)

// EnsureIndexes creates the unique book number index and the check-in index
func (r *MongoBookingRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "bookNumber", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "checkIn", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create booking indexes: %w", err)
	}
	return nil
}

// FindByBookNumber finds a booking by its book number
func (r *MongoBookingRepository) FindByBookNumber(ctx context.Context, bookNumber string) (*entity.Booking, error) {
	var booking entity.Booking
	err := r.collection.FindOne(ctx, bson.M{"bookNumber": bookNumber}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	return &booking, nil
}

// Insert stores a new booking. A book number that already exists yields
// repository.ErrDuplicate.
func (r *MongoBookingRepository) Insert(ctx context.Context, booking *entity.Booking) error {
	now := r.now()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	res, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("booking %s: %w", booking.BookNumber, repository.ErrDuplicate)
		}
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	if id, ok := objectID(res.InsertedID); ok {
		booking.ID = id
	}
	return nil
}

// FindAdvancePending finds active bookings whose advance has not been
// received. Documents missing either field count as pending and active.
func (r *MongoBookingRepository) FindAdvancePending(ctx context.Context) ([]*entity.Booking, error) {
	filter := bson.M{
		"$and": []bson.M{
			{"$or": []bson.M{
				{"advanceReceived": false},
				{"advanceReceived": bson.M{"$exists": false}},
			}},
			{"$or": []bson.M{
				{"bookingStatus": entity.BookingActive},
				{"bookingStatus": bson.M{"$exists": false}},
			}},
		},
	}

	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "checkIn", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to find advance pending bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*entity.Booking
	if err := cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}
	return bookings, nil
}

func objectID(v interface{}) (primitive.ObjectID, bool) {
	id, ok := v.(primitive.ObjectID)
	return id, ok
}
