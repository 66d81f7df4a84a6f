package inventoryRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stayhub/database"
	"stayhub/models"
)

// ErrDuplicateHold is returned when a hold already exists for the booking.
var ErrDuplicateHold = errors.New("room hold already exists for booking")

// InventoryRepository tracks room-unit holds. The checkout core only signals
// hold/release intents; unit bookkeeping stays here.
type InventoryRepository interface {
	// Hold records the units held for a booking. One hold per booking.
	Hold(hold *models.RoomHold) error
	// Release marks the booking's hold released. Idempotent.
	Release(bookingID string) error
	// HeldUnits sums active held units of a room type overlapping [from, to).
	HeldUnits(roomTypeID string, from, to time.Time) (int, error)
}

// MongoInventoryRepo implements InventoryRepository using MongoDB.
type MongoInventoryRepo struct {
	coll *mongo.Collection // room_holds
}

// NewMongoInventoryRepo creates a new InventoryRepository using MongoDB.
func NewMongoInventoryRepo() InventoryRepository {
	repo := &MongoInventoryRepo{coll: database.DB().Collection("room_holds")}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoInventoryRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "booking_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "room_type_id", Value: 1}, {Key: "status", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create room hold indexes: %w", err)
	}
	return nil
}

// Hold records the units held for a booking.
func (r *MongoInventoryRepo) Hold(hold *models.RoomHold) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	hold.Status = models.HoldStatusHeld
	hold.CreatedAt = now
	hold.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, hold); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateHold
		}
		return fmt.Errorf("failed to hold rooms for booking %s: %w", hold.BookingID, err)
	}
	return nil
}

// Release marks the booking's hold released. Releasing an already released
// or missing hold is a no-op, so retries stay safe.
func (r *MongoInventoryRepo) Release(bookingID string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"booking_id": bookingID, "status": models.HoldStatusHeld}
	update := bson.M{"$set": bson.M{
		"status":     models.HoldStatusReleased,
		"updated_at": time.Now(),
	}}
	if _, err := r.coll.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to release hold for booking %s: %w", bookingID, err)
	}
	return nil
}

// HeldUnits sums active held units of a room type overlapping [from, to).
func (r *MongoInventoryRepo) HeldUnits(roomTypeID string, from, to time.Time) (int, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.M{
			"room_type_id": roomTypeID,
			"status":       models.HoldStatusHeld,
			"check_in":     bson.M{"$lt": to},
			"check_out":    bson.M{"$gt": from},
		}}},
		bson.D{{Key: "$group", Value: bson.M{
			"_id":   nil,
			"units": bson.M{"$sum": "$units"},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, fmt.Errorf("failed to aggregate held units for room type %s: %w", roomTypeID, err)
	}
	defer cursor.Close(ctx)

	var result []struct {
		Units int `bson:"units"`
	}
	if err := cursor.All(ctx, &result); err != nil {
		return 0, fmt.Errorf("failed to decode held units: %w", err)
	}
	if len(result) == 0 {
		return 0, nil
	}
	return result[0].Units, nil
}
