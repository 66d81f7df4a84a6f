package catalogRepo

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

// ErrNotFound is returned when no catalog document matches the query.
var ErrNotFound = errors.New("catalog entry not found")

// CatalogRepository reads the property/room-type catalog and the holiday
// calendar. The catalog is admin-managed outside this service; this side
// only reads.
type CatalogRepository interface {
	// GetProperty retrieves a property by its unique ID.
	GetProperty(id string) (*models.Property, error)
	// GetRoomType retrieves a room type by its unique ID.
	GetRoomType(id string) (*models.RoomType, error)
	// ListHolidays returns holiday dates within [from, to).
	ListHolidays(from, to time.Time) ([]models.Holiday, error)
}

// MongoCatalogRepo implements CatalogRepository using MongoDB.
type MongoCatalogRepo struct {
	propsColl    *mongo.Collection
	roomsColl    *mongo.Collection
	holidaysColl *mongo.Collection
}

// NewMongoCatalogRepo creates a new instance of CatalogRepository using MongoDB.
func NewMongoCatalogRepo() CatalogRepository {
	db := database.DB()
	repo := &MongoCatalogRepo{
		propsColl:    db.Collection("properties"),
		roomsColl:    db.Collection("room_types"),
		holidaysColl: db.Collection("holidays"),
	}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoCatalogRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	if _, err := r.propsColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create property indexes: %w", err)
	}
	if _, err := r.roomsColl.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "property_id", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("failed to create room type indexes: %w", err)
	}
	if _, err := r.holidaysColl.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "date", Value: 1}}, Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("failed to create holiday indexes: %w", err)
	}
	return nil
}

// GetProperty retrieves a property by its unique ID.
func (r *MongoCatalogRepo) GetProperty(id string) (*models.Property, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var property models.Property
	if err := r.propsColl.FindOne(ctx, bson.M{"id": id}).Decode(&property); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch property %s: %w", id, err)
	}
	return &property, nil
}

// GetRoomType retrieves a room type by its unique ID.
func (r *MongoCatalogRepo) GetRoomType(id string) (*models.RoomType, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var roomType models.RoomType
	if err := r.roomsColl.FindOne(ctx, bson.M{"id": id}).Decode(&roomType); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch room type %s: %w", id, err)
	}
	return &roomType, nil
}

// ListHolidays returns holiday dates within [from, to).
func (r *MongoCatalogRepo) ListHolidays(from, to time.Time) ([]models.Holiday, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	cursor, err := r.holidaysColl.Find(ctx, bson.M{
		"date": bson.M{"$gte": from, "$lt": to},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list holidays: %w", err)
	}
	defer cursor.Close(ctx)

	var holidays []models.Holiday
	if err := cursor.All(ctx, &holidays); err != nil {
		return nil, fmt.Errorf("failed to decode holidays: %w", err)
	}
	return holidays, nil
}
