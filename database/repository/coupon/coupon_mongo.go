package couponRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stayhub/database"
	"stayhub/models"
)

// MongoCouponRepo implements CouponRepository using MongoDB.
type MongoCouponRepo struct {
	coll     *mongo.Collection // coupons
	appsColl *mongo.Collection // coupon_applications
}

// NewMongoCouponRepo creates a new instance of CouponRepository using MongoDB.
func NewMongoCouponRepo() CouponRepository {
	db := database.DB()
	repo := &MongoCouponRepo{
		coll:     db.Collection("coupons"),
		appsColl: db.Collection("coupon_applications"),
	}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoCouponRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	couponIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, couponIndexes); err != nil {
		return fmt.Errorf("failed to create coupon indexes: %w", err)
	}

	// booking_id unique: at most one active coupon per booking.
	appIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "booking_id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "coupon_id", Value: 1}, {Key: "customer_id", Value: 1}}},
	}
	if _, err := r.appsColl.Indexes().CreateMany(ctx, appIndexes); err != nil {
		return fmt.Errorf("failed to create coupon application indexes: %w", err)
	}
	return nil
}

// GetByCode retrieves a coupon by its unique code.
func (r *MongoCouponRepo) GetByCode(code string) (*models.Coupon, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var coupon models.Coupon
	if err := r.coll.FindOne(ctx, bson.M{"code": code}).Decode(&coupon); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch coupon by code %s: %w", code, err)
	}
	return &coupon, nil
}

// IncrementUsage performs the compare-and-increment on used_count. The filter
// re-checks the cap inside the same atomic update, so two racers for the last
// use cannot both pass.
func (r *MongoCouponRepo) IncrementUsage(couponID string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{
		"id": couponID,
		"$or": bson.A{
			bson.M{"max_total_uses": nil},
			bson.M{"max_total_uses": bson.M{"$exists": false}},
			bson.M{"$expr": bson.M{"$lt": bson.A{"$used_count", "$max_total_uses"}}},
		},
	}
	update := bson.M{
		"$inc": bson.M{"used_count": 1},
		"$set": bson.M{"updated_at": time.Now()},
	}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to increment usage for coupon %s: %w", couponID, err)
	}
	if result.MatchedCount == 0 {
		count, lookupErr := r.coll.CountDocuments(ctx, bson.M{"id": couponID})
		if lookupErr == nil && count == 0 {
			return ErrNotFound
		}
		return ErrExhausted
	}
	return nil
}

// DecrementUsage undoes one use, guarded against going negative.
func (r *MongoCouponRepo) DecrementUsage(couponID string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": couponID, "used_count": bson.M{"$gt": 0}}
	update := bson.M{
		"$inc": bson.M{"used_count": -1},
		"$set": bson.M{"updated_at": time.Now()},
	}
	if _, err := r.coll.UpdateOne(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to decrement usage for coupon %s: %w", couponID, err)
	}
	return nil
}

// GetApplication returns the active application for a booking, if any.
func (r *MongoCouponRepo) GetApplication(bookingID string) (*models.CouponApplication, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var app models.CouponApplication
	if err := r.appsColl.FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&app); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch coupon application for booking %s: %w", bookingID, err)
	}
	return &app, nil
}

// InsertApplication inserts a new application document.
func (r *MongoCouponRepo) InsertApplication(app *models.CouponApplication) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.appsColl.InsertOne(ctx, app); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateApplication
		}
		return fmt.Errorf("failed to insert coupon application for booking %s: %w", app.BookingID, err)
	}
	return nil
}

// DeleteApplication removes and returns the application for a booking.
func (r *MongoCouponRepo) DeleteApplication(bookingID string) (*models.CouponApplication, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var app models.CouponApplication
	err := r.appsColl.FindOneAndDelete(ctx, bson.M{"booking_id": bookingID}).Decode(&app)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to delete coupon application for booking %s: %w", bookingID, err)
	}
	return &app, nil
}

// CountCustomerUses counts active applications of a coupon by one customer.
func (r *MongoCouponRepo) CountCustomerUses(couponID, customerID string) (int64, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	count, err := r.appsColl.CountDocuments(ctx, bson.M{
		"coupon_id":   couponID,
		"customer_id": customerID,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count coupon uses for customer %s: %w", customerID, err)
	}
	return count, nil
}
