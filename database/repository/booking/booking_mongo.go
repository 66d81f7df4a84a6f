package bookingRepo

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

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll *mongo.Collection
}

// NewMongoBookingRepo creates a new instance of BookingRepository using MongoDB.
func NewMongoBookingRepo() BookingRepository {
	coll := database.DB().Collection("bookings")
	repo := &MongoBookingRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

// newContext creates a context with the given timeout.
func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "code", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "owner_id", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

// Create inserts a new booking document.
func (r *MongoBookingRepo) Create(booking *models.Booking) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	now := time.Now()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	booking.Version = 1

	if _, err := r.coll.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

// GetByID retrieves a booking by its unique ID.
func (r *MongoBookingRepo) GetByID(id string) (*models.Booking, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &booking, nil
}

// GetByCode retrieves a booking by its human-shareable code.
func (r *MongoBookingRepo) GetByCode(code string) (*models.Booking, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var booking models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"code": code}).Decode(&booking); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking by code %s: %w", code, err)
	}
	return &booking, nil
}

// UpdateSnapshot replaces the pricing snapshot guarded by the version field.
func (r *MongoBookingRepo) UpdateSnapshot(id string, version int64, snap models.PricingSnapshot) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	filter := bson.M{"id": id, "version": version}
	update := bson.M{
		"$set": bson.M{
			"room_price":                snap.RoomPrice,
			"property_discount_amount":  snap.PropertyDiscountAmount,
			"property_discount_percent": snap.PropertyDiscountPercent,
			"coupon_discount_amount":    snap.CouponDiscountAmount,
			"coupon_discount_percent":   snap.CouponDiscountPercent,
			"tax_amount":                snap.TaxAmount,
			"service_fee":               snap.ServiceFee,
			"total_amount":              snap.TotalAmount,
			"updated_at":                time.Now(),
		},
		"$inc": bson.M{"version": 1},
	}

	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to update pricing snapshot for booking %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		// Either the booking is gone or the version moved under us.
		if exists, lookupErr := r.exists(id); lookupErr == nil && !exists {
			return ErrNotFound
		}
		return ErrStaleVersion
	}
	return nil
}

func (r *MongoBookingRepo) exists(id string) (bool, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	count, err := r.coll.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// transitionPayment runs one guarded payment state transition.
func (r *MongoBookingRepo) transitionPayment(id, fromPayment string, set bson.M) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	set["updated_at"] = time.Now()
	filter := bson.M{"id": id, "payment_status": fromPayment}
	result, err := r.coll.UpdateOne(ctx, filter, bson.M{"$set": set, "$inc": bson.M{"version": 1}})
	if err != nil {
		return fmt.Errorf("failed to transition payment state for booking %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		if exists, lookupErr := r.exists(id); lookupErr == nil && !exists {
			return ErrNotFound
		}
		return ErrStaleVersion
	}
	return nil
}

// Delete removes a booking document.
func (r *MongoBookingRepo) Delete(id string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete booking %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPaymentPending moves payment_status unpaid -> pending.
func (r *MongoBookingRepo) SetPaymentPending(id string) error {
	return r.transitionPayment(id, models.PaymentStatusUnpaid, bson.M{
		"payment_status": models.PaymentStatusPending,
		"status":         models.BookingStatusPending,
	})
}

// RevertPaymentPending undoes SetPaymentPending when opening a session failed
// before one came to exist.
func (r *MongoBookingRepo) RevertPaymentPending(id string) error {
	return r.transitionPayment(id, models.PaymentStatusPending, bson.M{
		"payment_status": models.PaymentStatusUnpaid,
		"status":         models.BookingStatusDraft,
	})
}

// MarkPaid moves payment_status pending -> paid and confirms the booking.
func (r *MongoBookingRepo) MarkPaid(id string) error {
	return r.transitionPayment(id, models.PaymentStatusPending, bson.M{
		"payment_status": models.PaymentStatusPaid,
		"status":         models.BookingStatusConfirmed,
	})
}

// MarkPaymentExpired moves payment_status pending -> expired.
func (r *MongoBookingRepo) MarkPaymentExpired(id string) error {
	return r.transitionPayment(id, models.PaymentStatusPending, bson.M{
		"payment_status": models.PaymentStatusExpired,
	})
}

// CancelPayment rolls a pending payment back and cancels the booking.
func (r *MongoBookingRepo) CancelPayment(id string) error {
	return r.transitionPayment(id, models.PaymentStatusPending, bson.M{
		"payment_status": models.PaymentStatusUnpaid,
		"status":         models.BookingStatusCancelled,
	})
}
