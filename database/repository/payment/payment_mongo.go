package paymentRepo

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

// MongoPaymentSessionRepo implements PaymentSessionRepository using MongoDB.
type MongoPaymentSessionRepo struct {
	coll     *mongo.Collection // payment_sessions
	reconCol *mongo.Collection // reconciliations
}

// NewMongoPaymentSessionRepo creates a new PaymentSessionRepository using MongoDB.
func NewMongoPaymentSessionRepo() PaymentSessionRepository {
	db := database.DB()
	repo := &MongoPaymentSessionRepo{
		coll:     db.Collection("payment_sessions"),
		reconCol: db.Collection("reconciliations"),
	}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func (r *MongoPaymentSessionRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		// One pending session per booking; terminal sessions remain as history.
		{
			Keys: bson.D{{Key: "booking_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetPartialFilterExpression(
				bson.M{"status": models.SessionStatusPending},
			),
		},
		{Keys: bson.D{{Key: "reference", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "expires_at", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create payment session indexes: %w", err)
	}
	return nil
}

// Create inserts a new pending session.
func (r *MongoPaymentSessionRepo) Create(session *models.PaymentSession) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, session); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicatePending
		}
		return fmt.Errorf("failed to create payment session for booking %s: %w", session.BookingID, err)
	}
	return nil
}

// GetLatest returns the most recently created session for a booking.
func (r *MongoPaymentSessionRepo) GetLatest(bookingID string) (*models.PaymentSession, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})
	var session models.PaymentSession
	if err := r.coll.FindOne(ctx, bson.M{"booking_id": bookingID}, opts).Decode(&session); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch payment session for booking %s: %w", bookingID, err)
	}
	return &session, nil
}

// GetPending returns the pending session for a booking, if any.
func (r *MongoPaymentSessionRepo) GetPending(bookingID string) (*models.PaymentSession, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var session models.PaymentSession
	filter := bson.M{"booking_id": bookingID, "status": models.SessionStatusPending}
	if err := r.coll.FindOne(ctx, filter).Decode(&session); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch pending session for booking %s: %w", bookingID, err)
	}
	return &session, nil
}

// GetByReference returns the session carrying the given payer reference.
func (r *MongoPaymentSessionRepo) GetByReference(reference string) (*models.PaymentSession, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	var session models.PaymentSession
	if err := r.coll.FindOne(ctx, bson.M{"reference": reference}).Decode(&session); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch payment session by reference %s: %w", reference, err)
	}
	return &session, nil
}

// transition runs one guarded state change and reports a conflict when the
// session was not in the expected state anymore.
func (r *MongoPaymentSessionRepo) transition(filter bson.M, to string) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{"status": to, "updated_at": time.Now()}}
	result, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to transition payment session to %s: %w", to, err)
	}
	if result.MatchedCount == 0 {
		return ErrConflict
	}
	return nil
}

// Expire moves the booking's pending session to expired iff its TTL lapsed.
func (r *MongoPaymentSessionRepo) Expire(bookingID string, now time.Time) error {
	return r.transition(bson.M{
		"booking_id": bookingID,
		"status":     models.SessionStatusPending,
		"expires_at": bson.M{"$lt": now},
	}, models.SessionStatusExpired)
}

// MarkPaid moves the session with the given reference from pending to paid.
func (r *MongoPaymentSessionRepo) MarkPaid(reference string) error {
	return r.transition(bson.M{
		"reference": reference,
		"status":    models.SessionStatusPending,
	}, models.SessionStatusPaid)
}

// Cancel moves the booking's pending session to cancelled.
func (r *MongoPaymentSessionRepo) Cancel(bookingID string) error {
	return r.transition(bson.M{
		"booking_id": bookingID,
		"status":     models.SessionStatusPending,
	}, models.SessionStatusCancelled)
}

// ListExpiredPending returns pending sessions whose TTL lapsed before now.
func (r *MongoPaymentSessionRepo) ListExpiredPending(now time.Time, limit int64) ([]models.PaymentSession, error) {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	opts := options.Find().SetLimit(limit).SetSort(bson.D{{Key: "expires_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{
		"status":     models.SessionStatusPending,
		"expires_at": bson.M{"$lt": now},
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list expired sessions: %w", err)
	}
	defer cursor.Close(ctx)

	var sessions []models.PaymentSession
	if err := cursor.All(ctx, &sessions); err != nil {
		return nil, fmt.Errorf("failed to decode expired sessions: %w", err)
	}
	return sessions, nil
}

// SaveReconciliation records a late or mismatched confirmation.
func (r *MongoPaymentSessionRepo) SaveReconciliation(rec *models.Reconciliation) error {
	ctx, cancel := newContext(5 * time.Second)
	defer cancel()

	if _, err := r.reconCol.InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("failed to save reconciliation for booking %s: %w", rec.BookingID, err)
	}
	return nil
}
