package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	bookingerrors "skybook/internal/bookings/errors"
	"skybook/pkg/config"
	"skybook/pkg/model"
)

const CollectionName = "bookings"

type BookingRepository interface {
	Create(ctx context.Context, booking *model.Booking) error
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	FindByUser(ctx context.Context, userID string) ([]*model.Booking, error)
	FindByFlight(ctx context.Context, flightID string) ([]*model.Booking, error)
	MarkCancelled(ctx context.Context, id string) error
}

type mongoBookingRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoBookingRepository(cfg *config.Config) BookingRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoBookingRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoBookingRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	booking.BookedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.collection.InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *mongoBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var booking model.Booking
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&booking)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, bookingerrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}

	return &booking, nil
}

func (r *mongoBookingRepository) FindByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	return r.find(ctx, bson.M{"user_id": userID})
}

func (r *mongoBookingRepository) FindByFlight(ctx context.Context, flightID string) ([]*model.Booking, error) {
	return r.find(ctx, bson.M{"flight_id": flightID})
}

func (r *mongoBookingRepository) find(ctx context.Context, filter bson.M) ([]*model.Booking, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "booked_at", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer cursor.Close(ctx)

	var bookings []*model.Booking
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, fmt.Errorf("failed to decode bookings: %w", err)
	}

	return bookings, nil
}

// MarkCancelled flips a confirmed booking to cancelled. The status guard in
// the filter makes the transition idempotent under concurrent cancels; only
// one caller observes a match.
func (r *mongoBookingRepository) MarkCancelled(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	res, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": model.BookingConfirmed},
		bson.M{"$set": bson.M{"status": model.BookingCancelled, "cancelled_at": now}},
	)
	if err != nil {
		return fmt.Errorf("failed to cancel booking: %w", err)
	}
	if res.MatchedCount == 0 {
		// Distinguish a missing booking from one already cancelled.
		if _, ferr := r.FindByID(ctx, id); ferr != nil {
			return ferr
		}
		return bookingerrors.ErrAlreadyCancelled
	}
	return nil
}
