package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	flighterrors "skybook/internal/flights/errors"
	"skybook/pkg/config"
	"skybook/pkg/model"
)

const CollectionName = "flights"

type FlightRepository interface {
	Create(ctx context.Context, flight *model.Flight) error
	FindByID(ctx context.Context, id string) (*model.Flight, error)
	Search(ctx context.Context, q model.FlightSearch) ([]*model.Flight, error)
	FindAll(ctx context.Context, limit int) ([]*model.Flight, error)
	FindByCompany(ctx context.Context, companyID string) ([]*model.Flight, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	ReserveSeats(ctx context.Context, id string, count int) error
	ReleaseSeats(ctx context.Context, id string, count int) error
}

type mongoFlightRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoFlightRepository(cfg *config.Config) FlightRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoFlightRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoFlightRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoFlightRepository) Create(ctx context.Context, flight *model.Flight) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	flight.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	if _, err := r.collection.InsertOne(ctx, flight); err != nil {
		return fmt.Errorf("failed to create flight: %w", err)
	}
	return nil
}

func (r *mongoFlightRepository) FindByID(ctx context.Context, id string) (*model.Flight, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var flight model.Flight
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&flight)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, flighterrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find flight: %w", err)
	}

	return &flight, nil
}

// Search returns scheduled flights only; a departure date matches the whole
// UTC calendar day.
func (r *mongoFlightRepository) Search(ctx context.Context, q model.FlightSearch) ([]*model.Flight, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"status": model.FlightScheduled}
	if q.Origin != "" {
		filter["origin"] = q.Origin
	}
	if q.Destination != "" {
		filter["destination"] = q.Destination
	}
	if q.DepartureDate != nil {
		dayStart, dayEnd := departureDayWindow(*q.DepartureDate)
		filter["departure_time"] = bson.M{
			"$gte": dayStart,
			"$lt":  dayEnd,
		}
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "departure_time", Value: 1}}).
		SetLimit(int64(q.Limit))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to search flights: %w", err)
	}
	defer cursor.Close(ctx)

	var flights []*model.Flight
	if err = cursor.All(ctx, &flights); err != nil {
		return nil, fmt.Errorf("failed to decode flights: %w", err)
	}

	return flights, nil
}

// departureDayWindow returns the [start, end) bounds of the UTC calendar
// day containing t.
func departureDayWindow(t time.Time) (time.Time, time.Time) {
	u := t.UTC()
	start := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}

func (r *mongoFlightRepository) FindAll(ctx context.Context, limit int) ([]*model.Flight, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "departure_time", Value: 1}}).
		SetLimit(int64(limit))

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list flights: %w", err)
	}
	defer cursor.Close(ctx)

	var flights []*model.Flight
	if err = cursor.All(ctx, &flights); err != nil {
		return nil, fmt.Errorf("failed to decode flights: %w", err)
	}

	return flights, nil
}

func (r *mongoFlightRepository) FindByCompany(ctx context.Context, companyID string) ([]*model.Flight, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"company_id": companyID},
		options.Find().SetSort(bson.D{{Key: "departure_time", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to list company flights: %w", err)
	}
	defer cursor.Close(ctx)

	var flights []*model.Flight
	if err = cursor.All(ctx, &flights); err != nil {
		return nil, fmt.Errorf("failed to decode flights: %w", err)
	}

	return flights, nil
}

func (r *mongoFlightRepository) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return fmt.Errorf("failed to update flight: %w", err)
	}
	if res.MatchedCount == 0 {
		return flighterrors.ErrNotFound
	}
	return nil
}

// ReserveSeats decrements available_seats by count in a single conditional
// update evaluated server-side, so the counter can never go negative no
// matter how reservations interleave.
func (r *mongoFlightRepository) ReserveSeats(ctx context.Context, id string, count int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{
		"_id":             id,
		"status":          model.FlightScheduled,
		"available_seats": bson.M{"$gte": count},
	}
	update := bson.M{"$inc": bson.M{"available_seats": -count}}

	err := r.collection.FindOneAndUpdate(ctx, filter, update).Err()
	if err == nil {
		return nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return fmt.Errorf("failed to reserve seats: %w", err)
	}

	// The conditional update missed; re-read once to say why.
	flight, ferr := r.FindByID(ctx, id)
	if ferr != nil {
		return ferr
	}
	if flight.Status != model.FlightScheduled {
		return flighterrors.ErrNotBookable
	}
	return flighterrors.ErrInsufficientSeats
}

// ReleaseSeats increments available_seats by count. When SeatReleaseCap is
// set the value is clamped at total_seats via a pipeline update; otherwise
// the increment is unconditional, matching the historical behavior.
func (r *mongoFlightRepository) ReleaseSeats(ctx context.Context, id string, count int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	var update any = bson.M{"$inc": bson.M{"available_seats": count}}
	if r.cfg.SeatReleaseCap {
		update = mongo.Pipeline{
			{{Key: "$set", Value: bson.M{
				"available_seats": bson.M{"$min": bson.A{
					bson.M{"$add": bson.A{"$available_seats", count}},
					"$total_seats",
				}},
			}}},
		}
	}

	res, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to release seats: %w", err)
	}
	if res.MatchedCount == 0 {
		return flighterrors.ErrNotFound
	}
	return nil
}
