package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"skybook/internal/events"
	"skybook/internal/flights/cache"
	flighterrors "skybook/internal/flights/errors"
	"skybook/internal/flights/repository"
	"skybook/internal/flights/validator"
	"skybook/pkg/config"
	apperrors "skybook/pkg/errors"
	"skybook/pkg/model"
)

type FlightService interface {
	Create(ctx context.Context, fc *model.FlightCreate) (*model.Flight, error)
	GetByID(ctx context.Context, id string) (*model.Flight, error)
	Search(ctx context.Context, q model.FlightSearch) ([]*model.Flight, error)
	GetAll(ctx context.Context, limit int) ([]*model.Flight, error)
	GetByCompany(ctx context.Context, companyID string) ([]*model.Flight, error)
	Update(ctx context.Context, id string, companyID string, updates *model.FlightUpdate) (*model.Flight, error)
	Cancel(ctx context.Context, id string, companyID string) error
	ReserveSeats(ctx context.Context, id string, count int) (*model.Flight, error)
	ReleaseSeats(ctx context.Context, id string, count int) error
}

type flightService struct {
	repo      repository.FlightRepository
	cache     cache.FlightCache
	validator *validator.FlightValidator
	events    *events.Publisher
	cfg       *config.Config
}

func NewFlightService(
	repo repository.FlightRepository,
	flightCache cache.FlightCache,
	validator *validator.FlightValidator,
	publisher *events.Publisher,
	cfg *config.Config,
) FlightService {
	return &flightService{
		repo:      repo,
		cache:     flightCache,
		validator: validator,
		events:    publisher,
		cfg:       cfg,
	}
}

func (s *flightService) Create(ctx context.Context, fc *model.FlightCreate) (*model.Flight, error) {
	normalizeAirports(&fc.Origin, &fc.Destination)

	if err := s.validator.ValidateCreate(fc); err != nil {
		return nil, apperrors.Validation("Invalid flight data", map[string]any{"errors": err})
	}

	flight := &model.Flight{
		ID:             uuid.New().String(),
		CompanyID:      fc.CompanyID,
		CompanyName:    fc.CompanyName,
		FlightNumber:   strings.ToUpper(strings.TrimSpace(fc.FlightNumber)),
		Origin:         fc.Origin,
		Destination:    fc.Destination,
		DepartureTime:  fc.DepartureTime.UTC(),
		ArrivalTime:    fc.ArrivalTime.UTC(),
		Duration:       fc.Duration,
		Price:          fc.Price,
		AvailableSeats: fc.TotalSeats,
		TotalSeats:     fc.TotalSeats,
		Stops:          fc.Stops,
		Status:         model.FlightScheduled,
	}

	if err := s.repo.Create(ctx, flight); err != nil {
		s.cfg.Log.Error("Failed to create flight", "error", err)
		return nil, apperrors.Internal("Failed to create flight", err)
	}

	s.cache.InvalidateListings(ctx)
	s.events.FlightCreated(ctx, flight)

	s.cfg.Log.Info("Flight created",
		"id", flight.ID,
		"company_id", flight.CompanyID,
		"flight_number", flight.FlightNumber,
		"origin", flight.Origin,
		"destination", flight.Destination,
	)
	return flight, nil
}

func (s *flightService) GetByID(ctx context.Context, id string) (*model.Flight, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Flight ID cannot be empty")
	}

	if flight, ok := s.cache.GetFlight(ctx, id); ok {
		return flight, nil
	}

	flight, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, flighterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Flight", id)
		}
		return nil, apperrors.Internal("Failed to retrieve flight", err)
	}

	s.cache.SetFlight(ctx, flight)
	return flight, nil
}

func (s *flightService) Search(ctx context.Context, q model.FlightSearch) ([]*model.Flight, error) {
	q.Origin = strings.ToUpper(strings.TrimSpace(q.Origin))
	q.Destination = strings.ToUpper(strings.TrimSpace(q.Destination))
	if q.Limit <= 0 {
		q.Limit = config.DefaultSearchLimit
	}
	if q.Limit > config.MaxSearchLimit {
		q.Limit = config.MaxSearchLimit
	}

	cached, gen, ok := s.cache.GetSearch(ctx, q)
	if ok {
		return cached, nil
	}

	flights, err := s.repo.Search(ctx, q)
	if err != nil {
		s.cfg.Log.Error("Failed to search flights", "error", err)
		return nil, apperrors.Internal("Failed to search flights", err)
	}
	if flights == nil {
		flights = []*model.Flight{}
	}

	s.cache.SetSearch(ctx, q, gen, flights)
	return flights, nil
}

func (s *flightService) GetAll(ctx context.Context, limit int) ([]*model.Flight, error) {
	if limit <= 0 {
		limit = config.DefaultListLimit
	}
	if limit > config.MaxListLimit {
		limit = config.MaxListLimit
	}

	cached, gen, ok := s.cache.GetList(ctx, limit)
	if ok {
		return cached, nil
	}

	flights, err := s.repo.FindAll(ctx, limit)
	if err != nil {
		s.cfg.Log.Error("Failed to list flights", "error", err)
		return nil, apperrors.Internal("Failed to list flights", err)
	}
	if flights == nil {
		flights = []*model.Flight{}
	}

	s.cache.SetList(ctx, limit, gen, flights)
	return flights, nil
}

func (s *flightService) GetByCompany(ctx context.Context, companyID string) ([]*model.Flight, error) {
	if companyID == "" {
		return nil, apperrors.InvalidInput("Company ID cannot be empty")
	}

	flights, err := s.repo.FindByCompany(ctx, companyID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list company flights", err)
	}
	if flights == nil {
		flights = []*model.Flight{}
	}
	return flights, nil
}

// Update applies partial changes. An empty companyID skips the ownership
// check; admin callers use that path.
func (s *flightService) Update(ctx context.Context, id string, companyID string, updates *model.FlightUpdate) (*model.Flight, error) {
	if err := s.validator.ValidateUpdate(updates); err != nil {
		return nil, apperrors.Validation("Invalid flight update", map[string]any{"errors": err})
	}

	flight, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if companyID != "" && flight.CompanyID != companyID {
		return nil, apperrors.Forbidden("Flight belongs to another company")
	}

	fields := map[string]any{}
	if updates.Price != nil {
		fields["price"] = *updates.Price
	}
	if updates.AvailableSeats != nil {
		if *updates.AvailableSeats > flight.TotalSeats {
			return nil, apperrors.Validation("Available seats cannot exceed total seats", nil)
		}
		fields["available_seats"] = *updates.AvailableSeats
	}
	if updates.Status != nil {
		fields["status"] = *updates.Status
	}

	if err := s.repo.UpdateFields(ctx, id, fields); err != nil {
		if errors.Is(err, flighterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Flight", id)
		}
		s.cfg.Log.Error("Failed to update flight", "flight_id", id, "error", err)
		return nil, apperrors.Internal("Failed to update flight", err)
	}

	s.cache.InvalidateFlight(ctx, id)
	s.cache.InvalidateListings(ctx)

	updated, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Internal("Failed to reload flight", err)
	}
	s.cache.SetFlight(ctx, updated)
	return updated, nil
}

func (s *flightService) Cancel(ctx context.Context, id string, companyID string) error {
	flight, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if companyID != "" && flight.CompanyID != companyID {
		return apperrors.Forbidden("Flight belongs to another company")
	}
	if flight.Status == model.FlightCancelled {
		return apperrors.Validation("Flight is already cancelled", nil)
	}

	if err := s.repo.UpdateFields(ctx, id, map[string]any{"status": model.FlightCancelled}); err != nil {
		s.cfg.Log.Error("Failed to cancel flight", "flight_id", id, "error", err)
		return apperrors.Internal("Failed to cancel flight", err)
	}

	s.cache.InvalidateFlight(ctx, id)
	s.cache.InvalidateListings(ctx)
	s.events.FlightCancelled(ctx, flight)

	s.cfg.Log.Info("Flight cancelled", "id", id, "company_id", flight.CompanyID)
	return nil
}

// ReserveSeats holds back count seats and returns the flight as read before
// the decrement, for pricing. The decrement itself is atomic in the
// repository; the returned snapshot is informational.
func (s *flightService) ReserveSeats(ctx context.Context, id string, count int) (*model.Flight, error) {
	if count < 1 {
		return nil, apperrors.InvalidInput("Passenger count must be at least 1")
	}

	flight, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, flighterrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Flight", id)
		}
		return nil, apperrors.Internal("Failed to retrieve flight", err)
	}
	if flight.Status != model.FlightScheduled {
		return nil, apperrors.Validation("Flight is not open for booking", nil)
	}
	if flight.AvailableSeats < count {
		return nil, apperrors.Validation("Not enough seats available",
			map[string]any{"seats_remaining": flight.AvailableSeats})
	}

	if err := s.repo.ReserveSeats(ctx, id, count); err != nil {
		switch {
		case errors.Is(err, flighterrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Flight", id)
		case errors.Is(err, flighterrors.ErrNotBookable):
			return nil, apperrors.Validation("Flight is not open for booking", nil)
		case errors.Is(err, flighterrors.ErrInsufficientSeats):
			return nil, apperrors.Validation("Not enough seats available", nil)
		}
		s.cfg.Log.Error("Failed to reserve seats", "flight_id", id, "count", count, "error", err)
		return nil, apperrors.Internal("Failed to reserve seats", err)
	}

	s.cache.InvalidateFlight(ctx, id)
	s.cache.InvalidateListings(ctx)
	return flight, nil
}

func (s *flightService) ReleaseSeats(ctx context.Context, id string, count int) error {
	if count < 1 {
		return apperrors.InvalidInput("Seat count must be at least 1")
	}

	if err := s.repo.ReleaseSeats(ctx, id, count); err != nil {
		if errors.Is(err, flighterrors.ErrNotFound) {
			return apperrors.NotFoundWithID("Flight", id)
		}
		s.cfg.Log.Error("Failed to release seats", "flight_id", id, "count", count, "error", err)
		return apperrors.Internal("Failed to release seats", err)
	}

	s.cache.InvalidateFlight(ctx, id)
	s.cache.InvalidateListings(ctx)
	return nil
}

func normalizeAirports(codes ...*string) {
	for _, c := range codes {
		*c = strings.ToUpper(strings.TrimSpace(*c))
	}
}
