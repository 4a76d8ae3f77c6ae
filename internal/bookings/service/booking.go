package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	bookingerrors "skybook/internal/bookings/errors"
	"skybook/internal/bookings/repository"
	"skybook/internal/events"
	"skybook/pkg/config"
	apperrors "skybook/pkg/errors"
	"skybook/pkg/model"
)

// Inventory is the slice of the flight service the orchestrator needs.
// ReserveSeats must be atomic with respect to concurrent reservations.
type Inventory interface {
	GetByID(ctx context.Context, id string) (*model.Flight, error)
	ReserveSeats(ctx context.Context, id string, count int) (*model.Flight, error)
	ReleaseSeats(ctx context.Context, id string, count int) error
}

type BookingService interface {
	Create(ctx context.Context, userID string, bc *model.BookingCreate) (*model.Booking, error)
	GetByID(ctx context.Context, id string, user *model.User) (*model.Booking, error)
	ListForUser(ctx context.Context, userID string) ([]*model.Booking, error)
	ListForFlight(ctx context.Context, flightID string, user *model.User) ([]*model.Booking, error)
	Cancel(ctx context.Context, id string, user *model.User) error
}

type bookingService struct {
	repo      repository.BookingRepository
	inventory Inventory
	validate  *validator.Validate
	events    *events.Publisher
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	inventory Inventory,
	publisher *events.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		inventory: inventory,
		validate:  validator.New(),
		events:    publisher,
		cfg:       cfg,
	}
}

// Create reserves seats first and writes the ledger record second. If the
// ledger write fails the reservation is compensated, so seats are never
// leaked by a half-finished booking.
func (s *bookingService) Create(ctx context.Context, userID string, bc *model.BookingCreate) (*model.Booking, error) {
	if err := s.validate.Struct(bc); err != nil {
		return nil, apperrors.Validation("Invalid booking data", map[string]any{"errors": err.Error()})
	}

	flight, err := s.inventory.ReserveSeats(ctx, bc.FlightID, bc.Passengers)
	if err != nil {
		return nil, err
	}

	booking := &model.Booking{
		ID:             uuid.New().String(),
		UserID:         userID,
		FlightID:       bc.FlightID,
		ConfirmationID: newConfirmationID(),
		Passengers:     bc.Passengers,
		TotalPrice:     flight.Price * float64(bc.Passengers),
		Status:         model.BookingConfirmed,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		s.cfg.Log.Error("Failed to persist booking, compensating reservation",
			"flight_id", bc.FlightID,
			"passengers", bc.Passengers,
			"error", err,
		)
		if relErr := s.inventory.ReleaseSeats(ctx, bc.FlightID, bc.Passengers); relErr != nil {
			s.cfg.Log.Error("Failed to compensate seat reservation",
				"flight_id", bc.FlightID,
				"passengers", bc.Passengers,
				"error", relErr,
			)
		}
		return nil, apperrors.Internal("Failed to create booking", err)
	}

	s.events.BookingConfirmed(ctx, booking)

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"user_id", userID,
		"flight_id", bc.FlightID,
		"passengers", bc.Passengers,
		"confirmation_id", booking.ConfirmationID,
	)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string, user *model.User) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingerrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	// Owner-only, with no admin bypass. Admins inspect bookings through
	// the per-flight listing instead.
	if booking.UserID != user.ID {
		return nil, apperrors.Forbidden("Booking belongs to another user")
	}

	return booking, nil
}

// ListForUser returns the user's bookings enriched with their flights. A
// flight that can no longer be loaded leaves Flight nil rather than failing
// the whole listing.
func (s *bookingService) ListForUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	bookings, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list bookings", err)
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}

	flights := map[string]*model.Flight{}
	for _, b := range bookings {
		if _, seen := flights[b.FlightID]; !seen {
			flight, ferr := s.inventory.GetByID(ctx, b.FlightID)
			if ferr != nil {
				s.cfg.Log.Warn("Failed to load flight for booking",
					"booking_id", b.ID, "flight_id", b.FlightID, "error", ferr)
			}
			flights[b.FlightID] = flight
		}
		b.Flight = flights[b.FlightID]
	}

	return bookings, nil
}

func (s *bookingService) ListForFlight(ctx context.Context, flightID string, user *model.User) ([]*model.Booking, error) {
	if flightID == "" {
		return nil, apperrors.InvalidInput("Flight ID cannot be empty")
	}

	flight, err := s.inventory.GetByID(ctx, flightID)
	if err != nil {
		return nil, err
	}
	if user.Role != model.RoleAdmin && flight.CompanyID != user.ID {
		return nil, apperrors.Forbidden("Flight belongs to another company")
	}

	bookings, err := s.repo.FindByFlight(ctx, flightID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list flight bookings", err)
	}
	if bookings == nil {
		bookings = []*model.Booking{}
	}
	return bookings, nil
}

// Cancel marks the booking cancelled and restores its seats. The status
// flip happens first and is guarded in the store, so a double cancel can
// never release seats twice.
func (s *bookingService) Cancel(ctx context.Context, id string, user *model.User) error {
	booking, err := s.GetByID(ctx, id, user)
	if err != nil {
		return err
	}
	if booking.Status == model.BookingCancelled {
		return apperrors.Validation("Booking is already cancelled", nil)
	}

	if err := s.repo.MarkCancelled(ctx, id); err != nil {
		switch {
		case errors.Is(err, bookingerrors.ErrNotFound):
			return apperrors.NotFoundWithID("Booking", id)
		case errors.Is(err, bookingerrors.ErrAlreadyCancelled):
			return apperrors.Validation("Booking is already cancelled", nil)
		}
		s.cfg.Log.Error("Failed to cancel booking", "booking_id", id, "error", err)
		return apperrors.Internal("Failed to cancel booking", err)
	}

	// Seat restoration is best effort; the cancellation itself stands even
	// when the flight document is gone or the release fails.
	if err := s.inventory.ReleaseSeats(ctx, booking.FlightID, booking.Passengers); err != nil {
		s.cfg.Log.Warn("Failed to restore seats for cancelled booking",
			"booking_id", id,
			"flight_id", booking.FlightID,
			"passengers", booking.Passengers,
			"error", err,
		)
	}

	booking.Status = model.BookingCancelled
	s.events.BookingCancelled(ctx, booking)

	s.cfg.Log.Info("Booking cancelled",
		"id", id,
		"user_id", booking.UserID,
		"flight_id", booking.FlightID,
		"passengers", booking.Passengers,
	)
	return nil
}

// newConfirmationID builds codes like CNF1A2B3C4D.
func newConfirmationID() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		return "CNF" + strings.ToUpper(uuid.New().String()[:8])
	}
	return "CNF" + strings.ToUpper(hex.EncodeToString(buf))
}
