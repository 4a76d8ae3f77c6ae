package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	bookingerrors "skybook/internal/bookings/errors"
	"skybook/internal/events"
	"skybook/pkg/config"
	apperrors "skybook/pkg/errors"
	"skybook/pkg/logger"
	"skybook/pkg/model"
)

// Mock ledger for testing
type mockBookingRepository struct {
	mu       sync.Mutex
	bookings map[string]*model.Booking

	createFunc func(ctx context.Context, booking *model.Booking) error
}

func newMockBookingRepository() *mockBookingRepository {
	return &mockBookingRepository{bookings: map[string]*model.Booking{}}
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		if err := m.createFunc(ctx, booking); err != nil {
			return err
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *booking
	m.bookings[booking.ID] = &copied
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return nil, bookingerrors.ErrNotFound
	}
	copied := *booking
	return &copied, nil
}

func (m *mockBookingRepository) FindByUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Booking
	for _, b := range m.bookings {
		if b.UserID == userID {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockBookingRepository) FindByFlight(ctx context.Context, flightID string) ([]*model.Booking, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.Booking
	for _, b := range m.bookings {
		if b.FlightID == flightID {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (m *mockBookingRepository) MarkCancelled(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	booking, ok := m.bookings[id]
	if !ok {
		return bookingerrors.ErrNotFound
	}
	if booking.Status != model.BookingConfirmed {
		return bookingerrors.ErrAlreadyCancelled
	}
	booking.Status = model.BookingCancelled
	return nil
}

// Mock inventory with the same conditional-decrement semantics the real
// store update has.
type mockInventory struct {
	mu      sync.Mutex
	flights map[string]*model.Flight

	releaseCalls int
}

func newMockInventory(flights ...*model.Flight) *mockInventory {
	inv := &mockInventory{flights: map[string]*model.Flight{}}
	for _, f := range flights {
		inv.flights[f.ID] = f
	}
	return inv
}

func (m *mockInventory) GetByID(ctx context.Context, id string) (*model.Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	flight, ok := m.flights[id]
	if !ok {
		return nil, apperrors.NotFoundWithID("Flight", id)
	}
	copied := *flight
	return &copied, nil
}

func (m *mockInventory) ReserveSeats(ctx context.Context, id string, count int) (*model.Flight, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	flight, ok := m.flights[id]
	if !ok {
		return nil, apperrors.NotFoundWithID("Flight", id)
	}
	if flight.Status != model.FlightScheduled {
		return nil, apperrors.Validation("Flight is not open for booking", nil)
	}
	if flight.AvailableSeats < count {
		return nil, apperrors.Validation("Not enough seats available",
			map[string]any{"seats_remaining": flight.AvailableSeats})
	}
	snapshot := *flight
	flight.AvailableSeats -= count
	return &snapshot, nil
}

func (m *mockInventory) ReleaseSeats(ctx context.Context, id string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.releaseCalls++
	flight, ok := m.flights[id]
	if !ok {
		return apperrors.NotFoundWithID("Flight", id)
	}
	flight.AvailableSeats += count
	return nil
}

func (m *mockInventory) seats(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flights[id].AvailableSeats
}

func newTestService(repo *mockBookingRepository, inv *mockInventory) *bookingService {
	log := logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})

	svc := NewBookingService(repo, inv, events.NewPublisher(nil, nil, log), &config.Config{Log: log})
	return svc.(*bookingService)
}

func testFlight(seats int) *model.Flight {
	return &model.Flight{
		ID:             "flight-1",
		CompanyID:      "company-1",
		Status:         model.FlightScheduled,
		Price:          120.50,
		AvailableSeats: seats,
		TotalSeats:     seats,
	}
}

func TestCreate_CapturesPriceAndConfirmation(t *testing.T) {
	inv := newMockInventory(testFlight(10))
	svc := newTestService(newMockBookingRepository(), inv)

	booking, err := svc.Create(context.Background(), "user-1", &model.BookingCreate{
		FlightID:   "flight-1",
		Passengers: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != model.BookingConfirmed {
		t.Errorf("expected status confirmed, got %q", booking.Status)
	}
	if booking.TotalPrice != 120.50*3 {
		t.Errorf("expected total price %v, got %v", 120.50*3, booking.TotalPrice)
	}
	if !strings.HasPrefix(booking.ConfirmationID, "CNF") || len(booking.ConfirmationID) != 11 {
		t.Errorf("unexpected confirmation code %q", booking.ConfirmationID)
	}
	if got := inv.seats("flight-1"); got != 7 {
		t.Errorf("expected 7 seats remaining, got %d", got)
	}
}

func TestCreate_ConcurrentBookingsNeverOversell(t *testing.T) {
	inv := newMockInventory(testFlight(1))
	svc := newTestService(newMockBookingRepository(), inv)

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Create(context.Background(), "user-1", &model.BookingCreate{
				FlightID:   "flight-1",
				Passengers: 1,
			})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
		}
	}

	if succeeded != 1 {
		t.Errorf("expected exactly 1 booking to succeed, got %d", succeeded)
	}
	if got := inv.seats("flight-1"); got != 0 {
		t.Errorf("expected 0 seats remaining, got %d", got)
	}
}

func TestCreate_LedgerFailureCompensatesSeats(t *testing.T) {
	inv := newMockInventory(testFlight(5))
	repo := newMockBookingRepository()
	repo.createFunc = func(ctx context.Context, booking *model.Booking) error {
		return errors.New("write failed")
	}
	svc := newTestService(repo, inv)

	_, err := svc.Create(context.Background(), "user-1", &model.BookingCreate{
		FlightID:   "flight-1",
		Passengers: 2,
	})
	if err == nil {
		t.Fatal("expected error from failed ledger write")
	}
	if got := inv.seats("flight-1"); got != 5 {
		t.Errorf("expected reservation compensated back to 5 seats, got %d", got)
	}
}

func TestCreate_InsufficientSeats(t *testing.T) {
	inv := newMockInventory(testFlight(2))
	svc := newTestService(newMockBookingRepository(), inv)

	_, err := svc.Create(context.Background(), "user-1", &model.BookingCreate{
		FlightID:   "flight-1",
		Passengers: 3,
	})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.StatusCode() != 400 {
		t.Fatalf("expected 400, got %v", err)
	}
	if got := inv.seats("flight-1"); got != 2 {
		t.Errorf("expected seats untouched at 2, got %d", got)
	}
}

func TestCancel_RestoresSeats(t *testing.T) {
	inv := newMockInventory(testFlight(100))
	svc := newTestService(newMockBookingRepository(), inv)
	user := &model.User{ID: "user-1", Role: model.RoleUser}

	booking, err := svc.Create(context.Background(), "user-1", &model.BookingCreate{
		FlightID:   "flight-1",
		Passengers: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := inv.seats("flight-1"); got != 97 {
		t.Fatalf("expected 97 seats after booking, got %d", got)
	}

	if err := svc.Cancel(context.Background(), booking.ID, user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := inv.seats("flight-1"); got != 100 {
		t.Errorf("expected 100 seats after cancel, got %d", got)
	}

	stored, err := svc.GetByID(context.Background(), booking.ID, user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Status != model.BookingCancelled {
		t.Errorf("expected status cancelled, got %q", stored.Status)
	}
}

func TestCancel_AlreadyCancelledLeavesSeatsAlone(t *testing.T) {
	inv := newMockInventory(testFlight(10))
	svc := newTestService(newMockBookingRepository(), inv)
	user := &model.User{ID: "user-1", Role: model.RoleUser}

	booking, err := svc.Create(context.Background(), "user-1", &model.BookingCreate{
		FlightID:   "flight-1",
		Passengers: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.Cancel(context.Background(), booking.ID, user); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	releasesAfterFirst := inv.releaseCalls

	err = svc.Cancel(context.Background(), booking.ID, user)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.StatusCode() != 400 {
		t.Fatalf("expected 400 for double cancel, got %v", err)
	}
	if inv.releaseCalls != releasesAfterFirst {
		t.Error("expected no additional seat release on double cancel")
	}
	if got := inv.seats("flight-1"); got != 10 {
		t.Errorf("expected seats back at 10, got %d", got)
	}
}

func TestCancel_WrongOwnerForbidden(t *testing.T) {
	inv := newMockInventory(testFlight(10))
	svc := newTestService(newMockBookingRepository(), inv)

	booking, err := svc.Create(context.Background(), "user-1", &model.BookingCreate{
		FlightID:   "flight-1",
		Passengers: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stranger := &model.User{ID: "user-2", Role: model.RoleUser}
	err = svc.Cancel(context.Background(), booking.ID, stranger)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.StatusCode() != 403 {
		t.Fatalf("expected 403, got %v", err)
	}
	if got := inv.seats("flight-1"); got != 9 {
		t.Errorf("expected seats unchanged at 9, got %d", got)
	}
}

func TestCancel_MissingFlightStillCancels(t *testing.T) {
	inv := newMockInventory(testFlight(10))
	repo := newMockBookingRepository()
	svc := newTestService(repo, inv)
	user := &model.User{ID: "user-1", Role: model.RoleUser}

	booking, err := svc.Create(context.Background(), "user-1", &model.BookingCreate{
		FlightID:   "flight-1",
		Passengers: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Simulate the flight document disappearing before the cancel.
	inv.mu.Lock()
	delete(inv.flights, "flight-1")
	inv.mu.Unlock()

	if err := svc.Cancel(context.Background(), booking.ID, user); err != nil {
		t.Fatalf("expected cancel to succeed without the flight, got %v", err)
	}

	stored, err := svc.GetByID(context.Background(), booking.ID, user)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Status != model.BookingCancelled {
		t.Errorf("expected status cancelled, got %q", stored.Status)
	}
}

func TestGetByID_OwnerOnly(t *testing.T) {
	inv := newMockInventory(testFlight(10))
	svc := newTestService(newMockBookingRepository(), inv)

	booking, err := svc.Create(context.Background(), "user-1", &model.BookingCreate{
		FlightID:   "flight-1",
		Passengers: 1,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	owner := &model.User{ID: "user-1", Role: model.RoleUser}
	if _, err := svc.GetByID(context.Background(), booking.ID, owner); err != nil {
		t.Errorf("expected owner access, got %v", err)
	}

	for _, other := range []*model.User{
		{ID: "user-2", Role: model.RoleUser},
		{ID: "admin-1", Role: model.RoleAdmin},
	} {
		_, err = svc.GetByID(context.Background(), booking.ID, other)
		appErr := apperrors.AsAppError(err)
		if appErr == nil || appErr.StatusCode() != 403 {
			t.Errorf("expected 403 for %s, got %v", other.Role, err)
		}
	}
}

func TestCancel_AdminCannotCancelForeignBooking(t *testing.T) {
	inv := newMockInventory(testFlight(10))
	repo := newMockBookingRepository()
	svc := newTestService(repo, inv)

	booking, err := svc.Create(context.Background(), "user-1", &model.BookingCreate{
		FlightID:   "flight-1",
		Passengers: 2,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	admin := &model.User{ID: "admin-1", Role: model.RoleAdmin}
	err = svc.Cancel(context.Background(), booking.ID, admin)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.StatusCode() != 403 {
		t.Fatalf("expected 403 for admin cancelling a foreign booking, got %v", err)
	}

	stored, err := repo.FindByID(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Status != model.BookingConfirmed {
		t.Errorf("expected booking to stay confirmed, got %s", stored.Status)
	}
	if got := inv.seats("flight-1"); got != 8 {
		t.Errorf("expected seats unchanged at 8, got %d", got)
	}
}

func TestListForUser_EnrichesWithFlight(t *testing.T) {
	inv := newMockInventory(testFlight(10))
	svc := newTestService(newMockBookingRepository(), inv)

	if _, err := svc.Create(context.Background(), "user-1", &model.BookingCreate{
		FlightID:   "flight-1",
		Passengers: 1,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bookings, err := svc.ListForUser(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookings) != 1 {
		t.Fatalf("expected 1 booking, got %d", len(bookings))
	}
	if bookings[0].Flight == nil || bookings[0].Flight.ID != "flight-1" {
		t.Error("expected booking enriched with its flight")
	}
}

func TestListForFlight_CompanyGate(t *testing.T) {
	inv := newMockInventory(testFlight(10))
	svc := newTestService(newMockBookingRepository(), inv)

	if _, err := svc.Create(context.Background(), "user-1", &model.BookingCreate{
		FlightID:   "flight-1",
		Passengers: 1,
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	owner := &model.User{ID: "company-1", Role: model.RoleCompany}
	bookings, err := svc.ListForFlight(context.Background(), "flight-1", owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bookings) != 1 {
		t.Errorf("expected 1 booking, got %d", len(bookings))
	}

	other := &model.User{ID: "company-2", Role: model.RoleCompany}
	_, err = svc.ListForFlight(context.Background(), "flight-1", other)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.StatusCode() != 403 {
		t.Errorf("expected 403 for other company, got %v", err)
	}
}
