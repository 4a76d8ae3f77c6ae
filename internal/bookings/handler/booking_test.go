package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/julienschmidt/httprouter"

	apperrors "skybook/pkg/errors"
	"skybook/pkg/logger"
	"skybook/pkg/middleware"
	"skybook/pkg/model"
)

// Mock service for testing
type mockBookingService struct {
	createFunc func(ctx context.Context, userID string, bc *model.BookingCreate) (*model.Booking, error)
	cancelFunc func(ctx context.Context, id string, user *model.User) error
}

func (m *mockBookingService) Create(ctx context.Context, userID string, bc *model.BookingCreate) (*model.Booking, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, userID, bc)
	}
	return &model.Booking{ID: "booking-1", UserID: userID}, nil
}

func (m *mockBookingService) GetByID(ctx context.Context, id string, user *model.User) (*model.Booking, error) {
	return &model.Booking{ID: id, UserID: user.ID}, nil
}

func (m *mockBookingService) ListForUser(ctx context.Context, userID string) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *mockBookingService) ListForFlight(ctx context.Context, flightID string, user *model.User) ([]*model.Booking, error) {
	return []*model.Booking{}, nil
}

func (m *mockBookingService) Cancel(ctx context.Context, id string, user *model.User) error {
	if m.cancelFunc != nil {
		return m.cancelFunc(ctx, id, user)
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func authedRequest(method, target, body string) *http.Request {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	user := &model.User{ID: "user-1", Role: model.RoleUser}
	return req.WithContext(middleware.WithUser(req.Context(), user))
}

func TestCreate_Success(t *testing.T) {
	var receivedUserID string
	var receivedCreate *model.BookingCreate
	mock := &mockBookingService{
		createFunc: func(ctx context.Context, userID string, bc *model.BookingCreate) (*model.Booking, error) {
			receivedUserID = userID
			receivedCreate = bc
			return &model.Booking{
				ID:             "booking-1",
				UserID:         userID,
				FlightID:       bc.FlightID,
				ConfirmationID: "CNF12345678",
				Passengers:     bc.Passengers,
				Status:         model.BookingConfirmed,
			}, nil
		},
	}
	handler := NewBookingHandler(mock, testLogger())

	req := authedRequest(http.MethodPost, "/bookings", `{"flight_id":"flight-1","passengers":2}`)
	rec := httptest.NewRecorder()
	handler.Create(rec, req, nil)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if receivedUserID != "user-1" {
		t.Errorf("expected user from context, got %q", receivedUserID)
	}
	if receivedCreate == nil || receivedCreate.FlightID != "flight-1" || receivedCreate.Passengers != 2 {
		t.Errorf("unexpected create payload: %+v", receivedCreate)
	}

	var resp struct {
		Data model.Booking `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Data.ConfirmationID != "CNF12345678" {
		t.Errorf("expected confirmation code in response, got %q", resp.Data.ConfirmationID)
	}
}

func TestCreate_MissingUser(t *testing.T) {
	handler := NewBookingHandler(&mockBookingService{}, testLogger())

	req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(`{"flight_id":"f1","passengers":1}`))
	rec := httptest.NewRecorder()
	handler.Create(rec, req, nil)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCreate_MalformedBody(t *testing.T) {
	handler := NewBookingHandler(&mockBookingService{}, testLogger())

	req := authedRequest(http.MethodPost, "/bookings", `{"flight_id":`)
	rec := httptest.NewRecorder()
	handler.Create(rec, req, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestCreate_ServiceErrorPassedThrough(t *testing.T) {
	mock := &mockBookingService{
		createFunc: func(ctx context.Context, userID string, bc *model.BookingCreate) (*model.Booking, error) {
			return nil, apperrors.Validation("Not enough seats available", nil)
		},
	}
	handler := NewBookingHandler(mock, testLogger())

	req := authedRequest(http.MethodPost, "/bookings", `{"flight_id":"flight-1","passengers":5}`)
	rec := httptest.NewRecorder()
	handler.Create(rec, req, nil)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Not enough seats available") {
		t.Errorf("expected error message in body, got %s", rec.Body.String())
	}
}

func TestCancel_Success(t *testing.T) {
	var cancelledID string
	mock := &mockBookingService{
		cancelFunc: func(ctx context.Context, id string, user *model.User) error {
			cancelledID = id
			return nil
		},
	}
	handler := NewBookingHandler(mock, testLogger())

	req := authedRequest(http.MethodDelete, "/bookings/booking-1", "")
	rec := httptest.NewRecorder()
	handler.Cancel(rec, req, httprouter.Params{{Key: "id", Value: "booking-1"}})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if cancelledID != "booking-1" {
		t.Errorf("expected cancel of booking-1, got %q", cancelledID)
	}
}

func TestCancel_Forbidden(t *testing.T) {
	mock := &mockBookingService{
		cancelFunc: func(ctx context.Context, id string, user *model.User) error {
			return apperrors.Forbidden("Booking belongs to another user")
		},
	}
	handler := NewBookingHandler(mock, testLogger())

	req := authedRequest(http.MethodDelete, "/bookings/booking-1", "")
	rec := httptest.NewRecorder()
	handler.Cancel(rec, req, httprouter.Params{{Key: "id", Value: "booking-1"}})

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}
