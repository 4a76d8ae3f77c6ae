package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"skybook/internal/bookings/service"
	apperrors "skybook/pkg/errors"
	httputil "skybook/pkg/http"
	"skybook/pkg/logger"
	"skybook/pkg/middleware"
	"skybook/pkg/model"
)

type BookingHandler struct {
	service service.BookingService
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		log:     log,
	}
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	var bc model.BookingCreate
	if err := json.NewDecoder(r.Body).Decode(&bc); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	booking, err := h.service.Create(r.Context(), user.ID, &bc)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, booking)
}

// MyBookings handles GET /bookings/my-bookings; each entry carries its
// flight when it can still be loaded.
func (h *BookingHandler) MyBookings(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	bookings, err := h.service.ListForUser(r.Context(), user.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteList(w, bookings, len(bookings))
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"), user)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, booking)
}

func (h *BookingHandler) Cancel(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	if err := h.service.Cancel(r.Context(), ps.ByName("id"), user); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteMessage(w, "Booking cancelled successfully")
}

// FlightBookings handles GET /flights/:id/bookings for the owning company
// and admins.
func (h *BookingHandler) FlightBookings(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	bookings, err := h.service.ListForFlight(r.Context(), ps.ByName("id"), user)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteList(w, bookings, len(bookings))
}
