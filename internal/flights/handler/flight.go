package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"skybook/internal/flights/service"
	"skybook/pkg/config"
	apperrors "skybook/pkg/errors"
	httputil "skybook/pkg/http"
	"skybook/pkg/logger"
	"skybook/pkg/middleware"
	"skybook/pkg/model"
)

type FlightHandler struct {
	service service.FlightService
	log     *logger.Logger
}

func NewFlightHandler(service service.FlightService, log *logger.Logger) *FlightHandler {
	return &FlightHandler{
		service: service,
		log:     log,
	}
}

// Search handles GET /flights. All filters are optional.
func (h *FlightHandler) Search(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	query := r.URL.Query()

	limit, err := httputil.ExtractLimit(r, config.DefaultSearchLimit, config.MaxSearchLimit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	q := model.FlightSearch{
		Origin:      query.Get("origin"),
		Destination: query.Get("destination"),
		Limit:       limit,
	}
	if dateStr := query.Get("departure_date"); dateStr != "" {
		date, err := time.Parse(time.DateOnly, dateStr)
		if err != nil {
			httputil.WriteError(w, apperrors.InvalidInput("departure_date must be in YYYY-MM-DD format"))
			return
		}
		q.DepartureDate = &date
	}

	flights, err := h.service.Search(r.Context(), q)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteList(w, flights, len(flights))
}

// GetAll handles GET /flights/all and includes every status.
func (h *FlightHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, err := httputil.ExtractLimit(r, config.DefaultListLimit, config.MaxListLimit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	flights, err := h.service.GetAll(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteList(w, flights, len(flights))
}

func (h *FlightHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	flight, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, flight)
}

// GetMine handles GET /flights/my and lists the caller's company flights.
func (h *FlightHandler) GetMine(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	flights, err := h.service.GetByCompany(r.Context(), user.ID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteList(w, flights, len(flights))
}

func (h *FlightHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	var fc model.FlightCreate
	if err := json.NewDecoder(r.Body).Decode(&fc); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	// The carrier is always the authenticated company account.
	fc.CompanyID = user.ID
	fc.CompanyName = user.Name

	flight, err := h.service.Create(r.Context(), &fc)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, flight)
}

func (h *FlightHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	var updates model.FlightUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	flight, err := h.service.Update(r.Context(), ps.ByName("id"), ownershipScope(user), &updates)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, flight)
}

// Delete handles DELETE /flights/:id by cancelling the flight. Inventory
// documents are never removed so existing bookings keep a valid reference.
func (h *FlightHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	if err := h.service.Cancel(r.Context(), ps.ByName("id"), ownershipScope(user)); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteMessage(w, "Flight cancelled successfully")
}

// ownershipScope returns the company ID the operation must match, or an
// empty string for admins, who may act on any flight.
func ownershipScope(user *model.User) string {
	if user.Role == model.RoleAdmin {
		return ""
	}
	return user.ID
}
