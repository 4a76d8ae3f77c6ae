package api

import (
	"net/http"

	"github.com/julienschmidt/httprouter"

	authhandler "skybook/internal/auth/handler"
	bookinghandler "skybook/internal/bookings/handler"
	flighthandler "skybook/internal/flights/handler"
	userhandler "skybook/internal/users/handler"
	"skybook/pkg/logger"
	"skybook/pkg/middleware"
	"skybook/pkg/model"
)

type Handlers struct {
	Auth     *authhandler.AuthHandler
	Flights  *flighthandler.FlightHandler
	Bookings *bookinghandler.BookingHandler
	Users    *userhandler.UserHandler
	Resolver middleware.UserResolver
}

// NewRouter assembles all API routes. Route-level auth gates live here;
// the outer middleware stack is applied by the application wrapper.
//
// httprouter rejects a static segment next to a wildcard on the same level,
// so the reserved names "all", "my" and "my-bookings" are dispatched inside
// the :id routes.
func NewRouter(h Handlers, log *logger.Logger) *httprouter.Router {
	router := httprouter.New()

	authed := middleware.Authenticate(h.Resolver, log)
	company := middleware.RequireRole(log, model.RoleCompany, model.RoleAdmin)
	admin := middleware.RequireRole(log, model.RoleAdmin)

	// Auth
	router.POST("/auth/register", h.Auth.Register)
	router.POST("/auth/login", h.Auth.Login)
	router.POST("/auth/verify-token", h.Auth.VerifyToken)
	router.GET("/auth/me", authed(h.Auth.Me))

	// Flights. Search, listing and detail are public.
	router.GET("/flights", h.Flights.Search)
	router.GET("/flights/:id", dispatch(h.Flights.GetByID, map[string]httprouter.Handle{
		"all": h.Flights.GetAll,
		"my":  authed(company(h.Flights.GetMine)),
	}))
	router.POST("/flights", authed(company(h.Flights.Create)))
	router.PUT("/flights/:id", authed(company(h.Flights.Update)))
	router.DELETE("/flights/:id", authed(company(h.Flights.Delete)))
	router.GET("/flights/:id/bookings", authed(company(h.Bookings.FlightBookings)))

	// Bookings
	router.POST("/bookings", authed(h.Bookings.Create))
	router.GET("/bookings/:id", authed(dispatch(h.Bookings.GetByID, map[string]httprouter.Handle{
		"my-bookings": h.Bookings.MyBookings,
	})))
	router.DELETE("/bookings/:id", authed(h.Bookings.Cancel))

	// Admin
	router.GET("/admin/users", authed(admin(h.Users.GetAll)))
	router.GET("/admin/users/:id", authed(admin(h.Users.GetByID)))
	router.PUT("/admin/users/:id/block", authed(admin(h.Users.Block)))
	router.PUT("/admin/users/:id/unblock", authed(admin(h.Users.Unblock)))
	router.PUT("/admin/users/:id/role", authed(admin(h.Users.SetRole)))

	return router
}

// dispatch routes reserved :id values to their own handlers and everything
// else to the fallback.
func dispatch(fallback httprouter.Handle, reserved map[string]httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		if handle, ok := reserved[ps.ByName("id")]; ok {
			handle(w, r, ps)
			return
		}
		fallback(w, r, ps)
	}
}
