package handler

import (
	"encoding/json"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"skybook/internal/users/service"
	"skybook/pkg/config"
	apperrors "skybook/pkg/errors"
	httputil "skybook/pkg/http"
	"skybook/pkg/logger"
	"skybook/pkg/middleware"
	"skybook/pkg/model"
)

// UserHandler serves the admin user-management routes; all of them sit
// behind RequireRole(admin).
type UserHandler struct {
	service service.UserService
	log     *logger.Logger
}

func NewUserHandler(service service.UserService, log *logger.Logger) *UserHandler {
	return &UserHandler{
		service: service,
		log:     log,
	}
}

func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, err := httputil.ExtractLimit(r, config.DefaultListLimit, config.MaxListLimit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	users, err := h.service.GetAll(r.Context(), limit)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteList(w, users, len(users))
}

func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	user, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, user)
}

func (h *UserHandler) Block(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.setBlocked(w, r, ps.ByName("id"), true)
}

func (h *UserHandler) Unblock(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.setBlocked(w, r, ps.ByName("id"), false)
}

func (h *UserHandler) setBlocked(w http.ResponseWriter, r *http.Request, id string, blocked bool) {
	actor, ok := middleware.UserFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	if err := h.service.SetBlocked(r.Context(), id, blocked, actor.ID); err != nil {
		httputil.WriteError(w, err)
		return
	}

	if blocked {
		httputil.WriteMessage(w, "User blocked successfully")
		return
	}
	httputil.WriteMessage(w, "User unblocked successfully")
}

type roleUpdate struct {
	Role model.UserRole `json:"role"`
}

func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var body roleUpdate
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.SetRole(r.Context(), ps.ByName("id"), body.Role); err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteMessage(w, "User role updated successfully")
}
