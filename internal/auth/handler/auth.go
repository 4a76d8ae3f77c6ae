package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"skybook/internal/auth/service"
	apperrors "skybook/pkg/errors"
	httputil "skybook/pkg/http"
	"skybook/pkg/logger"
	"skybook/pkg/middleware"
	"skybook/pkg/model"
)

type AuthHandler struct {
	service service.AuthService
	log     *logger.Logger
}

func NewAuthHandler(service service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var uc model.UserCreate
	if err := json.NewDecoder(r.Body).Decode(&uc); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	resp, err := h.service.Register(r.Context(), &uc)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteCreated(w, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var lc model.UserLogin
	if err := json.NewDecoder(r.Body).Decode(&lc); err != nil {
		httputil.WriteError(w, apperrors.InvalidInput("Invalid request body"))
		return
	}

	resp, err := h.service.Login(r.Context(), &lc)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, resp)
}

// VerifyToken handles POST /auth/verify-token. The token comes from the
// Authorization header, same as on protected routes.
func (h *AuthHandler) VerifyToken(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	raw := strings.TrimSpace(r.Header.Get("Authorization"))
	tokenString, found := strings.CutPrefix(raw, "Bearer ")
	if !found || tokenString == "" {
		httputil.WriteError(w, apperrors.Unauthorized("Missing bearer token"))
		return
	}

	resp, err := h.service.VerifyToken(r.Context(), tokenString)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteSuccess(w, resp)
}

// Me handles GET /auth/me behind the auth middleware.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := middleware.UserFrom(r.Context())
	if !ok {
		httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
		return
	}

	httputil.WriteSuccess(w, user)
}
