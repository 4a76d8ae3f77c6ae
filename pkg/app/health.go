package app

import (
	"context"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"skybook/pkg/client"
	httputil "skybook/pkg/http"
	"skybook/pkg/logger"
)

type healthHandler struct {
	client *client.Client
	log    *logger.Logger
}

func newHealthHandler(c *client.Client, log *logger.Logger) *healthHandler {
	return &healthHandler{client: c, log: log}
}

func (h *healthHandler) registerRoutes(router *httprouter.Router) {
	router.GET("/health", h.health)
	router.GET("/ready", h.ready)
}

// health reports process liveness only.
func (h *healthHandler) health(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ready checks the backing stores.
func (h *healthHandler) ready(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := map[string]string{}
	status := http.StatusOK

	if h.client.Mongo != nil {
		if err := h.client.Mongo.Ping(ctx, nil); err != nil {
			h.log.Warn("Readiness check failed for mongo", "error", err)
			checks["mongo"] = "unavailable"
			status = http.StatusServiceUnavailable
		} else {
			checks["mongo"] = "ok"
		}
	}

	if h.client.Redis != nil {
		if err := h.client.Redis.Ping(ctx).Err(); err != nil {
			h.log.Warn("Readiness check failed for redis", "error", err)
			checks["redis"] = "unavailable"
			status = http.StatusServiceUnavailable
		} else {
			checks["redis"] = "ok"
		}
	}

	httputil.WriteJSON(w, status, checks)
}
