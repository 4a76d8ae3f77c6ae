package middleware

import (
	"net/http"
	"strings"

	"skybook/pkg/logger"
)

func ContentTypeValidation(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requiresBody(r.Method) && r.ContentLength != 0 {
				ct := mediaType(r.Header.Get("Content-Type"))
				if ct != "application/json" {
					log.Warn("Invalid Content-Type header",
						"request_id", RequestIDFrom(r.Context()),
						"content_type", ct,
						"method", r.Method,
						"path", r.URL.Path,
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusUnsupportedMediaType)
					_, _ = w.Write([]byte(`{"error":"Content-Type must be application/json"}`))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requiresBody(method string) bool {
	return method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch
}

func mediaType(header string) string {
	if header == "" {
		return ""
	}
	return strings.TrimSpace(strings.Split(header, ";")[0])
}

func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
