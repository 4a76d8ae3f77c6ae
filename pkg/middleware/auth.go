package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	apperrors "skybook/pkg/errors"
	httputil "skybook/pkg/http"
	"skybook/pkg/logger"
	"skybook/pkg/model"
)

const userKey contextKey = "auth_user"

// UserResolver turns a bearer token into the authenticated user. The
// implementation rejects blocked accounts, so every authenticated route
// inherits that check.
type UserResolver interface {
	ResolveToken(ctx context.Context, token string) (*model.User, error)
}

// UserFrom returns the authenticated user stored by Authenticate.
func UserFrom(ctx context.Context) (*model.User, bool) {
	u, ok := ctx.Value(userKey).(*model.User)
	return u, ok
}

// WithUser returns a context carrying the authenticated user.
func WithUser(ctx context.Context, user *model.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// Authenticate wraps a route with bearer-token authentication.
func Authenticate(resolver UserResolver, log *logger.Logger) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			raw := bearerToken(r)
			if raw == "" {
				httputil.WriteError(w, apperrors.Unauthorized("Missing or malformed Authorization header"))
				return
			}

			user, err := resolver.ResolveToken(r.Context(), raw)
			if err != nil {
				log.Warn("Authentication failed",
					"request_id", RequestIDFrom(r.Context()),
					"path", r.URL.Path,
					"error", err,
				)
				httputil.WriteError(w, err)
				return
			}

			next(w, r.WithContext(WithUser(r.Context(), user)), ps)
		}
	}
}

// RequireRole gates an already-authenticated route to the given roles.
func RequireRole(log *logger.Logger, roles ...model.UserRole) func(httprouter.Handle) httprouter.Handle {
	return func(next httprouter.Handle) httprouter.Handle {
		return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
			user, ok := UserFrom(r.Context())
			if !ok {
				httputil.WriteError(w, apperrors.Unauthorized("Authentication required"))
				return
			}

			for _, role := range roles {
				if user.Role == role {
					next(w, r, ps)
					return
				}
			}

			log.Warn("Role check failed",
				"request_id", RequestIDFrom(r.Context()),
				"user_id", user.ID,
				"role", user.Role,
				"path", r.URL.Path,
			)
			httputil.WriteError(w, apperrors.Forbidden("Access denied"))
		}
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
