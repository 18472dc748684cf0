package http

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/fernlabs/sessiond/internal/domain"
	"github.com/fernlabs/sessiond/internal/service"
	"github.com/fernlabs/sessiond/pkg/httpx"
)

type contextKey string

const userContextKey contextKey = "sessiond.user"

// AuthnMiddleware authenticates the bearer access token and stores the
// resolved user in the request context. Every credential failure (missing
// header, malformed token, wrong token type, deleted user) answers with the
// same 401; storage faults stay server errors.
func AuthnMiddleware(sessions *service.SessionService) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				httpx.Unauthorized(w, "Could not validate credentials")
				return
			}

			user, err := sessions.Authenticate(r.Context(), token)
			switch {
			case errors.Is(err, service.ErrAuthentication):
				httpx.Unauthorized(w, "Could not validate credentials")
				return
			case err != nil:
				httpx.Error(w, http.StatusInternalServerError, "Internal server error")
				return
			}

			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the authenticated user stored by AuthnMiddleware.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userContextKey).(domain.User)
	return user, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", false
	}
	return header[len(prefix):], true
}
