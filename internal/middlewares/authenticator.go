package middlewares

import (
	"context"
	"net/http"

	apierrors "api/internal/errors"
	"api/internal/helpers"
	"api/internal/models"
	"api/internal/session"
)

// Authenticate resolves the bearer session token and stores the session in
// the request context. Requests without a valid session are rejected with
// 401; routes mounted outside this middleware stay public.
func Authenticate(sessions *session.Manager) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		fn := func(w http.ResponseWriter, r *http.Request) {
			token, err := helpers.ExtractBearerToken(r.Header.Get("Authorization"))
			if err != nil {
				helpers.RespondWithError(w, 401, []string{apierrors.ErrNotAuthenticated})
				return
			}

			current, found, err := sessions.Current(token)
			if err != nil {
				GetLogger(r.Context()).Error("Failed to resolve session")
				helpers.RespondWithError(w, 500, []string{apierrors.ErrInternal})
				return
			}
			if !found {
				helpers.RespondWithError(w, 401, []string{apierrors.ErrNotAuthenticated})
				return
			}

			ctx := context.WithValue(r.Context(), models.SessionKey{}, current)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
		return http.HandlerFunc(fn)
	}
}

// GetSession returns the authenticated session placed in the context by
// Authenticate. The zero session is returned on public routes.
func GetSession(ctx context.Context) models.Session {
	if s, ok := ctx.Value(models.SessionKey{}).(models.Session); ok {
		return s
	}
	return models.Session{}
}
