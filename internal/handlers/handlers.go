// Package handlers adapts typed service methods into chi HTTP handlers.
// Services return (response, error); the wrappers deal with the request
// context, URL ids, decoded bodies and error translation so the service
// methods stay plain functions.
package handlers

import (
	"errors"
	"net/http"

	apierrors "api/internal/errors"
	"api/internal/helpers"
	m "api/internal/middlewares"
	"api/internal/models"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CreateHandler wraps a service method taking a validated request body. The
// body must have been decoded by the Validate middleware on the same route.
func CreateHandler[B any, R any](
	serviceCall func(logger *zap.Logger, session models.Session, ids uuid.UUIDs, body B) (R, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := m.GetLogger(r.Context())

		body, ok := r.Context().Value(models.BodyKey{}).(B)
		if !ok {
			logger.Error("Request body missing from context, Validate middleware not mounted")
			helpers.RespondWithError(w, 500, []string{apierrors.ErrInternal})
			return
		}

		ids, err := parseURLIDs(r)
		if err != nil {
			helpers.RespondWithError(w, 400, []string{"INVALID_URL_PARAMETER"})
			return
		}

		response, err := serviceCall(logger, m.GetSession(r.Context()), ids, body)
		if err != nil {
			respondWithServiceError(logger, w, err)
			return
		}

		helpers.RespondWithJSON(w, 200, response)
	}
}

// GetHandler wraps a bodyless service method.
func GetHandler[R any](
	serviceCall func(logger *zap.Logger, session models.Session, ids uuid.UUIDs) (R, error),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := m.GetLogger(r.Context())

		ids, err := parseURLIDs(r)
		if err != nil {
			helpers.RespondWithError(w, 400, []string{"INVALID_URL_PARAMETER"})
			return
		}

		response, err := serviceCall(logger, m.GetSession(r.Context()), ids)
		if err != nil {
			respondWithServiceError(logger, w, err)
			return
		}

		helpers.RespondWithJSON(w, 200, response)
	}
}

func respondWithServiceError(logger *zap.Logger, w http.ResponseWriter, err error) {
	var apiError *apierrors.APIError
	if errors.As(err, &apiError) {
		helpers.RespondWithError(w, apiError.Status, []string{apiError.Code})
		return
	}

	logger.Error("Unhandled service error", zap.Error(err))
	helpers.RespondWithError(w, 500, []string{apierrors.ErrInternal})
}

// parseURLIDs collects the uuid path parameters (id0, id1, ...) declared on
// the route, in order.
func parseURLIDs(r *http.Request) (uuid.UUIDs, error) {
	var ids uuid.UUIDs
	for _, name := range []string{"id0", "id1"} {
		raw := chi.URLParam(r, name)
		if raw == "" {
			break
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
