package middlewares

import (
	"context"
	"encoding/json"
	"net/http"

	"api/internal/helpers"
	"api/internal/models"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate decodes and validates the JSON request body into T, rejecting the
// request with 400 before the handler runs. The decoded body is stored in
// the request context for handlers.CreateHandler to pick up.
func Validate[T any](next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		var body T

		decoder := json.NewDecoder(r.Body)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&body); err != nil {
			helpers.RespondWithError(w, 400, []string{"INVALID_REQUEST_BODY"})
			return
		}

		if err := validate.Struct(body); err != nil {
			codes := validationCodes(err)
			GetLogger(r.Context()).Debug("Request body failed validation", zap.Strings("codes", codes))
			helpers.RespondWithError(w, 400, codes)
			return
		}

		ctx := context.WithValue(r.Context(), models.BodyKey{}, body)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
	return http.HandlerFunc(fn)
}

func validationCodes(err error) []string {
	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return []string{"INVALID_REQUEST_BODY"}
	}

	codes := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		codes = append(codes, "INVALID_FIELD_"+toScreamingSnake(fieldError.Field()))
	}
	return codes
}

func toScreamingSnake(field string) string {
	var out []byte
	for i, c := range field {
		if c >= 'A' && c <= 'Z' && i > 0 {
			out = append(out, '_')
		}
		out = append(out, byte(c))
	}
	result := make([]byte, len(out))
	for i, c := range out {
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		result[i] = c
	}
	return string(result)
}
