package middlewares

import (
	"context"
	"net/http"
	"time"

	"api/internal/models"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Logger injects a request-scoped zap logger into the context and emits one
// access line per request with status and duration.
func Logger(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestLogger := zap.L().With(
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
		)

		ctx := context.WithValue(r.Context(), models.LoggerKey{}, requestLogger)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r.WithContext(ctx))

		requestLogger.Info("Request served",
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	}
	return http.HandlerFunc(fn)
}

// GetLogger returns the request-scoped logger, falling back to the global
// one outside a request.
func GetLogger(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(models.LoggerKey{}).(*zap.Logger); ok {
		return logger
	}
	return zap.L()
}
