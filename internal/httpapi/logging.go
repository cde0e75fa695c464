// Package httpapi stands up the (nominally out-of-scope, per spec.md §1)
// HTTP routers that exercise the S3 and DynamoDB operation layers end to
// end, grounded on interfaces/http/rest/router.go: chi routers, a zap
// logging middleware, go-chi/cors, and SigV4 authentication in front of
// every route (SPEC_FULL.md §6).
package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Logging is a request-logging middleware grounded on
// interfaces/http/rest/middleware/logging.go, generalized from the
// teacher's REST API to the emulator's wire endpoints.
func Logging(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestID", middleware.GetReqID(r.Context())),
			)
		})
	}
}
