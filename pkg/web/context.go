package web

import (
	"context"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/gitgate/gitgate/pkg/config"
)

// NewContextHandler returns a new context middleware.
// This middleware adds the config and logger to the request context.
func NewContextHandler(ctx context.Context) func(http.Handler) http.Handler {
	cfg := config.FromContext(ctx)
	logger := log.FromContext(ctx).WithPrefix("http")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ctx = config.WithContext(ctx, cfg)
			ctx = log.WithContext(ctx, logger.With(
				"method", r.Method,
				"path", r.URL,
				"addr", r.RemoteAddr,
			))
			r = r.WithContext(ctx)

			next.ServeHTTP(w, r)
		})
	}
}
