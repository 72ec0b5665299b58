package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/domain"
	"github.com/Nicoc39/Proyecto-Backend-2-Nicolas-Carranza/internal/metrics"
	"github.com/go-chi/chi/v5"
)

type contextKey string

const principalKey contextKey = "principal"

// PrincipalMiddleware reads the authenticated principal from the trusted
// X-User-* headers the identity provider sets upstream. There is no
// token validation here; authentication itself is outside this service.
func PrincipalMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := r.Header.Get("X-User-Id")
		if userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		principal := &domain.User{
			ID:        userID,
			Email:     r.Header.Get("X-User-Email"),
			FirstName: r.Header.Get("X-User-Name"),
			Role:      domain.Role(r.Header.Get("X-User-Role")),
		}
		if principal.Role == "" {
			principal.Role = domain.RoleUser
		}

		ctx := context.WithValue(r.Context(), principalKey, principal)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func principalFromContext(ctx context.Context) *domain.User {
	principal, _ := ctx.Value(principalKey).(*domain.User)
	return principal
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// MetricsMiddleware records request counts and latency per route pattern.
func MetricsMiddleware(m *metrics.ServerMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			// The route pattern keeps the label set bounded; raw paths
			// would mint a new series per ticket code.
			pattern := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				pattern = rctx.RoutePattern()
			}
			handler := r.Method + " " + pattern
			m.Requests.WithLabelValues(handler, strconv.Itoa(rec.status)).Inc()
			m.LatencyMS.WithLabelValues(handler).Observe(float64(time.Since(start).Milliseconds()))
		})
	}
}
