// Package api provides the HTTP surface of the cache proxy: routing,
// coordinate/extent parsing, compression negotiation, and JSON/binary
// response encoding. Grounded on the teacher's go-chi/chi/v5 router and
// middleware stack (pkg/controlplane/api/router.go) and its RFC 7807
// problem-response helpers. The core packages (internal/layer,
// internal/coord, ...) never import net/http or image codecs; all of
// that lives here.
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/aplbrain/bossphorus/internal/layer"
	"github.com/aplbrain/bossphorus/internal/telemetry/logger"
)

// API holds the dependencies shared by every HTTP handler.
type API struct {
	Manager   layer.Manager
	Registry  *prometheus.Registry
	startedAt time.Time
}

// NewRouter builds the chi router exposing the cutout, channel
// metadata, health, and metrics routes (spec.md §6 / SPEC_FULL.md §6.1).
func NewRouter(mgr layer.Manager, reg *prometheus.Registry) http.Handler {
	a := &API{Manager: mgr, Registry: reg, startedAt: time.Now()}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", a.handleHealthz)
	if reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	r.Route("/v1", func(r chi.Router) {
		r.Get("/collection/{collection}/experiment/{experiment}/channel/{channel}", a.handleChannelMetadata)

		r.Route("/cutout/{collection}/{experiment}/{channel}/{res}/{x}/{y}/{z}", func(r chi.Router) {
			r.Get("/", a.handleGetCutout)
			r.Post("/", a.handlePostCutout)
		})
	})

	return r
}

// requestLogger logs each request's method, path, status, and duration,
// grounded on the teacher's requestLogger middleware — healthcheck
// requests are logged at DEBUG to avoid polluting logs under probing.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := middleware.GetReqID(r.Context())

		lc := logger.NewLogContext(requestID)
		r = r.WithContext(logger.WithContext(r.Context(), lc))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start).String(),
		}
		if r.URL.Path == "/healthz" {
			logger.DebugCtx(r.Context(), "api request completed", args...)
		} else {
			logger.InfoCtx(r.Context(), "api request completed", args...)
		}
	})
}
