// Package httptransport assembles the public router: the submission API, the
// channel endpoints, health, and metrics.
package httptransport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"fieldcheck/internal/broadcast"
	"fieldcheck/internal/platform/metrics"
	"fieldcheck/internal/platform/middleware"
	submissionhandler "fieldcheck/internal/submission/handler"
)

// NewRouter wires all endpoints. The /ws upgrade route stays outside the
// timeout middleware; everything else runs the full JSON chain.
func NewRouter(
	submissions *submissionhandler.Handler,
	channels *broadcast.Handler,
	logger *slog.Logger,
	m *metrics.Metrics,
) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Latency(m))

	api := chi.NewRouter()
	api.Use(middleware.Timeout(30 * time.Second))
	api.Use(middleware.ContentTypeJSON)
	submissions.Register(api)
	channels.Register(r, api)
	r.Mount("/", api)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}
