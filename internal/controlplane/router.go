package controlplane

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/CloudNativeWorks/datalayer-license/internal/logger"
	"github.com/CloudNativeWorks/datalayer-license/internal/middleware"
)

// NewRouter mounts the license handler at "/" and "/license-api/", plus a
// liveness probe and, when gatherer is non-nil, the Prometheus endpoint.
func NewRouter(h *Handler, logg *logger.Logger, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Recoverer(logg),
	)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	if gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	r.Group(func(r chi.Router) {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
		}))
		for _, path := range []string{"/", "/license-api", "/license-api/", "/license-api/index.php"} {
			r.Handle(path, h)
		}
	})

	return r
}
