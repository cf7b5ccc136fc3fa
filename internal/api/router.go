package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MikeSquared-Agency/Topsis/internal/config"
	"github.com/MikeSquared-Agency/Topsis/internal/events"
	"github.com/MikeSquared-Agency/Topsis/internal/mailer"
	"github.com/MikeSquared-Agency/Topsis/internal/metrics"
	"github.com/MikeSquared-Agency/Topsis/internal/results"
	"github.com/MikeSquared-Agency/Topsis/internal/store"
)

// Deps wires the router. Mailer, Store and Events may be nil.
type Deps struct {
	Config  *config.Config
	Results *results.Store
	Mailer  mailer.Sender
	Store   store.Store
	Events  events.Publisher
	Metrics *metrics.Metrics
	Logger  *slog.Logger
}

func NewRouter(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.RequestID)
	r.Use(RequestLogger(d.Logger))
	r.Use(d.Metrics.Middleware)

	uploads := NewUploadHandler(d)
	files := NewFilesHandler(d.Results, d.Logger)
	runs := NewRunsHandler(d.Store)

	r.Get("/", indexHandler)
	r.Handle("/static/*", staticHandler(d.Config.Server.StaticDir))

	r.Route("/api", func(r chi.Router) {
		r.With(RateLimitMiddleware(d.Config.Server.RatePerMinute)).Post("/upload", uploads.Upload)
		r.Get("/download/{filename}", files.Download)
		r.Get("/example", files.Example)

		r.Group(func(r chi.Router) {
			r.Use(AdminAuthMiddleware(d.Config.Server.AdminToken))
			r.Get("/runs", runs.List)
			r.Get("/runs/{id}", runs.Get)
		})
	})

	return r
}

func NewMetricsRouter(g prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
	return r
}
