package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"verdantcalc/internal/calculator"
	"verdantcalc/internal/handlers"
	"verdantcalc/internal/observability"
)

// NewRouter wires the middleware chain, the calculator endpoints and the
// operational endpoints.
func NewRouter(store *calculator.Store) http.Handler {

	r := chi.NewRouter()

	r.Use(observability.RequestIDMiddleware)
	r.Use(observability.TracingMiddleware)
	r.Use(observability.LoggingMiddleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", handlers.Health)

	r.Handle("/metrics", observability.PrometheusHandler())

	calculator.RegisterRoutes(r, calculator.NewHandler(store))

	return r
}
