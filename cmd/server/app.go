package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/facturacr/facturacr/internal/handlers"
	"github.com/facturacr/facturacr/internal/httpx"
	"github.com/facturacr/facturacr/internal/ledger"
	"github.com/facturacr/facturacr/internal/storage"
)

// App wires the persistence gateway into the HTTP handlers.
type App struct {
	router chi.Router
}

// NewApp creates the application with all routes configured.
func NewApp(store storage.Store, log zerolog.Logger) *App {
	l := ledger.New(store, log)

	products := handlers.NewProductHandler(store)
	customers := handlers.NewCustomerHandler(store)
	invoices := handlers.NewInvoiceHandler(store, l)
	expenses := handlers.NewExpenseHandler(store)
	settings := handlers.NewSettingsHandler(store)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", products.List)
		r.Post("/", products.Create)
		r.Put("/{id}", products.Update)
		r.Delete("/{id}", products.Delete)
		r.Get("/{id}/price", products.Quote)
	})

	r.Route("/customers", func(r chi.Router) {
		r.Get("/", customers.List)
		r.Post("/", customers.Create)
	})

	r.Route("/invoices", func(r chi.Router) {
		r.Get("/", invoices.List)
		r.Post("/", invoices.Create)
		r.Get("/{id}", invoices.Get)
		r.Post("/{id}/cancel", invoices.Cancel)
	})

	r.Route("/expenses", func(r chi.Router) {
		r.Get("/", expenses.List)
		r.Post("/", expenses.Create)
		r.Delete("/{id}", expenses.Delete)
	})

	r.Route("/settings", func(r chi.Router) {
		r.Get("/", settings.Get)
		r.Put("/", settings.Save)
	})

	return &App{router: r}
}

// Router returns the configured HTTP handler.
func (a *App) Router() http.Handler {
	return a.router
}

// requestLogger logs one line per request with method, path, status and
// duration.
func requestLogger(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("duration", time.Since(start)).
				Str("request_id", middleware.GetReqID(r.Context())).
				Msg("request")
		})
	}
}
