package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/bossnova23/shopify-tracker/internal/metrics"
	"github.com/bossnova23/shopify-tracker/internal/theme"
	"github.com/bossnova23/shopify-tracker/internal/tracker"
)

type Services struct {
	DB      Pinger
	Themes  *theme.Service
	Tracker *tracker.Service
}

func NewRouter(s Services) http.Handler {
	homeHandler := NewHomeHandler(s.DB)
	themeHandler := NewThemeHandler(s.Themes)
	storeHandler := NewStoreHandler(s.Tracker)
	productHandler := NewProductHandler(s.Tracker)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)

	// Home
	r.Get("/", homeHandler.Index)
	r.Get("/healthz", homeHandler.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		// Themes
		r.Post("/generate-theme", themeHandler.Generate)
		r.Get("/themes", themeHandler.List)

		// Tracker
		r.Post("/track-product", productHandler.Track)
		r.Get("/product-data", productHandler.Data)
		r.Get("/store-data", storeHandler.Data)
	})

	return r
}
