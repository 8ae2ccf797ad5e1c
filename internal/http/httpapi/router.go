package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/Hashem63YT/salawat-campaign-v2/internal/http/handlers"
	"github.com/Hashem63YT/salawat-campaign-v2/internal/middleware"
)

// Options configures the middleware chain.
type Options struct {
	Logger         zerolog.Logger
	AllowedOrigins []string
	DefaultLocale  string
	CountryLookup  middleware.CountryLookup
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	// Health
	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.APIDocument)
	r.Get("/v1/docs", app.APIDocs)

	r.Route("/api/salawat", func(r chi.Router) {
		r.Get("/", app.SalawatStats)
		r.Post("/", app.SalawatIncrement)
		r.Get("/events", app.SalawatEvents)
	})

	return r
}
