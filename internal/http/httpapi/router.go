package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"wrapstudio/internal/http/handlers"
	"wrapstudio/internal/middleware"
)

func NewRouter(app *handlers.App, lookup middleware.CountryLookup) http.Handler {
	r := chi.NewRouter()

	// Middlewares dasar
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(*app.Logger),
		middleware.CORS(app.Config.CORSOrigins),
		middleware.I18N(app.Config.DefaultLocale, lookup),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/openapi.json", app.OpenAPIJSON)
	r.Get("/v1/docs", app.OpenAPIDocs)
	r.Get("/v1/catalog", app.Catalog)
	r.Get("/v1/stats/generations", app.GenerationStats)

	r.Route("/v1/studio", func(r chi.Router) {
		r.Use(app.Sessions.LoadAndSave)

		r.Get("/", app.StudioGet)
		r.Delete("/", app.StudioReset)
		r.Put("/model", app.SelectModel)
		r.Put("/theme", app.SelectTheme)
		r.Put("/branding", app.SetBranding)
		r.Put("/branding/{field}", app.SetBrandingField)
		r.Get("/prompt", app.Prompt)
		r.Get("/logo/preview", app.LogoPreview)
		r.Get("/image", app.Image)
		r.Get("/image/download", app.ImageDownload)
		r.Get("/image/bundle", app.ImageBundle)

		// Upload dan generate dibatasi per IP
		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute))
			r.Post("/logo", app.UploadLogo)
			r.Post("/generate", app.Generate)
		})
	})

	return r
}
