package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"postify/internal/http/handlers"
	"postify/internal/middleware"
)

func NewRouter(app *handlers.App) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(app.Logger),
		middleware.CORS(app.Config.CORSAllowedOrigins),
		middleware.RateLimit(app.Config.RateLimitPerMin, time.Minute),
	)

	r.Get("/", app.Root)
	r.Get("/healthz", app.Health)
	r.Get("/today-holiday", app.TodayHoliday)

	r.Post("/generate-post", app.GeneratePost)
	r.Post("/distribute-holiday-post", app.DistributeHolidayPost)
	r.Get("/distribution-status/{job_id}", app.DistributionStatus)

	r.Route("/holidays", func(r chi.Router) {
		r.Post("/", app.HolidaysCreate)
		r.Get("/", app.HolidaysList)
		r.Delete("/", app.HolidaysDeleteAll)
		// Static segments before the id wildcard.
		r.Get("/date/{date}", app.HolidaysGetByDate)
		r.Get("/{id}", app.HolidaysGet)
		r.Put("/{id}", app.HolidaysUpdate)
		r.Delete("/{id}", app.HolidaysDelete)
		r.Get("/{id}/preview-prompt", app.HolidaysPreviewPrompt)
	})

	r.Route("/subscribers", func(r chi.Router) {
		r.Post("/", app.SubscribersCreate)
		r.Get("/", app.SubscribersList)
		r.Post("/distribute", app.SubscribersDistribute)
		r.Post("/distribute/{id}", app.SubscribersDistributeOne)
		r.Get("/distribution-status/{job_id}", app.DistributionStatus)
		r.Post("/send-festival", app.SubscribersSendFestival)
		r.Get("/{id}", app.SubscribersGet)
		r.Put("/{id}", app.SubscribersUpdate)
		r.Delete("/{id}", app.SubscribersDelete)
	})

	return r
}
