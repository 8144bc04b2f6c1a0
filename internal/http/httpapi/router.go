package httpapi

import (
	stdhttp "net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"ngoledger/internal/http/handlers"
	"ngoledger/internal/infra"
	"ngoledger/internal/middleware"
)

// Options tunes the cross-cutting middleware.
type Options struct {
	Logger         infra.Logger
	AllowedOrigins []string
	// LoginPerMinute caps login attempts per client IP; zero disables it.
	LoginPerMinute int
}

func NewRouter(app *handlers.App, opts Options) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		middleware.Logger(opts.Logger),
		middleware.CORS(opts.AllowedOrigins),
		middleware.TokenAuth(app.Users, &opts.Logger),
	)

	// Health
	r.Get("/v1/healthz", app.Health)

	r.Route("/api", func(r chi.Router) {
		r.Route("/users", func(r chi.Router) {
			r.Post("/register/", app.Register)
			r.With(middleware.RateLimit(opts.LoginPerMinute, time.Minute)).Post("/login/", app.Login)
		})

		r.Route("/ngos", func(r chi.Router) {
			r.Get("/", app.ListNGOs)
			r.Get("/{id}/", app.NGODetail)
			r.Get("/{id}/incoming/", app.Incoming)
			r.Get("/{id}/outgoing/", app.Outgoing)
			r.With(middleware.RequireUser).Post("/{id}/outgoing/", app.AddOutgoing)
			r.With(middleware.RequireUser).Get("/admin/ngo/", app.AdminNGO)
			r.With(middleware.RequireUser).Put("/admin/ngo/{id}/", app.UpdateNGO)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/list/", app.ListTransactions)
			r.Get("/{id}/", app.TransactionDetail)
			r.With(middleware.RequireUser).Post("/create-order/{ngoId}/", app.CreateOrder)
			r.With(middleware.RequireUser).Post("/payment/verify/", app.VerifyPayment)
		})
	})

	return r
}
