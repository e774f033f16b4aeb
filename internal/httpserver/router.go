package httpserver

import (
	"net/http"

	"optiondesk/internal/auth"
	"optiondesk/internal/chain"
	"optiondesk/internal/health"
	"optiondesk/internal/pricing"
	"optiondesk/internal/quotes"

	"github.com/go-chi/chi/v5"
)

type RouterDeps struct {
	AuthHandler    *auth.Handler
	AuthService    *auth.Service
	InternalToken  *auth.InternalToken
	PricingHandler *pricing.Handler
	ChainHandler   *chain.Handler
	QuotesHandler  *quotes.Handler
	HealthHandler  *health.Handler
	RateLimiter    *RateLimiter
}

func NewRouter(d RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				origin = "*"
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Internal-Token")
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Use(RequestLogger)
	r.Use(SecurityHeaders)
	if d.RateLimiter != nil {
		r.Use(d.RateLimiter.Middleware)
	}

	r.Get("/health", d.HealthHandler.Ready)
	r.Get("/health/live", d.HealthHandler.Live)
	r.Group(func(r chi.Router) {
		r.Use(InternalAuth(d.InternalToken))
		r.Get("/health/full", d.HealthHandler.Full)
		r.Get("/metrics", d.HealthHandler.Metrics)
	})

	r.Route("/v1", func(r chi.Router) {
		// token is checked in the handler: browsers cannot set headers on ws
		r.Get("/greeks/ws", d.PricingHandler.WS.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(WithAuth(d.AuthService))
			r.Post("/greeks", d.PricingHandler.Greeks)
			r.Post("/greeks/iv", d.PricingHandler.ImpliedVolatility)
			r.Post("/chain/greeks", d.ChainHandler.Greeks)
			r.Post("/chain/maxpain", d.ChainHandler.MaxPain)
			r.Get("/chain/{symbol}/snapshot", d.ChainHandler.LatestSnapshot)
			r.Post("/quotes/change", d.QuotesHandler.Change)
		})

		r.Group(func(r chi.Router) {
			r.Use(InternalAuth(d.InternalToken))
			r.Post("/internal/tokens", d.AuthHandler.Issue)
			r.Post("/internal/closes", d.QuotesHandler.RecordClose)
		})
	})
	return r
}
