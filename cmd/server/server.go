package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"

	"github.com/Simplici0/shadequote/internal/apperr"
	"github.com/Simplici0/shadequote/internal/auth"
	"github.com/Simplici0/shadequote/internal/logger"
	"github.com/Simplici0/shadequote/internal/metrics"
	"github.com/Simplici0/shadequote/internal/priceconfig"
	"github.com/Simplici0/shadequote/internal/quotes"
)

type server struct {
	logg     *logger.Logger
	auth     *auth.Service
	config   *priceconfig.Store
	quotes   *quotes.Service
	metrics  *metrics.Recorder
	exporter http.Handler
	now      func() time.Time

	validate *validator.Validate
}

func (s *server) routes() http.Handler {
	if s.logg == nil {
		s.logg = logger.Nop()
	}
	if s.validate == nil {
		s.validate = apperr.NewValidator()
	}
	if s.now == nil {
		s.now = time.Now
	}

	r := chi.NewRouter()
	r.Use(chimw.RealIP)
	r.Use(requestID(s.logg))
	r.Use(s.observe)
	r.Use(recoverer(s.logg))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if s.exporter != nil {
		r.Handle("/metrics", s.exporter)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(noStore)

		r.Post("/auth/login", s.handleLogin)
		r.Post("/auth/logout", s.handleLogout)
		r.Get("/keep-alive", s.handleKeepAlive)

		r.Group(func(r chi.Router) {
			r.Use(s.requireSession)

			r.Get("/config", s.handleGetConfig)
			r.Post("/config", s.handleSaveConfig)
			r.Get("/options", s.handleOptions)

			r.Post("/quotes/calculate", s.handleCalculate)
			r.Post("/quotes/generate-pdf", s.handleGeneratePDF)
			r.Get("/quotes", s.handleListQuotes)
			r.Post("/quotes", s.handleCreateQuote)
			r.Delete("/quotes", s.handleDeleteQuote)
			r.Get("/quotes/by-number/{quoteNumber}", s.handleQuoteByNumber)
			r.Get("/quotes/by-number/{quoteNumber}/pdf", s.handleQuotePDF)
			r.Get("/quotes/{id}", s.handleQuoteItem)
		})
	})

	return r
}
