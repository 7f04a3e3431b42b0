package main

import (
	"errors"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/shadequote/internal/apperr"
	"github.com/Simplici0/shadequote/internal/auth"
	"github.com/Simplici0/shadequote/internal/export"
	"github.com/Simplici0/shadequote/internal/priceconfig"
	"github.com/Simplici0/shadequote/internal/pricing"
)

func (s *server) timestamp() string {
	return s.now().UTC().Format(time.RFC3339)
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body loginPayload
	if err := s.decodeAndValidate(r, &body); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}

	token, err := s.auth.Login(body.Username, body.Password)
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(r.Context(), s.logg, w, apperr.Wrap(apperr.CodeUnauthorized, err, "Invalid username or password"))
		return
	case err != nil:
		writeError(r.Context(), s.logg, w, apperr.Wrap(apperr.CodeInternal, err, "login unavailable"))
		return
	}

	s.auth.SetSessionCookies(w, body.Username, token)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Login successful",
		"user":    map[string]string{"username": body.Username},
	})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.ClearSessionCookies(w)
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out",
	})
}

func (s *server) handleKeepAlive(w http.ResponseWriter, r *http.Request) {
	if err := s.quotes.KeepAlive(r.Context()); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Database connection kept alive",
		"timestamp": s.timestamp(),
	})
}

func (s *server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.config.Load(r.Context())
	if err != nil {
		writeError(r.Context(), s.logg, w, apperr.Wrap(apperr.CodeInternal, err, "could not load configuration"))
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *server) handleSaveConfig(w http.ResponseWriter, r *http.Request) {
	var cfg priceconfig.Config
	if err := decodeJSON(r, &cfg); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}

	if err := s.config.Save(r.Context(), cfg); err != nil {
		var invalid *priceconfig.ValidationError
		if errors.As(err, &invalid) {
			err = apperr.Wrap(apperr.CodeValidation, err, "Invalid configuration").
				WithDetails(map[string]string{invalid.Section: invalid.Reason})
		} else {
			err = apperr.Wrap(apperr.CodeInternal, err, "could not save configuration")
		}
		writeError(r.Context(), s.logg, w, err)
		return
	}

	s.logg.Info(r.Context(), "price configuration saved")
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Configuration saved",
	})
}

func (s *server) handleOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := s.config.Options(r.Context())
	if err != nil {
		writeError(r.Context(), s.logg, w, apperr.Wrap(apperr.CodeInternal, err, "could not load options"))
		return
	}
	writeJSON(w, http.StatusOK, opts)
}

type calculateResponse struct {
	Success   bool              `json:"success"`
	Price     int64             `json:"price"`
	Breakdown pricing.Breakdown `json:"breakdown"`
}

func (s *server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	var body itemPayload
	if err := decodeJSON(r, &body); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}

	res, err := s.quotes.Price(r.Context(), body.draft())
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, calculateResponse{
		Success:   true,
		Price:     res.UnitPrice,
		Breakdown: res.Breakdown,
	})
}

func (s *server) handleCreateQuote(w http.ResponseWriter, r *http.Request) {
	var body quotePayload
	if err := decodeJSON(r, &body); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}

	created, err := s.quotes.Create(r.Context(), body.draft())
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"quoteNumber": created.QuoteNumber,
		"totalPrice":  created.TotalPrice,
		"itemCount":   len(created.Items),
		"itemIds":     created.ItemIDs,
		"timestamp":   s.timestamp(),
	})
}

func (s *server) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := s.quotes.List(r.Context(), page, limit)
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"quotes":      result.Quotes,
		"currentPage": result.CurrentPage,
		"totalPages":  result.TotalPages,
		"totalCount":  result.TotalCount,
		"hasMore":     result.HasMore,
		"timestamp":   s.timestamp(),
	})
}

func (s *server) handleDeleteQuote(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("quoteNumber")
	number, ok := parseQuoteNumber(raw)
	if !ok {
		writeError(r.Context(), s.logg, w, invalidParam("quote number", raw))
		return
	}

	if err := s.quotes.Delete(r.Context(), number); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"message":   "Quote deleted",
		"timestamp": s.timestamp(),
	})
}

func (s *server) handleQuoteItem(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		writeError(r.Context(), s.logg, w, invalidParam("quote id", raw))
		return
	}

	item, err := s.quotes.Item(r.Context(), id)
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *server) handleQuoteByNumber(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "quoteNumber")
	number, ok := parseQuoteNumber(raw)
	if !ok {
		writeError(r.Context(), s.logg, w, invalidParam("quote number", raw))
		return
	}

	items, err := s.quotes.Items(r.Context(), number)
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) handleQuotePDF(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "quoteNumber")
	number, ok := parseQuoteNumber(raw)
	if !ok {
		writeError(r.Context(), s.logg, w, invalidParam("quote number", raw))
		return
	}
	s.writeQuotePDF(w, r, number)
}

func (s *server) handleGeneratePDF(w http.ResponseWriter, r *http.Request) {
	var body quoteNumberPayload
	if err := decodeJSON(r, &body); err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}
	number, ok := quoteNumberFromFloat(float64(body.QuoteNumber))
	if !ok {
		writeError(r.Context(), s.logg, w, invalidParam("quote number", strconv.FormatFloat(float64(body.QuoteNumber), 'f', -1, 64)))
		return
	}
	s.writeQuotePDF(w, r, number)
}

func (s *server) writeQuotePDF(w http.ResponseWriter, r *http.Request, number int64) {
	items, err := s.quotes.Items(r.Context(), number)
	if err != nil {
		writeError(r.Context(), s.logg, w, err)
		return
	}

	doc, err := export.QuotePDF(number, items, s.now())
	if err != nil {
		writeError(r.Context(), s.logg, w, apperr.Wrap(apperr.CodeInternal, err, "could not render quote"))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+export.Filename(number)+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(doc)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

func parseQuoteNumber(raw string) (int64, bool) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

// quoteNumberFromFloat accepts only positive whole numbers that fit in an int64.
func quoteNumberFromFloat(v float64) (int64, bool) {
	if v < 1 || v >= 1<<63 || v != math.Trunc(v) {
		return 0, false
	}
	return int64(v), true
}
