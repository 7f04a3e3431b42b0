package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/shadequote/internal/auth"
	"github.com/Simplici0/shadequote/internal/db"
	"github.com/Simplici0/shadequote/internal/logger"
	"github.com/Simplici0/shadequote/internal/metrics"
	"github.com/Simplici0/shadequote/internal/migrations"
	"github.com/Simplici0/shadequote/internal/priceconfig"
	"github.com/Simplici0/shadequote/internal/pricing"
	"github.com/Simplici0/shadequote/internal/quotes"
)

const (
	testUser     = "admin"
	testPassword = "correct horse"
)

type testEnv struct {
	handler http.Handler
	store   *priceconfig.Store
	session *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	ctx := context.Background()
	database, err := db.Open(ctx, filepath.Join(t.TempDir(), "server.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	require.NoError(t, migrations.Up(ctx, database))

	authService, err := auth.NewService(auth.Options{
		Username: testUser,
		Password: testPassword,
		Secret:   "test-secret",
		TTL:      time.Hour,
	})
	require.NoError(t, err)

	store := priceconfig.NewStore(database)
	cfg := priceconfig.Default()
	cfg.Discount = priceconfig.Table{{Name: "Discount", Price: 50}}
	cfg.ValanceColorPrices = priceconfig.Table{{Name: "White", Price: 10}}
	cfg.ControlPrices = priceconfig.Table{{Name: "cordless", Price: 5}}
	require.NoError(t, store.Save(ctx, cfg))

	reg := prometheus.NewRegistry()
	recorder := metrics.New(reg)
	logg := logger.Nop()

	srv := &server{
		logg:     logg,
		auth:     authService,
		config:   store,
		quotes:   quotes.NewService(quotes.NewRepository(database), pricing.NewEngine(store), recorder, logg),
		metrics:  recorder,
		exporter: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
		now:      func() time.Time { return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC) },
	}

	token, err := authService.Login(testUser, testPassword)
	require.NoError(t, err)

	return &testEnv{
		handler: srv.routes(),
		store:   store,
		session: &http.Cookie{Name: auth.SessionCookieName, Value: token},
	}
}

func (e *testEnv) do(t *testing.T, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		req.AddCookie(e.session)
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

type errorBody struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/config", "/api/options", "/api/quotes", "/api/quotes/1", "/api/quotes/by-number/10001"} {
		rec := env.do(t, http.MethodGet, path, nil, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
		assert.Equal(t, "UNAUTHORIZED", decodeBody[errorBody](t, rec).Error.Code, path)
	}

	rec := env.do(t, http.MethodGet, "/api/options", nil, false)
	assert.Contains(t, rec.Header().Get("Cache-Control"), "no-store")
	assert.Equal(t, "no-cache", rec.Header().Get("Pragma"))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	forged := httptest.NewRequest(http.MethodGet, "/api/options", nil)
	forged.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: "not-a-token"})
	forgedRec := httptest.NewRecorder()
	env.handler.ServeHTTP(forgedRec, forged)
	assert.Equal(t, http.StatusUnauthorized, forgedRec.Code)
}

func TestPublicRoutes(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/healthz", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/keep-alive", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "2025-03-14T09:30:00Z", body["timestamp"])
}

func TestLoginFlow(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": testUser, "password": "nope"}, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid username or password", decodeBody[errorBody](t, rec).Error.Message)

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": testUser}, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, map[string]string{"password": "is required"}, decodeBody[errorBody](t, rec).Error.Details)

	rec = env.do(t, http.MethodPost, "/api/auth/login", map[string]string{"username": testUser, "password": testPassword}, false)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, map[string]any{"username": testUser}, body["user"])

	var session *http.Cookie
	names := map[string]bool{}
	for _, c := range rec.Result().Cookies() {
		names[c.Name] = true
		if c.Name == auth.SessionCookieName {
			session = c
		}
	}
	assert.True(t, names[auth.UserInfoCookieName])
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/api/options", nil)
	req.AddCookie(session)
	optsRec := httptest.NewRecorder()
	env.handler.ServeHTTP(optsRec, req)
	assert.Equal(t, http.StatusOK, optsRec.Code)

	rec = env.do(t, http.MethodPost, "/api/auth/logout", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	for _, c := range rec.Result().Cookies() {
		assert.Equal(t, -1, c.MaxAge, c.Name)
	}
}

func TestConfigEndpoints(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/config", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), `{"discount":{"Discount":50},"productPrices":{`), rec.Body.String())

	rec = env.do(t, http.MethodPost, "/api/config", `{"discount":{"Discount":30},"productPrices":{},"valancePrices":{},"valanceColorPrices":{},"bottomRailPrices":{}}`, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeBody[errorBody](t, rec).Error.Details, "controlPrices")

	rec = env.do(t, http.MethodPost, "/api/config", `{"discount":{"Discount":"30"},"productPrices":{"Roller Shades":0},"valancePrices":{},"valanceColorPrices":{"Gray":4},"bottomRailPrices":{},"controlPrices":{"bead chain":20}}`, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/options", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	opts := decodeBody[map[string][]string](t, rec)
	assert.Equal(t, []string{"Roller Shades"}, opts["products"])
	assert.Equal(t, []string{"Gray"}, opts["valanceColors"])

	// the next calculation sees the new discount without a restart
	rec = env.do(t, http.MethodPost, "/api/quotes/calculate", map[string]any{
		"product": "Roller Shades", "valance": "V2", "valance_color": "Gray", "bottom_rail": "None",
		"control": "bead chain", "fabric": "Blackout", "fabric_price": 100, "width_m": 1, "height_m": 1, "quantity": 1,
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	// 100 * 0.30 + 4 + 20
	assert.Equal(t, float64(54), decodeBody[map[string]any](t, rec)["price"])
}

func TestConfigSavedEmptyIsKept(t *testing.T) {
	env := newTestEnv(t)
	empty := `{"discount":{},"productPrices":{},"valancePrices":{},"valanceColorPrices":{},"bottomRailPrices":{},"controlPrices":{}}`

	rec := env.do(t, http.MethodPost, "/api/config", empty, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = env.do(t, http.MethodGet, "/api/config", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, empty, rec.Body.String())

	// no discount and no surcharges once everything is cleared
	rec = env.do(t, http.MethodPost, "/api/quotes/calculate", calcBody(), true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(0), decodeBody[calculateResponse](t, rec).Price)
}

func calcBody() map[string]any {
	return map[string]any{
		"product":       "Roller Shades",
		"valance":       "V2",
		"valance_color": "White",
		"bottom_rail":   "Type A",
		"control":       "cordless",
		"fabric":        "Blackout",
		"fabric_price":  "100",
		"width_m":       "2",
		"height_m":      "1",
		"quantity":      "3",
	}
}

func TestCalculate(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/quotes/calculate", calcBody(), true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decodeBody[calculateResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, int64(125), resp.Price)
	assert.Equal(t, 2.0, resp.Breakdown.BillableArea)
	assert.Equal(t, 0.5, resp.Breakdown.DiscountMultiplier)

	missing := calcBody()
	delete(missing, "width_m")
	rec = env.do(t, http.MethodPost, "/api/quotes/calculate", missing, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	errResp := decodeBody[errorBody](t, rec)
	assert.Equal(t, "Missing dimension data: need either inch data or meter data", errResp.Error.Message)
	assert.Contains(t, errResp.Error.Details, "width")

	garbled := calcBody()
	garbled["width_m"] = "abc"
	rec = env.do(t, http.MethodPost, "/api/quotes/calculate", garbled, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	noProduct := calcBody()
	delete(noProduct, "product")
	noProduct["quantity"] = 0
	rec = env.do(t, http.MethodPost, "/api/quotes/calculate", noProduct, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	details := decodeBody[errorBody](t, rec).Error.Details
	assert.Contains(t, details, "product")
	assert.Contains(t, details, "quantity")

	rec = env.do(t, http.MethodPost, "/api/quotes/calculate", "{not json", true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuoteLifecycle(t *testing.T) {
	env := newTestEnv(t)

	first := calcBody()
	first["unitPrice"] = 1
	first["totalPrice"] = 3
	second := calcBody()
	second["width_m"] = ""
	second["height_m"] = nil
	second["width_inch"] = 19.685
	second["height_inch"] = "19.685"
	second["quantity"] = 1
	second["location"] = "Bedroom"

	rec := env.do(t, http.MethodPost, "/api/quotes", map[string]any{
		"customer_name": "Ana Ruiz",
		"phone":         "555-0100",
		"location":      "Kitchen",
		"items":         []any{first, second},
	}, true)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decodeBody[map[string]any](t, rec)
	assert.Equal(t, float64(quotes.FirstQuoteNumber), created["quoteNumber"])
	assert.Equal(t, float64(375+65), created["totalPrice"])
	assert.Equal(t, float64(2), created["itemCount"])

	rec = env.do(t, http.MethodPost, "/api/quotes", calcBody(), true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(quotes.FirstQuoteNumber+1), decodeBody[map[string]any](t, rec)["quoteNumber"])

	rec = env.do(t, http.MethodGet, "/api/quotes?page=1&limit=1", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decodeBody[struct {
		Quotes      []quotes.Summary `json:"quotes"`
		CurrentPage int              `json:"currentPage"`
		TotalPages  int              `json:"totalPages"`
		HasMore     bool             `json:"hasMore"`
	}](t, rec)
	require.Len(t, page.Quotes, 1)
	assert.Equal(t, quotes.FirstQuoteNumber+1, page.Quotes[0].QuoteNumber)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasMore)

	rec = env.do(t, http.MethodGet, "/api/quotes/by-number/10001", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	items := decodeBody[[]quotes.Item](t, rec)
	require.Len(t, items, 2)
	assert.Equal(t, "Kitchen", items[0].Location)
	assert.Equal(t, "Bedroom", items[1].Location)
	assert.Equal(t, int64(125), items[0].UnitPrice)
	assert.Equal(t, "Ana Ruiz", items[1].Name)

	rec = env.do(t, http.MethodGet, "/api/quotes/"+jsonNumber(items[1].ID), nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(65), decodeBody[quotes.Item](t, rec).UnitPrice)

	rec = env.do(t, http.MethodGet, "/api/quotes/abc", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(t, http.MethodGet, "/api/quotes/by-number/424242", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodDelete, "/api/quotes?quoteNumber=nope", nil, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/quotes?quoteNumber=10001", nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = env.do(t, http.MethodDelete, "/api/quotes?quoteNumber=10001", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateQuoteRejectsInvalidItems(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/quotes", map[string]any{"items": []any{}}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad := calcBody()
	delete(bad, "fabric")
	rec = env.do(t, http.MethodPost, "/api/quotes", map[string]any{"items": []any{calcBody(), bad}}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.True(t, strings.HasPrefix(decodeBody[errorBody](t, rec).Error.Message, "Item 2: "))

	rec = env.do(t, http.MethodGet, "/api/quotes", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(0), decodeBody[map[string]any](t, rec)["totalCount"])
}

func TestQuotePDF(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodPost, "/api/quotes", calcBody(), true)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodGet, "/api/quotes/by-number/10001/pdf", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Quote_10001.pdf"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	rec = env.do(t, http.MethodPost, "/api/quotes/generate-pdf", `{"quoteNumber":"10001"}`, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))

	for _, bad := range []string{`{"quoteNumber":0}`, `{"quoteNumber":10001.5}`, `{"quoteNumber":1e19}`, `{"quoteNumber":"9223372036854775808"}`} {
		rec = env.do(t, http.MethodPost, "/api/quotes/generate-pdf", bad, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code, bad)
	}
	rec = env.do(t, http.MethodPost, "/api/quotes/generate-pdf", `{"quoteNumber":55555}`, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsUseRoutePatterns(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/api/quotes/by-number/424242", nil, true)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = env.do(t, http.MethodGet, "/metrics", nil, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `route="/api/quotes/by-number/{quoteNumber}"`)
	assert.NotContains(t, rec.Body.String(), "424242")
}

func jsonNumber(v int64) string {
	raw, _ := json.Marshal(v)
	return string(raw)
}
