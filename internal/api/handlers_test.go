// Charity Finder - Interest-Based Charity Recommendations
// Copyright 2026 map9900
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/map9900/charity-finder

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/map9900/charity-finder/internal/catalog"
	"github.com/map9900/charity-finder/internal/categories"
	"github.com/map9900/charity-finder/internal/middleware"
	"github.com/map9900/charity-finder/internal/models"
	"github.com/map9900/charity-finder/internal/recommend"
)

type recommendCall struct {
	code, location string
}

type fakeService struct {
	mu            sync.Mutex
	recommendResp *models.RecommendResponse
	recommendErr  error
	featuredErr   error
	calls         []recommendCall
	featuredDates []time.Time
}

func (f *fakeService) Recommend(_ context.Context, code, location string) (*models.RecommendResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recommendCall{code, location})
	if f.recommendErr != nil {
		return nil, f.recommendErr
	}
	return f.recommendResp, nil
}

func (f *fakeService) Featured(_ context.Context, date time.Time) (*models.FeaturedResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.featuredDates = append(f.featuredDates, date)
	if f.featuredErr != nil {
		return nil, f.featuredErr
	}
	return &models.FeaturedResponse{
		Date:      date.Format(recommend.DateLayout),
		Count:     1,
		Charities: []models.Charity{{Name: "Daily Pick", EIN: "1", NTEECode: "D20", WebsiteURL: "https://pick.org"}},
	}, nil
}

type fakeCatalog struct {
	pingErr  error
	count    int
	countErr error
	rows     []catalog.Row
	queryErr error

	mu     sync.Mutex
	majors []string
	region string
	limit  int
}

func (f *fakeCatalog) Ping(context.Context) error { return f.pingErr }

func (f *fakeCatalog) Count(context.Context, []string, string) (int, error) {
	return f.count, f.countErr
}

func (f *fakeCatalog) FetchByMajor(_ context.Context, majors []string, region string, limit int) ([]catalog.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.majors, f.region, f.limit = majors, region, limit
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.rows, nil
}

type fixedLen int

func (n fixedLen) Len() int { return int(n) }

func newTestRouter(t *testing.T, svc Recommender, cat CatalogReader, mw *ChiMiddlewareConfig) http.Handler {
	t.Helper()
	mapper, err := categories.Default()
	if err != nil {
		t.Fatalf("categories.Default() error = %v", err)
	}
	h := NewHandler(svc, cat, mapper, fixedLen(7), "test")
	h.now = func() time.Time { return time.Date(2024, 1, 1, 23, 30, 0, 0, time.FixedZone("PST", -8*3600)) }
	if mw == nil {
		mw = DefaultChiMiddlewareConfig()
		mw.CORSAllowedOrigins = []string{"https://map9900.github.io"}
		mw.RateLimitDisabled = true
	}
	return NewRouter(h, NewChiMiddleware(mw)).SetupChi()
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func TestRecommend_Success(t *testing.T) {
	t.Parallel()

	svc := &fakeService{recommendResp: &models.RecommendResponse{
		GenericCode: "D0",
		Location:    "CA",
		NTEECodes:   []string{"D20"},
		Charities:   []models.Charity{{Name: "Bay Animal Rescue", EIN: "100000001", NTEECode: "D20"}},
	}}
	router := newTestRouter(t, svc, &fakeCatalog{}, nil)

	rec := do(t, router, http.MethodPost, "/recommend", `{"generic_code":" d0 ","location":"CA"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	if rec.Header().Get(middleware.RequestIDHeader) == "" {
		t.Error("missing request id header")
	}

	got := decode[models.RecommendResponse](t, rec)
	if got.GenericCode != "D0" || len(got.Charities) != 1 || got.Charities[0].Name != "Bay Animal Rescue" {
		t.Errorf("response = %+v", got)
	}

	// Normalization is the service's job; the handler passes values through.
	if len(svc.calls) != 1 || svc.calls[0] != (recommendCall{" d0 ", "CA"}) {
		t.Errorf("service calls = %+v", svc.calls)
	}
}

func TestRecommend_BadRequests(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{name: "malformed json", body: `{"generic_code":`, wantCode: "INVALID_BODY"},
		{name: "not an object", body: `["D0"]`, wantCode: "INVALID_BODY"},
		{name: "code too long", body: `{"generic_code":"` + strings.Repeat("D", 17) + `"}`, wantCode: "VALIDATION_ERROR"},
		{name: "location too long", body: `{"generic_code":"D0","location":"` + strings.Repeat("x", 65) + `"}`, wantCode: "VALIDATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc := &fakeService{}
			router := newTestRouter(t, svc, &fakeCatalog{}, nil)

			rec := do(t, router, http.MethodPost, "/recommend", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			got := decode[models.ErrorResponse](t, rec)
			if got.Code != tt.wantCode || got.Detail == "" || got.RequestID == "" {
				t.Errorf("error = %+v", got)
			}
			if len(svc.calls) != 0 {
				t.Error("service must not be called for a rejected body")
			}
		})
	}
}

func TestRecommend_EmptyBody(t *testing.T) {
	t.Parallel()
	svc := &fakeService{}
	router := newTestRouter(t, svc, &fakeCatalog{}, nil)

	rec := do(t, router, http.MethodPost, "/recommend", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if len(svc.calls) != 0 {
		t.Error("service must not be called")
	}
}

func TestRecommend_ServiceErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantDetail string
	}{
		{
			name:       "empty code",
			err:        &recommend.RequestError{Err: recommend.ErrEmptyCode, Message: "generic_code is required."},
			wantStatus: http.StatusBadRequest,
			wantCode:   "MISSING_CODE",
			wantDetail: "generic_code is required.",
		},
		{
			name:       "unknown code",
			err:        &recommend.RequestError{Err: recommend.ErrUnknownCode, Message: "Unknown generic code: ZZ"},
			wantStatus: http.StatusBadRequest,
			wantCode:   "UNKNOWN_CODE",
			wantDetail: "Unknown generic code: ZZ",
		},
		{
			name:       "no results",
			err:        &recommend.RequestError{Err: recommend.ErrNoResults, Message: "No charities could be selected after grouping."},
			wantStatus: http.StatusNotFound,
			wantCode:   "NO_RESULTS",
			wantDetail: "No charities could be selected after grouping.",
		},
		{
			name:       "missing api key",
			err:        &recommend.RequestError{Err: recommend.ErrMissingAPIKey, Message: "EVERY_API_KEY is not configured."},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "MISSING_API_KEY",
			wantDetail: "EVERY_API_KEY is not configured.",
		},
		{
			name:       "catalog down",
			err:        fmt.Errorf("fetch pool for D0: %w", catalog.ErrUnavailable),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "CATALOG_UNAVAILABLE",
			wantDetail: "Internal server error.",
		},
		{
			name:       "unexpected",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "INTERNAL_ERROR",
			wantDetail: "Internal server error.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			router := newTestRouter(t, &fakeService{recommendErr: tt.err}, &fakeCatalog{}, nil)

			rec := do(t, router, http.MethodPost, "/recommend", `{"generic_code":"D0"}`)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			got := decode[models.ErrorResponse](t, rec)
			if got.Code != tt.wantCode || got.Detail != tt.wantDetail {
				t.Errorf("error = %+v, want code %s detail %q", got, tt.wantCode, tt.wantDetail)
			}
		})
	}
}

func TestFeatured_DefaultsToTodayUTC(t *testing.T) {
	t.Parallel()
	svc := &fakeService{}
	router := newTestRouter(t, svc, &fakeCatalog{}, nil)

	rec := do(t, router, http.MethodGet, "/featured", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	// 23:30 PST on Jan 1 is Jan 2 in UTC.
	got := decode[models.FeaturedResponse](t, rec)
	if got.Date != "2024-01-02" || got.Count != 1 {
		t.Errorf("response = %+v", got)
	}
	if d := svc.featuredDates[0]; d.Location() != time.UTC || d.Hour() != 0 {
		t.Errorf("featured date = %v, want UTC midnight", d)
	}
}

func TestFeatured_DateOverride(t *testing.T) {
	t.Parallel()
	svc := &fakeService{}
	router := newTestRouter(t, svc, &fakeCatalog{}, nil)

	rec := do(t, router, http.MethodGet, "/featured?date=2023-12-25", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := decode[models.FeaturedResponse](t, rec); got.Date != "2023-12-25" {
		t.Errorf("date = %q", got.Date)
	}
}

func TestFeatured_InvalidDate(t *testing.T) {
	t.Parallel()
	svc := &fakeService{}
	router := newTestRouter(t, svc, &fakeCatalog{}, nil)

	for _, q := range []string{"yesterday", "2024-13-01", "01/02/2024"} {
		rec := do(t, router, http.MethodGet, "/featured?date="+q, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("date=%s: status = %d, want 400", q, rec.Code)
			continue
		}
		if got := decode[models.ErrorResponse](t, rec); got.Code != "VALIDATION_ERROR" {
			t.Errorf("date=%s: code = %q", q, got.Code)
		}
	}
	if len(svc.featuredDates) != 0 {
		t.Error("service must not be called for an invalid date")
	}
}

func TestFeatured_MissingAPIKey(t *testing.T) {
	t.Parallel()
	err := &recommend.RequestError{Err: recommend.ErrMissingAPIKey, Message: "EVERY_API_KEY is not configured."}
	router := newTestRouter(t, &fakeService{featuredErr: err}, &fakeCatalog{}, nil)

	rec := do(t, router, http.MethodGet, "/featured", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if got := decode[models.ErrorResponse](t, rec); got.Detail != "EVERY_API_KEY is not configured." {
		t.Errorf("detail = %q", got.Detail)
	}
}

func TestCategories(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t, &fakeService{}, &fakeCatalog{}, nil)

	rec := do(t, router, http.MethodGet, "/api/v1/categories", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	env := decode[struct {
		Status string                `json:"status"`
		Data   []models.CategoryInfo `json:"data"`
	}](t, rec)
	if env.Status != "success" || len(env.Data) == 0 {
		t.Fatalf("envelope = %+v", env)
	}
	var found bool
	for _, c := range env.Data {
		if c.Code == "D0" {
			found = len(c.NTEECodes) > 0
		}
	}
	if !found {
		t.Error("D0 missing from categories")
	}
}

func TestCatalogByMajor(t *testing.T) {
	t.Parallel()

	cat := &fakeCatalog{rows: []catalog.Row{
		{EIN: "1", Name: "Reading Together", City: "Oakland", State: "CA", NTEECode: "B20", NTEEMajor: "B"},
		{EIN: "2", Name: "No Code", State: "CA", NTEEMajor: "B"},
	}}
	router := newTestRouter(t, &fakeService{}, cat, nil)

	rec := do(t, router, http.MethodGet, "/api/v1/catalog/major/b?location=ca&limit=500", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	env := decode[struct {
		Data []models.Charity `json:"data"`
	}](t, rec)
	if len(env.Data) != 1 || env.Data[0].Location != "Oakland, CA" {
		t.Errorf("data = %+v", env.Data)
	}
	if cat.majors[0] != "B" || cat.region != "CA" || cat.limit != maxBrowseLimit {
		t.Errorf("query = %v %q %d", cat.majors, cat.region, cat.limit)
	}
}

func TestCatalogByMajor_Errors(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &fakeService{}, &fakeCatalog{}, nil)
	for _, target := range []string{
		"/api/v1/catalog/major/12",
		"/api/v1/catalog/major/BD",
		"/api/v1/catalog/major/B?location=California",
	} {
		rec := do(t, router, http.MethodGet, target, "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, rec.Code)
			continue
		}
		if env := decode[models.APIResponse](t, rec); env.Error == nil || env.Error.Code != "VALIDATION_ERROR" {
			t.Errorf("%s: envelope = %+v", target, env)
		}
	}

	router = newTestRouter(t, &fakeService{}, &fakeCatalog{queryErr: catalog.ErrUnavailable}, nil)
	rec := do(t, router, http.MethodGet, "/api/v1/catalog/major/D", "")
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	env := decode[models.APIResponse](t, rec)
	if env.Status != "error" || env.Error == nil || env.Error.Code != "CATALOG_UNAVAILABLE" {
		t.Errorf("envelope = %+v", env)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, &fakeService{}, &fakeCatalog{pingErr: errors.New("down")}, nil)

	rec := do(t, router, http.MethodGet, "/api/v1/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("liveness status = %d", rec.Code)
	}
	env := decode[struct {
		Data models.HealthStatus `json:"data"`
	}](t, rec)
	if env.Data.Status != "ok" || env.Data.EnrichmentCache != 7 || env.Data.Version != "test" {
		t.Errorf("health = %+v", env.Data)
	}
}

func TestHealthReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		cat        *fakeCatalog
		wantStatus int
		wantState  string
		wantRows   int
	}{
		{name: "ready", cat: &fakeCatalog{count: 42}, wantStatus: http.StatusOK, wantState: "ready", wantRows: 42},
		{name: "catalog down", cat: &fakeCatalog{pingErr: catalog.ErrUnavailable}, wantStatus: http.StatusServiceUnavailable, wantState: "not_ready"},
		{name: "count fails", cat: &fakeCatalog{countErr: catalog.ErrUnavailable}, wantStatus: http.StatusServiceUnavailable, wantState: "not_ready"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			router := newTestRouter(t, &fakeService{}, tt.cat, nil)
			rec := do(t, router, http.MethodGet, "/api/v1/health/ready", "")
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			env := decode[struct {
				Data models.HealthStatus `json:"data"`
			}](t, rec)
			if env.Data.Status != tt.wantState {
				t.Errorf("status = %q, want %q", env.Data.Status, tt.wantState)
			}
			if env.Data.CatalogRows != tt.wantRows {
				t.Errorf("catalog_rows = %d, want %d", env.Data.CatalogRows, tt.wantRows)
			}
		})
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t, &fakeService{}, &fakeCatalog{}, nil)

	tests := []struct {
		origin    string
		wantAllow string
	}{
		{origin: "https://map9900.github.io", wantAllow: "https://map9900.github.io"},
		{origin: "https://evil.example", wantAllow: ""},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodOptions, "/recommend", nil)
		req.Header.Set("Origin", tt.origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllow {
			t.Errorf("origin %s: Allow-Origin = %q, want %q", tt.origin, got, tt.wantAllow)
		}
	}
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t, &fakeService{}, &fakeCatalog{}, nil)

	rec := do(t, router, http.MethodGet, "/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
	if got := decode[models.ErrorResponse](t, rec); got.Detail != "Not Found" {
		t.Errorf("detail = %q", got.Detail)
	}

	rec = do(t, router, http.MethodGet, "/recommend", "")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /recommend status = %d, want 405", rec.Code)
	}
}

func TestRouter_RateLimit(t *testing.T) {
	t.Parallel()

	mw := DefaultChiMiddlewareConfig()
	mw.RateLimitRequests = 2
	mw.RateLimitWindow = time.Minute
	router := newTestRouter(t, &fakeService{}, &fakeCatalog{}, mw)

	var codes []int
	for i := 0; i < 3; i++ {
		codes = append(codes, do(t, router, http.MethodGet, "/featured", "").Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [200 200 429]", codes)
	}

	// Health is not rate limited.
	for i := 0; i < 5; i++ {
		if rec := do(t, router, http.MethodGet, "/api/v1/health", ""); rec.Code != http.StatusOK {
			t.Fatalf("health request %d: status = %d", i, rec.Code)
		}
	}
}

func TestRouter_Metrics(t *testing.T) {
	t.Parallel()
	router := newTestRouter(t, &fakeService{}, &fakeCatalog{}, nil)

	do(t, router, http.MethodGet, "/api/v1/health", "")
	rec := do(t, router, http.MethodGet, "/metrics", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "api_requests_total") {
		t.Error("metrics output missing api_requests_total")
	}
}

func TestGetIntParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		query string
		want  int
	}{
		{"", 25},
		{"limit=10", 10},
		{"limit=0", 25},
		{"limit=-3", 25},
		{"limit=abc", 25},
		{"limit=1000", 100},
	}
	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/x?"+tt.query, nil)
		if got := getIntParam(r, "limit", 25, 100); got != tt.want {
			t.Errorf("getIntParam(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()
	if got := sanitizeLogValue("a\nb\x7f"); got != `a\x0ab\x7f` {
		t.Errorf("sanitizeLogValue() = %q", got)
	}
}
