package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zendhq/zend-site/internal/models"
	"github.com/zendhq/zend-site/internal/statsapi"
	"github.com/zendhq/zend-site/internal/statsapi/statsapitest"
	"github.com/zendhq/zend-site/internal/viewmodel"
)

// Mock implementations for testing

type mockFetcher struct {
	stats *models.Stats
	err   error
	block bool
}

func (m *mockFetcher) FetchPage(ctx context.Context, page, limit int) (*models.Stats, error) {
	if m.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return m.stats, m.err
}

type mockLive struct{ n int }

func (m mockLive) Clients() int { return m.n }

func testConfig() *Config {
	return &Config{
		Port:        8080,
		Title:       "Test API",
		Description: "Test API Description",
		Version:     "1.0.0",
	}
}

func newTestServer(t *testing.T, fetcher StatsFetcher) *Server {
	t.Helper()
	return NewServer(testConfig(), &Dependencies{
		Fetcher:   fetcher,
		Presenter: viewmodel.Presenter{ExplorerBaseURL: "https://stellar.expert/explorer/public/tx"},
		Live:      mockLive{n: 2},
	}, nil)
}

func serve(srv *Server, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)
	return w
}

type problem struct {
	Status int    `json:"status"`
	Title  string `json:"title"`
	Detail string `json:"detail"`
}

func decodeProblem(t *testing.T, w *httptest.ResponseRecorder) problem {
	t.Helper()
	var p problem
	require.NoError(t, json.NewDecoder(w.Body).Decode(&p))
	return p
}

func TestNewServer(t *testing.T) {
	srv := newTestServer(t, &mockFetcher{})

	require.NotNil(t, srv)
	require.NotNil(t, srv.fuego)
	assert.Equal(t, "Test API", srv.fuego.OpenAPI.Description().Info.Title)
	assert.Equal(t, "1.0.0", srv.fuego.OpenAPI.Description().Info.Version)
	assert.Equal(t, DefaultStatsWait, srv.config.StatsWait)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(t, &mockFetcher{})

	w := serve(srv, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var resp HealthResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.0.0", resp.Version)
	assert.Equal(t, 2, resp.LiveSessions)
}

func TestStatsEndpoint(t *testing.T) {
	api := statsapitest.NewServer(23)
	defer api.Close()
	srv := newTestServer(t, statsapi.NewClient(statsapi.Config{BaseURL: api.URL}))

	w := serve(srv, "/api/v1/stats?page=3&limit=5")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp StatsResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "ready", resp.Status)
	assert.Equal(t, 3, resp.CurrentPage)
	assert.Equal(t, 5, resp.ItemsPerPage)
	assert.Len(t, resp.Cards, 4)
	assert.Len(t, resp.Rows, 5)
	assert.Equal(t, "00000011", resp.Rows[0].ShortID)
	require.NotNil(t, resp.Pagination)
	assert.Equal(t, 5, resp.Pagination.TotalPages)
	assert.Equal(t, "Showing page 3 of 5 (23 total transactions)", resp.Summary)
	assert.True(t, resp.ShowPagination)
	require.NotNil(t, resp.Charts)
	assert.Equal(t, "Daily Volume", resp.Charts.DailyVolume.Title)

	reqs := api.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, 3, reqs[0].Page)
	assert.Equal(t, 5, reqs[0].Limit)
}

func TestStatsEndpoint_Defaults(t *testing.T) {
	api := statsapitest.NewServer(3)
	defer api.Close()
	srv := newTestServer(t, statsapi.NewClient(statsapi.Config{BaseURL: api.URL}))

	w := serve(srv, "/api/v1/stats")
	require.Equal(t, http.StatusOK, w.Code)

	reqs := api.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, 1, reqs[0].Page)
	assert.Equal(t, statsapi.DefaultPageSize, reqs[0].Limit)
}

func TestStatsEndpoint_BadRequest(t *testing.T) {
	fetcher := &mockFetcher{}
	srv := newTestServer(t, fetcher)

	tests := []struct {
		name   string
		target string
		detail string
	}{
		{"page zero", "/api/v1/stats?page=0", statsapi.ErrInvalidPage.Error()},
		{"page not a number", "/api/v1/stats?page=two", statsapi.ErrInvalidPage.Error()},
		{"limit not offered", "/api/v1/stats?limit=7", statsapi.ErrInvalidLimit.Error()},
		{"limit not a number", "/api/v1/stats?limit=ten", statsapi.ErrInvalidLimit.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(srv, tt.target)
			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.detail, decodeProblem(t, w).Detail)
		})
	}
}

func TestStatsEndpoint_UpstreamErrors(t *testing.T) {
	api := statsapitest.NewServer(23)
	defer api.Close()
	srv := newTestServer(t, statsapi.NewClient(statsapi.Config{BaseURL: api.URL}))

	api.FailWith(http.StatusServiceUnavailable)
	w := serve(srv, "/api/v1/stats")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "HTTP error! status: 503", decodeProblem(t, w).Detail)

	api.Reset()
	api.RespondRaw(`{"overview": {}}`)
	w = serve(srv, "/api/v1/stats")
	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Equal(t, "Received malformed statistics data", decodeProblem(t, w).Detail)
}

func TestStatsEndpoint_UpstreamTimeout(t *testing.T) {
	cfg := testConfig()
	cfg.StatsWait = 20 * time.Millisecond
	srv := NewServer(cfg, &Dependencies{Fetcher: &mockFetcher{block: true}}, nil)

	w := serve(srv, "/api/v1/stats")
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
}

func TestPaginationEndpoint(t *testing.T) {
	srv := newTestServer(t, &mockFetcher{})

	w := serve(srv, "/api/v1/pagination?current=5&total=10")
	require.Equal(t, http.StatusOK, w.Code)

	var resp PaginationResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, 5, resp.Current)
	assert.Equal(t, 10, resp.Total)
	assert.Equal(t, []viewmodel.PageItem{
		{Page: 1},
		{Ellipsis: true},
		{Page: 4},
		{Page: 5, Current: true},
		{Page: 6},
		{Ellipsis: true},
		{Page: 10},
	}, resp.Items)

	for _, target := range []string{
		"/api/v1/pagination?current=1&total=0",
		"/api/v1/pagination?current=4&total=3",
		"/api/v1/pagination?total=3",
	} {
		assert.Equal(t, http.StatusBadRequest, serve(srv, target).Code, target)
	}
}

func TestCORS(t *testing.T) {
	cfg := testConfig()
	cfg.AllowedOrigins = []string{"https://zend.example"}
	srv := NewServer(cfg, &Dependencies{Fetcher: &mockFetcher{}}, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/stats", nil)
	req.Header.Set("Origin", "https://zend.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, "https://zend.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestDocsEndpoints(t *testing.T) {
	srv := newTestServer(t, &mockFetcher{})

	w := serve(srv, "/openapi.json")
	require.Equal(t, http.StatusOK, w.Code)
	var spec struct {
		Info struct {
			Title string `json:"title"`
		} `json:"info"`
		Paths map[string]any `json:"paths"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&spec))
	assert.Equal(t, "Test API", spec.Info.Title)
	assert.Contains(t, spec.Paths, "/api/v1/stats")
	assert.Contains(t, spec.Paths, "/api/v1/pagination")

	w = serve(srv, "/docs")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `data-url="/openapi.json"`)
}

func TestMountDocsOn(t *testing.T) {
	srv := newTestServer(t, &mockFetcher{})
	r := &recordingRouter{routes: map[string]http.HandlerFunc{}}
	srv.MountDocsOn(r)

	require.Contains(t, r.routes, "/docs")
	require.Contains(t, r.routes, "/openapi.json")

	w := httptest.NewRecorder()
	r.routes["/openapi.json"](w, httptest.NewRequest(http.MethodGet, "/openapi.json", nil))
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
}

type recordingRouter struct {
	routes map[string]http.HandlerFunc
}

func (r *recordingRouter) Get(pattern string, h http.HandlerFunc) {
	r.routes[pattern] = h
}
