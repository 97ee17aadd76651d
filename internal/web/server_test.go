package web

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServer_Starts(t *testing.T) {
	cfg := &Config{Port: 0} // random port
	srv := NewServer(cfg, nil, nil)

	go func() { _ = srv.Start() }()
	defer func() { _ = srv.Stop(context.Background()) }()

	// wait for server to be ready
	require.Eventually(t, func() bool {
		resp, err := http.Get(srv.BaseURL() + "/health")
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		return resp.StatusCode == 200
	}, 2*time.Second, 50*time.Millisecond)
}

func TestServer_ServesStatic(t *testing.T) {
	// Create test static files
	staticDir := filepath.Join(t.TempDir(), "static")
	cssDir := filepath.Join(staticDir, "css")
	require.NoError(t, os.MkdirAll(cssDir, 0755))

	cssContent := "body { background: #0d1117; }"
	require.NoError(t, os.WriteFile(filepath.Join(cssDir, "style.css"), []byte(cssContent), 0644))

	jsDir := filepath.Join(staticDir, "js")
	require.NoError(t, os.MkdirAll(jsDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(jsDir, "live.js"), []byte("console.log('live')"), 0644))

	srv := NewServer(&Config{StaticDir: staticDir}, nil, nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/static/css/style.css")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/css")

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, cssContent, string(body))

	// Check JS
	respJS, err := http.Get(ts.URL + "/static/js/live.js")
	require.NoError(t, err)
	defer respJS.Body.Close()
	assert.Equal(t, http.StatusOK, respJS.StatusCode)
}

func TestServer_ServesEmbeddedStatic(t *testing.T) {
	srv := NewServer(&Config{}, nil, nil)
	ts := httptest.NewServer(srv.Router())
	defer ts.Close()

	for _, path := range []string{"/static/css/site.css", "/static/js/charts.js", "/static/js/live.js"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, path)
	}

	resp, err := http.Get(ts.URL + "/static/js/missing.js")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestServer_HealthEndpoint(t *testing.T) {
	hub := NewHub()
	go hub.Run()
	defer hub.Stop()

	c := &Client{hub: hub, send: make(chan []byte, 1)}
	require.True(t, hub.add(c))
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 5*time.Millisecond)

	srv := NewServer(&Config{Version: "1.2.0"}, nil, hub)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var health struct {
		Status       string `json:"status"`
		Version      string `json:"version"`
		LiveSessions int    `json:"live_sessions"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "1.2.0", health.Version)
	assert.Equal(t, 1, health.LiveSessions)
}

func TestServer_HealthDefaultsVersion(t *testing.T) {
	srv := NewServer(&Config{}, nil, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Contains(t, rec.Body.String(), `"version":"dev"`)
	assert.Contains(t, rec.Body.String(), `"live_sessions":0`)
}

func TestServer_RegisterPagesHandler(t *testing.T) {
	srv := NewServer(&Config{}, nil, nil)
	srv.RegisterPagesHandler(&mockPagesHandler{})

	for path, want := range map[string]string{"/": "home", "/stats": "stats", "/zendit": "zendit"} {
		rec := httptest.NewRecorder()
		srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, want, rec.Body.String())
	}

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/stats", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestServer_RegisterLiveHandler(t *testing.T) {
	srv := NewServer(&Config{}, nil, nil)
	srv.RegisterLiveHandler(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ws/stats", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestServer_StopNotifiesLiveClients(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := &Client{hub: hub, send: make(chan []byte, 4)}
	require.True(t, hub.add(c))

	srv := NewServer(&Config{}, nil, hub)
	require.NoError(t, srv.Stop(context.Background()))

	var got []string
	for msg := range c.send {
		got = append(got, string(msg))
	}
	require.Len(t, got, 1)
	assert.True(t, strings.Contains(got[0], EventServerShutdown))
}

type mockPagesHandler struct{}

func (h *mockPagesHandler) Home(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("home"))
}

func (h *mockPagesHandler) Stats(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("stats"))
}

func (h *mockPagesHandler) Zendit(w http.ResponseWriter, _ *http.Request) {
	_, _ = w.Write([]byte("zendit"))
}

func TestServer_PageTimeoutFromConfig(t *testing.T) {
	srv := NewServer(&Config{PageTimeout: 50 * time.Millisecond}, nil, nil)
	srv.RegisterPagesHandler(&slowPagesHandler{delay: 200 * time.Millisecond})

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)

	// a wait longer than the old fixed 30s cutoff still fits a larger timeout
	srv = NewServer(&Config{PageTimeout: time.Second}, nil, nil)
	srv.RegisterPagesHandler(&slowPagesHandler{delay: 100 * time.Millisecond})

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "stats", rec.Body.String())
}

// slowPagesHandler answers after delay unless the request context ends first.
type slowPagesHandler struct {
	mockPagesHandler
	delay time.Duration
}

func (h *slowPagesHandler) Stats(w http.ResponseWriter, r *http.Request) {
	select {
	case <-time.After(h.delay):
		_, _ = w.Write([]byte("stats"))
	case <-r.Context().Done():
	}
}
