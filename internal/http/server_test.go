package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/logkit/pkg/logging"
)

func TestNewServer(t *testing.T) {
	t.Run("uses defaults when config is nil", func(t *testing.T) {
		server, err := NewServer(logging.NewManager(), nil, zap.NewNop(), nil)
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1:9464", server.config.Addr)
		assert.Equal(t, prometheus.DefaultGatherer, server.gatherer)
	})

	t.Run("returns error when logger is nil", func(t *testing.T) {
		_, err := NewServer(logging.NewManager(), nil, nil, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "logger is required")
	})

	t.Run("returns error when options source is nil", func(t *testing.T) {
		_, err := NewServer(nil, nil, zap.NewNop(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "options source cannot be nil")
	})
}

func setupTestServer(t *testing.T) (*Server, *logging.Manager, *prometheus.Registry) {
	t.Helper()
	reg := prometheus.NewRegistry()
	mgr := logging.NewManager(logging.WithMetrics(logging.NewMetrics(reg)))
	t.Cleanup(func() { _ = mgr.Close() })

	server, err := NewServer(mgr, reg, zap.NewNop(), &Config{Addr: "127.0.0.1:0"})
	require.NoError(t, err)
	return server, mgr, reg
}

func TestHandleHealth(t *testing.T) {
	server, _, _ := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleStatus(t *testing.T) {
	server, mgr, _ := setupTestServer(t)
	at := time.Date(2024, 3, 5, 10, 15, 0, 0, time.Local)
	server.now = func() time.Time { return at }

	get := func() StatusResponse {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/status", nil)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		var resp StatusResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		return resp
	}

	resp := get()
	assert.False(t, resp.ConsoleEnabled)
	assert.False(t, resp.FileEnabled)
	assert.Equal(t, logging.DefaultBasePath, resp.BasePath)
	assert.Empty(t, resp.CurrentFile)

	// reflects reconfiguration without restarting the server
	mgr.Configure(logging.Options{
		Console: logging.ConsoleOptions{Enabled: true},
		File:    logging.FileOptions{Enabled: true, BasePath: "/tmp/logs"},
	})
	resp = get()
	assert.True(t, resp.ConsoleEnabled)
	assert.True(t, resp.FileEnabled)
	assert.Equal(t, filepath.Join("/tmp/logs", "2024_3_5_10.log"), resp.CurrentFile)
}

func TestHandleMetrics(t *testing.T) {
	server, mgr, _ := setupTestServer(t)
	require.NoError(t, mgr.CreateLogger(nil).Warn("counted"))

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	server.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `logkit_records_total{severity="Warn"} 1`), body)
}

func TestServerLifecycle(t *testing.T) {
	server, _, _ := setupTestServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-errChan:
		assert.NoError(t, err)
	case <-time.After(6 * time.Second):
		t.Fatal("server did not shut down in time")
	}
}

func TestMiddleware(t *testing.T) {
	t.Run("adds request ID to response", func(t *testing.T) {
		server, _, _ := setupTestServer(t)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		rec := httptest.NewRecorder()
		server.echo.ServeHTTP(rec, req)

		assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	})

	t.Run("recovers from panic", func(t *testing.T) {
		server, _, _ := setupTestServer(t)
		server.echo.GET("/panic", func(c echo.Context) error {
			panic("test panic")
		})

		req := httptest.NewRequest(http.MethodGet, "/panic", nil)
		rec := httptest.NewRecorder()
		assert.NotPanics(t, func() {
			server.echo.ServeHTTP(rec, req)
		})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
