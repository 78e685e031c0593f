package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spectyralabs/spectyra/internal/config"
	"github.com/spectyralabs/spectyra/internal/embeddings"
	"github.com/spectyralabs/spectyra/internal/engine"
	"github.com/spectyralabs/spectyra/internal/nli"
	"github.com/spectyralabs/spectyra/internal/pricing"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()

	eng, err := engine.New(config.Default().Engine, &nli.Static{},
		embeddings.NewHashEmbedder(), pricing.NewTable(nil), zap.NewNop(), nil)
	require.NoError(t, err)

	server, err := NewServer(eng, zap.NewNop(), &Config{
		Host:     "localhost",
		Port:     8077,
		Gatherer: prometheus.NewRegistry(),
	})
	require.NoError(t, err)
	return server
}

func TestNewServer(t *testing.T) {
	t.Run("uses defaults when config is nil", func(t *testing.T) {
		eng, err := engine.New(config.Default().Engine, &nli.Static{},
			embeddings.NewHashEmbedder(), nil, zap.NewNop(), nil)
		require.NoError(t, err)

		server, err := NewServer(eng, zap.NewNop(), nil)
		require.NoError(t, err)
		assert.Equal(t, "localhost", server.config.Host)
		assert.Equal(t, 8077, server.config.Port)
	})

	t.Run("returns error when logger is nil", func(t *testing.T) {
		eng, err := engine.New(config.Default().Engine, &nli.Static{},
			embeddings.NewHashEmbedder(), nil, zap.NewNop(), nil)
		require.NoError(t, err)

		_, err = NewServer(eng, nil, nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "logger is required")
	})

	t.Run("returns error when engine is nil", func(t *testing.T) {
		_, err := NewServer(nil, zap.NewNop(), nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "engine cannot be nil")
	})
}

func TestHandleHealth(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	server.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	err := json.Unmarshal(rec.Body.Bytes(), &resp)
	require.NoError(t, err)
	assert.Equal(t, "ok", resp.Status)
}

func TestHandleOptimize(t *testing.T) {
	t.Run("optimizes a raw text prompt", func(t *testing.T) {
		server := setupTestServer(t)

		body, err := json.Marshal(engine.Request{
			RawText:  "Please refactor the handler.\n\n- must keep the public API stable",
			Level:    "balanced",
			Provider: "openai",
		})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/v1/optimize", bytes.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()

		server.echo.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp engine.Result
		err = json.Unmarshal(rec.Body.Bytes(), &resp)
		require.NoError(t, err)

		assert.NotEmpty(t, resp.OptimizedContent)
		assert.Len(t, resp.WorkloadKey, 32)
		assert.Len(t, resp.PromptHash, 64)
		assert.Nil(t, resp.Debug)
	})

	t.Run("returns 400 with field name on validation failure", func(t *testing.T) {
		server := setupTestServer(t)

		body, err := json.Marshal(engine.Request{RawText: "hi", Level: "extreme"})
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPost, "/v1/optimize", bytes.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()

		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)

		var resp ErrorResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Error, "level")
	})

	t.Run("returns 400 on empty body", func(t *testing.T) {
		server := setupTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/v1/optimize", bytes.NewReader([]byte(`{}`)))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()

		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("returns 500 on engine failure", func(t *testing.T) {
		server, err := NewServer(failingOptimizer{}, zap.NewNop(), nil)
		require.NoError(t, err)

		body := []byte(`{"rawText": "hello"}`)
		req := httptest.NewRequest(http.MethodPost, "/v1/optimize", bytes.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()

		server.echo.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

type failingOptimizer struct{}

func (failingOptimizer) Optimize(context.Context, engine.Request) (*engine.Result, error) {
	return nil, fmt.Errorf("backend exploded")
}

func TestMetricsEndpoint(t *testing.T) {
	server := setupTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	server.echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
