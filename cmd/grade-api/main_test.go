package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/noah-isme/grade-calculator-api/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:        config.EnvProduction,
		APIPrefix:  "/api/v1",
		Calculator: config.CalculatorConfig{PassingTarget: 75},
		Cache:      config.ResultCacheConfig{TTL: time.Minute},
		Exports:    config.ExportsConfig{Enabled: true},
		Metrics:    config.MetricsConfig{Enabled: true},
	}
}

func TestRouterServesCalculatorRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := newRouter(testConfig(), zap.NewNop(), nil)

	cases := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/ready", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/docs/index.html", "", http.StatusNotFound},
		{http.MethodGet, "/api/v1/calculator/gpe?grade=98.5", "", http.StatusOK},
		{http.MethodPost, "/api/v1/calculator/calculate", `{}`, http.StatusOK},
		{http.MethodPost, "/api/v1/calculator/period", `{"examScore":70}`, http.StatusOK},
		{http.MethodPost, "/api/v1/calculator/final", `{"midterm":80,"finals":90}`, http.StatusOK},
		{http.MethodPost, "/api/v1/calculator/points-needed", `{"midterm":80,"finals":0}`, http.StatusOK},
		{http.MethodPost, "/api/v1/calculator/validate", `{"field":"attendance","value":11}`, http.StatusOK},
		{http.MethodPost, "/api/v1/calculator/export?format=pdf", `{}`, http.StatusOK},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(tc.method, tc.path, bytes.NewBufferString(tc.body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(rec, req)
		assert.Equal(t, tc.status, rec.Code, "%s %s", tc.method, tc.path)
	}
}

func TestRouterFeatureToggles(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := testConfig()
	cfg.Exports.Enabled = false
	cfg.Metrics.Enabled = false
	r := newRouter(cfg, zap.NewNop(), nil)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/calculator/export", bytes.NewBufferString(`{}`)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "FEATURE_DISABLED")
}
