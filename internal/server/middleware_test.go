// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/nrs-dev/nrs-webapp/internal/config"
)

func TestIsHashedAsset(t *testing.T) {
	tests := []struct {
		path     string
		expected bool
	}{
		{"/static/js/htmx.abc12345.js", true},
		{"/static/css/styles.d073ff63.css", true},
		{"/static/js/htmx.dev.js", false},
		{"/static/js/htmx.js", false},
		{"/static/js/htmx.ABCDEFGH.js", false},  // uppercase not allowed
		{"/static/js/htmx.abcd123.js", false},   // wrong length
		{"/static/js/htmx.abcd12345.js", false}, // wrong length
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.expected, isHashedAsset(tt.path))
		})
	}
}

func TestStaticCacheHeaders(t *testing.T) {
	e := echo.New()
	e.Use(staticCacheHeaders())
	e.GET("/static/*", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/entries", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	t.Run("hashed asset gets immutable cache", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/static/js/htmx.abc12345.js", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, "public, max-age=31536000, immutable", rec.Header().Get("Cache-Control"))
	})

	t.Run("dev asset gets no-cache", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/static/js/htmx.dev.js", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
	})

	t.Run("non-static path gets no cache header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/entries", nil)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Cache-Control"))
	})
}

func TestCsrfMiddleware(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{BaseURL: "http://localhost:3621"},
	}

	assert.NotNil(t, csrfMiddleware(cfg))
}
