package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"shoplite/internal/middleware"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig() Config {
	return Config{
		AppPort:       ":0",
		CatalogSize:   12,
		CatalogDriver: "memory",
		SessionTTL:    time.Hour,
		LogLevel:      "error",
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg := loadConfig(viper.New())

	assert.Equal(t, ":8080", cfg.AppPort)
	assert.Equal(t, 50, cfg.CatalogSize)
	assert.Equal(t, "memory", cfg.CatalogDriver)
	assert.Empty(t, cfg.RabbitMQURL)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadConfig_Environment(t *testing.T) {
	t.Setenv("CATALOG_SIZE", "8")
	t.Setenv("CATALOG_DRIVER", "sqlite")
	t.Setenv("SESSION_TTL", "15m")

	cfg := loadConfig(viper.New())

	assert.Equal(t, 8, cfg.CatalogSize)
	assert.Equal(t, "sqlite", cfg.CatalogDriver)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
}

func TestNewLogger_RejectsUnknownLevel(t *testing.T) {
	_, err := newLogger("chatty")
	assert.Error(t, err)

	l, err := newLogger("debug")
	require.NoError(t, err)
	assert.NotNil(t, l)
}

func TestOpenProductRepository_UnknownDriver(t *testing.T) {
	cfg := testConfig()
	cfg.CatalogDriver = "mongo"
	_, err := openProductRepository(cfg)
	assert.ErrorContains(t, err, "unknown CATALOG_DRIVER")
}

func TestNewApp_SQLiteCatalog(t *testing.T) {
	cfg := testConfig()
	cfg.CatalogDriver = "sqlite"
	cfg.DatabaseDSN = "file:main_app_test?mode=memory&cache=shared"

	app, _, err := newApp(cfg, zap.NewNop(), nil)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/products/12", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestHealthCheck(t *testing.T) {
	app, _, err := newApp(testConfig(), zap.NewNop(), nil)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"status":"healthy"`)
	assert.Contains(t, string(body), `"events":false`)
}

func TestSessionRoundTrip(t *testing.T) {
	app, store, err := newApp(testConfig(), zap.NewNop(), nil)
	require.NoError(t, err)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil))
	require.NoError(t, err)
	sessionID := resp.Header.Get(middleware.SessionHeader)
	require.NotEmpty(t, sessionID)
	assert.Equal(t, 1, store.Len())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/cart/items", strings.NewReader(`{"product_id":3,"qty":2}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SessionHeader, sessionID)
	resp, err = app.Test(req)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, sessionID, resp.Header.Get(middleware.SessionHeader))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	req.Header.Set(middleware.SessionHeader, sessionID)
	resp, err = app.Test(req)
	require.NoError(t, err)

	var view struct {
		Items []struct {
			ID  int64 `json:"id"`
			Qty int   `json:"qty"`
		} `json:"items"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&view))
	require.Len(t, view.Items, 1)
	assert.Equal(t, int64(3), view.Items[0].ID)
	assert.Equal(t, 2, view.Items[0].Qty)
	assert.Equal(t, 1, store.Len())
}
