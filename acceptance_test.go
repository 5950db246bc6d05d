package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kendall-kelly/laundry-api/config"
	"github.com/kendall-kelly/laundry-api/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// startTestServer runs the real router with a seeded catalog database and an
// HTTP order submitter pointed at backend
func startTestServer(t *testing.T, backendURL string) *httptest.Server {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	config.SetDB(db)

	_, err = services.InitCatalogService(t.Context(), db)
	require.NoError(t, err)
	services.InitOrderSubmitter(backendURL, 2*time.Second, 2)

	cfg := &config.Config{GoEnv: "test", CORSAllowedOrigins: []string{"*"}}
	server := httptest.NewServer(setupRouter(cfg))

	t.Cleanup(func() {
		server.Close()
		services.SetCatalogService(nil)
		services.SetOrderSubmitter(nil)
		config.SetDB(nil)
		sqlDB.Close()
	})
	return server
}

func postJSON(t *testing.T, url string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	resp, err := http.Post(url, "application/json", bytes.NewReader(raw))
	require.NoError(t, err)
	defer resp.Body.Close()

	var response map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
	return resp, response
}

// TestAPIHealthEndpointAcceptance is an end-to-end check of the health endpoint over real HTTP
func TestAPIHealthEndpointAcceptance(t *testing.T) {
	server := startTestServer(t, "http://127.0.0.1:1")

	// Make multiple requests to ensure consistency
	for i := 0; i < 5; i++ {
		resp, err := http.Get(server.URL + "/api/v1/health")
		require.NoError(t, err)

		var response struct {
			Success bool   `json:"success"`
			Message string `json:"message"`
		}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&response))
		resp.Body.Close()

		assert.Equal(t, http.StatusOK, resp.StatusCode, fmt.Sprintf("Request %d should succeed", i+1))
		assert.True(t, response.Success)
		assert.Equal(t, "Laundry API is running", response.Message)
	}
}

// TestOrderSubmissionAcceptance places a wash & fold order end to end. The order
// backend fails once, so the order only lands because the submitter retries.
func TestOrderSubmissionAcceptance(t *testing.T) {
	var calls int32
	var received services.OrderSubmission
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_ = json.NewDecoder(r.Body).Decode(&received)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"orderId":"WF-1001","status":"scheduled"}`))
	}))
	defer backend.Close()

	server := startTestServer(t, backend.URL)

	order := map[string]interface{}{
		"user_id": "customer-7",
		"selection": map[string]interface{}{
			"service":              "wash-fold",
			"items":                map[string]int{"laundry": 21},
			"modifiers":            map[string]string{"detergent": "eco-friendly", "fold": "hung"},
			"add_ons":              []string{"stain-treatment"},
			"preferences":          map[string]string{"water-temp": "Cold"},
			"pickup_needed":        true,
			"address":              "12 Main St",
			"recurring":            true,
			"recurrence_frequency": "Weekly",
			"recurrence_day":       "Monday",
			"promo_code":           "SAVE10",
		},
	}

	resp, response := postJSON(t, server.URL+"/api/v1/orders", order)

	require.Equal(t, http.StatusCreated, resp.StatusCode, response)
	data := response["data"].(map[string]interface{})
	receipt := data["receipt"].(map[string]interface{})
	assert.Equal(t, "WF-1001", receipt["orderId"])
	assert.Equal(t, float64(2), receipt["attempts"])
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	// 47.79 before the $10 promo
	assert.Equal(t, "37.79", data["quote"].(map[string]interface{})["total"])

	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
	assert.Equal(t, "customer-7", received.UserID)
	assert.Equal(t, "Weekly", received.Recurrence.Frequency)
	assert.Equal(t, "37.79", received.Pricing.Total.StringFixed(2))
}

// TestOrderBackendDownAcceptance reports a 502 once retries are exhausted
func TestOrderBackendDownAcceptance(t *testing.T) {
	var calls int32
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer backend.Close()

	server := startTestServer(t, backend.URL)

	resp, response := postJSON(t, server.URL+"/api/v1/orders", map[string]interface{}{
		"selection": map[string]interface{}{"service": "ironing", "items": map[string]int{"pants": 2}},
	})

	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, "ORDER_BACKEND_UNAVAILABLE", response["error"].(map[string]interface{})["code"])
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls), "one attempt plus two retries")
}
