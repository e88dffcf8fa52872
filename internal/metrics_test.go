package internal

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"computer-inventory-api/internal/auth"
	"computer-inventory-api/internal/config"
	"computer-inventory-api/internal/inventory"
	"computer-inventory-api/internal/testutil"
)

func TestMetricsEndpoint(t *testing.T) {
	// Create a new metrics instance
	metrics := NewMetrics()

	// Create a Chi router with test mode
	router := chi.NewRouter()

	// Add metrics middleware
	router.Use(metrics.Middleware())

	// Add a test endpoint
	router.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	// Mount metrics endpoint
	router.Get("/metrics", metrics.Handler().ServeHTTP)

	// Make a request to generate some metrics
	testReq := httptest.NewRequest("GET", "/ping", nil)
	testW := httptest.NewRecorder()
	router.ServeHTTP(testW, testReq)

	// Verify the test request worked
	if testW.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", testW.Code)
	}
	if testW.Body.String() != "pong" {
		t.Errorf("Expected body 'pong', got '%s'", testW.Body.String())
	}

	// Now test metrics endpoint
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	// Check that metrics are returned
	body := w.Body.String()
	if body == "" {
		t.Error("Expected non-empty metrics response")
	}

	// Check for expected metric names
	expectedMetrics := []string{"http_requests_total", "http_request_duration_seconds"}
	for _, metric := range expectedMetrics {
		if !strings.Contains(body, metric) {
			t.Errorf("Expected metric '%s' not found in response", metric)
		}
	}

	// Check that we have metrics for the /ping endpoint
	if !strings.Contains(body, `path="/ping"`) {
		t.Error("Expected metrics to contain path label for /ping endpoint")
	}
}

func TestInventoryMetrics(t *testing.T) {
	metrics := NewMetrics()

	metrics.ObserveUpsert(inventory.Created)
	metrics.ObserveUpsert(inventory.Updated)
	metrics.ObserveUpsert(inventory.Updated)
	metrics.ObserveSearch(25)
	metrics.ObserveSearch(0)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	metrics.Handler().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	body := w.Body.String()
	for _, want := range []string{
		`inventory_upserts_total{result="created"} 1`,
		`inventory_upserts_total{result="updated"} 2`,
		`inventory_search_results_count 2`,
		`inventory_search_results_bucket{le="0"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("Expected %q in metrics response", want)
		}
	}
}

func TestMetricsNotMountedWhenDisabled(t *testing.T) {
	cfg := config.Default(config.EnvTest)
	cfg.EnableMetrics = false
	srv := NewServer(cfg, testutil.NewSQLiteDB(t), auth.NewCookieSessions(auth.SessionOptions{MaxAge: time.Hour}, cfg.SessionKeys()...))

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	srv.Router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", w.Code)
	}
}

func TestMetricsMiddleware(t *testing.T) {
	metrics := NewMetrics()

	// Create a Chi router
	router := chi.NewRouter()

	// Add metrics middleware
	router.Use(metrics.Middleware())

	// Create a test handler
	router.Get("/test", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("test response"))
	})

	// Test the middleware
	req := httptest.NewRequest("GET", "/test", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "test response" {
		t.Errorf("Expected body 'test response', got '%s'", w.Body.String())
	}
}

func TestMetricsWithChiRoutePatterns(t *testing.T) {
	metrics := NewMetrics()
	router := chi.NewRouter()

	// Add metrics middleware
	router.Use(metrics.Middleware())

	// Add a parameterized route
	router.Get("/users/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("user"))
	})

	// Mount metrics endpoint
	router.Get("/metrics", metrics.Handler().ServeHTTP)

	// Make a request to generate metrics
	testReq := httptest.NewRequest("GET", "/users/123", nil)
	testW := httptest.NewRecorder()
	router.ServeHTTP(testW, testReq)

	// Now check metrics
	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	body := w.Body.String()

	// Should contain the route pattern, not the actual path
	if !strings.Contains(body, `path="/users/{id}"`) {
		t.Error("Expected metrics to contain Chi route pattern, not actual path")
	}
}
