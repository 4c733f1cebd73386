package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pichpich13/user-dashboard/config"
	"github.com/pichpich13/user-dashboard/internal/domain"
	"github.com/pichpich13/user-dashboard/internal/infrastructure/barcodes"
	"github.com/pichpich13/user-dashboard/internal/infrastructure/cache"
	"github.com/pichpich13/user-dashboard/internal/infrastructure/metrics"
	"github.com/pichpich13/user-dashboard/internal/infrastructure/openfoodfacts"
	"github.com/pichpich13/user-dashboard/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain sets up test environment before running tests
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           "8080",
			Environment:    "test",
			AllowedOrigins: []string{"http://localhost:*"},
		},
	}
}

// fakeReportProvider is a canned ReportProvider
type fakeReportProvider struct {
	report     *domain.Report
	err        error
	refreshErr error
	refreshed  int
}

func (f *fakeReportProvider) Report(ctx context.Context) (*domain.Report, error) {
	return f.report, f.err
}

func (f *fakeReportProvider) Refresh(ctx context.Context) error {
	f.refreshed++
	return f.refreshErr
}

func sampleReport() *domain.Report {
	records := []domain.ProductScoreRecord{
		{
			Barcode:  "111",
			Score:    domain.ValueOf(70.0),
			Grade:    domain.ValueOf("b"),
			Category: domain.ValueOf("Snacks, Sweet snacks"),
		},
		domain.FailedRecord("222", domain.SentinelNotFound),
		domain.FailedRecord("333", domain.SentinelRequestError),
	}
	agg := usecase.NewAggregator(usecase.AggregatorConfig{ExcludeFailedLookups: true})
	return &domain.Report{
		Records:      records,
		Distribution: agg.SummarizeDistribution(records),
		Categories:   agg.SummarizeByCategory(records),
	}
}

func setupTestRouter(provider ReportProvider) *gin.Engine {
	return SetupRouter(testConfig(), NewHandler(provider), nil)
}

func TestHealthCheckEndpoint(t *testing.T) {
	t.Run("returns healthy status", func(t *testing.T) {
		router := setupTestRouter(nil)

		req, _ := http.NewRequest("GET", "/health", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "healthy", response["status"])
		assert.Equal(t, "user-dashboard", response["service"])
		assert.NotEmpty(t, response["version"])
	})

	t.Run("accepts GET requests only", func(t *testing.T) {
		router := setupTestRouter(nil)

		for _, method := range []string{"POST", "PUT", "DELETE", "PATCH"} {
			req, _ := http.NewRequest(method, "/health", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != http.StatusNotFound {
				t.Errorf("Method %s: Status = %d, want %d", method, w.Code, http.StatusNotFound)
			}
		}
	})
}

func TestDashboardPage(t *testing.T) {
	t.Run("renders both collapsible sections", func(t *testing.T) {
		router := setupTestRouter(&fakeReportProvider{report: sampleReport()})

		req, _ := http.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

		body := w.Body.String()
		assert.Contains(t, body, "<h1>Scanned products analysis</h1>")
		assert.Equal(t, 2, strings.Count(body, "<details>"))
		assert.Contains(t, body, "<summary>Ecoscore charts</summary>")
		assert.Contains(t, body, "<summary>Ecoscore by product category</summary>")
		assert.Contains(t, body, `src="/charts/score-density.png"`)
		assert.Contains(t, body, `src="/charts/grade-counts.png"`)
		assert.Contains(t, body, `src="/charts/category-means.png"`)
		assert.Contains(t, body, "<td>Snacks</td><td>70.0</td><td>1</td>")
		assert.Contains(t, body, "3 scanned products, 1 found")
	})

	t.Run("shows report errors", func(t *testing.T) {
		router := setupTestRouter(&fakeReportProvider{err: errors.New("barcode file missing")})

		req, _ := http.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "barcode file missing")
	})

	t.Run("placeholders for empty summaries", func(t *testing.T) {
		router := setupTestRouter(&fakeReportProvider{report: &domain.Report{}})

		req, _ := http.NewRequest("GET", "/", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		assert.NotContains(t, w.Body.String(), "<img")
		assert.Contains(t, w.Body.String(), "No categories to plot.")
	})
}

func TestSummaryEndpoints(t *testing.T) {
	router := setupTestRouter(&fakeReportProvider{report: sampleReport()})

	t.Run("records carry sentinel labels", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/v1/records", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Records []struct {
				Barcode string `json:"barcode"`
				Score   struct {
					Value    float64 `json:"value"`
					Sentinel string  `json:"sentinel"`
				} `json:"score"`
			} `json:"records"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response.Records, 3)
		assert.Equal(t, 70.0, response.Records[0].Score.Value)
		assert.Empty(t, response.Records[0].Score.Sentinel)
		assert.Equal(t, "product not found", response.Records[1].Score.Sentinel)
		assert.Equal(t, "request error", response.Records[2].Score.Sentinel)
	})

	t.Run("category summary keeps only found products", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/v1/summary/categories", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Rows []domain.CategoryMean `json:"rows"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, []domain.CategoryMean{{Category: "Snacks", MeanScore: 70, Count: 1}}, response.Rows)
	})

	t.Run("distribution summary", func(t *testing.T) {
		req, _ := http.NewRequest("GET", "/api/v1/summary/distribution", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var response struct {
			Scores []float64 `json:"scores"`
			Grades []string  `json:"grades"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, []float64{70, 0, 0}, response.Scores)
		assert.Equal(t, []string{"b", "product not found", "request error"}, response.Grades)
	})
}

func TestChartEndpoints(t *testing.T) {
	paths := []string{
		"/charts/score-density.png",
		"/charts/grade-counts.png",
		"/charts/category-means.png",
	}

	t.Run("serve PNG images", func(t *testing.T) {
		router := setupTestRouter(&fakeReportProvider{report: sampleReport()})

		for _, path := range paths {
			req, _ := http.NewRequest("GET", path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code, path)
			assert.Equal(t, "image/png", w.Header().Get("Content-Type"), path)
			assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")), path)
		}
	})

	t.Run("return 404 without data", func(t *testing.T) {
		router := setupTestRouter(&fakeReportProvider{report: &domain.Report{}})

		for _, path := range paths {
			req, _ := http.NewRequest("GET", path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusNotFound, w.Code, path)
		}
	})
}

func TestReportUnavailable(t *testing.T) {
	t.Run("returns 503 when not configured", func(t *testing.T) {
		router := setupTestRouter(nil)

		for _, path := range []string{"/api/v1/records", "/charts/grade-counts.png"} {
			req, _ := http.NewRequest("GET", path, nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusServiceUnavailable, w.Code, path)
			assert.Contains(t, w.Body.String(), "not configured")
		}
	})

	t.Run("returns 502 when the report fails", func(t *testing.T) {
		router := setupTestRouter(&fakeReportProvider{err: errors.New("boom")})

		req, _ := http.NewRequest("GET", "/api/v1/summary/categories", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.Contains(t, w.Body.String(), "Report temporarily unavailable")
	})
}

func TestRefreshEndpoint(t *testing.T) {
	t.Run("json clients get a status", func(t *testing.T) {
		provider := &fakeReportProvider{report: sampleReport()}
		router := setupTestRouter(provider)

		req, _ := http.NewRequest("POST", "/api/v1/refresh", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 1, provider.refreshed)
	})

	t.Run("form posts redirect to the dashboard", func(t *testing.T) {
		provider := &fakeReportProvider{report: sampleReport()}
		router := setupTestRouter(provider)

		req, _ := http.NewRequest("POST", "/api/v1/refresh", strings.NewReader(""))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusSeeOther, w.Code)
		assert.Equal(t, "/", w.Header().Get("Location"))
	})

	t.Run("refresh failure", func(t *testing.T) {
		router := setupTestRouter(&fakeReportProvider{refreshErr: errors.New("cache down")})

		req, _ := http.NewRequest("POST", "/api/v1/refresh", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("GET is not routed", func(t *testing.T) {
		router := setupTestRouter(&fakeReportProvider{})

		req, _ := http.NewRequest("GET", "/api/v1/refresh", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// TestCORSIntegration tests CORS headers work end-to-end with full router
func TestCORSIntegration(t *testing.T) {
	router := setupTestRouter(&fakeReportProvider{report: sampleReport()})

	req, _ := http.NewRequest("GET", "/api/v1/summary/categories", nil)
	req.Header.Set("Origin", "http://localhost:8501")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:8501", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req, _ = http.NewRequest("GET", "/", nil)
	req.Header.Set("Origin", "http://localhost:8501")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"), "dashboard page is same-origin")
}

// TestRecoveryMiddleware tests panic recovery
func TestRecoveryMiddleware(t *testing.T) {
	router := setupTestRouter(nil)
	router.GET("/panic", func(c *gin.Context) {
		panic("test panic")
	})

	req, _ := http.NewRequest("GET", "/panic", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusInternalServerError)
	}
}

// TestFullStack wires the real client, cache, source and metrics against a fake Open Food Facts
func TestFullStack(t *testing.T) {
	off := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v0/product/111.json":
			w.Write([]byte(`{"status":1,"product":{"ecoscore_score":70,"ecoscore_grade":"b","categories":"Snacks, Sweet snacks"}}`))
		case "/api/v0/product/222.json":
			w.Write([]byte(`{"status":0}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer off.Close()

	path := filepath.Join(t.TempDir(), "barcodes.json")
	require.NoError(t, os.WriteFile(path, []byte(`["111", "222", "333"]`), 0o644))

	m := metrics.New()
	memoryCache := cache.NewMemoryCache(time.Minute)
	defer memoryCache.Close()

	fetcher := usecase.NewScoreFetcher(openfoodfacts.NewClient(off.URL, ""), usecase.FetcherConfig{Observer: m})
	aggregator := usecase.NewAggregator(usecase.AggregatorConfig{ExcludeFailedLookups: true})
	dashboard := usecase.NewDashboardService(barcodes.NewFileSource(path), fetcher, aggregator, memoryCache,
		usecase.DashboardServiceConfig{CacheTTL: time.Minute, Observer: m})
	router := SetupRouter(testConfig(), NewHandler(dashboard), m.Handler())

	req, _ := http.NewRequest("GET", "/api/v1/summary/categories", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var summary struct {
		Records []struct {
			Barcode string `json:"barcode"`
		} `json:"records"`
		Rows []domain.CategoryMean `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &summary))
	require.Len(t, summary.Records, 1)
	assert.Equal(t, "111", summary.Records[0].Barcode)
	assert.Equal(t, []domain.CategoryMean{{Category: "Snacks", MeanScore: 70, Count: 1}}, summary.Rows)

	req, _ = http.NewRequest("GET", "/metrics", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `ecolens_lookups_total{outcome="found"} 1`)
	assert.Contains(t, w.Body.String(), `ecolens_lookups_total{outcome="not_found"} 1`)
	assert.Contains(t, w.Body.String(), `ecolens_lookups_total{outcome="request_error"} 1`)
	assert.Contains(t, w.Body.String(), "ecolens_report_builds_total 1")
}
