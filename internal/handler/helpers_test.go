package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/nycbites/internal/model"
)

// --- モック定義 ---

// mockCatalog はCatalogのモック実装。
type mockCatalog struct {
	restaurants []model.Restaurant
	loaded      bool
}

func (m *mockCatalog) All() []model.Restaurant { return m.restaurants }

func (m *mockCatalog) Find(key string) (model.Restaurant, bool) {
	for _, r := range m.restaurants {
		if r.Key() == key {
			return r, true
		}
	}
	return model.Restaurant{}, false
}

func (m *mockCatalog) Len() int     { return len(m.restaurants) }
func (m *mockCatalog) Loaded() bool { return m.loaded }

// mockMetrics はMetricsのモック実装。
type mockMetrics struct {
	mu          sync.Mutex
	latencies   int
	resultSizes map[string][]int
	statuses    []int
}

func newMockMetrics() *mockMetrics {
	return &mockMetrics{resultSizes: make(map[string][]int)}
}

func (m *mockMetrics) RecordFilterLatency(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencies++
}

func (m *mockMetrics) RecordResultSize(view string, count int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resultSizes[view] = append(m.resultSizes[view], count)
}

func (m *mockMetrics) RecordHTTPStatus(statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, statusCode)
}

// --- テストデータ ---

func f64(v float64) *float64 { return &v }

// testDataset はハンドラーテスト用の4店舗。
func testDataset() []model.Restaurant {
	lunch := []model.Period{
		{Open: model.TimePoint{Day: 3, Hour: 11, Minute: 30}, Close: model.TimePoint{Day: 3, Hour: 22}},
	}
	return []model.Restaurant{
		{
			PlaceID: "ippudo", Name: "Ippudo", Sources: []string{"NYT"}, CombinedOrder: 1,
			Cuisine: "Japanese", PriceRange: "$30–50", Description: "Tonkotsu ramen",
			FormattedAddress: "65 4th Ave, New York, NY 10003",
			Latitude:         f64(40.7312), Longitude: f64(-73.9897),
			OpeningHours:     lunch,
		},
		{
			PlaceID: "luger", Name: "Peter Luger", Sources: []string{"NYT", "NYM"}, CombinedOrder: 2,
			Cuisine: "Steakhouse", PriceRange: "$100 and up",
			FormattedAddress: "178 Broadway, Brooklyn, NY 11211",
			Latitude:         f64(40.7099), Longitude: f64(-73.9622),
		},
		{
			PlaceID: "kabab", Name: "Kabab Cafe", Sources: []string{"NYM"}, CombinedOrder: 104,
			Cuisine: "Egyptian", PriceRange: "$20–30",
			FormattedAddress: "25-12 Steinway St, Astoria, NY 11103",
			Latitude:         f64(40.7656), Longitude: f64(-73.9165),
			OpeningHours:     lunch,
		},
		{
			Name: "Mystery Spot", Sources: []string{"NYM"}, CombinedOrder: 110,
			Cuisine: "Japanese",
		},
	}
}

// 2024-01-10 17:00 UTC = 水曜 12:00 (EST)
var testNow = time.Date(2024, 1, 10, 17, 0, 0, 0, time.UTC)

func newTestRestaurantHandler(catalog *mockCatalog, metrics *mockMetrics) *RestaurantHandler {
	h := NewRestaurantHandler(catalog, metrics)
	h.now = func() time.Time { return testNow }
	return h
}

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// parseAPIErrorResponse はレスポンスボディからAPIErrorレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}
