package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/nycbites/internal/filter"
	"github.com/hitoshi/nycbites/internal/model"
	"github.com/hitoshi/nycbites/internal/view"
)

func decodeList(t *testing.T, w *httptest.ResponseRecorder) restaurantListResponse {
	t.Helper()
	var resp restaurantListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return resp
}

func cardKeys(cards []view.Card) []string {
	keys := make([]string, len(cards))
	for i, c := range cards {
		keys[i] = c.Key
	}
	return keys
}

func equalKeys(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

// --- ListRestaurants ---

func TestListRestaurants_NoFilter_ReturnsAllInDatasetOrder(t *testing.T) {
	metrics := newMockMetrics()
	h := newTestRestaurantHandler(&mockCatalog{restaurants: testDataset(), loaded: true}, metrics)

	req := httptest.NewRequest(http.MethodGet, "/api/restaurants", nil)
	w := httptest.NewRecorder()
	h.ListRestaurants(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %q", ct)
	}

	resp := decodeList(t, w)
	want := []string{"ippudo", "luger", "kabab", "rank-110"}
	if got := cardKeys(resp.Restaurants); !equalKeys(got, want) {
		t.Errorf("keys = %v, want %v", got, want)
	}
	if resp.Total != 4 {
		t.Errorf("Total = %d, want 4", resp.Total)
	}
	if !resp.DatasetLoaded {
		t.Error("DatasetLoaded should be true")
	}
	if resp.NearMe {
		t.Error("NearMe should be false")
	}

	if metrics.latencies != 1 {
		t.Errorf("filter latency recorded %d times, want 1", metrics.latencies)
	}
	if sizes := metrics.resultSizes["list"]; len(sizes) != 1 || sizes[0] != 4 {
		t.Errorf("result sizes = %v, want [4]", sizes)
	}
}

func TestListRestaurants_CombinedFilters(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"search matches cuisine", "q=japanese", []string{"ippudo", "rank-110"}},
		{"search matches description", "q=TONKOTSU", []string{"ippudo"}},
		{"borough", "borough=brooklyn", []string{"luger"}},
		{"borough excludes unknown address", "borough=manhattan,queens", []string{"ippudo", "kabab"}},
		{"lunch", "lunch=true", []string{"ippudo", "kabab"}},
		{"publication", "publication=NYT", []string{"ippudo", "luger"}},
		{"empty publication is unrestricted", "publication=", []string{"ippudo", "luger", "kabab", "rank-110"}},
		{"search and lunch", "q=japanese&lunch=true", []string{"ippudo"}},
		{"no match", "q=pizza", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRestaurantHandler(&mockCatalog{restaurants: testDataset(), loaded: true}, newMockMetrics())

			req := httptest.NewRequest(http.MethodGet, "/api/restaurants?"+tt.query, nil)
			w := httptest.NewRecorder()
			h.ListRestaurants(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d", w.Code)
			}
			resp := decodeList(t, w)
			if got := cardKeys(resp.Restaurants); !equalKeys(got, tt.want) {
				t.Errorf("keys = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListRestaurants_NearMe_SortsByDistanceAndIncludesDistance(t *testing.T) {
	h := newTestRestaurantHandler(&mockCatalog{restaurants: testDataset(), loaded: true}, newMockMetrics())

	// East Village付近
	req := httptest.NewRequest(http.MethodGet, "/api/restaurants?near_me=true&lat=40.7300&lng=-73.9900", nil)
	w := httptest.NewRecorder()
	h.ListRestaurants(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	resp := decodeList(t, w)
	if !resp.NearMe {
		t.Error("NearMe should be true")
	}
	want := []string{"ippudo", "luger", "kabab"}
	if got := cardKeys(resp.Restaurants); !equalKeys(got, want) {
		t.Fatalf("keys = %v, want %v", got, want)
	}
	for _, c := range resp.Restaurants {
		if c.DistanceMiles == nil {
			t.Errorf("card %q should include distance", c.Key)
		}
	}
	if *resp.Restaurants[0].DistanceMiles > 0.2 {
		t.Errorf("nearest distance = %v, want < 0.2", *resp.Restaurants[0].DistanceMiles)
	}
}

func TestListRestaurants_NearMeWithoutLocation_KeepsDatasetOrder(t *testing.T) {
	h := newTestRestaurantHandler(&mockCatalog{restaurants: testDataset(), loaded: true}, newMockMetrics())

	req := httptest.NewRequest(http.MethodGet, "/api/restaurants?near_me=true", nil)
	w := httptest.NewRecorder()
	h.ListRestaurants(w, req)

	resp := decodeList(t, w)
	if resp.NearMe {
		t.Error("NearMe should revert to false")
	}
	if resp.Total != 4 {
		t.Errorf("Total = %d, want 4", resp.Total)
	}
}

func TestListRestaurants_SelectedAndOpenNow(t *testing.T) {
	h := newTestRestaurantHandler(&mockCatalog{restaurants: testDataset(), loaded: true}, newMockMetrics())

	req := httptest.NewRequest(http.MethodGet, "/api/restaurants?selected=luger", nil)
	w := httptest.NewRecorder()
	h.ListRestaurants(w, req)

	resp := decodeList(t, w)
	if resp.Selected != "luger" {
		t.Errorf("Selected = %q, want luger", resp.Selected)
	}
	for _, c := range resp.Restaurants {
		if c.Selected != (c.Key == "luger") {
			t.Errorf("card %q Selected = %v", c.Key, c.Selected)
		}
	}

	ippudo := resp.Restaurants[0]
	if ippudo.OpenNow == nil || !*ippudo.OpenNow {
		t.Errorf("ippudo OpenNow = %v, want true", ippudo.OpenNow)
	}
	if ippudo.Borough != model.BoroughManhattan {
		t.Errorf("ippudo Borough = %q, want Manhattan", ippudo.Borough)
	}
	if resp.Restaurants[1].OpenNow != nil {
		t.Errorf("luger OpenNow = %v, want nil (no hours)", *resp.Restaurants[1].OpenNow)
	}
}

func TestListRestaurants_SelectedFilteredOut_IsCleared(t *testing.T) {
	h := newTestRestaurantHandler(&mockCatalog{restaurants: testDataset(), loaded: true}, newMockMetrics())

	req := httptest.NewRequest(http.MethodGet, "/api/restaurants?q=japanese&selected=luger", nil)
	w := httptest.NewRecorder()
	h.ListRestaurants(w, req)

	resp := decodeList(t, w)
	if resp.Selected != "" {
		t.Errorf("Selected = %q, want empty when the key is not in the results", resp.Selected)
	}
	for _, c := range resp.Restaurants {
		if c.Selected {
			t.Errorf("card %q should not be selected", c.Key)
		}
	}
}

func TestListMarkers_SelectedFilteredOut_IsCleared(t *testing.T) {
	h := newTestRestaurantHandler(&mockCatalog{restaurants: testDataset(), loaded: true}, newMockMetrics())

	req := httptest.NewRequest(http.MethodGet, "/api/markers?q=japanese&selected=luger", nil)
	w := httptest.NewRecorder()
	h.ListMarkers(w, req)

	var resp markerListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Selected != "" {
		t.Errorf("Selected = %q, want empty when the key is not in the results", resp.Selected)
	}
}

func TestListRestaurants_DatasetNotLoaded_ReturnsEmptyList(t *testing.T) {
	h := newTestRestaurantHandler(&mockCatalog{}, newMockMetrics())

	req := httptest.NewRequest(http.MethodGet, "/api/restaurants", nil)
	w := httptest.NewRecorder()
	h.ListRestaurants(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	resp := decodeList(t, w)
	if resp.Total != 0 || len(resp.Restaurants) != 0 {
		t.Errorf("expected empty list, got %d", resp.Total)
	}
	if resp.DatasetLoaded {
		t.Error("DatasetLoaded should be false")
	}
}

func TestListRestaurants_InvalidQuery_Returns400(t *testing.T) {
	tests := []struct {
		query    string
		wantCode string
	}{
		{"borough=hoboken", model.ErrCodeInvalidBorough},
		{"lunch=perhaps", model.ErrCodeInvalidRequest},
		{"lat=100&lng=0", model.ErrCodeInvalidLocation},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			metrics := newMockMetrics()
			h := newTestRestaurantHandler(&mockCatalog{restaurants: testDataset(), loaded: true}, metrics)

			req := httptest.NewRequest(http.MethodGet, "/api/restaurants?"+tt.query, nil)
			w := httptest.NewRecorder()
			h.ListRestaurants(w, req)

			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", w.Code)
			}
			body := parseAPIErrorResponse(t, w)
			if body["code"] != tt.wantCode {
				t.Errorf("code = %q, want %q", body["code"], tt.wantCode)
			}
			if body["category"] != "validation" {
				t.Errorf("category = %q, want validation", body["category"])
			}
			if metrics.latencies != 0 {
				t.Error("filter should not run on invalid query")
			}
		})
	}
}

// --- GetRestaurant ---

func TestGetRestaurant_Found(t *testing.T) {
	h := newTestRestaurantHandler(&mockCatalog{restaurants: testDataset(), loaded: true}, newMockMetrics())

	req := httptest.NewRequest(http.MethodGet, "/api/restaurants/kabab", nil)
	req = withChiURLParam(req, "key", "kabab")
	w := httptest.NewRecorder()
	h.GetRestaurant(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var card view.Card
	if err := json.NewDecoder(w.Body).Decode(&card); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if card.Name != "Kabab Cafe" || !card.Selected {
		t.Errorf("card = %+v", card)
	}
	if card.Borough != model.BoroughQueens {
		t.Errorf("Borough = %q, want Queens", card.Borough)
	}
	if card.PlusCode == "" {
		t.Error("PlusCode should be set for located restaurant")
	}
	if card.DistanceMiles != nil {
		t.Error("DistanceMiles should be omitted without a location")
	}
}

func TestGetRestaurant_WithLocation_IncludesDistance(t *testing.T) {
	h := newTestRestaurantHandler(&mockCatalog{restaurants: testDataset(), loaded: true}, newMockMetrics())

	req := httptest.NewRequest(http.MethodGet, "/api/restaurants/ippudo?lat=40.7312&lng=-73.9897", nil)
	req = withChiURLParam(req, "key", "ippudo")
	w := httptest.NewRecorder()
	h.GetRestaurant(w, req)

	var card view.Card
	if err := json.NewDecoder(w.Body).Decode(&card); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if card.DistanceMiles == nil || *card.DistanceMiles > 0.001 {
		t.Errorf("DistanceMiles = %v, want ~0", card.DistanceMiles)
	}
}

func TestGetRestaurant_KeyFromCombinedOrder(t *testing.T) {
	h := newTestRestaurantHandler(&mockCatalog{restaurants: testDataset(), loaded: true}, newMockMetrics())

	req := httptest.NewRequest(http.MethodGet, "/api/restaurants/rank-110", nil)
	req = withChiURLParam(req, "key", "rank-110")
	w := httptest.NewRecorder()
	h.GetRestaurant(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var card view.Card
	json.NewDecoder(w.Body).Decode(&card)
	if card.Location != nil || card.PlusCode != "" {
		t.Errorf("restaurant without coordinates should omit location, got %+v", card.Location)
	}
}

func TestGetRestaurant_NotFound_Returns404(t *testing.T) {
	h := newTestRestaurantHandler(&mockCatalog{restaurants: testDataset(), loaded: true}, newMockMetrics())

	req := httptest.NewRequest(http.MethodGet, "/api/restaurants/nope", nil)
	req = withChiURLParam(req, "key", "nope")
	w := httptest.NewRecorder()
	h.GetRestaurant(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
	if body := parseAPIErrorResponse(t, w); body["code"] != model.ErrCodeRestaurantNotFound {
		t.Errorf("code = %q", body["code"])
	}
}

func TestGetRestaurant_DatasetNotLoaded_Returns503(t *testing.T) {
	h := newTestRestaurantHandler(&mockCatalog{}, newMockMetrics())

	req := httptest.NewRequest(http.MethodGet, "/api/restaurants/ippudo", nil)
	req = withChiURLParam(req, "key", "ippudo")
	w := httptest.NewRecorder()
	h.GetRestaurant(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", w.Code)
	}
	if body := parseAPIErrorResponse(t, w); body["code"] != model.ErrCodeDatasetUnavailable {
		t.Errorf("code = %q", body["code"])
	}
}

func TestGetRestaurant_InvalidLocation_Returns400(t *testing.T) {
	h := newTestRestaurantHandler(&mockCatalog{restaurants: testDataset(), loaded: true}, newMockMetrics())

	req := httptest.NewRequest(http.MethodGet, "/api/restaurants/ippudo?lat=0&lng=200", nil)
	req = withChiURLParam(req, "key", "ippudo")
	w := httptest.NewRecorder()
	h.GetRestaurant(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

// --- ListMarkers ---

func TestListMarkers_SkipsUnlocatedAndColorsByPrice(t *testing.T) {
	metrics := newMockMetrics()
	h := newTestRestaurantHandler(&mockCatalog{restaurants: testDataset(), loaded: true}, metrics)

	req := httptest.NewRequest(http.MethodGet, "/api/markers?selected=ippudo", nil)
	w := httptest.NewRecorder()
	h.ListMarkers(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	var resp markerListResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if resp.Total != 3 {
		t.Fatalf("Total = %d, want 3", resp.Total)
	}

	wantColors := map[string]string{
		"ippudo": view.ColorGreen,
		"luger":  view.ColorRed,
		"kabab":  view.ColorBlue,
	}
	for _, m := range resp.Markers {
		if m.Color != wantColors[m.Key] {
			t.Errorf("marker %q color = %q, want %q", m.Key, m.Color, wantColors[m.Key])
		}
		if m.Selected != (m.Key == "ippudo") {
			t.Errorf("marker %q Selected = %v", m.Key, m.Selected)
		}
	}
	if sizes := metrics.resultSizes["markers"]; len(sizes) != 1 || sizes[0] != 3 {
		t.Errorf("marker result sizes = %v, want [3]", sizes)
	}
}

func TestListMarkers_MatchesListFilter(t *testing.T) {
	h := newTestRestaurantHandler(&mockCatalog{restaurants: testDataset(), loaded: true}, newMockMetrics())

	req := httptest.NewRequest(http.MethodGet, "/api/markers?borough=queens", nil)
	w := httptest.NewRecorder()
	h.ListMarkers(w, req)

	var resp markerListResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.Markers) != 1 || resp.Markers[0].Key != "kabab" {
		t.Errorf("markers = %+v, want only kabab", resp.Markers)
	}
}

// --- Facets ---

func TestFacets_CountsWholeDataset(t *testing.T) {
	h := newTestRestaurantHandler(&mockCatalog{restaurants: testDataset(), loaded: true}, newMockMetrics())

	req := httptest.NewRequest(http.MethodGet, "/api/facets?q=ignored", nil)
	w := httptest.NewRecorder()
	h.Facets(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	got := w.Body.String()
	want, _ := json.Marshal(filter.Facets(testDataset()))
	if got != string(want)+"\n" {
		t.Errorf("facets body = %s, want %s", got, want)
	}
}
