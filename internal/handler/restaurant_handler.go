package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/nycbites/internal/filter"
	"github.com/hitoshi/nycbites/internal/model"
	"github.com/hitoshi/nycbites/internal/view"
)

// RestaurantSource は店舗ハンドラーが参照するデータセットのインターフェース。
// dataset.Catalogの部分集合として定義する。
type RestaurantSource interface {
	All() []model.Restaurant
	Find(key string) (model.Restaurant, bool)
	Loaded() bool
}

// FilterMetrics は絞り込み処理のメトリクス記録先。
type FilterMetrics interface {
	RecordFilterLatency(duration time.Duration)
	RecordResultSize(view string, count int)
}

// RestaurantHandler は店舗一覧・地図マーカー・集計のHTTPハンドラー。
type RestaurantHandler struct {
	source  RestaurantSource
	metrics FilterMetrics
	now     func() time.Time
}

// NewRestaurantHandler はRestaurantHandlerを生成する。
func NewRestaurantHandler(source RestaurantSource, metrics FilterMetrics) *RestaurantHandler {
	return &RestaurantHandler{
		source:  source,
		metrics: metrics,
		now:     time.Now,
	}
}

// --- レスポンス型 ---

// restaurantListResponse は店舗一覧のレスポンス。
type restaurantListResponse struct {
	Restaurants   []view.Card `json:"restaurants"`
	Total         int         `json:"total"`
	NearMe        bool        `json:"near_me"`
	Selected      string      `json:"selected,omitempty"`
	DatasetLoaded bool        `json:"dataset_loaded"`
}

// markerListResponse は地図マーカーのレスポンス。
type markerListResponse struct {
	Markers       []view.Marker `json:"markers"`
	Total         int           `json:"total"`
	Selected      string        `json:"selected,omitempty"`
	DatasetLoaded bool          `json:"dataset_loaded"`
}

// ListRestaurants は絞り込み後の店舗をリスト表示用のカードで返す。
// GET /api/restaurants?q=...&borough=...&lunch=true&near_me=true&lat=..&lng=..
func (h *RestaurantHandler) ListRestaurants(w http.ResponseWriter, r *http.Request) {
	q, err := parseFilterQuery(r.URL.Query())
	if err != nil {
		handleError(w, err)
		return
	}

	results := h.apply(q.State)
	cards := view.ListCards(results, h.now(), q.Selected, q.State.UserLocation)
	h.metrics.RecordResultSize("list", len(cards))

	writeJSON(w, http.StatusOK, restaurantListResponse{
		Restaurants:   cards,
		Total:         len(cards),
		NearMe:        q.State.ProximityActive(),
		Selected:      selectedCardKey(cards),
		DatasetLoaded: h.source.Loaded(),
	})
}

// GetRestaurant は1店舗のカードを返す。
// GET /api/restaurants/{key}
func (h *RestaurantHandler) GetRestaurant(w http.ResponseWriter, r *http.Request) {
	if !h.source.Loaded() {
		writeAPIErrorResponse(w, model.NewDatasetUnavailableError())
		return
	}

	key := chi.URLParam(r, "key")
	restaurant, ok := h.source.Find(key)
	if !ok {
		writeAPIErrorResponse(w, model.NewRestaurantNotFoundError(key))
		return
	}

	loc, err := parseLocation(r.URL.Query())
	if err != nil {
		handleError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view.NewCard(restaurant, h.now(), key, loc))
}

// ListMarkers は絞り込み後の店舗を地図マーカーで返す。
// GET /api/markers（クエリは店舗一覧と同じ）
func (h *RestaurantHandler) ListMarkers(w http.ResponseWriter, r *http.Request) {
	q, err := parseFilterQuery(r.URL.Query())
	if err != nil {
		handleError(w, err)
		return
	}

	markers := view.Markers(h.apply(q.State), q.Selected)
	h.metrics.RecordResultSize("markers", len(markers))

	writeJSON(w, http.StatusOK, markerListResponse{
		Markers:       markers,
		Total:         len(markers),
		Selected:      selectedMarkerKey(markers),
		DatasetLoaded: h.source.Loaded(),
	})
}

// Facets は全店舗を対象にした選択肢ごとの件数を返す。
// GET /api/facets
func (h *RestaurantHandler) Facets(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, filter.Facets(h.source.All()))
}

// selectedCardKey は結果に残っている選択中のキーを返す。絞り込みで外れた場合は空文字列。
func selectedCardKey(cards []view.Card) string {
	for _, c := range cards {
		if c.Selected {
			return c.Key
		}
	}
	return ""
}

func selectedMarkerKey(markers []view.Marker) string {
	for _, m := range markers {
		if m.Selected {
			return m.Key
		}
	}
	return ""
}

// apply は絞り込みを実行し、所要時間を記録する。
func (h *RestaurantHandler) apply(state model.FilterState) []model.Restaurant {
	start := time.Now()
	results := filter.Apply(h.source.All(), state)
	h.metrics.RecordFilterLatency(time.Since(start))
	return results
}
