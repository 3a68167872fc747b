// Package model はドメインモデルを定義する。
package model

import (
	"encoding/json"
	"fmt"
)

// 出典タグ。
const (
	SourceNYT = "NYT"
	SourceNYM = "NYM"
)

// AllSources は既知の出典タグの一覧（表示順）。
var AllSources = []string{SourceNYT, SourceNYM}

// TimePoint は週次スケジュール上の時刻を表す。Day は 0 = 日曜日。
type TimePoint struct {
	Day    int `json:"day"`
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// Minutes はその日の0時からの経過分を返す。
func (t TimePoint) Minutes() int {
	return t.Hour*60 + t.Minute
}

// Period は1つの営業時間帯（毎週繰り返し）を表す。
// Close.Day が Open.Day と異なる場合は日付をまたぐ営業を表す。
type Period struct {
	Open  TimePoint `json:"open"`
	Close TimePoint `json:"close"`
}

// Overnight は日付をまたぐ営業時間帯かどうかを返す。
func (p Period) Overnight() bool {
	return p.Open.Day != p.Close.Day
}

// LatLng は緯度経度の組。
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Restaurant はデータセットに含まれる1店舗を表す。ロード後は変更しない。
// 省略されがちなフィールドはポインタまたは空文字列で「不明」を表す。
type Restaurant struct {
	PlaceID       string   `json:"place_id,omitempty"`
	Name          string   `json:"name"`
	Sources       []string `json:"sources"`
	NYTRank       *int     `json:"nyt_rank,omitempty"`
	NYMRank       *int     `json:"nym_rank,omitempty"`
	CombinedOrder int      `json:"combined_order"`

	Rating       *float64 `json:"rating,omitempty"`
	ReviewCount  *int     `json:"review_count,omitempty"`
	PriceRange   string   `json:"price_range,omitempty"`
	Cuisine      string   `json:"cuisine,omitempty"`
	Description  string   `json:"description,omitempty"`
	Neighborhood string   `json:"neighborhood,omitempty"`
	ImageURL     string   `json:"image_url,omitempty"`

	FormattedAddress string   `json:"formatted_address,omitempty"`
	Latitude         *float64 `json:"latitude,omitempty"`
	Longitude        *float64 `json:"longitude,omitempty"`

	OpeningHours []Period `json:"opening_hours,omitempty"`

	Website       string `json:"website,omitempty"`
	Phone         string `json:"phone,omitempty"`
	GoogleMapsURL string `json:"google_maps_url,omitempty"`
	IsOpenNow     *bool  `json:"is_open_now,omitempty"`
	LastUpdated   string `json:"last_updated,omitempty"`

	// Position はデータセット配列内の位置（0始まり）。place_id も combined_order もない場合のキーに使う。
	Position int `json:"-"`
}

// restaurantJSON はデータセット読み込み用の中間表現。
// エンリッチ処理の版によって評価・レビュー数のキー名が異なるため両方を受け付ける。
type restaurantJSON struct {
	PlaceID       *string  `json:"place_id"`
	Name          *string  `json:"name"`
	Sources       []string `json:"sources"`
	NYTRank       *int     `json:"nyt_rank"`
	NYMRank       *int     `json:"nym_rank"`
	CombinedOrder *int     `json:"combined_order"`

	Rating            *float64 `json:"rating"`
	GoogleRating      *float64 `json:"google_rating"`
	ReviewCount       *int     `json:"review_count"`
	GoogleReviewCount *int     `json:"google_review_count"`
	PriceRange        *string  `json:"price_range"`
	Cuisine           *string  `json:"cuisine"`
	Description       *string  `json:"description"`
	Neighborhood      *string  `json:"neighborhood"`
	ImageURL          *string  `json:"image_url"`

	FormattedAddress *string  `json:"formatted_address"`
	Latitude         *float64 `json:"latitude"`
	Longitude        *float64 `json:"longitude"`

	OpeningHours []Period `json:"opening_hours"`

	Website       *string `json:"website"`
	Phone         *string `json:"phone"`
	GoogleMapsURL *string `json:"google_maps_url"`
	IsOpenNow     *bool   `json:"is_open_now"`
	LastUpdated   *string `json:"last_updated"`
}

// UnmarshalJSON はデータセットの1レコードをデコードする。
// null と欠落はどちらも「不明」として扱い、エラーにはしない。
func (r *Restaurant) UnmarshalJSON(data []byte) error {
	var raw restaurantJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode restaurant: %w", err)
	}

	*r = Restaurant{
		PlaceID:          deref(raw.PlaceID),
		Name:             deref(raw.Name),
		Sources:          raw.Sources,
		NYTRank:          raw.NYTRank,
		NYMRank:          raw.NYMRank,
		Rating:           raw.Rating,
		ReviewCount:      raw.ReviewCount,
		PriceRange:       deref(raw.PriceRange),
		Cuisine:          deref(raw.Cuisine),
		Description:      deref(raw.Description),
		Neighborhood:     deref(raw.Neighborhood),
		ImageURL:         deref(raw.ImageURL),
		FormattedAddress: deref(raw.FormattedAddress),
		Latitude:         raw.Latitude,
		Longitude:        raw.Longitude,
		OpeningHours:     raw.OpeningHours,
		Website:          deref(raw.Website),
		Phone:            deref(raw.Phone),
		GoogleMapsURL:    deref(raw.GoogleMapsURL),
		IsOpenNow:        raw.IsOpenNow,
		LastUpdated:      deref(raw.LastUpdated),
	}

	if raw.CombinedOrder != nil {
		r.CombinedOrder = *raw.CombinedOrder
	}
	if r.Rating == nil {
		r.Rating = raw.GoogleRating
	}
	if r.ReviewCount == nil {
		r.ReviewCount = raw.GoogleReviewCount
	}

	return nil
}

// Key はリストのスクロール先や選択状態に使う識別子を返す。
// place_id がない場合は combined_order から、それもない（0の）場合は配列内の位置から生成する。
func (r Restaurant) Key() string {
	if r.PlaceID != "" {
		return r.PlaceID
	}
	if r.CombinedOrder != 0 {
		return fmt.Sprintf("rank-%d", r.CombinedOrder)
	}
	return fmt.Sprintf("record-%d", r.Position)
}

// HasLocation は緯度経度の両方が揃っているかを返す。
func (r Restaurant) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Location は座標を返す。HasLocation が false の場合は ok = false。
func (r Restaurant) Location() (LatLng, bool) {
	if !r.HasLocation() {
		return LatLng{}, false
	}
	return LatLng{Lat: *r.Latitude, Lng: *r.Longitude}, true
}

// HasSource は指定の出典タグを持つかを返す。
func (r Restaurant) HasSource(source string) bool {
	for _, s := range r.Sources {
		if s == source {
			return true
		}
	}
	return false
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
