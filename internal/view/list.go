// Package view は地図とリストが描画に使うビューモデルを組み立てる。
// どちらも絞り込みエンジンの結果をそのまま受け取り、並び順を変えない。
package view

import (
	"time"

	"github.com/hitoshi/nycbites/internal/geo"
	"github.com/hitoshi/nycbites/internal/hours"
	"github.com/hitoshi/nycbites/internal/model"
)

// Card はリストの1行分の表示内容。
type Card struct {
	Key           string   `json:"key"`
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

	Address       string        `json:"address,omitempty"`
	Borough       model.Borough `json:"borough,omitempty"`
	Location      *model.LatLng `json:"location,omitempty"`
	PlusCode      string        `json:"plus_code,omitempty"`
	Website       string        `json:"website,omitempty"`
	Phone         string        `json:"phone,omitempty"`
	GoogleMapsURL string        `json:"google_maps_url,omitempty"`

	// OpenNow は営業時間から計算した現在の営業状態。営業時間が不明なら nil。
	OpenNow *bool `json:"open_now"`
	// IsOpenNow はデータ取得時点の営業状態（スナップショット）。
	IsOpenNow     *bool    `json:"is_open_now,omitempty"`
	DistanceMiles *float64 `json:"distance_miles,omitempty"`
	Selected      bool     `json:"selected"`
}

// NewCard は1店舗分のカードを組み立てる。user が nil の場合は距離を含めない。
func NewCard(r model.Restaurant, now time.Time, selectedKey string, user *model.LatLng) Card {
	c := Card{
		Key:           r.Key(),
		Name:          r.Name,
		Sources:       r.Sources,
		NYTRank:       r.NYTRank,
		NYMRank:       r.NYMRank,
		CombinedOrder: r.CombinedOrder,
		Rating:        r.Rating,
		ReviewCount:   r.ReviewCount,
		PriceRange:    r.PriceRange,
		Cuisine:       r.Cuisine,
		Description:   r.Description,
		Neighborhood:  r.Neighborhood,
		ImageURL:      r.ImageURL,
		Address:       r.FormattedAddress,
		Website:       r.Website,
		Phone:         r.Phone,
		GoogleMapsURL: r.GoogleMapsURL,
		OpenNow:       hours.OpenNow(r.OpeningHours, now),
		IsOpenNow:     r.IsOpenNow,
	}
	c.Selected = selectedKey != "" && c.Key == selectedKey

	if b, ok := geo.Classify(r.FormattedAddress); ok {
		c.Borough = b
	}

	if loc, ok := r.Location(); ok {
		c.Location = &loc
		c.PlusCode = geo.PlusCode(loc.Lat, loc.Lng)
		if user != nil {
			d := geo.DistanceMiles(user.Lat, user.Lng, loc.Lat, loc.Lng)
			c.DistanceMiles = &d
		}
	}

	return c
}

// ListCards は表示対象の店舗をカードに変換する。入力の順序を保つ。
func ListCards(restaurants []model.Restaurant, now time.Time, selectedKey string, user *model.LatLng) []Card {
	cards := make([]Card, 0, len(restaurants))
	for _, r := range restaurants {
		cards = append(cards, NewCard(r, now, selectedKey, user))
	}
	return cards
}
