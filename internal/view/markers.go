package view

import (
	"regexp"
	"strconv"

	"github.com/hitoshi/nycbites/internal/geo"
	"github.com/hitoshi/nycbites/internal/model"
)

// マーカーの色。
const (
	ColorRed    = "red"
	ColorOrange = "orange"
	ColorGreen  = "green"
	ColorBlue   = "blue"
)

var firstNumber = regexp.MustCompile(`\d+`)

// Marker は地図上の1地点。
type Marker struct {
	Key        string  `json:"key"`
	Name       string  `json:"name"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	PlusCode   string  `json:"plus_code"`
	Color      string  `json:"color"`
	PriceRange string  `json:"price_range,omitempty"`
	Cuisine    string  `json:"cuisine,omitempty"`
	Selected   bool    `json:"selected"`
}

// Markers は座標を持つ店舗だけをマーカーに変換する。入力の順序を保つ。
func Markers(restaurants []model.Restaurant, selectedKey string) []Marker {
	markers := make([]Marker, 0, len(restaurants))
	for _, r := range restaurants {
		loc, ok := r.Location()
		if !ok {
			continue
		}
		key := r.Key()
		markers = append(markers, Marker{
			Key:        key,
			Name:       r.Name,
			Lat:        loc.Lat,
			Lng:        loc.Lng,
			PlusCode:   geo.PlusCode(loc.Lat, loc.Lng),
			Color:      MarkerColor(r.PriceRange),
			PriceRange: r.PriceRange,
			Cuisine:    r.Cuisine,
			Selected:   selectedKey != "" && key == selectedKey,
		})
	}
	return markers
}

// MarkerColor は価格帯の文字列に含まれる最初の金額で色を決める。
//
//	$100以上 → red, $50以上 → orange, $25以上 → green, それ以外 → blue
//
// 金額を読み取れない場合も blue を返す。
func MarkerColor(priceRange string) string {
	m := firstNumber.FindString(priceRange)
	if m == "" {
		return ColorBlue
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return ColorBlue
	}

	switch {
	case n >= 100:
		return ColorRed
	case n >= 50:
		return ColorOrange
	case n >= 25:
		return ColorGreen
	default:
		return ColorBlue
	}
}
