package filter

import (
	"github.com/hitoshi/nycbites/internal/geo"
	"github.com/hitoshi/nycbites/internal/model"
)

// Distances は利用者の位置から各店舗までの距離（マイル）をKey別に返す。
// 座標のない店舗は含まない。
func Distances(restaurants []model.Restaurant, user model.LatLng) map[string]float64 {
	out := make(map[string]float64, len(restaurants))
	for _, r := range restaurants {
		loc, ok := r.Location()
		if !ok {
			continue
		}
		out[r.Key()] = geo.DistanceMiles(user.Lat, user.Lng, loc.Lat, loc.Lng)
	}
	return out
}
