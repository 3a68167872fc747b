package dataset

import (
	"fmt"

	"go.uber.org/multierr"

	"github.com/hitoshi/nycbites/internal/model"
)

// nycBounds はニューヨーク市を囲む矩形。エンリッチ処理と同じ値を使う。
var nycBounds = struct {
	north, south, east, west float64
}{
	north: 40.9176,
	south: 40.4774,
	east:  -73.7004,
	west:  -74.2591,
}

// Validate はデータセットの不整合を検出し、multierrでまとめて返す。
// ここで検出する問題はいずれも致命的ではなく、該当レコードは述語ごとに除外される。
func Validate(restaurants []model.Restaurant) error {
	var err error
	seenOrder := make(map[int]string, len(restaurants))

	for _, r := range restaurants {
		label := fmt.Sprintf("record %d (%q)", r.Position, r.Name)

		if r.Name == "" {
			err = multierr.Append(err, fmt.Errorf("record %d: missing name", r.Position))
		}
		if len(r.Sources) == 0 {
			err = multierr.Append(err, fmt.Errorf("%s: no sources", label))
		}
		// combined_order が 0 のレコードは配列内の位置をキーにするため重複扱いしない
		if r.CombinedOrder != 0 {
			if prev, dup := seenOrder[r.CombinedOrder]; dup {
				err = multierr.Append(err, fmt.Errorf("%s: combined_order %d already used by %q", label, r.CombinedOrder, prev))
			} else {
				seenOrder[r.CombinedOrder] = r.Name
			}
		}
		if (r.Latitude == nil) != (r.Longitude == nil) {
			err = multierr.Append(err, fmt.Errorf("%s: only one of latitude/longitude is set", label))
		}
		if loc, ok := r.Location(); ok && !InNYC(loc) {
			err = multierr.Append(err, fmt.Errorf("%s: coordinates (%.5f, %.5f) are outside New York City", label, loc.Lat, loc.Lng))
		}
		for j, p := range r.OpeningHours {
			if !validTimePoint(p.Open) || !validTimePoint(p.Close) {
				err = multierr.Append(err, fmt.Errorf("%s: opening_hours[%d] has out-of-range values", label, j))
			}
		}
	}

	return err
}

// Warnings はValidateの結果を個々のエラーに分解する。
func Warnings(err error) []error {
	return multierr.Errors(err)
}

// InNYC は座標がニューヨーク市の矩形内にあるかを返す。
func InNYC(loc model.LatLng) bool {
	return loc.Lat >= nycBounds.south && loc.Lat <= nycBounds.north &&
		loc.Lng >= nycBounds.west && loc.Lng <= nycBounds.east
}

func validTimePoint(t model.TimePoint) bool {
	// 閉店時刻として 24:00 を使うデータがあるため hour = 24 は許容する
	return t.Day >= 0 && t.Day <= 6 &&
		t.Hour >= 0 && t.Hour <= 24 &&
		t.Minute >= 0 && t.Minute <= 59
}
