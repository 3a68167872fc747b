// Package geo は店舗の位置に関する計算を提供する。
// 大円距離、郵便番号による区の判定、Plus Code の生成を含む。
package geo

import "math"

// earthRadiusMiles は地球の半径（マイル）。
const earthRadiusMiles = 3959.0

// DistanceMiles は2点間の大円距離をHaversine公式で計算し、マイルで返す。
func DistanceMiles(lat1, lng1, lat2, lng2 float64) float64 {
	lat1Rad := toRadians(lat1)
	lat2Rad := toRadians(lat2)
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1Rad)*math.Cos(lat2Rad)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	// 丸め誤差で a が [0, 1] をわずかに外れることがある
	a = math.Min(1, math.Max(0, a))

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
