package geo

import olc "github.com/google/open-location-code/go"

// plusCodeLength は約14m四方の精度に相当する桁数。
const plusCodeLength = 10

// PlusCode は座標の Open Location Code を返す。
func PlusCode(lat, lng float64) string {
	return olc.Encode(lat, lng, plusCodeLength)
}
