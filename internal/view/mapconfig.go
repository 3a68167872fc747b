package view

import "github.com/hitoshi/nycbites/internal/model"

// 地図の初期表示位置（マンハッタン南部）。
var defaultCenter = model.LatLng{Lat: 40.7128, Lng: -74.0060}

const defaultZoom = 11

// MapConfigResponse は地図描画に必要な設定。
// トークン未設定時は Enabled = false とし、地図の代わりに案内を表示させる。
type MapConfigResponse struct {
	Enabled     bool         `json:"enabled"`
	AccessToken string       `json:"access_token,omitempty"`
	Message     string       `json:"message,omitempty"`
	Center      model.LatLng `json:"center"`
	Zoom        int          `json:"zoom"`
}

// MapConfig はアクセストークンの有無に応じた地図設定を返す。
func MapConfig(accessToken string) MapConfigResponse {
	cfg := MapConfigResponse{
		Center: defaultCenter,
		Zoom:   defaultZoom,
	}
	if accessToken == "" {
		cfg.Message = "地図を表示するにはアクセストークンの設定が必要です。"
		return cfg
	}
	cfg.Enabled = true
	cfg.AccessToken = accessToken
	return cfg
}
