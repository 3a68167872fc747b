package handler

import (
	"net/http"

	"github.com/hitoshi/nycbites/internal/view"
)

// MapHandler は地図設定のHTTPハンドラー。
type MapHandler struct {
	accessToken string
}

// NewMapHandler はMapHandlerを生成する。トークンは空でもよい。
func NewMapHandler(accessToken string) *MapHandler {
	return &MapHandler{accessToken: accessToken}
}

// GetConfig は地図の設定を返す。トークン未設定時は案内メッセージを返す。
// GET /api/map/config
func (h *MapHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, view.MapConfig(h.accessToken))
}
