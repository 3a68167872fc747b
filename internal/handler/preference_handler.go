package handler

import (
	"encoding/json"
	"net/http"

	"github.com/hitoshi/nycbites/internal/model"
	"github.com/hitoshi/nycbites/internal/prefs"
)

// maxPreferenceBodySize は設定更新リクエストの最大サイズ。
const maxPreferenceBodySize = 1024

// PreferenceHandler は表示設定のHTTPハンドラー。
type PreferenceHandler struct {
	cookieSecure bool
}

// NewPreferenceHandler はPreferenceHandlerを生成する。
func NewPreferenceHandler(cookieSecure bool) *PreferenceHandler {
	return &PreferenceHandler{cookieSecure: cookieSecure}
}

// themeRequest はダークモード更新リクエストのボディ。
type themeRequest struct {
	DarkMode *bool `json:"dark_mode"`
}

// GetTheme は保存済みのダークモード設定を返す。
// GET /api/preferences/theme
func (h *PreferenceHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	prefs.AcceptHints(w)
	writeJSON(w, http.StatusOK, prefs.Resolve(r))
}

// UpdateTheme はダークモード設定を保存する。
// PUT /api/preferences/theme
func (h *PreferenceHandler) UpdateTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxPreferenceBodySize)).Decode(&req); err != nil {
		writeAPIErrorResponse(w, model.NewInvalidRequestError("body must be JSON"))
		return
	}
	if req.DarkMode == nil {
		writeAPIErrorResponse(w, model.NewInvalidRequestError("dark_mode is required"))
		return
	}

	prefs.Write(w, *req.DarkMode, h.cookieSecure)
	writeJSON(w, http.StatusOK, prefs.Theme{DarkMode: *req.DarkMode, Source: "cookie"})
}
