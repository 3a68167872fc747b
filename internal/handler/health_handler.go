package handler

import "net/http"

// DatasetStatus はヘルスチェックが参照するデータセットの状態。
type DatasetStatus interface {
	Len() int
	Loaded() bool
}

// healthResponse はヘルスチェックのレスポンス。
type healthResponse struct {
	Status        string `json:"status"`
	Restaurants   int    `json:"restaurants"`
	DatasetLoaded bool   `json:"dataset_loaded"`
}

// NewHealthHandler はヘルスチェックハンドラーを返す。
// データセットの読み込みに失敗していても空の一覧で稼働を続けるため、常に200を返す。
func NewHealthHandler(status DatasetStatus) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, healthResponse{
			Status:        "ok",
			Restaurants:   status.Len(),
			DatasetLoaded: status.Loaded(),
		})
	}
}
