package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, dataset, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeInvalidBorough     = "INVALID_BOROUGH"
	ErrCodeInvalidLocation    = "INVALID_LOCATION"
	ErrCodeRestaurantNotFound = "RESTAURANT_NOT_FOUND"
	ErrCodeDatasetUnavailable = "DATASET_UNAVAILABLE"
	ErrCodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal           = "INTERNAL_ERROR"
)

// NewInvalidRequestError はリクエスト形式の誤りを表すエラーを生成する。
func NewInvalidRequestError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  fmt.Sprintf("リクエストが不正です: %s", reason),
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewInvalidBoroughError は未知の区名が指定された場合のエラーを生成する。
func NewInvalidBoroughError(value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidBorough,
		Message:  fmt.Sprintf("無効な区名です: %s", value),
		Category: "validation",
		Action:   "Manhattan、Brooklyn、Queens、Bronx、Staten Island のいずれかを指定してください。",
	}
}

// NewInvalidLocationError は座標が範囲外の場合のエラーを生成する。
func NewInvalidLocationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidLocation,
		Message:  fmt.Sprintf("無効な位置情報です: %s", reason),
		Category: "validation",
		Action:   "緯度は-90〜90、経度は-180〜180の範囲で指定してください。",
	}
}

// NewRestaurantNotFoundError は店舗が見つからない場合のエラーを生成する。
func NewRestaurantNotFoundError(key string) *APIError {
	return &APIError{
		Code:     ErrCodeRestaurantNotFound,
		Message:  fmt.Sprintf("指定された店舗が見つかりません: %s", key),
		Category: "validation",
		Action:   "店舗IDを確認してください。",
	}
}

// NewDatasetUnavailableError はデータセットが読み込まれていない場合のエラーを生成する。
func NewDatasetUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeDatasetUnavailable,
		Message:  "店舗データを読み込めませんでした。",
		Category: "dataset",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewRateLimitError はレート制限を超えた場合のエラーを生成する。
func NewRateLimitError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimitExceeded,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewInternalError は内部エラーのレスポンス用エラーを生成する。詳細は含めない。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
