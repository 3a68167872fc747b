package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/nycbites/internal/middleware"
)

// Catalog はルーターが必要とするデータセットのインターフェース。
type Catalog interface {
	RestaurantSource
	DatasetStatus
}

// Metrics はルーターが必要とするメトリクス記録先。
type Metrics interface {
	FilterMetrics
	middleware.StatusRecorder
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	Logger *slog.Logger

	// データセット
	Catalog Catalog

	// メトリクス
	Metrics        Metrics
	MetricsHandler http.Handler

	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter

	// 地図・表示設定
	MapAccessToken string
	CookieSecure   bool
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RequestID → Recovery → Logging → Metrics → SecurityHeaders → CORS → RateLimit(/api のみ)
//
// /health と /metrics はレート制限の外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewRecoveryMiddleware(deps.Logger))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	r.Use(middleware.NewMetricsMiddleware(deps.Metrics))
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.CookieSecure))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	restaurantHandler := NewRestaurantHandler(deps.Catalog, deps.Metrics)
	mapHandler := NewMapHandler(deps.MapAccessToken)
	prefHandler := NewPreferenceHandler(deps.CookieSecure)

	// --- 運用エンドポイント ---
	r.Get("/health", NewHealthHandler(deps.Catalog))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// --- API ---
	r.Route("/api", func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.Middleware())
		}

		r.Route("/restaurants", func(r chi.Router) {
			r.Get("/", restaurantHandler.ListRestaurants)
			r.Get("/{key}", restaurantHandler.GetRestaurant)
		})
		r.Get("/markers", restaurantHandler.ListMarkers)
		r.Get("/facets", restaurantHandler.Facets)
		r.Get("/map/config", mapHandler.GetConfig)

		r.Route("/preferences/theme", func(r chi.Router) {
			r.Get("/", prefHandler.GetTheme)
			r.Put("/", prefHandler.UpdateTheme)
		})
	})

	return r
}
