// Package app はサブコマンドごとの依存関係の組み立てと起動を行う。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/nycbites/internal/config"
	"github.com/hitoshi/nycbites/internal/dataset"
	"github.com/hitoshi/nycbites/internal/handler"
	"github.com/hitoshi/nycbites/internal/logger"
	"github.com/hitoshi/nycbites/internal/metrics"
	"github.com/hitoshi/nycbites/internal/middleware"
	"github.com/hitoshi/nycbites/internal/security"
)

// shutdownTimeout はグレースフルシャットダウンの猶予時間。
const shutdownTimeout = 30 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再構成する
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
// ログはstdoutに出力する。listコマンドのみ表を出力するため、ログはstderrに回す。
func Run(stdout, stderr io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	logOut := stdout
	if cmd == CommandList {
		logOut = stderr
	}

	cfg, err := Init(logOut)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Debug("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("dataset_source", cfg.DatasetSource),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch cmd {
	case CommandList:
		var listArgs []string
		if len(args) > 1 {
			listArgs = args[1:]
		}
		return runList(ctx, cfg, stdout, stderr, listArgs)
	default:
		return runServe(ctx, cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// データセットを1回読み込んでから全依存関係をワイヤリングし、HTTPサーバーを起動する。
// ctxがキャンセルされる（SIGINT/SIGTERM）とグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	srv, cleanup := newServer(ctx, cfg, slog.Default(), prometheus.NewRegistry())
	defer cleanup()

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", srv.Addr, err)
	}

	return serve(ctx, srv, ln)
}

// newServer はデータセットを読み込み、ルーターを構成したhttp.Serverを返す。
// データセットの読み込みに失敗しても空の一覧で起動する。
// 返却されるcleanupでレートリミッターのゴルーチンを停止する。
func newServer(ctx context.Context, cfg *config.Config, log *slog.Logger, reg *prometheus.Registry) (*http.Server, func()) {
	// 1. メトリクス
	collector := metrics.NewCollector(reg)

	// 2. データセット
	catalog := dataset.NewCatalog()
	result, err := loadDataset(ctx, cfg, log)
	if err != nil {
		collector.RecordDatasetLoadFailure(dataset.FailureReason(err))
		log.Error("データセットを読み込めなかったため、空の一覧で起動します",
			slog.String("source", cfg.DatasetSource),
			slog.String("error", err.Error()),
		)
	} else {
		catalog.Replace(result.Restaurants, result.LoadedAt)
		collector.RecordDatasetLoadSuccess(len(result.Restaurants), result.Duration)
		collector.RecordValidationWarnings(len(result.Warnings))
	}

	if cfg.MapAccessToken == "" {
		log.Warn("MAP_ACCESS_TOKEN is not set; map view is disabled")
	}

	// 3. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig(cfg.RateLimitPerMinute))

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            log,
		Catalog:           catalog,
		Metrics:           collector,
		MetricsHandler:    metrics.Handler(reg),
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		MapAccessToken:    cfg.MapAccessToken,
		CookieSecure:      cfg.CookieSecure,
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return server, rateLimiter.Stop
}

// loadDataset はConfigに従ってデータセットを1回だけ読み込む。
func loadDataset(ctx context.Context, cfg *config.Config, log *slog.Logger) (*dataset.Result, error) {
	loader := dataset.NewLoader(nil, security.NewTextSanitizer(), log, dataset.LoaderConfig{
		Source:  cfg.DatasetSource,
		Timeout: cfg.DatasetTimeout,
		MaxSize: cfg.DatasetMaxSize,
	})
	return loader.Load(ctx)
}

// serve はlnでHTTPサーバーを起動し、ctxのキャンセルでシャットダウンする。
// サーバーの起動失敗とシャットダウン失敗のどちらもエラーとして返す。
func serve(ctx context.Context, server *http.Server, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("API server starting",
			slog.String("addr", ln.Addr().String()),
		)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down API server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
