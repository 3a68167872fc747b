// Package dataset は静的な店舗データセットの読み込みと保持を行う。
// 起動時に1回だけ取得し、以降はメモリ上のスナップショットを参照する。
package dataset

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"go.uber.org/multierr"

	"github.com/hitoshi/nycbites/internal/model"
)

// defaultMaxSize はデータセットの最大サイズ（10 MiB）。
const defaultMaxSize int64 = 10 << 20

// ErrTooLarge はデータセットが最大サイズを超えた場合のエラー。
var ErrTooLarge = errors.New("dataset exceeds maximum size")

// Sanitizer は説明文のサニタイズ処理のインターフェース。
type Sanitizer interface {
	Sanitize(raw string) string
}

// Result はデータセット読み込みの結果。
type Result struct {
	Restaurants []model.Restaurant
	Source      string
	LoadedAt    time.Time
	Duration    time.Duration
	// Warnings はレコード単位の検証警告。読み込み自体は成功している。
	Warnings []error
}

// LoaderConfig はLoaderの設定。
type LoaderConfig struct {
	// Source は http(s):// のURLまたはローカルファイルのパス。
	Source  string
	Timeout time.Duration
	MaxSize int64
}

// Loader はデータセットを1回だけ取得する。リトライは行わない。
type Loader struct {
	httpClient *http.Client
	sanitizer  Sanitizer
	logger     *slog.Logger
	cfg        LoaderConfig
}

// NewLoader はLoaderの新しいインスタンスを生成する。
// httpClientがnilの場合はcfg.Timeoutを使ったクライアントを生成する。
func NewLoader(httpClient *http.Client, sanitizer Sanitizer, logger *slog.Logger, cfg LoaderConfig) *Loader {
	if cfg.MaxSize <= 0 {
		cfg.MaxSize = defaultMaxSize
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	return &Loader{
		httpClient: httpClient,
		sanitizer:  sanitizer,
		logger:     logger,
		cfg:        cfg,
	}
}

// Load はデータセットを取得してデコードする。
// 未知のフィールドは無視し、欠けている任意フィールドはエラーにしない。
func (l *Loader) Load(ctx context.Context) (*Result, error) {
	start := time.Now()

	body, err := l.read(ctx)
	if err != nil {
		l.logger.Error("データセットの取得に失敗しました",
			slog.String("source", l.cfg.Source),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	restaurants, skipped, err := decodeRecords(body)
	if err != nil {
		l.logger.Error("データセットのパースに失敗しました",
			slog.String("source", l.cfg.Source),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("failed to parse dataset: %w", err)
	}

	if l.sanitizer != nil {
		for i := range restaurants {
			restaurants[i].Description = l.sanitizer.Sanitize(restaurants[i].Description)
		}
	}

	result := &Result{
		Restaurants: restaurants,
		Source:      l.cfg.Source,
		LoadedAt:    time.Now(),
		Duration:    time.Since(start),
		Warnings:    Warnings(multierr.Combine(skipped, Validate(restaurants))),
	}

	for _, w := range result.Warnings {
		l.logger.Warn("データセットの検証警告",
			slog.String("source", l.cfg.Source),
			slog.String("warning", w.Error()),
		)
	}

	l.logger.Info("データセットを読み込みました",
		slog.String("source", l.cfg.Source),
		slog.Int("restaurant_count", len(restaurants)),
		slog.Int("warning_count", len(result.Warnings)),
		slog.Float64("duration_ms", float64(result.Duration.Milliseconds())),
	)

	return result, nil
}

// read はSourceの種別に応じてHTTP GETまたはファイル読み込みを行う。
func (l *Loader) read(ctx context.Context) ([]byte, error) {
	src := l.cfg.Source
	if src == "" {
		return nil, errors.New("dataset source is not configured")
	}

	if strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://") {
		return l.fetch(ctx, src)
	}

	f, err := os.Open(src)
	if err != nil {
		return nil, fmt.Errorf("failed to open dataset file: %w", err)
	}
	defer f.Close()

	return readLimited(f, l.cfg.MaxSize)
}

// fetch はクエリパラメータや認証なしのGETでデータセットを取得する。
func (l *Loader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "nycbites/1.0 dataset loader")
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dataset request returned status %d", resp.StatusCode)
	}

	return readLimited(resp.Body, l.cfg.MaxSize)
}

// decodeRecords はJSON配列をレコード単位でデコードする。
// 型の合わないレコードは読み飛ばしてskippedにまとめ、配列として読めない場合のみerrを返す。
func decodeRecords(body []byte) (restaurants []model.Restaurant, skipped error, err error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, nil, err
	}

	restaurants = make([]model.Restaurant, 0, len(raw))
	for i, msg := range raw {
		var r model.Restaurant
		if err := json.Unmarshal(msg, &r); err != nil {
			skipped = multierr.Append(skipped, fmt.Errorf("record %d: skipped: %w", i, err))
			continue
		}
		r.Position = i
		restaurants = append(restaurants, r)
	}
	return restaurants, skipped, nil
}

// FailureReason は読み込みエラーをメトリクス用の分類に変換する。
func FailureReason(err error) string {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, ErrTooLarge):
		return "too_large"
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return "parse"
	case errors.Is(err, fs.ErrNotExist):
		return "not_found"
	default:
		return "fetch"
	}
}

// readLimited は最大サイズを超えるとErrTooLargeを返す。
func readLimited(r io.Reader, max int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read dataset: %w", err)
	}
	if int64(len(body)) > max {
		return nil, ErrTooLarge
	}
	return body, nil
}
